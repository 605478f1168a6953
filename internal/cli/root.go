// Package cli implements registerctl, the operator tool for the register store.
package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"staffregister/internal/bootstrap"
	"staffregister/internal/config"
	"staffregister/internal/register"
)

// TableOpener connects the tabular store and returns a close function.
type TableOpener func(ctx context.Context) (register.Table, func() error, error)

// NewRootCommand creates the registerctl root command using the environment
// configuration.
func NewRootCommand() *cobra.Command {
	return newRootCommand(func(ctx context.Context) (register.Table, func() error, error) {
		return bootstrap.OpenTable(ctx, config.Load())
	})
}

func newRootCommand(open TableOpener) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:          "registerctl",
		Short:        "Inspect and prepare the attendance register store",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "store operation timeout")

	withTable := func(cmd *cobra.Command, fn func(ctx context.Context, t register.Table) error) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		t, closeFn, err := open(ctx)
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(ctx, t)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the header row into an empty store and verify an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTable(cmd, func(ctx context.Context, t register.Table) error {
				if err := register.EnsureHeader(ctx, t); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "header ok")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Write every stored row as CSV to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTable(cmd, func(ctx context.Context, t register.Table) error {
				rows, err := t.Rows(ctx)
				if err != nil {
					return err
				}
				w := csv.NewWriter(cmd.OutOrStdout())
				if err := w.WriteAll(rows); err != nil {
					return fmt.Errorf("export: %w", err)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "lookup <identifier>",
		Short: "Report whether an identifier is already registered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTable(cmd, func(ctx context.Context, t register.Table) error {
				rows, err := t.Rows(ctx)
				if err != nil {
					return err
				}
				if register.HasIdentifier(rows, args[0]) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: registered\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: not registered\n", args[0])
				}
				return nil
			})
		},
	})

	return cmd
}
