package register

import (
	"context"
	"fmt"
)

// EnsureHeader writes the canonical header into an empty table and fails
// when an existing header differs from it.
func EnsureHeader(ctx context.Context, t Table) error {
	rows, err := t.Rows(ctx)
	if err != nil {
		return &PersistenceError{Op: "header", Err: err}
	}
	if len(rows) == 0 {
		if err := t.AppendRow(ctx, Header()); err != nil {
			return &PersistenceError{Op: "header", Err: err}
		}
		return nil
	}
	if !sameHeader(rows[0]) {
		return &PersistenceError{
			Op:  "header",
			Err: fmt.Errorf("header mismatch: got %v, want %v", rows[0], Header()),
		}
	}
	return nil
}
