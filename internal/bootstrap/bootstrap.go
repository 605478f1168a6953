// Package bootstrap builds the process-wide store clients and services from
// configuration. Everything is constructed once and passed explicitly.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"

	"staffregister/internal/artifact"
	"staffregister/internal/cloudinary"
	"staffregister/internal/config"
	"staffregister/internal/guard"
	"staffregister/internal/register"
	"staffregister/internal/sheet"
	"staffregister/internal/store"
)

// App is the wired set of components.
type App struct {
	Table     register.Table
	Service   *register.Service
	Dashboard *register.Dashboard
	Redis     *store.Redis

	closers []func() error
}

// Open connects to every configured backend.
func Open(ctx context.Context, cfg config.App) (*App, error) {
	a := &App{}

	if cfg.UsesRedis() {
		a.Redis = store.NewRedis(cfg.RedisAddr)
		a.closers = append(a.closers, a.Redis.Close)
		if !a.Redis.Healthy(ctx) {
			log.Printf("warning: redis at %s not reachable", cfg.RedisAddr)
		}
	}

	table, closeTable, err := OpenTable(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Table = table
	a.closers = append(a.closers, closeTable)

	if err := register.EnsureHeader(ctx, table); err != nil {
		log.Printf("warning: register header check failed: %v", err)
	}

	artifacts, err := openArtifacts(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	f, ok := table.(interface{ InlineImages() bool })
	inline := cfg.InlineImages(ok && f.InlineImages())
	signatures := register.NewSignatureProcessor(artifacts, cfg.PublicBaseURL, cfg.ArtifactSubpath, inline)

	rules, err := Rules(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	g, err := a.newGuard(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Service = register.NewService(table, register.NewValidator(rules), signatures, g)
	a.Dashboard = register.NewDashboard(table)
	return a, nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenTable connects the configured tabular store.
func OpenTable(ctx context.Context, cfg config.App) (register.Table, func() error, error) {
	noop := func() error { return nil }
	switch cfg.SheetBackend {
	case "sheets", "google":
		g, err := sheet.NewGoogleSheet(ctx, sheet.GoogleOptions{
			SpreadsheetID:   cfg.SpreadsheetID,
			Tab:             cfg.SheetName,
			CredentialsFile: cfg.CredentialsFile,
			Timeout:         cfg.StoreTimeout,
			UserEntered:     cfg.InlineImages(true),
		})
		if err != nil {
			return nil, nil, err
		}
		log.Printf("register store: google sheet %s/%s", cfg.SpreadsheetID, cfg.SheetName)
		return g, noop, nil
	case "postgres":
		db, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		t, err := sheet.NewPostgres(ctx, db.Client, cfg.StoreTimeout)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Println("register store: postgres")
		return t, db.Close, nil
	case "sqlite", "":
		db, err := store.NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		t, err := sheet.NewSQLite(ctx, db.Client, cfg.StoreTimeout)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Printf("register store: sqlite %s", cfg.SQLitePath)
		return t, db.Close, nil
	case "memory":
		log.Println("register store: in-memory (data is lost on exit)")
		return sheet.NewMemory(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown SHEET_BACKEND %q", cfg.SheetBackend)
	}
}

func openArtifacts(cfg config.App) (register.ArtifactStore, error) {
	switch cfg.ArtifactBackend {
	case "local", "":
		l, err := artifact.NewLocal(cfg.ArtifactDir)
		if err != nil {
			return nil, err
		}
		log.Printf("signature storage: %s/%s", cfg.ArtifactDir, cfg.ArtifactSubpath)
		return l, nil
	case "cloudinary":
		if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
			return nil, errors.New("cloudinary not configured (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET not set)")
		}
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
		return artifact.NewCloudinary(cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)), nil
	case "none":
		log.Println("signature storage disabled, payloads stored verbatim")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown ARTIFACT_BACKEND %q", cfg.ArtifactBackend)
	}
}

func (a *App) newGuard(cfg config.App) (guard.Guard, error) {
	switch cfg.WriteGuard {
	case "none":
		log.Println("warning: WRITE_GUARD=none, concurrent duplicate submissions can both be accepted")
		return guard.None{}, nil
	case "mutex", "":
		return guard.NewMutex(), nil
	case "queue":
		q := guard.NewQueue(64)
		a.closers = append(a.closers, func() error { q.Close(); return nil })
		return q, nil
	case "redis":
		if a.Redis == nil {
			return nil, errors.New("WRITE_GUARD=redis requires REDIS_ADDR")
		}
		return guard.NewRedisLock(a.Redis.Client, "register:write-lock", cfg.LockTTL), nil
	default:
		return nil, fmt.Errorf("unknown WRITE_GUARD %q", cfg.WriteGuard)
	}
}

// Rules compiles the optional format rules.
func Rules(cfg config.App) (register.Rules, error) {
	r := register.Rules{DateLayout: cfg.DateLayout, TimeLayout: cfg.TimeLayout}
	if cfg.IdentifierPattern != "" {
		re, err := regexp.Compile(cfg.IdentifierPattern)
		if err != nil {
			return register.Rules{}, fmt.Errorf("IDENTIFIER_PATTERN: %w", err)
		}
		r.IdentifierPattern = re
	}
	return r, nil
}
