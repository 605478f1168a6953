package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffregister/internal/config"
	"staffregister/internal/register"
)

func testConfig(t *testing.T) config.App {
	dir := t.TempDir()
	return config.App{
		SheetBackend:       "sqlite",
		SQLitePath:         filepath.Join(dir, "register.db"),
		ArtifactBackend:    "local",
		ArtifactDir:        dir,
		ArtifactSubpath:    "static/signatures",
		PublicBaseURL:      "http://localhost:8000",
		InlineImageFormula: "auto",
		WriteGuard:         "mutex",
		RateLimitBackend:   "memory",
	}
}

func TestOpen_SQLite(t *testing.T) {
	cfg := testConfig(t)
	app, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	sub := register.Submission{
		Title: "Mrs.", FirstName: "Achieng", Surname: "Odhiambo", Identifier: "30011222",
		Designation: "Nurse", Organization: "County Hospital", Gender: "Female",
		DisabilityStatus: "No", Date: "2026-10-16", Time: "11:00",
		Signature: "data:image/png;base64,iVBORw0KGgo=", Declaration: "on",
	}
	rec, err := app.Service.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Regexp(t, `^http://localhost:8000/static/signatures/[0-9a-f-]{36}\.png$`, rec.SignatureReference)

	_, err = app.Service.Submit(context.Background(), sub)
	assert.True(t, register.IsDuplicate(err))

	snap := app.Dashboard.Snapshot(context.Background())
	assert.Equal(t, register.Header(), snap.Header)
	assert.Len(t, snap.Rows, 1)
}

func TestOpen_QueueGuardAndNoArtifacts(t *testing.T) {
	cfg := testConfig(t)
	cfg.SheetBackend = "memory"
	cfg.WriteGuard = "queue"
	cfg.ArtifactBackend = "none"

	app, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, app.Close())
}

func TestOpen_ConfigErrors(t *testing.T) {
	cases := map[string]func(*config.App){
		"sheet backend":    func(c *config.App) { c.SheetBackend = "excel" },
		"artifact backend": func(c *config.App) { c.ArtifactBackend = "s3" },
		"cloudinary creds": func(c *config.App) { c.ArtifactBackend = "cloudinary" },
		"guard":            func(c *config.App) { c.WriteGuard = "flock" },
		"pattern":          func(c *config.App) { c.IdentifierPattern = "([" },
		"google sheet id":  func(c *config.App) { c.SheetBackend = "sheets" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t)
			mutate(&cfg)
			_, err := Open(context.Background(), cfg)
			assert.Error(t, err)
		})
	}
}

func TestRules(t *testing.T) {
	r, err := Rules(config.App{IdentifierPattern: `^\d{8}$`, DateLayout: "2006-01-02"})
	require.NoError(t, err)
	require.NotNil(t, r.IdentifierPattern)
	assert.True(t, r.IdentifierPattern.MatchString("12345678"))
	assert.Equal(t, "2006-01-02", r.DateLayout)

	r, err = Rules(config.App{})
	require.NoError(t, err)
	assert.Nil(t, r.IdentifierPattern)
}
