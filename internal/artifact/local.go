// Package artifact stores signature images and returns their references.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Local writes artifacts under a root directory that is served statically.
type Local struct {
	root string
}

// NewLocal creates the root directory if needed.
func NewLocal(root string) (*Local, error) {
	if root == "" {
		root = "."
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: create %s: %w", root, err)
	}
	return &Local{root: root}, nil
}

// Write stores data at relPath exactly once and returns relPath in slash form.
func (l *Local) Write(ctx context.Context, relPath string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := path.Clean("/" + filepath.ToSlash(relPath))[1:]
	if clean == "" || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("artifact: invalid path %q", relPath)
	}
	full := filepath.Join(l.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("artifact: create dir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("artifact: %s already exists", clean)
		}
		return "", fmt.Errorf("artifact: create %s: %w", clean, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("artifact: write %s: %w", clean, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("artifact: close %s: %w", clean, err)
	}
	return clean, nil
}
