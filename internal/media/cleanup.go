package media

import (
	"context"
	"fmt"
	"os"
)

// Workdir creates a private directory under the configured temp root.
func (t *implToolkit) Workdir(prefix string) (string, error) {
	if t.tempRoot != "" {
		if err := os.MkdirAll(t.tempRoot, 0o755); err != nil {
			return "", fmt.Errorf("create temp root: %w", err)
		}
	}
	dir, err := os.MkdirTemp(t.tempRoot, prefix+"-*")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	return dir, nil
}

// Remove deletes a file or directory tree, logs warning if it fails.
func (t *implToolkit) Remove(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := os.RemoveAll(path); err != nil {
		t.logger.Warn(ctx, "Failed to cleanup %s: %v", path, err)
		return
	}
	t.logger.Debug(ctx, "Cleaned up: %s", path)
}
