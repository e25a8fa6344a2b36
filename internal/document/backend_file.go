package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type fileBackend struct {
	dir string
}

// NewFileBackend stores each blob as <dir>/<key>.json.
func NewFileBackend(dir string) (Backend, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &fileBackend{dir: dir}, nil
}

func (f *fileBackend) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *fileBackend) Read(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read blob %q: %w", key, err)
	}
	return data, true, nil
}

func (f *fileBackend) Write(_ context.Context, key string, data []byte) error {
	// Write-then-rename so a crash mid-write never truncates the blob.
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write blob %q: %w", key, err)
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		return fmt.Errorf("commit blob %q: %w", key, err)
	}
	return nil
}

func (f *fileBackend) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %q: %w", key, err)
	}
	return nil
}
