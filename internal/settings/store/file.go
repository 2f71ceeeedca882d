package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"okkstats/pkg/platform/sentinel"
)

// FileCache keeps the personal tier in a JSON file next to the rest of the
// client's state.
type FileCache struct {
	path string
}

func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

func (f *FileCache) Load() ([]byte, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("personal settings: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read personal settings: %w", err)
	}
	return raw, nil
}

func (f *FileCache) Save(payload []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("save personal settings: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("save personal settings: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("save personal settings: %w", err)
	}
	return nil
}
