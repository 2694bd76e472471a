package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore implements Store on a local directory.
type LocalStore struct {
	basePath string
}

// NewLocalStore creates the base directory if needed.
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

// Put writes an artifact under name inside the base directory.
func (s *LocalStore) Put(name string, data io.Reader) (string, error) {
	path := filepath.Join(s.basePath, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Get opens an artifact by name.
func (s *LocalStore) Get(name string) (io.ReadCloser, error) {
	path := filepath.Join(s.basePath, name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("artifact not found: %s", name)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// Path returns the full path for an artifact name.
func (s *LocalStore) Path(name string) string {
	return filepath.Join(s.basePath, name)
}
