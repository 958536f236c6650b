package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists blobs on the local filesystem under a directory the
// server also serves statically.
type FileStore struct {
	dir     string
	baseURL string // e.g. http://localhost:3001/uploads/processed
}

var _ BlobStore = (*FileStore)(nil)

// NewFileStore creates dir if needed. baseURL is the public prefix the files
// are reachable under.
func NewFileStore(dir, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir returns the backing directory, for static serving and the GC sweep.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) Write(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write blob %s: %w", name, err)
	}
	return s.baseURL + "/" + name, nil
}

func (s *FileStore) Read(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", name, err)
	}
	return data, nil
}

// validateName rejects names that could escape the storage directory.
func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return fmt.Errorf("invalid blob name %q", name)
	}
	return nil
}
