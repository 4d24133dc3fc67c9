package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// UploadStore keeps uploaded spreadsheets on disk until they are processed.
type UploadStore struct {
	baseDir string
}

// NewUploadStore ensures the upload directory exists and returns a handle.
func NewUploadStore(baseDir string) (*UploadStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &UploadStore{baseDir: baseDir}, nil
}

// SaveStream writes the upload to a timestamped file and returns its path.
func (s *UploadStore) SaveStream(originalName string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(originalName))
	path := filepath.Join(s.baseDir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	if _, err := io.Copy(file, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	return path, nil
}

// Remove deletes a stored upload. A missing file is not an error so callers
// can invoke it unconditionally on every exit path.
func (s *UploadStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// Dir exposes the base directory (useful for debugging).
func (s *UploadStore) Dir() string {
	return s.baseDir
}
