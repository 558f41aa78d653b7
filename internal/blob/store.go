// Package blob stores uploaded raw files on the local filesystem.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists raw uploaded bytes under a base directory. Keys are flat
// file names produced by the ingestion pipeline (time prefix + hash prefix),
// so collisions are avoided without content-addressing the blob store
// itself.
type Store struct {
	dir string
}

// NewStore creates a blob store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes data under key and returns the storage path relative to the
// store root.
func (s *Store) Save(key string, data []byte) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing blob %s: %w", key, err)
	}
	return key, nil
}

// Open returns the stored bytes for key.
func (s *Store) Open(key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		return nil, fmt.Errorf("reading blob %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the blob for key. Deleting a missing blob is not an error.
func (s *Store) Delete(key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting blob %s: %w", key, err)
	}
	return nil
}

// validKey rejects keys that would escape the store root.
func validKey(key string) error {
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "\\") || strings.Contains(key, "..") {
		return fmt.Errorf("invalid blob key %q", key)
	}
	return nil
}
