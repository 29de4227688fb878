package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store writes and reads binary blobs under a configured root directory.
// Blobs are addressed by generated names; derivative blobs hang off the base
// path by a width suffix.
type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string {
	return s.root
}

// Save writes data under a new file named name inside the root directory,
// creating the root if absent, and returns the blob's local path.
func (s *Store) Save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return "", fmt.Errorf("creating storage root: %w", err)
	}
	path := filepath.Join(s.root, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}
	return path, nil
}

// Write stores data at an already-resolved local path. Used for derivatives,
// which live next to their base blob. Overwrites are deliberate: derivative
// regeneration is idempotent.
func (s *Store) Write(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

func (s *Store) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *Store) Remove(path string) error {
	return os.Remove(path)
}

// DerivativePath resolves the conventional location of a resized variant:
// the base blob path suffixed with the width.
func DerivativePath(localPath string, width int) string {
	return fmt.Sprintf("%s_%d", localPath, width)
}
