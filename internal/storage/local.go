package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore writes objects to directories under a root path. Each bucket
// is a subdirectory; object names become plain filenames, which also makes
// them servable as static files.
type LocalStore struct {
	root string
}

// NewLocal creates a LocalStore rooted at root, creating the directory if needed.
func NewLocal(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("could not create upload root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Root returns the base directory objects are written under.
func (l *LocalStore) Root() string {
	return l.root
}

// Write stores data at root/bucket/name.
func (l *LocalStore) Write(_ context.Context, bucket, name string, data []byte) error {
	dir := filepath.Join(l.root, bucket)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		// Clean up a partial file so the record never references one.
		os.Remove(path)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// Delete removes root/bucket/name. A missing file is treated as already clean.
func (l *LocalStore) Delete(_ context.Context, bucket, name string) error {
	err := os.Remove(filepath.Join(l.root, bucket, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
