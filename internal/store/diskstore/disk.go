// Package diskstore implements a store over a local directory tree, laid out
// the way zarr's DirectoryStore writes it.
package diskstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/discochess/azarr/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a disk-based filesystem storage backend.
type Store struct {
	root string
}

// New creates a new disk store rooted at the given directory.
// The directory must exist.
func New(root string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	return &Store{root: root}, nil
}

// Root returns the store's directory.
func (s *Store) Root() string { return s.root }

// Get reads the file for key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	// Check for cancellation before starting I/O.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", store.ErrNotFound, key)
		}
		return nil, fmt.Errorf("reading %q: %w", key, err)
	}
	return data, nil
}

// Put writes data under key, creating parent directories. It is used to lay
// out fixtures.
func (s *Store) Put(key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %q: %w", key, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Close releases any resources held by the store.
func (s *Store) Close() error {
	return nil
}

// path maps a slash-separated key to a file below root.
func (s *Store) path(key string) (string, error) {
	if !fs.ValidPath(key) || strings.Contains(key, `\`) {
		return "", fmt.Errorf("%w: invalid key %q", store.ErrNotFound, key)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}
