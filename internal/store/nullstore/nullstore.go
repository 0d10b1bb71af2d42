// Package nullstore provides a store that records the keys it is asked for
// and returns nothing. Running a read against it yields the set of chunk
// keys the read needs, with every output region filled.
package nullstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/discochess/azarr/internal/store"
)

// Compile-time checks.
var (
	_ store.Store      = (*Store)(nil)
	_ store.BatchStore = (*Store)(nil)
)

// Store records requested keys.
type Store struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// New creates an empty recorder.
func New() *Store {
	return &Store{keys: make(map[string]struct{})}
}

// GetItems records keys and returns an empty map.
func (s *Store) GetItems(ctx context.Context, keys []string) map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return map[string][]byte{}
}

// Get records key and reports it as not found.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	s.keys[key] = struct{}{}
	s.mu.Unlock()
	return nil, fmt.Errorf("%w: %q", store.ErrNotFound, key)
}

// Keys returns the recorded keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of distinct keys recorded.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// Reset forgets all recorded keys.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.keys)
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
