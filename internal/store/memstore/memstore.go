// Package memstore provides an in-memory store for tests and fixtures.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/discochess/azarr/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is an in-memory key/value store.
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte
	gets  atomic.Int64
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		items: make(map[string][]byte),
	}
}

// Set stores data under key. The data is copied to prevent caller mutations
// from affecting the store.
func (s *Store) Set(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = slices.Clone(data)
}

// Delete removes key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Gets returns the number of Get calls served.
func (s *Store) Gets() int64 {
	return s.gets.Load()
}

// Get reads a value from memory.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.gets.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.items[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", store.ErrNotFound, key)
	}
	return data, nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}
