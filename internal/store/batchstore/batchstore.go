// Package batchstore gives any point store the batch capability by fanning
// keys out through a concurrent fetcher.
package batchstore

import (
	"context"

	"github.com/discochess/azarr/internal/fetch"
	"github.com/discochess/azarr/internal/store"
)

// Compile-time checks.
var (
	_ store.Store      = (*Store)(nil)
	_ store.BatchStore = (*Store)(nil)
)

// Store adds GetItems to a point store.
type Store struct {
	store.Store
	fetcher *fetch.Fetcher
}

// New wraps s. If s already supports batches it still goes through the
// fetcher given here.
func New(s store.Store, opts ...fetch.Option) *Store {
	return &Store{Store: s, fetcher: fetch.New(opts...)}
}

// GetItems fetches keys concurrently through the wrapped store's Get.
func (s *Store) GetItems(ctx context.Context, keys []string) map[string][]byte {
	return s.fetcher.FetchAll(ctx, keys, s.Store.Get)
}

// Wrap returns s if it already supports batches, otherwise an adapter.
func Wrap(s store.Store, opts ...fetch.Option) store.BatchStore {
	if bs, ok := s.(store.BatchStore); ok {
		return bs
	}
	return New(s, opts...)
}
