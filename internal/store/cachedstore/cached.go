package cachedstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/discochess/azarr/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store wraps another Store, caching the keys accepted by its filter.
type Store struct {
	underlying store.Store
	backend    Backend
	cacheable  func(key string) bool
	absent     bool
}

// Option configures a Store.
type Option func(*Store)

// WithFilter sets which keys are cached. The default is IsMetadataKey.
func WithFilter(fn func(key string) bool) Option {
	return func(s *Store) {
		s.cacheable = fn
	}
}

// WithAbsentCaching sets whether a key the store reports as absent is
// remembered. It is on by default.
func WithAbsentCaching(enabled bool) Option {
	return func(s *Store) {
		s.absent = enabled
	}
}

// New creates a new cached store wrapping the given store.
func New(underlying store.Store, backend Backend, opts ...Option) *Store {
	s := &Store{
		underlying: underlying,
		backend:    backend,
		cacheable:  IsMetadataKey,
		absent:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsMetadataKey reports whether key names a .zarray, .zgroup or .zattrs
// document.
func IsMetadataKey(key string) bool {
	name := key[strings.LastIndexByte(key, '/')+1:]
	switch name {
	case ".zarray", ".zgroup", ".zattrs":
		return true
	}
	return false
}

// Get reads key, checking the cache first for cacheable keys. A cached
// absence is reported as store.ErrNotFound without asking the store again.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if !s.cacheable(key) {
		return s.underlying.Get(ctx, key)
	}

	if e, ok := s.backend.Get(key); ok {
		if e.Absent {
			return nil, fmt.Errorf("%w: %q", store.ErrNotFound, key)
		}
		return e.Data, nil
	}

	data, err := s.underlying.Get(ctx, key)
	if err != nil {
		if s.absent && isAbsent(err) {
			s.backend.Set(key, Entry{Absent: true})
		}
		return nil, err
	}
	s.backend.Set(key, Entry{Data: data})
	return data, nil
}

// isAbsent reports whether err says the object does not exist, as opposed
// to a fetch that failed for another reason.
func isAbsent(err error) bool {
	var fe *store.FetchError
	if errors.As(err, &fe) {
		return fe.Absent
	}
	return errors.Is(err, store.ErrNotFound)
}

// Underlying returns the wrapped store.
func (s *Store) Underlying() store.Store {
	return s.underlying
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.underlying.Close()
}

// Stats returns cache statistics.
func (s *Store) Stats() Stats {
	return s.backend.Stats()
}
