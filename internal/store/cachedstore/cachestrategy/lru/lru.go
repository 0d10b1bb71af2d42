// Package lru evicts the least recently used metadata entry.
package lru

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/azarr/internal/store/cachedstore"
	"github.com/discochess/azarr/internal/store/cachedstore/cachestrategy"
)

// DefaultCapacity is the number of entries kept when no size is given.
const DefaultCapacity = 128

var _ cachestrategy.Strategy = (*Strategy)(nil)

// Strategy is a fixed-size LRU of metadata entries.
type Strategy struct {
	cache *lru.Cache[string, cachedstore.Entry]
}

// New creates a strategy holding up to capacity entries. A capacity of zero
// or less uses DefaultCapacity.
func New(capacity int) (*Strategy, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c, err := lru.New[string, cachedstore.Entry](capacity)
	if err != nil {
		return nil, err
	}
	return &Strategy{cache: c}, nil
}

// Get returns the entry for key and marks it recently used.
func (s *Strategy) Get(key string) (cachedstore.Entry, bool) {
	return s.cache.Get(key)
}

func (s *Strategy) Add(key string, e cachedstore.Entry) bool {
	return s.cache.Add(key, e)
}

func (s *Strategy) Len() int {
	return s.cache.Len()
}
