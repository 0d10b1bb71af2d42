// Package memory keeps cached metadata entries in process memory.
package memory

import (
	"sync/atomic"

	"github.com/discochess/azarr/internal/stats"
	"github.com/discochess/azarr/internal/store/cachedstore"
	"github.com/discochess/azarr/internal/store/cachedstore/cachestrategy"
)

var _ cachedstore.Backend = (*Backend)(nil)

// Backend counts lookups and reports them to a stats collector. Eviction
// and locking are left to the strategy.
type Backend struct {
	strategy  cachestrategy.Strategy
	collector stats.Collector

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a backend over strategy. A nil collector reports nowhere.
func New(strategy cachestrategy.Strategy, collector stats.Collector) *Backend {
	return &Backend{
		strategy:  strategy,
		collector: stats.OrNoop(collector),
	}
}

func (b *Backend) Get(key string) (cachedstore.Entry, bool) {
	e, ok := b.strategy.Get(key)
	if !ok {
		b.misses.Add(1)
		b.collector.IncCounter(stats.MetricCacheMisses, 1)
		return cachedstore.Entry{}, false
	}
	b.hits.Add(1)
	b.collector.IncCounter(stats.MetricCacheHits, 1)
	return e, true
}

func (b *Backend) Set(key string, e cachedstore.Entry) {
	b.strategy.Add(key, e)
	b.collector.SetGauge(stats.MetricCacheSize, int64(b.strategy.Len()))
}

func (b *Backend) Stats() cachedstore.Stats {
	return cachedstore.Stats{
		Hits:   b.hits.Load(),
		Misses: b.misses.Load(),
		Size:   b.strategy.Len(),
	}
}
