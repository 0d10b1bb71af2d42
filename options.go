package azarr

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/discochess/azarr/internal/stats"
	"github.com/discochess/azarr/internal/store"
	"github.com/discochess/azarr/internal/store/cachedstore/cachestrategy/lru"
	"github.com/discochess/azarr/internal/store/diskstore"
	"github.com/discochess/azarr/internal/store/httpstore"
)

// Option configures a Client.
type Option interface {
	apply(*options)
}

// options holds the client configuration.
type options struct {
	store        store.Store
	url          string
	httpOpts     []httpstore.Option
	chunkStore   store.BatchStore
	batchFetch   bool
	concurrency  int
	limiter      *rate.Limiter
	cacheSize    int
	overlapCheck bool
	stats        stats.Collector
	logger       *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		cacheSize: lru.DefaultCapacity,
		stats:     stats.NewNoop(),
		logger:    zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithStore sets the store metadata is read from. Chunks are read from the
// same store unless WithChunkStore is given. If the store also supports
// batches, chunk reads use them.
func WithStore(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.store = s
		o.url = ""
	})
}

// WithChunkStore sets a separate batch store for chunk reads.
func WithChunkStore(s store.BatchStore) Option {
	return optionFunc(func(o *options) {
		o.chunkStore = s
	})
}

// WithBatchFetch reads chunks of a point-only store concurrently, with at
// most concurrency fetches in flight per read. Zero or less means unbounded.
// Without it such stores are read one chunk at a time.
func WithBatchFetch(concurrency int) Option {
	return optionFunc(func(o *options) {
		o.batchFetch = true
		o.concurrency = concurrency
	})
}

// WithRateLimit gates every chunk fetch made through WithBatchFetch on l.
func WithRateLimit(l *rate.Limiter) Option {
	return optionFunc(func(o *options) {
		o.limiter = l
	})
}

// WithMetadataCacheSize sets how many metadata documents are cached.
// Default is 128.
func WithMetadataCacheSize(n int) Option {
	return optionFunc(func(o *options) {
		o.cacheSize = n
	})
}

// WithOverlapCheck makes reads fail with ErrOverlap if two chunks write the
// same output element.
func WithOverlapCheck(enabled bool) Option {
	return optionFunc(func(o *options) {
		o.overlapCheck = enabled
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithURL reads the hierarchy from an HTTP endpoint. Keys are fetched from
// prefix + "/" + key; chunk reads are batched and concurrent.
func WithURL(prefix string, opts ...httpstore.Option) Option {
	return optionFunc(func(o *options) {
		o.store = nil
		o.url = prefix
		o.httpOpts = opts
	})
}

// WithDir reads the hierarchy from a local directory.
func WithDir(dir string) (Option, error) {
	st, err := diskstore.New(dir)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}
	return WithStore(st), nil
}
