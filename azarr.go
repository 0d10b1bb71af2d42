// Package azarr reads chunked zarr v2 arrays from remote key-addressable
// stores. The chunks a read needs are fetched concurrently as one batch;
// chunks that cannot be fetched are replaced by the array's fill value.
//
// Example usage:
//
//	client, err := azarr.New(
//	    azarr.WithURL("https://example.com/data.zarr"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	arr, err := client.OpenArray(ctx, "temperature")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, err := arr.Get(ctx, azarr.Slice(0, 10))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(v.(*azarr.Buffer).Float64s())
package azarr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/discochess/azarr/internal/chunk"
	"github.com/discochess/azarr/internal/fetch"
	"github.com/discochess/azarr/internal/meta"
	"github.com/discochess/azarr/internal/stats"
	"github.com/discochess/azarr/internal/store"
	"github.com/discochess/azarr/internal/store/batchstore"
	"github.com/discochess/azarr/internal/store/cachedstore"
	"github.com/discochess/azarr/internal/store/cachedstore/cachestrategy/lru"
	"github.com/discochess/azarr/internal/store/cachedstore/memory"
	"github.com/discochess/azarr/internal/store/httpstore"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrNotFound indicates a key could not be read from the store.
	ErrNotFound = store.ErrNotFound

	// ErrDecode indicates a fetched chunk could not be decoded.
	ErrDecode = chunk.ErrDecode

	// ErrShapeMismatch indicates a supplied output buffer does not match
	// the shape or element size of the selection.
	ErrShapeMismatch = errors.New("azarr: output shape mismatch")

	// ErrOverlap indicates two chunks wrote the same output element.
	ErrOverlap = errors.New("azarr: overlapping chunk regions")

	// ErrClosed indicates the client has been closed.
	ErrClosed = errors.New("azarr: client closed")

	// ErrNoStore indicates no store was provided.
	ErrNoStore = errors.New("azarr: no store provided")

	// ErrGroupNotFound indicates no group exists at a path.
	ErrGroupNotFound = errors.New("azarr: group not found")

	// ErrArrayNotFound indicates no array exists at a path.
	ErrArrayNotFound = errors.New("azarr: array not found")

	// ErrContainsArray indicates an array exists where a group was expected.
	ErrContainsArray = errors.New("azarr: path contains an array")

	// ErrNodeNotFound indicates neither an array nor a group exists at a path.
	ErrNodeNotFound = errors.New("azarr: node not found")
)

// pointGetter is the point capability of a chunk store.
type pointGetter interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Client reads arrays and groups from one store.
// A Client is safe for concurrent use by multiple goroutines.
type Client struct {
	store        store.Store
	metadata     *cachedstore.Store
	chunks       store.BatchStore
	chunkCloser  io.Closer
	overlapCheck bool
	stats        stats.Collector
	logger       *zap.Logger
	closed       atomic.Bool
}

// New creates a new Client with the given options.
// A store must be configured with WithStore, WithURL or WithDir.
func New(opts ...Option) (*Client, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	cfg.stats = stats.OrNoop(cfg.stats)
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	logger := cfg.logger.Named("azarr")

	if cfg.url != "" {
		cfg.store = httpstore.New(cfg.url, append([]httpstore.Option{
			httpstore.WithLogger(logger),
			httpstore.WithStats(cfg.stats),
		}, cfg.httpOpts...)...)
	}
	if cfg.store == nil {
		return nil, ErrNoStore
	}

	strategy, err := lru.New(cfg.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating metadata cache: %w", err)
	}

	c := &Client{
		store:        cfg.store,
		metadata:     cachedstore.New(cfg.store, memory.New(strategy, cfg.stats)),
		overlapCheck: cfg.overlapCheck,
		stats:        cfg.stats,
		logger:       logger,
	}

	switch {
	case cfg.chunkStore != nil:
		c.chunks = cfg.chunkStore
		if cl, ok := cfg.chunkStore.(io.Closer); ok && !sameStore(cfg.chunkStore, cfg.store) {
			c.chunkCloser = cl
		}
	case cfg.batchFetch:
		c.chunks = batchstore.Wrap(cfg.store,
			fetch.WithConcurrency(cfg.concurrency),
			fetch.WithRateLimit(cfg.limiter),
			fetch.WithLogger(logger.Named("fetch")),
			fetch.WithStats(cfg.stats),
		)
	default:
		// nil for point-only stores, which are read sequentially
		c.chunks, _ = cfg.store.(store.BatchStore)
	}

	c.logger.Debug("client initialized",
		zap.Bool("batch", c.chunks != nil),
		zap.Int("metadataCacheSize", cfg.cacheSize),
		zap.Bool("overlapCheck", c.overlapCheck),
	)

	return c, nil
}

func sameStore(a store.BatchStore, b store.Store) bool {
	bs, ok := b.(store.BatchStore)
	return ok && bs == a
}

// OpenGroup opens the group at path. It fails with ErrContainsArray if an
// array exists there instead, and ErrGroupNotFound if nothing does.
func (c *Client) OpenGroup(ctx context.Context, path string) (*Group, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	path, err := meta.NormalizePath(path)
	if err != nil {
		return nil, err
	}
	return c.openGroup(ctx, path)
}

func (c *Client) openGroup(ctx context.Context, path string) (*Group, error) {
	data, err := c.getMeta(ctx, meta.Key(path, meta.GroupKey))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if ok, cerr := c.exists(ctx, meta.Key(path, meta.ArrayKey)); cerr != nil {
			return nil, cerr
		} else if ok {
			return nil, fmt.Errorf("%w: %q", ErrContainsArray, path)
		}
		return nil, fmt.Errorf("%w: %q", ErrGroupNotFound, path)
	}
	if _, err := meta.ParseGroup(data); err != nil {
		return nil, fmt.Errorf("opening group %q: %w", path, err)
	}
	return &Group{client: c, path: path}, nil
}

// OpenArray opens the array at path. It fails with ErrArrayNotFound if there
// is no .zarray document there.
func (c *Client) OpenArray(ctx context.Context, path string) (*Array, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	path, err := meta.NormalizePath(path)
	if err != nil {
		return nil, err
	}
	return c.openArray(ctx, path)
}

func (c *Client) openArray(ctx context.Context, path string) (*Array, error) {
	data, err := c.getMeta(ctx, meta.Key(path, meta.ArrayKey))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrArrayNotFound, path)
		}
		return nil, err
	}
	m, err := meta.ParseArray(data)
	if err != nil {
		return nil, fmt.Errorf("opening array %q: %w", path, err)
	}
	return newArray(c, path, m)
}

// Close releases all resources associated with the client.
// After Close, the client should not be used.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	var errs []error
	if err := c.metadata.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing store: %w", err))
	}
	if c.chunkCloser != nil {
		if err := c.chunkCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing chunk store: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Store returns the storage backend used by this client.
func (c *Client) Store() store.Store {
	return c.store
}

// CacheStats returns metadata cache statistics.
func (c *Client) CacheStats() cachedstore.Stats {
	return c.metadata.Stats()
}

// getMeta reads a metadata document through the cache.
func (c *Client) getMeta(ctx context.Context, key string) ([]byte, error) {
	return c.metadata.Get(ctx, key)
}

// exists reports whether a metadata document can be read.
func (c *Client) exists(ctx context.Context, key string) (bool, error) {
	_, err := c.getMeta(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// attrs reads the .zattrs document of a node. A missing document is an
// empty set of attributes.
func (c *Client) attrs(ctx context.Context, path string) (map[string]any, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	data, err := c.getMeta(ctx, meta.Key(path, meta.AttributesKey))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	attrs, err := meta.ParseAttributes(data)
	if err != nil {
		return nil, err
	}
	return attrs, nil
}

// chunkGetter returns the point capability used for sequential chunk reads.
func (c *Client) chunkGetter() pointGetter {
	if g, ok := c.chunks.(pointGetter); ok {
		return g
	}
	return c.store
}
