// Package fetch retrieves a batch of keys concurrently.
//
// Every distinct key is fetched exactly once. Failures are recorded per key
// and never cancel the other fetches; the batch returns only after all of
// them have settled.
package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/discochess/azarr/internal/stats"
)

// GetFunc fetches the bytes for one key.
type GetFunc func(ctx context.Context, key string) ([]byte, error)

// Result is the outcome of fetching one key. Exactly one of Data and Err is
// meaningful.
type Result struct {
	Key  string
	Data []byte
	Err  error
}

// OK reports whether the fetch succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Fetcher runs batches of fetches.
type Fetcher struct {
	opts options
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	return &Fetcher{opts: cfg}
}

// Fetch fetches every distinct key in keys and returns one Result per key,
// in the order keys were first seen.
//
// Fetches run detached from ctx's cancellation: abandoning ctx does not stop
// requests that have already been issued or queued. ctx values are kept.
func (f *Fetcher) Fetch(ctx context.Context, keys []string, get GetFunc) []Result {
	keys = dedupe(keys)
	if len(keys) == 0 {
		return []Result{}
	}

	start := time.Now()
	ctx = context.WithoutCancel(ctx)
	results := make([]Result, len(keys))

	var g errgroup.Group
	if f.opts.concurrency > 0 {
		g.SetLimit(f.opts.concurrency)
	}
	for i, key := range keys {
		g.Go(func() error {
			results[i] = f.fetchOne(ctx, key, get)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	f.opts.stats.ObserveHistogram(stats.MetricFetchBatchSize, float64(len(keys)))
	stats.ObserveSince(f.opts.stats, stats.MetricFetchBatchSeconds, start)
	f.opts.logger.Debug("batch fetched",
		zap.Int("keys", len(keys)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, key string, get GetFunc) Result {
	f.opts.stats.IncCounter(stats.MetricChunkFetches, 1)

	var (
		data []byte
		err  error
	)
	if f.opts.limiter != nil {
		err = f.opts.limiter.Wait(ctx)
	}
	if err == nil {
		data, err = get(ctx, key)
	}
	if err != nil {
		f.opts.stats.IncCounter(stats.MetricChunkFetchFailures, 1)
		f.opts.logger.Debug("fetch failed", zap.String("key", key), zap.Error(err))
		return Result{Key: key, Err: err}
	}
	return Result{Key: key, Data: data}
}

// FetchAll fetches keys and returns the successful ones. Failed keys are
// absent from the map; FetchAll never fails as a whole.
func (f *Fetcher) FetchAll(ctx context.Context, keys []string, get GetFunc) map[string][]byte {
	return Collapse(f.Fetch(ctx, keys, get))
}

// Collapse turns per-key results into a map holding only the successes.
func Collapse(results []Result) map[string][]byte {
	out := make(map[string][]byte, len(results))
	for _, r := range results {
		if r.OK() {
			out[r.Key] = r.Data
		}
	}
	return out
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
