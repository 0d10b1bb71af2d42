// Package memoryazarrfx provides an fx module for an in-memory azarr client.
// Useful for testing.
package memoryazarrfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/azarr"
	"github.com/discochess/azarr/internal/stats"
	"github.com/discochess/azarr/internal/stats/logger"
	"github.com/discochess/azarr/internal/store/memstore"
)

// Module provides an in-memory azarr client for testing. Chunk reads go
// through the concurrent batch fetcher.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("memoryazarr",
	fx.Provide(
		newStatsCollector,
		newMemStore,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("azarr.stats"))
}

func newMemStore() *memstore.Store {
	return memstore.New()
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Store     *memstore.Store
	Lifecycle fx.Lifecycle
}

// Result holds the provided client.
type Result struct {
	fx.Out

	Client *azarr.Client
}

func newClient(p Params) (Result, error) {
	client, err := azarr.New(
		azarr.WithStore(p.Store),
		azarr.WithBatchFetch(0),
		azarr.WithStats(p.Collector),
		azarr.WithLogger(p.Logger),
	)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if lc, ok := p.Collector.(*logger.Collector); ok {
				lc.Summary()
			}
			return client.Close()
		},
	})

	return Result{Client: client}, nil
}
