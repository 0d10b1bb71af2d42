// Package httpazarrfx provides an fx module for an azarr client reading from
// an HTTP endpoint.
package httpazarrfx

import (
	"context"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/azarr"
	"github.com/discochess/azarr/internal/stats"
	"github.com/discochess/azarr/internal/stats/logger"
	"github.com/discochess/azarr/internal/stats/prometheus"
	"github.com/discochess/azarr/internal/store/httpstore"
)

// Config holds configuration for the HTTP-backed client.
type Config struct {
	// URL is the prefix chunk and metadata keys are appended to.
	URL string

	// Concurrency bounds the chunk fetches in flight per read.
	// Default is 64.
	Concurrency int

	// Timeout bounds each request. Default is 5 minutes.
	Timeout time.Duration

	// MetadataCacheSize is the number of metadata documents to cache.
	// Default is 128.
	MetadataCacheSize int

	// OverlapCheck fails reads whose chunks write the same element twice.
	OverlapCheck bool

	// Name is added to the client's metrics as the "client" label, so that
	// several clients can share one registry.
	Name string
}

// Module provides an HTTP-backed azarr client.
// Requires a *zap.Logger and a Config to be provided. If a
// prometheus.Registerer is provided, metrics are registered with it;
// otherwise they are logged at debug level and their totals are logged
// when the app stops.
var Module = fx.Module("httpazarr",
	fx.Provide(
		newStatsCollector,
		newClient,
	),
)

// StatsParams holds dependencies for creating the stats collector.
type StatsParams struct {
	fx.In

	Config     Config
	Logger     *zap.Logger
	Registerer promclient.Registerer `optional:"true"`
}

func newStatsCollector(p StatsParams) stats.Collector {
	if p.Registerer != nil {
		var labels promclient.Labels
		if p.Config.Name != "" {
			labels = promclient.Labels{"client": p.Config.Name}
		}
		return prometheus.NewWithLabels(p.Registerer, labels)
	}
	return logger.New(p.Logger.Named("azarr.stats"))
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided client.
type Result struct {
	fx.Out

	Client *azarr.Client
}

func newClient(p Params) (Result, error) {
	httpOpts := []httpstore.Option{}
	if p.Config.Concurrency != 0 {
		httpOpts = append(httpOpts, httpstore.WithConcurrency(p.Config.Concurrency))
	}
	if p.Config.Timeout > 0 {
		httpOpts = append(httpOpts, httpstore.WithTimeout(p.Config.Timeout))
	}

	opts := []azarr.Option{
		azarr.WithURL(p.Config.URL, httpOpts...),
		azarr.WithStats(p.Collector),
		azarr.WithLogger(p.Logger),
		azarr.WithOverlapCheck(p.Config.OverlapCheck),
	}
	if p.Config.MetadataCacheSize > 0 {
		opts = append(opts, azarr.WithMetadataCacheSize(p.Config.MetadataCacheSize))
	}

	client, err := azarr.New(opts...)
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
