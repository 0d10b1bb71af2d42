package fetch

import (
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/discochess/azarr/internal/stats"
)

// DefaultConcurrency is the number of fetches in flight per batch when no
// limit is configured.
const DefaultConcurrency = 64

// Option configures a Fetcher.
type Option interface {
	apply(*options)
}

type options struct {
	concurrency int
	limiter     *rate.Limiter
	logger      *zap.Logger
	stats       stats.Collector
}

func defaultOptions() options {
	return options{
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
		stats:       stats.NewNoop(),
	}
}

type optionFunc func(*options)

var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithConcurrency bounds the fetches in flight per batch.
// Zero or less means unbounded.
func WithConcurrency(n int) Option {
	return optionFunc(func(o *options) {
		o.concurrency = n
	})
}

// WithRateLimit gates every request on l.
func WithRateLimit(l *rate.Limiter) Option {
	return optionFunc(func(o *options) {
		o.limiter = l
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		if l != nil {
			o.logger = l
		}
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = stats.OrNoop(c)
	})
}
