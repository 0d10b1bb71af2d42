package httpstore

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/discochess/azarr/internal/fetch"
	"github.com/discochess/azarr/internal/stats"
)

// DefaultTimeout bounds a single request, connection to last body byte.
const DefaultTimeout = 5 * time.Minute

// Option configures a Store.
type Option interface {
	apply(*options)
}

type options struct {
	timeout         time.Duration
	maxConnsPerHost int
	newClient       func() *http.Client
	concurrency     int
	limiter         *rate.Limiter
	header          http.Header
	logger          *zap.Logger
	stats           stats.Collector
}

func defaultOptions() options {
	return options{
		timeout:     DefaultTimeout,
		concurrency: fetch.DefaultConcurrency,
		header:      http.Header{},
		logger:      zap.NewNop(),
		stats:       stats.NewNoop(),
	}
}

type optionFunc func(*options)

var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithTimeout sets the per-request timeout. Zero disables it.
// Default is 5 minutes.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(o *options) {
		o.timeout = d
	})
}

// WithMaxConnsPerHost caps the connections the session opens per host.
// Zero means no limit.
func WithMaxConnsPerHost(n int) Option {
	return optionFunc(func(o *options) {
		o.maxConnsPerHost = n
	})
}

// WithHTTPClient sets the factory used to build the session's client. It is
// called once, when the session is created. WithTimeout and
// WithMaxConnsPerHost do not apply to clients built this way.
func WithHTTPClient(fn func() *http.Client) Option {
	return optionFunc(func(o *options) {
		o.newClient = fn
	})
}

// WithConcurrency bounds the requests in flight per batch.
// Zero or less means unbounded. Default is 64.
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

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return optionFunc(func(o *options) {
		o.header.Add(key, value)
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
