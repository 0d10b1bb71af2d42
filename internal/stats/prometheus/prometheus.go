// Package prometheus provides a Prometheus-based stats collector.
package prometheus

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/discochess/azarr/internal/stats"
)

// Buckets used for histograms the library knows about. Other histograms get
// prometheus.DefBuckets.
var buckets = map[string][]float64{
	stats.MetricFetchBatchSize:    prometheus.ExponentialBuckets(1, 4, 8),
	stats.MetricFetchBatchSeconds: prometheus.ExponentialBuckets(0.005, 2, 12),
}

// Collector implements stats.Collector using Prometheus metrics created on
// first use.
type Collector struct {
	registry prometheus.Registerer

	mu         sync.RWMutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a new Prometheus collector.
// If registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer) *Collector {
	return NewWithLabels(registry, nil)
}

// NewWithLabels creates a collector whose metrics all carry labels. Clients
// sharing a registry tell their series apart this way.
func NewWithLabels(registry prometheus.Registerer, labels prometheus.Labels) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	if len(labels) > 0 {
		registry = prometheus.WrapRegistererWith(labels, registry)
	}
	return &Collector{
		registry:   registry,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// IncCounter increments a counter metric.
func (c *Collector) IncCounter(name string, delta int64) {
	counter := getOrCreate(c, c.counters, name, func() prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: stats.Help(name)})
	})
	counter.Add(float64(delta))
}

// SetGauge sets a gauge metric.
func (c *Collector) SetGauge(name string, value int64) {
	gauge := getOrCreate(c, c.gauges, name, func() prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: stats.Help(name)})
	})
	gauge.Set(float64(value))
}

// ObserveHistogram records a value in a histogram.
func (c *Collector) ObserveHistogram(name string, value float64) {
	histogram := getOrCreate(c, c.histograms, name, func() prometheus.Histogram {
		b, ok := buckets[name]
		if !ok {
			b = prometheus.DefBuckets
		}
		return prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: stats.Help(name), Buckets: b})
	})
	histogram.Observe(value)
}

// getOrCreate returns the metric cached under name, creating and registering
// it on first use. A metric already registered elsewhere under the same name
// is adopted.
func getOrCreate[M prometheus.Collector](c *Collector, cache map[string]M, name string, create func() M) M {
	c.mu.RLock()
	m, ok := cache[name]
	c.mu.RUnlock()
	if ok {
		return m
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok = cache[name]; ok {
		return m
	}

	m = create()
	if err := c.registry.Register(m); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(M); ok {
				m = existing
			}
		}
		// Otherwise keep the unregistered metric; observations still work.
	}
	cache[name] = m
	return m
}
