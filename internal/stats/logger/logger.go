// Package logger provides a zap-based stats collector for deployments
// without a metrics backend.
//
// A read reports one counter increment per chunk, so the per-observation
// entries are meant for debugging. The collector also keeps running totals
// and Summary logs them as one entry, which is what the fx modules do when
// a client stops.
package logger

import (
	"slices"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/discochess/azarr/internal/stats"
)

var _ stats.Collector = (*Collector)(nil)

// Collector implements stats.Collector by logging each observation and
// accumulating totals.
type Collector struct {
	logger *zap.Logger
	level  zapcore.Level

	mu         sync.Mutex
	counters   map[string]int64
	gauges     map[string]int64
	histograms map[string]histogram
}

type histogram struct {
	count int64
	sum   float64
}

// New creates a collector logging observations at debug level under the
// "stats" name. If logger is nil, a no-op logger is used.
func New(logger *zap.Logger) *Collector {
	return NewLevel(logger, zapcore.DebugLevel)
}

// NewLevel creates a collector logging observations at level.
func NewLevel(logger *zap.Logger, level zapcore.Level) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		logger:     logger.Named("stats"),
		level:      level,
		counters:   make(map[string]int64),
		gauges:     make(map[string]int64),
		histograms: make(map[string]histogram),
	}
}

func (c *Collector) IncCounter(name string, delta int64) {
	c.mu.Lock()
	c.counters[name] += delta
	total := c.counters[name]
	c.mu.Unlock()

	if ce := c.logger.Check(c.level, "counter"); ce != nil {
		ce.Write(zap.String("metric", name), zap.Int64("delta", delta), zap.Int64("total", total))
	}
}

func (c *Collector) SetGauge(name string, value int64) {
	c.mu.Lock()
	c.gauges[name] = value
	c.mu.Unlock()

	if ce := c.logger.Check(c.level, "gauge"); ce != nil {
		ce.Write(zap.String("metric", name), zap.Int64("value", value))
	}
}

func (c *Collector) ObserveHistogram(name string, value float64) {
	c.mu.Lock()
	h := c.histograms[name]
	h.count++
	h.sum += value
	c.histograms[name] = h
	c.mu.Unlock()

	if ce := c.logger.Check(c.level, "histogram"); ce != nil {
		ce.Write(zap.String("metric", name), zap.Float64("value", value), zap.Int64("count", h.count))
	}
}

// Counter returns the running total of a counter.
func (c *Collector) Counter(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[name]
}

// Summary logs every total seen so far as one info entry. Histograms are
// reported as a count and a mean.
func (c *Collector) Summary() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var fields []zap.Field
	for _, name := range sortedKeys(c.counters) {
		fields = append(fields, zap.Int64(name, c.counters[name]))
	}
	for _, name := range sortedKeys(c.gauges) {
		fields = append(fields, zap.Int64(name, c.gauges[name]))
	}
	for _, name := range sortedKeys(c.histograms) {
		h := c.histograms[name]
		fields = append(fields,
			zap.Int64(name+"_count", h.count),
			zap.Float64(name+"_mean", h.sum/float64(h.count)),
		)
	}
	c.logger.Info("totals", fields...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
