package stats

// Noop discards all metrics. It is the default collector.
type Noop struct{}

var _ Collector = Noop{}

// NewNoop returns a collector that discards everything.
func NewNoop() Collector { return Noop{} }

// OrNoop returns c, or a Noop collector if c is nil.
func OrNoop(c Collector) Collector {
	if c == nil {
		return Noop{}
	}
	return c
}

func (Noop) IncCounter(string, int64)         {}
func (Noop) SetGauge(string, int64)           {}
func (Noop) ObserveHistogram(string, float64) {}
