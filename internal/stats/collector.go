// Package stats provides a unified interface for collecting metrics.
package stats

import "time"

// Metric names used throughout the library.
const (
	// Read metrics.
	MetricReads         = "azarr_reads_total"
	MetricChunksDecoded = "azarr_chunks_decoded_total"
	MetricChunksFilled  = "azarr_chunks_filled_total"

	// Fetch metrics.
	MetricChunkFetches       = "azarr_chunk_fetches_total"
	MetricChunkFetchFailures = "azarr_chunk_fetch_failures_total"
	MetricFetchBatchSize     = "azarr_fetch_batch_size"
	MetricFetchBatchSeconds  = "azarr_fetch_batch_seconds"

	// Metadata cache metrics.
	MetricCacheHits   = "azarr_metadata_cache_hits_total"
	MetricCacheMisses = "azarr_metadata_cache_misses_total"
	MetricCacheSize   = "azarr_metadata_cache_size"
)

var help = map[string]string{
	MetricReads:              "Array reads started.",
	MetricChunksDecoded:      "Chunks decoded and copied into an output buffer.",
	MetricChunksFilled:       "Chunk regions written with the fill value because the chunk was absent.",
	MetricChunkFetches:       "Chunk fetches attempted.",
	MetricChunkFetchFailures: "Chunk fetches that failed or found no object.",
	MetricFetchBatchSize:     "Distinct keys per fetch batch.",
	MetricFetchBatchSeconds:  "Wall time of a fetch batch.",
	MetricCacheHits:          "Metadata cache hits.",
	MetricCacheMisses:        "Metadata cache misses.",
	MetricCacheSize:          "Metadata documents held in the cache.",
}

// Help returns the description of a metric, or its name if it has none.
func Help(name string) string {
	if h, ok := help[name]; ok {
		return h
	}
	return name
}

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}

// ObserveSince records the seconds elapsed since start.
func ObserveSince(c Collector, name string, start time.Time) {
	c.ObserveHistogram(name, time.Since(start).Seconds())
}
