// Package cachedstore caches zarr metadata lookups in front of a Store.
//
// Metadata documents are immutable for a reader, and opening a node probes
// several of them (.zgroup, .zarray, .zattrs), most of which may not exist.
// Both outcomes are cached: the document bytes, or the fact that the store
// answered that there is no such document. Chunk bytes pass through
// uncached.
package cachedstore

// Entry is the cached outcome of one metadata lookup.
type Entry struct {
	// Data is the document. It is nil when Absent is set.
	Data []byte
	// Absent records that the store has no document under the key.
	Absent bool
}

// Backend holds cached entries and decides what to evict.
type Backend interface {
	// Get returns the entry for key and whether there is one.
	Get(key string) (Entry, bool)

	// Set caches the entry for key.
	Set(key string, e Entry)

	Stats() Stats
}

// Stats counts cache lookups.
type Stats struct {
	Hits   int64
	Misses int64
	// Size is the number of cached entries, absent ones included.
	Size int
}

// HitRate returns hits as a percentage of all lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}
