// Package cachestrategy defines how cached metadata entries are evicted.
package cachestrategy

import "github.com/discochess/azarr/internal/store/cachedstore"

// Strategy stores entries up to some bound. Implementations must be safe
// for concurrent use.
type Strategy interface {
	Get(key string) (cachedstore.Entry, bool)
	// Add stores e and reports whether another entry was evicted for it.
	Add(key string, e cachedstore.Entry) bool
	Len() int
}
