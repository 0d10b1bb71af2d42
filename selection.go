package azarr

import "github.com/discochess/azarr/internal/indexer"

// Selector selects along one dimension: a single index, which removes the
// dimension from the result, or a slice with optional bounds and a positive
// step. Negative indices and bounds count from the end, as in Python.
type Selector = indexer.Selection

// Index selects one position. Negative values count from the end.
func Index(i int) Selector { return indexer.Index(i) }

// All selects a whole dimension.
func All() Selector { return indexer.All() }

// Slice selects [start, stop).
func Slice(start, stop int) Selector { return indexer.Slice(start, stop) }

// SliceStep selects [start, stop) with a positive step.
func SliceStep(start, stop, step int) Selector { return indexer.SliceStep(start, stop, step) }

// From selects [start, end).
func From(start int) Selector { return indexer.From(start) }

// To selects [0, stop).
func To(stop int) Selector { return indexer.To(stop) }

// ParseSelection parses a comma separated selection such as "3:7,::2,5".
// Surrounding brackets are ignored.
func ParseSelection(s string) ([]Selector, error) {
	return indexer.Parse(s)
}
