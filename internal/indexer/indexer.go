// Package indexer maps a selection over a chunked array onto the chunks it
// touches.
//
// For every chunk intersecting the selection a ChunkTask records the chunk
// coordinates, the region to read from the decoded chunk and the region of the
// output it lands in. Tasks are produced in C order of chunk coordinates and
// their output regions are pairwise disjoint.
package indexer

import (
	"errors"
	"fmt"

	"github.com/discochess/azarr/internal/ndarray"
)

// ErrIndex is returned for an integer selection outside the array bounds.
var ErrIndex = errors.New("indexer: index out of bounds")

// ChunkTask describes one chunk's contribution to a read.
type ChunkTask struct {
	// Coords are the chunk grid coordinates.
	Coords []int
	// ChunkSel selects within the decoded chunk. It has one range per array
	// dimension, including dimensions dropped by integer selections.
	ChunkSel []ndarray.Range
	// OutSel selects within the output. It has one range per output dimension.
	OutSel []ndarray.Range
}

// Plan is the result of resolving a selection against an array.
type Plan struct {
	// Shape is the output shape. Dimensions with integer selections are absent.
	Shape []int
	// DropAxes lists the array dimensions with integer selections.
	DropAxes []int
	Tasks    []ChunkTask
}

type dimProjection struct {
	chunk    int
	chunkSel ndarray.Range
	outSel   ndarray.Range
}

// New resolves sel against an array of the given shape and chunk shape.
// Missing trailing selections select whole dimensions.
func New(shape, chunks []int, sel []Selection) (*Plan, error) {
	if len(shape) != len(chunks) {
		return nil, fmt.Errorf("indexer: shape %v and chunks %v have different ranks", shape, chunks)
	}
	if len(sel) > len(shape) {
		return nil, fmt.Errorf("%w: %d selections for %d dimensions", ErrIndex, len(sel), len(shape))
	}

	p := &Plan{}
	dims := make([][]dimProjection, len(shape))
	for d := range shape {
		if chunks[d] <= 0 {
			return nil, fmt.Errorf("indexer: chunk length %d on axis %d", chunks[d], d)
		}
		s := All()
		if d < len(sel) {
			s = sel[d]
		}

		var err error
		if s.Kind == KindIndex {
			dims[d], err = projectIndex(s.Index, shape[d], chunks[d])
			p.DropAxes = append(p.DropAxes, d)
		} else {
			var n int
			dims[d], n, err = projectSlice(s, shape[d], chunks[d])
			p.Shape = append(p.Shape, n)
		}
		if err != nil {
			return nil, fmt.Errorf("axis %d: %w", d, err)
		}
	}
	if p.Shape == nil {
		p.Shape = []int{}
	}

	for _, ds := range dims {
		if len(ds) == 0 {
			return p, nil
		}
	}

	// cartesian product, last axis fastest
	counters := make([]int, len(dims))
	for {
		task := ChunkTask{
			Coords:   make([]int, len(dims)),
			ChunkSel: make([]ndarray.Range, len(dims)),
			OutSel:   make([]ndarray.Range, 0, len(p.Shape)),
		}
		for d, ds := range dims {
			proj := ds[counters[d]]
			task.Coords[d] = proj.chunk
			task.ChunkSel[d] = proj.chunkSel
			if selectionAt(sel, d).Kind != KindIndex {
				task.OutSel = append(task.OutSel, proj.outSel)
			}
		}
		p.Tasks = append(p.Tasks, task)

		axis := len(dims) - 1
		for axis >= 0 {
			counters[axis]++
			if counters[axis] < len(dims[axis]) {
				break
			}
			counters[axis] = 0
			axis--
		}
		if axis < 0 {
			return p, nil
		}
	}
}

func selectionAt(sel []Selection, d int) Selection {
	if d < len(sel) {
		return sel[d]
	}
	return All()
}

func projectIndex(i, n, cs int) ([]dimProjection, error) {
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, fmt.Errorf("%w: %d for length %d", ErrIndex, i, n)
	}
	c := i / cs
	off := i - c*cs
	return []dimProjection{{
		chunk:    c,
		chunkSel: ndarray.Range{Start: off, Stop: off + 1, Step: 1},
	}}, nil
}

func projectSlice(s Selection, n, cs int) ([]dimProjection, int, error) {
	start, stop, step, err := s.bounds(n)
	if err != nil {
		return nil, 0, err
	}
	total := ndarray.Range{Start: start, Stop: stop, Step: step}.Len()
	if total == 0 {
		return nil, 0, nil
	}

	var out []dimProjection
	for c := start / cs; c*cs < stop; c++ {
		lo := c * cs
		hi := min(lo+cs, n, stop)

		first := start
		if first < lo {
			first = start + (lo-start+step-1)/step*step
		}
		if first >= hi {
			continue
		}
		count := (hi - first + step - 1) / step
		outStart := (first - start) / step
		out = append(out, dimProjection{
			chunk:    c,
			chunkSel: ndarray.Range{Start: first - lo, Stop: hi - lo, Step: step},
			outSel:   ndarray.Range{Start: outStart, Stop: outStart + count, Step: 1},
		})
	}
	return out, total, nil
}

// ChunkGrid returns the number of chunks along each dimension.
func ChunkGrid(shape, chunks []int) []int {
	grid := make([]int, len(shape))
	for i := range shape {
		grid[i] = (shape[i] + chunks[i] - 1) / chunks[i]
	}
	return grid
}
