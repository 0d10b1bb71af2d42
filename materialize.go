package azarr

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/discochess/azarr/internal/chunk"
	"github.com/discochess/azarr/internal/indexer"
	"github.com/discochess/azarr/internal/ndarray"
	"github.com/discochess/azarr/internal/stats"
)

// materializer writes chunk tasks into an output array. Each task is either
// decoded and copied, or filled.
type materializer struct {
	out      *ndarray.Array
	decoder  *chunk.Decoder
	dropAxes []int
	// spans project source elements onto the output element type; nil
	// copies whole elements.
	spans []ndarray.Span
	// fill is the output element written for absent chunks; nil leaves
	// their regions untouched.
	fill  []byte
	seen  *roaring.Bitmap
	stats stats.Collector

	// track records the output regions written, for outputs that are
	// copied out after the read.
	track   bool
	written [][]ndarray.Range
}

func newMaterializer(out *ndarray.Array, decoder *chunk.Decoder, plan *indexer.Plan, spans []ndarray.Span, fill []byte, overlapCheck bool, c stats.Collector) (*materializer, error) {
	m := &materializer{
		out:      out,
		decoder:  decoder,
		dropAxes: plan.DropAxes,
		spans:    spans,
		fill:     fill,
		stats:    c,
	}
	if overlapCheck {
		if uint64(out.Len()) > math.MaxUint32 {
			return nil, fmt.Errorf("azarr: overlap check supports at most %d output elements", uint64(math.MaxUint32))
		}
		m.seen = roaring.New()
	}
	return m, nil
}

// present decodes data and copies the task's chunk region into the output.
func (m *materializer) present(task indexer.ChunkTask, key string, data []byte) error {
	if err := m.claim(task); err != nil {
		return err
	}
	arr, err := m.decoder.Decode(key, data)
	if err != nil {
		return err
	}
	if err := ndarray.Copy(m.out, task.OutSel, arr, task.ChunkSel, m.dropAxes, m.spans); err != nil {
		return fmt.Errorf("copying chunk %q: %w", key, err)
	}
	m.wrote(task)
	m.stats.IncCounter(stats.MetricChunksDecoded, 1)
	return nil
}

// absent writes the fill value into the task's output region.
func (m *materializer) absent(task indexer.ChunkTask) error {
	if err := m.claim(task); err != nil {
		return err
	}
	if m.fill == nil {
		return nil
	}
	if err := ndarray.Fill(m.out, task.OutSel, m.fill); err != nil {
		return fmt.Errorf("filling chunk %v: %w", task.Coords, err)
	}
	m.wrote(task)
	m.stats.IncCounter(stats.MetricChunksFilled, 1)
	return nil
}

func (m *materializer) wrote(task indexer.ChunkTask) {
	if m.track {
		m.written = append(m.written, task.OutSel)
	}
}

// claim records the task's output elements when the overlap check is on.
func (m *materializer) claim(task indexer.ChunkTask) error {
	if m.seen == nil {
		return nil
	}
	overlap := -1
	err := m.out.Walk(task.OutSel, func(off int) {
		if !m.seen.CheckedAdd(uint32(off)) && overlap < 0 {
			overlap = off
		}
	})
	if err != nil {
		return err
	}
	if overlap >= 0 {
		return fmt.Errorf("%w: chunk %v rewrites output element %v", ErrOverlap, task.Coords, m.out.Index(overlap))
	}
	return nil
}

// projection returns the spans that copy the selected fields of a source
// element into an output element, and the fill value projected the same way.
func projection(src []fieldLayout, fill []byte) ([]ndarray.Span, []byte) {
	if len(src) == 0 {
		return nil, fill
	}
	spans := make([]ndarray.Span, len(src))
	size := 0
	for i, f := range src {
		spans[i] = ndarray.Span{SrcOffset: f.srcOffset, DstOffset: f.dstOffset, Len: f.size}
		size = max(size, f.dstOffset+f.size)
	}
	if fill == nil {
		return spans, nil
	}
	projected := make([]byte, size)
	for _, sp := range spans {
		copy(projected[sp.DstOffset:sp.DstOffset+sp.Len], fill[sp.SrcOffset:sp.SrcOffset+sp.Len])
	}
	return spans, projected
}

// fieldLayout places one selected field in the source and output elements.
type fieldLayout struct {
	srcOffset int
	dstOffset int
	size      int
}
