package azarr

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/discochess/azarr/internal/chunk"
	"github.com/discochess/azarr/internal/chunkkey"
	"github.com/discochess/azarr/internal/dtype"
	"github.com/discochess/azarr/internal/indexer"
	"github.com/discochess/azarr/internal/meta"
	"github.com/discochess/azarr/internal/stats"
	"github.com/discochess/azarr/internal/store"
)

// Array is an opened zarr array. An Array is safe for concurrent use.
type Array struct {
	client  *Client
	path    string
	meta    *meta.Array
	fill    []byte
	keys    chunkkey.Strategy
	decoder *chunk.Decoder
}

func newArray(c *Client, path string, m *meta.Array) (*Array, error) {
	decoder, err := chunk.NewDecoder(m)
	if err != nil {
		return nil, fmt.Errorf("opening array %q: %w", path, err)
	}
	fill, err := m.Fill()
	if err != nil {
		return nil, fmt.Errorf("opening array %q: %w", path, err)
	}
	return &Array{
		client:  c,
		path:    path,
		meta:    m,
		fill:    fill,
		keys:    m.KeyStrategy(),
		decoder: decoder,
	}, nil
}

// Path returns the array's path within the store. The root is "".
func (a *Array) Path() string { return a.path }

// Name returns the last element of the array's path.
func (a *Array) Name() string { return baseName(a.path) }

// Shape returns a copy of the array's shape.
func (a *Array) Shape() []int { return slices.Clone(a.meta.Shape) }

// Chunks returns a copy of the chunk shape.
func (a *Array) Chunks() []int { return slices.Clone(a.meta.Chunks) }

// NDim returns the number of dimensions.
func (a *Array) NDim() int { return len(a.meta.Shape) }

// Dtype returns the element type string.
func (a *Array) Dtype() string { return a.meta.Dtype.String() }

// Order returns the chunk memory layout, "C" or "F".
func (a *Array) Order() string { return a.meta.Order }

// Compressor returns the compressor id, or "" for uncompressed chunks.
func (a *Array) Compressor() string { return a.meta.CompressorID() }

// FillValue returns the fill value as an element value, or nil if the array
// has none.
func (a *Array) FillValue() any {
	if a.fill == nil {
		return nil
	}
	v, err := a.meta.Dtype.Decode(a.fill)
	if err != nil {
		return nil
	}
	return v
}

// NChunks returns the number of chunks in the array's grid.
func (a *Array) NChunks() int { return a.meta.NChunks() }

// Attrs returns the array's user attributes.
func (a *Array) Attrs(ctx context.Context) (map[string]any, error) {
	return a.client.attrs(ctx, a.path)
}

// ChunkKey returns the storage key of the chunk at coords.
func (a *Array) ChunkKey(coords []int) string {
	return chunkkey.Join(a.path, a.keys.Key(coords))
}

// ChunkKeys returns the storage keys a read of sel would fetch, in the
// order they would be requested.
func (a *Array) ChunkKeys(sel ...Selector) ([]string, error) {
	plan, err := indexer.New(a.meta.Shape, a.meta.Chunks, sel)
	if err != nil {
		return nil, err
	}
	return a.taskKeys(plan), nil
}

// Request describes one read.
type Request struct {
	// Selection selects along the leading dimensions. Missing trailing
	// selectors select whole dimensions.
	Selection []Selector

	// Fields selects members of a structured element type. A single field
	// reads that member's type; several read a packed structured type.
	Fields []string

	// Out receives the result. If nil a Buffer is allocated. A Buffer must
	// match the selection's shape and element size exactly.
	Out ElementSetter
}

// Get reads sel. See Read.
func (a *Array) Get(ctx context.Context, sel ...Selector) (any, error) {
	return a.Read(ctx, Request{Selection: sel})
}

// Read reads a selection of the array.
//
// Every chunk the selection touches is fetched; with a batch store all of
// them are fetched concurrently as one batch. Chunks that cannot be fetched
// are replaced by the fill value. A chunk that is fetched but cannot be
// decoded fails the read with ErrDecode.
//
// The result is the single element if the selection has an empty shape,
// otherwise req.Out, or a new *Buffer if req.Out is nil.
func (a *Array) Read(ctx context.Context, req Request) (any, error) {
	if a.client.closed.Load() {
		return nil, ErrClosed
	}
	a.client.stats.IncCounter(stats.MetricReads, 1)

	outType, layout, err := a.outputType(req.Fields)
	if err != nil {
		return nil, err
	}

	plan, err := indexer.New(a.meta.Shape, a.meta.Chunks, req.Selection)
	if err != nil {
		return nil, err
	}

	asm, err := assemble(plan.Shape, outType, req.Out)
	if err != nil {
		return nil, err
	}

	spans, fill := projection(layout, a.fill)
	m, err := newMaterializer(asm.buf.arr, a.decoder, plan, spans, fill, a.client.overlapCheck, a.client.stats)
	if err != nil {
		return nil, err
	}
	m.track = asm.setter != nil

	if a.client.chunks != nil && !slices.Contains(a.meta.Shape, 0) {
		err = a.readBatch(ctx, plan, m)
	} else {
		err = a.readSequential(ctx, plan, m)
	}
	if err != nil {
		return nil, err
	}

	return asm.finish(m.written)
}

// readBatch fetches every task's chunk in one batch, then materializes the
// tasks in plan order.
func (a *Array) readBatch(ctx context.Context, plan *indexer.Plan, m *materializer) error {
	keys := a.taskKeys(plan)
	found := a.client.chunks.GetItems(ctx, keys)

	a.client.logger.Debug("chunks fetched",
		zap.String("array", a.path),
		zap.Int("requested", len(keys)),
		zap.Int("found", len(found)),
	)

	for i, task := range plan.Tasks {
		data, ok := found[keys[i]]
		if !ok {
			if err := m.absent(task); err != nil {
				return err
			}
			continue
		}
		if err := m.present(task, keys[i], data); err != nil {
			return err
		}
	}
	return nil
}

// readSequential fetches one chunk at a time. A chunk that is not found is
// filled; any other error fails the read.
func (a *Array) readSequential(ctx context.Context, plan *indexer.Plan, m *materializer) error {
	get := a.client.chunkGetter()
	for _, task := range plan.Tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := a.ChunkKey(task.Coords)
		data, err := get.Get(ctx, key)
		switch {
		case err == nil:
			err = m.present(task, key, data)
		case errors.Is(err, store.ErrNotFound):
			a.client.logger.Debug("chunk not found", zap.String("key", key), zap.Error(err))
			err = m.absent(task)
		default:
			return fmt.Errorf("reading chunk %q: %w", key, err)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Array) taskKeys(plan *indexer.Plan) []string {
	keys := make([]string, len(plan.Tasks))
	for i, task := range plan.Tasks {
		keys[i] = a.ChunkKey(task.Coords)
	}
	return keys
}

// outputType returns the element type of a read of fields and, for a field
// subset, where each field sits in the source and output elements.
func (a *Array) outputType(fields []string) (dtype.Type, []fieldLayout, error) {
	if len(fields) == 0 {
		return a.meta.Dtype, nil, nil
	}
	sub, src, err := a.meta.Dtype.Project(fields)
	if err != nil {
		return dtype.Type{}, nil, err
	}
	layout := make([]fieldLayout, len(src))
	for i, f := range src {
		layout[i] = fieldLayout{srcOffset: f.Offset, size: f.Type.ItemSize()}
		if sub.IsStructured() {
			layout[i].dstOffset = sub.Fields[i].Offset
		}
	}
	return sub, layout, nil
}
