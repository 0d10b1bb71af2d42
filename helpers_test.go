package azarr

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/discochess/azarr/internal/chunk"
	"github.com/discochess/azarr/internal/indexer"
	"github.com/discochess/azarr/internal/meta"
	"github.com/discochess/azarr/internal/ndarray"
	"github.com/discochess/azarr/internal/store"
	"github.com/discochess/azarr/internal/store/memstore"
)

// varMeta describes a (10,) float64 array in two chunks of 5.
const varMeta = `{"zarr_format":2,"shape":[10],"chunks":[5],"dtype":"<f8",` +
	`"compressor":null,"fill_value":0.0,"order":"C","filters":null}`

// f64s encodes values as little-endian float64 bytes.
func f64s(vals ...float64) []byte {
	out := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(out[8*i:], math.Float64bits(v))
	}
	return out
}

func repeat(v float64, n int) []byte {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = v
	}
	return f64s(vals...)
}

// newFixture returns a root group holding the array "var": chunk 0 all
// zeros, chunk 1 all ones.
func newFixture(t *testing.T) *memstore.Store {
	t.Helper()
	s := memstore.New()
	s.Set(".zgroup", []byte(`{"zarr_format":2}`))
	s.Set("var/.zarray", []byte(varMeta))
	s.Set("var/0", repeat(0, 5))
	s.Set("var/1", repeat(1, 5))
	return s
}

// serve exposes a point store over HTTP, answering 404 for missing keys.
func serve(t *testing.T, s store.Store) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := s.Get(r.Context(), strings.TrimPrefix(r.URL.Path, "/"))
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// putArray stores m under path and encodes one chunk per grid position with
// value(globalIndex) for every in-bounds element.
func putArray(t *testing.T, s *memstore.Store, path string, m *meta.Array, value func(idx []int) float64) {
	t.Helper()
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	doc, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s.Set(meta.Key(path, meta.ArrayKey), doc)

	dec, err := chunk.NewDecoder(m)
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}
	grid := indexer.ChunkGrid(m.Shape, m.Chunks)
	coords := make([]int, len(grid))
	for n := 0; n < ndarray.Size(grid); n++ {
		rem := n
		for d := len(grid) - 1; d >= 0; d-- {
			coords[d] = rem % grid[d]
			rem /= grid[d]
		}

		arr := ndarray.New(m.Chunks, m.Dtype.ItemSize())
		for off := 0; off < arr.Len(); off++ {
			local := arr.Index(off)
			global := make([]int, len(local))
			inside := true
			for d := range local {
				global[d] = coords[d]*m.Chunks[d] + local[d]
				inside = inside && global[d] < m.Shape[d]
			}
			if !inside {
				continue
			}
			b, err := m.Dtype.EncodeValue(value(global))
			if err != nil {
				t.Fatalf("EncodeValue() error = %v", err)
			}
			item, _ := arr.Item(local...)
			copy(item, b)
		}

		data, err := dec.Encode(arr)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		s.Set(meta.Key(path, m.KeyStrategy().Key(coords)), data)
	}
}

func openVar(t *testing.T, opts ...Option) (*Client, *Array) {
	t.Helper()
	c, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	arr, err := c.OpenArray(context.Background(), "var")
	if err != nil {
		t.Fatalf("OpenArray() error = %v", err)
	}
	return c, arr
}

func readFloats(t *testing.T, arr *Array, sel ...Selector) []float64 {
	t.Helper()
	v, err := arr.Get(context.Background(), sel...)
	if err != nil {
		t.Fatalf("Get(%v) error = %v", sel, err)
	}
	buf, ok := v.(*Buffer)
	if !ok {
		t.Fatalf("Get(%v) = %T, want *Buffer", sel, v)
	}
	got, err := buf.Float64s()
	if err != nil {
		t.Fatalf("Float64s() error = %v", err)
	}
	return got
}
