// Package chunk decodes stored chunk bytes into dense arrays.
package chunk

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/discochess/azarr/internal/codec"
	"github.com/discochess/azarr/internal/codec/gzipcodec"
	"github.com/discochess/azarr/internal/codec/lz4codec"
	"github.com/discochess/azarr/internal/codec/noopcodec"
	"github.com/discochess/azarr/internal/codec/zlibcodec"
	"github.com/discochess/azarr/internal/codec/zstdcodec"
	"github.com/discochess/azarr/internal/meta"
	"github.com/discochess/azarr/internal/ndarray"
)

// ErrDecode is returned when chunk bytes cannot be decoded.
var ErrDecode = errors.New("chunk: decode failed")

// ErrUnknownCompressor is returned for compressor ids without a codec.
var ErrUnknownCompressor = errors.New("chunk: unknown compressor")

// DecodeError records which chunk failed to decode.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("chunk: decoding %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// CodecFor returns the codec for a compressor id. The empty id means
// uncompressed chunks.
func CodecFor(c *meta.Compressor) (codec.Codec, error) {
	if c == nil {
		return noopcodec.New(), nil
	}
	switch c.ID {
	case "zstd":
		if level, ok := intConfig(c.Config, "level"); ok {
			return zstdcodec.NewLevel(level), nil
		}
		return zstdcodec.New(), nil
	case "gzip":
		if level, ok := intConfig(c.Config, "level"); ok {
			return gzipcodec.NewLevel(level), nil
		}
		return gzipcodec.New(), nil
	case "zlib":
		if level, ok := intConfig(c.Config, "level"); ok {
			return zlibcodec.NewLevel(level), nil
		}
		return zlibcodec.New(), nil
	case "lz4":
		return lz4codec.New(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCompressor, c.ID)
}

func intConfig(cfg map[string]any, name string) (int, bool) {
	switch v := cfg[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

// Decoder turns the stored bytes of one chunk into a C-ordered array of the
// array's full chunk shape.
type Decoder struct {
	codec    codec.Codec
	shape    []int
	itemSize int
	fortran  bool
}

// NewDecoder returns a decoder for chunks of the given array.
func NewDecoder(a *meta.Array) (*Decoder, error) {
	c, err := CodecFor(a.Compressor)
	if err != nil {
		return nil, err
	}
	return &Decoder{
		codec:    c,
		shape:    append([]int(nil), a.Chunks...),
		itemSize: a.Dtype.ItemSize(),
		fortran:  a.Order == "F",
	}, nil
}

// Codec returns the decoder's compressor.
func (d *Decoder) Codec() codec.Codec { return d.codec }

// Decode decompresses data and reshapes it. Errors satisfy
// errors.Is(err, ErrDecode).
func (d *Decoder) Decode(key string, data []byte) (*ndarray.Array, error) {
	raw, err := codec.Decode(d.codec, data)
	if err != nil {
		return nil, &DecodeError{Key: key, Err: err}
	}

	var arr *ndarray.Array
	if d.fortran {
		arr, err = ndarray.FromFortran(d.shape, d.itemSize, raw)
	} else {
		arr, err = ndarray.FromBytes(d.shape, d.itemSize, raw)
	}
	if err != nil {
		return nil, &DecodeError{Key: key, Err: err}
	}
	return arr, nil
}

// Encode compresses a C-ordered chunk for storage. It is the inverse of
// Decode and is used to build fixtures.
func (d *Decoder) Encode(arr *ndarray.Array) ([]byte, error) {
	data := arr.Bytes()
	if d.fortran {
		data = toFortran(arr)
	}
	return codec.Encode(d.codec, data)
}

func toFortran(arr *ndarray.Array) []byte {
	shape := arr.Shape()
	n := ndarray.Size(shape)
	itemSize := arr.ItemSize()
	out := make([]byte, 0, n*itemSize)
	idx := make([]int, len(shape))
	for i := 0; i < n; i++ {
		item, _ := arr.Item(idx...)
		out = append(out, item...)
		// first axis fastest
		for ax := 0; ax < len(idx); ax++ {
			idx[ax]++
			if idx[ax] < shape[ax] {
				break
			}
			idx[ax] = 0
		}
	}
	return out
}
