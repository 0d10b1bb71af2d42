// Package lz4codec provides an LZ4 block codec in numcodecs framing: a
// 4-byte little-endian uncompressed size followed by one LZ4 block.
package lz4codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/discochess/azarr/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

const headerSize = 4

// ErrCorrupt is returned for frames that do not decode to their declared size.
var ErrCorrupt = errors.New("lz4codec: corrupt frame")

// Codec implements LZ4 compression.
type Codec struct{}

// New returns a new LZ4 codec.
func New() *Codec {
	return &Codec{}
}

// Reader reads the whole frame from r and returns the decompressed data.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	frame, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data, err := decompress(frame)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Writer buffers everything written and emits one frame to w on Close.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return &frameWriter{w: w}, nil
}

// ID returns "lz4".
func (c *Codec) ID() string {
	return "lz4"
}

func decompress(frame []byte) ([]byte, error) {
	if len(frame) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(frame))
	}
	size := binary.LittleEndian.Uint32(frame)
	out := make([]byte, size)
	if size == 0 {
		return out, nil
	}
	n, err := lz4.UncompressBlock(frame[headerSize:], out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if n != int(size) {
		return nil, fmt.Errorf("%w: decoded %d bytes, header says %d", ErrCorrupt, n, size)
	}
	return out, nil
}

func compress(data []byte) ([]byte, error) {
	frame := make([]byte, headerSize+lz4.CompressBlockBound(len(data)))
	binary.LittleEndian.PutUint32(frame, uint32(len(data)))
	if len(data) == 0 {
		return frame[:headerSize], nil
	}

	n, err := lz4.CompressBlock(data, frame[headerSize:], nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// incompressible: emit a literal-only block
		return appendLiterals(frame[:headerSize], data), nil
	}
	return frame[:headerSize+n], nil
}

// appendLiterals encodes data as a single LZ4 sequence with no match.
func appendLiterals(dst, data []byte) []byte {
	n := len(data)
	if n < 15 {
		dst = append(dst, byte(n<<4))
	} else {
		dst = append(dst, 0xF0)
		rest := n - 15
		for rest >= 255 {
			dst = append(dst, 255)
			rest -= 255
		}
		dst = append(dst, byte(rest))
	}
	return append(dst, data...)
}

type frameWriter struct {
	w      io.Writer
	buf    bytes.Buffer
	closed bool
}

func (f *frameWriter) Write(p []byte) (int, error) {
	if f.closed {
		return 0, errors.New("lz4codec: write after close")
	}
	return f.buf.Write(p)
}

func (f *frameWriter) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	frame, err := compress(f.buf.Bytes())
	if err != nil {
		return err
	}
	_, err = f.w.Write(frame)
	return err
}
