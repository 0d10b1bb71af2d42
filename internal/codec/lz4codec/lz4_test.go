package lz4codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"

	"github.com/discochess/azarr/internal/codec"
)

func TestCodec_ID(t *testing.T) {
	if got := New().ID(); got != "lz4" {
		t.Errorf("ID() = %q, want %q", got, "lz4")
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	random := make([]byte, 3000)
	rng.Read(random)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"short", []byte("abc")},
		{"repetitive", bytes.Repeat([]byte("ABCDEFGHIJ"), 10000)},
		{"incompressible", random},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := codec.Encode(New(), tt.data)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if got := binary.LittleEndian.Uint32(frame); int(got) != len(tt.data) {
				t.Errorf("header size = %d, want %d", got, len(tt.data))
			}
			got, err := codec.Decode(New(), frame)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), len(tt.data))
			}
		})
	}
}

func TestCodec_Corrupt(t *testing.T) {
	for _, frame := range [][]byte{{1, 2}, {10, 0, 0, 0, 0x10, 'a'}} {
		if _, err := codec.Decode(New(), frame); !errors.Is(err, ErrCorrupt) {
			t.Errorf("Decode(%v) error = %v, want ErrCorrupt", frame, err)
		}
	}
}
