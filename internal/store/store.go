// Package store defines the key-addressable storage interfaces that array
// reads go through.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNotFound is returned when a key cannot be retrieved. Remote stores also
// return it for transport failures, since a read treats both as absence.
var ErrNotFound = errors.New("store: key not found")

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("store: closed")

// ErrTooLarge is returned when an object is bigger than a store's limit.
var ErrTooLarge = errors.New("store: object too large")

// Store reads whole objects by key.
type Store interface {
	// Get returns the bytes stored under key, or an error satisfying
	// errors.Is(err, ErrNotFound) if they cannot be retrieved.
	Get(ctx context.Context, key string) ([]byte, error)

	// Close releases any resources held by the store.
	Close() error
}

// BatchStore retrieves many keys in one call.
type BatchStore interface {
	// GetItems fetches keys concurrently and returns the ones that were
	// retrieved. A missing entry is the only failure signal; GetItems never
	// returns an error.
	GetItems(ctx context.Context, keys []string) map[string][]byte
}

// FetchError describes a failed point fetch. It satisfies
// errors.Is(err, ErrNotFound) whatever the cause, and unwraps to the cause.
type FetchError struct {
	Key string
	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int
	// Absent is set when the backend answered that the object does not
	// exist, as opposed to failing to answer.
	Absent bool
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store: fetching %q: status %d", e.Key, e.StatusCode)
	}
	return fmt.Sprintf("store: fetching %q: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrNotFound }

// ReadObject reads an object body. size is the length the backend reported,
// or a negative number if it is unknown. A positive limit bounds how many
// bytes are read; bodies longer than limit fail with ErrTooLarge.
func ReadObject(r io.Reader, size, limit int64) ([]byte, error) {
	if limit > 0 && size > limit {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, size, limit)
	}
	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	if limit > 0 && int64(buf.Len()) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return buf.Bytes(), nil
}
