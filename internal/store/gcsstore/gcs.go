// Package gcsstore reads zarr keys from objects in a Google Cloud Storage
// bucket.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/discochess/azarr/internal/store"
)

var _ store.Store = (*Store)(nil)

// openFunc opens an object and reports its size, or -1 if unknown.
type openFunc func(ctx context.Context, name string) (io.ReadCloser, int64, error)

// Store reads the objects below a prefix of one bucket.
type Store struct {
	client  *storage.Client
	open    openFunc
	prefix  string
	maxSize int64
}

type settings struct {
	prefix      string
	anonymous   bool
	userProject string
	maxSize     int64
}

// Option configures a Store.
type Option func(*settings)

// WithPrefix sets the key prefix, normally the path of the zarr hierarchy
// inside the bucket.
func WithPrefix(prefix string) Option {
	return func(s *settings) {
		s.prefix = strings.Trim(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

// WithAnonymous reads without credentials. Public buckets allow this.
func WithAnonymous(anonymous bool) Option {
	return func(s *settings) {
		s.anonymous = anonymous
	}
}

// WithUserProject bills requests to project, as requester-pays buckets
// require.
func WithUserProject(project string) Option {
	return func(s *settings) {
		s.userProject = project
	}
}

// WithMaxObjectSize fails reads of objects larger than n bytes with
// store.ErrTooLarge. Zero means no limit.
func WithMaxObjectSize(n int64) Option {
	return func(s *settings) {
		s.maxSize = n
	}
}

func (s settings) clientOptions() []option.ClientOption {
	if s.anonymous {
		return []option.ClientOption{option.WithoutAuthentication()}
	}
	return nil
}

// New creates a store for bucket.
func New(ctx context.Context, bucket string, opts ...Option) (*Store, error) {
	var set settings
	for _, opt := range opts {
		opt(&set)
	}
	client, err := storage.NewClient(ctx, set.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	handle := client.Bucket(bucket)
	if set.userProject != "" {
		handle = handle.UserProject(set.userProject)
	}
	s := newStore(func(ctx context.Context, name string) (io.ReadCloser, int64, error) {
		r, err := handle.Object(name).NewReader(ctx)
		if err != nil {
			return nil, 0, err
		}
		return r, r.Attrs.Size, nil
	}, set)
	s.client = client
	return s, nil
}

func newStore(open openFunc, set settings) *Store {
	return &Store{open: open, prefix: set.prefix, maxSize: set.maxSize}
}

// Get reads the object for key. A missing object is reported as an absent
// *store.FetchError.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, size, err := s.open(ctx, s.prefix+key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, &store.FetchError{Key: key, Absent: true, Err: err}
		}
		return nil, fmt.Errorf("opening %q: %w", key, err)
	}
	defer r.Close()

	data, err := store.ReadObject(r, size, s.maxSize)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", key, err)
	}
	return data, nil
}

// Close closes the GCS client.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
