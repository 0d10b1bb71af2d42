// Package s3store reads zarr keys from objects in an AWS S3 bucket.
//
// Public datasets are usually read with WithAnonymous, which sends unsigned
// requests and needs no AWS account.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/discochess/azarr/internal/store"
)

var _ store.Store = (*Store)(nil)

// getObjectAPI is the subset of *s3.Client the store uses.
type getObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store reads the objects below a prefix of one bucket.
type Store struct {
	client        getObjectAPI
	bucket        string
	prefix        string
	maxSize       int64
	requesterPays bool
}

type settings struct {
	region        string
	endpoint      string
	anonymous     bool
	prefix        string
	maxSize       int64
	requesterPays bool
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

// WithRegion sets the bucket's AWS region.
func WithRegion(region string) Option {
	return func(s *settings) {
		s.region = region
	}
}

// WithEndpoint sets a custom endpoint for S3-compatible services. Requests
// use path-style addressing.
func WithEndpoint(endpoint string) Option {
	return func(s *settings) {
		s.endpoint = endpoint
	}
}

// WithAnonymous sends unsigned requests.
func WithAnonymous(anonymous bool) Option {
	return func(s *settings) {
		s.anonymous = anonymous
	}
}

// WithRequesterPays marks requests as accepting the transfer charges of a
// requester-pays bucket.
func WithRequesterPays(pays bool) Option {
	return func(s *settings) {
		s.requesterPays = pays
	}
}

// WithMaxObjectSize fails reads of objects larger than n bytes with
// store.ErrTooLarge. Zero means no limit.
func WithMaxObjectSize(n int64) Option {
	return func(s *settings) {
		s.maxSize = n
	}
}

func (s settings) loadOptions() []func(*config.LoadOptions) error {
	var opts []func(*config.LoadOptions) error
	if s.region != "" {
		opts = append(opts, config.WithRegion(s.region))
	}
	if s.anonymous {
		opts = append(opts, config.WithCredentialsProvider(aws.AnonymousCredentials{}))
	}
	return opts
}

func (s settings) clientOptions() []func(*s3.Options) {
	if s.endpoint == "" {
		return nil
	}
	endpoint := s.endpoint
	return []func(*s3.Options){func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	}}
}

// New creates a store for bucket. The AWS configuration is loaded once, from
// the environment and the options together.
func New(ctx context.Context, bucket string, opts ...Option) (*Store, error) {
	var set settings
	for _, opt := range opts {
		opt(&set)
	}
	cfg, err := config.LoadDefaultConfig(ctx, set.loadOptions()...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return newStore(s3.NewFromConfig(cfg, set.clientOptions()...), bucket, set), nil
}

func newStore(client getObjectAPI, bucket string, set settings) *Store {
	return &Store{
		client:        client,
		bucket:        bucket,
		prefix:        set.prefix,
		maxSize:       set.maxSize,
		requesterPays: set.requesterPays,
	}
}

// Get reads the object for key. A missing object is reported as an absent
// *store.FetchError.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	}
	if s.requesterPays {
		in.RequestPayer = types.RequestPayerRequester
	}
	out, err := s.client.GetObject(ctx, in)
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, &store.FetchError{Key: key, Absent: true, Err: err}
		}
		return nil, fmt.Errorf("reading %q: %w", key, err)
	}
	defer out.Body.Close()

	size := int64(-1)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	data, err := store.ReadObject(out.Body, size, s.maxSize)
	if err != nil {
		return nil, fmt.Errorf("reading %q body: %w", key, err)
	}
	return data, nil
}

// Close is a no-op; the S3 client holds no resources.
func (s *Store) Close() error {
	return nil
}
