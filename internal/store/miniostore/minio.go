// Package miniostore implements a store for MinIO and other S3-compatible
// services through minio-go.
package miniostore

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/discochess/azarr/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store reads objects from a MinIO bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// New creates a store over an existing client. prefix is prepended to all
// keys (e.g. "arrays/").
func New(client *minio.Client, bucket, prefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Config describes a MinIO endpoint.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
	// Region skips the bucket location lookup when set.
	Region string
}

// Dial creates a client for cfg and returns a store over it.
func Dial(cfg Config, bucket, prefix string) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}
	return New(client, bucket, prefix), nil
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Get reads the object for key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, classify(key, err)
	}
	defer obj.Close()

	// GetObject is lazy; a missing key surfaces on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, classify(key, err)
	}
	return data, nil
}

// Close releases resources. The minio client holds none that need closing.
func (s *Store) Close() error {
	return nil
}

func classify(key string, err error) error {
	if isNotFound(err) {
		return &store.FetchError{Key: key, Absent: true, Err: err}
	}
	return fmt.Errorf("reading %q: %w", key, err)
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
