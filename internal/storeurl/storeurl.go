// Package storeurl opens a store from a location string.
//
// Supported locations:
//
//	http://host/path, https://host/path   HTTP endpoint (batch capable)
//	s3://bucket/prefix                    AWS S3
//	gs://bucket/prefix                    Google Cloud Storage
//	minio://endpoint/bucket/prefix        MinIO
//	mem://                                empty in-memory store
//	file:///dir, /dir, ./dir              local directory
package storeurl

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/discochess/azarr/internal/store"
	"github.com/discochess/azarr/internal/store/diskstore"
	"github.com/discochess/azarr/internal/store/gcsstore"
	"github.com/discochess/azarr/internal/store/httpstore"
	"github.com/discochess/azarr/internal/store/memstore"
	"github.com/discochess/azarr/internal/store/miniostore"
	"github.com/discochess/azarr/internal/store/s3store"
)

// Scheme names a kind of store.
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
	SchemeS3    Scheme = "s3"
	SchemeGCS   Scheme = "gs"
	SchemeMinIO Scheme = "minio"
	SchemeMem   Scheme = "mem"
	SchemeFile  Scheme = "file"
)

// Location is a parsed location string.
type Location struct {
	Scheme Scheme
	// Host is the HTTP host or the MinIO endpoint.
	Host string
	// Bucket is set for object stores.
	Bucket string
	// Path is the key prefix, or the directory for file locations.
	Path string
	raw  string
}

// Parse splits a location string. Strings without a scheme are local
// directories.
func Parse(location string) (Location, error) {
	if location == "" {
		return Location{}, fmt.Errorf("storeurl: empty location")
	}
	if !strings.Contains(location, "://") {
		return Location{Scheme: SchemeFile, Path: location, raw: location}, nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return Location{}, fmt.Errorf("storeurl: parsing %q: %w", location, err)
	}
	loc := Location{Scheme: Scheme(strings.ToLower(u.Scheme)), raw: location}
	path := strings.Trim(u.Path, "/")

	switch loc.Scheme {
	case SchemeHTTP, SchemeHTTPS:
		loc.Host = u.Host
		loc.Path = path
	case SchemeS3, SchemeGCS:
		if u.Host == "" {
			return Location{}, fmt.Errorf("storeurl: %q has no bucket", location)
		}
		loc.Bucket = u.Host
		loc.Path = path
	case SchemeMinIO:
		bucket, prefix, _ := strings.Cut(path, "/")
		if u.Host == "" || bucket == "" {
			return Location{}, fmt.Errorf("storeurl: %q needs an endpoint and a bucket", location)
		}
		loc.Host = u.Host
		loc.Bucket = bucket
		loc.Path = prefix
	case SchemeMem:
	case SchemeFile:
		loc.Path = u.Path
	default:
		return Location{}, fmt.Errorf("storeurl: unsupported scheme %q", u.Scheme)
	}
	return loc, nil
}

// String returns the location as given to Parse.
func (l Location) String() string { return l.raw }

// Option configures Open.
type Option func(*config)

type config struct {
	http       []httpstore.Option
	s3Region   string
	s3Endpoint string
	anonymous  bool
	maxSize    int64
	minio      miniostore.Config
}

// WithHTTPOptions passes options to HTTP stores.
func WithHTTPOptions(opts ...httpstore.Option) Option {
	return func(c *config) {
		c.http = append(c.http, opts...)
	}
}

// WithS3Region sets the AWS region for s3 locations.
func WithS3Region(region string) Option {
	return func(c *config) {
		c.s3Region = region
	}
}

// WithS3Endpoint sets a custom endpoint for s3 locations.
func WithS3Endpoint(endpoint string) Option {
	return func(c *config) {
		c.s3Endpoint = endpoint
	}
}

// WithAnonymous reads s3 and gs locations without credentials.
func WithAnonymous(anonymous bool) Option {
	return func(c *config) {
		c.anonymous = anonymous
	}
}

// WithMaxObjectSize bounds the objects read from s3 and gs locations.
func WithMaxObjectSize(n int64) Option {
	return func(c *config) {
		c.maxSize = n
	}
}

// WithMinIOCredentials sets the static credentials for minio locations.
func WithMinIOCredentials(accessKey, secretKey string) Option {
	return func(c *config) {
		c.minio.AccessKey = accessKey
		c.minio.SecretKey = secretKey
	}
}

// WithMinIOSecure makes minio locations use TLS.
func WithMinIOSecure(secure bool) Option {
	return func(c *config) {
		c.minio.Secure = secure
	}
}

// Open parses location and creates the store it names. No network I/O is
// performed for HTTP locations.
func Open(ctx context.Context, location string, opts ...Option) (store.Store, error) {
	loc, err := Parse(location)
	if err != nil {
		return nil, err
	}
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	switch loc.Scheme {
	case SchemeHTTP, SchemeHTTPS:
		return httpstore.New(location, cfg.http...), nil

	case SchemeS3:
		s3opts := []s3store.Option{
			s3store.WithPrefix(loc.Path),
			s3store.WithAnonymous(cfg.anonymous),
			s3store.WithMaxObjectSize(cfg.maxSize),
		}
		if cfg.s3Region != "" {
			s3opts = append(s3opts, s3store.WithRegion(cfg.s3Region))
		}
		if cfg.s3Endpoint != "" {
			s3opts = append(s3opts, s3store.WithEndpoint(cfg.s3Endpoint))
		}
		st, err := s3store.New(ctx, loc.Bucket, s3opts...)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", loc, err)
		}
		return st, nil

	case SchemeGCS:
		st, err := gcsstore.New(ctx, loc.Bucket,
			gcsstore.WithPrefix(loc.Path),
			gcsstore.WithAnonymous(cfg.anonymous),
			gcsstore.WithMaxObjectSize(cfg.maxSize),
		)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", loc, err)
		}
		return st, nil

	case SchemeMinIO:
		mc := cfg.minio
		mc.Endpoint = loc.Host
		st, err := miniostore.Dial(mc, loc.Bucket, loc.Path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", loc, err)
		}
		return st, nil

	case SchemeMem:
		return memstore.New(), nil

	default:
		st, err := diskstore.New(loc.Path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", loc, err)
		}
		return st, nil
	}
}
