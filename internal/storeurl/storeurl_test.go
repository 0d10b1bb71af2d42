package storeurl

import (
	"context"
	"testing"

	"github.com/discochess/azarr/internal/store"
	"github.com/discochess/azarr/internal/store/diskstore"
	"github.com/discochess/azarr/internal/store/gcsstore"
	"github.com/discochess/azarr/internal/store/httpstore"
	"github.com/discochess/azarr/internal/store/memstore"
	"github.com/discochess/azarr/internal/store/miniostore"
	"github.com/discochess/azarr/internal/store/s3store"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		scheme Scheme
		host   string
		bucket string
		path   string
	}{
		{"https://example.com/data.zarr/", SchemeHTTPS, "example.com", "", "data.zarr"},
		{"http://localhost:8080", SchemeHTTP, "localhost:8080", "", ""},
		{"s3://bucket/a/b", SchemeS3, "", "bucket", "a/b"},
		{"gs://bucket", SchemeGCS, "", "bucket", ""},
		{"minio://localhost:9000/bucket/arrays/", SchemeMinIO, "localhost:9000", "bucket", "arrays"},
		{"mem://", SchemeMem, "", "", ""},
		{"file:///tmp/x", SchemeFile, "", "", "/tmp/x"},
		{"./data", SchemeFile, "", "", "./data"},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", tt.in, err)
			continue
		}
		if got.Scheme != tt.scheme || got.Host != tt.host || got.Bucket != tt.bucket || got.Path != tt.path {
			t.Errorf("Parse(%q) = %+v", tt.in, got)
		}
		if got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "s3://", "minio://host", "ftp://host/x", "gs:///prefix"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) expected error", in)
		}
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		location string
		check    func(store.Store) bool
	}{
		{"mem://", func(s store.Store) bool { _, ok := s.(*memstore.Store); return ok }},
		{dir, func(s store.Store) bool { d, ok := s.(*diskstore.Store); return ok && d.Root() == dir }},
		{"file://" + dir, func(s store.Store) bool { _, ok := s.(*diskstore.Store); return ok }},
		{"http://example.invalid/a/", func(s store.Store) bool {
			h, ok := s.(*httpstore.Store)
			return ok && h.Prefix() == "http://example.invalid/a"
		}},
		{"minio://localhost:9000/bucket/p", func(s store.Store) bool { _, ok := s.(*miniostore.Store); return ok }},
	}
	for _, tt := range tests {
		s, err := Open(ctx, tt.location, WithMinIOCredentials("key", "secret"))
		if err != nil {
			t.Errorf("Open(%q) error = %v", tt.location, err)
			continue
		}
		if !tt.check(s) {
			t.Errorf("Open(%q) = %T", tt.location, s)
		}
		s.Close()
	}

	if _, err := Open(ctx, dir+"/missing"); err == nil {
		t.Error("Open() expected error for missing directory")
	}
}

func TestOpen_HTTPIsBatchStore(t *testing.T) {
	s, err := Open(context.Background(), "https://example.invalid", WithHTTPOptions(httpstore.WithConcurrency(4)))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()
	if _, ok := s.(store.BatchStore); !ok {
		t.Errorf("Open() = %T, want a BatchStore", s)
	}
}

func TestOpen_AnonymousBuckets(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		location string
		check    func(store.Store) bool
	}{
		{"s3://bucket/data.zarr", func(s store.Store) bool { _, ok := s.(*s3store.Store); return ok }},
		{"gs://bucket/data.zarr", func(s store.Store) bool { _, ok := s.(*gcsstore.Store); return ok }},
	}
	for _, tt := range tests {
		// anonymous clients are built without looking up credentials
		s, err := Open(ctx, tt.location, WithAnonymous(true), WithS3Region("us-east-1"), WithMaxObjectSize(1<<20))
		if err != nil {
			t.Errorf("Open(%q) error = %v", tt.location, err)
			continue
		}
		if !tt.check(s) {
			t.Errorf("Open(%q) = %T", tt.location, s)
		}
		s.Close()
	}
}
