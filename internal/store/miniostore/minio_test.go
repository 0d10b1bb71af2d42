package miniostore

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"

	"github.com/discochess/azarr/internal/store"
)

func TestStore_key(t *testing.T) {
	tests := []struct {
		prefix, name, want string
	}{
		{"", "0.0", "0.0"},
		{"arrays/", "temp/0.0", "arrays/temp/0.0"},
		{"arrays", ".zgroup", "arrays/.zgroup"},
	}
	for _, tt := range tests {
		s := New(nil, "bucket", tt.prefix)
		if got := s.key(tt.name); got != tt.want {
			t.Errorf("key(%q) with prefix %q = %q, want %q", tt.name, tt.prefix, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	missing := classify("0.0", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404})
	if !errors.Is(missing, store.ErrNotFound) {
		t.Errorf("classify(NoSuchKey) = %v, want ErrNotFound", missing)
	}

	denied := classify("0.0", minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403})
	if errors.Is(denied, store.ErrNotFound) {
		t.Errorf("classify(AccessDenied) = %v, should not be ErrNotFound", denied)
	}
}

// TestStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestStore_Integration(t *testing.T) {
	s, err := Dial(Config{
		Endpoint:  "localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Region:    "us-east-1",
	}, "test-azarr", "it/")
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err := s.client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		t.Fatalf("BucketExists() error = %v", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			t.Fatalf("MakeBucket() error = %v", err)
		}
	}

	_, err = s.Get(ctx, "definitely/missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() missing error = %v, want ErrNotFound", err)
	}
}
