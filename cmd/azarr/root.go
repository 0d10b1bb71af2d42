package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/azarr"
	"github.com/discochess/azarr/internal/store"
	"github.com/discochess/azarr/internal/store/httpstore"
	"github.com/discochess/azarr/internal/storeurl"
)

var (
	// Global flags.
	verbose     bool
	concurrency int
	timeout     time.Duration
	cacheSize   int
	s3Region    string
	s3Endpoint  string
	anonymous   bool
)

var rootCmd = &cobra.Command{
	Use:   "azarr",
	Short: "Read chunked zarr arrays from HTTP and object stores",
	Long: `Azarr reads zarr v2 arrays whose chunks live behind an HTTP endpoint,
an object store or a local directory. The chunks a read needs are fetched
concurrently; missing chunks are replaced by the array's fill value.

Locations:
  http(s)://host/path, s3://bucket/prefix, gs://bucket/prefix,
  minio://endpoint/bucket/prefix, or a local directory.

Examples:
  # Describe the root group and its attributes
  azarr info https://example.com/data.zarr

  # Read a slice of an array
  azarr get https://example.com/data.zarr temperature "0:10,5"

  # Read a public bucket
  azarr --anonymous info s3://bucket/data.zarr

  # List the chunk keys a read would fetch
  azarr keys https://example.com/data.zarr temperature "100:"`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().IntVarP(&concurrency, "concurrency", "c", 64, "chunk fetches in flight per read (0 = unbounded)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", httpstore.DefaultTimeout, "HTTP request timeout")
	rootCmd.PersistentFlags().IntVar(&cacheSize, "cache-size", 128, "metadata documents to cache")
	rootCmd.PersistentFlags().StringVar(&s3Region, "s3-region", "", "AWS region for s3:// locations")
	rootCmd.PersistentFlags().StringVar(&s3Endpoint, "s3-endpoint", "", "custom endpoint for s3:// locations")
	rootCmd.PersistentFlags().BoolVar(&anonymous, "anonymous", false, "read s3:// and gs:// locations without credentials")
}

func newLogger() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// openClient creates a client for location. extra options are applied last.
func openClient(ctx context.Context, location string, extra ...azarr.Option) (*azarr.Client, error) {
	log, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	st, err := storeurl.Open(ctx, location,
		storeurl.WithHTTPOptions(
			httpstore.WithConcurrency(concurrency),
			httpstore.WithTimeout(timeout),
			httpstore.WithLogger(log.Named("azarr")),
		),
		storeurl.WithS3Region(s3Region),
		storeurl.WithS3Endpoint(s3Endpoint),
		storeurl.WithAnonymous(anonymous),
		storeurl.WithMinIOCredentials(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY")),
	)
	if err != nil {
		return nil, err
	}

	opts := []azarr.Option{
		azarr.WithStore(st),
		azarr.WithLogger(log),
		azarr.WithMetadataCacheSize(cacheSize),
	}
	if _, ok := st.(store.BatchStore); !ok {
		opts = append(opts, azarr.WithBatchFetch(concurrency))
	}

	client, err := azarr.New(append(opts, extra...)...)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return client, nil
}
