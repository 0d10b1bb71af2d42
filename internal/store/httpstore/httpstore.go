// Package httpstore reads keys from an HTTP endpoint: key k is fetched with
// a GET of prefix + "/" + k.
//
// A Store owns at most one session (an HTTP client and its connection
// pool), created on first use and shared by every request after that. The
// session is closed by Close, or by a cleanup once the Store becomes
// unreachable; either way it waits for in-flight requests first.
package httpstore

import (
	"context"
	"net/http"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/discochess/azarr/internal/fetch"
	"github.com/discochess/azarr/internal/store"
)

// Compile-time checks.
var (
	_ store.Store      = (*Store)(nil)
	_ store.BatchStore = (*Store)(nil)
)

// Store is a key-addressable HTTP transport.
// A Store is safe for concurrent use by multiple goroutines.
type Store struct {
	prefix  string
	opts    options
	fetcher *fetch.Fetcher
	logger  *zap.Logger

	mu      sync.Mutex
	sess    *session
	cleanup runtime.Cleanup
	closed  bool
}

// New creates a store for the given URL prefix. One trailing slash is
// trimmed. No network I/O happens until the first fetch.
func New(prefix string, opts ...Option) *Store {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	logger := cfg.logger.Named("http")
	return &Store{
		prefix: strings.TrimSuffix(prefix, "/"),
		opts:   cfg,
		fetcher: fetch.New(
			fetch.WithConcurrency(cfg.concurrency),
			fetch.WithRateLimit(cfg.limiter),
			fetch.WithLogger(logger),
			fetch.WithStats(cfg.stats),
		),
		logger: logger,
	}
}

// Prefix returns the URL prefix keys are resolved against.
func (s *Store) Prefix() string { return s.prefix }

// URL returns the URL for key.
func (s *Store) URL(key string) string {
	return s.prefix + "/" + key
}

// ensureSession returns the store's session, creating it on first use.
func (s *Store) ensureSession() (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	if s.sess == nil {
		s.sess = newSession(s.opts)
		// The cleanup must not reference s, or s would never be collected.
		s.cleanup = runtime.AddCleanup(s, func(sess *session) {
			go sess.close()
		}, s.sess)
		s.logger.Debug("session created", zap.String("prefix", s.prefix))
	}
	return s.sess, nil
}

// Get fetches one key. Any failure, including non-2xx responses, transport
// errors and timeouts, is reported as a *store.FetchError, which satisfies
// errors.Is(err, store.ErrNotFound). After Close, Get returns
// store.ErrClosed.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	sess, err := s.ensureSession()
	if err != nil {
		return nil, err
	}
	data, err := s.fetch(ctx, sess, key)
	runtime.KeepAlive(s)
	return data, err
}

// GetItems fetches keys concurrently over one session and returns those that
// succeeded. It returns once every fetch has settled. Abandoning ctx does
// not cancel fetches already under way.
//
// After Close, GetItems fetches nothing and returns an empty map, which is
// indistinguishable from every key being absent: callers that must tell the
// two apart check for a closed store themselves, or use Get, which returns
// store.ErrClosed.
func (s *Store) GetItems(ctx context.Context, keys []string) map[string][]byte {
	sess, err := s.ensureSession()
	if err != nil {
		s.logger.Warn("batch requested on closed store", zap.Int("keys", len(keys)))
		return map[string][]byte{}
	}

	out := s.fetcher.FetchAll(ctx, keys, func(ctx context.Context, key string) ([]byte, error) {
		return s.fetch(ctx, sess, key)
	})
	// s must stay reachable until the batch has settled so the cleanup
	// cannot close the session under it.
	runtime.KeepAlive(s)
	return out
}

func (s *Store) fetch(ctx context.Context, sess *session, key string) ([]byte, error) {
	data, status, err := sess.get(ctx, s.URL(key))
	if err != nil {
		return nil, &store.FetchError{
			Key:        key,
			StatusCode: status,
			Absent:     status == http.StatusNotFound || status == http.StatusForbidden,
			Err:        err,
		}
	}
	return data, nil
}

// Close closes the session, waiting for in-flight requests. The store cannot
// be used afterwards; a second Close returns store.ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return store.ErrClosed
	}
	s.closed = true
	sess := s.sess
	s.mu.Unlock()

	if sess != nil {
		s.cleanup.Stop()
		sess.close()
		s.logger.Debug("session closed", zap.String("prefix", s.prefix))
	}
	return nil
}
