package httpstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/discochess/azarr/internal/store"
)

// maxDrain is how much of an error body is read so the connection can be
// reused.
const maxDrain = 64 << 10

// session owns the HTTP client shared by every request of one Store.
//
// Requests hold the read side of inflight for their whole duration, body
// included; close takes the write side, so it returns only after every
// in-flight request has finished.
type session struct {
	client *http.Client
	header http.Header

	inflight sync.RWMutex
	once     sync.Once
	closed   atomic.Bool
}

func newSession(o options) *session {
	var client *http.Client
	if o.newClient != nil {
		client = o.newClient()
	} else {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.MaxConnsPerHost = o.maxConnsPerHost
		if o.concurrency > transport.MaxIdleConnsPerHost {
			transport.MaxIdleConnsPerHost = o.concurrency
		}
		client = &http.Client{Transport: transport, Timeout: o.timeout}
	}
	return &session{client: client, header: o.header.Clone()}
}

// get fetches url and returns the body and the response status (0 if no
// response was received).
func (s *session) get(ctx context.Context, url string) ([]byte, int, error) {
	s.inflight.RLock()
	defer s.inflight.RUnlock()
	if s.closed.Load() {
		return nil, 0, store.ErrClosed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	for k, vs := range s.header {
		req.Header[k] = vs
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.CopyN(io.Discard, resp.Body, maxDrain)
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading body: %w", err)
	}
	return data, resp.StatusCode, nil
}

// close waits for in-flight requests, then releases the client's idle
// connections. Only the first call does anything.
func (s *session) close() {
	s.once.Do(func() {
		s.inflight.Lock()
		defer s.inflight.Unlock()
		s.closed.Store(true)
		s.client.CloseIdleConnections()
	})
}
