package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/docsearch"
	dshttp "github.com/fwojciec/docsearch/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time verification that Fetcher implements docsearch.Fetcher
var _ docsearch.Fetcher = (*dshttp.Fetcher)(nil)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body and content type", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><body>Hello World</body></html>"))
		}))
		defer server.Close()

		fetcher := dshttp.NewFetcher()
		defer fetcher.Close()

		res, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html><body>Hello World</body></html>", string(res.Body))
		assert.Equal(t, "text/html; charset=utf-8", res.ContentType)
		assert.Equal(t, server.URL, res.URL)
	})

	t.Run("sends the browser user agent", func(t *testing.T) {
		t.Parallel()

		var ua string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua = r.UserAgent()
		}))
		defer server.Close()

		_, err := dshttp.NewFetcher().Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, docsearch.UserAgent, ua)
	})

	t.Run("reports the final url after redirects", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new/", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/new/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("moved"))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		res, err := dshttp.NewFetcher().Fetch(context.Background(), server.URL+"/old")
		require.NoError(t, err)
		assert.Equal(t, server.URL+"/new/", res.URL)
	})

	t.Run("timeout is a retryable timeout error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := dshttp.NewFetcher(dshttp.WithTimeout(10 * time.Millisecond))

		_, err := fetcher.Fetch(context.Background(), server.URL)
		assert.Equal(t, docsearch.ETIMEOUT, docsearch.ErrorCode(err))
		assert.True(t, docsearch.Retryable(err))
	})

	t.Run("context cancellation is returned as is", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := dshttp.NewFetcher().Fetch(ctx, server.URL)
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("unreachable host is unavailable", func(t *testing.T) {
		t.Parallel()

		fetcher := dshttp.NewFetcher(dshttp.WithTimeout(time.Second))

		_, err := fetcher.Fetch(context.Background(), "http://non-existent-host.invalid/page")
		code := docsearch.ErrorCode(err)
		assert.True(t, code == docsearch.EUNAVAILABLE || code == docsearch.ETIMEOUT, code)
	})

	t.Run("non-2xx status is unavailable", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := dshttp.NewFetcher().Fetch(context.Background(), server.URL)
		assert.Equal(t, docsearch.EUNAVAILABLE, docsearch.ErrorCode(err))
		assert.Contains(t, docsearch.ErrorMessage(err), "404")
	})

	t.Run("rejects oversized bodies", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("x", 100)))
		}))
		defer server.Close()

		_, err := dshttp.NewFetcher(dshttp.WithMaxBodySize(10)).Fetch(context.Background(), server.URL)
		assert.Equal(t, docsearch.EUNAVAILABLE, docsearch.ErrorCode(err))
	})

	t.Run("rejects non-http urls before any request", func(t *testing.T) {
		t.Parallel()

		_, err := dshttp.NewFetcher().Fetch(context.Background(), "ftp://example.com/file")
		assert.Equal(t, docsearch.EINVALID, docsearch.ErrorCode(err))
	})

	t.Run("waits on the limiter with the request host", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		var calls atomic.Int32
		limiter := limiterFunc(func(ctx context.Context, host string) error {
			calls.Add(1)
			assert.Equal(t, strings.TrimPrefix(server.URL, "http://"), host)
			return nil
		})

		_, err := dshttp.NewFetcher(dshttp.WithLimiter(limiter)).Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})
}

type limiterFunc func(ctx context.Context, host string) error

func (f limiterFunc) Wait(ctx context.Context, host string) error {
	return f(ctx, host)
}
