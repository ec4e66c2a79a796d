// Package http provides the HTTP resource fetcher and the JSON API server.
package http

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/docsearch"
)

// DefaultFetchTimeout is the default timeout for one resource request.
const DefaultFetchTimeout = 30 * time.Second

// DefaultMaxBodySize bounds the size of a fetched resource.
const DefaultMaxBodySize = 32 << 20

// Ensure Fetcher implements docsearch.Fetcher at compile time.
var _ docsearch.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves resources with plain HTTP GET requests, identifying as
// a desktop browser.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	maxBodySize int64
	limiter     docsearch.DomainLimiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for one request.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBodySize rejects resources larger than n bytes.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// WithLimiter throttles requests per host.
func WithLimiter(l docsearch.DomainLimiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// NewFetcher creates a new HTTP Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     DefaultFetchTimeout,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the resource at rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*docsearch.Resource, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, docsearch.Errorf(docsearch.EINVALID, "invalid url %q", rawURL)
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, u.Host); err != nil {
			return nil, classify(rawURL, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, docsearch.Errorf(docsearch.EINVALID, "invalid request for %s: %v", rawURL, err)
	}
	req.Header.Set("User-Agent", docsearch.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, docsearch.Errorf(docsearch.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, classify(rawURL, err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, docsearch.Errorf(docsearch.EUNAVAILABLE, "resource %s exceeds %d bytes", rawURL, f.maxBodySize)
	}

	return &docsearch.Resource{
		URL:         resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

// classify maps transport errors to application error codes.
func classify(rawURL string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return docsearch.Errorf(docsearch.ETIMEOUT, "fetching %s timed out", rawURL)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return docsearch.Errorf(docsearch.ETIMEOUT, "fetching %s timed out", rawURL)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return docsearch.Errorf(docsearch.EUNAVAILABLE, "fetching %s: %v", rawURL, err)
}
