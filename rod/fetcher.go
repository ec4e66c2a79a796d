// Package rod renders pages with headless Chrome before they are mirrored,
// for sites that build their content with JavaScript.
package rod

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/docsearch"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultRenderTimeout bounds one page render.
const DefaultRenderTimeout = 30 * time.Second

// Ensure Fetcher implements docsearch.Fetcher at compile time.
var _ docsearch.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	browser *browser
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxPages sets the number of pages rendered before the browser is
// replaced. Defaults to DefaultMaxPages.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		f.browser.maxPages = n
	}
}

// WithTimeout bounds one render. Defaults to DefaultRenderTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher launches a headless Chrome browser. Close must be called when
// the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		browser: &browser{maxPages: DefaultMaxPages},
		timeout: DefaultRenderTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	b, l, err := launch()
	if err != nil {
		return nil, docsearch.Errorf(docsearch.EUNAVAILABLE, "%v", err)
	}
	f.browser.current, f.browser.launcher = b, l
	return f, nil
}

// Fetch navigates to rawURL, waits for the load event and returns the
// rendered document as UTF-8 HTML.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*docsearch.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := f.browser.acquire()
	if err != nil {
		return nil, docsearch.Errorf(docsearch.EUNAVAILABLE, "rendering %s: %v", rawURL, err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, docsearch.Errorf(docsearch.EUNAVAILABLE, "opening page for %s: %v", rawURL, err)
	}
	defer page.Close()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: docsearch.UserAgent}); err != nil {
		return nil, classify(rawURL, err)
	}
	if err := page.Navigate(rawURL); err != nil {
		return nil, classify(rawURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, classify(rawURL, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, classify(rawURL, err)
	}

	finalURL := rawURL
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	return &docsearch.Resource{
		URL:         finalURL,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(html),
	}, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	return f.browser.close()
}

// LauncherPID returns the process ID of the browser launcher, 0 once closed.
func (f *Fetcher) LauncherPID() int {
	return f.browser.pid()
}

func classify(rawURL string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return docsearch.Errorf(docsearch.ETIMEOUT, "rendering %s timed out", rawURL)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return docsearch.Errorf(docsearch.EUNAVAILABLE, "rendering %s: %v", rawURL, err)
}
