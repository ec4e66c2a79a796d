// Package slog provides logging decorators for the docsearch I/O boundaries.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsearch"
)

// Ensure LoggingFetcher implements docsearch.Fetcher.
var _ docsearch.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher logs every fetch with its size, content type and timing.
// Redirects are logged with the final URL; failures are logged at warn
// level with their error code.
type LoggingFetcher struct {
	next   docsearch.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next docsearch.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (res *docsearch.Resource, err error) {
	defer func(begin time.Time) {
		if err != nil {
			f.logger.Warn("fetch",
				"url", url,
				"code", docsearch.ErrorCode(err),
				"duration", time.Since(begin),
				"err", err,
			)
			return
		}
		attrs := []any{"url", url, "bytes", len(res.Body), "type", res.ContentType}
		if res.URL != "" && res.URL != url {
			attrs = append(attrs, "final_url", res.URL)
		}
		f.logger.Info("fetch", append(attrs, "duration", time.Since(begin))...)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
