package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsearch"
)

// Ensure LoggingDownloader implements docsearch.Downloader.
var _ docsearch.Downloader = (*LoggingDownloader)(nil)

// LoggingDownloader wraps a Downloader with logging.
type LoggingDownloader struct {
	next   docsearch.Downloader
	logger *slog.Logger
}

// NewLoggingDownloader creates a new LoggingDownloader.
func NewLoggingDownloader(next docsearch.Downloader, logger *slog.Logger) *LoggingDownloader {
	return &LoggingDownloader{next: next, logger: logger}
}

func (d *LoggingDownloader) Download(ctx context.Context, name, sourceURL string, indexable bool) (res *docsearch.DownloadResult, err error) {
	defer func(begin time.Time) {
		var route string
		if res != nil {
			route = res.Route
		}
		d.logger.Info("download",
			"name", name,
			"url", sourceURL,
			"indexable", indexable,
			"route", route,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Download(ctx, name, sourceURL, indexable)
}

func (d *LoggingDownloader) Remove(ctx context.Context, name string) (err error) {
	defer func(begin time.Time) {
		d.logger.Info("remove files",
			"name", name,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Remove(ctx, name)
}
