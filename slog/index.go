package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsearch"
)

// Ensure LoggingIndex implements docsearch.Index.
var _ docsearch.Index = (*LoggingIndex)(nil)

// LoggingIndex wraps an Index with logging.
type LoggingIndex struct {
	next   docsearch.Index
	logger *slog.Logger
}

// NewLoggingIndex creates a new LoggingIndex.
func NewLoggingIndex(next docsearch.Index, logger *slog.Logger) *LoggingIndex {
	return &LoggingIndex{next: next, logger: logger}
}

func (i *LoggingIndex) Ping(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		i.logger.Debug("index ping", "duration", time.Since(begin), "err", err)
	}(time.Now())
	return i.next.Ping(ctx)
}

func (i *LoggingIndex) Add(ctx context.Context, entries []*docsearch.IndexEntry) (err error) {
	defer func(begin time.Time) {
		i.logger.Info("index add", "count", len(entries), "duration", time.Since(begin), "err", err)
	}(time.Now())
	return i.next.Add(ctx, entries)
}

func (i *LoggingIndex) DeleteAll(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		i.logger.Info("index delete all", "duration", time.Since(begin), "err", err)
	}(time.Now())
	return i.next.DeleteAll(ctx)
}

func (i *LoggingIndex) Commit(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		i.logger.Info("index commit", "duration", time.Since(begin), "err", err)
	}(time.Now())
	return i.next.Commit(ctx)
}

func (i *LoggingIndex) Search(ctx context.Context, q *docsearch.Query) (resp *docsearch.IndexResponse, err error) {
	defer func(begin time.Time) {
		var found int
		if resp != nil {
			found = resp.NumFound
		}
		i.logger.Info("index search",
			"query", q.Query,
			"page", q.Page,
			"found", found,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.Search(ctx, q)
}
