package prometheus

import (
	"context"
	"time"

	"github.com/fwojciec/docsearch"
)

// Ensure Index implements docsearch.Index.
var _ docsearch.Index = (*Index)(nil)

// Index wraps an Index with operation metrics.
type Index struct {
	next    docsearch.Index
	metrics *Metrics
}

// NewIndex creates an instrumented Index.
func NewIndex(next docsearch.Index, metrics *Metrics) *Index {
	return &Index{next: next, metrics: metrics}
}

func (i *Index) Ping(ctx context.Context) (err error) {
	defer func(begin time.Time) { i.metrics.observe("index", "ping", begin, err) }(time.Now())
	return i.next.Ping(ctx)
}

func (i *Index) Add(ctx context.Context, entries []*docsearch.IndexEntry) (err error) {
	defer func(begin time.Time) { i.metrics.observe("index", "add", begin, err) }(time.Now())
	return i.next.Add(ctx, entries)
}

func (i *Index) DeleteAll(ctx context.Context) (err error) {
	defer func(begin time.Time) { i.metrics.observe("index", "delete_all", begin, err) }(time.Now())
	return i.next.DeleteAll(ctx)
}

func (i *Index) Commit(ctx context.Context) (err error) {
	defer func(begin time.Time) { i.metrics.observe("index", "commit", begin, err) }(time.Now())
	return i.next.Commit(ctx)
}

func (i *Index) Search(ctx context.Context, q *docsearch.Query) (_ *docsearch.IndexResponse, err error) {
	defer func(begin time.Time) { i.metrics.observe("index", "search", begin, err) }(time.Now())
	return i.next.Search(ctx, q)
}
