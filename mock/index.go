package mock

import (
	"context"

	"github.com/fwojciec/docsearch"
)

var _ docsearch.Index = (*Index)(nil)

// Index is a mock implementation of docsearch.Index.
type Index struct {
	PingFn      func(ctx context.Context) error
	AddFn       func(ctx context.Context, entries []*docsearch.IndexEntry) error
	DeleteAllFn func(ctx context.Context) error
	CommitFn    func(ctx context.Context) error
	SearchFn    func(ctx context.Context, q *docsearch.Query) (*docsearch.IndexResponse, error)
}

func (i *Index) Ping(ctx context.Context) error {
	return i.PingFn(ctx)
}

func (i *Index) Add(ctx context.Context, entries []*docsearch.IndexEntry) error {
	return i.AddFn(ctx, entries)
}

func (i *Index) DeleteAll(ctx context.Context) error {
	return i.DeleteAllFn(ctx)
}

func (i *Index) Commit(ctx context.Context) error {
	return i.CommitFn(ctx)
}

func (i *Index) Search(ctx context.Context, q *docsearch.Query) (*docsearch.IndexResponse, error) {
	return i.SearchFn(ctx, q)
}

var _ docsearch.SearchService = (*SearchService)(nil)

// SearchService is a mock implementation of docsearch.SearchService.
type SearchService struct {
	SearchFn        func(ctx context.Context, q *docsearch.Query) (*docsearch.SearchResult, error)
	RegenerateFn    func(ctx context.Context) error
	IndexDocumentFn func(ctx context.Context, doc *docsearch.Document) error
}

func (s *SearchService) Search(ctx context.Context, q *docsearch.Query) (*docsearch.SearchResult, error) {
	return s.SearchFn(ctx, q)
}

func (s *SearchService) Regenerate(ctx context.Context) error {
	return s.RegenerateFn(ctx)
}

func (s *SearchService) IndexDocument(ctx context.Context, doc *docsearch.Document) error {
	return s.IndexDocumentFn(ctx, doc)
}
