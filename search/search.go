// Package search keeps a docsearch.Index in sync with the document store
// and post-processes its answers.
package search

import (
	"context"
	"log/slog"

	"github.com/fwojciec/docsearch"
)

// Ensure Service implements docsearch.SearchService at compile time.
var _ docsearch.SearchService = (*Service)(nil)

// Service implements docsearch.SearchService over an Index and the
// authoritative document store.
type Service struct {
	docs       docsearch.DocumentService
	index      docsearch.Index
	logger     *slog.Logger
	insertions int
	offset     int
}

// Option configures a Service.
type Option func(*Service)

// WithReorder sets the window and target position used to promote a
// relevant hit. Defaults to docsearch.DefaultInsertions and
// docsearch.DefaultOffset.
func WithReorder(insertions, offset int) Option {
	return func(s *Service) {
		s.insertions = insertions
		s.offset = offset
	}
}

// WithLogger sets the logger for route lookups that fail.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a search service.
func NewService(docs docsearch.DocumentService, index docsearch.Index, opts ...Option) *Service {
	s := &Service{
		docs:       docs,
		index:      index,
		logger:     slog.New(slog.DiscardHandler),
		insertions: docsearch.DefaultInsertions,
		offset:     docsearch.DefaultOffset,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs q, flattens the body highlights, resolves each hit's stored
// route and promotes a relevant hit into the top results.
func (s *Service) Search(ctx context.Context, q *docsearch.Query) (*docsearch.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.index.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	result := &docsearch.SearchResult{
		Total:      resp.NumFound,
		Hits:       docsearch.Reorder(resp.Entries, s.insertions, s.offset),
		Highlights: make(map[string][]string, len(resp.Highlighting)),
		Routes:     make(map[string]string, len(resp.Entries)),
	}
	if result.Hits == nil {
		result.Hits = []*docsearch.IndexEntry{}
	}
	for id, fields := range resp.Highlighting {
		if snippets, ok := fields[docsearch.FieldIndexedBody]; ok {
			result.Highlights[id] = snippets
		}
	}

	for _, hit := range resp.Entries {
		doc, err := s.docs.FindDocumentByName(ctx, hit.ID)
		if docsearch.ErrorCode(err) == docsearch.ENOTFOUND {
			s.logger.Warn("indexed document missing from store", "name", hit.ID)
			continue
		} else if err != nil {
			return nil, err
		}
		result.Routes[hit.ID] = doc.Route
	}
	return result, nil
}

// Regenerate replaces the whole index with the entries of every stored
// document.
func (s *Service) Regenerate(ctx context.Context) error {
	docs, err := s.docs.FindDocuments(ctx, docsearch.DocumentFilter{})
	if err != nil {
		return err
	}

	entries := make([]*docsearch.IndexEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, docsearch.NewIndexEntry(doc))
	}

	if err := s.index.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.index.Add(ctx, entries); err != nil {
		return err
	}
	return s.index.Commit(ctx)
}

// IndexDocument adds or replaces the entry of doc and commits it.
func (s *Service) IndexDocument(ctx context.Context, doc *docsearch.Document) error {
	if err := s.index.Add(ctx, []*docsearch.IndexEntry{docsearch.NewIndexEntry(doc)}); err != nil {
		return err
	}
	return s.index.Commit(ctx)
}
