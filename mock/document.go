package mock

import (
	"context"

	"github.com/fwojciec/docsearch"
)

var _ docsearch.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of docsearch.DocumentService.
type DocumentService struct {
	UpsertDocumentFn     func(ctx context.Context, doc *docsearch.Document) error
	FindDocumentByNameFn func(ctx context.Context, name string) (*docsearch.Document, error)
	FindDocumentsFn      func(ctx context.Context, filter docsearch.DocumentFilter) ([]*docsearch.Document, error)
	DeleteDocumentFn     func(ctx context.Context, name string) error
}

func (s *DocumentService) UpsertDocument(ctx context.Context, doc *docsearch.Document) error {
	return s.UpsertDocumentFn(ctx, doc)
}

func (s *DocumentService) FindDocumentByName(ctx context.Context, name string) (*docsearch.Document, error) {
	return s.FindDocumentByNameFn(ctx, name)
}

func (s *DocumentService) FindDocuments(ctx context.Context, filter docsearch.DocumentFilter) ([]*docsearch.Document, error) {
	return s.FindDocumentsFn(ctx, filter)
}

func (s *DocumentService) DeleteDocument(ctx context.Context, name string) error {
	return s.DeleteDocumentFn(ctx, name)
}
