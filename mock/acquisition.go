package mock

import (
	"context"

	"github.com/fwojciec/docsearch"
)

var _ docsearch.AcquisitionService = (*AcquisitionService)(nil)

// AcquisitionService is a mock implementation of docsearch.AcquisitionService.
type AcquisitionService struct {
	AcquireFn func(ctx context.Context, req *docsearch.AcquireRequest) (*docsearch.Acquisition, error)
	PreviewFn func(ctx context.Context, req *docsearch.AcquireRequest) (*docsearch.Acquisition, error)
	DeleteFn  func(ctx context.Context, name string) ([]string, error)
}

func (s *AcquisitionService) Acquire(ctx context.Context, req *docsearch.AcquireRequest) (*docsearch.Acquisition, error) {
	return s.AcquireFn(ctx, req)
}

func (s *AcquisitionService) Preview(ctx context.Context, req *docsearch.AcquireRequest) (*docsearch.Acquisition, error) {
	return s.PreviewFn(ctx, req)
}

func (s *AcquisitionService) Delete(ctx context.Context, name string) ([]string, error) {
	return s.DeleteFn(ctx, name)
}
