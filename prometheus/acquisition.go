package prometheus

import (
	"context"
	"time"

	"github.com/fwojciec/docsearch"
)

// Ensure AcquisitionService implements docsearch.AcquisitionService.
var _ docsearch.AcquisitionService = (*AcquisitionService)(nil)

// AcquisitionService wraps an AcquisitionService with operation and
// warning metrics.
type AcquisitionService struct {
	next    docsearch.AcquisitionService
	metrics *Metrics
}

// NewAcquisitionService creates an instrumented AcquisitionService.
func NewAcquisitionService(next docsearch.AcquisitionService, metrics *Metrics) *AcquisitionService {
	return &AcquisitionService{next: next, metrics: metrics}
}

func (s *AcquisitionService) Acquire(ctx context.Context, req *docsearch.AcquireRequest) (a *docsearch.Acquisition, err error) {
	defer func(begin time.Time) {
		s.metrics.observe("acquisition", "acquire", begin, err)
		s.countWarnings("acquire", a)
	}(time.Now())
	return s.next.Acquire(ctx, req)
}

func (s *AcquisitionService) Preview(ctx context.Context, req *docsearch.AcquireRequest) (a *docsearch.Acquisition, err error) {
	defer func(begin time.Time) {
		s.metrics.observe("acquisition", "preview", begin, err)
		s.countWarnings("preview", a)
	}(time.Now())
	return s.next.Preview(ctx, req)
}

func (s *AcquisitionService) Delete(ctx context.Context, name string) (_ []string, err error) {
	defer func(begin time.Time) { s.metrics.observe("acquisition", "delete", begin, err) }(time.Now())
	return s.next.Delete(ctx, name)
}

func (s *AcquisitionService) countWarnings(op string, a *docsearch.Acquisition) {
	if a != nil && len(a.Warnings) > 0 {
		s.metrics.warnings.WithLabelValues(op).Add(float64(len(a.Warnings)))
	}
}
