package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsearch"
)

// Ensure LoggingAcquisitionService implements docsearch.AcquisitionService.
var _ docsearch.AcquisitionService = (*LoggingAcquisitionService)(nil)

// LoggingAcquisitionService wraps an AcquisitionService with logging.
type LoggingAcquisitionService struct {
	next   docsearch.AcquisitionService
	logger *slog.Logger
}

// NewLoggingAcquisitionService creates a new LoggingAcquisitionService.
func NewLoggingAcquisitionService(next docsearch.AcquisitionService, logger *slog.Logger) *LoggingAcquisitionService {
	return &LoggingAcquisitionService{next: next, logger: logger}
}

func (s *LoggingAcquisitionService) Acquire(ctx context.Context, req *docsearch.AcquireRequest) (a *docsearch.Acquisition, err error) {
	defer func(begin time.Time) {
		s.log("acquire", req, a, begin, err)
	}(time.Now())
	return s.next.Acquire(ctx, req)
}

func (s *LoggingAcquisitionService) Preview(ctx context.Context, req *docsearch.AcquireRequest) (a *docsearch.Acquisition, err error) {
	defer func(begin time.Time) {
		s.log("preview", req, a, begin, err)
	}(time.Now())
	return s.next.Preview(ctx, req)
}

func (s *LoggingAcquisitionService) Delete(ctx context.Context, name string) (outcomes []string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete",
			"name", name,
			"outcomes", outcomes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Delete(ctx, name)
}

func (s *LoggingAcquisitionService) log(op string, req *docsearch.AcquireRequest, a *docsearch.Acquisition, begin time.Time, err error) {
	attrs := []any{
		"name", req.Name,
		"url", req.URL,
		"duration", time.Since(begin),
		"err", err,
	}
	if a != nil {
		for _, w := range a.Warnings {
			s.logger.Warn(op+" warning", "name", req.Name, "warning", w)
		}
	}
	if err != nil {
		s.logger.Error(op, attrs...)
		return
	}
	s.logger.Info(op, attrs...)
}
