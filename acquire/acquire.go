// Package acquire orchestrates the acquisition pipeline: download, sanitize,
// instrument, extract, store and index.
package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/docsearch"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// previewKey is the lock key shared by all previews; they write to one slot.
const previewKey = "\x00preview"

// TracerName names the tracer used when Service.Tracer is nil.
const TracerName = "github.com/fwojciec/docsearch/acquire"

// Ensure Service implements docsearch.AcquisitionService at compile time.
var _ docsearch.AcquisitionService = (*Service)(nil)

// Service implements docsearch.AcquisitionService.
type Service struct {
	Documents    docsearch.DocumentService
	Downloader   docsearch.Downloader
	Sanitizer    docsearch.Sanitizer
	Extractor    docsearch.Extractor
	Instrumenter docsearch.Instrumenter
	Search       docsearch.SearchService
	Logger       *slog.Logger

	// Tracer records a span per operation with an event per pipeline step.
	// Defaults to the global provider's tracer.
	Tracer trace.Tracer

	// RetryDelays enables download retries of transient failures. Nil means
	// a failed download fails the acquisition.
	RetryDelays []time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	locks KeyedLock
}

// Acquire downloads req.URL into the indexable area, sanitizes and
// instruments the page, stores the merged record and indexes it. A failed
// index update is reported as a warning.
func (s *Service) Acquire(ctx context.Context, req *docsearch.AcquireRequest) (_ *docsearch.Acquisition, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	doc := docsearch.NewDocument(req, s.now())

	ctx, span := s.tracer().Start(ctx, "acquire", trace.WithAttributes(
		attribute.String("docsearch.document.name", doc.Name),
		attribute.String("docsearch.document.url", doc.URL),
	))
	defer func() { endSpan(span, err) }()

	unlock, err := s.locks.Lock(ctx, doc.Name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	res, err := s.download(ctx, doc.Name, doc.URL, true)
	if err != nil {
		return nil, err
	}
	span.AddEvent("downloaded", trace.WithAttributes(attribute.String("docsearch.document.route", res.Route)))

	if err := s.Sanitizer.Sanitize(res.FullPath); err != nil {
		return nil, err
	}
	span.AddEvent("sanitized")

	var warnings []string
	if err := s.Instrumenter.Instrument(res.FullPath); err != nil {
		s.logger().Warn("instrumentation failed", "name", doc.Name, "path", res.FullPath, "err", err)
		warnings = append(warnings, "instrumentation not injected: "+docsearch.ErrorMessage(err))
	}

	info, err := s.Extractor.Extract(res.FullPath)
	if err != nil {
		return nil, err
	}
	docsearch.Merge(doc, info, s.now())
	doc.Route = res.Route
	span.AddEvent("extracted", trace.WithAttributes(attribute.String("docsearch.document.hash", doc.ContentHash)))

	if err := s.Documents.UpsertDocument(ctx, doc); err != nil {
		if code := docsearch.ErrorCode(err); code == docsearch.EINVALID || code == docsearch.EINTEGRITY {
			return nil, err
		}
		return nil, docsearch.Errorf(docsearch.EINTEGRITY, "storing document %s: %s", doc.Name, docsearch.ErrorMessage(err))
	}
	span.AddEvent("stored")

	if err := s.Search.IndexDocument(ctx, doc); err != nil {
		s.logger().Warn("index not updated", "name", doc.Name, "err", err)
		warnings = append(warnings, "index not updated: "+docsearch.ErrorMessage(err))
	} else {
		span.AddEvent("indexed")
	}

	return &docsearch.Acquisition{Document: doc, Warnings: warnings}, nil
}

// Preview downloads req.URL into the preview slot, sanitizes it and returns
// the merged record. Nothing is stored or indexed.
func (s *Service) Preview(ctx context.Context, req *docsearch.AcquireRequest) (_ *docsearch.Acquisition, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	doc := docsearch.NewDocument(req, s.now())

	ctx, span := s.tracer().Start(ctx, "preview", trace.WithAttributes(
		attribute.String("docsearch.document.name", doc.Name),
		attribute.String("docsearch.document.url", doc.URL),
	))
	defer func() { endSpan(span, err) }()

	unlock, err := s.locks.Lock(ctx, previewKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	res, err := s.download(ctx, doc.Name, doc.URL, false)
	if err != nil {
		return nil, err
	}
	if err := s.Sanitizer.Sanitize(res.FullPath); err != nil {
		return nil, err
	}
	info, err := s.Extractor.Extract(res.FullPath)
	if err != nil {
		return nil, err
	}
	docsearch.Merge(doc, info, s.now())
	doc.Route = res.Route

	return &docsearch.Acquisition{Document: doc}, nil
}

// Delete removes the stored record and the downloaded files of name and
// regenerates the index. Every step runs regardless of the others and
// reports one outcome line.
func (s *Service) Delete(ctx context.Context, name string) (_ []string, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, docsearch.Errorf(docsearch.EINVALID, "document name required")
	}

	ctx, span := s.tracer().Start(ctx, "delete", trace.WithAttributes(
		attribute.String("docsearch.document.name", name),
	))
	defer func() { endSpan(span, err) }()

	unlock, err := s.locks.Lock(ctx, name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var outcomes []string

	switch err := s.Documents.DeleteDocument(ctx, name); {
	case err == nil:
		outcomes = append(outcomes, fmt.Sprintf("document %s deleted from database", name))
	case docsearch.ErrorCode(err) == docsearch.ENOTFOUND:
		outcomes = append(outcomes, fmt.Sprintf("document %s not found in database", name))
	default:
		s.logger().Error("delete document failed", "name", name, "err", err)
		outcomes = append(outcomes, fmt.Sprintf("error deleting document %s from database: %s", name, docsearch.ErrorMessage(err)))
	}

	switch err := s.Downloader.Remove(ctx, name); {
	case err == nil:
		outcomes = append(outcomes, fmt.Sprintf("files of document %s deleted", name))
	case docsearch.ErrorCode(err) == docsearch.ENOTFOUND:
		outcomes = append(outcomes, fmt.Sprintf("files of document %s not found", name))
	default:
		s.logger().Error("delete files failed", "name", name, "err", err)
		outcomes = append(outcomes, fmt.Sprintf("error deleting files of document %s: %s", name, docsearch.ErrorMessage(err)))
	}

	if err := s.Search.Regenerate(ctx); err != nil {
		s.logger().Warn("index not regenerated", "err", err)
		outcomes = append(outcomes, "error regenerating index: "+docsearch.ErrorMessage(err))
	} else {
		outcomes = append(outcomes, "index regenerated")
	}

	return outcomes, nil
}

func (s *Service) download(ctx context.Context, name, sourceURL string, indexable bool) (*docsearch.DownloadResult, error) {
	var res *docsearch.DownloadResult
	err := Retry(ctx, s.RetryDelays, s.logger(), "download", func(ctx context.Context) error {
		var err error
		res, err = s.Downloader.Download(ctx, name, sourceURL, indexable)
		return err
	})
	return res, err
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (s *Service) tracer() trace.Tracer {
	if s.Tracer != nil {
		return s.Tracer
	}
	return otel.Tracer(TracerName)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, docsearch.ErrorMessage(err))
	}
	span.End()
}
