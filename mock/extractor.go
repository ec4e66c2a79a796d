package mock

import "github.com/fwojciec/docsearch"

var _ docsearch.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of docsearch.Extractor.
type Extractor struct {
	ExtractFn func(path string) (*docsearch.PageInfo, error)
}

func (e *Extractor) Extract(path string) (*docsearch.PageInfo, error) {
	return e.ExtractFn(path)
}

var _ docsearch.Sanitizer = (*Sanitizer)(nil)

// Sanitizer is a mock implementation of docsearch.Sanitizer.
type Sanitizer struct {
	SanitizeFn func(path string) error
}

func (s *Sanitizer) Sanitize(path string) error {
	return s.SanitizeFn(path)
}

var _ docsearch.Instrumenter = (*Instrumenter)(nil)

// Instrumenter is a mock implementation of docsearch.Instrumenter.
type Instrumenter struct {
	InstrumentFn func(path string) error
}

func (i *Instrumenter) Instrument(path string) error {
	return i.InstrumentFn(path)
}
