package mock

import "github.com/fwojciec/docsearch"

var _ docsearch.Converter = (*Converter)(nil)

// Converter is a mock implementation of docsearch.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ docsearch.Summarizer = (*Summarizer)(nil)

// Summarizer is a mock implementation of docsearch.Summarizer.
type Summarizer struct {
	SummarizeFn func(html string) (string, error)
}

func (s *Summarizer) Summarize(html string) (string, error) {
	return s.SummarizeFn(html)
}
