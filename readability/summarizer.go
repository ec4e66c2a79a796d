// Package readability derives search snippets from the readable content of
// a page.
package readability

import (
	"strings"

	"github.com/fwojciec/docsearch"
	"github.com/go-shiori/go-readability"
)

// Ensure Summarizer implements docsearch.Summarizer at compile time.
var _ docsearch.Summarizer = (*Summarizer)(nil)

// MaxSnippetLength caps the length of a derived snippet in runes.
const MaxSnippetLength = 300

// Summarizer wraps go-readability and returns the article excerpt, which is
// the page description or the first paragraph of the main content.
type Summarizer struct{}

// NewSummarizer creates a new Summarizer.
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize returns the excerpt of rawHTML, or an empty string when the page
// has no readable content.
func (s *Summarizer) Summarize(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", nil
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return "", docsearch.Errorf(docsearch.EINVALID, "failed to summarize page: %v", err)
	}

	excerpt := strings.Join(strings.Fields(article.Excerpt), " ")
	if r := []rune(excerpt); len(r) > MaxSnippetLength {
		excerpt = string(r[:MaxSnippetLength]) + "..."
	}
	return excerpt, nil
}
