package trafilatura

import (
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/docsearch"
	"github.com/markusmobius/go-trafilatura"
)

// Ensure Summarizer implements docsearch.Summarizer at compile time.
var _ docsearch.Summarizer = (*Summarizer)(nil)

// MaxSnippetLength caps the length of a derived snippet in runes.
const MaxSnippetLength = 300

// Summarizer wraps go-trafilatura to describe a page in a few sentences.
// The page description metadata wins; otherwise the leading main content
// text is used.
type Summarizer struct{}

// NewSummarizer creates a new Summarizer.
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize returns a short description of rawHTML, or an empty string when
// the page has no usable text.
func (s *Summarizer) Summarize(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", nil
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return "", docsearch.Errorf(docsearch.EINVALID, "failed to summarize page: %v", err)
	}

	if desc := collapseSpaces(result.Metadata.Description); desc != "" {
		return truncate(desc, MaxSnippetLength), nil
	}
	return truncate(collapseSpaces(result.ContentText), MaxSnippetLength), nil
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most n runes, preferring the last word boundary.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)[:n]
	cut := string(r)
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
