package leveldb

import (
	"strings"

	"github.com/fwojciec/docsearch"
)

// Highlighting limits.
const (
	MaxSnippets          = 3
	SnippetContext       = 80
	AlternateSnippetSize = 300
)

// highlight returns up to MaxSnippets fragments of body around words whose
// term is in query, with matched words wrapped in the highlight markers.
// When nothing in body matches, the leading AlternateSnippetSize characters
// are returned unmarked.
func highlight(body string, query map[string]bool) []string {
	var all, matched []span
	for s := range words(body) {
		all = append(all, s)
		if t := term(s.word); t != "" && query[t] {
			matched = append(matched, s)
		}
	}
	if len(matched) == 0 {
		return alternate(body)
	}

	var snippets []string
	covered := -1
	for _, m := range matched {
		if len(snippets) == MaxSnippets {
			break
		}
		if m.start < covered {
			continue
		}
		from, to := fragment(all, m, covered)
		snippets = append(snippets, mark(body, from, to, matched))
		covered = to
	}
	return snippets
}

// fragment returns the byte range of the words within SnippetContext bytes
// around m, never starting before floor.
func fragment(all []span, m span, floor int) (int, int) {
	from, to := m.start, m.end
	for _, s := range all {
		if s.start >= m.start-SnippetContext && s.start >= floor && s.start < from {
			from = s.start
		}
		if s.end <= m.end+SnippetContext && s.end > to {
			to = s.end
		}
	}
	return from, to
}

func mark(body string, from, to int, matched []span) string {
	var b strings.Builder
	pos := from
	for _, m := range matched {
		if m.start < from || m.end > to {
			continue
		}
		b.WriteString(body[pos:m.start])
		b.WriteString(docsearch.HighlightPre)
		b.WriteString(body[m.start:m.end])
		b.WriteString(docsearch.HighlightPost)
		pos = m.end
	}
	b.WriteString(body[pos:to])
	return b.String()
}

func alternate(body string) []string {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	r := []rune(body)
	if len(r) > AlternateSnippetSize {
		r = r[:AlternateSnippetSize]
	}
	return []string{string(r)}
}
