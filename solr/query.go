package solr

import (
	"strconv"
	"strings"

	"github.com/fwojciec/docsearch"
	solrgo "github.com/stevenferrer/solr-go"
)

// Highlighting parameters.
const (
	HighlightSnippets          = 3
	HighlightRegexSlop         = "0.2"
	HighlightAlternateMaxChars = 300
)

// specialChars are escaped in user input so it is matched literally.
var specialChars = strings.NewReplacer(
	`\`, `\\`, `+`, `\+`, `-`, `\-`, `!`, `\!`, `(`, `\(`, `)`, `\)`,
	`{`, `\{`, `}`, `\}`, `[`, `\[`, `]`, `\]`, `^`, `\^`, `"`, `\"`,
	`~`, `\~`, `*`, `\*`, `?`, `\?`, `:`, `\:`, `/`, `\/`, `&`, `\&`, `|`, `\|`,
)

// Escape escapes the query syntax characters of s.
func Escape(s string) string {
	return specialChars.Replace(s)
}

// quote renders s as an exact phrase.
func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

// BuildQuery returns the boolean query string for q: the terms must match
// the title, body or keywords, and every given filter must match exactly.
func BuildQuery(q *docsearch.Query) string {
	terms := Escape(strings.TrimSpace(q.Query))

	var b strings.Builder
	b.WriteString("(")
	b.WriteString(docsearch.FieldTitle + ":(" + terms + ")")
	b.WriteString(" OR " + docsearch.FieldIndexedBody + ":(" + terms + ")")
	b.WriteString(" OR " + docsearch.FieldKeywords + ":(" + terms + ")")
	b.WriteString(")")
	if q.Locale != "" {
		b.WriteString(" AND " + docsearch.FieldLocale + ":" + quote(q.Locale))
	}
	for _, tag := range q.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			b.WriteString(" AND " + docsearch.FieldTags + ":" + quote(tag))
		}
	}
	return b.String()
}

// BuildParams returns the request parameters for q that the JSON query
// body has no property for: the default field and body highlighting.
func BuildParams(q *docsearch.Query) solrgo.M {
	return solrgo.M{
		"df":                         docsearch.FieldIndexedBody,
		"hl":                         "true",
		"hl.q":                       Escape(strings.TrimSpace(q.Query)),
		"hl.fl":                      docsearch.FieldIndexedBody,
		"hl.snippets":                strconv.Itoa(HighlightSnippets),
		"hl.simple.pre":              docsearch.HighlightPre,
		"hl.simple.post":             docsearch.HighlightPost,
		"hl.fragmenter":              "regex",
		"hl.regex.slop":              HighlightRegexSlop,
		"hl.alternateField":          docsearch.FieldIndexedBody,
		"hl.maxAlternateFieldLength": strconv.Itoa(HighlightAlternateMaxChars),
	}
}

// NewQuery returns the paginated, highlighted query for q.
func NewQuery(q *docsearch.Query) *solrgo.Query {
	return solrgo.NewQuery(BuildQuery(q)).
		Offset(q.Start()).
		Limit(q.Rows()).
		Params(BuildParams(q))
}
