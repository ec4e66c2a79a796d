package goquery

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docsearch"
)

// Ensure Extractor implements docsearch.Extractor at compile time.
var _ docsearch.Extractor = (*Extractor)(nil)

// bodyEscaper collapses characters that are unsafe in downstream query and
// storage encodings.
var bodyEscaper = strings.NewReplacer(
	`\`, " ",
	`"`, " ",
	"/", " ",
	"\b", " ",
	"\f", " ",
	"\n", " ",
	"\r", " ",
	"\t", " ",
)

// Extractor reads page metadata from stored HTML files.
type Extractor struct {
	converter   docsearch.Converter
	summarizers []docsearch.Summarizer
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithSummarizer derives PageInfo.Snippet with s. Summarizers are tried
// in order until one returns a non-empty snippet.
func WithSummarizer(s ...docsearch.Summarizer) ExtractorOption {
	return func(e *Extractor) {
		e.summarizers = append(e.summarizers, s...)
	}
}

// NewExtractor creates an Extractor that renders body text with converter.
func NewExtractor(converter docsearch.Converter, opts ...ExtractorOption) *Extractor {
	e := &Extractor{converter: converter}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads the file at path and returns its metadata. The file is not
// modified.
func (e *Extractor) Extract(path string) (*docsearch.PageInfo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, docsearch.Errorf(docsearch.EINTEGRITY, "failed to read %s: %v", path, err)
	}

	sum := sha256.Sum256(raw)
	decoded := DecodeHTML(raw, "")

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, docsearch.Errorf(docsearch.EINVALID, "failed to parse HTML: %v", err)
	}

	text, err := e.converter.Convert(string(decoded))
	if err != nil {
		return nil, err
	}

	info := &docsearch.PageInfo{
		Title:       Title(doc),
		Route:       filepath.Base(path),
		ContentHash: hex.EncodeToString(sum[:]),
		IndexedBody: bodyEscaper.Replace(text),
	}

	// A missing snippet never fails extraction.
	for _, sum := range e.summarizers {
		if snippet, err := sum.Summarize(string(decoded)); err == nil && snippet != "" {
			info.Snippet = snippet
			break
		}
	}

	return info, nil
}

// Title returns the first non-empty of the head title, any title and the
// first h1 heading, falling back to docsearch.DefaultTitle.
func Title(doc *goquery.Document) string {
	for _, sel := range []*goquery.Selection{
		doc.Find("head > title"),
		doc.Find("title"),
		doc.Find("h1").First(),
	} {
		if title := strings.TrimSpace(sel.Text()); title != "" {
			return title
		}
	}
	return docsearch.DefaultTitle
}
