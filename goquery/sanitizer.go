package goquery

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docsearch"
)

// Ensure Sanitizer implements docsearch.Sanitizer at compile time.
var _ docsearch.Sanitizer = (*Sanitizer)(nil)

// NoopHref replaces the target of every hyperlink.
const NoopHref = "javascript:void(0)"

// Sanitizer strips executable and network-reaching content from stored
// HTML files and rewrites them as UTF-8.
type Sanitizer struct{}

// NewSanitizer creates a new Sanitizer.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// Sanitize rewrites the file at path in place. The result is written to a
// sibling file first and renamed over path, so a failure never leaves a
// partially written file behind.
func (s *Sanitizer) Sanitize(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return docsearch.Errorf(docsearch.EINTEGRITY, "failed to read %s: %v", path, err)
	}

	cleaned, err := SanitizeHTML(raw)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".sanitize-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(cleaned); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write sanitized html: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// SanitizeHTML applies the sanitizing rules to an HTML document and returns
// the rendered UTF-8 result.
func SanitizeHTML(raw []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(DecodeHTML(raw, "")))
	if err != nil {
		return "", docsearch.Errorf(docsearch.EINVALID, "failed to parse HTML: %v", err)
	}

	doc.Find("a").RemoveAttr("onclick")
	doc.Find("a[href]").SetAttr("href", NoopHref).RemoveAttr("target")
	doc.Find("iframe, frame").Remove()
	doc.Find("script").Remove()
	doc.Find("[onclick]").RemoveAttr("onclick")
	doc.Find("input").RemoveAttr("id").SetAttr("disabled", "true")
	doc.Find("button").RemoveAttr("id").SetAttr("disabled", "true")
	doc.Find(`[type="submit"]`).RemoveAttr("type")
	doc.Find("form").RemoveAttr("action").RemoveAttr("method")

	// The document is re-encoded as UTF-8.
	doc.Find("meta[charset]").SetAttr("charset", "utf-8")
	doc.Find("meta[http-equiv]").Each(func(_ int, sel *goquery.Selection) {
		if equiv, _ := sel.Attr("http-equiv"); strings.EqualFold(equiv, "content-type") {
			sel.SetAttr("content", "text/html; charset=utf-8")
		}
	})

	out, err := doc.Html()
	if err != nil {
		return "", docsearch.Errorf(docsearch.EINTERNAL, "failed to render HTML: %v", err)
	}
	return out, nil
}
