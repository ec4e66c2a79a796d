package goquery

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/net/html/charset"
)

// minConfidence is the chardet confidence below which a guess is ignored.
const minConfidence = 50

// DecodeHTML converts an HTML document to UTF-8. The encoding is taken from
// a byte order mark, the content type or a meta declaration; failing those,
// statistical detection is attempted. Undetectable input is treated as
// UTF-8. Unmappable bytes become U+FFFD instead of failing.
func DecodeHTML(content []byte, contentType string) []byte {
	enc, name, certain := charset.DetermineEncoding(content, contentType)
	if !certain && !metaCharset.Match(head(content)) {
		// Nothing was declared, DetermineEncoding only guessed.
		enc, name = charset.Lookup(detectCharset(content))
		if enc == nil {
			name = "utf-8"
		}
	}
	if name == "utf-8" {
		return bytes.ToValidUTF8(content, []byte("�"))
	}

	out, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return bytes.ToValidUTF8(content, []byte("�"))
	}
	return out
}

var metaCharset = regexp.MustCompile(`(?i)<meta[^>]+charset\s*=`)

// head returns the prefix of content searched for a charset declaration.
func head(content []byte) []byte {
	if len(content) > 1024 {
		return content[:1024]
	}
	return content
}

// detectCharset guesses the charset of undeclared content.
func detectCharset(content []byte) string {
	if utf8.Valid(content) {
		return "utf-8"
	}
	res, err := chardet.NewHtmlDetector().DetectBest(content)
	if err != nil || res.Confidence < minConfidence {
		return "utf-8"
	}
	return strings.ToLower(res.Charset)
}
