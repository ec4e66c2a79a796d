package fs

import (
	"mime"
	"regexp"

	"golang.org/x/net/html/charset"
)

// metaCharsetValue matches the value of a meta charset declaration.
var metaCharsetValue = regexp.MustCompile(`(?i)(<meta[^>]+charset\s*=\s*["']?)([\w:.-]+)`)

// toUTF8 transcodes a page whose charset is declared by the response
// header. The header takes precedence over meta declarations, which are
// rewritten to match the stored bytes. Pages without a header charset are
// returned unchanged.
func toUTF8(body []byte, contentType string) []byte {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["charset"] == "" {
		return body
	}
	enc, name := charset.Lookup(params["charset"])
	if enc == nil || name == "utf-8" {
		return body
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return metaCharsetValue.ReplaceAll(out, []byte("${1}utf-8"))
}
