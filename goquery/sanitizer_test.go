package goquery_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	gq "github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// Ensure Sanitizer implements docsearch.Sanitizer at compile time.
var _ docsearch.Sanitizer = (*goquery.Sanitizer)(nil)

const activePage = `<!DOCTYPE html>
<html>
<head>
<title>Active</title>
<script src="https://cdn.example.com/app.js"></script>
</head>
<body onclick="track()">
<a href="https://example.com/next" target="_blank" onclick="go()">Next</a>
<a href="/relative">Relative</a>
<a name="anchor">No href</a>
<iframe src="https://ads.example.com"></iframe>
<div onclick="x()">Clickable</div>
<form action="/submit" method="post">
<input id="q" type="text" name="q">
<input type="submit" value="Go">
<button id="b" type="submit">Send</button>
</form>
<script>alert("hi")</script>
</body>
</html>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadFile(t *testing.T, path string) *gq.Document {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	doc, err := gq.NewDocumentFromReader(f)
	require.NoError(t, err)
	return doc
}

func TestSanitizer_Sanitize(t *testing.T) {
	t.Parallel()

	t.Run("removes active content", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "index.html", activePage)

		require.NoError(t, goquery.NewSanitizer().Sanitize(path))

		doc := loadFile(t, path)
		assert.Zero(t, doc.Find("script").Length())
		assert.Zero(t, doc.Find("iframe, frame").Length())
		assert.Zero(t, doc.Find("[onclick]").Length())
		assert.Zero(t, doc.Find("[target]").Length())

		doc.Find("a[href]").Each(func(_ int, sel *gq.Selection) {
			href, _ := sel.Attr("href")
			assert.Equal(t, goquery.NoopHref, href)
		})
		assert.Equal(t, 2, doc.Find("a[href]").Length())
		assert.Equal(t, 1, doc.Find("a:not([href])").Length())
	})

	t.Run("disables form controls", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "index.html", activePage)

		require.NoError(t, goquery.NewSanitizer().Sanitize(path))

		doc := loadFile(t, path)
		doc.Find("input, button").Each(func(_ int, sel *gq.Selection) {
			_, hasID := sel.Attr("id")
			assert.False(t, hasID)
			disabled, _ := sel.Attr("disabled")
			assert.Equal(t, "true", disabled)
		})
		assert.Zero(t, doc.Find(`[type="submit"]`).Length())
		assert.Equal(t, 1, doc.Find(`input[type="text"]`).Length())

		form := doc.Find("form")
		_, hasAction := form.Attr("action")
		_, hasMethod := form.Attr("method")
		assert.False(t, hasAction)
		assert.False(t, hasMethod)
	})

	t.Run("keeps visible content", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "index.html", activePage)

		require.NoError(t, goquery.NewSanitizer().Sanitize(path))

		doc := loadFile(t, path)
		assert.Equal(t, "Active", doc.Find("title").Text())
		assert.Contains(t, doc.Find("body").Text(), "Clickable")
		assert.Contains(t, doc.Find("body").Text(), "Next")
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "index.html", activePage)
		s := goquery.NewSanitizer()

		require.NoError(t, s.Sanitize(path))
		first, err := os.ReadFile(path)
		require.NoError(t, err)

		require.NoError(t, s.Sanitize(path))
		second, err := os.ReadFile(path)
		require.NoError(t, err)

		assert.Equal(t, string(first), string(second))
	})

	t.Run("rewrites legacy encodings as utf-8", func(t *testing.T) {
		t.Parallel()

		latin1, err := charmap.ISO8859_1.NewEncoder().String(`<html><head><meta charset="iso-8859-1"><title>Canción</title></head><body>ñandú</body></html>`)
		require.NoError(t, err)
		path := writeFile(t, "index.html", latin1)

		require.NoError(t, goquery.NewSanitizer().Sanitize(path))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "Canción")
		assert.Contains(t, string(raw), "ñandú")
		assert.Contains(t, strings.ToLower(string(raw)), `charset="utf-8"`)
	})

	t.Run("fails without touching anything for a missing file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "missing.html")

		err := goquery.NewSanitizer().Sanitize(path)

		require.Error(t, err)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestSanitizeHTML_NoActiveContentRemains(t *testing.T) {
	t.Parallel()

	inputs := []string{
		``,
		`<script>x()</script>`,
		`<frameset><frame src="a.html"><frame src="b.html"></frameset>`,
		`<p onclick="a()"><span onclick="b()"><a onclick="c()" href="#top">x</a></span></p>`,
		`<table><tr><td><iframe srcdoc="<script>x</script>"></iframe></td></tr></table>`,
		`<svg><script>alert(1)</script></svg>`,
		`<div><a href="mailto:a@b.c">mail</a><a href="javascript:evil()">js</a></div>`,
	}

	for _, in := range inputs {
		out, err := goquery.SanitizeHTML([]byte(in))
		require.NoError(t, err)

		doc, err := gq.NewDocumentFromReader(strings.NewReader(out))
		require.NoError(t, err)
		assert.Zero(t, doc.Find("script, iframe, frame").Length(), in)
		assert.Zero(t, doc.Find("[onclick]").Length(), in)
		doc.Find("a[href]").Each(func(_ int, sel *gq.Selection) {
			href, _ := sel.Attr("href")
			assert.Equal(t, goquery.NoopHref, href, in)
		})
	}
}
