package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docsearch"
)

// Ensure AssetLinker implements docsearch.AssetLinker at compile time.
var _ docsearch.AssetLinker = (*AssetLinker)(nil)

// assetRef names an attribute holding an asset reference.
type assetRef struct {
	Selector string
	Attr     string
}

// assetRefs lists the references mirrored alongside a page. Scripts and
// frames are not mirrored since the sanitizer removes them.
var assetRefs = []assetRef{
	{`img[src]`, "src"},
	{`link[href][rel~="stylesheet"]`, "href"},
	{`link[href][rel~="icon"]`, "href"},
	{`source[src]`, "src"},
	{`video[poster]`, "poster"},
	{`input[type="image"][src]`, "src"},
}

// AssetLinker finds the direct assets of a page on the page's own host.
type AssetLinker struct{}

// NewAssetLinker creates a new AssetLinker.
func NewAssetLinker() *AssetLinker {
	return &AssetLinker{}
}

// FindAssets returns the same-host assets referenced by html in document
// order.
func (l *AssetLinker) FindAssets(html, baseURL string) ([]docsearch.Asset, error) {
	page, doc, err := parse(html, baseURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var assets []docsearch.Asset
	eachRef(doc, func(sel *goquery.Selection, attr string) {
		ref, _ := sel.Attr(attr)
		resolved := page.resolve(ref)
		if resolved == "" {
			return
		}
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		assets = append(assets, docsearch.Asset{Ref: ref, URL: resolved})
	})
	return assets, nil
}

// RewriteAssets points every reference whose resolved URL is a key of local
// at the mapped relative path.
func (l *AssetLinker) RewriteAssets(html, baseURL string, local map[string]string) (string, error) {
	page, doc, err := parse(html, baseURL)
	if err != nil {
		return "", err
	}

	eachRef(doc, func(sel *goquery.Selection, attr string) {
		ref, _ := sel.Attr(attr)
		if path, ok := local[page.resolve(ref)]; ok {
			sel.SetAttr(attr, path)
		}
	})

	out, err := doc.Html()
	if err != nil {
		return "", docsearch.Errorf(docsearch.EINTERNAL, "failed to render HTML: %v", err)
	}
	return out, nil
}

// pageRefs resolves the references of one page.
type pageRefs struct {
	// base resolves relative references, honoring <base href>.
	base *url.URL

	// host is the page's own host. Only assets on it are mirrored.
	host string
}

func parse(html, baseURL string) (*pageRefs, *goquery.Document, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, nil, docsearch.Errorf(docsearch.EINVALID, "invalid base URL: %v", err)
	}
	page := &pageRefs{base: base, host: base.Host}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, docsearch.Errorf(docsearch.EINVALID, "failed to parse HTML: %v", err)
	}

	// A <base href> changes how relative references resolve.
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(href); err == nil {
			page.base = base.ResolveReference(ref)
		}
	}
	return page, doc, nil
}

func eachRef(doc *goquery.Document, fn func(sel *goquery.Selection, attr string)) {
	for _, r := range assetRefs {
		doc.Find(r.Selector).Each(func(_ int, sel *goquery.Selection) {
			fn(sel, r.Attr)
		})
	}
}

// resolve resolves ref against the page base. Returns an empty string for
// references that are not fetchable over HTTP on the page's host.
func (p *pageRefs) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || isNonHTTPLink(ref) {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	resolved := p.base.ResolveReference(u)
	resolved.Fragment = ""
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host != p.host {
		return ""
	}
	return resolved.String()
}

// isNonHTTPLink checks if a reference uses a scheme that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
