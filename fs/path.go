// Package fs stores downloaded pages on the local filesystem.
package fs

import (
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docsearch"
)

// MirrorPath maps a resource URL to a slash-separated relative path that
// mirrors the site structure: "<host>/<path>". Pages without an HTML
// extension become "<path>/index.html". A query string is folded into the
// file name as a hash so that distinct queries map to distinct files.
func MirrorPath(rawURL string, page bool) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", docsearch.Errorf(docsearch.EINVALID, "invalid resource url %q", rawURL)
	}

	host := strings.ReplaceAll(u.Host, ":", "_")
	p := path.Clean("/" + u.Path)
	dirLike := p == "/" || strings.HasSuffix(u.Path, "/")
	p = strings.TrimPrefix(p, "/")

	ext := path.Ext(p)
	switch {
	case dirLike:
		p = path.Join(p, "index.html")
	case page && ext == "":
		p = path.Join(p, "index.html")
	case page && ext != ".html" && ext != ".htm":
		p = strings.TrimSuffix(p, ext) + ".html"
	}

	if u.RawQuery != "" {
		ext = path.Ext(p)
		sum := strconv.FormatUint(xxhash.Sum64String(u.RawQuery), 16)
		p = strings.TrimSuffix(p, ext) + "_" + sum + ext
	}

	return path.Join(host, p), nil
}

// relativeRef returns the slash-separated reference from the directory of
// the file from to the file to, both relative to the same root.
func relativeRef(from, to string) string {
	fromDir := strings.Split(path.Dir(from), "/")
	toParts := strings.Split(to, "/")
	if path.Dir(from) == "." {
		fromDir = nil
	}

	i := 0
	for i < len(fromDir) && i < len(toParts)-1 && fromDir[i] == toParts[i] {
		i++
	}

	var b strings.Builder
	for range fromDir[i:] {
		b.WriteString("../")
	}
	b.WriteString(strings.Join(toParts[i:], "/"))
	return b.String()
}
