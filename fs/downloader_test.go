package fs_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/fs"
	"github.com/fwojciec/docsearch/goquery"
	dshttp "github.com/fwojciec/docsearch/http"
	"github.com/fwojciec/docsearch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// Ensure Downloader implements docsearch.Downloader at compile time.
var _ docsearch.Downloader = (*fs.Downloader)(nil)

// newSite serves a page at /wiki/Rainbow referencing a stylesheet, an image
// and a missing image.
func newSite(t *testing.T, body string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/wiki/Rainbow", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/static/site.css", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("body{}"))
	})
	mux.HandleFunc("/wiki/img/arc.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("PNG"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

const rainbowPage = `<html><head><link rel="stylesheet" href="/static/site.css"></head>
<body><h1>Rainbow</h1><img src="img/arc.png"><img src="img/missing.png">
<script src="https://example.disqus.com/embed.js"></script></body></html>`

func newDownloader(root string) *fs.Downloader {
	return fs.NewDownloader(root, dshttp.NewFetcher(), goquery.NewAssetLinker())
}

func hostDir(server *httptest.Server) string {
	return strings.ReplaceAll(strings.TrimPrefix(server.URL, "http://"), ":", "_")
}

func TestDownloader_Download(t *testing.T) {
	t.Parallel()

	t.Run("mirrors page and assets", func(t *testing.T) {
		t.Parallel()

		server := newSite(t, rainbowPage)
		root := t.TempDir()

		res, err := newDownloader(root).Download(context.Background(), "Rainbow", server.URL+"/wiki/Rainbow", true)
		require.NoError(t, err)

		host := hostDir(server)
		assert.Equal(t, "downloadedDocs/Rainbow/"+host+"/wiki/Rainbow/index.html", res.Route)
		assert.Equal(t, server.URL+"/wiki/Rainbow", res.RootURL)
		assert.Equal(t, filepath.Join(root, filepath.FromSlash(res.Route)), res.FullPath)

		page, err := os.ReadFile(res.FullPath)
		require.NoError(t, err)
		assert.Contains(t, string(page), `href="../../static/site.css"`)
		assert.Contains(t, string(page), `src="../img/arc.png"`)
		assert.Contains(t, string(page), `src="img/missing.png"`)
		assert.NotContains(t, string(page), "disqus.com")

		css, err := os.ReadFile(filepath.Join(root, "downloadedDocs", "Rainbow", host, "static", "site.css"))
		require.NoError(t, err)
		assert.Equal(t, "body{}", string(css))

		_, err = os.Stat(filepath.Join(root, "downloadedDocs", "Rainbow.tmp"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("re-download replaces the previous copy", func(t *testing.T) {
		t.Parallel()

		server := newSite(t, rainbowPage)
		root := t.TempDir()
		d := newDownloader(root)

		first, err := d.Download(context.Background(), "Rainbow", server.URL+"/wiki/Rainbow", true)
		require.NoError(t, err)

		stale := filepath.Join(root, "downloadedDocs", "Rainbow", "stale.txt")
		require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

		second, err := d.Download(context.Background(), "Rainbow", server.URL+"/wiki/Rainbow", true)
		require.NoError(t, err)

		assert.Equal(t, first.Route, second.Route)
		_, err = os.Stat(stale)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("preview uses the shared slot", func(t *testing.T) {
		t.Parallel()

		server := newSite(t, rainbowPage)
		root := t.TempDir()

		res, err := newDownloader(root).Download(context.Background(), "Anything", server.URL+"/wiki/Rainbow", false)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(res.Route, "previewDocs/currentDocument/"))
		_, err = os.Stat(filepath.Join(root, "downloadedDocs", "Anything"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("fetch failure is returned untouched and clears the old copy", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		old := filepath.Join(root, "downloadedDocs", "Rainbow", "index.html")
		require.NoError(t, os.MkdirAll(filepath.Dir(old), 0o755))
		require.NoError(t, os.WriteFile(old, []byte("old"), 0o644))

		fetchErr := docsearch.Errorf(docsearch.EUNAVAILABLE, "down")
		fetcher := &mock.Fetcher{FetchFn: func(ctx context.Context, url string) (*docsearch.Resource, error) {
			return nil, fetchErr
		}}

		_, err := fs.NewDownloader(root, fetcher, goquery.NewAssetLinker()).
			Download(context.Background(), "Rainbow", "https://example.com", true)

		assert.True(t, errors.Is(err, fetchErr))
		_, statErr := os.Stat(filepath.Join(root, "downloadedDocs", "Rainbow"))
		assert.True(t, os.IsNotExist(statErr))
		_, statErr = os.Stat(filepath.Join(root, "downloadedDocs", "Rainbow.tmp"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("invalid name is rejected before any request", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{FetchFn: func(ctx context.Context, url string) (*docsearch.Resource, error) {
			t.Fatal("unexpected fetch")
			return nil, nil
		}}
		d := fs.NewDownloader(t.TempDir(), fetcher, goquery.NewAssetLinker())

		for _, name := range []string{"", "..", "a/b", `a\b`, "x.tmp"} {
			_, err := d.Download(context.Background(), name, "https://example.com", true)
			assert.Equal(t, docsearch.EINVALID, docsearch.ErrorCode(err), name)
		}
	})

	t.Run("page fetcher option renders the root page only", func(t *testing.T) {
		t.Parallel()

		server := newSite(t, "")
		var pageCalls int
		page := &mock.Fetcher{FetchFn: func(ctx context.Context, url string) (*docsearch.Resource, error) {
			pageCalls++
			return &docsearch.Resource{URL: url, Body: []byte(rainbowPage)}, nil
		}}
		root := t.TempDir()
		d := fs.NewDownloader(root, dshttp.NewFetcher(), goquery.NewAssetLinker(), fs.WithPageFetcher(page), fs.WithConcurrency(1))

		res, err := d.Download(context.Background(), "Rainbow", server.URL+"/wiki/Rainbow", true)
		require.NoError(t, err)

		assert.Equal(t, 1, pageCalls)
		body, err := os.ReadFile(res.FullPath)
		require.NoError(t, err)
		assert.Contains(t, string(body), `src="../img/arc.png"`)
	})

	t.Run("header charset is applied to the stored page", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			html string
		}{
			{"no meta declaration", `<html><head><title>Привет мир</title></head><body><p>Привет мир</p></body></html>`},
			{"conflicting meta declaration", `<html><head><meta charset="iso-8859-1"><title>Привет мир</title></head><body></body></html>`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				encoded, err := charmap.Windows1251.NewEncoder().String(tt.html)
				require.NoError(t, err)
				fetcher := &mock.Fetcher{FetchFn: func(ctx context.Context, url string) (*docsearch.Resource, error) {
					return &docsearch.Resource{URL: url, ContentType: "text/html; charset=windows-1251", Body: []byte(encoded)}, nil
				}}

				res, err := fs.NewDownloader(t.TempDir(), fetcher, goquery.NewAssetLinker()).
					Download(context.Background(), "Privet", "https://example.com/privet", true)
				require.NoError(t, err)

				stored, err := os.ReadFile(res.FullPath)
				require.NoError(t, err)
				assert.Contains(t, string(stored), "Привет мир")

				conv := &mock.Converter{ConvertFn: func(string) (string, error) { return "", nil }}
				info, err := goquery.NewExtractor(conv).Extract(res.FullPath)
				require.NoError(t, err)
				assert.Equal(t, "Привет мир", info.Title)
			})
		}
	})
}

func TestDownloader_Remove(t *testing.T) {
	t.Parallel()

	t.Run("removes stored files", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		dir := filepath.Join(root, "downloadedDocs", "Rainbow")
		require.NoError(t, os.MkdirAll(dir, 0o755))

		require.NoError(t, newDownloader(root).Remove(context.Background(), "Rainbow"))

		_, err := os.Stat(dir)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("missing files are not found", func(t *testing.T) {
		t.Parallel()

		err := newDownloader(t.TempDir()).Remove(context.Background(), "Nope")

		assert.Equal(t, docsearch.ENOTFOUND, docsearch.ErrorCode(err))
	})
}

func TestDownloader_Init(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "assets")

	require.NoError(t, newDownloader(root).Init())

	for _, area := range []string{fs.IndexableArea, fs.PreviewArea} {
		info, err := os.Stat(filepath.Join(root, area))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestInstrumenter_Instrument(t *testing.T) {
	t.Parallel()

	t.Run("appends the script tag", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "index.html")
		require.NoError(t, os.WriteFile(path, []byte("<html></html>"), 0o644))

		require.NoError(t, fs.NewInstrumenter(fs.DefaultInstrumentationSrc).Instrument(path))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "<html></html><script src=\"/assets/js/neurone-iframe-util.js\"></script>\n", string(raw))
	})

	t.Run("missing file fails", func(t *testing.T) {
		t.Parallel()

		err := fs.NewInstrumenter("x.js").Instrument(filepath.Join(t.TempDir(), "missing.html"))

		assert.Equal(t, docsearch.EINTEGRITY, docsearch.ErrorCode(err))
	})
}
