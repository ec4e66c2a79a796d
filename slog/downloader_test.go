package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/mock"
	dsslog "github.com/fwojciec/docsearch/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingDownloader(t *testing.T) {
	t.Parallel()

	t.Run("logs download route", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Downloader{
			DownloadFn: func(_ context.Context, name, _ string, _ bool) (*docsearch.DownloadResult, error) {
				return &docsearch.DownloadResult{Route: "downloadedDocs/" + name + "/example.com/index.html"}, nil
			},
		}

		d := dsslog.NewLoggingDownloader(inner, slog.New(slog.NewTextHandler(&buf, nil)))
		res, err := d.Download(context.Background(), "Rainbow", "https://example.com/", true)

		require.NoError(t, err)
		assert.Equal(t, "downloadedDocs/Rainbow/example.com/index.html", res.Route)
		output := buf.String()
		assert.Contains(t, output, "msg=download")
		assert.Contains(t, output, "name=Rainbow")
		assert.Contains(t, output, "indexable=true")
		assert.Contains(t, output, "route=downloadedDocs/Rainbow/example.com/index.html")
	})

	t.Run("logs remove failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Downloader{
			RemoveFn: func(_ context.Context, name string) error {
				return docsearch.Errorf(docsearch.ENOTFOUND, "no files for %s", name)
			},
		}

		err := dsslog.NewLoggingDownloader(inner, slog.New(slog.NewTextHandler(&buf, nil))).Remove(context.Background(), "Ghost")

		assert.Equal(t, docsearch.ENOTFOUND, docsearch.ErrorCode(err))
		assert.Contains(t, buf.String(), `msg="remove files"`)
		assert.Contains(t, buf.String(), `err="docsearch error: code=not_found message=no files for Ghost"`)
	})
}
