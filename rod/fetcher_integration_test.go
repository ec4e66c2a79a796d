//go:build integration

package rod_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/docsearch"
	"github.com/fwojciec/docsearch/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Fetcher implements docsearch.Fetcher at compile time.
var _ docsearch.Fetcher = (*rod.Fetcher)(nil)

func TestFetcher_Integration_RendersScript(t *testing.T) {
	t.Parallel()

	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.UserAgent()
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, `<html><body><div id="app"></div>
<script>document.getElementById("app").textContent = "rendered rainbow";</script></body></html>`)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fetcher, err := rod.NewFetcher(rod.WithMaxPages(1))
	require.NoError(t, err)
	defer fetcher.Close()

	for range 2 {
		res, err := fetcher.Fetch(ctx, srv.URL+"/page")
		require.NoError(t, err)
		assert.Contains(t, string(res.Body), "rendered rainbow")
		assert.Equal(t, srv.URL+"/page", res.URL)
	}
	assert.Equal(t, docsearch.UserAgent, agent)
}

func TestFetcher_Integration_CloseKillsLauncher(t *testing.T) {
	t.Parallel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	require.NotZero(t, fetcher.LauncherPID())

	require.NoError(t, fetcher.Close())
	require.NoError(t, fetcher.Close())
	assert.Zero(t, fetcher.LauncherPID())

	_, err = fetcher.Fetch(context.Background(), "http://127.0.0.1/")
	assert.Equal(t, docsearch.EUNAVAILABLE, docsearch.ErrorCode(err))
}
