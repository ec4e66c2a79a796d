package main_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	main "github.com/fwojciec/docsearch/cmd/docsearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("reads a YAML file", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
env: dev
addr: ":8080"
db: mongodb://localhost:27017
mongo_database: neurone
solr:
  host: solr.internal
  port: 8984
  core: docs
fetch:
  timeout: 10s
  rps: 2
  browser: true
`)

		cfg, err := main.LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "dev", cfg.Env)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.True(t, cfg.IsMongo())
		assert.Equal(t, "neurone", cfg.MongoDatabase)
		assert.Equal(t, main.SolrConfig{Host: "solr.internal", Port: 8984, Core: "docs"}, cfg.Solr)
		assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
		assert.InDelta(t, 2.0, cfg.Fetch.RPS, 0)
		assert.True(t, cfg.Fetch.Browser)
		assert.Equal(t, 4, cfg.Fetch.AssetConcurrency)
		assert.Equal(t, "/assets/js/neurone-iframe-util.js", cfg.InstrumentationSrc)
		assert.NotEmpty(t, cfg.IndexPath)
	})

	t.Run("rejects unknown environments", func(t *testing.T) {
		t.Parallel()

		_, err := main.LoadConfig(writeConfig(t, "env: staging\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "staging")
	})

	t.Run("rejects missing files", func(t *testing.T) {
		t.Parallel()

		_, err := main.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}

func TestConfig_IsMongo(t *testing.T) {
	t.Parallel()

	for db, want := range map[string]bool{
		"/var/lib/docsearch.db":         false,
		":memory:":                      false,
		"mongodb://localhost:27017":     true,
		"mongodb+srv://cluster.example": true,
	} {
		assert.Equal(t, want, (&main.Config{DB: db}).IsMongo(), db)
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("local logs text at debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		main.NewLogger("local", &buf).Debug("ready", "k", "v")
		assert.Contains(t, buf.String(), "msg=ready")
	})

	t.Run("prod logs JSON at info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := main.NewLogger("prod", &buf)
		logger.Debug("hidden")
		logger.Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), `"msg":"shown"`)
	})
}
