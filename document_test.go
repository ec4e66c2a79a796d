package docsearch_test

import (
	"testing"
	"time"

	"github.com/fwojciec/docsearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *docsearch.Document {
		return &docsearch.Document{Name: "Doc", URL: "https://example.com", Route: "downloadedDocs/Doc/example.com/index.html"}
	}

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, valid().Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		t.Parallel()
		doc := valid()
		doc.Name = ""
		assert.Equal(t, docsearch.EINVALID, docsearch.ErrorCode(doc.Validate()))
	})

	t.Run("missing url", func(t *testing.T) {
		t.Parallel()
		doc := valid()
		doc.URL = ""
		assert.Equal(t, docsearch.EINVALID, docsearch.ErrorCode(doc.Validate()))
	})

	t.Run("missing route", func(t *testing.T) {
		t.Parallel()
		doc := valid()
		doc.Route = ""
		assert.Equal(t, docsearch.EINVALID, docsearch.ErrorCode(doc.Validate()))
	})
}

func TestAcquireRequest_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  docsearch.AcquireRequest
		ok   bool
	}{
		{"complete", docsearch.AcquireRequest{URL: "https://example.com", Name: "doc"}, true},
		{"blank url", docsearch.AcquireRequest{URL: "  ", Name: "doc"}, false},
		{"blank name", docsearch.AcquireRequest{URL: "https://example.com"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.req.Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			assert.Equal(t, docsearch.EINVALID, docsearch.ErrorCode(err))
		})
	}
}

func TestNewDocument(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()
		doc := docsearch.NewDocument(&docsearch.AcquireRequest{URL: "https://example.com", Name: "doc"}, now)

		assert.Equal(t, "en", doc.Locale)
		assert.False(t, doc.Relevant)
		assert.Equal(t, now, doc.Date)
		assert.NotNil(t, doc.Tags)
		assert.Empty(t, doc.Tags)
		assert.NotNil(t, doc.Keywords)
		assert.Empty(t, doc.Keywords)
	})

	t.Run("keeps caller values", func(t *testing.T) {
		t.Parallel()
		doc := docsearch.NewDocument(&docsearch.AcquireRequest{
			URL:      "https://example.com",
			Name:     "doc",
			Locale:   "es",
			Relevant: true,
			Tags:     []string{"a", "b", "a", ""},
			Keywords: []string{"x", "y"},
		}, now)

		assert.Equal(t, "es", doc.Locale)
		assert.True(t, doc.Relevant)
		assert.Equal(t, []string{"a", "b"}, doc.Tags)
		assert.Equal(t, []string{"x", "y"}, doc.Keywords)
	})
}

func TestMerge(t *testing.T) {
	t.Parallel()

	before := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	after := before.Add(time.Hour)
	info := &docsearch.PageInfo{
		Title:       "Extracted",
		IndexedBody: "body text",
		ContentHash: "abc",
		Snippet:     "summary",
	}

	t.Run("caller title wins", func(t *testing.T) {
		t.Parallel()
		doc := &docsearch.Document{Title: "Mine", Date: before}
		docsearch.Merge(doc, info, after)

		assert.Equal(t, "Mine", doc.Title)
		assert.Equal(t, "body text", doc.IndexedBody)
		assert.Equal(t, "abc", doc.ContentHash)
		assert.Equal(t, after, doc.Date)
	})

	t.Run("blank title is filled", func(t *testing.T) {
		t.Parallel()
		doc := &docsearch.Document{Title: "  "}
		docsearch.Merge(doc, info, after)

		assert.Equal(t, "Extracted", doc.Title)
		assert.Equal(t, "summary", doc.SearchSnippet)
	})

	t.Run("extracted values always replace stale ones", func(t *testing.T) {
		t.Parallel()
		doc := &docsearch.Document{IndexedBody: "old", ContentHash: "old", SearchSnippet: "kept"}
		docsearch.Merge(doc, info, after)

		assert.Equal(t, "body text", doc.IndexedBody)
		assert.Equal(t, "abc", doc.ContentHash)
		assert.Equal(t, "kept", doc.SearchSnippet)
	})

	t.Run("falls back to default title", func(t *testing.T) {
		t.Parallel()
		doc := &docsearch.Document{}
		docsearch.Merge(doc, &docsearch.PageInfo{}, after)

		assert.Equal(t, docsearch.DefaultTitle, doc.Title)
	})
}
