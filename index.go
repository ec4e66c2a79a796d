package docsearch

import (
	"context"
	"strings"
)

// Index field names shared by every Index implementation.
const (
	FieldTitle         = "title_t"
	FieldIndexedBody   = "indexedBody_t"
	FieldKeywords      = "keywords_t"
	FieldSearchSnippet = "searchSnippet_t"
	FieldLocale        = "locale_s"
	FieldTags          = "tags_ss"

	// EntryType is the value of the type field of every page entry.
	EntryType = "page"
)

// Highlight markers wrapped around matched terms in snippets.
const (
	HighlightPre  = `<em class="hl">`
	HighlightPost = `</em>`
)

// IndexEntry is the projection of a Document into the index field schema.
type IndexEntry struct {
	ID            string   `json:"id"`
	DocID         string   `json:"docId_s"`
	Locale        string   `json:"locale_s"`
	Relevant      bool     `json:"relevant_b"`
	Title         string   `json:"title_t"`
	SearchSnippet string   `json:"searchSnippet_t"`
	IndexedBody   string   `json:"indexedBody_t"`
	Keywords      []string `json:"keywords_t"`
	Tags          []string `json:"tags_ss"`
	URL           string   `json:"url_t"`
	MaskedURL     string   `json:"maskedUrl_s"`
	Type          string   `json:"type_s"`
}

// NewIndexEntry maps doc to its index entry. The entry id is the document
// name so that re-adding a document replaces its previous entry.
func NewIndexEntry(doc *Document) *IndexEntry {
	return &IndexEntry{
		ID:            doc.Name,
		DocID:         doc.ID,
		Locale:        doc.Locale,
		Relevant:      doc.Relevant,
		Title:         doc.Title,
		SearchSnippet: doc.SearchSnippet,
		IndexedBody:   doc.IndexedBody,
		Keywords:      append([]string{}, doc.Keywords...),
		Tags:          append([]string{}, doc.Tags...),
		URL:           doc.URL,
		MaskedURL:     doc.MaskedURL,
		Type:          EntryType,
	}
}

// DefaultPageSize is the number of results per page when none is requested.
const DefaultPageSize = 10

// MaxPageSize bounds the number of results per page.
const MaxPageSize = 100

// Query is a search request.
type Query struct {
	Query    string   `json:"query"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
	Locale   string   `json:"locale,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Validate returns an error if the query cannot be executed.
func (q *Query) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return Errorf(EINVALID, "query required")
	}
	if q.Page < 0 {
		return Errorf(EINVALID, "page must not be negative")
	}
	if q.PageSize < 0 || q.PageSize > MaxPageSize {
		return Errorf(EINVALID, "page size must be between 0 (default) and %d", MaxPageSize)
	}
	return nil
}

// Start returns the offset of the first requested result.
func (q *Query) Start() int {
	return q.Page * q.Rows()
}

// Rows returns the page size, applying the default.
func (q *Query) Rows() int {
	if q.PageSize == 0 {
		return DefaultPageSize
	}
	return q.PageSize
}

// IndexResponse is the raw answer of an Index to a query.
type IndexResponse struct {
	NumFound int
	Entries  []*IndexEntry

	// Highlighting maps entry id to field name to snippets.
	Highlighting map[string]map[string][]string
}

// Index is a full-text index of document entries. Adds and deletes become
// visible to Search after Commit.
type Index interface {
	// Ping checks that the index is reachable.
	Ping(ctx context.Context) error

	// Add adds entries, replacing entries with the same id.
	Add(ctx context.Context, entries []*IndexEntry) error

	// DeleteAll removes every entry.
	DeleteAll(ctx context.Context) error

	// Commit makes pending changes visible.
	Commit(ctx context.Context) error

	// Search executes q. A query matching nothing returns an empty response.
	Search(ctx context.Context, q *Query) (*IndexResponse, error)
}

// SearchResult is the post-processed answer to a query.
type SearchResult struct {
	Total int           `json:"total"`
	Hits  []*IndexEntry `json:"docs"`

	// Highlights maps document name to body snippets.
	Highlights map[string][]string `json:"highlights"`

	// Routes maps document name to its stored route.
	Routes map[string]string `json:"routes"`
}

// SearchService keeps the index in sync with the document store and answers
// queries.
type SearchService interface {
	// Search runs q and reorders the hits for relevance.
	Search(ctx context.Context, q *Query) (*SearchResult, error)

	// Regenerate rebuilds the whole index from the document store.
	Regenerate(ctx context.Context) error

	// IndexDocument adds or replaces one document's entry and commits.
	IndexDocument(ctx context.Context, doc *Document) error
}
