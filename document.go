package docsearch

import (
	"context"
	"strings"
	"time"
)

// Default values applied by NewDocument.
const (
	DefaultLocale = "en"
	DefaultTitle  = "Untitled Document"
)

// Document is the authoritative record of one acquired page.
type Document struct {
	ID            string    `json:"_id"`
	Name          string    `json:"docName"`
	Title         string    `json:"title"`
	Locale        string    `json:"locale"`
	URL           string    `json:"url"`
	MaskedURL     string    `json:"maskedUrl,omitempty"`
	Tags          []string  `json:"tags"`
	Keywords      []string  `json:"keywords"`
	Relevant      bool      `json:"relevant"`
	SearchSnippet string    `json:"searchSnippet,omitempty"`
	IndexedBody   string    `json:"indexedBody"`
	Route         string    `json:"route"`
	ContentHash   string    `json:"hash"`
	Date          time.Time `json:"date"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.Name == "" {
		return Errorf(EINVALID, "document name required")
	}
	if d.URL == "" {
		return Errorf(EINVALID, "document url required")
	}
	if d.Route == "" {
		return Errorf(EINVALID, "document route required")
	}
	return nil
}

// DocumentService represents a service for managing document records.
type DocumentService interface {
	// UpsertDocument inserts the document or replaces the record with the
	// same name. The ID of an existing record is preserved and written back
	// to doc.
	UpsertDocument(ctx context.Context, doc *Document) error

	// FindDocumentByName retrieves a document by name.
	// Returns ENOTFOUND if document does not exist.
	FindDocumentByName(ctx context.Context, name string) (*Document, error)

	// FindDocuments retrieves documents matching the filter.
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)

	// DeleteDocument permanently removes a document record.
	// Returns ENOTFOUND if document does not exist.
	DeleteDocument(ctx context.Context, name string) error
}

// DocumentFilter represents a filter for FindDocuments.
type DocumentFilter struct {
	Name   *string `json:"docName"`
	Route  *string `json:"route"`
	Locale *string `json:"locale"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// AcquireRequest is the caller input for acquiring or previewing a page.
type AcquireRequest struct {
	URL           string   `json:"url"`
	Name          string   `json:"docName"`
	Title         string   `json:"title,omitempty"`
	Locale        string   `json:"locale,omitempty"`
	Relevant      bool     `json:"relevant,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	MaskedURL     string   `json:"maskedUrl,omitempty"`
	SearchSnippet string   `json:"searchSnippet,omitempty"`
}

// Validate returns an error if the request is missing required fields.
func (r *AcquireRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return Errorf(EINVALID, "url required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return Errorf(EINVALID, "docName required")
	}
	return nil
}

// NewDocument builds a candidate record from caller input, applying the
// documented defaults.
func NewDocument(req *AcquireRequest, now time.Time) *Document {
	doc := &Document{
		Name:          strings.TrimSpace(req.Name),
		Title:         strings.TrimSpace(req.Title),
		Locale:        req.Locale,
		URL:           strings.TrimSpace(req.URL),
		MaskedURL:     req.MaskedURL,
		Tags:          uniqueStrings(req.Tags),
		Keywords:      append([]string{}, req.Keywords...),
		Relevant:      req.Relevant,
		SearchSnippet: req.SearchSnippet,
		Date:          now,
	}
	if doc.Locale == "" {
		doc.Locale = DefaultLocale
	}
	return doc
}

// Merge copies extracted page metadata into doc. A caller-supplied title
// wins; the body, hash and date are always replaced. The route is set by the
// caller from the download result, not from page metadata.
func Merge(doc *Document, info *PageInfo, now time.Time) {
	if strings.TrimSpace(doc.Title) == "" {
		doc.Title = info.Title
	}
	if doc.Title == "" {
		doc.Title = DefaultTitle
	}
	if doc.SearchSnippet == "" {
		doc.SearchSnippet = info.Snippet
	}
	doc.IndexedBody = info.IndexedBody
	doc.ContentHash = info.ContentHash
	doc.Date = now
}

// uniqueStrings returns the non-empty values of s in first-seen order.
func uniqueStrings(s []string) []string {
	out := make([]string, 0, len(s))
	seen := make(map[string]struct{}, len(s))
	for _, v := range s {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
