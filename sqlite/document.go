package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/docsearch"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ docsearch.DocumentService = (*DocumentService)(nil)

const documentColumns = `id, name, title, locale, url, masked_url, tags, keywords, relevant,
	search_snippet, indexed_body, route, content_hash, date`

// DocumentService implements docsearch.DocumentService using SQLite.
type DocumentService struct {
	db *DB
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB) *DocumentService {
	return &DocumentService{db: db}
}

// UpsertDocument inserts doc or replaces the record with the same name,
// keeping the existing ID.
func (s *DocumentService) UpsertDocument(ctx context.Context, doc *docsearch.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	tags, err := encodeList(doc.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	keywords, err := encodeList(doc.Keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}

	var id string
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			title = excluded.title,
			locale = excluded.locale,
			url = excluded.url,
			masked_url = excluded.masked_url,
			tags = excluded.tags,
			keywords = excluded.keywords,
			relevant = excluded.relevant,
			search_snippet = excluded.search_snippet,
			indexed_body = excluded.indexed_body,
			route = excluded.route,
			content_hash = excluded.content_hash,
			date = excluded.date
		RETURNING id
	`, uuid.New().String(), doc.Name, doc.Title, doc.Locale, doc.URL, doc.MaskedURL, tags, keywords,
		doc.Relevant, doc.SearchSnippet, doc.IndexedBody, doc.Route, doc.ContentHash, formatTime(doc.Date),
	).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return docsearch.Errorf(docsearch.EINTEGRITY, "route %q already belongs to another document", doc.Route)
		}
		return err
	}

	doc.ID = id
	return nil
}

// FindDocumentByName retrieves a document by name.
func (s *DocumentService) FindDocumentByName(ctx context.Context, name string) (*docsearch.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE name = ?`, name)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docsearch.Errorf(docsearch.ENOTFOUND, "document %q not found", name)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// FindDocuments retrieves documents matching the filter, newest first.
func (s *DocumentService) FindDocuments(ctx context.Context, filter docsearch.DocumentFilter) ([]*docsearch.Document, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + documentColumns + " FROM documents WHERE 1=1")

	if filter.Name != nil {
		query.WriteString(" AND name = ?")
		args = append(args, *filter.Name)
	}
	if filter.Route != nil {
		query.WriteString(" AND route = ?")
		args = append(args, *filter.Route)
	}
	if filter.Locale != nil {
		query.WriteString(" AND locale = ?")
		args = append(args, *filter.Locale)
	}

	query.WriteString(" ORDER BY date DESC, name ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []*docsearch.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// DeleteDocument permanently removes a document by name.
func (s *DocumentService) DeleteDocument(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE name = ?", name)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return docsearch.Errorf(docsearch.ENOTFOUND, "document %q not found", name)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*docsearch.Document, error) {
	var doc docsearch.Document
	var tags, keywords, date string

	if err := row.Scan(&doc.ID, &doc.Name, &doc.Title, &doc.Locale, &doc.URL, &doc.MaskedURL,
		&tags, &keywords, &doc.Relevant, &doc.SearchSnippet, &doc.IndexedBody, &doc.Route,
		&doc.ContentHash, &date); err != nil {
		return nil, err
	}

	var err error
	if doc.Tags, err = decodeList(tags, "tags"); err != nil {
		return nil, err
	}
	if doc.Keywords, err = decodeList(keywords, "keywords"); err != nil {
		return nil, err
	}
	if doc.Date, err = parseTime(date, "date"); err != nil {
		return nil, err
	}
	return &doc, nil
}
