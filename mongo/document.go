package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/docsearch"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time interface verification.
var _ docsearch.DocumentService = (*DocumentService)(nil)

// document is the stored form of docsearch.Document.
type document struct {
	ID            string    `bson:"_id"`
	Name          string    `bson:"name"`
	Title         string    `bson:"title"`
	Locale        string    `bson:"locale"`
	URL           string    `bson:"url"`
	MaskedURL     string    `bson:"maskedUrl"`
	Tags          []string  `bson:"tags"`
	Keywords      []string  `bson:"keywords"`
	Relevant      bool      `bson:"relevant"`
	SearchSnippet string    `bson:"searchSnippet"`
	IndexedBody   string    `bson:"indexedBody"`
	Route         string    `bson:"route"`
	ContentHash   string    `bson:"hash"`
	Date          time.Time `bson:"date"`
}

func (d *document) toDomain() *docsearch.Document {
	return &docsearch.Document{
		ID:            d.ID,
		Name:          d.Name,
		Title:         d.Title,
		Locale:        d.Locale,
		URL:           d.URL,
		MaskedURL:     d.MaskedURL,
		Tags:          nonNil(d.Tags),
		Keywords:      nonNil(d.Keywords),
		Relevant:      d.Relevant,
		SearchSnippet: d.SearchSnippet,
		IndexedBody:   d.IndexedBody,
		Route:         d.Route,
		ContentHash:   d.ContentHash,
		Date:          d.Date.UTC(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// DocumentService implements docsearch.DocumentService using MongoDB.
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

	update := bson.M{
		"$set": bson.M{
			"title":         doc.Title,
			"locale":        doc.Locale,
			"url":           doc.URL,
			"maskedUrl":     doc.MaskedURL,
			"tags":          nonNil(doc.Tags),
			"keywords":      nonNil(doc.Keywords),
			"relevant":      doc.Relevant,
			"searchSnippet": doc.SearchSnippet,
			"indexedBody":   doc.IndexedBody,
			"route":         doc.Route,
			"hash":          doc.ContentHash,
			"date":          doc.Date.UTC(),
		},
		"$setOnInsert": bson.M{"_id": uuid.New().String()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored document
	err := s.db.documents().FindOneAndUpdate(ctx, bson.M{"name": doc.Name}, update, opts).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		return docsearch.Errorf(docsearch.EINTEGRITY, "route %q already belongs to another document", doc.Route)
	}
	if err != nil {
		return err
	}

	doc.ID = stored.ID
	return nil
}

// FindDocumentByName retrieves a document by name.
func (s *DocumentService) FindDocumentByName(ctx context.Context, name string) (*docsearch.Document, error) {
	var stored document
	err := s.db.documents().FindOne(ctx, bson.M{"name": name}).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, docsearch.Errorf(docsearch.ENOTFOUND, "document %q not found", name)
	}
	if err != nil {
		return nil, err
	}
	return stored.toDomain(), nil
}

// FindDocuments retrieves documents matching the filter, newest first.
func (s *DocumentService) FindDocuments(ctx context.Context, filter docsearch.DocumentFilter) ([]*docsearch.Document, error) {
	query := bson.M{}
	if filter.Name != nil {
		query["name"] = *filter.Name
	}
	if filter.Route != nil {
		query["route"] = *filter.Route
	}
	if filter.Locale != nil {
		query["locale"] = *filter.Locale
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "name", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}

	cur, err := s.db.documents().Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	docs := []*docsearch.Document{}
	for cur.Next(ctx) {
		var stored document
		if err := cur.Decode(&stored); err != nil {
			return nil, err
		}
		docs = append(docs, stored.toDomain())
	}
	return docs, cur.Err()
}

// DeleteDocument permanently removes a document by name.
func (s *DocumentService) DeleteDocument(ctx context.Context, name string) error {
	res, err := s.db.documents().DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return docsearch.Errorf(docsearch.ENOTFOUND, "document %q not found", name)
	}
	return nil
}
