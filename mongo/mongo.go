// Package mongo provides the MongoDB-based document store.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultDatabase is the database used when none is configured.
const DefaultDatabase = "docsearch"

// DB represents a MongoDB connection.
type DB struct {
	client   *mongo.Client
	db       *mongo.Database
	uri      string
	database string
}

// NewDB creates a new DB instance for the given connection string.
func NewDB(uri, database string) *DB {
	if database == "" {
		database = DefaultDatabase
	}
	return &DB{uri: uri, database: database}
}

// Open connects to the server and creates the indexes if needed.
func (db *DB) Open(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(db.uri))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	db.client = client
	db.db = client.Database(db.database)

	if err := db.createIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Close disconnects from the server.
func (db *DB) Close() error {
	if db.client != nil {
		return db.client.Disconnect(context.Background())
	}
	return nil
}

// Drop removes the whole database. Used by tests.
func (db *DB) Drop(ctx context.Context) error {
	return db.db.Drop(ctx)
}

func (db *DB) documents() *mongo.Collection {
	return db.db.Collection("documents")
}

func (db *DB) createIndexes(ctx context.Context) error {
	_, err := db.documents().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "route", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "date", Value: -1}}},
	})
	return err
}
