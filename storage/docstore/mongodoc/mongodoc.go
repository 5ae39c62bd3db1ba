// Package mongodoc implements the document store on MongoDB.
package mongodoc

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/docstore"
)

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ docstore.Store = (*DB)(nil)

// Open connects to the MongoDB deployment at uri and selects the database name.
func Open(ctx context.Context, uri, name string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongo")
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "pinging mongo")
	}
	return &DB{client: client, db: client.Database(name)}, nil
}

func (db *DB) Healthy(ctx context.Context) error {
	return db.client.Ping(ctx, readpref.Primary())
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// EnsureIndex creates an ascending index on field of collection if missing.
func (db *DB) EnsureIndex(ctx context.Context, collection, field string) error {
	_, err := db.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: field, Value: 1}},
	})
	return errors.Wrapf(err, "creating index %s.%s", collection, field)
}

type collection[T any] struct {
	coll *mongo.Collection
}

var _ docstore.Collection[struct{}] = (*collection[struct{}])(nil) // interface compliance check

func NewCollection[T any](db *DB, name string) docstore.Collection[T] {
	return &collection[T]{coll: db.db.Collection(name)}
}

// newID returns an ObjectID hex: store-assigned, opaque & roughly insertion ordered.
func newID() string {
	return primitive.NewObjectID().Hex()
}

func (c *collection[T]) Insert(ctx context.Context, doc *T) (string, error) {
	if doc == nil {
		return "", docstore.ErrNilPointer
	}
	id := newID()
	docstore.SetID(doc, id)
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (c *collection[T]) find(ctx context.Context, filter interface{}) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	docs := make([]T, 0)
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *collection[T]) All(ctx context.Context) ([]T, error) {
	return c.find(ctx, bson.M{})
}

func (c *collection[T]) FindBy(ctx context.Context, field string, value interface{}) ([]T, error) {
	return c.find(ctx, bson.M{field: value})
}

func (c *collection[T]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, docstore.ErrNotFound
	}
	return doc, err
}

func (c *collection[T]) Replace(ctx context.Context, id string, doc T) error {
	docstore.SetID(&doc, id)
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (c *collection[T]) Delete(ctx context.Context, id string) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}
