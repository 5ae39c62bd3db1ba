// Package firedoc implements the document store on Cloud Firestore.
package firedoc

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/docstore"
)

type DB struct {
	client *firestore.Client
}

var _ docstore.Store = (*DB)(nil)

// Open creates a Firestore client for projectID. credsFile may be empty to use the ambient credentials.
func Open(ctx context.Context, projectID, credsFile string) (*DB, error) {
	var opts []option.ClientOption
	if credsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating firestore client")
	}
	return &DB{client: client}, nil
}

// Healthy lists at most one collection to check the connection & credentials.
func (db *DB) Healthy(ctx context.Context) error {
	_, err := db.client.Collections(ctx).Next()
	if err == iterator.Done {
		return nil
	}
	return err
}

func (db *DB) Close(context.Context) error {
	return db.client.Close()
}

type collection[T any] struct {
	coll *firestore.CollectionRef
}

var _ docstore.Collection[struct{}] = (*collection[struct{}])(nil) // interface compliance check

func NewCollection[T any](db *DB, name string) docstore.Collection[T] {
	return &collection[T]{coll: db.client.Collection(name)}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func decode[T any](snap *firestore.DocumentSnapshot) (T, error) {
	var doc T
	if err := snap.DataTo(&doc); err != nil {
		return doc, errors.Wrap(err, "decoding document")
	}
	docstore.SetID(&doc, snap.Ref.ID)
	return doc, nil
}

func (c *collection[T]) Insert(ctx context.Context, doc *T) (string, error) {
	if doc == nil {
		return "", docstore.ErrNilPointer
	}
	ref := c.coll.NewDoc()
	docstore.SetID(doc, ref.ID)
	if _, err := ref.Create(ctx, doc); err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (c *collection[T]) collect(iter *firestore.DocumentIterator) ([]T, error) {
	defer iter.Stop()

	docs := make([]T, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		doc, err := decode[T](snap)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *collection[T]) All(ctx context.Context) ([]T, error) {
	return c.collect(c.coll.Documents(ctx))
}

func (c *collection[T]) FindBy(ctx context.Context, field string, value interface{}) ([]T, error) {
	return c.collect(c.coll.Where(field, "==", value).Documents(ctx))
}

func (c *collection[T]) Get(ctx context.Context, id string) (T, error) {
	if id == "" {
		var zero T
		return zero, docstore.ErrInvalidID
	}
	snap, err := c.coll.Doc(id).Get(ctx)
	if err != nil {
		var zero T
		if isNotFound(err) {
			return zero, docstore.ErrNotFound
		}
		return zero, err
	}
	return decode[T](snap)
}

func (c *collection[T]) Replace(ctx context.Context, id string, doc T) error {
	if id == "" {
		return docstore.ErrInvalidID
	}
	ref := c.coll.Doc(id)
	docstore.SetID(&doc, id)
	// Set creates missing documents.
	if _, err := ref.Get(ctx); err != nil {
		if isNotFound(err) {
			return docstore.ErrNotFound
		}
		return err
	}
	_, err := ref.Set(ctx, doc)
	return err
}

func (c *collection[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return docstore.ErrInvalidID
	}
	if _, err := c.coll.Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return docstore.ErrNotFound
		}
		return err
	}
	return nil
}
