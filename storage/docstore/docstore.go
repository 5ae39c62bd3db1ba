// Package docstore defines the document collection every storage backend implements.
//
// Documents are described by their `bson` tags (MongoDB natively, the memory and postgres backends through
// bson / extended JSON) and their `firestore` tags. `json` tags only shape API responses.
package docstore

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrNotFound   = errors.New("document not found")
	ErrInvalidID  = errors.New("invalid document id")
	ErrNilPointer = errors.New("nil document")
)

// Collection is a flat namespace of documents of type T. Ids are assigned by the store.
type Collection[T any] interface {
	// Insert stores doc and sets its ID (when T implements Identifiable).
	Insert(ctx context.Context, doc *T) (string, error)
	// All returns every document; order is backend dependent.
	All(ctx context.Context) ([]T, error)
	// FindBy returns the documents whose `field` equals value (exact match).
	FindBy(ctx context.Context, field string, value interface{}) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	// Replace overwrites the document identified by id; ErrNotFound if it does not exist.
	Replace(ctx context.Context, id string, doc T) error
	// Delete removes the document identified by id; ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}

// Identifiable documents get their store-assigned id set on every read and insert.
type Identifiable interface {
	SetID(id string)
}

// Store is the backend connection the collections are opened from.
type Store interface {
	Healthy(ctx context.Context) error
	Close(ctx context.Context) error
}

// SetID sets id on doc when it is Identifiable.
func SetID(doc interface{}, id string) {
	if d, ok := doc.(Identifiable); ok {
		d.SetID(id)
	}
}
