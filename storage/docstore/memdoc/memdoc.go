// Package memdoc is an in-process document store. Documents are kept BSON encoded, in insertion order.
package memdoc

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/docstore"
)

type (
	DB struct {
		mutex  sync.RWMutex
		tables map[string]*table
	}

	table struct {
		ids  []string
		docs map[string]bson.Raw
	}
)

var _ docstore.Store = (*DB)(nil)

func NewDB() *DB {
	return &DB{tables: make(map[string]*table)}
}

func (db *DB) table(name string) *table {
	tbl, ok := db.tables[name]
	if !ok {
		tbl = &table{docs: make(map[string]bson.Raw)}
		db.tables[name] = tbl
	}
	return tbl
}

func (db *DB) Healthy(context.Context) error { return nil }
func (db *DB) Close(context.Context) error   { return nil }

// Reset drops every collection.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.tables = make(map[string]*table)
}

type collection[T any] struct {
	db   *DB
	name string
}

var _ docstore.Collection[struct{}] = (*collection[struct{}])(nil) // interface compliance check

func NewCollection[T any](db *DB, name string) docstore.Collection[T] {
	return &collection[T]{db: db, name: name}
}

func (c *collection[T]) decode(id string, raw bson.Raw) (T, error) {
	var doc T
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return doc, errors.Wrap(err, "decoding document")
	}
	docstore.SetID(&doc, id)
	return doc, nil
}

func (c *collection[T]) Insert(_ context.Context, doc *T) (string, error) {
	if doc == nil {
		return "", docstore.ErrNilPointer
	}
	id := uuid.NewString()
	docstore.SetID(doc, id)
	raw, err := bson.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, "encoding document")
	}

	c.db.mutex.Lock()
	defer c.db.mutex.Unlock()

	tbl := c.db.table(c.name)
	tbl.ids = append(tbl.ids, id)
	tbl.docs[id] = raw
	return id, nil
}

func (c *collection[T]) All(context.Context) ([]T, error) {
	c.db.mutex.RLock()
	defer c.db.mutex.RUnlock()

	tbl := c.db.table(c.name)
	docs := make([]T, 0, len(tbl.ids))
	for _, id := range tbl.ids {
		doc, err := c.decode(id, tbl.docs[id])
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *collection[T]) FindBy(_ context.Context, field string, value interface{}) ([]T, error) {
	typ, data, err := bson.MarshalValue(value)
	if err != nil {
		return nil, errors.Wrap(err, "encoding filter value")
	}
	want := bson.RawValue{Type: typ, Value: data}

	c.db.mutex.RLock()
	defer c.db.mutex.RUnlock()

	tbl := c.db.table(c.name)
	docs := make([]T, 0)
	for _, id := range tbl.ids {
		raw := tbl.docs[id]
		got, err := raw.LookupErr(field)
		if err != nil || !got.Equal(want) {
			continue
		}
		doc, err := c.decode(id, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *collection[T]) Get(_ context.Context, id string) (T, error) {
	c.db.mutex.RLock()
	defer c.db.mutex.RUnlock()

	raw, ok := c.db.table(c.name).docs[id]
	if !ok {
		var zero T
		return zero, docstore.ErrNotFound
	}
	return c.decode(id, raw)
}

func (c *collection[T]) Replace(_ context.Context, id string, doc T) error {
	docstore.SetID(&doc, id)
	raw, err := bson.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encoding document")
	}

	c.db.mutex.Lock()
	defer c.db.mutex.Unlock()

	tbl := c.db.table(c.name)
	if _, ok := tbl.docs[id]; !ok {
		return docstore.ErrNotFound
	}
	tbl.docs[id] = raw
	return nil
}

func (c *collection[T]) Delete(_ context.Context, id string) error {
	c.db.mutex.Lock()
	defer c.db.mutex.Unlock()

	tbl := c.db.table(c.name)
	if _, ok := tbl.docs[id]; !ok {
		return docstore.ErrNotFound
	}
	delete(tbl.docs, id)
	for i, tid := range tbl.ids {
		if tid == id {
			tbl.ids = append(tbl.ids[:i], tbl.ids[i+1:]...)
			break
		}
	}
	return nil
}
