// Package pgdoc implements the document store on PostgreSQL: one JSONB `documents` table keyed by (collection, id).
// Documents are encoded as relaxed extended JSON so their bson tags describe them here too.
package pgdoc

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/docstore"
)

type DB struct {
	*sqlx.DB
}

var _ docstore.Store = (*DB)(nil)

// Open opens the database at dsn and waits for it to be ready.
func Open(dsn string) (*DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening postgres")
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{DB: db}, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func (db *DB) Healthy(ctx context.Context) error {
	return db.PingContext(ctx)
}

func (db *DB) Close(context.Context) error {
	return db.DB.Close()
}

type row struct {
	ID   string `db:"id"`
	Data []byte `db:"data"`
}

type collection[T any] struct {
	db   *DB
	name string
}

var _ docstore.Collection[struct{}] = (*collection[struct{}])(nil) // interface compliance check

func NewCollection[T any](db *DB, name string) docstore.Collection[T] {
	return &collection[T]{db: db, name: name}
}

func encode(doc interface{}) ([]byte, error) {
	data, err := bson.MarshalExtJSON(doc, false /* canonical */, false /* escapeHTML */)
	return data, errors.Wrap(err, "encoding document")
}

func decode[T any](r row) (T, error) {
	var doc T
	if err := bson.UnmarshalExtJSON(r.Data, false /* canonical */, &doc); err != nil {
		return doc, errors.Wrap(err, "decoding document")
	}
	docstore.SetID(&doc, r.ID)
	return doc, nil
}

func (c *collection[T]) Insert(ctx context.Context, doc *T) (string, error) {
	if doc == nil {
		return "", docstore.ErrNilPointer
	}
	id := uuid.NewString()
	docstore.SetID(doc, id)
	data, err := encode(doc)
	if err != nil {
		return "", err
	}
	const q = `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`
	if _, err = c.db.ExecContext(ctx, q, c.name, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (c *collection[T]) selectDocs(ctx context.Context, q string, args ...interface{}) ([]T, error) {
	var rows []row
	if err := c.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	docs := make([]T, 0, len(rows))
	for _, r := range rows {
		doc, err := decode[T](r)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *collection[T]) All(ctx context.Context) ([]T, error) {
	const q = `SELECT id, data FROM documents WHERE collection = $1 ORDER BY seq`
	return c.selectDocs(ctx, q, c.name)
}

func (c *collection[T]) FindBy(ctx context.Context, field string, value interface{}) ([]T, error) {
	filter, err := encode(bson.M{field: value})
	if err != nil {
		return nil, err
	}
	const q = `SELECT id, data FROM documents WHERE collection = $1 AND data @> $2::jsonb ORDER BY seq`
	return c.selectDocs(ctx, q, c.name, filter)
}

func (c *collection[T]) Get(ctx context.Context, id string) (T, error) {
	var r row
	const q = `SELECT id, data FROM documents WHERE collection = $1 AND id = $2`
	if err := c.db.GetContext(ctx, &r, q, c.name, id); err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, docstore.ErrNotFound
		}
		return zero, err
	}
	return decode[T](r)
}

func (c *collection[T]) exec(ctx context.Context, q string, args ...interface{}) error {
	res, err := c.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (c *collection[T]) Replace(ctx context.Context, id string, doc T) error {
	docstore.SetID(&doc, id)
	data, err := encode(doc)
	if err != nil {
		return err
	}
	const q = `UPDATE documents SET data = $3, updated_at = now() WHERE collection = $1 AND id = $2`
	return c.exec(ctx, q, c.name, id, data)
}

func (c *collection[T]) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE collection = $1 AND id = $2`
	return c.exec(ctx, q, c.name, id)
}
