// Package database opens the configured document store and implements the entity repositories on top of it.
package database

import (
	"context"
	"database/sql"
	"net/url"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/fs"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/docstore"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/docstore/firedoc"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/docstore/memdoc"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/docstore/mongodoc"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/docstore/pgdoc"
)

const (
	DriverMemory    = "memory"
	DriverMongo     = "mongo"
	DriverFirestore = "firestore"
	DriverPostgres  = "postgres"
)

// collection names
const (
	studentsColl   = "students"
	adminsColl     = "admins"
	ccsColl        = "class_coordinators"
	teachersColl   = "subject_teachers"
	attendanceColl = "attendance_auto_marked"
	eventsColl     = "event_requests"
)

// mockable in tests
var (
	gooseUpFunc  = goose.Up
	gooseRunFunc = goose.Run
)

// DB is an open document store. Exactly one of its backends is set.
type DB struct {
	Driver string

	mem   *memdoc.DB
	mongo *mongodoc.DB
	fire  *firedoc.DB
	pg    *pgdoc.DB
}

// Open connects to the store described by conf.Store.
func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	db := &DB{Driver: conf.Store.Driver}
	var err error
	switch conf.Store.Driver {
	case DriverMemory, "":
		db.Driver = DriverMemory
		db.mem = memdoc.NewDB()
	case DriverMongo:
		db.mongo, err = mongodoc.Open(ctx, conf.Store.URL, conf.Store.Name)
	case DriverFirestore:
		db.fire, err = firedoc.Open(ctx, conf.Store.ProjectID, conf.Store.CredentialsFile)
	case DriverPostgres:
		db.pg, err = pgdoc.Open(conf.Store.URL)
	default:
		return nil, errors.Errorf("unknown store driver %q", conf.Store.Driver)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s store", db.Driver)
	}
	return db, nil
}

// NewMemoryDB returns an empty in-process store.
func NewMemoryDB() *DB {
	return &DB{Driver: DriverMemory, mem: memdoc.NewDB()}
}

func (db *DB) store() docstore.Store {
	switch {
	case db.mongo != nil:
		return db.mongo
	case db.fire != nil:
		return db.fire
	case db.pg != nil:
		return db.pg
	}
	return db.mem
}

func (db *DB) Healthy(ctx context.Context) error {
	return db.store().Healthy(ctx)
}

func (db *DB) Close(ctx context.Context) error {
	return db.store().Close(ctx)
}

// Reset empties the in-process store. Other backends are left untouched.
func (db *DB) Reset() {
	if db.mem != nil {
		db.mem.Reset()
	}
}

func collection[T any](db *DB, name string) docstore.Collection[T] {
	switch {
	case db.mongo != nil:
		return mongodoc.NewCollection[T](db.mongo, name)
	case db.fire != nil:
		return firedoc.NewCollection[T](db.fire, name)
	case db.pg != nil:
		return pgdoc.NewCollection[T](db.pg, name)
	}
	return memdoc.NewCollection[T](db.mem, name)
}

// Migrate prepares the store: the postgres `documents` table and the mongo lookup indexes.
// Memory & firestore need nothing.
func (db *DB) Migrate(ctx context.Context) error {
	switch {
	case db.pg != nil:
		return migratePostgres(db.pg.DB.DB)
	case db.mongo != nil:
		indexes := []struct{ coll, field string }{
			{studentsColl, "usn"},
			{adminsColl, "username"},
			{ccsColl, "username"},
			{teachersColl, "username"},
			{attendanceColl, "teacherUsername"},
			{eventsColl, "studentUsn"},
		}
		for _, idx := range indexes {
			if err := db.mongo.EnsureIndex(ctx, idx.coll, idx.field); err != nil {
				return errors.Wrap(err, "migrating database")
			}
		}
	}
	return nil
}

// RunMigration runs a goose command (up, down, status, version...) against the postgres store.
// The other stores are not versioned: they only know "up", which is Migrate.
func (db *DB) RunMigration(ctx context.Context, command string, args ...string) error {
	if db.pg == nil {
		if command != "up" {
			return errors.Errorf("%q: only \"up\" is supported by the %s store", command, db.Driver)
		}
		return db.Migrate(ctx)
	}
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return gooseRunFunc(command, db.pg.DB.DB, "migrations", args...)
}

func migratePostgres(db *sql.DB) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	if err := gooseUpFunc(db, "migrations"); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// CreateIfNotExist creates the postgres database named in conf.Store.URL when missing,
// connecting to the `postgres` maintenance database of the same server.
func CreateIfNotExist(conf *core.Config) error {
	if conf.Store.Driver != DriverPostgres {
		return nil
	}
	u, err := url.Parse(conf.Store.URL)
	if err != nil {
		return errors.Wrap(err, "parsing store url")
	}
	name := u.Path
	if len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}
	if name == "" {
		return nil
	}
	u.Path = "/postgres"

	admin, err := pgdoc.Open(u.String())
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = admin.DB.Close() }()

	var exists bool
	if err = admin.Get(&exists, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name); err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if !exists {
		// identifiers cannot be bound
		if _, err = admin.Exec("CREATE DATABASE " + pq.QuoteIdentifier(name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}
