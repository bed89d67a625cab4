// Package storage opens the on-device SQLite database, applies schema
// migrations and wires up the repositories sharing that connection.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dkazakevich/studykeeper/internal/client/migrations"
	"github.com/dkazakevich/studykeeper/internal/client/repositories/metadata"
	"github.com/dkazakevich/studykeeper/internal/client/repositories/oplog"
	"github.com/dkazakevich/studykeeper/internal/client/repositories/records"
	"github.com/pressly/goose/v3"
)

// Repositories bundles the device-local stores. DB is exposed so services can
// run entity-store and mutation-log writes in one transaction.
type Repositories struct {
	DB       *sql.DB
	Records  records.Repository
	Oplog    oplog.Log
	Metadata metadata.Repository
}

// RunMigrations applies the embedded migrations to the given database.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the local database at dsn, migrates the
// schema and returns the repository set. A failure here is a fatal
// local-storage error; callers do not retry it.
func Open(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local db: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to migrate local db: %w", err)
	}

	return &Repositories{
		DB:       db,
		Records:  records.NewSQLiteRepository(db),
		Oplog:    oplog.NewSQLiteLog(db),
		Metadata: metadata.NewSQLiteRepository(db),
	}, nil
}
