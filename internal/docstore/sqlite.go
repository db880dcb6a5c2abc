package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"gearbook/internal/infrastructure/database"
	"gearbook/internal/registry"
)

// SQLiteStore persists the document as a single row in a SQLite table.
//
// The table holds at most one row (id = 1) whose doc column carries the
// JSON-encoded document. Each save replaces the row inside a
// transaction, so readers see either the old or the new document, never
// a mix. A missing row loads as an empty document.
type SQLiteStore struct {
	db *database.DB
}

// NewSQLiteStore creates a SQLite-backed document store, creating the
// schema if needed.
func NewSQLiteStore(db *database.DB) (*SQLiteStore, error) {
	const schema = `
		CREATE TABLE IF NOT EXISTS document (
			id  INTEGER PRIMARY KEY CHECK (id = 1),
			doc TEXT NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("%w: creating schema: %w", ErrUnavailable, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load reads the document row.
func (s *SQLiteStore) Load(ctx context.Context) (*registry.Document, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM document WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return &registry.Document{
			Devices: []registry.Device{},
			Users:   []registry.User{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading document row: %w", ErrUnavailable, err)
	}

	var doc registry.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing document row: %w", ErrCorrupt, err)
	}
	if doc.Devices == nil {
		doc.Devices = []registry.Device{}
	}
	if doc.Users == nil {
		doc.Users = []registry.User{}
	}

	return &doc, nil
}

// Save replaces the document row with the given document.
func (s *SQLiteStore) Save(ctx context.Context, doc *registry.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("docstore: encoding document: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", ErrUnavailable, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO document (id, doc) VALUES (1, ?)`, string(data)); err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: writing document row: %w", ErrUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing: %w", ErrUnavailable, err)
	}

	return nil
}
