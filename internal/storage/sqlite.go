// Package storage persists publications, authors, journals and authorships
// in SQLite, and keeps the JSONL journal of failed import entries.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an update targets a record that does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Create schema if needed
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS journals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			publisher TEXT
		);

		-- Journals are deduplicated by exact name
		CREATE INDEX IF NOT EXISTS idx_journals_name ON journals(name);

		CREATE TABLE IF NOT EXISTS authors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			birth_date TEXT NOT NULL,
			email TEXT,
			has_page INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS publications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			category TEXT NOT NULL,
			title TEXT NOT NULL,
			abstract TEXT,
			keywords TEXT,
			pub_year INTEGER,
			pub_month INTEGER,
			pub_day INTEGER,
			note TEXT,
			annotations TEXT,
			isbn TEXT,
			issn TEXT,
			doi TEXT,
			url TEXT,
			dblp TEXT,
			pdf_path TEXT,
			language TEXT,
			award_path TEXT,
			journal_id INTEGER REFERENCES journals(id),
			details_json TEXT NOT NULL
		);

		-- Index for duplicate-title lookups
		CREATE INDEX IF NOT EXISTS idx_publications_title ON publications(title);

		CREATE TABLE IF NOT EXISTS authorships (
			publication_id INTEGER NOT NULL REFERENCES publications(id),
			author_id INTEGER NOT NULL REFERENCES authors(id),
			author_rank INTEGER NOT NULL,
			PRIMARY KEY (publication_id, author_id)
		);

		CREATE INDEX IF NOT EXISTS idx_authorships_author ON authorships(author_id);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullableInt converts an int to sql.NullInt64, treating zero as NULL.
func nullableInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

func nullableID(id int64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}

// inTx runs fn inside a transaction, rolling back on error.
func (d *DB) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
