// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package noteindex tracks which library items already have a generated
// note, keyed by the source item identifier. The index is what makes
// note generation idempotent across runs.
package noteindex

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "notes.db"

// Entry records one generated note.
type Entry struct {
	// ItemKey is the source library item identifier.
	ItemKey string

	// Filename is the note filename inside the vault, without directory.
	Filename string

	Title  string
	Author string
	Year   string

	// Source names the text the summary was derived from
	// ("full_text" or "abstract").
	Source string

	// GeneratedAt is when the note was written.
	GeneratedAt time.Time
}

// Store is the SQLite-backed note index.
type Store struct {
	db *sql.DB
}

// Open opens or creates the note index database at dir/notes.db,
// creating the schema if it does not exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS notes (
			item_key TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			title TEXT,
			author TEXT,
			year TEXT,
			source TEXT,
			generated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_filename ON notes(filename)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record upserts the entry for an item. A replaced note keeps its item
// key and simply overwrites the previous row.
func (s *Store) Record(e Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO notes (item_key, filename, title, author, year, source, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(item_key) DO UPDATE SET
			filename = excluded.filename,
			title = excluded.title,
			author = excluded.author,
			year = excluded.year,
			source = excluded.source,
			generated_at = excluded.generated_at`,
		e.ItemKey, e.Filename, e.Title, e.Author, e.Year, e.Source,
		e.GeneratedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording note for %s: %w", e.ItemKey, err)
	}
	return nil
}

// Lookup returns the entry for an item key, or ok=false when the item
// has no note yet.
func (s *Store) Lookup(itemKey string) (Entry, bool, error) {
	var e Entry
	var generatedAt string
	err := s.db.QueryRow(
		`SELECT item_key, filename, title, author, year, source, generated_at
		 FROM notes WHERE item_key = ?`, itemKey,
	).Scan(&e.ItemKey, &e.Filename, &e.Title, &e.Author, &e.Year, &e.Source, &generatedAt)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("looking up %s: %w", itemKey, err)
	}
	if t, perr := time.Parse(time.RFC3339, generatedAt); perr == nil {
		e.GeneratedAt = t
	}
	return e, true, nil
}

// Filenames returns every recorded note filename.
func (s *Store) Filenames() ([]string, error) {
	rows, err := s.db.Query(`SELECT filename FROM notes ORDER BY filename`)
	if err != nil {
		return nil, fmt.Errorf("listing filenames: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning filename: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Count returns the number of indexed notes.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM notes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting notes: %w", err)
	}
	return n, nil
}
