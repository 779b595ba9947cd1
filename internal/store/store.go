package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
)

//go:embed schema.sql
var schemaSQL string

// Store is the SQLite-backed Cache.
type Store struct {
	db   *sql.DB
	path string
}

var _ Cache = (*Store)(nil)

// Open creates or opens the cache database at the given path.
// Creates the table and index if they are missing.
//
// This function is idempotent - safe to call multiple times, and never
// modifies rows of an existing cache. Failures are reported as
// *UnavailableError.
func Open(path string) (*Store, error) {
	db, err := openDB(path, writerPragmas)
	if err != nil {
		return nil, &UnavailableError{Path: path, Err: err}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, &UnavailableError{Path: path, Err: fmt.Errorf("failed to apply schema: %w", err)}
	}

	return &Store{db: db, path: path}, nil
}

// OpenReadOnly opens an existing cache without changing it: no journal mode
// switch and no schema creation. Statements that write fail. A missing file
// or one without the cache table is reported as *UnavailableError.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &UnavailableError{Path: path, Err: err}
	}
	db, err := openDB(path, readerPragmas)
	if err != nil {
		return nil, &UnavailableError{Path: path, Err: err}
	}

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'ani_table'").Scan(&name)
	if err != nil {
		db.Close()
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.New("not an ANI cache: ani_table is missing")
		}
		return nil, &UnavailableError{Path: path, Err: err}
	}

	return &Store{db: db, path: path}, nil
}

var writerPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

var readerPragmas = []string{
	"PRAGMA busy_timeout = 5000",
	"PRAGMA query_only = ON",
}

func openDB(path string, pragmas []string) (*sql.DB, error) {
	// Open database (creates file if doesn't exist)
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection per handle so pragmas apply to every statement.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return db, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
// All committed batches are durable once InsertBatch returns, so Close has
// nothing left to flush.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// NewReader opens a separate query-only handle on the same database file.
// Each concurrent worker should own one and close it when done.
func (s *Store) NewReader() (Reader, error) {
	db, err := openDB(s.path, readerPragmas)
	if err != nil {
		return nil, &UnavailableError{Path: s.path, Err: err}
	}
	return &reader{db: db}, nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func verifyPragma(db *sql.DB, name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
