// Package store persists the instrument catalog and daily price series in
// a local SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"
)

var (
	// ErrStorageUnavailable marks failures of the backing database.
	// Callers should treat operations failing with it as retryable.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrDuplicateSymbolConflict is returned when a symbol is re-registered
	// with a different immutable field (region or classification).
	ErrDuplicateSymbolConflict = errors.New("duplicate symbol with conflicting fields")

	// ErrNotFound is returned when an instrument does not exist.
	ErrNotFound = errors.New("instrument not found")
)

// Store owns the SQLite database holding instruments and price points.
// Connections are pooled by database/sql and scoped per operation, so a
// failure in one call never leaves the store locked for the next.
type Store struct {
	db *sql.DB
	mu sync.Mutex // serializes writes; SQLite has a single writer anyway
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboard reads don't block sync writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS instruments (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol         TEXT NOT NULL UNIQUE,
			name           TEXT,
			classification TEXT,
			region         TEXT,
			currency       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_instruments_symbol ON instruments(symbol)`,

		`CREATE TABLE IF NOT EXISTS price_points (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			instrument_id INTEGER NOT NULL,
			date          TEXT NOT NULL,
			open          REAL,
			high          REAL,
			low           REAL,
			close         REAL,
			volume        REAL,
			UNIQUE(instrument_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_instrument ON price_points(instrument_id)`,
		`CREATE INDEX IF NOT EXISTS idx_price_instrument_date ON price_points(instrument_id, date)`,

		`CREATE TABLE IF NOT EXISTS converted_price_points (
			price_point_id     INTEGER PRIMARY KEY,
			converted_price    REAL,
			converted_currency TEXT
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// unavailable wraps a database error so callers can detect the retryable
// storage-unreachable condition with errors.Is.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
