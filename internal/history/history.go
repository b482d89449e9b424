// Package history is a SQLite-backed append-only log of submitted
// commands and their outcome status, replayed on driver startup, against the "sqlite"
// driver registered by modernc.org/sqlite.
package history

import (
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Store is the command-history log for one driver session.
type Store struct {
	mu        sync.Mutex
	db        *sql.DB
	sessionID uuid.UUID
}

// Open opens (creating if needed) the SQLite-backed log at path and
// starts a fresh session ID for rows this process appends.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "history: open %s", path)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS commands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			command TEXT NOT NULL,
			status TEXT NOT NULL
		);
	`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "history: create schema")
	}

	version, err := getMetadata(db, "schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}
	if version == "" {
		if err := setMetadata(db, "schema_version", schemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	} else if version != schemaVersion {
		db.Close()
		return nil, errors.Errorf("history: unsupported schema version %s (expected %s)", version, schemaVersion)
	}

	return &Store{db: db, sessionID: uuid.New()}, nil
}

func getMetadata(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "history: read metadata")
	}
	return value, nil
}

func setMetadata(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT INTO metadata(key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return errors.Wrap(err, "history: write metadata")
}

// Entry is one logged command.
type Entry struct {
	Seq     int64
	Command string
	Status  string
}

// Append records one accepted-or-rejected command with its outcome
// status.
func (s *Store) Append(seq int64, command, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO commands(session_id, seq, command, status) VALUES (?, ?, ?, ?)`,
		s.sessionID.String(), seq, command, status,
	)
	return errors.Wrap(err, "history: append command")
}

// All returns every logged command across every session, oldest first,
// for replay against a freshly constructed sheet.
func (s *Store) All() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`SELECT seq, command, status FROM commands ORDER BY id ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "history: query commands")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Seq, &e.Command, &e.Status); err != nil {
			return nil, errors.Wrap(err, "history: scan command")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Recent returns the last n logged commands, oldest first, for the
// driver's ":history" command.
func (s *Store) Recent(n int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`SELECT seq, command, status FROM commands ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, errors.Wrap(err, "history: query recent commands")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Seq, &e.Command, &e.Status); err != nil {
			return nil, errors.Wrap(err, "history: scan command")
		}
		out = append(out, e)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, rows.Err()
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
