// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides local persistence for resumind TUI.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound      = errors.New("not found")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transcripts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	archived_at TEXT NOT NULL,
	messages    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transcripts_archived
	ON transcripts(archived_at DESC);
`

const stateKeySessionID = "session_id"

// =============================================================================
// STORE
// =============================================================================

// Store is the SQLite-backed local database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the default database location, ~/.resumind/resumind.db.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".resumind", "resumind.db"), nil
}

// Open opens (creating if needed) the database at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// =============================================================================
// SESSION STATE
// =============================================================================

// LoadSessionID returns the persisted session id, or ErrNotFound when no
// session has ever been saved.
func (s *Store) LoadSessionID() (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM state WHERE key = ?", stateKeySessionID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return value, nil
}

// SaveSessionID persists the session id, replacing any previous value.
func (s *Store) SaveSessionID(id string) error {
	_, err := s.db.Exec(
		"INSERT INTO state(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		stateKeySessionID, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// ClearSessionID removes the persisted session id. Used when the user
// explicitly starts over.
func (s *Store) ClearSessionID() error {
	_, err := s.db.Exec("DELETE FROM state WHERE key = ?", stateKeySessionID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}
