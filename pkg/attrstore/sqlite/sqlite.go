// Package sqlite provides a SQLite-backed attrstore.Store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/inlay/pkg/attrstore"
	"github.com/papercomputeco/inlay/pkg/authorship"
)

// Store implements attrstore.Store using SQLite as the storage backend.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite-backed store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attributions (
		document TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Put stores the result for doc. The whole record is replaced in one
// statement, so readers never observe a partial update.
func (s *Store) Put(ctx context.Context, doc authorship.DocumentID, result authorship.AttributionResult) error {
	if doc == "" {
		return errors.New("cannot store record for empty document")
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	query := `INSERT INTO attributions (document, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(document) DO UPDATE SET
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP`

	_, err = s.db.ExecContext(ctx, query, doc.String(), string(payload))
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}

	return nil
}

// Get retrieves the result for doc.
func (s *Store) Get(ctx context.Context, doc authorship.DocumentID) (authorship.AttributionResult, error) {
	query := `SELECT payload FROM attributions WHERE document = ?`

	var payload string
	err := s.db.QueryRowContext(ctx, query, doc.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, attrstore.ErrNotFound{Document: doc.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	var result authorship.AttributionResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	return result, nil
}

// Delete removes the record for doc.
func (s *Store) Delete(ctx context.Context, doc authorship.DocumentID) error {
	query := `DELETE FROM attributions WHERE document = ?`

	_, err := s.db.ExecContext(ctx, query, doc.String())
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
