// Package history keeps an append-only log of retrieval outcomes in SQLite.
// It records what was fetched and how, never the payload itself.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Record is one completed retrieval.
type Record struct {
	ID          string    `json:"id"`
	FileID      string    `json:"file_id"`
	Strategy    string    `json:"strategy"`
	Filename    string    `json:"filename,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Bytes       int64     `json:"bytes"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists retrieval records.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS retrievals (
	id TEXT PRIMARY KEY,
	file_id TEXT NOT NULL,
	strategy TEXT NOT NULL,
	filename TEXT,
	content_type TEXT,
	bytes INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS retrievals_created_at ON retrievals(created_at);`

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Add inserts a record, assigning an id and timestamp when absent.
func (s *Store) Add(ctx context.Context, rec *Record) error {
	if s == nil || s.db == nil {
		return nil
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	const q = `INSERT INTO retrievals (id, file_id, strategy, filename, content_type, bytes, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q,
		rec.ID, rec.FileID, rec.Strategy, rec.Filename, rec.ContentType, rec.Bytes, rec.Status, rec.CreatedAt); err != nil {
		return fmt.Errorf("insert retrieval record: %w", err)
	}
	return nil
}

// Recent returns the newest records, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	const q = `SELECT id, file_id, strategy, filename, content_type, bytes, status, created_at
		FROM retrievals ORDER BY created_at DESC, id LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query retrievals: %w", err)
	}
	defer rows.Close()

	results := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		var filename, contentType sql.NullString
		if err := rows.Scan(&rec.ID, &rec.FileID, &rec.Strategy, &filename, &contentType,
			&rec.Bytes, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan retrieval record: %w", err)
		}
		rec.Filename = filename.String
		rec.ContentType = contentType.String
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return results, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s != nil && s.db != nil {
		return s.db.Close()
	}
	return nil
}
