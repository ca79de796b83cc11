// Package cache keeps extracted knowledge-file text in a local sqlite
// database so repeated sends do not re-download and re-decode every
// document. Entries are keyed by file id; knowledge files are never
// mutated in place, so an entry can only go stale by deletion.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS extracted_text (
	file_id    TEXT PRIMARY KEY,
	text       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);`

// TextCache is a fail-soft cache: lookup and store errors are logged
// and reported as misses, never propagated.
type TextCache struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*TextCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return &TextCache{db: db}, nil
}

// Get returns the cached text for a file id and whether it was present.
func (c *TextCache) Get(ctx context.Context, fileID string) (string, bool) {
	var text string
	err := c.db.QueryRowContext(ctx,
		"SELECT text FROM extracted_text WHERE file_id = ?", fileID).Scan(&text)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		log.Warn().Err(err).Str("file_id", fileID).Msg("cache lookup failed")
		return "", false
	}
	return text, true
}

// Put stores extracted text for a file id.
func (c *TextCache) Put(ctx context.Context, fileID, text string) {
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO extracted_text (file_id, text, created_at) VALUES (?, ?, ?)",
		fileID, text, time.Now().Unix())
	if err != nil {
		log.Warn().Err(err).Str("file_id", fileID).Msg("cache store failed")
	}
}

// Delete drops the entry for a file id, if any.
func (c *TextCache) Delete(ctx context.Context, fileID string) {
	_, err := c.db.ExecContext(ctx,
		"DELETE FROM extracted_text WHERE file_id = ?", fileID)
	if err != nil {
		log.Warn().Err(err).Str("file_id", fileID).Msg("cache delete failed")
	}
}

// Close closes the underlying database.
func (c *TextCache) Close() error {
	return c.db.Close()
}
