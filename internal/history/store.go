// Package history records watch-completion events in a local SQLite
// database for later analytics.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists completion events. Safe for concurrent use; SQLite
// serializes writers via its own locking plus the busy timeout below.
type Store struct {
	db *sql.DB
}

// Completion is one recorded "watched to the end" event.
type Completion struct {
	ID          int64
	VideoID     string
	CompletedAt time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS completions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	video_id TEXT NOT NULL,
	completed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_completions_video ON completions(video_id);
`

// Open creates or opens the history database under dataDir.
func Open(ctx context.Context, dataDir string) (*Store, error) {
	path := filepath.Join(dataDir, "history.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordCompletion appends an event for videoID at the current time.
func (s *Store) RecordCompletion(ctx context.Context, videoID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO completions (video_id, completed_at) VALUES (?, ?)", videoID, now); err != nil {
		return fmt.Errorf("record completion for %s: %w", videoID, err)
	}
	return nil
}

// CountForVideo reports how many completions exist for videoID.
func (s *Store) CountForVideo(ctx context.Context, videoID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM completions WHERE video_id = ?", videoID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completions for %s: %w", videoID, err)
	}
	return n, nil
}

// Recent returns the newest events, capped at limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Completion, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, video_id, completed_at FROM completions ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var out []Completion
	for rows.Next() {
		var (
			c  Completion
			ts string
		)
		if err := rows.Scan(&c.ID, &c.VideoID, &ts); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		if c.CompletedAt, err = time.Parse(time.RFC3339, ts); err != nil {
			return nil, fmt.Errorf("parse completion time %q: %w", ts, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
