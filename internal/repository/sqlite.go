package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS click_counts (
	property_id TEXT PRIMARY KEY,
	clicks      INTEGER NOT NULL DEFAULT 0,
	updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// SQLiteFeedback keeps counters in a local SQLite database.
type SQLiteFeedback struct {
	db *sqlx.DB
}

// NewSQLiteFeedback opens or creates the database at path. ":memory:" is accepted.
func NewSQLiteFeedback(path string) (*SQLiteFeedback, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create feedback directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feedback database: %w", err)
	}
	// SQLite serializes writers; one connection also keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize feedback schema: %w", err)
	}
	return &SQLiteFeedback{db: db}, nil
}

// RecordClick implements FeedbackStore.
func (s *SQLiteFeedback) RecordClick(ctx context.Context, id string) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n, `
		INSERT INTO click_counts (property_id, clicks, updated_at)
		VALUES (?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(property_id) DO UPDATE
		SET clicks = click_counts.clicks + 1, updated_at = CURRENT_TIMESTAMP
		RETURNING clicks`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to record click: %w", err)
	}
	return n, nil
}

// Count implements FeedbackStore.
func (s *SQLiteFeedback) Count(ctx context.Context, id string) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n, `SELECT COALESCE(MAX(clicks), 0) FROM click_counts WHERE property_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to read click count: %w", err)
	}
	return n, nil
}

// Counts implements FeedbackStore.
func (s *SQLiteFeedback) Counts(ctx context.Context) (map[string]int64, error) {
	return selectCounts(ctx, s.db, `SELECT property_id, clicks FROM click_counts`)
}

// Close implements FeedbackStore.
func (s *SQLiteFeedback) Close() error {
	return s.db.Close()
}

type clickRow struct {
	PropertyID string `db:"property_id"`
	Clicks     int64  `db:"clicks"`
}

func selectCounts(ctx context.Context, db *sqlx.DB, query string) (map[string]int64, error) {
	var rows []clickRow
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to read click counts: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.PropertyID] = r.Clicks
	}
	return out, nil
}
