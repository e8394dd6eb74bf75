package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS click_counts (
	property_id TEXT PRIMARY KEY,
	clicks      BIGINT NOT NULL DEFAULT 0,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS search_logs (
	id                 BIGSERIAL PRIMARY KEY,
	search_id          TEXT UNIQUE NOT NULL,
	query              TEXT NOT NULL,
	tokens             JSONB NOT NULL DEFAULT '[]',
	result_ids         JSONB NOT NULL DEFAULT '[]',
	result_count       INTEGER NOT NULL DEFAULT 0,
	relaxed            BOOLEAN NOT NULL DEFAULT FALSE,
	took_ms            INTEGER NOT NULL DEFAULT 0,
	clicked_listing_id TEXT,
	action             TEXT,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") && strings.Contains(dsn, "://") {
		dsn += "?prefer_simple_protocol=true"
	} else if strings.Contains(dsn, "://") {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// RecordClick implements FeedbackStore.
func (r *PostgresRepository) RecordClick(ctx context.Context, id string) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `
		INSERT INTO click_counts (property_id, clicks, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (property_id) DO UPDATE
		SET clicks = click_counts.clicks + 1, updated_at = NOW()
		RETURNING clicks`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to record click: %w", err)
	}
	return n, nil
}

// Count implements FeedbackStore.
func (r *PostgresRepository) Count(ctx context.Context, id string) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COALESCE(MAX(clicks), 0) FROM click_counts WHERE property_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to read click count: %w", err)
	}
	return n, nil
}

// Counts implements FeedbackStore.
func (r *PostgresRepository) Counts(ctx context.Context) (map[string]int64, error) {
	return selectCounts(ctx, r.db, `SELECT property_id, clicks FROM click_counts`)
}

// LogSearch logs a search query
func (r *PostgresRepository) LogSearch(ctx context.Context, entry *model.SearchLog) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO search_logs (search_id, query, tokens, result_ids, result_count, relaxed, took_ms)
		VALUES (:search_id, :query, :tokens, :result_ids, :result_count, :relaxed, :took_ms)
		ON CONFLICT (search_id) DO NOTHING`, entry)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}

// LogFeedback logs user feedback/action
func (r *PostgresRepository) LogFeedback(ctx context.Context, searchID, listingID, action string) error {
	query := `
		UPDATE search_logs
		SET clicked_listing_id = $2, action = $3
		WHERE search_id = $1
	`
	_, err := r.db.ExecContext(ctx, query, searchID, listingID, action)
	if err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	return nil
}
