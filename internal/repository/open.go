package repository

import (
	"context"
	"fmt"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/config"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/sirupsen/logrus"
)

// Stores bundles the click store and the optional search log.
type Stores struct {
	Feedback *Resilient
	Logs     SearchLogger // nil when no backend records searches
	closers  []func() error
}

// Close releases every backend.
func (s *Stores) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open builds the feedback backend named by cfg. A backend that cannot be opened
// is logged and replaced by the in-memory store so that search keeps working.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *Stores {
	stores := &Stores{}

	backend, err := openBackend(ctx, cfg, stores)
	if err != nil {
		logger.WithError(err).WithField("backend", cfg.Feedback.Backend).
			Warn("Feedback backend unavailable, counting clicks in memory")
		backend = nil
	}

	stores.Feedback = NewResilient(backend, logger)
	stores.closers = append(stores.closers, stores.Feedback.Close)
	return stores
}

func openBackend(ctx context.Context, cfg *config.Config, stores *Stores) (FeedbackStore, error) {
	switch cfg.Feedback.Backend {
	case "memory":
		return NewMemoryFeedback(), nil
	case "file":
		return NewFileFeedback(cfg.Feedback.Path, cfg.Feedback.Key)
	case "sqlite":
		return NewSQLiteFeedback(cfg.Feedback.Path)
	case "postgres":
		repo, err := NewPostgresRepository(cfg.GetPostgreSQLDSN(), cfg.PostgreSQL.MaxConnections, cfg.PostgreSQL.MaxIdleConnections)
		if err != nil {
			return nil, err
		}
		if cfg.Search.LogSearches {
			stores.Logs = repo
		}
		return repo, nil
	case "redis":
		client, err := NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		return NewRedisFeedback(client, cfg.Feedback.Key, true), nil
	default:
		return nil, fmt.Errorf("unknown feedback backend %q", cfg.Feedback.Backend)
	}
}

// LogrusSearchLogger writes search events as structured log lines. It is the
// fallback when no database records searches.
type LogrusSearchLogger struct {
	logger *logrus.Logger
}

// NewLogrusSearchLogger creates a SearchLogger backed by logger.
func NewLogrusSearchLogger(logger *logrus.Logger) *LogrusSearchLogger {
	return &LogrusSearchLogger{logger: logger}
}

// LogSearch implements SearchLogger.
func (l *LogrusSearchLogger) LogSearch(_ context.Context, entry *model.SearchLog) error {
	l.logger.WithFields(logrus.Fields{
		"search_id": entry.SearchID,
		"query":     entry.Query,
		"results":   entry.ResultCount,
		"relaxed":   entry.Relaxed,
		"took_ms":   entry.TookMs,
	}).Info("search")
	return nil
}

// LogFeedback implements SearchLogger.
func (l *LogrusSearchLogger) LogFeedback(_ context.Context, searchID, listingID, action string) error {
	l.logger.WithFields(logrus.Fields{
		"search_id":  searchID,
		"listing_id": listingID,
		"action":     action,
	}).Info("feedback")
	return nil
}
