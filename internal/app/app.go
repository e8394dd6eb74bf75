// Package app assembles the search service from configuration. The HTTP server
// and the searchctl CLI share it.
package app

import (
	"context"
	"fmt"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/catalog"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/config"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/repository"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/service"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// App is a wired search service plus the resources it owns.
type App struct {
	Config *config.Config
	Search *service.SearchService
	Loader *catalog.Loader
	Stores *repository.Stores
	redis  *redis.Client
	logger *logrus.Logger
}

// New builds every component but does not load the catalog yet.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	a := &App{Config: cfg, logger: logger}

	synFile, err := config.LoadSynonyms(cfg.SynonymsFile)
	if err != nil {
		return nil, err
	}
	synonyms := service.SynonymIndexFromFile(synFile)

	source, err := newSource(cfg, logger)
	if err != nil {
		return nil, err
	}

	cache := a.newCache(ctx)
	a.Loader, err = catalog.NewLoader(source, cache, cfg.Catalog.CacheTTL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog loader: %w", err)
	}

	a.Stores = repository.Open(ctx, cfg, logger)
	logs := a.Stores.Logs
	if logs == nil && cfg.Search.LogSearches {
		logs = repository.NewLogrusSearchLogger(logger)
	}

	a.Search = service.NewSearchService(
		a.Loader,
		synonyms,
		service.NewRanker(service.WeightsFromConfig(cfg.Ranking)),
		a.Stores.Feedback,
		logs,
		service.Options{
			MaxSuggestions: cfg.Search.MaxSuggestions,
			MinChars:       cfg.Search.MinChars,
			PageSize:       cfg.Search.PageSize,
		},
		logger,
	)
	return a, nil
}

// Close releases the feedback backends and the Redis client.
func (a *App) Close() error {
	err := a.Stores.Close()
	if a.redis != nil {
		if cerr := a.redis.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func newSource(cfg *config.Config, logger *logrus.Logger) (catalog.Source, error) {
	if cfg.Catalog.File != "" {
		return &catalog.FileSource{Path: cfg.Catalog.File}, nil
	}
	urls, err := cfg.CatalogURLs()
	if err != nil {
		return nil, err
	}
	retry := catalog.DefaultRetryConfig()
	retry.MaxRetries = cfg.Catalog.MaxRetries
	if cfg.Catalog.RetryDelay > 0 {
		retry.BaseDelay = cfg.Catalog.RetryDelay
	}
	return catalog.NewHTTPSource(urls, cfg.Catalog.Timeout, retry, logger), nil
}

// newCache prefers the cache file, then Redis, then memory.
func (a *App) newCache(ctx context.Context) catalog.Cache {
	cfg := a.Config
	switch {
	case cfg.Catalog.CacheFile != "":
		return catalog.NewFileCache(cfg.Catalog.CacheFile)
	case cfg.Redis.URL != "":
		client, err := repository.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			a.logger.WithError(err).Warn("Redis unavailable, caching catalog in memory")
			return catalog.NewMemoryCache()
		}
		a.redis = client
		return catalog.NewRedisCache(client, cfg.Redis.KeyPrefix+"catalog")
	default:
		return catalog.NewMemoryCache()
	}
}
