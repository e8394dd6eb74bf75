package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/config"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/logger"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = `{"properties": [
  {"id": "P1", "title": "Apartamento vista al mar", "city": "Cartagena", "price": "380000000", "habitaciones": 3},
  {"id": "P2", "title": "Casa en el centro", "city": "Cartagena", "precio": 600000000, "bedrooms": 2},
  {"title": "sin id"}
]}`

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(catalogPath, []byte(feed), 0o644))

	return &config.Config{
		Catalog: config.CatalogConfig{
			File:      catalogPath,
			CacheFile: filepath.Join(dir, "cache", "catalog.json"),
			CacheTTL:  0,
		},
		Feedback: config.FeedbackConfig{Backend: "sqlite", Path: filepath.Join(dir, "clicks.db"), Key: config.DefaultClickKey},
		Search:   config.SearchConfig{MaxSuggestions: 12, MinChars: 2, PageSize: 9},
		Ranking:  config.RankingConfig{WeightTitle: 55, WeightCity: 35, WeightBeds: 22, WeightPrice: 12, WeightOverlap: 18, WeightPopularity: 8},
	}
}

func TestApp_EndToEnd(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t), logger.Discard())
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Search.Load(ctx))
	status, err := a.Search.Status()
	require.NoError(t, err)
	assert.Equal(t, 2, status.Properties)
	assert.Equal(t, 1, status.Skipped)

	resp, err := a.Search.Search(ctx, &model.SearchRequest{Query: "apartamento 350-400m 3h"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "P1", resp.Results[0].Property.ID)

	n, err := a.Search.RecordClick(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestApp_BadSynonymsFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.SynonymsFile = filepath.Join(t.TempDir(), "missing.toml")

	_, err := New(context.Background(), cfg, logger.Discard())
	assert.Error(t, err)
}
