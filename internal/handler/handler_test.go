package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/catalog"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/logger"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/middleware"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/repository"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubLoader struct {
	snap *catalog.Snapshot
	err  error
}

func (l *stubLoader) Load(context.Context) (*catalog.Snapshot, error)    { return l.snap, l.err }
func (l *stubLoader) Refresh(context.Context) (*catalog.Snapshot, error) { return l.snap, l.err }
func (l *stubLoader) Watch(context.Context, time.Duration, string, func(*catalog.Snapshot)) {}

func beds(n int) *int { return &n }

func testRouter(t *testing.T, loaded bool) (*gin.Engine, *repository.MemoryFeedback) {
	t.Helper()
	loader := &stubLoader{snap: &catalog.Snapshot{
		Version: "v1",
		Properties: []model.Property{
			{ID: "P1", Title: "Apartamento vista al mar", City: "Cartagena", Price: 380_000_000, Beds: beds(3), Operation: "comprar"},
			{ID: "P2", Title: "Casa en el centro", City: "Cartagena", Price: 600_000_000, Beds: beds(2), Operation: "comprar"},
		},
	}}
	if !loaded {
		loader = &stubLoader{err: catalog.ErrCatalogUnavailable}
	}

	fb := repository.NewMemoryFeedback()
	svc := service.NewSearchService(loader, nil, service.NewRanker(service.DefaultWeights()), fb, nil, service.DefaultOptions(), logger.Discard())
	if loaded {
		require.NoError(t, svc.Load(context.Background()))
	}
	return NewRouter(svc, RouterConfig{
		AllowedOrigins: []string{"*"},
		Build:          BuildInfo{Version: "test"},
		FeedbackLimit:  middleware.NewRateLimiter(100),
	}, logger.Discard()), fb
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSearch(t *testing.T) {
	r, _ := testRouter(t, true)

	w := do(r, http.MethodPost, "/api/v1/search", model.SearchRequest{Query: "apartamento 350-400m 3h"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp model.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "P1", resp.Results[0].Property.ID)
	assert.Equal(t, "detalle-propiedad.html?id=P1", resp.Results[0].URL)
}

func TestSearch_BadRequest(t *testing.T) {
	r, _ := testRouter(t, true)
	w := do(r, http.MethodPost, "/api/v1/search", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch_CatalogUnavailable(t *testing.T) {
	r, _ := testRouter(t, false)

	w := do(r, http.MethodPost, "/api/v1/search", model.SearchRequest{Query: "casa"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "catalog_unavailable")

	w = do(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSearchStream(t *testing.T) {
	r, _ := testRouter(t, true)

	w := do(r, http.MethodPost, "/api/v1/search/stream", model.SearchRequest{Query: "cartagena"})
	require.Equal(t, http.StatusOK, w.Code)

	var events []string
	for _, line := range strings.Split(w.Body.String(), "\n") {
		if strings.HasPrefix(line, "event: ") {
			events = append(events, strings.TrimPrefix(line, "event: "))
		}
	}
	assert.Equal(t, []string{"start", "intent", "results", "done"}, events)
}

func TestFeedback(t *testing.T) {
	r, fb := testRouter(t, true)

	w := do(r, http.MethodPost, "/api/v1/feedback", model.FeedbackRequest{ListingID: "P1", Action: "click"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp model.FeedbackResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1), resp.Clicks)

	w = do(r, http.MethodPost, "/api/v1/feedback", model.FeedbackRequest{ListingID: "P1", Action: "contact"})
	require.Equal(t, http.StatusOK, w.Code)
	n, _ := fb.Count(context.Background(), "P1")
	assert.Equal(t, int64(1), n, "only clicks are counted")

	w = do(r, http.MethodPost, "/api/v1/feedback", model.FeedbackRequest{ListingID: "P1", Action: "share"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListings(t *testing.T) {
	r, _ := testRouter(t, true)

	w := do(r, http.MethodGet, "/api/v1/listings/P2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Casa en el centro")

	w = do(r, http.MethodGet, "/api/v1/listings/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/v1/listings?operation=comprar&sort=price-desc&beds_min=3", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page model.ListingPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Results, 1)
	assert.Equal(t, "P1", page.Results[0].ID)

	w = do(r, http.MethodGet, "/api/v1/listings?operation=permutar", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	r, _ := testRouter(t, true)

	w := do(r, http.MethodGet, "/api/v1/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status model.CatalogStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "v1", status.Version)
	assert.Equal(t, 2, status.Properties)

	w = do(r, http.MethodPost, "/api/v1/catalog/reload", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/vocabulary?prefix=cart&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var vocab model.VocabularyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &vocab))
	assert.Equal(t, []string{"cartagena"}, vocab.Terms)

	w = do(r, http.MethodGet, "/api/v1/vocabulary?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
