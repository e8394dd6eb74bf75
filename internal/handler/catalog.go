package handler

import (
	"net/http"
	"strconv"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// defaultVocabularyLimit caps completion results when no limit is given.
const defaultVocabularyLimit = 20

// CatalogHandler exposes catalog status, reload and vocabulary completion.
type CatalogHandler struct {
	searchService *service.SearchService
	logger        *logrus.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(searchService *service.SearchService, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{searchService: searchService, logger: logger}
}

// Status handles GET /api/v1/catalog
func (h *CatalogHandler) Status(c *gin.Context) {
	status, err := h.searchService.Status()
	if err != nil {
		respondError(c, "Catalog not loaded", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Reload handles POST /api/v1/catalog/reload
func (h *CatalogHandler) Reload(c *gin.Context) {
	status, err := h.searchService.Reload(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Warn("Catalog reload failed")
		respondError(c, "Reload failed", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Vocabulary handles GET /api/v1/vocabulary?prefix=&limit=
func (h *CatalogHandler) Vocabulary(c *gin.Context) {
	limit := defaultVocabularyLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	resp, err := h.searchService.Complete(c.Request.Context(), c.Query("prefix"), limit)
	if err != nil {
		respondError(c, "Vocabulary unavailable", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
