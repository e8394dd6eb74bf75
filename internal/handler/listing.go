package handler

import (
	"net/http"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/service"

	"github.com/gin-gonic/gin"
)

// ListingHandler serves the listing pages and the detail lookup.
type ListingHandler struct {
	searchService *service.SearchService
}

// NewListingHandler creates a new listing handler
func NewListingHandler(searchService *service.SearchService) *ListingHandler {
	return &ListingHandler{searchService: searchService}
}

// GetListing handles GET /api/v1/listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	listing, err := h.searchService.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to get listing", err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// Browse handles GET /api/v1/listings
func (h *ListingHandler) Browse(c *gin.Context) {
	var filters model.ListingFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filters: " + err.Error()})
		return
	}

	page, err := h.searchService.Browse(c.Request.Context(), &filters)
	if err != nil {
		respondError(c, "Failed to list properties", err)
		return
	}
	c.JSON(http.StatusOK, page)
}
