package handler

import (
	"net/http"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// validActions are the user actions the feedback endpoint accepts.
var validActions = map[string]bool{
	"click":        true,
	"contact":      true,
	"view_details": true,
}

// FeedbackHandler handles feedback-related HTTP requests
type FeedbackHandler struct {
	searchService *service.SearchService
	logger        *logrus.Logger
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(searchService *service.SearchService, logger *logrus.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if !validActions[req.Action] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action. Must be one of: click, contact, view_details"})
		return
	}

	response := model.FeedbackResponse{Success: true, Message: "Feedback logged successfully"}

	if req.Action == "click" {
		clicks, err := h.searchService.RecordClick(c.Request.Context(), req.ListingID)
		if err != nil {
			h.logger.WithError(err).WithField("listing_id", req.ListingID).Warn("Failed to record click")
		}
		response.Clicks = clicks
	}

	if err := h.searchService.LogFeedback(c.Request.Context(), req.SearchID, req.ListingID, req.Action); err != nil {
		// Feedback logging never fails the request.
		h.logger.WithError(err).WithFields(logrus.Fields{
			"search_id":  req.SearchID,
			"listing_id": req.ListingID,
		}).Warn("Failed to log feedback")
	}

	c.JSON(http.StatusOK, response)
}
