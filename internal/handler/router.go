package handler

import (
	"net/http"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/middleware"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BuildInfo is reported by /health and /version.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// RouterConfig holds what the router needs besides the service.
type RouterConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	Build          BuildInfo
	FeedbackLimit  *middleware.RateLimiter // nil disables rate limiting of feedback
}

// NewRouter wires every API route onto a new gin engine.
func NewRouter(searchService *service.SearchService, cfg RouterConfig, logger *logrus.Logger) *gin.Engine {
	searchHandler := NewSearchHandler(searchService)
	listingHandler := NewListingHandler(searchService)
	feedbackHandler := NewFeedbackHandler(searchService, logger)
	catalogHandler := NewCatalogHandler(searchService, logger)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(logger))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	if len(corsConfig.AllowOrigins) == 0 || corsConfig.AllowOrigins[0] == "*" {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	if len(cfg.AllowedMethods) > 0 {
		corsConfig.AllowMethods = cfg.AllowedMethods
	}
	if len(cfg.AllowedHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.AllowedHeaders
	}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if _, err := searchService.Status(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":     status,
			"service":    "altorra-smart-search",
			"version":    cfg.Build.Version,
			"build_time": cfg.Build.BuildTime,
			"git_commit": cfg.Build.GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    cfg.Build.Version,
			"build_time": cfg.Build.BuildTime,
			"git_commit": cfg.Build.GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/search", searchHandler.Search)
		apiV1.POST("/search/stream", searchHandler.SearchStream)

		apiV1.GET("/listings", listingHandler.Browse)
		apiV1.GET("/listings/:id", listingHandler.GetListing)

		apiV1.GET("/vocabulary", catalogHandler.Vocabulary)
		apiV1.GET("/catalog", catalogHandler.Status)
		apiV1.POST("/catalog/reload", catalogHandler.Reload)

		feedback := []gin.HandlerFunc{feedbackHandler.Submit}
		if cfg.FeedbackLimit != nil {
			feedback = append([]gin.HandlerFunc{cfg.FeedbackLimit.RateLimit()}, feedback...)
		}
		apiV1.POST("/feedback", feedback...)
	}

	return router
}
