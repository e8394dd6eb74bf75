package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/app"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/config"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/handler"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/logger"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/middleware"

	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// sessionIdleTimeout is how long a suggestion session is remembered.
const sessionIdleTimeout = 30 * time.Minute

func main() {
	// Print version info
	log.Printf("Altorra Smart Search")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logs := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, logs)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	log.Printf("✅ Feedback backend: %s", cfg.Feedback.Backend)

	// A missing catalog is not fatal: the API answers 503 until a reload succeeds.
	if err := a.Search.Load(ctx); err != nil {
		log.Printf("⚠️  Catalog not loaded: %v", err)
	} else {
		status, _ := a.Search.Status()
		log.Printf("✅ Catalog %s loaded: %d properties, %d vocabulary terms", status.Version, status.Properties, status.Vocabulary)
	}

	// Background revalidation and housekeeping
	go a.Search.Watch(ctx, cfg.Catalog.CacheTTL)
	go pruneSessions(ctx, a)

	var limiter *middleware.RateLimiter
	if cfg.Server.FeedbackRate > 0 {
		limiter = middleware.NewRateLimiter(cfg.Server.FeedbackRate)
		go limiter.Cleanup(ctx, time.Minute)
	}

	router := handler.NewRouter(a.Search, handler.RouterConfig{
		AllowedOrigins: splitList(cfg.Server.AllowedOrigins),
		AllowedMethods: splitList(cfg.Server.AllowedMethods),
		AllowedHeaders: splitList(cfg.Server.AllowedHeaders),
		Build:          handler.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit},
		FeedbackLimit:  limiter,
	}, logs)

	// Serve static files (site)
	// This function is implemented in embed.go (production) or static_dev.go (development)
	setupStaticFiles(router, cfg.Server.StaticDir)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API: http://localhost:%d/api/v1", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Forced shutdown: %v", err)
	}
	log.Println("✅ Server stopped")
}

func pruneSessions(ctx context.Context, a *app.App) {
	ticker := time.NewTicker(sessionIdleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Search.Sessions().Prune(sessionIdleTimeout)
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
