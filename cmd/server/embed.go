//go:build embed
// +build embed

package main

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed site
var siteFiles embed.FS

// setupStaticFiles serves the embedded site. dir is ignored.
func setupStaticFiles(router *gin.Engine, _ string) {
	log.Println("📦 Using embedded site assets")

	siteFS, err := fs.Sub(siteFiles, "site")
	if err != nil {
		log.Fatalf("Failed to get site subdirectory: %v", err)
	}
	fileServer := http.FileServer(http.FS(siteFS))

	router.NoRoute(func(c *gin.Context) {
		urlPath := c.Request.URL.Path

		// Skip API routes (they are handled by other routes)
		if strings.HasPrefix(urlPath, "/api") {
			c.JSON(404, gin.H{"error": "API endpoint not found"})
			return
		}

		clean := strings.TrimPrefix(path.Clean(urlPath), "/")
		if clean == "" {
			clean = "index.html"
		}
		if _, err := fs.Stat(siteFS, clean); err != nil {
			c.String(http.StatusNotFound, "404 page not found")
			return
		}
		fileServer.ServeHTTP(c.Writer, c.Request)
	})
}
