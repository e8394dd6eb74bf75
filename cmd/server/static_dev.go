//go:build !embed
// +build !embed

package main

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// setupStaticFiles serves the site straight from dir, so pages and
// properties/data.json can be edited without rebuilding.
func setupStaticFiles(router *gin.Engine, dir string) {
	log.Printf("🔧 Serving site files from %s (development mode)", dir)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(404, gin.H{"error": "API endpoint not found"})
			return
		}
		rel := filepath.Clean("/" + c.Request.URL.Path)
		if rel == "/" {
			rel = "/index.html"
		}
		c.File(filepath.Join(dir, filepath.FromSlash(rel)))
	})
}
