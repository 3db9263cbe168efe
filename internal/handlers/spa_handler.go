package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

var ErrMountElementMissing = errors.New("mount element not found in index.html")

// SPAHandler serves the built single-page application. Unknown paths
// outside /api get index.html so client-side routes work on reload.
type SPAHandler struct {
	distDir   string
	indexHTML []byte
}

// NewSPAHandler loads index.html from distDir and checks that it carries
// the element the application mounts into.
func NewSPAHandler(distDir, mountID string) (*SPAHandler, error) {
	indexHTML, err := os.ReadFile(filepath.Join(distDir, "index.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to read index.html: %w", err)
	}

	if !HasMountElement(indexHTML, mountID) {
		return nil, fmt.Errorf("%w: no #%s element found", ErrMountElementMissing, mountID)
	}

	return &SPAHandler{distDir: distDir, indexHTML: indexHTML}, nil
}

// HasMountElement reports whether html contains an element with the given id
func HasMountElement(html []byte, mountID string) bool {
	if mountID == "" {
		return false
	}
	pattern := regexp.MustCompile(`\sid\s*=\s*["']` + regexp.QuoteMeta(mountID) + `["']`)
	return pattern.Match(html)
}

// Serve is registered as the router's NoRoute handler
func (h *SPAHandler) Serve(c *gin.Context) {
	reqPath := c.Request.URL.Path

	if strings.HasPrefix(reqPath, "/api/") || reqPath == "/api" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		return
	}

	cleaned := path.Clean("/" + reqPath)
	if cleaned != "/" {
		file := filepath.Join(h.distDir, filepath.FromSlash(cleaned))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
	}

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/html; charset=utf-8", h.indexHTML)
}
