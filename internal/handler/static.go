// Package handler contains the HTTP handlers of the note-backend front door.
package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	infralogger "github.com/Davis1233798/note/infrastructure/logger"
	"github.com/gin-gonic/gin"
)

// indexFile is served for a request naming a directory.
const indexFile = "index.html"

// errFallbackMissing is logged when the SPA entry point cannot be served.
var errFallbackMissing = errors.New("fallback file not found")

// StaticHandler serves files from an asset directory and answers every path
// that names no file with the SPA entry point.
type StaticHandler struct {
	fs       http.FileSystem
	fallback string
	logger   infralogger.Logger
}

// NewStaticHandler serves the directory root. fallback is a path relative to
// root.
func NewStaticHandler(root, fallback string, log infralogger.Logger) *StaticHandler {
	return NewStaticHandlerFS(http.Dir(root), fallback, log)
}

// NewStaticHandlerFS serves fsys, which lets callers supply an embedded or
// in-memory file system.
func NewStaticHandlerFS(fsys http.FileSystem, fallback string, log infralogger.Logger) *StaticHandler {
	return &StaticHandler{
		fs:       fsys,
		fallback: cleanPath(fallback),
		logger:   log,
	}
}

// Serve resolves the request path against the asset directory. Any method is
// accepted; the request body is never read.
func (h *StaticHandler) Serve(c *gin.Context) {
	name := cleanPath(c.Request.URL.Path)

	if h.serveAsset(c, name) {
		return
	}

	if h.serveFile(c, h.fallback) {
		return
	}

	infralogger.FromContext(c.Request.Context()).Error("Static fallback unavailable",
		infralogger.Error(errFallbackMissing),
		infralogger.String("fallback", h.fallback),
		infralogger.String("path", c.Request.URL.Path),
	)
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}

// serveAsset serves name if it is a regular file, or its index.html if it is
// a directory.
func (h *StaticHandler) serveAsset(c *gin.Context, name string) bool {
	info, err := h.stat(name)
	if err != nil {
		return false
	}

	if info.IsDir() {
		return h.serveFile(c, path.Join(name, indexFile))
	}

	return h.serveFile(c, name)
}

// serveFile streams a regular file with a content type derived from its
// extension. It reports false, without writing, when name is not a regular
// file.
func (h *StaticHandler) serveFile(c *gin.Context, name string) bool {
	f, err := h.fs.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	// ServeContent writes its own status, replacing the 404 Gin presets for
	// unmatched routes.
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
	return true
}

func (h *StaticHandler) stat(name string) (fs.FileInfo, error) {
	f, err := h.fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.Stat()
}

// cleanPath roots p and removes "." and ".." segments so a lookup can never
// leave the asset directory.
func cleanPath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
