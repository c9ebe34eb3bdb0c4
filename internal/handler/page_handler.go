package handler

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

func pagePath(staticDir, name string) string {
	return filepath.Join(staticDir, name+".html")
}

// PageHandler serves the static page shells. The pages themselves are
// plain HTML; all data comes through the JSON API.
type PageHandler struct {
	staticDir string
}

// NewPageHandler creates a PageHandler serving files from staticDir
func NewPageHandler(staticDir string) *PageHandler {
	return &PageHandler{staticDir: staticDir}
}

// Home redirects the root path to the login page
func (h *PageHandler) Home(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/login")
}

// Serve returns a handler for the named page file
func (h *PageHandler) Serve(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.File(pagePath(h.staticDir, name))
	}
}
