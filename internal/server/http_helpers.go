package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"polls/internal/web"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

func render(c *gin.Context, status int, component templ.Component) {
	templ.Handler(component, templ.WithStatus(status)).ServeHTTP(c.Writer, c.Request)
}

func parseID(c *gin.Context) (uint, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

func wantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

func (s *Server) handleNotFound(c *gin.Context) {
	if wantsJSON(c) {
		writeError(c, http.StatusNotFound, "not found")
		return
	}
	render(c, http.StatusNotFound, web.NotFound())
}

func (s *Server) handleMethodNotAllowed(c *gin.Context) {
	if wantsJSON(c) {
		writeError(c, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
}

func (s *Server) serverError(c *gin.Context, action string, err error) {
	slog.Error(action+" failed", "path", c.Request.URL.Path, "request_id", requestID(c), "error", err)
	if wantsJSON(c) {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	render(c, http.StatusInternalServerError, web.ServerError())
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error": message,
	})
}
