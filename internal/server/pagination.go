package server

import (
	"strconv"
	"strings"

	"polls/internal/web"

	"github.com/gin-gonic/gin"
)

// pageRequest is a requested archive page; values are clamped by paginate.
type pageRequest struct {
	Page    int
	PerPage int
}

func parsePagination(c *gin.Context, defaultPerPage, maxPerPage int) pageRequest {
	req := pageRequest{
		Page:    positiveQuery(c, "page", 1),
		PerPage: positiveQuery(c, "per_page", defaultPerPage),
	}
	if maxPerPage > 0 && req.PerPage > maxPerPage {
		req.PerPage = maxPerPage
	}
	return req
}

func positiveQuery(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// paginate clamps req against total and returns the page data and row offset.
// Requests past the last page land on the last page.
func paginate(basePath string, req pageRequest, total int64) (web.PaginationData, int) {
	perPage := max(req.PerPage, 1)
	totalPages := max(int((total+int64(perPage)-1)/int64(perPage)), 1)
	page := min(max(req.Page, 1), totalPages)

	data := web.PaginationData{
		BasePath:   basePath,
		Page:       page,
		PerPage:    perPage,
		Total:      int(total),
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
	if data.HasPrev {
		data.PrevPage = page - 1
	}
	if data.HasNext {
		data.NextPage = page + 1
	}
	return data, (page - 1) * perPage
}
