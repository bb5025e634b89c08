package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"forms-backend-go/internal/core"
	"forms-backend-go/internal/middleware"
)

// LogHandler exposes the audit trail to Admin and Manager callers.
type LogHandler struct {
	logService core.LogService
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(ls core.LogService) *LogHandler {
	return &LogHandler{logService: ls}
}

// List handles GET /api/logs
func (h *LogHandler) List(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	entries, err := h.logService.List(c.Request.Context(), p, limit)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, DataResponse{Data: entries})
}
