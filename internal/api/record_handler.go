package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forms-backend-go/internal/core"
	"forms-backend-go/internal/middleware"
	"forms-backend-go/internal/models"
)

// RecordHandler handles API endpoints for records.
type RecordHandler struct {
	recordService core.RecordService
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(rs core.RecordService) *RecordHandler {
	return &RecordHandler{recordService: rs}
}

// Create handles POST /api/records
func (h *RecordHandler) Create(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	id, err := h.recordService.Create(c.Request.Context(), p, req, requestInfo(c))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

// List handles GET /api/records
func (h *RecordHandler) List(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	records, err := h.recordService.List(c.Request.Context(), p, requestInfo(c))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListPage handles GET /api/records/page/:page
func (h *RecordHandler) ListPage(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	page, err := h.recordService.ListPage(c.Request.Context(), p, pageParam(c), requestInfo(c))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /api/records/:id
func (h *RecordHandler) Get(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	record, err := h.recordService.Get(c.Request.Context(), p, c.Param("id"), requestInfo(c))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Update handles PUT /api/records/:id
func (h *RecordHandler) Update(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	if err := h.recordService.Update(c.Request.Context(), p, c.Param("id"), fields, requestInfo(c)); err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "updated"})
}

// Delete handles DELETE /api/records/:id
func (h *RecordHandler) Delete(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	if err := h.recordService.Delete(c.Request.Context(), p, c.Param("id"), requestInfo(c)); err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "deleted"})
}
