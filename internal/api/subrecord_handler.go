package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forms-backend-go/internal/core"
	"forms-backend-go/internal/middleware"
	"forms-backend-go/internal/models"
)

// SubrecordHandler handles API endpoints for subrecords.
type SubrecordHandler struct {
	subrecordService core.SubrecordService
}

// NewSubrecordHandler creates a new SubrecordHandler.
func NewSubrecordHandler(ss core.SubrecordService) *SubrecordHandler {
	return &SubrecordHandler{subrecordService: ss}
}

// Create handles POST /api/subrecords
func (h *SubrecordHandler) Create(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.CreateSubrecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	id, err := h.subrecordService.Create(c.Request.Context(), p, req, requestInfo(c))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

// List handles GET /api/subrecords
func (h *SubrecordHandler) List(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	subrecords, err := h.subrecordService.List(c.Request.Context(), p, requestInfo(c))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subrecords)
}

// ListPage handles GET /api/subrecords/page/:page
func (h *SubrecordHandler) ListPage(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	page, err := h.subrecordService.ListPage(c.Request.Context(), p, pageParam(c), requestInfo(c))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /api/subrecords/:id
func (h *SubrecordHandler) Get(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	subrecord, err := h.subrecordService.Get(c.Request.Context(), p, c.Param("id"), requestInfo(c))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subrecord)
}

// Update handles PUT /api/subrecords/:id
func (h *SubrecordHandler) Update(c *gin.Context) {
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

	if err := h.subrecordService.Update(c.Request.Context(), p, c.Param("id"), fields, requestInfo(c)); err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "updated"})
}

// Delete handles DELETE /api/subrecords/:id
func (h *SubrecordHandler) Delete(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	if err := h.subrecordService.Delete(c.Request.Context(), p, c.Param("id"), requestInfo(c)); err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "deleted"})
}
