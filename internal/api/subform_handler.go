package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forms-backend-go/internal/core"
	"forms-backend-go/internal/middleware"
	"forms-backend-go/internal/models"
)

// SubformHandler handles API endpoints for subform definitions.
type SubformHandler struct {
	subformService core.SubformService
}

// NewSubformHandler creates a new SubformHandler.
func NewSubformHandler(ss core.SubformService) *SubformHandler {
	return &SubformHandler{subformService: ss}
}

// Create handles POST /api/subforms
func (h *SubformHandler) Create(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.CreateSubformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	id, err := h.subformService.Create(c.Request.Context(), p, req, requestInfo(c))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

// List handles GET /api/subforms
func (h *SubformHandler) List(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	subforms, err := h.subformService.List(c.Request.Context(), p, requestInfo(c))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subforms)
}

// ListPage handles GET /api/subforms/page/:page
func (h *SubformHandler) ListPage(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	page, err := h.subformService.ListPage(c.Request.Context(), p, pageParam(c), requestInfo(c))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /api/subforms/:id
func (h *SubformHandler) Get(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	subform, err := h.subformService.Get(c.Request.Context(), p, c.Param("id"), requestInfo(c))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subform)
}

// Update handles PUT /api/subforms/:id
func (h *SubformHandler) Update(c *gin.Context) {
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

	if err := h.subformService.Update(c.Request.Context(), p, c.Param("id"), fields, requestInfo(c)); err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "updated"})
}

// Delete handles DELETE /api/subforms/:id
func (h *SubformHandler) Delete(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	if err := h.subformService.Delete(c.Request.Context(), p, c.Param("id"), requestInfo(c)); err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "deleted"})
}
