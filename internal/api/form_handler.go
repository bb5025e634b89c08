package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forms-backend-go/internal/core"
	"forms-backend-go/internal/middleware"
	"forms-backend-go/internal/models"
)

// FormHandler handles API endpoints for form definitions.
type FormHandler struct {
	formService core.FormService
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(fs core.FormService) *FormHandler {
	return &FormHandler{formService: fs}
}

// Create handles POST /api/forms
func (h *FormHandler) Create(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	id, err := h.formService.Create(c.Request.Context(), p, req, requestInfo(c))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

// List handles GET /api/forms
func (h *FormHandler) List(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	forms, err := h.formService.List(c.Request.Context(), p, requestInfo(c))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, forms)
}

// ListPage handles GET /api/forms/page/:page
func (h *FormHandler) ListPage(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	page, err := h.formService.ListPage(c.Request.Context(), p, pageParam(c), requestInfo(c))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /api/forms/:id
func (h *FormHandler) Get(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	form, err := h.formService.Get(c.Request.Context(), p, c.Param("id"), requestInfo(c))
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// Update handles PUT /api/forms/:id
func (h *FormHandler) Update(c *gin.Context) {
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

	if err := h.formService.Update(c.Request.Context(), p, c.Param("id"), fields, requestInfo(c)); err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "updated"})
}

// Delete handles DELETE /api/forms/:id
func (h *FormHandler) Delete(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	if err := h.formService.Delete(c.Request.Context(), p, c.Param("id"), requestInfo(c)); err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "deleted"})
}
