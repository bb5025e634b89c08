package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forms-backend-go/internal/core"
	"forms-backend-go/internal/middleware"
	"forms-backend-go/internal/models"
)

// UserHandler handles API endpoints for user provisioning and management.
type UserHandler struct {
	userService core.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

// Register handles POST /api/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req models.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	uid, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, RegisteredResponse{UID: uid})
}

// Me handles GET /api/users/me and echoes the verified token's identity,
// letting clients discover their role and orgs without a profile read.
func (h *UserHandler) Me(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uid":   p.ID,
		"email": p.Email,
		"role":  p.Role,
		"org":   p.Orgs.Strings(),
	})
}

// List handles GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	users, err := h.userService.ListVisible(c.Request.Context(), p)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, DataResponse{Data: users})
}

// Delete handles DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	if err := h.userService.Delete(c.Request.Context(), p, c.Param("id"), requestInfo(c)); err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "deleted"})
}
