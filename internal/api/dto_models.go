package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"forms-backend-go/internal/core"
	"forms-backend-go/internal/db"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message or code
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// CreatedResponse is the body of every successful create, carrying the new
// document's ID.
type CreatedResponse struct {
	ID string `json:"id"`
}

// StatusResponse acknowledges an update or delete.
type StatusResponse struct {
	Status string `json:"status"`
}

// DataResponse wraps admin list results; the admin client reads the list
// from the body's data key.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// RegisteredResponse is the body of a successful user registration,
// carrying the new Firebase Auth UID.
type RegisteredResponse struct {
	UID string `json:"uid"`
}

// requestInfo captures the request facts the audit trail records.
func requestInfo(c *gin.Context) core.RequestInfo {
	return core.RequestInfo{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		IP:     c.ClientIP(),
	}
}

// pageParam parses the :page route parameter. Anything unparseable or below
// one is treated as page one.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// mapServiceError maps errors from the core services to HTTP status codes.
func mapServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	case errors.Is(err, core.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
	default:
		log.Printf("Internal Server Error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}
