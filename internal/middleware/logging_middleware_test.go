package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerIncludesRequestID(t *testing.T) {
	observed, logs := observer.New(zap.InfoLevel)
	logger := zap.New(observed)

	router := gin.New()
	router.Use(RequestID(), RequestLogger(logger))
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.InfoLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "/ping", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status_code"])
}

func TestRequestLoggerLevelFollowsStatusClass(t *testing.T) {
	observed, logs := observer.New(zap.InfoLevel)
	logger := zap.New(observed)

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/broken", nil))

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zap.WarnLevel, logs.All()[0].Level)
	assert.Equal(t, zap.ErrorLevel, logs.All()[1].Level)
}

func TestRecoveryMiddlewareReturnsErrorResponse(t *testing.T) {
	observed, logs := observer.New(zap.ErrorLevel)
	logger := zap.New(observed)

	router := gin.New()
	router.Use(RequestID(), RecoveryMiddleware(logger))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body.Error)
	assert.NotEmpty(t, body.Details)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "req-7", fields["request_id"])
	assert.NotEmpty(t, fields["stacktrace"])
}
