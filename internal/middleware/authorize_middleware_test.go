package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"forms-backend-go/internal/authz"
	"forms-backend-go/internal/db"
	"forms-backend-go/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// withPrincipal injects an authenticated principal the way VerifyToken does,
// skipping the Firebase round trip.
func withPrincipal(p models.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(PrincipalKey, p)
		c.Next()
	}
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func staticResolver(orgs models.OrgSet, err error) ResolverFactory {
	return func(c *gin.Context) authz.OrgResolver {
		return authz.OrgResolverFunc(func(ctx context.Context) (models.OrgSet, error) {
			return orgs, err
		})
	}
}

func performRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestAuthorizeMiddleware(t *testing.T) {
	operator := models.Principal{ID: "o1", Role: models.RoleOperator, Orgs: models.OrgSet{"orgA"}}
	user := models.Principal{ID: "u1", Role: models.RoleUser, Orgs: models.OrgSet{"orgA"}}

	tests := []struct {
		name       string
		p          models.Principal
		action     authz.Action
		resolver   ResolverFactory
		wantStatus int
	}{
		{"allow on org match", operator, authz.ActionEdit, staticResolver(models.OrgSet{"orgA"}, nil), http.StatusOK},
		{"mutation miss is forbidden", operator, authz.ActionEdit, staticResolver(models.OrgSet{"orgB"}, nil), http.StatusForbidden},
		{"view miss is hidden", user, authz.ActionView, staticResolver(models.OrgSet{"orgB"}, nil), http.StatusNotFound},
		{"user mutation is forbidden", user, authz.ActionDelete, staticResolver(models.OrgSet{"orgA"}, nil), http.StatusForbidden},
		{"missing document is not found", operator, authz.ActionView, staticResolver(nil, fmt.Errorf("doc: %w", db.ErrNotFound)), http.StatusNotFound},
		{"resolver failure is internal", operator, authz.ActionView, staticResolver(nil, fmt.Errorf("store down")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/res/:id",
				withPrincipal(tt.p),
				Authorize(zap.NewNop(), tt.action, tt.resolver),
				okHandler,
			)
			w := performRequest(router, http.MethodGet, "/res/r1")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthorizeMiddlewareWithoutPrincipal(t *testing.T) {
	router := gin.New()
	router.GET("/res", Authorize(zap.NewNop(), authz.ActionView, nil), okHandler)
	w := performRequest(router, http.MethodGet, "/res")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	newRouter := func(p models.Principal, roles ...models.Role) *gin.Engine {
		router := gin.New()
		router.GET("/guarded", withPrincipal(p), RequireRoles(roles...), okHandler)
		return router
	}

	adminP := models.Principal{ID: "a1", Role: models.RoleAdmin}
	operatorP := models.Principal{ID: "o1", Role: models.RoleOperator}
	unknownP := models.Principal{ID: "x1", Role: models.Role("Supervisor")}

	w := performRequest(newRouter(adminP, models.RoleAdmin, models.RoleManager), http.MethodGet, "/guarded")
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(newRouter(operatorP, models.RoleAdmin, models.RoleManager), http.MethodGet, "/guarded")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(newRouter(unknownP, models.RoleAdmin, models.RoleManager, models.RoleOperator, models.RoleUser), http.MethodGet, "/guarded")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	t.Run("generates an id", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/ping")
		assert.NotEmpty(t, w.Body.String())
		assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
	})

	t.Run("honors incoming header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "upstream-id")
		router.ServeHTTP(w, req)
		assert.Equal(t, "upstream-id", w.Body.String())
		assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader))
	})
}
