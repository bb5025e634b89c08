package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"forms-backend-go/internal/authz"
	"forms-backend-go/internal/db"
	"forms-backend-go/internal/models"
)

// ResolverFactory builds the org resolver for one request, typically closing
// over the :id route parameter to look up the target document's orgs.
type ResolverFactory func(c *gin.Context) authz.OrgResolver

// Authorize gates a route on the role/org policy. The factory may be nil for
// actions that need no resource orgs (Admin-only checks resolved inside the
// policy itself).
func Authorize(logger *zap.Logger, action authz.Action, factory ResolverFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
			return
		}

		var resolver authz.OrgResolver
		if factory != nil {
			resolver = factory(c)
		}

		decision, err := authz.Authorize(c.Request.Context(), p, action, resolver)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
				return
			}
			logger.Error("Authorization check failed",
				zap.String("action", string(action)),
				zap.String("uid", p.ID),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
			return
		}

		switch decision {
		case authz.Allow:
			c.Next()
		case authz.DenyNotFound:
			// Hide resources outside the caller's orgs.
			c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		}
	}
}

// RequireRoles gates a route on the caller holding one of the given roles.
// Used for the user-management and audit-log surfaces, which are not
// org-scoped resources.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
			return
		}
		if _, ok := allowed[p.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
			return
		}
		c.Next()
	}
}
