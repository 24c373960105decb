package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/vova4o/goschool-api/internal/models"
	appErrors "github.com/vova4o/goschool-api/pkg/errors"
	"github.com/vova4o/goschool-api/pkg/response"
)

// RBAC enforces role-based access control for routes. The special value
// "SELF" admits a caller whose id matches the :id route param.
func RBAC(allowed ...string) gin.HandlerFunc {
	allowSelf := false
	allowedRoles := make(map[models.UserRole]struct{}, len(allowed))
	for _, a := range allowed {
		if a == "SELF" {
			allowSelf = true
			continue
		}
		allowedRoles[models.UserRole(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf {
			if targetID := c.Param("id"); targetID != "" && targetID == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is a helper that accepts a list of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}

// RoleResolver reads a user's current role from the store.
type RoleResolver interface {
	CurrentRole(ctx context.Context, userID string) (models.UserRole, error)
}

// FreshRole swaps the role carried in the token for the stored one so a role
// change applies before the token expires. A nil resolver keeps the claims.
func FreshRole(resolver RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if resolver == nil {
			c.Next()
			return
		}
		value, _ := c.Get(ContextUserKey)
		claims, ok := value.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		role, err := resolver.CurrentRole(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if role != claims.Role {
			fresh := *claims
			fresh.Role = role
			c.Set(ContextUserKey, &fresh)
		}
		c.Next()
	}
}
