package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vova4o/goschool-api/internal/models"
	appErrors "github.com/vova4o/goschool-api/pkg/errors"
	"github.com/vova4o/goschool-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// TokenVerifier validates access tokens and their server-side session.
type TokenVerifier interface {
	ValidateToken(token string) (*models.JWTClaims, error)
	VerifySession(ctx context.Context, userID, token string) error
}

// JWT protects routes by requiring a valid access token backed by a live session.
func JWT(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing or malformed authorization header"))
			c.Abort()
			return
		}

		claims, err := verifier.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if err := verifier.VerifySession(c.Request.Context(), claims.UserID, token); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// OptionalJWT attaches claims when a valid session is presented and
// otherwise lets the request through as anonymous.
func OptionalJWT(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := verifier.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}
		if err := verifier.VerifySession(c.Request.Context(), claims.UserID, token); err != nil {
			c.Next()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
