package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medvault/medvault/internal/auth"
	"github.com/medvault/medvault/internal/models"
	apperrors "github.com/medvault/medvault/pkg/errors"
	"github.com/medvault/medvault/pkg/response"
)

// Context keys populated by Auth.
const (
	ContextUserIDKey = "userID"
	ContextRoleKey   = "userRole"
)

// Auth validates the bearer token and stores the caller's identity on the
// request context. Expired tokens are rejected the same as missing ones.
func Auth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		identity, err := tokens.Decode(strings.TrimSpace(raw))
		if err != nil || identity.Expired {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, identity.UserID)
		c.Set(ContextRoleKey, identity.Role)
		c.Next()
	}
}

// RequireRole guards a route group to callers holding the given role. Must
// run after Auth.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextRoleKey)
		current, ok := value.(models.Role)
		if !exists || !ok || current != role {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
