package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/medvault/medvault/internal/middleware"
)

// currentUserID returns the authenticated caller's id set by the auth
// middleware.
func currentUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}
