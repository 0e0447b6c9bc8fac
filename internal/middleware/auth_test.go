package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvault/medvault/internal/auth"
	"github.com/medvault/medvault/internal/models"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *auth.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenService("test-secret", "medvault", time.Hour)
	require.NoError(t, err)

	router := gin.New()
	group := router.Group("/admin", Auth(tokens), RequireRole(models.RoleAdmin))
	group.GET("/ping", func(c *gin.Context) {
		id, _ := c.Get(ContextUserIDKey)
		c.JSON(http.StatusOK, gin.H{"user_id": id})
	})
	return router, tokens
}

func request(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthAllowsValidAdminToken(t *testing.T) {
	router, tokens := newAuthTestRouter(t)

	token, err := tokens.Issue("admin-1", models.RoleAdmin)
	require.NoError(t, err)

	w := request(router, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	w := request(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	router, tokens := newAuthTestRouter(t)

	tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	token, err := tokens.Issue("admin-1", models.RoleAdmin)
	require.NoError(t, err)
	tokens.WithClock(time.Now)

	w := request(router, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	router, tokens := newAuthTestRouter(t)

	token, err := tokens.Issue("doctor-1", models.RoleDoctor)
	require.NoError(t, err)

	w := request(router, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
