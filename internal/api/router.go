package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medvault/medvault/internal/auth"
	"github.com/medvault/medvault/internal/handlers"
	"github.com/medvault/medvault/internal/middleware"
	"github.com/medvault/medvault/internal/models"
	"github.com/medvault/medvault/pkg/response"
)

// Dependencies carries the wired handlers and services the router needs.
type Dependencies struct {
	Auth              *handlers.AuthHandler
	Profiles          *handlers.ProfileHandler
	Admin             *handlers.AdminHandler
	AdminVerification *handlers.AdminVerificationHandler
	Tokens            *auth.TokenService
}

// NewRouter assembles the HTTP surface.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.SecurityHeaders(),
	)

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")

	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/generate-otp", deps.Auth.GenerateOTP)
		authGroup.POST("/verify-otp", deps.Auth.VerifyOTP)
		authGroup.POST("/login", deps.Auth.Login)
		authGroup.POST("/register-admin", deps.Auth.RegisterAdmin)
	}

	profileGroup := apiGroup.Group("/profile")
	{
		profileGroup.PUT("/patient", deps.Profiles.CompletePatientProfile)
		profileGroup.PUT("/doctor", deps.Profiles.CompleteDoctorProfile)
	}
	apiGroup.PUT("/admin/profile", deps.Profiles.CompleteAdminProfile)

	adminGroup := apiGroup.Group("/admin")
	adminGroup.Use(middleware.Auth(deps.Tokens), middleware.RequireRole(models.RoleAdmin))
	{
		adminGroup.GET("/pending-users", deps.Admin.PendingUsers)
		adminGroup.POST("/users/:id/approve", deps.Admin.ApproveUser)
		adminGroup.POST("/users/:id/reject", deps.Admin.RejectUser)

		adminGroup.GET("/role-verification", deps.AdminVerification.PendingAdmins)
		adminGroup.POST("/role-verification/:id/approve", deps.AdminVerification.Approve)
		adminGroup.POST("/role-verification/:id/deny", deps.AdminVerification.Deny)
	}

	return router
}
