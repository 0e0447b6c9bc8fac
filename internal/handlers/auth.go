package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medvault/medvault/internal/services"
	"github.com/medvault/medvault/pkg/response"
)

// AuthHandler exposes registration and login endpoints.
type AuthHandler struct {
	registration *services.RegistrationService
	sessions     *services.SessionService
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(registration *services.RegistrationService, sessions *services.SessionService) *AuthHandler {
	return &AuthHandler{registration: registration, sessions: sessions}
}

type generateOTPRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

// GenerateOTP handles POST /api/auth/generate-otp.
func (h *AuthHandler) GenerateOTP(c *gin.Context) {
	req, ok := bindAndValidate[generateOTPRequest](c)
	if !ok {
		return
	}

	receipt, err := h.registration.IssueChallenge(c.Request.Context(), req.Name, req.Email, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, receipt)
}

type verifyOTPRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required"`
	OTP    string `json:"otp" validate:"required,len=5,numeric"`
}

// VerifyOTP handles POST /api/auth/verify-otp.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	req, ok := bindAndValidate[verifyOTPRequest](c)
	if !ok {
		return
	}

	if err := h.registration.VerifyChallenge(c.Request.Context(), req.UserID, req.Role, req.OTP); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, true, "OTP verified successfully.")
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	req, ok := bindAndValidate[loginRequest](c)
	if !ok {
		return
	}

	result, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

type registerAdminRequest struct {
	FullName string `json:"full_name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
}

// RegisterAdmin handles POST /api/auth/register-admin. The invitee receives
// temporary credentials by email and stays pending until approved through the
// succession chain.
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	req, ok := bindAndValidate[registerAdminRequest](c)
	if !ok {
		return
	}

	userID, err := h.registration.RegisterAdmin(c.Request.Context(), req.FullName, req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user_id": userID})
}
