package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medvault/medvault/internal/services"
	apperrors "github.com/medvault/medvault/pkg/errors"
	"github.com/medvault/medvault/pkg/response"
)

// AdminVerificationHandler exposes the succession-gated admin decisions.
type AdminVerificationHandler struct {
	admins *services.AdminVerificationService
}

// NewAdminVerificationHandler builds an AdminVerificationHandler.
func NewAdminVerificationHandler(admins *services.AdminVerificationService) *AdminVerificationHandler {
	return &AdminVerificationHandler{admins: admins}
}

// PendingAdmins handles GET /api/admin/role-verification.
func (h *AdminVerificationHandler) PendingAdmins(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 20)
	if perPage > 100 {
		perPage = 20
	}

	pending, total, err := h.admins.PendingAdmins(c.Request.Context(), c.Query("search"), page, perPage)
	if err != nil {
		response.Error(c, err)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage != 0 {
		totalPages++
	}

	response.SuccessWithMeta(c, http.StatusOK, pending, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      int(total),
		TotalPages: totalPages,
	})
}

// Approve handles POST /api/admin/role-verification/:id/approve. The acting
// admin is taken from the authenticated session, never from the payload.
func (h *AdminVerificationHandler) Approve(c *gin.Context) {
	actingID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.admins.ApproveAdmin(c.Request.Context(), c.Param("id"), actingID); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, true, "Admin verified successfully.")
}

// Deny handles POST /api/admin/role-verification/:id/deny. The call itself
// succeeds with HTTP 200 while the envelope reports success=false, mirroring
// the verification outcome rather than the call outcome.
func (h *AdminVerificationHandler) Deny(c *gin.Context) {
	actingID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.admins.DenyAdmin(c.Request.Context(), c.Param("id"), actingID); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, false, "Admin verification denied.")
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
