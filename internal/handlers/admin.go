package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medvault/medvault/internal/services"
	"github.com/medvault/medvault/pkg/response"
)

// AdminHandler exposes the generic pending-user decisions available to any
// authenticated admin.
type AdminHandler struct {
	users *services.UserVerificationService
}

// NewAdminHandler builds an AdminHandler.
func NewAdminHandler(users *services.UserVerificationService) *AdminHandler {
	return &AdminHandler{users: users}
}

// PendingUsers handles GET /api/admin/pending-users.
func (h *AdminHandler) PendingUsers(c *gin.Context) {
	pending, err := h.users.PendingUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, pending)
}

// ApproveUser handles POST /api/admin/users/:id/approve.
func (h *AdminHandler) ApproveUser(c *gin.Context) {
	if err := h.users.ApproveUser(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, true, "User approved successfully.")
}

// RejectUser handles POST /api/admin/users/:id/reject. Rejection permanently
// deletes the account and its profile.
func (h *AdminHandler) RejectUser(c *gin.Context) {
	if err := h.users.RejectUser(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, true, "User rejected and removed.")
}
