package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/medvault/medvault/internal/models"
)

// SuccessionAuthorizer decides whether an acting admin may approve or deny a
// pending admin. Administrative trust propagates linearly: only the seeded
// super admin or the most recently approved active admin may act, so a
// superseded admin loses its approval powers the moment a newer admin is
// approved. Methods run inside the caller's transaction so the succession
// read and the resulting status write observe one consistent snapshot.
type SuccessionAuthorizer struct{}

// NewSuccessionAuthorizer builds a SuccessionAuthorizer.
func NewSuccessionAuthorizer() *SuccessionAuthorizer {
	return &SuccessionAuthorizer{}
}

// AuthorizeApprove checks the succession rule plus the approve-specific target
// state, returning the target profile on success.
func (a *SuccessionAuthorizer) AuthorizeApprove(tx *gorm.DB, actingAdminID, targetAdminID string) (*models.Admin, error) {
	if err := a.checkActing(tx, actingAdminID); err != nil {
		return nil, err
	}

	target, err := loadAdmin(tx, targetAdminID)
	if err != nil {
		return nil, err
	}
	if target.Deleted {
		return nil, ErrAdminNotFound
	}
	if target.VerificationStatus != models.StatusPending {
		return nil, ErrAdminNotPending
	}
	return target, nil
}

// AuthorizeDeny checks the succession rule plus the deny-specific target
// state. Denial has no PENDING requirement; it only needs a target that has
// not already been soft-deleted.
func (a *SuccessionAuthorizer) AuthorizeDeny(tx *gorm.DB, actingAdminID, targetAdminID string) (*models.Admin, error) {
	if err := a.checkActing(tx, actingAdminID); err != nil {
		return nil, err
	}

	target, err := loadAdmin(tx, targetAdminID)
	if err != nil {
		return nil, err
	}
	if target.Deleted {
		return nil, ErrAdminNotFound
	}
	return target, nil
}

func (a *SuccessionAuthorizer) checkActing(tx *gorm.DB, actingAdminID string) error {
	acting, err := loadAdmin(tx, actingAdminID)
	if err != nil {
		return err
	}

	if acting.VerificationStatus != models.StatusActive {
		return ErrAdminNotActive
	}
	if acting.IsSuperAdmin {
		return nil
	}

	var latest models.Admin
	err = tx.Where("verification_status = ? AND deleted = ?", models.StatusActive, false).
		Order("approved_at DESC, id DESC").
		First(&latest).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNoActiveAdmins
	case err != nil:
		return fmt.Errorf("find latest active admin: %w", err)
	}

	if latest.ID != acting.ID {
		return ErrNotLatestAdmin
	}
	return nil
}

func loadAdmin(tx *gorm.DB, id string) (*models.Admin, error) {
	var admin models.Admin
	err := tx.Where("id = ?", id).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrAdminNotFound
	case err != nil:
		return nil, fmt.Errorf("load admin profile: %w", err)
	}
	return &admin, nil
}
