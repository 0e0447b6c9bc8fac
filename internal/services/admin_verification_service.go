package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/medvault/medvault/internal/models"
	"github.com/medvault/medvault/pkg/logger"
	"github.com/medvault/medvault/pkg/metrics"
)

// PendingAdmin is a pending admin profile joined with its owning user.
type PendingAdmin struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Designation string    `json:"designation"`
	Department  string    `json:"department"`
	ProofURL    string    `json:"proof_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// AdminVerificationService applies succession-authorized decisions to pending
// admin profiles.
type AdminVerificationService struct {
	db         *gorm.DB
	authorizer *SuccessionAuthorizer
	notifier   Notifier
	now        func() time.Time
	log        *zap.Logger
}

// NewAdminVerificationService builds an AdminVerificationService.
func NewAdminVerificationService(db *gorm.DB, notifier Notifier) (*AdminVerificationService, error) {
	if db == nil {
		return nil, errors.New("admin verification service requires a database handle")
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &AdminVerificationService{
		db:         db,
		authorizer: NewSuccessionAuthorizer(),
		notifier:   notifier,
		now:        time.Now,
		log:        logger.WithModule("admin_verification"),
	}, nil
}

// WithClock overrides the time source. Used by tests.
func (s *AdminVerificationService) WithClock(now func() time.Time) *AdminVerificationService {
	s.now = now
	return s
}

// ApproveAdmin activates a pending admin. The profile status, approval
// provenance and the owning user's status are written in one transaction so
// the two never disagree across a commit boundary. The approval email is sent
// after commit and its failure never rolls anything back.
func (s *AdminVerificationService) ApproveAdmin(ctx context.Context, targetAdminID, actingAdminID string) error {
	ctx = ensureContext(ctx)

	var target models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := s.authorizer.AuthorizeApprove(tx, actingAdminID, targetAdminID)
		if err != nil {
			return err
		}

		now := s.now()
		updates := map[string]any{
			"verification_status":  models.StatusActive,
			"approved_at":          now,
			"approved_by_admin_id": actingAdminID,
		}
		if err := tx.Model(admin).Updates(updates).Error; err != nil {
			return fmt.Errorf("activate admin profile: %w", err)
		}

		if err := tx.Where("id = ?", admin.ID).First(&target).Error; err != nil {
			return fmt.Errorf("load admin user: %w", err)
		}
		if err := tx.Model(&target).Update("status", models.StatusActive).Error; err != nil {
			return fmt.Errorf("activate admin user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.VerificationDecisions.WithLabelValues("admin", "approved").Inc()
	s.log.Info("admin approved",
		zap.String("target_id", targetAdminID),
		zap.String("acting_id", actingAdminID))
	s.notifier.AccountApproved(target.Email, target.Name)

	return nil
}

// DenyAdmin soft-deletes a pending admin profile. The profile keeps its
// PENDING status and the owning user record is left untouched; the profile is
// simply excluded from all future succession and listing queries.
func (s *AdminVerificationService) DenyAdmin(ctx context.Context, targetAdminID, actingAdminID string) error {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := s.authorizer.AuthorizeDeny(tx, actingAdminID, targetAdminID)
		if err != nil {
			return err
		}
		if err := tx.Model(admin).Update("deleted", true).Error; err != nil {
			return fmt.Errorf("soft-delete admin profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.VerificationDecisions.WithLabelValues("admin", "denied").Inc()
	s.log.Info("admin denied",
		zap.String("target_id", targetAdminID),
		zap.String("acting_id", actingAdminID))

	return nil
}

// PendingAdmins lists pending, non-deleted admin profiles newest first, with
// an optional case-insensitive name filter. Returns the page plus the total
// match count.
func (s *AdminVerificationService) PendingAdmins(ctx context.Context, search string, page, perPage int) ([]PendingAdmin, int64, error) {
	ctx = ensureContext(ctx)

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := s.db.WithContext(ctx).Model(&models.Admin{}).
		Joins("JOIN users ON users.id = admins.id").
		Where("admins.verification_status = ? AND admins.deleted = ?", models.StatusPending, false)

	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("LOWER(users.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count pending admins: %w", err)
	}

	var admins []PendingAdmin
	err := query.
		Select("admins.id, users.name, users.email, admins.phone, admins.designation, admins.department, admins.proof_url, admins.created_at").
		Order("admins.created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Scan(&admins).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list pending admins: %w", err)
	}

	return admins, total, nil
}
