package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/medvault/medvault/internal/models"
	"github.com/medvault/medvault/pkg/logger"
	"github.com/medvault/medvault/pkg/metrics"
)

// PendingUser is a pending account together with its role profile, when one
// has been completed.
type PendingUser struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	Profile   any         `json:"profile,omitempty"`
}

// UserVerificationService handles the simple approval path for patient and
// doctor accounts: no succession chain, any transport-authenticated admin may
// act.
type UserVerificationService struct {
	db       *gorm.DB
	notifier Notifier
	log      *zap.Logger
}

// NewUserVerificationService builds a UserVerificationService.
func NewUserVerificationService(db *gorm.DB, notifier Notifier) (*UserVerificationService, error) {
	if db == nil {
		return nil, errors.New("user verification service requires a database handle")
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &UserVerificationService{
		db:       db,
		notifier: notifier,
		log:      logger.WithModule("user_verification"),
	}, nil
}

// PendingUsers lists all PENDING accounts newest first with their role
// profiles attached where present.
func (s *UserVerificationService) PendingUsers(ctx context.Context) ([]PendingUser, error) {
	ctx = ensureContext(ctx)
	db := s.db.WithContext(ctx)

	var users []models.User
	if err := db.Where("status = ?", models.StatusPending).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list pending users: %w", err)
	}

	result := make([]PendingUser, 0, len(users))
	for _, u := range users {
		entry := PendingUser{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		}

		profile, err := loadProfile(db, u)
		if err != nil {
			return nil, err
		}
		entry.Profile = profile

		result = append(result, entry)
	}
	return result, nil
}

// ApproveUser activates a pending account and sends a best-effort approval
// notification.
func (s *UserVerificationService) ApproveUser(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", userID).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrUserNotFound
		case err != nil:
			return fmt.Errorf("load user: %w", err)
		}

		if user.Status == models.StatusActive {
			return ErrAlreadyVerified
		}

		if err := tx.Model(&user).Update("status", models.StatusActive).Error; err != nil {
			return fmt.Errorf("activate user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.VerificationDecisions.WithLabelValues("user", "approved").Inc()
	s.log.Info("user approved", zap.String("user_id", userID))
	s.notifier.AccountApproved(user.Email, user.Name)

	return nil
}

// RejectUser deletes the account and its role profile outright. Unlike admin
// denial there is no soft delete on this path; rejection is destructive.
func (s *UserVerificationService) RejectUser(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("id = ?", userID).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrUserNotFound
		case err != nil:
			return fmt.Errorf("load user: %w", err)
		}

		// Profiles cascade from the user row, but deleting them explicitly
		// keeps the behaviour identical across database vendors.
		switch user.Role {
		case models.RolePatient:
			err = tx.Where("id = ?", user.ID).Delete(&models.Patient{}).Error
		case models.RoleDoctor:
			err = tx.Where("id = ?", user.ID).Delete(&models.Doctor{}).Error
		case models.RoleAdmin:
			err = tx.Where("id = ?", user.ID).Delete(&models.Admin{}).Error
		}
		if err != nil {
			return fmt.Errorf("delete role profile: %w", err)
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.OtpChallenge{}).Error; err != nil {
			return fmt.Errorf("delete otp challenges: %w", err)
		}

		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.VerificationDecisions.WithLabelValues("user", "rejected").Inc()
	s.log.Info("user rejected", zap.String("user_id", userID))

	return nil
}

func loadProfile(db *gorm.DB, user models.User) (any, error) {
	switch user.Role {
	case models.RolePatient:
		var p models.Patient
		err := db.Where("id = ?", user.ID).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load patient profile: %w", err)
		}
		return p, nil
	case models.RoleDoctor:
		var d models.Doctor
		err := db.Where("id = ?", user.ID).First(&d).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load doctor profile: %w", err)
		}
		return d, nil
	case models.RoleAdmin:
		var a models.Admin
		err := db.Where("id = ?", user.ID).First(&a).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load admin profile: %w", err)
		}
		return a, nil
	default:
		return nil, nil
	}
}
