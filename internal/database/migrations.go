package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/medvault/medvault/internal/models"
	"github.com/medvault/medvault/pkg/crypto"
	"github.com/medvault/medvault/pkg/logger"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Patient{},
		&models.Doctor{},
		&models.Admin{},
		&models.OtpChallenge{},
	)
}

// SeedConfig holds the bootstrap super-admin credentials.
type SeedConfig struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// SeedSuperAdmin creates the bootstrap super-admin when no admin profile
// exists yet. The seed is idempotent: once any admin profile is present the
// call is a no-op, so it is safe to run on every start-up.
func SeedSuperAdmin(db *gorm.DB, cfg SeedConfig) error {
	email := strings.TrimSpace(cfg.AdminEmail)
	if email == "" {
		return errors.New("seed: admin email is required")
	}
	if strings.TrimSpace(cfg.AdminPassword) == "" {
		return errors.New("seed: admin password is required")
	}

	name := strings.TrimSpace(cfg.AdminName)
	if name == "" {
		name = "System Admin"
	}

	log := logger.WithModule("seed")

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Admin{}).Count(&count).Error; err != nil {
			return fmt.Errorf("count admin profiles: %w", err)
		}
		if count > 0 {
			return nil
		}

		log.Info("seeding default super admin")

		var user models.User
		err := tx.Where("email = ?", email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			hashed, hashErr := crypto.HashPassword(cfg.AdminPassword)
			if hashErr != nil {
				return fmt.Errorf("hash seed password: %w", hashErr)
			}
			user = models.User{
				Name:     name,
				Email:    email,
				Password: hashed,
				Role:     models.RoleAdmin,
				Status:   models.StatusActive,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create seed user: %w", err)
			}
		case err != nil:
			return fmt.Errorf("load seed user: %w", err)
		default:
			// Reuse the existing account but make sure it can act as an admin.
			updates := map[string]any{}
			if user.Role != models.RoleAdmin {
				updates["role"] = models.RoleAdmin
			}
			if user.Status != models.StatusActive {
				updates["status"] = models.StatusActive
			}
			if len(updates) > 0 {
				if err := tx.Model(&user).Updates(updates).Error; err != nil {
					return fmt.Errorf("promote seed user: %w", err)
				}
			}
		}

		now := time.Now()
		admin := models.Admin{
			ID:                 user.ID,
			IsSuperAdmin:       true,
			VerificationStatus: models.StatusActive,
			ApprovedAt:         &now,
			// ApprovedByAdminID stays nil for the first admin.
		}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("create seed admin profile: %w", err)
		}

		return nil
	})
}
