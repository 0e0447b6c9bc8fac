package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/medvault/medvault/internal/api"
	"github.com/medvault/medvault/internal/app"
	"github.com/medvault/medvault/internal/app/maintenance"
	"github.com/medvault/medvault/internal/auth"
	"github.com/medvault/medvault/internal/database"
	"github.com/medvault/medvault/internal/handlers"
	"github.com/medvault/medvault/internal/services"
	"github.com/medvault/medvault/internal/storage"
	"github.com/medvault/medvault/pkg/mail"
)

// runtime holds the fully wired application.
type runtime struct {
	cfg     *app.Config
	db      *gorm.DB
	router  *gin.Engine
	cleaner *maintenance.Cleaner
}

func buildRuntime(cfg *app.Config) (*runtime, error) {
	db, err := database.Open(database.Config{
		Driver:   cfg.Database.Driver,
		Path:     cfg.Database.Path,
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Name:     cfg.Database.Name,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.Seed.AdminEmail != "" {
		seed := database.SeedConfig{
			AdminName:     cfg.Seed.AdminName,
			AdminEmail:    cfg.Seed.AdminEmail,
			AdminPassword: cfg.Seed.AdminPassword,
		}
		if err := database.AutoMigrateAndSeed(db, seed); err != nil {
			return nil, err
		}
	} else if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	mailer, err := mail.NewSMTPMailer(mail.SMTPSettings{
		Enabled:  cfg.Email.SMTP.Enabled,
		Host:     cfg.Email.SMTP.Host,
		Port:     cfg.Email.SMTP.Port,
		Username: cfg.Email.SMTP.Username,
		Password: cfg.Email.SMTP.Password,
		From:     cfg.Email.SMTP.From,
		UseTLS:   cfg.Email.SMTP.UseTLS,
		Timeout:  cfg.Email.SMTP.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("configure mailer: %w", err)
	}
	notifier := services.NewMailNotifier(mailer)

	tokens, err := auth.NewTokenService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.TTL)
	if err != nil {
		return nil, fmt.Errorf("configure token service: %w", err)
	}

	files, err := storage.NewFileStore(cfg.Storage.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("configure file store: %w", err)
	}

	registration, err := services.NewRegistrationService(db, notifier)
	if err != nil {
		return nil, err
	}
	sessions, err := services.NewSessionService(db, tokens)
	if err != nil {
		return nil, err
	}
	userVerification, err := services.NewUserVerificationService(db, notifier)
	if err != nil {
		return nil, err
	}
	adminVerification, err := services.NewAdminVerificationService(db, notifier)
	if err != nil {
		return nil, err
	}

	router := api.NewRouter(api.Dependencies{
		Auth:              handlers.NewAuthHandler(registration, sessions),
		Profiles:          handlers.NewProfileHandler(registration, files),
		Admin:             handlers.NewAdminHandler(userVerification),
		AdminVerification: handlers.NewAdminVerificationHandler(adminVerification),
		Tokens:            tokens,
	})

	var cleaner *maintenance.Cleaner
	if cfg.Maintenance.Enabled {
		cleaner, err = maintenance.NewCleaner(db, maintenance.WithSchedule(cfg.Maintenance.Schedule))
		if err != nil {
			return nil, fmt.Errorf("configure maintenance cleaner: %w", err)
		}
	}

	return &runtime{cfg: cfg, db: db, router: router, cleaner: cleaner}, nil
}

func (r *runtime) close() {
	if sqlDB, err := r.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
