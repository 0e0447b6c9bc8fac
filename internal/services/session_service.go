package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/medvault/medvault/internal/auth"
	"github.com/medvault/medvault/internal/models"
	"github.com/medvault/medvault/pkg/crypto"
	apperrors "github.com/medvault/medvault/pkg/errors"
	"github.com/medvault/medvault/pkg/logger"
	"github.com/medvault/medvault/pkg/metrics"
)

// LoginResult is returned from a successful authentication.
type LoginResult struct {
	Token  string      `json:"token"`
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
}

// SessionService authenticates credentials against ACTIVE accounts and mints
// bearer tokens.
type SessionService struct {
	db     *gorm.DB
	tokens *auth.TokenService
	log    *zap.Logger
}

// NewSessionService builds a SessionService.
func NewSessionService(db *gorm.DB, tokens *auth.TokenService) (*SessionService, error) {
	if db == nil {
		return nil, errors.New("session service requires a database handle")
	}
	if tokens == nil {
		return nil, errors.New("session service requires a token service")
	}
	return &SessionService{
		db:     db,
		tokens: tokens,
		log:    logger.WithModule("session"),
	}, nil
}

// Login checks credentials first and verification status second, so a wrong
// password on a pending account reports InvalidCredentials while a correct
// one reports AccountNotVerified.
func (s *SessionService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return LoginResult{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return LoginResult{}, fmt.Errorf("look up user by email: %w", err)
	}

	if user.Password == "" || !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return LoginResult{}, apperrors.ErrInvalidCredentials
	}

	if user.Status != models.StatusActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return LoginResult{}, ErrAccountNotVerified
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue session token: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	s.log.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))

	return LoginResult{Token: token, UserID: user.ID, Role: user.Role}, nil
}
