package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/medvault/medvault/internal/auth"
	"github.com/medvault/medvault/internal/database/testutil"
	"github.com/medvault/medvault/internal/models"
	"github.com/medvault/medvault/pkg/crypto"
	apperrors "github.com/medvault/medvault/pkg/errors"
)

func newSessionService(t *testing.T) (*SessionService, *auth.TokenService, *gorm.DB) {
	t.Helper()
	db := testutil.MustOpenTestDB(t)
	tokens, err := auth.NewTokenService("test-secret", "medvault", time.Hour)
	require.NoError(t, err)
	svc, err := NewSessionService(db, tokens)
	require.NoError(t, err)
	return svc, tokens, db
}

func createLoginUser(t *testing.T, db *gorm.DB, email, password string, status models.VerificationStatus) models.User {
	t.Helper()
	hashed, err := crypto.HashPassword(password)
	require.NoError(t, err)
	user := models.User{Name: "Asha Rao", Email: email, Password: hashed, Role: models.RoleDoctor, Status: status}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestLoginSuccess(t *testing.T) {
	svc, tokens, db := newSessionService(t)
	user := createLoginUser(t, db, "asha@example.com", "secret123", models.StatusActive)

	result, err := svc.Login(context.Background(), "asha@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.UserID)
	assert.Equal(t, models.RoleDoctor, result.Role)

	id, err := tokens.Decode(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, models.RoleDoctor, id.Role)
	assert.False(t, id.Expired)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newSessionService(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, db := newSessionService(t)
	createLoginUser(t, db, "asha@example.com", "secret123", models.StatusActive)

	_, err := svc.Login(context.Background(), "asha@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginUnsetCredential(t *testing.T) {
	svc, _, db := newSessionService(t)
	user := models.User{Name: "No Password", Email: "nopass@example.com", Role: models.RolePatient, Status: models.StatusActive}
	require.NoError(t, db.Create(&user).Error)

	_, err := svc.Login(context.Background(), "nopass@example.com", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginPendingAccountReportsNotVerified(t *testing.T) {
	svc, _, db := newSessionService(t)
	createLoginUser(t, db, "asha@example.com", "secret123", models.StatusPending)

	// Correct password on a pending account is a verification failure, not a
	// credential failure.
	_, err := svc.Login(context.Background(), "asha@example.com", "secret123")
	assert.ErrorIs(t, err, ErrAccountNotVerified)

	_, err = svc.Login(context.Background(), "asha@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}
