package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/medvault/medvault/internal/database/testutil"
	"github.com/medvault/medvault/internal/models"
	"github.com/medvault/medvault/pkg/crypto"
)

func newRegistrationService(t *testing.T) (*RegistrationService, *gorm.DB) {
	t.Helper()
	db := testutil.MustOpenTestDB(t)
	svc, err := NewRegistrationService(db, NopNotifier{})
	require.NoError(t, err)
	return svc, db
}

func unusedChallenges(t *testing.T, db *gorm.DB, userID string, role models.Role) []models.OtpChallenge {
	t.Helper()
	var challenges []models.OtpChallenge
	require.NoError(t, db.Where("user_id = ? AND role = ? AND used = ?", userID, role, false).
		Find(&challenges).Error)
	return challenges
}

func TestIssueChallengeCreatesPendingUser(t *testing.T) {
	svc, db := newRegistrationService(t)

	receipt, err := svc.IssueChallenge(context.Background(), "Asha Rao", "asha@example.com", "patient")
	require.NoError(t, err)
	assert.Equal(t, models.RolePatient, receipt.Role)
	require.NotEmpty(t, receipt.UserID)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", receipt.UserID).Error)
	assert.Equal(t, models.StatusPending, user.Status)
	assert.Empty(t, user.Password)

	challenges := unusedChallenges(t, db, receipt.UserID, models.RolePatient)
	require.Len(t, challenges, 1)
	assert.Len(t, challenges[0].Code, 5)
	assert.WithinDuration(t, time.Now().Add(models.OtpChallengeTTL), challenges[0].ExpiresAt, time.Minute)
}

func TestIssueChallengeRejectsUnknownRole(t *testing.T) {
	svc, _ := newRegistrationService(t)

	_, err := svc.IssueChallenge(context.Background(), "Asha Rao", "asha@example.com", "AUDITOR")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestIssueChallengeDuplicateEmail(t *testing.T) {
	svc, db := newRegistrationService(t)

	hashed, err := crypto.HashPassword("secret123")
	require.NoError(t, err)
	existing := models.User{Name: "Asha Rao", Email: "asha@example.com", Password: hashed, Role: models.RolePatient, Status: models.StatusActive}
	require.NoError(t, db.Create(&existing).Error)

	_, err = svc.IssueChallenge(context.Background(), "Someone Else", "asha@example.com", "PATIENT")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = svc.IssueChallenge(context.Background(), "Someone Else", "asha@example.com", "DOCTOR")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestIssueChallengeReRequestInvalidatesPriorCode(t *testing.T) {
	svc, db := newRegistrationService(t)
	ctx := context.Background()

	first, err := svc.IssueChallenge(ctx, "Asha Rao", "asha@example.com", "PATIENT")
	require.NoError(t, err)
	firstChallenges := unusedChallenges(t, db, first.UserID, models.RolePatient)
	require.Len(t, firstChallenges, 1)
	firstCode := firstChallenges[0].Code

	second, err := svc.IssueChallenge(ctx, "Asha Rao", "asha@example.com", "PATIENT")
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)

	challenges := unusedChallenges(t, db, first.UserID, models.RolePatient)
	require.Len(t, challenges, 1)
	secondCode := challenges[0].Code

	// The superseded code no longer verifies, the fresh one does.
	if firstCode != secondCode {
		err = svc.VerifyChallenge(ctx, first.UserID, "PATIENT", firstCode)
		assert.ErrorIs(t, err, ErrOtpInvalidOrExpired)
	}
	require.NoError(t, svc.VerifyChallenge(ctx, first.UserID, "PATIENT", secondCode))
}

func TestVerifyChallengeConsumesExactlyOnce(t *testing.T) {
	svc, db := newRegistrationService(t)
	ctx := context.Background()

	receipt, err := svc.IssueChallenge(ctx, "Asha Rao", "asha@example.com", "PATIENT")
	require.NoError(t, err)
	code := unusedChallenges(t, db, receipt.UserID, models.RolePatient)[0].Code

	require.NoError(t, svc.VerifyChallenge(ctx, receipt.UserID, "PATIENT", code))

	err = svc.VerifyChallenge(ctx, receipt.UserID, "PATIENT", code)
	assert.ErrorIs(t, err, ErrOtpInvalidOrExpired)
}

func TestVerifyChallengeWrongCode(t *testing.T) {
	svc, db := newRegistrationService(t)
	ctx := context.Background()

	receipt, err := svc.IssueChallenge(ctx, "Asha Rao", "asha@example.com", "PATIENT")
	require.NoError(t, err)
	code := unusedChallenges(t, db, receipt.UserID, models.RolePatient)[0].Code
	wrong := "00000"
	if wrong == code {
		wrong = "00001"
	}

	err = svc.VerifyChallenge(ctx, receipt.UserID, "PATIENT", wrong)
	assert.ErrorIs(t, err, ErrOtpInvalidOrExpired)

	// The challenge survives a failed attempt.
	require.NoError(t, svc.VerifyChallenge(ctx, receipt.UserID, "PATIENT", code))
}

func TestVerifyChallengeExpired(t *testing.T) {
	svc, db := newRegistrationService(t)
	ctx := context.Background()

	issuedAt := time.Now().Add(-20 * time.Minute)
	svc.WithClock(func() time.Time { return issuedAt })
	receipt, err := svc.IssueChallenge(ctx, "Asha Rao", "asha@example.com", "PATIENT")
	require.NoError(t, err)
	code := unusedChallenges(t, db, receipt.UserID, models.RolePatient)[0].Code

	svc.WithClock(time.Now)
	err = svc.VerifyChallenge(ctx, receipt.UserID, "PATIENT", code)
	assert.ErrorIs(t, err, ErrOtpInvalidOrExpired)
}

func TestVerifyChallengeUnknownUser(t *testing.T) {
	svc, _ := newRegistrationService(t)

	err := svc.VerifyChallenge(context.Background(), "missing-id", "PATIENT", "12345")
	assert.ErrorIs(t, err, ErrOtpInvalidOrExpired)
}

func TestCompleteProfilePatient(t *testing.T) {
	svc, db := newRegistrationService(t)
	ctx := context.Background()

	receipt, err := svc.IssueChallenge(ctx, "Asha Rao", "asha@example.com", "PATIENT")
	require.NoError(t, err)

	dob := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	details := PatientDetails{
		DateOfBirth: dob,
		Gender:      "F",
		BloodGroup:  "O+",
		Phone:       "9999999999",
		City:        "Pune",
		IDProofPath: "/files/patient-id-proof/abc_id.pdf",
	}
	require.NoError(t, svc.CompleteProfile(ctx, receipt.UserID, "secret123", details))

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", receipt.UserID).Error)
	assert.True(t, crypto.VerifyPassword(user.Password, "secret123"))
	assert.Equal(t, models.StatusPending, user.Status)

	var patient models.Patient
	require.NoError(t, db.First(&patient, "id = ?", receipt.UserID).Error)
	assert.Equal(t, "O+", patient.BloodGroup)
	assert.Equal(t, "/files/patient-id-proof/abc_id.pdf", patient.IDProofPath)

	// Resubmission updates in place, keeping the saved file reference.
	details.City = "Mumbai"
	details.IDProofPath = ""
	require.NoError(t, svc.CompleteProfile(ctx, receipt.UserID, "secret456", details))

	require.NoError(t, db.First(&patient, "id = ?", receipt.UserID).Error)
	assert.Equal(t, "Mumbai", patient.City)
	assert.Equal(t, "/files/patient-id-proof/abc_id.pdf", patient.IDProofPath)

	var count int64
	require.NoError(t, db.Model(&models.Patient{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCompleteProfileRoleMismatch(t *testing.T) {
	svc, _ := newRegistrationService(t)
	ctx := context.Background()

	receipt, err := svc.IssueChallenge(ctx, "Asha Rao", "asha@example.com", "PATIENT")
	require.NoError(t, err)

	err = svc.CompleteProfile(ctx, receipt.UserID, "secret123", DoctorDetails{})
	assert.ErrorIs(t, err, ErrRoleMismatch)
}

func TestCompleteProfileUnknownUser(t *testing.T) {
	svc, _ := newRegistrationService(t)

	err := svc.CompleteProfile(context.Background(), "missing-id", "secret123", PatientDetails{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRegisterAdminInvitation(t *testing.T) {
	svc, db := newRegistrationService(t)

	userID, err := svc.RegisterAdmin(context.Background(), "New Admin", "newadmin@example.com")
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", userID).Error)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, models.StatusPending, user.Status)
	assert.NotEmpty(t, user.Password)

	var admin models.Admin
	require.NoError(t, db.First(&admin, "id = ?", userID).Error)
	assert.Equal(t, models.StatusPending, admin.VerificationStatus)
	assert.False(t, admin.IsSuperAdmin)

	_, err = svc.RegisterAdmin(context.Background(), "Other Admin", "newadmin@example.com")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}
