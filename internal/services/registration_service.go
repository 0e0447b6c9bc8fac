package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/medvault/medvault/internal/models"
	"github.com/medvault/medvault/pkg/crypto"
	"github.com/medvault/medvault/pkg/logger"
	"github.com/medvault/medvault/pkg/metrics"
)

const tempPasswordBytes = 9

// ChallengeReceipt is returned from a successful OTP issuance.
type ChallengeReceipt struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
}

// ProfileDetails is the closed set of role-specific profile payloads accepted
// by CompleteProfile. Exactly one variant exists per role.
type ProfileDetails interface {
	role() models.Role
}

// PatientDetails completes a PATIENT profile.
type PatientDetails struct {
	DateOfBirth time.Time
	Gender      string
	BloodGroup  string
	Phone       string
	Address     string
	City        string
	State       string
	Country     string
	Pincode     string
	IDProofPath string
}

func (PatientDetails) role() models.Role { return models.RolePatient }

// DoctorDetails completes a DOCTOR profile.
type DoctorDetails struct {
	DateOfBirth               time.Time
	Gender                    string
	ProfilePhotoPath          string
	MedicalRegistrationNumber string
	LicensingAuthority        string
	Specialization            string
	Qualification             string
	Experience                int
	Phone                     string
	ClinicHospitalName        string
	City                      string
	State                     string
	Country                   string
	Pincode                   string
	MedicalLicensePath        string
	DegreeCertificatesPath    string
}

func (DoctorDetails) role() models.Role { return models.RoleDoctor }

// AdminDetails completes an ADMIN profile.
type AdminDetails struct {
	Phone       string
	Designation string
	Department  string
	ProofURL    string
}

func (AdminDetails) role() models.Role { return models.RoleAdmin }

// RegistrationService drives OTP-gated onboarding: challenge issuance and
// verification, role profile completion, and admin invitations.
type RegistrationService struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
	log      *zap.Logger
}

// NewRegistrationService builds a RegistrationService.
func NewRegistrationService(db *gorm.DB, notifier Notifier) (*RegistrationService, error) {
	if db == nil {
		return nil, errors.New("registration service requires a database handle")
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &RegistrationService{
		db:       db,
		notifier: notifier,
		now:      time.Now,
		log:      logger.WithModule("registration"),
	}, nil
}

// WithClock overrides the time source. Used by tests.
func (s *RegistrationService) WithClock(now func() time.Time) *RegistrationService {
	s.now = now
	return s
}

// IssueChallenge starts (or restarts) registration for the given email and
// role. A fresh account is created in PENDING state with no credential. If the
// email already belongs to a registration that never completed (same role,
// still PENDING, no credential set) the call is treated as a code re-request;
// any other existing account fails with ErrDuplicateEmail. Prior unused
// challenges for the (user, role) pair are removed before the new code is
// stored, so at most one unused challenge exists per pair.
func (s *RegistrationService) IssueChallenge(ctx context.Context, name, email, role string) (ChallengeReceipt, error) {
	ctx = ensureContext(ctx)

	parsedRole, ok := models.ParseRole(role)
	if !ok {
		return ChallengeReceipt{}, ErrInvalidRole
	}

	code, err := randomOtpCode()
	if err != nil {
		return ChallengeReceipt{}, err
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{
				Name:   name,
				Email:  email,
				Role:   parsedRole,
				Status: models.StatusPending,
			}
			if err := tx.Create(&user).Error; err != nil {
				if isUniqueConstraintError(err) {
					return ErrDuplicateEmail
				}
				return fmt.Errorf("create pending user: %w", err)
			}
		case err != nil:
			return fmt.Errorf("look up user by email: %w", err)
		default:
			if user.Role != parsedRole || user.Status != models.StatusPending || user.Password != "" {
				return ErrDuplicateEmail
			}
		}

		if err := tx.Where("user_id = ? AND role = ? AND used = ?", user.ID, parsedRole, false).
			Delete(&models.OtpChallenge{}).Error; err != nil {
			return fmt.Errorf("invalidate prior challenges: %w", err)
		}

		now := s.now()
		challenge := models.OtpChallenge{
			UserID:    user.ID,
			Role:      parsedRole,
			Email:     email,
			Code:      code,
			ExpiresAt: now.Add(models.OtpChallengeTTL),
			CreatedAt: now,
		}
		if err := tx.Create(&challenge).Error; err != nil {
			return fmt.Errorf("store otp challenge: %w", err)
		}
		return nil
	})
	if err != nil {
		return ChallengeReceipt{}, err
	}

	metrics.OtpChallenges.WithLabelValues("issued").Inc()
	s.notifier.OTPIssued(email, user.Name, code)

	return ChallengeReceipt{UserID: user.ID, Role: parsedRole}, nil
}

// VerifyChallenge consumes the unused challenge for (userID, role). The
// used-flag flip is a conditional update so two racing verifications cannot
// both succeed.
func (s *RegistrationService) VerifyChallenge(ctx context.Context, userID, role, code string) error {
	ctx = ensureContext(ctx)

	parsedRole, ok := models.ParseRole(role)
	if !ok {
		return ErrInvalidRole
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var challenge models.OtpChallenge
		err := tx.Where("user_id = ? AND role = ? AND used = ?", userID, parsedRole, false).
			Order("created_at DESC").
			First(&challenge).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrOtpInvalidOrExpired
		case err != nil:
			return fmt.Errorf("load otp challenge: %w", err)
		}

		if challenge.Expired(s.now()) || challenge.Code != code {
			return ErrOtpInvalidOrExpired
		}

		res := tx.Model(&models.OtpChallenge{}).
			Where("id = ? AND used = ?", challenge.ID, false).
			Update("used", true)
		if res.Error != nil {
			return fmt.Errorf("consume otp challenge: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrOtpInvalidOrExpired
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrOtpInvalidOrExpired) {
			metrics.OtpChallenges.WithLabelValues("rejected").Inc()
		}
		return err
	}

	metrics.OtpChallenges.WithLabelValues("verified").Inc()
	return nil
}

// CompleteProfile sets the account credential and upserts the role profile in
// one transaction. The account and its profile stay PENDING; activation only
// happens through an admin decision.
func (s *RegistrationService) CompleteProfile(ctx context.Context, userID, password string, details ProfileDetails) error {
	ctx = ensureContext(ctx)

	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("id = ?", userID).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrUserNotFound
		case err != nil:
			return fmt.Errorf("load user: %w", err)
		}

		if user.Role != details.role() {
			return ErrRoleMismatch
		}

		if err := tx.Model(&user).Update("password", hashed).Error; err != nil {
			return fmt.Errorf("set credential: %w", err)
		}

		switch d := details.(type) {
		case PatientDetails:
			return upsertPatient(tx, user.ID, d)
		case DoctorDetails:
			return upsertDoctor(tx, user.ID, d)
		case AdminDetails:
			return upsertAdmin(tx, user.ID, d)
		default:
			return fmt.Errorf("unsupported profile details %T", details)
		}
	})
}

// RegisterAdmin creates an invited ADMIN account with a temporary password
// and a PENDING admin profile, then emails the credentials. The invitee still
// has to be approved through the succession chain before logging in.
func (s *RegistrationService) RegisterAdmin(ctx context.Context, fullName, email string) (string, error) {
	ctx = ensureContext(ctx)

	tempPassword, err := crypto.GenerateToken(tempPasswordBytes)
	if err != nil {
		return "", fmt.Errorf("generate temporary password: %w", err)
	}
	hashed, err := crypto.HashPassword(tempPassword)
	if err != nil {
		return "", fmt.Errorf("hash temporary password: %w", err)
	}

	user := models.User{
		Name:     fullName,
		Email:    email,
		Password: hashed,
		Role:     models.RoleAdmin,
		Status:   models.StatusPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return ErrDuplicateEmail
		}

		if err := tx.Create(&user).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("create admin user: %w", err)
		}

		admin := models.Admin{
			ID:                 user.ID,
			VerificationStatus: models.StatusPending,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("create admin profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.log.Info("admin invitation created",
		zap.String("user_id", user.ID),
		zap.String("email", email))
	s.notifier.AdminInvited(email, fullName, tempPassword)

	return user.ID, nil
}

func upsertPatient(tx *gorm.DB, userID string, d PatientDetails) error {
	var patient models.Patient
	err := tx.Where("id = ?", userID).First(&patient).Error
	isNew := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !isNew {
		return fmt.Errorf("load patient profile: %w", err)
	}

	patient.ID = userID
	patient.DateOfBirth = dateOf(d.DateOfBirth)
	patient.Gender = d.Gender
	patient.BloodGroup = d.BloodGroup
	patient.Phone = d.Phone
	patient.Address = d.Address
	patient.City = d.City
	patient.State = d.State
	patient.Country = d.Country
	patient.Pincode = d.Pincode
	if d.IDProofPath != "" {
		patient.IDProofPath = d.IDProofPath
	}

	if isNew {
		if err := tx.Create(&patient).Error; err != nil {
			return fmt.Errorf("create patient profile: %w", err)
		}
		return nil
	}
	if err := tx.Save(&patient).Error; err != nil {
		return fmt.Errorf("update patient profile: %w", err)
	}
	return nil
}

func upsertDoctor(tx *gorm.DB, userID string, d DoctorDetails) error {
	var doctor models.Doctor
	err := tx.Where("id = ?", userID).First(&doctor).Error
	isNew := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !isNew {
		return fmt.Errorf("load doctor profile: %w", err)
	}

	doctor.ID = userID
	doctor.DateOfBirth = dateOf(d.DateOfBirth)
	doctor.Gender = d.Gender
	doctor.MedicalRegistrationNumber = d.MedicalRegistrationNumber
	doctor.LicensingAuthority = d.LicensingAuthority
	doctor.Specialization = d.Specialization
	doctor.Qualification = d.Qualification
	doctor.Experience = d.Experience
	doctor.Phone = d.Phone
	doctor.ClinicHospitalName = d.ClinicHospitalName
	doctor.City = d.City
	doctor.State = d.State
	doctor.Country = d.Country
	doctor.Pincode = d.Pincode
	if d.ProfilePhotoPath != "" {
		doctor.ProfilePhotoPath = d.ProfilePhotoPath
	}
	if d.MedicalLicensePath != "" {
		doctor.MedicalLicensePath = d.MedicalLicensePath
	}
	if d.DegreeCertificatesPath != "" {
		doctor.DegreeCertificatesPath = d.DegreeCertificatesPath
	}

	if isNew {
		if err := tx.Create(&doctor).Error; err != nil {
			return fmt.Errorf("create doctor profile: %w", err)
		}
		return nil
	}
	if err := tx.Save(&doctor).Error; err != nil {
		return fmt.Errorf("update doctor profile: %w", err)
	}
	return nil
}

func upsertAdmin(tx *gorm.DB, userID string, d AdminDetails) error {
	var admin models.Admin
	err := tx.Where("id = ?", userID).First(&admin).Error
	isNew := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !isNew {
		return fmt.Errorf("load admin profile: %w", err)
	}

	admin.ID = userID
	admin.Phone = d.Phone
	admin.Designation = d.Designation
	admin.Department = d.Department
	if d.ProofURL != "" {
		admin.ProofURL = d.ProofURL
	}

	if isNew {
		admin.VerificationStatus = models.StatusPending
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("create admin profile: %w", err)
		}
		return nil
	}
	if err := tx.Save(&admin).Error; err != nil {
		return fmt.Errorf("update admin profile: %w", err)
	}
	return nil
}
