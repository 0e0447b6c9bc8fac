package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role identifies the kind of account a user registered for.
// It is fixed at OTP issuance and never changes afterwards.
type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole normalises a role string case-insensitively.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RolePatient:
		return RolePatient, true
	case RoleDoctor:
		return RoleDoctor, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// VerificationStatus is the two-state account lifecycle. Accounts are created
// PENDING and only become ACTIVE through an admin decision.
type VerificationStatus string

const (
	StatusPending VerificationStatus = "PENDING"
	StatusActive  VerificationStatus = "ACTIVE"
)

// User is the identity record shared by all roles. The password hash stays
// empty until the user completes their role profile.
type User struct {
	ID       string             `gorm:"primaryKey;type:uuid" json:"id"`
	Name     string             `gorm:"not null" json:"name"`
	Email    string             `gorm:"uniqueIndex;not null" json:"email"`
	Password string             `json:"-"`
	Role     Role               `gorm:"not null" json:"role"`
	Status   VerificationStatus `gorm:"not null;default:PENDING" json:"status"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Role profiles share the user's primary key. Declaring the relations
	// here puts the foreign key on each profile table, so profiles cascade
	// away with the user while a user row can exist before any profile does.
	Patient *Patient `gorm:"foreignKey:ID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Doctor  *Doctor  `gorm:"foreignKey:ID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Admin   *Admin   `gorm:"foreignKey:ID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
