package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OtpChallengeTTL is how long an issued code stays valid.
const OtpChallengeTTL = 10 * time.Minute

// OtpChallenge is a single-use 5-digit code bound to a (user, role) pair.
// At most one unused challenge exists per pair; issuing a new one removes any
// prior unused challenge. Expired rows are rejected on verification and purged
// later by the maintenance cleaner.
type OtpChallenge struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;index:idx_otp_user_role;not null" json:"user_id"`
	Role   Role   `gorm:"index:idx_otp_user_role;not null" json:"role"`
	Email  string `gorm:"not null" json:"email"`
	Code   string `gorm:"size:5;not null" json:"-"`
	Used   bool   `gorm:"not null;default:false" json:"used"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (c *OtpChallenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Expired reports whether the challenge is past its expiry at the given instant.
func (c *OtpChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
