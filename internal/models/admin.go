package models

import "time"

// Admin holds the admin role profile, keyed by the owning user's id.
//
// VerificationStatus is tracked separately from the owning user's status but
// kept in sync when an approval commits. Denied admins are soft-deleted via
// the Deleted flag; their status stays PENDING and the owning user record is
// left untouched.
type Admin struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	Phone       string `json:"phone"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
	ProofURL    string `json:"proof_url"`

	IsSuperAdmin       bool               `gorm:"default:false" json:"is_super_admin"`
	VerificationStatus VerificationStatus `gorm:"not null;default:PENDING" json:"verification_status"`
	ApprovedAt         *time.Time         `json:"approved_at"`
	ApprovedByAdminID  *string            `gorm:"type:uuid" json:"approved_by_admin_id"`
	Deleted            bool               `gorm:"not null;default:false" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
