package models

import (
	"time"

	"gorm.io/datatypes"
)

// Patient holds the patient role profile. It shares its primary key with the
// owning user record (one profile per identity).
type Patient struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	DateOfBirth datatypes.Date `json:"date_of_birth"`
	Gender      string         `json:"gender"`
	BloodGroup  string         `json:"blood_group"`
	Phone       string         `json:"phone"`
	Address     string         `json:"address"`
	City        string         `json:"city"`
	State       string         `json:"state"`
	Country     string         `json:"country"`
	Pincode     string         `json:"pincode"`
	IDProofPath string         `json:"id_proof_path"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
