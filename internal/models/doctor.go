package models

import (
	"time"

	"gorm.io/datatypes"
)

// Doctor holds the doctor role profile, keyed by the owning user's id.
type Doctor struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	DateOfBirth               datatypes.Date `json:"date_of_birth"`
	Gender                    string         `json:"gender"`
	ProfilePhotoPath          string         `json:"profile_photo_path"`
	MedicalRegistrationNumber string         `json:"medical_registration_number"`
	LicensingAuthority        string         `json:"licensing_authority"`
	Specialization            string         `json:"specialization"`
	Qualification             string         `json:"qualification"`
	Experience                int            `json:"experience"`
	Phone                     string         `json:"phone"`
	ClinicHospitalName        string         `json:"clinic_hospital_name"`
	City                      string         `json:"city"`
	State                     string         `json:"state"`
	Country                   string         `json:"country"`
	Pincode                   string         `json:"pincode"`
	MedicalLicensePath        string         `json:"medical_license_path"`
	DegreeCertificatesPath    string         `json:"degree_certificates_path"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
