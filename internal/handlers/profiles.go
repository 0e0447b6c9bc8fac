package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medvault/medvault/internal/services"
	"github.com/medvault/medvault/internal/storage"
	apperrors "github.com/medvault/medvault/pkg/errors"
	"github.com/medvault/medvault/pkg/response"
)

const maxUploadBytes = 10 << 20 // 10 MiB per file

// ProfileHandler exposes the multipart profile-completion endpoints.
type ProfileHandler struct {
	registration *services.RegistrationService
	files        *storage.FileStore
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(registration *services.RegistrationService, files *storage.FileStore) *ProfileHandler {
	return &ProfileHandler{registration: registration, files: files}
}

// CompletePatientProfile handles PUT /api/profile/patient.
func (h *ProfileHandler) CompletePatientProfile(c *gin.Context) {
	userID, password, ok := h.requireIdentityFields(c)
	if !ok {
		return
	}

	dob, ok := h.parseDate(c, c.PostForm("date_of_birth"))
	if !ok {
		return
	}

	idProof, ok := h.saveUpload(c, "id_proof", storage.CategoryPatientIDProof)
	if !ok {
		return
	}

	details := services.PatientDetails{
		DateOfBirth: dob,
		Gender:      c.PostForm("gender"),
		BloodGroup:  c.PostForm("blood_group"),
		Phone:       c.PostForm("phone"),
		Address:     c.PostForm("address"),
		City:        c.PostForm("city"),
		State:       c.PostForm("state"),
		Country:     c.PostForm("country"),
		Pincode:     c.PostForm("pincode"),
		IDProofPath: idProof,
	}

	if err := h.registration.CompleteProfile(c.Request.Context(), userID, password, details); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, true, "Patient profile completed.")
}

// CompleteDoctorProfile handles PUT /api/profile/doctor.
func (h *ProfileHandler) CompleteDoctorProfile(c *gin.Context) {
	userID, password, ok := h.requireIdentityFields(c)
	if !ok {
		return
	}

	dob, ok := h.parseDate(c, c.PostForm("date_of_birth"))
	if !ok {
		return
	}

	experience := 0
	if raw := c.PostForm("experience"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(c, apperrors.NewBadRequest("experience must be a non-negative number"))
			return
		}
		experience = parsed
	}

	photo, ok := h.saveUpload(c, "profile_photo", storage.CategoryDoctorCert)
	if !ok {
		return
	}
	license, ok := h.saveUpload(c, "medical_license", storage.CategoryDoctorCert)
	if !ok {
		return
	}
	degrees, ok := h.saveUpload(c, "degree_certificates", storage.CategoryDoctorCert)
	if !ok {
		return
	}

	details := services.DoctorDetails{
		DateOfBirth:               dob,
		Gender:                    c.PostForm("gender"),
		ProfilePhotoPath:          photo,
		MedicalRegistrationNumber: c.PostForm("medical_registration_number"),
		LicensingAuthority:        c.PostForm("licensing_authority"),
		Specialization:            c.PostForm("specialization"),
		Qualification:             c.PostForm("qualification"),
		Experience:                experience,
		Phone:                     c.PostForm("phone"),
		ClinicHospitalName:        c.PostForm("clinic_hospital_name"),
		City:                      c.PostForm("city"),
		State:                     c.PostForm("state"),
		Country:                   c.PostForm("country"),
		Pincode:                   c.PostForm("pincode"),
		MedicalLicensePath:        license,
		DegreeCertificatesPath:    degrees,
	}

	if err := h.registration.CompleteProfile(c.Request.Context(), userID, password, details); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, true, "Doctor profile completed.")
}

// CompleteAdminProfile handles PUT /api/admin/profile.
func (h *ProfileHandler) CompleteAdminProfile(c *gin.Context) {
	userID, password, ok := h.requireIdentityFields(c)
	if !ok {
		return
	}

	proof, ok := h.saveUpload(c, "proof", storage.CategoryAdminCert)
	if !ok {
		return
	}

	details := services.AdminDetails{
		Phone:       c.PostForm("phone"),
		Designation: c.PostForm("designation"),
		Department:  c.PostForm("department"),
		ProofURL:    proof,
	}

	if err := h.registration.CompleteProfile(c.Request.Context(), userID, password, details); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, true, "Admin profile completed.")
}

func (h *ProfileHandler) requireIdentityFields(c *gin.Context) (userID, password string, ok bool) {
	userID = strings.TrimSpace(c.PostForm("user_id"))
	password = c.PostForm("password")
	if userID == "" || password == "" {
		response.Error(c, apperrors.NewBadRequest("user_id and password are required"))
		return "", "", false
	}
	return userID, password, true
}

func (h *ProfileHandler) parseDate(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		response.Error(c, apperrors.NewBadRequest("date_of_birth must be YYYY-MM-DD"))
		return time.Time{}, false
	}
	return parsed, true
}

// saveUpload stores an optional multipart file and returns its reference. A
// missing file yields an empty reference; an invalid one writes the error
// response and returns ok=false.
func (h *ProfileHandler) saveUpload(c *gin.Context, field, category string) (string, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", true
		}
		response.Error(c, apperrors.NewBadRequest("invalid multipart payload"))
		return "", false
	}

	if header.Size > maxUploadBytes {
		response.Error(c, apperrors.NewBadRequest("uploaded file exceeds the size limit"))
		return "", false
	}

	contentType := header.Header.Get("Content-Type")
	if contentType != "application/pdf" && !strings.HasPrefix(contentType, "image/") {
		response.Error(c, apperrors.NewBadRequest("only PDF and image uploads are accepted"))
		return "", false
	}

	f, err := header.Open()
	if err != nil {
		response.Error(c, storage.ErrStorageFailure.WithInternal(err))
		return "", false
	}
	defer f.Close()

	ref, err := h.files.Save(f, category, header.Filename)
	if err != nil {
		response.Error(c, err)
		return "", false
	}
	return ref, true
}
