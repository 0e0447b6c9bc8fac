package services

import (
	"net/http"

	apperrors "github.com/medvault/medvault/pkg/errors"
)

// Service-layer failures. Each maps to exactly one HTTP status at the
// transport boundary.
var (
	ErrDuplicateEmail = apperrors.New(
		"DUPLICATE_EMAIL",
		"An account with this email already exists.",
		http.StatusConflict,
	)

	ErrInvalidRole = apperrors.New(
		"INVALID_ROLE",
		"Role must be one of PATIENT, DOCTOR or ADMIN.",
		http.StatusBadRequest,
	)

	ErrUserNotFound = apperrors.New(
		"USER_NOT_FOUND",
		"User not found.",
		http.StatusNotFound,
	)

	ErrAdminNotFound = apperrors.New(
		"ADMIN_NOT_FOUND",
		"Admin profile not found.",
		http.StatusNotFound,
	)

	ErrNoActiveAdmins = apperrors.New(
		"NO_ACTIVE_ADMINS",
		"No active admins in the system.",
		http.StatusNotFound,
	)

	ErrOtpInvalidOrExpired = apperrors.New(
		"OTP_INVALID_OR_EXPIRED",
		"Invalid or expired verification code.",
		http.StatusBadRequest,
	)

	ErrRoleMismatch = apperrors.New(
		"ROLE_MISMATCH",
		"Account role does not match the requested profile.",
		http.StatusBadRequest,
	)

	ErrAdminNotActive = apperrors.New(
		"ADMIN_NOT_ACTIVE",
		"Your admin account has not been verified yet.",
		http.StatusForbidden,
	)

	ErrNotLatestAdmin = apperrors.New(
		"NOT_LATEST_ADMIN",
		"Only the latest verified admin can perform this action.",
		http.StatusUnauthorized,
	)

	ErrAdminNotPending = apperrors.New(
		"ADMIN_NOT_PENDING",
		"Admin is not pending verification.",
		http.StatusConflict,
	)

	ErrAlreadyVerified = apperrors.New(
		"ALREADY_VERIFIED",
		"User is already verified.",
		http.StatusConflict,
	)

	ErrAccountNotVerified = apperrors.New(
		"ACCOUNT_NOT_VERIFIED",
		"Your account is pending verification.",
		http.StatusForbidden,
	)
)
