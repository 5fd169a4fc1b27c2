package model

import "github.com/festy23/stagegate/internal/apperr"

var (
	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = apperr.NotFound("user not found")
	// ErrInvalidUserID indicates that the provided user ID is invalid (e.g., empty).
	ErrInvalidUserID = apperr.Validation("user_id must be between 1 and 255 characters")
	// ErrInvalidName indicates a missing name.
	ErrInvalidName = apperr.Validation("name is required")
	// ErrInvalidRole indicates an unknown role.
	ErrInvalidRole = apperr.Validation("role must be one of ADMIN, GATEKEEPER, PROJECT_LEAD, REVIEWER, MEMBER")
	// ErrInvalidIsActive indicates that is_active field is missing or invalid.
	ErrInvalidIsActive = apperr.Validation("is_active field is required")
	// ErrAdminRequired indicates a directory change by a non-admin.
	ErrAdminRequired = apperr.Authorization("only an admin may change the user directory")
)
