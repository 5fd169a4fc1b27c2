package model

import "github.com/festy23/stagegate/internal/apperr"

var (
	// ErrRedFlagNotFound indicates that the red flag does not exist.
	ErrRedFlagNotFound = apperr.NotFound("red flag not found")
	// ErrInvalidTitle indicates a missing or oversized title.
	ErrInvalidTitle = apperr.Validation("title must be between 1 and 255 characters")
	// ErrInvalidSeverity indicates an unknown severity.
	ErrInvalidSeverity = apperr.Validation("severity must be one of LOW, MEDIUM, HIGH, CRITICAL")
	// ErrNotProjectParticipant indicates a principal outside the project raising a flag.
	ErrNotProjectParticipant = apperr.Authorization("only project participants, admins or gatekeepers may raise red flags")
	// ErrResolveForbidden indicates a non gate authority resolving a flag.
	ErrResolveForbidden = apperr.Authorization("only an admin or gatekeeper may resolve red flags")
	// ErrAlreadyResolved indicates the flag is already resolved.
	ErrAlreadyResolved = apperr.Conflict("red flag is already resolved")
	// ErrProjectClosed indicates a completed or terminated project.
	ErrProjectClosed = apperr.Precondition("project is completed or terminated")
)
