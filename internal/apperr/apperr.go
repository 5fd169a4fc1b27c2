// Package apperr defines the error taxonomy shared by every module.
//
// Module errors are built from the constructors below so handlers can map
// them to HTTP statuses by kind instead of by identity:
//
//	var ErrSessionNotFound = apperr.NotFound("review session not found")
//	errors.Is(ErrSessionNotFound, apperr.ErrNotFound) // true
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation and transport mapping.
type Kind string

const (
	// KindValidation is malformed input. Never retried.
	KindValidation Kind = "VALIDATION"
	// KindUnauthenticated means no principal could be established.
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	// KindAuthorization means the principal lacks the role or identity match.
	KindAuthorization Kind = "FORBIDDEN"
	// KindConflict violates a uniqueness or state invariant.
	KindConflict Kind = "CONFLICT"
	// KindPrecondition is an operation attempted in the wrong state.
	KindPrecondition Kind = "PRECONDITION_FAILED"
	// KindNotFound references a missing entity.
	KindNotFound Kind = "NOT_FOUND"
	// KindDependency is a failing side-effect channel (notifications).
	KindDependency Kind = "DEPENDENCY"
)

// Category sentinels usable with errors.Is.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrAuthorization   = &Error{Kind: KindAuthorization}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrPrecondition    = &Error{Kind: KindPrecondition}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrDependency      = &Error{Kind: KindDependency}
)

// Error is a categorized application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Message == "" && e.Err == nil:
		return string(e.Kind)
	case e.Err == nil:
		return e.Message
	case e.Message == "":
		return e.Err.Error()
	default:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind when the target is a bare category
// sentinel, and otherwise requires identity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" && t.Err == nil {
		return e.Kind == t.Kind
	}
	return e == t
}

// Validation creates a validation error.
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// Validationf creates a formatted validation error.
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// Unauthenticated creates an unauthenticated error.
func Unauthenticated(msg string) *Error { return &Error{Kind: KindUnauthenticated, Message: msg} }

// Authorization creates an authorization error.
func Authorization(msg string) *Error { return &Error{Kind: KindAuthorization, Message: msg} }

// Conflict creates a conflict error.
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

// Precondition creates a precondition error.
func Precondition(msg string) *Error { return &Error{Kind: KindPrecondition, Message: msg} }

// NotFound creates a not-found error.
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// Dependency wraps a side-effect failure.
func Dependency(msg string, err error) *Error {
	return &Error{Kind: KindDependency, Message: msg, Err: err}
}

// Wrap attaches context to a categorized error while keeping its kind, so
// errors.Is still matches both the module sentinel and the category.
func Wrap(base *Error, detail string) error {
	return fmt.Errorf("%w: %s", base, detail)
}

// KindOf returns the kind of the first *Error in the chain, or "" for
// uncategorized errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
