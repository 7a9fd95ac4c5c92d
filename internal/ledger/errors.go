package ledger

import (
	"errors"
	"fmt"
)

// Error represents a rule violation detected by a ledger operation.
//
// Every Error is caller-correctable: nothing in this taxonomy is transient
// or retryable by the system itself. Store-level constraint violations from
// concurrent writers surface as ErrCodeConflict, never as an unclassified
// failure.
type Error struct {
	// Code identifies the violation category.
	Code ErrorCode

	// Message is a human-readable description naming the violated constraint.
	Message string
}

// ErrorCode categorizes ledger errors.
type ErrorCode string

const (
	// ErrCodeValidation indicates malformed input: score out of range,
	// note or reason too long, empty name.
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeNotFound indicates an unknown agent name or vouch id.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeConflict indicates the requested write collides with existing
	// state: duplicate agent name, duplicate flag.
	ErrCodeConflict ErrorCode = "CONFLICT"

	// ErrCodeSelfVouch indicates an agent tried to vouch for itself.
	// Reported distinctly from plain validation for clarity.
	ErrCodeSelfVouch ErrorCode = "SELF_VOUCH"

	// ErrCodeUnauthorized indicates a missing or non-resolving credential.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError creates an Error for malformed input.
func NewValidationError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError creates an Error for an unknown agent or vouch.
func NewNotFoundError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewConflictError creates an Error for a write that collides with
// existing state.
func NewConflictError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeConflict, Message: fmt.Sprintf(format, args...)}
}

// NewSelfVouchError creates an Error for a self-directed vouch.
func NewSelfVouchError() *Error {
	return &Error{Code: ErrCodeSelfVouch, Message: "an agent cannot vouch for itself"}
}

// NewUnauthorizedError creates an Error for a missing or invalid credential.
func NewUnauthorizedError() *Error {
	return &Error{Code: ErrCodeUnauthorized, Message: "missing or invalid API key"}
}

// CodeOf returns the ErrorCode of err, or "" if err is not a ledger Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// IsConflict returns true if the error is a conflict error.
func IsConflict(err error) bool { return CodeOf(err) == ErrCodeConflict }

// IsNotFound returns true if the error is a not-found error.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }
