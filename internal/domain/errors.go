package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors - match with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ConflictError represents a name collision inside a uniqueness scope.
// ResourceID points at the existing resource so callers can surface it.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // folder, website, tag
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NotFound wraps ErrNotFound with the resource kind and id.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// Forbidden wraps ErrForbidden for a resource the acting user does not own.
func Forbidden(kind, id string) error {
	return fmt.Errorf("%s %s belongs to another user: %w", kind, id, ErrForbidden)
}

// Invalid wraps ErrValidation with a formatted message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
