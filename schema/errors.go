package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the description model.
var (
	// ErrNotFound indicates a lookup of a name absent from Descriptions.
	ErrNotFound = errors.New("forge: description not found")
	// ErrInvalidDescription indicates malformed description input.
	ErrInvalidDescription = errors.New("forge: invalid description")
)

// NotFoundError is returned when an entity or endpoint name is not declared.
type NotFoundError struct {
	Kind string // "entity" or "endpoint"
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("forge: %s %q not found", e.Kind, e.Name)
}

// Is reports whether the target matches the sentinel error for NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(kind, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name}
}

// ValidationError represents malformed description input detected when a
// Descriptions value is built.
type ValidationError struct {
	Kind    string // "entity", "endpoint" or "test"
	Name    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("forge: validation error")
	if e.Kind != "" {
		b.WriteString(" on ")
		b.WriteString(e.Kind)
	}
	if e.Name != "" {
		fmt.Fprintf(&b, " %q", e.Name)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidDescription
}

// NewValidationError creates a new ValidationError.
func NewValidationError(kind, name, message string) *ValidationError {
	return &ValidationError{Kind: kind, Name: name, Message: message}
}

// IsNotFoundError reports whether the error is a NotFoundError.
func IsNotFoundError(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidationError reports whether the error is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
