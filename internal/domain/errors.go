package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrUnknownCollection signals a collection name outside the catalog.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrInvalidRecord signals a record that failed validation.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInvalidImport signals an unusable CSV upload.
	ErrInvalidImport = errors.New("invalid import")
	// ErrInvalidTransition signals a disallowed inquiry status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError wraps ErrInvalidRecord with the offending field names.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidRecord.Error()
	}
	return fmt.Sprintf("%s: check %s", ErrInvalidRecord.Error(), strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRecord }

// NewValidationError creates a validation error naming the failed fields.
func NewValidationError(fields ...string) error {
	return &ValidationError{Fields: fields}
}
