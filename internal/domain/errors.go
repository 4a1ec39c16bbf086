package domain

import "errors"

// ErrNotFound is returned (wrapped) by repositories when an entity does not exist
var ErrNotFound = errors.New("not found")

// ValidationError represents a malformed input rejected at ingestion,
// before any accounting fold or persistence takes place.
// It is distinct from internal failures so that adapters can surface it
// to the user as a bad request rather than a server error.
type ValidationError struct {
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
