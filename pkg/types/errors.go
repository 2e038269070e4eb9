package types

import "errors"

// ValidationError represents an error that occurs during validation.
type ValidationError struct {
	Message string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		Message: message,
	}
}

// IsValidationError checks if an error is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

