package errors

import (
	"errors"
	"fmt"
)

// Application error kinds. Handlers map these to HTTP status codes and
// envelope error codes.

var (
	// ErrValidation indicates malformed or out-of-range input
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized indicates a missing or wrong bearer token
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMissingHeaders indicates a webhook without its signature headers
	ErrMissingHeaders = errors.New("missing required headers")

	// ErrInvalidSignature indicates a webhook signature mismatch
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrPayloadTooLarge indicates a request body over the configured limit
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")
)

// FieldError describes one violated field constraint
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated field of a rejected input.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields []FieldError
	cause  error
}

// NewValidationError creates a validation error from field violations
func NewValidationError(fields []FieldError, cause error) *ValidationError {
	return &ValidationError{Fields: fields, cause: cause}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.cause != nil {
			return fmt.Sprintf("%s: %v", ErrValidation, e.cause)
		}
		return ErrValidation.Error()
	}
	msg := ErrValidation.Error() + ":"
	for i, f := range e.Fields {
		if i > 0 {
			msg += ";"
		}
		msg += " " + f.Message
	}
	return msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

// InvalidInputError creates a validation error for a single field
func InvalidInputError(field, reason string) error {
	return NewValidationError([]FieldError{{Field: field, Message: reason}}, nil)
}

// UnauthorizedError creates an unauthorized error with context
func UnauthorizedError(reason string) error {
	if reason != "" {
		return fmt.Errorf("%s: %w", reason, ErrUnauthorized)
	}
	return ErrUnauthorized
}

// InternalError wraps err as an internal error with context
func InternalError(msg string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", msg, ErrInternal)
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrInternal, err)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
