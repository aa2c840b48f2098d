package models

import (
	"net/http"

	apperrors "github.com/dentclinicai/dentclinicai-api/pkg/errors"
)

// Envelope error codes
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeMissingHeaders   = "MISSING_HEADERS"
	CodeInvalidSignature = "INVALID_SIGNATURE"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL_ERROR"
)

// Envelope is the uniform response wrapper of every API endpoint
type Envelope struct {
	OK    bool      `json:"ok"`
	Data  any       `json:"data,omitempty"`
	Error *APIError `json:"error,omitempty"`
}

// APIError is the error half of an Envelope
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success wraps data in a successful envelope
func Success(data any) Envelope {
	return Envelope{OK: true, Data: data}
}

// Failure builds an error envelope
func Failure(code, message string) Envelope {
	return Envelope{OK: false, Error: &APIError{Code: code, Message: message}}
}

// Messages returned to clients. Internal failures never expose details.
const (
	MessageValidation       = "Invalid request data"
	MessageUnauthorized     = "Invalid token"
	MessageMissingHeaders   = "Missing required headers"
	MessageInvalidSignature = "Invalid signature"
	MessagePayloadTooLarge  = "Request body too large"
	MessageRateLimited      = "Too many requests, please try again later"
	MessageNotFound         = "Not found"
	MessageInternal         = "Internal server error"
)

// FromError maps an application error to its HTTP status and envelope
func FromError(err error) (int, Envelope) {
	var verr *apperrors.ValidationError
	switch {
	case apperrors.As(err, &verr):
		env := Failure(CodeValidation, MessageValidation)
		if len(verr.Fields) > 0 {
			env.Error.Details = verr.Fields
		}
		return http.StatusBadRequest, env
	case apperrors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, Failure(CodeValidation, MessageValidation)
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, Failure(CodeUnauthorized, MessageUnauthorized)
	case apperrors.Is(err, apperrors.ErrMissingHeaders):
		return http.StatusBadRequest, Failure(CodeMissingHeaders, MessageMissingHeaders)
	case apperrors.Is(err, apperrors.ErrInvalidSignature):
		return http.StatusUnauthorized, Failure(CodeInvalidSignature, MessageInvalidSignature)
	case apperrors.Is(err, apperrors.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, Failure(CodePayloadTooLarge, MessagePayloadTooLarge)
	default:
		return http.StatusInternalServerError, Failure(CodeInternal, MessageInternal)
	}
}
