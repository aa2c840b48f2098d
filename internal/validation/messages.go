package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/dentclinicai/dentclinicai-api/internal/models"
	apperrors "github.com/dentclinicai/dentclinicai-api/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// ParseValidationErrors converts validator errors to user-friendly format
func ParseValidationErrors(err error) []apperrors.FieldError {
	var fields []apperrors.FieldError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			fields = append(fields, apperrors.FieldError{
				Field:   fieldError.Field(),
				Message: getErrorMessage(fieldError),
			})
		}
	}

	return fields
}

func getErrorMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		if isString {
			return fe.Field() + " must be at least " + fe.Param() + " characters"
		}
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		if isString {
			return fe.Field() + " must not exceed " + fe.Param() + " characters"
		}
		return fe.Field() + " must not exceed " + fe.Param()
	case "contactmethod":
		return fe.Field() + " must be one of: " + strings.Join(models.ContactMethods, ", ")
	default:
		return fe.Field() + " is invalid"
	}
}
