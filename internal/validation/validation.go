// Package validation decodes untrusted request bodies into typed, range
// checked models. It never performs side effects.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/dentclinicai/dentclinicai-api/internal/models"
	apperrors "github.com/dentclinicai/dentclinicai-api/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// Validator checks contact submissions and ROI inputs
type Validator struct {
	validate *validator.Validate
}

// New creates a validator that reads the models' binding tags and reports
// fields by their JSON names
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("contactmethod", func(fl validator.FieldLevel) bool {
		return slices.Contains(models.ContactMethods, fl.Field().String())
	})

	return &Validator{validate: v}
}

// ContactSubmission decodes and validates a contact form body
func (v *Validator) ContactSubmission(body []byte) (*models.ContactSubmission, error) {
	var sub models.ContactSubmission
	if err := decodeStrict(body, &sub); err != nil {
		return nil, err
	}
	if err := v.validate.Struct(&sub); err != nil {
		return nil, apperrors.NewValidationError(ParseValidationErrors(err), err)
	}
	return &sub, nil
}

// RoiInput decodes and validates an ROI calculator body
func (v *Validator) RoiInput(body []byte) (*models.RoiInput, error) {
	var in models.RoiInput
	if err := decodeStrict(body, &in); err != nil {
		return nil, err
	}
	if err := v.validate.Struct(&in); err != nil {
		return nil, apperrors.NewValidationError(ParseValidationErrors(err), err)
	}
	return &in, nil
}

// decodeStrict rejects unknown fields, type mismatches and trailing data
func decodeStrict(body []byte, dst any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return apperrors.InvalidInputError("body", "request body is required")
	}

	if err := rejectUnknownKeys(body, dst); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return apperrors.InvalidInputError("body", "unexpected data after JSON object")
	}
	return nil
}

// rejectUnknownKeys compares the object's keys to dst's JSON names exactly.
// encoding/json folds case when matching, so "EMAIL" would fill email.
// Bodies that are not objects are left to the typed decode.
func rejectUnknownKeys(body []byte, dst any) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}

	known := jsonFieldNames(reflect.TypeOf(dst))
	var fields []apperrors.FieldError
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		if !known[key] {
			fields = append(fields, apperrors.FieldError{Field: key, Message: key + " is not allowed"})
		}
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields, errors.New("json: unknown or miscased fields"))
	}
	return nil
}

func jsonFieldNames(t reflect.Type) map[string]bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	names := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		fld := t.Field(i)
		if !fld.IsExported() {
			continue
		}
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			continue
		case "":
			name = fld.Name
		}
		names[name] = true
	}
	return names
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return apperrors.NewValidationError([]apperrors.FieldError{{
			Field:   field,
			Message: field + " must be " + jsonKind(typeErr.Type),
		}}, err)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return apperrors.NewValidationError([]apperrors.FieldError{{
			Field:   "body",
			Message: "Malformed JSON",
		}}, err)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return apperrors.NewValidationError([]apperrors.FieldError{{
			Field:   field,
			Message: field + " is not allowed",
		}}, err)
	default:
		return apperrors.NewValidationError([]apperrors.FieldError{{
			Field:   "body",
			Message: "Invalid request body",
		}}, err)
	}
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "a number"
	case reflect.Struct, reflect.Map:
		return "an object"
	default:
		return "a " + t.Kind().String()
	}
}
