// Package response holds the JSON envelopes shared by the HTTP handlers:
// plain message errors, field-level validation error maps, and the
// validator instance configured to report JSON field names.
package response

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrResponse struct {
	Message string `json:"message"`
}

// FieldErrors mirrors the field-keyed error map the client consumes:
// {"errors": {"email": ["..."], ...}}.
type FieldErrors struct {
	Errors map[string][]string `json:"errors"`
}

func Error(msg string) ErrResponse {
	return ErrResponse{Message: msg}
}

// Field builds a single-field error map, e.g. the generic credentials
// error that login keys under "email" without disclosing which field failed.
func Field(field, msg string) FieldErrors {
	return FieldErrors{Errors: map[string][]string{field: {msg}}}
}

// ValidationError converts validator failures into the field error map.
func ValidationError(errs validator.ValidationErrors) FieldErrors {
	fields := make(map[string][]string)

	for _, err := range errs {
		field := err.Field()
		fields[field] = append(fields[field], messageFor(field, err))
	}

	return FieldErrors{Errors: fields}
}

func messageFor(field string, err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", field, err.Param())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", field, err.Param())
	case "eqfield":
		return fmt.Sprintf("The %s field confirmation does not match.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}

// NewValidator returns a Validate that reports struct fields by their JSON
// names, so error maps line up with the request payload.
func NewValidator() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return validate
}
