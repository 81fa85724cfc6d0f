package helper

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New()

// ValidateStruct validate struct by `validate` tags
func ValidateStruct(s interface{}) error { return validate.Struct(s) }

// IsValidationError returns true if err has validator errors
func IsValidationError(err error) bool {
	var verr validator.ValidationErrors

	return errors.As(err, &verr)
}
