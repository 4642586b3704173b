package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports caller input the store refuses to persist.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// check runs struct validation and converts the first failure into a
// ValidationError keyed by the lowercased field name.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: field, Reason: "must not be empty"}
	case "oneof":
		return &ValidationError{Field: field, Reason: fmt.Sprintf("%q is not one of %s", fe.Value(), fe.Param())}
	default:
		return &ValidationError{Field: field, Reason: fe.Tag()}
	}
}
