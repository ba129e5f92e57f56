package serrors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fleetdesk/fleetdesk/pkg/constants"
)

const CodeValidation = "VALIDATION_FAILED"

// ValidationErrors maps a field name to a human readable message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

// OrNil returns nil when there are no errors so callers can return it directly.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// ProcessValidatorErrors converts validator errors into field keyed messages.
// fieldName maps a struct field to the key used in the response; returning ""
// keeps the validator's JSON field name.
func ProcessValidatorErrors(errs validator.ValidationErrors, fieldName func(field string) string) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, fe := range errs {
		key := ""
		if fieldName != nil {
			key = fieldName(fe.StructField())
		}
		if key == "" {
			key = fe.Field()
		}
		out[key] = messageFor(fe)
	}
	return out
}

// FromValidator is a convenience wrapper for errors returned by validator.Struct.
func FromValidator(err error, fieldName func(field string) string) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	return ProcessValidatorErrors(verrs, fieldName)
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_with", "required_if":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "uuid", "uuid4":
		return "must be a valid uuid"
	case "iso4217":
		return "must be an ISO 4217 currency code"
	case "gtefield":
		return fmt.Sprintf("must not be before %s", fe.Param())
	default:
		// The stock English translations lead with the field name; errors
		// from a validator without them come back in the raw "Key: ..." form.
		if msg := fe.Translate(constants.Translator); msg != "" && !strings.HasPrefix(msg, "Key: ") {
			return strings.TrimPrefix(msg, fe.Field()+" ")
		}
		return fmt.Sprintf("failed on %q", fe.Tag())
	}
}

// Collect is FromValidator for callers that add their own checks: the
// returned map is never nil. Errors that did not come from the validator
// are returned as is.
func Collect(err error, fieldName func(field string) string) (ValidationErrors, error) {
	if err == nil {
		return ValidationErrors{}, nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, err
	}
	return ProcessValidatorErrors(verrs, fieldName), nil
}
