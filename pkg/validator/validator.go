package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"
)

// ValidationError describes a single failed rule.
type ValidationError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// ValidationErrors is returned by Struct and Var when one or more rules fail.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, ve := range e {
		parts = append(parts, ve.Field+": "+ve.Message)
	}
	return strings.Join(parts, "; ")
}

// Is reports ErrValidation as the sentinel for every ValidationErrors value.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Fields returns the first message per field.
func (e ValidationErrors) Fields() map[string]string {
	fields := make(map[string]string, len(e))
	for _, ve := range e {
		if _, ok := fields[ve.Field]; !ok {
			fields[ve.Field] = ve.Message
		}
	}
	return fields
}

// IsValidationError reports whether err carries validation failures.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// ExtractValidationErrors unwraps ValidationErrors from err.
func ExtractValidationErrors(err error) (ValidationErrors, bool) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

var instance = sync.OnceValue(func() *playground.Validate {
	v := playground.New(playground.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return v
})

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	return convert(instance().Struct(s))
}

// Var validates a single value. field names the value in the returned errors.
func Var(field string, value any, tag string) error {
	err := convert(instance().Var(value, tag))
	if verrs, ok := ExtractValidationErrors(err); ok {
		for i := range verrs {
			verrs[i].Field = field
		}
		return verrs
	}
	return err
}

func convert(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validator: %w", err)
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url", "http_url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters long"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters long"
		}
		return "must be at most " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters long"
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	default:
		return "failed on the " + fe.Tag() + " rule"
	}
}

// fieldName picks the first non-empty name from json, form or query tags.
func fieldName(f reflect.StructField) string {
	for _, key := range []string{"json", "form", "query"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}
