package validator

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldError describes a single failed validation rule
type FieldError struct {
	// Field is the field name, or the value of the configured name tag
	Field string
	// Tag is the validation rule that failed
	Tag string
	// Message is a human-readable description of the failure
	Message string
}

// Validator defines the interface for validation operations
type Validator interface {
	// Validate validates a struct and returns the failures sorted by field name
	Validate(s any) []FieldError
}

// Option configures the underlying go-playground validator
type Option func(*validator.Validate)

// WithFieldNameTag reports fields by the first element of the given struct tag
// instead of the Go field name, e.g. `env:"DB_PORT"` reports "DB_PORT"
func WithFieldNameTag(tag string) Option {
	return func(v *validator.Validate) {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			return name
		})
	}
}

// validatorImpl implements the Validator interface
type validatorImpl struct {
	validate *validator.Validate
}

// NewValidator creates a new instance of the go-playground validator
func NewValidator(opts ...Option) Validator {
	v := validator.New()
	for _, opt := range opts {
		opt(v)
	}
	return &validatorImpl{
		validate: v,
	}
}

// Validate validates a struct and returns the failures sorted by field name
func (v *validatorImpl) Validate(s any) []FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []FieldError{{Field: "", Tag: "invalid", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		out = append(out, FieldError{
			Field:   fieldErr.Field(),
			Tag:     fieldErr.Tag(),
			Message: formatValidationError(fieldErr, prettifyFieldName(fieldErr.Field())),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// formatValidationError returns a more descriptive error message based on the validation tag
func formatValidationError(err validator.FieldError, fieldName string) string {
	switch err.Tag() {
	case "required":
		return fieldName + " is required"
	case "url":
		return fieldName + " must be a valid URL"
	case "min":
		return fieldName + " must be at least " + err.Param()
	case "max":
		return fieldName + " must be at most " + err.Param()
	case "lt":
		return fieldName + " must be less than " + err.Param()
	case "lte":
		return fieldName + " must be less than or equal to " + err.Param()
	case "gt":
		return fieldName + " must be greater than " + err.Param()
	case "gte":
		return fieldName + " must be greater than or equal to " + err.Param()
	case "oneof":
		return fieldName + " must be one of the following: " + err.Param()
	default:
		return fieldName + " is invalid"
	}
}

// prettifyFieldName turns a camelCase or PascalCase field into a human-readable string
func prettifyFieldName(field string) string {
	var result []rune
	for i, r := range field {
		if i > 0 && r >= 'A' && r <= 'Z' {
			// Check if the previous character is lowercase (indicating a camelCase transition)
			if field[i-1] >= 'a' && field[i-1] <= 'z' {
				result = append(result, ' ')
			}
		}
		result = append(result, r)
	}
	return cases.Title(language.Und, cases.NoLower).String(string(result))
}
