package config

import (
	"errors"
	"fmt"
)

// Error kinds reported by Load
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidType          = errors.New("invalid type")
	ErrInvalidValue         = errors.New("invalid value")
	ErrOverrideFile         = errors.New("failed to read override file")
)

// ConfigError describes a single configuration input that prevented startup
type ConfigError struct {
	// Kind is one of the Err* sentinels above
	Kind error
	// Field is the environment name of the offending input
	Field string
	// Value is the raw input, empty for missing fields
	Value string
	// Reason gives additional detail for invalid inputs
	Reason string
}

func (e *ConfigError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrMissingRequiredField):
		return fmt.Sprintf("config: %s: %s", e.Kind, e.Field)
	case errors.Is(e.Kind, ErrInvalidType):
		return fmt.Sprintf("config: %s for %s: %q (%s)", e.Kind, e.Field, e.Value, e.Reason)
	default:
		return fmt.Sprintf("config: %s for %s: %s", e.Kind, e.Field, e.Reason)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Kind
}
