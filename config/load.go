package config

import (
	"errors"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"

	"vulnguardian/pkg/validator"
)

// DefaultOverrideFile is the dotenv file read by LoadConfig when ENV_FILE is not set
const DefaultOverrideFile = ".env"

var configValidator = validator.NewValidator(validator.WithFieldNameTag("env"))

// LoadConfig loads the application configuration from environment variables,
// falling back to the dotenv file named by ENV_FILE (default ".env")
func LoadConfig() (*Config, error) {
	overrideFile := os.Getenv("ENV_FILE")
	if overrideFile == "" {
		overrideFile = DefaultOverrideFile
	}

	src, err := NewEnvSource(overrideFile)
	if err != nil {
		return nil, err
	}
	return Load(src)
}

// Load builds a Config from src.
// A variable present in src is coerced to its field's type even when blank; absent variables
// take their envDefault, and absent required variables fail. All offending fields are reported
// together; each one is a *ConfigError.
func Load(src Source) (*Config, error) {
	raw := src.Environ()
	environ := make(map[string]string, len(raw))
	for name, value := range raw {
		if value == "" {
			value = blankValue
		}
		environ[name] = value
	}
	opts := env.Options{
		Environment: environ,
		FuncMap:     parserFuncs(),
	}

	cfg := &Config{}
	var errs []error
	for _, section := range cfg.sections() {
		if err := env.ParseWithOptions(section, opts); err != nil {
			errs = append(errs, decodeErrors(section, raw, err)...)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	cfg.normalize()

	if fieldErrs := configValidator.Validate(cfg); len(fieldErrs) > 0 {
		for _, fe := range fieldErrs {
			errs = append(errs, &ConfigError{Kind: ErrInvalidValue, Field: fe.Field, Reason: fe.Message})
		}
		return nil, errors.Join(errs...)
	}

	return cfg, nil
}

// decodeErrors maps the errors env reports for one section onto ConfigErrors
func decodeErrors(section any, raw map[string]string, err error) []error {
	causes := []error{err}
	var aggErr env.AggregateError
	if errors.As(err, &aggErr) {
		causes = aggErr.Errors
	}

	out := make([]error, 0, len(causes))
	for _, cause := range causes {
		var (
			notSet   env.EnvVarIsNotSetError
			parseErr env.ParseError
		)
		switch {
		case errors.As(cause, &notSet):
			out = append(out, &ConfigError{Kind: ErrMissingRequiredField, Field: notSet.Key})
		case errors.As(cause, &parseErr):
			name := envName(section, parseErr.Name)
			out = append(out, &ConfigError{Kind: ErrInvalidType, Field: name, Value: raw[name], Reason: parseErr.Err.Error()})
		default:
			out = append(out, &ConfigError{Kind: ErrInvalidValue, Reason: cause.Error()})
		}
	}
	return out
}

// envName resolves a Go field name of section to its variable name
func envName(section any, field string) string {
	f, ok := reflect.TypeOf(section).Elem().FieldByName(field)
	if !ok {
		return field
	}
	name, _, _ := strings.Cut(f.Tag.Get("env"), ",")
	return name
}

func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	c.Security.Algorithm = "HS256"
}
