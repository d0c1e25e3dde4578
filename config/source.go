package config

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Source supplies the raw variables Load decodes
type Source interface {
	// Environ returns every available variable by name; the caller may modify the result
	Environ() map[string]string
}

// MapSource is a Source backed by a plain map
type MapSource map[string]string

// Environ implements Source
func (m MapSource) Environ() map[string]string {
	return maps.Clone(map[string]string(m))
}

// EnvSource reads environment variables, falling back to an optional dotenv override file.
// Environment variables take precedence over the file.
type EnvSource struct {
	values   map[string]string
	fileUsed string
}

// NewEnvSource creates an EnvSource from the current process environment. An empty
// overrideFile or a file that does not exist is ignored; a file that exists but cannot
// be parsed is an error.
func NewEnvSource(overrideFile string) (*EnvSource, error) {
	src := &EnvSource{values: make(map[string]string)}

	if overrideFile != "" {
		v := viper.New()
		v.SetConfigFile(overrideFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, &ConfigError{Kind: ErrOverrideFile, Field: overrideFile, Reason: err.Error()}
			}
		} else {
			// viper lower-cases keys, variable names are upper case
			for _, key := range v.AllKeys() {
				src.values[strings.ToUpper(key)] = v.GetString(key)
			}
			src.fileUsed = overrideFile
		}
	}

	for _, kv := range os.Environ() {
		if name, value, ok := strings.Cut(kv, "="); ok {
			src.values[name] = value
		}
	}

	return src, nil
}

// Environ implements Source
func (s *EnvSource) Environ() map[string]string {
	return maps.Clone(s.values)
}

// ConfigFileUsed returns the override file that was read, or an empty string
func (s *EnvSource) ConfigFileUsed() string {
	return s.fileUsed
}
