package config

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// blankValue stands in for a present but empty variable. caarlos0/env skips empty values,
// and no real environment value can contain a NUL byte.
const blankValue = "\x00"

var (
	errExpectedInteger  = errors.New("expected integer")
	errExpectedBoolean  = errors.New("expected boolean")
	errExpectedDuration = errors.New("expected duration")
)

// parserFuncs overrides the env built-in parsers for every field type Config uses
func parserFuncs() map[reflect.Type]env.ParserFunc {
	return map[reflect.Type]env.ParserFunc{
		reflect.TypeOf(""): func(v string) (any, error) {
			return unblank(v), nil
		},
		reflect.TypeOf(0): func(v string) (any, error) {
			return parseInt(v)
		},
		reflect.TypeOf(false): func(v string) (any, error) {
			return parseBool(v)
		},
		reflect.TypeOf(time.Duration(0)): func(v string) (any, error) {
			return parseDuration(v)
		},
		reflect.TypeOf([]string(nil)): func(v string) (any, error) {
			return parseList(v), nil
		},
	}
}

func unblank(raw string) string {
	if raw == blankValue {
		return ""
	}
	return raw
}

func parseInt(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(unblank(raw)))
	if err != nil {
		return 0, errExpectedInteger
	}
	return n, nil
}

var boolTokens = map[string]bool{
	"true": true, "t": true, "1": true, "yes": true, "y": true, "on": true,
	"false": false, "f": false, "0": false, "no": false, "n": false, "off": false,
}

// parseBool accepts case-insensitive truthy and falsy tokens
func parseBool(raw string) (bool, error) {
	b, ok := boolTokens[strings.ToLower(strings.TrimSpace(unblank(raw)))]
	if !ok {
		return false, errExpectedBoolean
	}
	return b, nil
}

// parseDuration accepts Go duration syntax or a bare number of seconds
func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(unblank(raw))
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errExpectedDuration
	}
	return d, nil
}

// parseList splits a comma-separated string, trimming elements and preserving order.
// A blank input yields an empty list.
func parseList(raw string) []string {
	parts := strings.Split(unblank(raw), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
