// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/daytime/internal/log"
	"github.com/rs/zerolog"
)

// envParser converts a raw, non-empty environment value.
type envParser[T any] func(raw string) (T, error)

// lookupEnv returns the parsed value of key, or def when the variable is
// unset, empty or unparsable. Bad values are logged at warn and never fatal;
// Validate catches anything out of range afterwards.
func lookupEnv[T any](logger zerolog.Logger, key, kind string, def T, parse envParser[T]) T {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", raw).
			Str("default", fmt.Sprint(def)).
			Msgf("invalid %s in environment variable, using default", kind)
		return def
	}
	logger.Debug().
		Str("key", key).
		Str("value", fmt.Sprint(v)).
		Str("source", "environment").
		Msg("using environment variable")
	return v
}

func envLogger() zerolog.Logger {
	return log.WithComponent("config")
}

// ParseString reads a string from the environment or returns defaultValue.
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(envLogger(), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	return lookupEnv(logger, key, "string", defaultValue, func(raw string) (string, error) {
		return raw, nil
	})
}

// ParseInt reads a base-10 integer, falling back to defaultValue on parse errors.
func ParseInt(key string, defaultValue int) int {
	return lookupEnv(envLogger(), key, "integer", defaultValue, func(raw string) (int, error) {
		return strconv.Atoi(strings.TrimSpace(raw))
	})
}

// ParseDuration reads a Go duration such as "5s" or "15m".
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return lookupEnv(envLogger(), key, "duration", defaultValue, func(raw string) (time.Duration, error) {
		return time.ParseDuration(strings.TrimSpace(raw))
	})
}

// ParseBool accepts true/false, 1/0 and yes/no, case-insensitively.
func ParseBool(key string, defaultValue bool) bool {
	return lookupEnv(envLogger(), key, "boolean", defaultValue, parseBool)
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", raw)
}

// ParseFloat reads a float64 such as a sampling ratio.
func ParseFloat(key string, defaultValue float64) float64 {
	return lookupEnv(envLogger(), key, "float", defaultValue, func(raw string) (float64, error) {
		return strconv.ParseFloat(strings.TrimSpace(raw), 64)
	})
}
