// Package config exposes typed access to the service configuration.
//
// Usecases and modules depend on the Config interface only; the Viper
// implementation reads a YAML file and lets environment variables override
// any key (dots replaced by underscores, e.g. TAILOR_MAX_FILTERS).
package config

import (
	"io"
	"time"
)

// DurationConfig reads integer values scaled to a time unit.
type DurationConfig interface {
	// GetSecond returns the value of key multiplied by time.Second.
	GetSecond(key string) time.Duration

	// GetMinute returns the value of key multiplied by time.Minute.
	GetMinute(key string) time.Duration
}

// Config is the read-only view over configuration values.
//
// Missing keys yield the zero value of the requested type.
type Config interface {
	io.Closer
	DurationConfig

	GetBool(key string) bool
	GetInt(key string) int
	GetFloat64(key string) float64
	GetString(key string) string

	// GetArray splits a comma separated value, dropping empty elements.
	// YAML sequences are returned as-is.
	GetArray(key string) []string

	// GetMap parses a "k1:v1,k2:v2" value.
	GetMap(key string) map[string]string

	// IsSet reports whether key has a value in any source.
	IsSet(key string) bool
}
