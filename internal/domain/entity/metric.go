// Package entity defines the core domain entities for the log-ingestion bridge:
// metric definitions configured at startup and the samples extracted from log lines.
package entity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MetricDefinition binds a Zabbix item key to the pattern that extracts its
// value from an incoming log message. Definitions are compiled once at startup
// and shared read-only across concurrent requests.
type MetricDefinition struct {
	// Key is the Zabbix item key, e.g. "mos.rating". It must match the
	// trapper item configured on the Zabbix host.
	Key string

	// Pattern is the compiled extraction pattern. It is matched
	// case-insensitively anywhere in the message and must contain exactly
	// one capture group holding the numeric value.
	Pattern *regexp.Regexp
}

// MetricSample is one extracted (item key, value) pair. Samples are transient:
// produced and dispatched within the scope of a single request.
type MetricSample struct {
	Key   string
	Value float64
}

// ErrEmptyKey is returned when a metric definition has no item key.
var ErrEmptyKey = errors.New("metric definition: key is required")

// NewMetricDefinition compiles pattern into a case-insensitive definition.
// The pattern must contain exactly one capture group.
func NewMetricDefinition(key, pattern string) (MetricDefinition, error) {
	if strings.TrimSpace(key) == "" {
		return MetricDefinition{}, ErrEmptyKey
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return MetricDefinition{}, fmt.Errorf("metric definition %q: %w", key, err)
	}
	if re.NumSubexp() != 1 {
		return MetricDefinition{}, fmt.Errorf(
			"metric definition %q: pattern must have exactly one capture group, got %d",
			key, re.NumSubexp())
	}
	return MetricDefinition{Key: key, Pattern: re}, nil
}

// MustMetricDefinition is like NewMetricDefinition but panics on error.
// It is intended for compiled-in defaults.
func MustMetricDefinition(key, pattern string) MetricDefinition {
	def, err := NewMetricDefinition(key, pattern)
	if err != nil {
		panic(err)
	}
	return def
}
