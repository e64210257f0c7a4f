package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("LOGBRIDGE_TEST_STRING", "hello")

	assert.Equal(t, "hello", GetEnvString("LOGBRIDGE_TEST_STRING", "default"))
	assert.Equal(t, "default", GetEnvString("LOGBRIDGE_TEST_UNSET", "default"))
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{"valid integer", "10051", 10051},
		{"invalid integer", "not-a-number", 42},
		{"empty value", "", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOGBRIDGE_TEST_INT", tt.value)
			assert.Equal(t, tt.expected, GetEnvInt("LOGBRIDGE_TEST_INT", 42))
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      bool
		expected bool
	}{
		{"true value", "true", false, true},
		{"numeric true", "1", false, true},
		{"false value", "false", true, false},
		{"numeric false", "0", true, false},
		{"invalid value", "maybe", true, true},
		{"empty value", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOGBRIDGE_TEST_BOOL", tt.value)
			assert.Equal(t, tt.expected, GetEnvBool("LOGBRIDGE_TEST_BOOL", tt.def))
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{"valid duration", "30s", 30 * time.Second},
		{"compound duration", "1m30s", 90 * time.Second},
		{"invalid duration", "5", 5 * time.Second},
		{"empty value", "", 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOGBRIDGE_TEST_DURATION", tt.value)
			assert.Equal(t, tt.expected, GetEnvDuration("LOGBRIDGE_TEST_DURATION", 5*time.Second))
		})
	}
}
