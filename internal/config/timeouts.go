package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	Build             time.Duration // Upper bound for a single image build
	ChartDefault      time.Duration // Chart timeout when a unit does not set one
	AdoptionSettle    time.Duration // Wait after rewriting ownership metadata
	RetryMaxAttempts  int           // Maximum number of retry attempts
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - K8ZENV_TIMEOUT_BUILD (default: 30m)
//   - K8ZENV_TIMEOUT_CHART_DEFAULT (default: 5m)
//   - K8ZENV_TIMEOUT_ADOPTION_SETTLE (default: 30s)
//   - K8ZENV_RETRY_MAX_ATTEMPTS (default: 3)
//   - K8ZENV_RETRY_INITIAL_DELAY (default: 2s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Build:             parseDuration("K8ZENV_TIMEOUT_BUILD", 30*time.Minute),
		ChartDefault:      parseDuration("K8ZENV_TIMEOUT_CHART_DEFAULT", 5*time.Minute),
		AdoptionSettle:    parseDuration("K8ZENV_TIMEOUT_ADOPTION_SETTLE", 30*time.Second),
		RetryMaxAttempts:  parseInt("K8ZENV_RETRY_MAX_ATTEMPTS", 3),
		RetryInitialDelay: parseDuration("K8ZENV_RETRY_INITIAL_DELAY", 2*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
