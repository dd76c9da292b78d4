package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	Request           time.Duration // Timeout for a single inventory API call
	Rollback          time.Duration // Overall budget for a compensating rollback
	RetryMaxAttempts  int           // Maximum number of retry attempts
	RetryInitialDelay time.Duration // Initial delay between retries
	HTTPRetryMax      int           // Transport level retries for idempotent requests
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - NETBOX_TIMEOUT_REQUEST (default: 30s)
//   - NETBOX_TIMEOUT_ROLLBACK (default: 2m)
//   - NETBOX_RETRY_MAX_ATTEMPTS (default: 3)
//   - NETBOX_RETRY_INITIAL_DELAY (default: 500ms)
//   - NETBOX_HTTP_RETRY_MAX (default: 3)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Request:           parseDuration("NETBOX_TIMEOUT_REQUEST", 30*time.Second),
		Rollback:          parseDuration("NETBOX_TIMEOUT_ROLLBACK", 2*time.Minute),
		RetryMaxAttempts:  parseInt("NETBOX_RETRY_MAX_ATTEMPTS", 3),
		RetryInitialDelay: parseDuration("NETBOX_RETRY_INITIAL_DELAY", 500*time.Millisecond),
		HTTPRetryMax:      parseInt("NETBOX_HTTP_RETRY_MAX", 3),
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

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
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
