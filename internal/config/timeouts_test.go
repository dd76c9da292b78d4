package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadTimeouts_Defaults(t *testing.T) {
	// Clear any existing environment variables
	clearTimeoutEnvVars(t)

	timeouts := LoadTimeouts()

	if timeouts.Request != 30*time.Second {
		t.Errorf("Expected Request default 30s, got %v", timeouts.Request)
	}
	if timeouts.Rollback != 2*time.Minute {
		t.Errorf("Expected Rollback default 2m, got %v", timeouts.Rollback)
	}
	if timeouts.RetryMaxAttempts != 3 {
		t.Errorf("Expected RetryMaxAttempts default 3, got %d", timeouts.RetryMaxAttempts)
	}
	if timeouts.RetryInitialDelay != 500*time.Millisecond {
		t.Errorf("Expected RetryInitialDelay default 500ms, got %v", timeouts.RetryInitialDelay)
	}
	if timeouts.HTTPRetryMax != 3 {
		t.Errorf("Expected HTTPRetryMax default 3, got %d", timeouts.HTTPRetryMax)
	}
}

func TestLoadTimeouts_EnvVars(t *testing.T) {
	clearTimeoutEnvVars(t)

	t.Setenv("NETBOX_TIMEOUT_REQUEST", "10s")
	t.Setenv("NETBOX_TIMEOUT_ROLLBACK", "5m")
	t.Setenv("NETBOX_RETRY_MAX_ATTEMPTS", "7")
	t.Setenv("NETBOX_RETRY_INITIAL_DELAY", "2s")
	t.Setenv("NETBOX_HTTP_RETRY_MAX", "1")

	timeouts := LoadTimeouts()

	if timeouts.Request != 10*time.Second {
		t.Errorf("Expected Request 10s, got %v", timeouts.Request)
	}
	if timeouts.Rollback != 5*time.Minute {
		t.Errorf("Expected Rollback 5m, got %v", timeouts.Rollback)
	}
	if timeouts.RetryMaxAttempts != 7 {
		t.Errorf("Expected RetryMaxAttempts 7, got %d", timeouts.RetryMaxAttempts)
	}
	if timeouts.RetryInitialDelay != 2*time.Second {
		t.Errorf("Expected RetryInitialDelay 2s, got %v", timeouts.RetryInitialDelay)
	}
	if timeouts.HTTPRetryMax != 1 {
		t.Errorf("Expected HTTPRetryMax 1, got %d", timeouts.HTTPRetryMax)
	}
}

func TestLoadTimeouts_InvalidEnvVars(t *testing.T) {
	clearTimeoutEnvVars(t)

	t.Setenv("NETBOX_TIMEOUT_REQUEST", "invalid")
	t.Setenv("NETBOX_RETRY_MAX_ATTEMPTS", "not-a-number")

	timeouts := LoadTimeouts()

	if timeouts.Request != 30*time.Second {
		t.Errorf("Expected Request to fall back to 30s, got %v", timeouts.Request)
	}
	if timeouts.RetryMaxAttempts != 3 {
		t.Errorf("Expected RetryMaxAttempts to fall back to 3, got %d", timeouts.RetryMaxAttempts)
	}
}

func clearTimeoutEnvVars(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"NETBOX_TIMEOUT_REQUEST",
		"NETBOX_TIMEOUT_ROLLBACK",
		"NETBOX_RETRY_MAX_ATTEMPTS",
		"NETBOX_RETRY_INITIAL_DELAY",
		"NETBOX_HTTP_RETRY_MAX",
	} {
		t.Setenv(v, "")
		_ = os.Unsetenv(v)
	}
}
