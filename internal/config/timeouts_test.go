package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadTimeouts_Defaults(t *testing.T) {
	for _, env := range []string{
		"K8ZENV_TIMEOUT_BUILD",
		"K8ZENV_TIMEOUT_CHART_DEFAULT",
		"K8ZENV_TIMEOUT_ADOPTION_SETTLE",
		"K8ZENV_RETRY_MAX_ATTEMPTS",
		"K8ZENV_RETRY_INITIAL_DELAY",
	} {
		t.Setenv(env, "")
	}

	timeouts := LoadTimeouts()

	assert.Equal(t, 30*time.Minute, timeouts.Build)
	assert.Equal(t, 5*time.Minute, timeouts.ChartDefault)
	assert.Equal(t, 30*time.Second, timeouts.AdoptionSettle)
	assert.Equal(t, 3, timeouts.RetryMaxAttempts)
	assert.Equal(t, 2*time.Second, timeouts.RetryInitialDelay)
}

func TestLoadTimeouts_FromEnvironment(t *testing.T) {
	t.Setenv("K8ZENV_TIMEOUT_BUILD", "45m")
	t.Setenv("K8ZENV_TIMEOUT_ADOPTION_SETTLE", "5s")
	t.Setenv("K8ZENV_RETRY_MAX_ATTEMPTS", "7")

	timeouts := LoadTimeouts()

	assert.Equal(t, 45*time.Minute, timeouts.Build)
	assert.Equal(t, 5*time.Second, timeouts.AdoptionSettle)
	assert.Equal(t, 7, timeouts.RetryMaxAttempts)
}

func TestLoadTimeouts_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("K8ZENV_TIMEOUT_CHART_DEFAULT", "soon")
	t.Setenv("K8ZENV_RETRY_MAX_ATTEMPTS", "many")

	timeouts := LoadTimeouts()

	assert.Equal(t, 5*time.Minute, timeouts.ChartDefault)
	assert.Equal(t, 3, timeouts.RetryMaxAttempts)
}
