package handlers

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/k8zenv/internal/addons/k8sclient"
	"github.com/imamik/k8zenv/internal/config"
	"github.com/imamik/k8zenv/internal/util/prerequisites"
)

// stubDoctor replaces the tool and zone lookups. Tests using it must not
// run in parallel.
func stubDoctor(t *testing.T, installed []string, zoneErr error) {
	t.Helper()
	origChecker := toolChecker
	origZone := lookupZone
	t.Cleanup(func() {
		toolChecker = origChecker
		lookupZone = origZone
	})

	toolChecker = prerequisites.Checker{
		LookPath: func(name string) (string, error) {
			for _, n := range installed {
				if n == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", errors.New("not found")
		},
		Version: func(string) string { return "v1" },
	}
	lookupZone = func(context.Context, *config.Config, logr.Logger) (string, error) {
		return "zone-1", zoneErr
	}
}

func TestDoctor_AllPassing(t *testing.T) {
	out := stubCluster(t, &recordingApplier{})
	stubDoctor(t, []string{"docker", "kubectl"}, nil)

	require.NoError(t, Doctor(context.Background(), writeTestConfig(t)))

	text := out.String()
	assert.Contains(t, text, "k8zenv doctor: qovery-z0bd1a2c3")
	assert.Contains(t, text, "[OK] cluster reachable")
	assert.Contains(t, text, "[OK] cloudflare zone example.com (zone-1)")
	assert.Contains(t, text, "0 failed")
}

func TestDoctor_MissingOptionalToolWarns(t *testing.T) {
	out := stubCluster(t, &recordingApplier{})
	stubDoctor(t, nil, nil)

	require.NoError(t, Doctor(context.Background(), writeTestConfig(t)))
	assert.Contains(t, out.String(), "[--] docker not found")
	assert.Contains(t, out.String(), "2 warnings")
}

func TestDoctor_Failures(t *testing.T) {
	out := stubCluster(t, &recordingApplier{})
	stubDoctor(t, []string{"docker", "kubectl"}, errors.New("zone example.com not found"))
	newKubeClient = func([]byte) (k8sclient.Client, error) { return nil, errors.New("connection refused") }

	err := Doctor(context.Background(), writeTestConfig(t))
	require.Error(t, err)
	assert.Contains(t, out.String(), "[!!] cluster connection refused")
	assert.Contains(t, out.String(), "[!!] cloudflare zone zone example.com not found")
	assert.Contains(t, out.String(), "2 failed")
}

func TestDoctor_MissingTerraformOutput(t *testing.T) {
	out := stubCluster(t, &recordingApplier{})
	stubDoctor(t, []string{"docker", "kubectl"}, nil)
	cfgPath := writeTestConfig(t)
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	tfLine := strings.Split(strings.Split(string(data), "terraform_output: ")[1], "\n")[0]
	require.NoError(t, os.Remove(tfLine))

	require.Error(t, Doctor(context.Background(), cfgPath))
	assert.Contains(t, out.String(), "[!!] terraform output")
}

func TestDoctor_InvalidConfig(t *testing.T) {
	out := stubCluster(t, &recordingApplier{})
	stubDoctor(t, nil, nil)

	err := Doctor(context.Background(), "/does/not/exist.yaml")
	require.Error(t, err)
	assert.Contains(t, out.String(), "[!!] config")
}
