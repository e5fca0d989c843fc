package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
cluster:
  id: z1a2b3c4
  long_id: 1a2b3c4d-0000-4000-8000-000000000001
  organization_id: zorg1234
  organization_long_id: 0f0f0f0f-0000-4000-8000-000000000002
  name: qovery-z1a2b3c4
  region: eu-west-3
dns:
  provider: cloudflare
  managed_domain: z1a2b3c4.example.dev
  cloudflare:
    api_token: cf-token
    email: ops@example.dev
features:
  metrics_history: true
`

func TestLoadBytes_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadBytes([]byte(validConfig))
	require.NoError(t, err)

	assert.Equal(t, "aws", cfg.Cluster.CloudProvider)
	assert.Equal(t, NetworkModeWithoutNATGateways, cfg.Cluster.NetworkMode)
	assert.Equal(t, EngineLocationClusterSide, cfg.Engine.Location)
	assert.Equal(t, "Admins", cfg.Advanced.IAMUserMapperGroup)
	assert.Equal(t, DefaultLokiRetentionWeeks, cfg.Advanced.LokiRetentionWeeks)
	assert.Equal(t, uint32(DefaultRegistryImageRetentionSeconds), cfg.Advanced.RegistryImageRetentionSeconds)
	assert.Equal(t, DefaultAcmeURL, cfg.DNS.AcmeURL)
	assert.Equal(t, DNSProviderCloudflare, cfg.DNS.ExternalDNSProvider)
	assert.True(t, cfg.Features.MetricsHistory)
	assert.False(t, cfg.Features.LogHistory)
	assert.False(t, cfg.IsQoveryDNS())
}

func TestLoadBytes_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := LoadBytes([]byte("cluster: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadBytes_ValidationFailure(t *testing.T) {
	t.Parallel()

	_, err := LoadBytes([]byte("cluster:\n  name: only-a-name\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Contains(t, err.Error(), "cluster.id is required")
	assert.Contains(t, err.Error(), "cluster.region is required")
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "qovery-z1a2b3c4", cfg.Cluster.Name)
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
