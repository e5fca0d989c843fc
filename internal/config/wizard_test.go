package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateClusterName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{name: "valid simple name", input: "my-cluster"},
		{name: "valid with numbers", input: "cluster-123"},
		{name: "uppercase letters are lowercased", input: "MyCluster"},
		{name: "max length (63 chars)", input: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},
		{name: "empty string", input: "", wantError: true},
		{name: "too long (64 chars)", input: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", wantError: true},
		{name: "starts with hyphen", input: "-cluster", wantError: true},
		{name: "ends with hyphen", input: "cluster-", wantError: true},
		{name: "underscore", input: "my_cluster", wantError: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validateClusterName(tt.input)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDomain(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validateDomain(""))
	assert.NoError(t, validateDomain("example.com"))
	assert.Error(t, validateDomain("localhost"))
}

func TestValidateUUIDInput(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validateUUIDInput("5ad1b4a8-9b1f-4b52-8c2e-1a3b2c4d5e6f"))
	assert.Error(t, validateUUIDInput("not-a-uuid"))
	assert.Error(t, required("region")("  "))
}

func wizardResult(provider string) *WizardResult {
	return &WizardResult{
		Name:               "Demo",
		ID:                 "z1234",
		LongID:             "5ad1b4a8-9b1f-4b52-8c2e-1a3b2c4d5e6f",
		OrganizationID:     "o1234",
		OrganizationLongID: "0c2d6a9e-3f0b-4b8e-9d7a-6e5f4c3b2a10",
		Region:             "eu-west-3",
		Kubeconfig:         "kubeconfig",
		DNSProvider:        provider,
		ManagedDomain:      "example.com",
		CloudflareToken:    "cf-token",
		QoveryDNSURL:       "https://dns.example.com",
		QoveryDNSKey:       "dns-key",
		MetricsHistory:     true,
		EngineLocation:     EngineLocationClusterSide,
	}
}

func TestWizardResult_ToConfig(t *testing.T) {
	t.Parallel()

	cfg := wizardResult(DNSProviderCloudflare).ToConfig()
	assert.Equal(t, "demo", cfg.Cluster.Name)
	assert.Equal(t, "cf-token", cfg.DNS.Cloudflare.APIToken)
	assert.Empty(t, cfg.DNS.QoveryDNS.APIKey)
	assert.True(t, cfg.Features.MetricsHistory)
	assert.Equal(t, DefaultChartsPath, cfg.Charts.Path)
	require.NoError(t, cfg.Validate())

	cfg = wizardResult(DNSProviderQoveryDNS).ToConfig()
	assert.Empty(t, cfg.DNS.Cloudflare.APIToken)
	assert.Equal(t, "dns-key", cfg.DNS.QoveryDNS.APIKey)
	assert.Equal(t, "example.com", cfg.DNS.QoveryDNS.Domain)
	require.NoError(t, cfg.Validate())
}

func TestWriteFile_RoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	cfg := wizardResult(DNSProviderCloudflare).ToConfig()

	require.NoError(t, WriteFile(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# k8zenv configuration for cluster demo")

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Cluster, loaded.Cluster)
	assert.Equal(t, cfg.Features, loaded.Features)
	assert.Equal(t, cfg.DNS.Cloudflare, loaded.DNS.Cloudflare)
	assert.Equal(t, cfg.Charts, loaded.Charts)
}
