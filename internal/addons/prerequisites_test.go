package addons

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/k8zenv/internal/config"
)

func validConfig() *config.Config {
	cfg := &config.Config{
		Cluster: config.ClusterConfig{
			ID:                 "z0bd1a2c3",
			LongID:             "0bd1a2c3-1111-4222-8333-944455556666",
			OrganizationID:     "org",
			OrganizationLongID: "5c2bb1e0-8d9b-4f8e-9a43-8d6f4c1a7b10",
			Name:               "qovery-z0bd1a2c3",
			Region:             "eu-west-3",
		},
		Features: config.FeatureFlags{MetricsHistory: true},
		DNS: config.DNSConfig{
			ManagedDomain:    "example.com",
			ManagedResolvers: []string{"1.1.1.1", "8.8.8.8"},
			Cloudflare:       config.CloudflareDNS{APIToken: "token"},
		},
		Engine: config.EngineConfig{EngineVersion: "1.0.0"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestPrerequisitesFromConfig(t *testing.T) {
	t.Parallel()

	p, err := PrerequisitesFromConfig(validConfig())
	require.NoError(t, err)

	assert.Equal(t, "z0bd1a2c3", p.ClusterID)
	assert.Equal(t, "0bd1a2c3-1111-4222-8333-944455556666", p.ClusterLongID.String())
	assert.Equal(t, "aws", p.CloudProvider)
	assert.True(t, p.FFMetricsHistoryEnabled)
	assert.False(t, p.FFLogHistoryEnabled)
	assert.Equal(t, "{example.com}", p.ManagedDNSHelmFormat)
	assert.Equal(t, `["1.1.1.1", "8.8.8.8"]`, p.ManagedDNSResolversTerraformFormat)
	assert.Equal(t, "cloudflare", p.ExternalDNSProvider)
	assert.Equal(t, CloudflareDNS{APIToken: "token"}, p.DNSProvider)
	assert.Equal(t, config.DefaultLokiRetentionWeeks, p.Advanced.LokiRetentionWeeks)
	assert.Equal(t, config.DefaultChartsPath, p.ChartPrefix)
	assert.Equal(t, "1.0.0", p.Infra.EngineVersion)
}

func TestPrerequisitesFromConfig_InvalidLongID(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Cluster.LongID = "not-a-uuid"

	_, err := PrerequisitesFromConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cluster long id")
}

func TestChartPath(t *testing.T) {
	t.Parallel()

	p := &ChartsPrerequisites{ChartPrefix: "/opt/lib"}
	assert.Equal(t, filepath.Join("/opt/lib", "charts", "q-storageclass"), p.chartPath("/charts/q-storageclass"))
	assert.Equal(t, filepath.Join("/opt/lib", "common", "charts", "loki"), p.chartPath("common/charts/loki"))

	empty := &ChartsPrerequisites{}
	assert.Equal(t, filepath.Join("charts", "aws-ui-view"), empty.chartPath("charts/aws-ui-view"))
}
