package config

// Default values applied by ApplyDefaults.
const (
	DefaultCloudProvider                 = "aws"
	DefaultIAMUserMapperGroup            = "Admins"
	DefaultLokiRetentionWeeks            = 12
	DefaultRegistryImageRetentionSeconds = 365 * 24 * 60 * 60
	DefaultChartsPath                    = "lib"
	DefaultTerraformOutput               = "qovery-tf-config.json"
	DefaultAcmeURL                       = "https://acme-v02.api.letsencrypt.org/directory"
)

// ApplyDefaults fills unset fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.Cluster.CloudProvider == "" {
		c.Cluster.CloudProvider = DefaultCloudProvider
	}
	if c.Cluster.NetworkMode == "" {
		c.Cluster.NetworkMode = NetworkModeWithoutNATGateways
	}
	if c.DNS.Provider == "" {
		c.DNS.Provider = DNSProviderCloudflare
	}
	if c.DNS.AcmeURL == "" {
		c.DNS.AcmeURL = DefaultAcmeURL
	}
	if c.DNS.ExternalDNSProvider == "" {
		c.DNS.ExternalDNSProvider = c.DNS.Provider
	}
	if c.Engine.Location == "" {
		c.Engine.Location = EngineLocationClusterSide
	}
	if c.Advanced.IAMUserMapperGroup == "" {
		c.Advanced.IAMUserMapperGroup = DefaultIAMUserMapperGroup
	}
	if c.Advanced.LokiRetentionWeeks == 0 {
		c.Advanced.LokiRetentionWeeks = DefaultLokiRetentionWeeks
	}
	if c.Advanced.RegistryImageRetentionSeconds == 0 {
		c.Advanced.RegistryImageRetentionSeconds = DefaultRegistryImageRetentionSeconds
	}
	if c.Charts.Path == "" {
		c.Charts.Path = DefaultChartsPath
	}
	if c.Charts.TerraformOutput == "" {
		c.Charts.TerraformOutput = DefaultTerraformOutput
	}
}
