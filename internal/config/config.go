package config

// DNS provider identifiers accepted in dns.provider.
const (
	DNSProviderCloudflare = "cloudflare"
	DNSProviderQoveryDNS  = "qovery_dns"
)

// Engine locations accepted in engine.location.
const (
	EngineLocationClusterSide = "cluster"
	EngineLocationQoverySide  = "qovery"
)

// Network modes accepted in cluster.network_mode.
const (
	NetworkModeWithoutNATGateways = "without_nat_gateways"
	NetworkModeWithNATGateways    = "with_nat_gateways"
)

// Config holds the engine configuration.
type Config struct {
	Cluster  ClusterConfig    `yaml:"cluster"`
	Features FeatureFlags     `yaml:"features"`
	DNS      DNSConfig        `yaml:"dns"`
	Engine   EngineConfig     `yaml:"engine"`
	Registry RegistryConfig   `yaml:"registry"`
	Advanced AdvancedSettings `yaml:"advanced"`
	Charts   ChartsConfig     `yaml:"charts"`
}

// ClusterConfig identifies the target cluster and its cloud account.
type ClusterConfig struct {
	ID                 string         `yaml:"id"`
	LongID             string         `yaml:"long_id"`
	OrganizationID     string         `yaml:"organization_id"`
	OrganizationLongID string         `yaml:"organization_long_id"`
	Name               string         `yaml:"name"`
	Region             string         `yaml:"region"`
	CloudProvider      string         `yaml:"cloud_provider"`
	Test               bool           `yaml:"test"`
	Kubeconfig         string         `yaml:"kubeconfig"`
	NetworkMode        string         `yaml:"network_mode"`
	AWS                AWSCredentials `yaml:"aws"`
}

// AWSCredentials are the account credentials the cluster was provisioned with.
type AWSCredentials struct {
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// FeatureFlags toggle optional units of the install plan.
type FeatureFlags struct {
	LogHistory     bool `yaml:"log_history"`
	MetricsHistory bool `yaml:"metrics_history"`
	DisablePleco   bool `yaml:"disable_pleco"`
}

// DNSConfig configures cluster DNS and certificate issuance.
type DNSConfig struct {
	Provider            string          `yaml:"provider"`
	ManagedDomain       string          `yaml:"managed_domain"`
	ManagedResolvers    []string        `yaml:"managed_resolvers"`
	ExternalDNSProvider string          `yaml:"external_dns_provider"`
	Email               string          `yaml:"email"`
	AcmeURL             string          `yaml:"acme_url"`
	Cloudflare          CloudflareDNS   `yaml:"cloudflare"`
	QoveryDNS           QoveryDNSConfig `yaml:"qovery_dns"`
}

// CloudflareDNS holds Cloudflare API settings.
type CloudflareDNS struct {
	APIToken string `yaml:"api_token"`
	Email    string `yaml:"email"`
	Proxied  bool   `yaml:"proxied"`
}

// QoveryDNSConfig holds settings of the managed DNS API.
type QoveryDNSConfig struct {
	APIURL  string `yaml:"api_url"`
	APIKey  string `yaml:"api_key"`
	APIPort string `yaml:"api_port"`
	Domain  string `yaml:"domain"`
}

// EngineConfig holds control-plane endpoints and agent credentials.
type EngineConfig struct {
	Location                     string `yaml:"location"`
	APIURL                       string `yaml:"api_url"`
	GRPCURL                      string `yaml:"grpc_url"`
	JWTToken                     string `yaml:"jwt_token"`
	AgentVersionControllerToken  string `yaml:"agent_version_controller_token"`
	EngineVersionControllerToken string `yaml:"engine_version_controller_token"`
	EngineVersion                string `yaml:"engine_version"`
	ClusterAgentVersion          string `yaml:"cluster_agent_version"`
	ShellAgentVersion            string `yaml:"shell_agent_version"`
	NATSURL                      string `yaml:"nats_url"`
	NATSUser                     string `yaml:"nats_user"`
	NATSPassword                 string `yaml:"nats_password"`
}

// RegistryConfig points at the OCI registry images are pushed to.
type RegistryConfig struct {
	Name      string `yaml:"name"`
	URL       string `yaml:"url"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	PlainHTTP bool   `yaml:"plain_http"`
}

// AdvancedSettings are rarely changed knobs with sensible defaults.
type AdvancedSettings struct {
	IAMUserMapperGroup            string `yaml:"iam_user_mapper_group"`
	LokiRetentionWeeks            int    `yaml:"loki_retention_weeks"`
	RegistryImageRetentionSeconds uint32 `yaml:"registry_image_retention_seconds"`
}

// ChartsConfig locates chart sources and the Terraform output.
type ChartsConfig struct {
	Path            string `yaml:"path"`
	TerraformOutput string `yaml:"terraform_output"`
	Sequential      bool   `yaml:"sequential"`
}

// IsQoveryDNS reports whether the managed DNS provider variant is selected.
func (c *Config) IsQoveryDNS() bool {
	return c.DNS.Provider == DNSProviderQoveryDNS
}
