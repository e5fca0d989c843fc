package addons

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/imamik/k8zenv/internal/config"
)

// Namespaces the charts are installed into.
const (
	NamespaceKubeSystem   = "kube-system"
	NamespacePrometheus   = "prometheus"
	NamespaceLogging      = "logging"
	NamespaceCertManager  = "cert-manager"
	NamespaceNginxIngress = "nginx-ingress"
	NamespaceQovery       = "qovery"
)

// InfraOptions are the control-plane endpoints and credentials handed to the
// in-cluster agents.
type InfraOptions struct {
	APIURL                       string
	GRPCURL                      string
	JWTToken                     string
	AgentVersionControllerToken  string
	EngineVersionControllerToken string
	EngineVersion                string
	ClusterAgentVersion          string
	ShellAgentVersion            string
	NATSURL                      string
	NATSUser                     string
	NATSPassword                 string
}

// ChartsPrerequisites is everything the charts need besides the Terraform
// output.
type ChartsPrerequisites struct {
	OrganizationID     string
	OrganizationLongID uuid.UUID
	ClusterID          string
	ClusterLongID      uuid.UUID
	Region             string
	ClusterName        string
	CloudProvider      string
	TestCluster        bool

	AWSAccessKeyID     string
	AWSSecretAccessKey string

	NetworkMode    string
	EngineLocation string

	FFLogHistoryEnabled     bool
	FFMetricsHistoryEnabled bool

	ManagedDNSName                     string
	ManagedDNSHelmFormat               string
	ManagedDNSResolversTerraformFormat string
	ExternalDNSProvider                string
	DNSEmailReport                     string
	AcmeURL                            string
	DNSProvider                        DNSProvider

	DisablePleco bool

	Infra    InfraOptions
	Advanced config.AdvancedSettings

	// ChartPrefix is the directory holding charts/, common/charts/ and
	// chart_values/.
	ChartPrefix string
}

// PrerequisitesFromConfig derives the prerequisites from a validated config.
func PrerequisitesFromConfig(cfg *config.Config) (*ChartsPrerequisites, error) {
	orgLongID, err := uuid.Parse(cfg.Cluster.OrganizationLongID)
	if err != nil {
		return nil, fmt.Errorf("invalid organization long id: %w", err)
	}
	clusterLongID, err := uuid.Parse(cfg.Cluster.LongID)
	if err != nil {
		return nil, fmt.Errorf("invalid cluster long id: %w", err)
	}

	dnsProvider, err := DNSProviderFromConfig(cfg.DNS)
	if err != nil {
		return nil, err
	}

	return &ChartsPrerequisites{
		OrganizationID:     cfg.Cluster.OrganizationID,
		OrganizationLongID: orgLongID,
		ClusterID:          cfg.Cluster.ID,
		ClusterLongID:      clusterLongID,
		Region:             cfg.Cluster.Region,
		ClusterName:        cfg.Cluster.Name,
		CloudProvider:      cfg.Cluster.CloudProvider,
		TestCluster:        cfg.Cluster.Test,
		AWSAccessKeyID:     cfg.Cluster.AWS.AccessKeyID,
		AWSSecretAccessKey: cfg.Cluster.AWS.SecretAccessKey,
		NetworkMode:        cfg.Cluster.NetworkMode,
		EngineLocation:     cfg.Engine.Location,

		FFLogHistoryEnabled:     cfg.Features.LogHistory,
		FFMetricsHistoryEnabled: cfg.Features.MetricsHistory,

		ManagedDNSName:                     cfg.DNS.ManagedDomain,
		ManagedDNSHelmFormat:               helmListFormat(cfg.DNS.ManagedDomain),
		ManagedDNSResolversTerraformFormat: terraformListFormat(cfg.DNS.ManagedResolvers),
		ExternalDNSProvider:                cfg.DNS.ExternalDNSProvider,
		DNSEmailReport:                     cfg.DNS.Email,
		AcmeURL:                            cfg.DNS.AcmeURL,
		DNSProvider:                        dnsProvider,

		DisablePleco: cfg.Features.DisablePleco,

		Infra: InfraOptions{
			APIURL:                       cfg.Engine.APIURL,
			GRPCURL:                      cfg.Engine.GRPCURL,
			JWTToken:                     cfg.Engine.JWTToken,
			AgentVersionControllerToken:  cfg.Engine.AgentVersionControllerToken,
			EngineVersionControllerToken: cfg.Engine.EngineVersionControllerToken,
			EngineVersion:                cfg.Engine.EngineVersion,
			ClusterAgentVersion:          cfg.Engine.ClusterAgentVersion,
			ShellAgentVersion:            cfg.Engine.ShellAgentVersion,
			NATSURL:                      cfg.Engine.NATSURL,
			NATSUser:                     cfg.Engine.NATSUser,
			NATSPassword:                 cfg.Engine.NATSPassword,
		},
		Advanced:    cfg.Advanced,
		ChartPrefix: cfg.Charts.Path,
	}, nil
}

// chartPath joins name to the chart prefix. Leading slashes in name are
// tolerated.
func (p *ChartsPrerequisites) chartPath(name string) string {
	prefix := p.ChartPrefix
	if prefix == "" {
		prefix = "."
	}
	return filepath.Join(prefix, strings.TrimPrefix(name, "/"))
}

// helmListFormat renders a single-element helm list literal.
func helmListFormat(value string) string {
	return "{" + value + "}"
}

// terraformListFormat renders a quoted list, e.g. ["1.1.1.1", "8.8.8.8"].
func terraformListFormat(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, fmt.Sprintf("%q", v))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
