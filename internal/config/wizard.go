package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// WizardResult holds the user's choices from the init wizard.
type WizardResult struct {
	Name               string
	ID                 string
	LongID             string
	OrganizationID     string
	OrganizationLongID string
	Region             string
	Kubeconfig         string

	DNSProvider     string
	ManagedDomain   string
	CloudflareToken string
	QoveryDNSURL    string
	QoveryDNSKey    string

	MetricsHistory bool
	LogHistory     bool
	EngineLocation string
}

// RunWizard asks for the settings needed by a minimal configuration file.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		// Defaults
		Region:         "eu-west-3",
		Kubeconfig:     "kubeconfig",
		DNSProvider:    DNSProviderCloudflare,
		EngineLocation: EngineLocationClusterSide,
	}

	form := huh.NewForm(
		// Cluster identity
		huh.NewGroup(
			huh.NewInput().
				Title("Cluster name").
				Description("A unique name for your cluster (DNS-safe, lowercase)").
				Placeholder("my-cluster").
				Value(&result.Name).
				Validate(validateClusterName),
			huh.NewInput().
				Title("Cluster short id").
				Value(&result.ID).
				Validate(required("cluster id")),
			huh.NewInput().
				Title("Cluster long id").
				Description("UUID of the cluster").
				Value(&result.LongID).
				Validate(validateUUIDInput),
			huh.NewInput().
				Title("Organization short id").
				Value(&result.OrganizationID),
			huh.NewInput().
				Title("Organization long id").
				Description("UUID of the organization").
				Value(&result.OrganizationLongID).
				Validate(validateUUIDInput),
		),

		// Cluster access
		huh.NewGroup(
			huh.NewInput().
				Title("Region").
				Value(&result.Region).
				Validate(required("region")),
			huh.NewInput().
				Title("Kubeconfig path").
				Description("Used by install and destroy").
				Value(&result.Kubeconfig),
		),

		// DNS
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("DNS provider").
				Options(
					huh.NewOption("Cloudflare", DNSProviderCloudflare),
					huh.NewOption("Managed DNS", DNSProviderQoveryDNS),
				).
				Value(&result.DNSProvider),
			huh.NewInput().
				Title("Managed domain").
				Placeholder("example.com").
				Value(&result.ManagedDomain).
				Validate(validateDomain),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Cloudflare API token").
				EchoMode(huh.EchoModePassword).
				Value(&result.CloudflareToken).
				Validate(required("cloudflare api token")),
		).WithHideFunc(func() bool { return result.DNSProvider != DNSProviderCloudflare }),
		huh.NewGroup(
			huh.NewInput().
				Title("Managed DNS API URL").
				Value(&result.QoveryDNSURL).
				Validate(required("api url")),
			huh.NewInput().
				Title("Managed DNS API key").
				EchoMode(huh.EchoModePassword).
				Value(&result.QoveryDNSKey).
				Validate(required("api key")),
		).WithHideFunc(func() bool { return result.DNSProvider != DNSProviderQoveryDNS }),

		// Features
		huh.NewGroup(
			huh.NewConfirm().
				Title("Keep metrics history?").
				Description("Installs the prometheus stack").
				Value(&result.MetricsHistory),
			huh.NewConfirm().
				Title("Keep log history?").
				Description("Installs loki and promtail").
				Value(&result.LogHistory),
			huh.NewSelect[string]().
				Title("Engine location").
				Options(
					huh.NewOption("In the cluster", EngineLocationClusterSide),
					huh.NewOption("Hosted", EngineLocationQoverySide),
				).
				Value(&result.EngineLocation),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}

	return result, nil
}

// ToConfig converts the wizard result to a defaulted Config.
func (r *WizardResult) ToConfig() *Config {
	cfg := &Config{
		Cluster: ClusterConfig{
			ID:                 r.ID,
			LongID:             r.LongID,
			OrganizationID:     r.OrganizationID,
			OrganizationLongID: r.OrganizationLongID,
			Name:               strings.ToLower(r.Name),
			Region:             r.Region,
			Kubeconfig:         r.Kubeconfig,
		},
		Features: FeatureFlags{
			LogHistory:     r.LogHistory,
			MetricsHistory: r.MetricsHistory,
		},
		DNS: DNSConfig{
			Provider:      r.DNSProvider,
			ManagedDomain: r.ManagedDomain,
		},
		Engine: EngineConfig{
			Location: r.EngineLocation,
		},
	}
	switch r.DNSProvider {
	case DNSProviderCloudflare:
		cfg.DNS.Cloudflare.APIToken = r.CloudflareToken
	case DNSProviderQoveryDNS:
		cfg.DNS.QoveryDNS.APIURL = r.QoveryDNSURL
		cfg.DNS.QoveryDNS.APIKey = r.QoveryDNSKey
		cfg.DNS.QoveryDNS.Domain = r.ManagedDomain
	}
	cfg.ApplyDefaults()
	return cfg
}

// WriteFile writes cfg as YAML with a descriptive header. The file holds
// secrets and is created with owner-only permissions.
func WriteFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# k8zenv configuration for cluster %s\n", cfg.Cluster.Name)
	fmt.Fprintf(&sb, "# Generated on %s\n", time.Now().UTC().Format(time.RFC3339))
	sb.WriteString("# Engine tokens and versions must be filled in before install.\n\n")
	sb.Write(data)

	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateUUIDInput(s string) error {
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("must be a UUID")
	}
	return nil
}

// validateClusterName validates the cluster name.
func validateClusterName(s string) error {
	if s == "" {
		return fmt.Errorf("cluster name is required")
	}
	s = strings.ToLower(s)
	if len(s) > 63 {
		return fmt.Errorf("cluster name must be 63 characters or less")
	}
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return fmt.Errorf("cluster name can only contain lowercase letters, numbers, and hyphens")
		}
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return fmt.Errorf("cluster name cannot start or end with a hyphen")
	}
	return nil
}

// validateDomain validates the optional domain.
func validateDomain(s string) error {
	if s == "" {
		return nil // Optional
	}
	if len(strings.Split(s, ".")) < 2 {
		return fmt.Errorf("invalid domain format (expected example.com)")
	}
	return nil
}
