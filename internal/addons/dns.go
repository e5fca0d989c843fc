package addons

import (
	"fmt"

	"github.com/imamik/k8zenv/internal/addons/helm"
	"github.com/imamik/k8zenv/internal/config"
)

// DNSProvider is the provider cert-manager solves DNS01 challenges with.
type DNSProvider interface {
	// CertManagerConfigName is the provider key in the cert-manager-configs chart.
	CertManagerConfigName() string
	certManagerValues() []helm.SetValue
}

// CloudflareDNS solves challenges through the Cloudflare API.
type CloudflareDNS struct {
	APIToken string
	Email    string
	Proxied  bool
}

// QoveryDNS solves challenges through the managed PowerDNS API.
type QoveryDNS struct {
	APIURL  string
	APIKey  string
	APIPort string
	Domain  string
}

func (CloudflareDNS) CertManagerConfigName() string { return "cloudflare" }

func (QoveryDNS) CertManagerConfigName() string { return "pdns" }

// The token itself is stored in a secret by the cert-manager-configs hook.
func (c CloudflareDNS) certManagerValues() []helm.SetValue {
	return []helm.SetValue{
		setString("provider.cloudflare.apiTokenSecretRef.name", cloudflareSecretName),
		setString("provider.cloudflare.apiTokenSecretRef.key", cloudflareSecretKey),
		setString("provider.cloudflare.email", c.Email),
	}
}

func (q QoveryDNS) certManagerValues() []helm.SetValue {
	return []helm.SetValue{
		setString("provider.pdns.apiUrl", q.APIURL),
		setString("provider.pdns.apiPort", q.APIPort),
		setString("provider.pdns.apiKey", q.APIKey),
	}
}

// DNSProviderFromConfig selects the provider variant.
func DNSProviderFromConfig(cfg config.DNSConfig) (DNSProvider, error) {
	switch cfg.Provider {
	case config.DNSProviderCloudflare:
		return CloudflareDNS{
			APIToken: cfg.Cloudflare.APIToken,
			Email:    cfg.Cloudflare.Email,
			Proxied:  cfg.Cloudflare.Proxied,
		}, nil
	case config.DNSProviderQoveryDNS:
		return QoveryDNS{
			APIURL:  cfg.QoveryDNS.APIURL,
			APIKey:  cfg.QoveryDNS.APIKey,
			APIPort: cfg.QoveryDNS.APIPort,
			Domain:  cfg.QoveryDNS.Domain,
		}, nil
	default:
		return nil, fmt.Errorf("unknown dns provider %q", cfg.Provider)
	}
}
