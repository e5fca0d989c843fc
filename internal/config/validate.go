package config

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Validate checks the configuration for errors. All problems are reported
// together.
func (c *Config) Validate() error {
	var errs []error

	if c.Cluster.ID == "" {
		errs = append(errs, errors.New("cluster.id is required"))
	}
	if c.Cluster.Name == "" {
		errs = append(errs, errors.New("cluster.name is required"))
	}
	if c.Cluster.Region == "" {
		errs = append(errs, errors.New("cluster.region is required"))
	}
	errs = append(errs, validateUUID("cluster.long_id", c.Cluster.LongID))
	errs = append(errs, validateUUID("cluster.organization_long_id", c.Cluster.OrganizationLongID))

	switch c.Cluster.NetworkMode {
	case NetworkModeWithoutNATGateways, NetworkModeWithNATGateways:
	default:
		errs = append(errs, fmt.Errorf("cluster.network_mode %q is invalid", c.Cluster.NetworkMode))
	}

	switch c.DNS.Provider {
	case DNSProviderCloudflare:
		if c.DNS.Cloudflare.APIToken == "" {
			errs = append(errs, errors.New("dns.cloudflare.api_token is required for the cloudflare provider"))
		}
	case DNSProviderQoveryDNS:
		if c.DNS.QoveryDNS.APIURL == "" || c.DNS.QoveryDNS.APIKey == "" {
			errs = append(errs, errors.New("dns.qovery_dns.api_url and api_key are required for the qovery_dns provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("dns.provider %q is invalid", c.DNS.Provider))
	}

	switch c.Engine.Location {
	case EngineLocationClusterSide, EngineLocationQoverySide:
	default:
		errs = append(errs, fmt.Errorf("engine.location %q is invalid", c.Engine.Location))
	}

	if c.Advanced.LokiRetentionWeeks < 0 {
		errs = append(errs, errors.New("advanced.loki_retention_weeks must not be negative"))
	}

	return errors.Join(errs...)
}

func validateUUID(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	if _, err := uuid.Parse(value); err != nil {
		return fmt.Errorf("%s is not a valid UUID: %w", field, err)
	}
	return nil
}
