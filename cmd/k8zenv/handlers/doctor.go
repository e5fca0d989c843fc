package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-logr/logr"

	"github.com/imamik/k8zenv/internal/config"
	"github.com/imamik/k8zenv/internal/platform/cloudflare"
	"github.com/imamik/k8zenv/internal/ui/tui"
	"github.com/imamik/k8zenv/internal/util/prerequisites"
)

// ErrDoctorFailed is returned when at least one check failed.
var ErrDoctorFailed = errors.New("doctor found problems")

// Factory function variables for doctor - can be replaced in tests.
var (
	toolChecker = prerequisites.Checker{}

	lookupZone = func(ctx context.Context, cfg *config.Config, log logr.Logger) (string, error) {
		return cloudflare.NewClient(cfg.DNS.Cloudflare.APIToken, log).ZoneID(ctx, cfg.DNS.ManagedDomain)
	}
)

// Doctor checks that install can run: the config is valid, its files
// exist, the cluster answers and the needed tools are installed.
func Doctor(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprint(stdout, tui.RenderChecks("k8zenv doctor", []tui.Check{
			{Name: "config", Status: tui.CheckFailed, Detail: err.Error()},
		}, isTerminal()))
		return ErrDoctorFailed
	}

	log := logger().WithValues("cluster", cfg.Cluster.Name)
	checks := []tui.Check{{Name: "config", Detail: "valid"}}
	checks = append(checks, checkTerraformOutput(cfg))
	checks = append(checks, checkCluster(ctx, cfg))
	checks = append(checks, checkTools(cfg)...)
	if cfg.DNS.Provider == config.DNSProviderCloudflare {
		checks = append(checks, checkZone(ctx, cfg, log))
	}

	fmt.Fprint(stdout, tui.RenderChecks("k8zenv doctor: "+cfg.Cluster.Name, checks, isTerminal()))
	for _, c := range checks {
		if c.Status == tui.CheckFailed {
			return ErrDoctorFailed
		}
	}
	return nil
}

func checkTerraformOutput(cfg *config.Config) tui.Check {
	check := tui.Check{Name: "terraform output", Detail: cfg.Charts.TerraformOutput}
	if _, err := os.Stat(cfg.Charts.TerraformOutput); err != nil {
		check.Status = tui.CheckFailed
		check.Detail = err.Error()
	}
	return check
}

func checkCluster(ctx context.Context, cfg *config.Config) tui.Check {
	check := tui.Check{Name: "cluster", Detail: "reachable"}
	if cfg.Cluster.Kubeconfig == "" {
		check.Status = tui.CheckFailed
		check.Detail = "cluster.kubeconfig is not set"
		return check
	}

	kubeconfig, err := readKubeconfig(cfg.Cluster.Kubeconfig)
	if err != nil {
		check.Status = tui.CheckFailed
		check.Detail = err.Error()
		return check
	}
	kube, err := newKubeClient(kubeconfig)
	if err == nil {
		err = kube.RefreshDiscovery(ctx)
	}
	if err != nil {
		check.Status = tui.CheckFailed
		check.Detail = err.Error()
	}
	return check
}

func checkTools(cfg *config.Config) []tui.Check {
	results := toolChecker.Check(prerequisites.ToolsFor(cfg.Registry.URL != ""))

	checks := make([]tui.Check, 0, len(results.Results))
	for _, r := range results.Results {
		check := tui.Check{Name: r.Tool.Name, Detail: r.Version}
		if !r.Found {
			check.Status = tui.CheckWarning
			if r.Tool.Required {
				check.Status = tui.CheckFailed
			}
			check.Detail = "not found, see " + r.Tool.InstallURL
		}
		checks = append(checks, check)
	}
	return checks
}

func checkZone(ctx context.Context, cfg *config.Config, log logr.Logger) tui.Check {
	check := tui.Check{Name: "cloudflare zone"}
	id, err := lookupZone(ctx, cfg, log)
	if err != nil {
		check.Status = tui.CheckFailed
		check.Detail = err.Error()
		return check
	}
	check.Detail = fmt.Sprintf("%s (%s)", cfg.DNS.ManagedDomain, id)
	return check
}
