// Package handlers implements the business logic for CLI commands.
//
// Handlers load the configuration, assemble the engine collaborators and
// drive a transaction. Construction goes through package-level factory
// variables so tests can replace the cluster-facing pieces.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/imamik/k8zenv/internal/addons"
	"github.com/imamik/k8zenv/internal/addons/helm"
	"github.com/imamik/k8zenv/internal/addons/k8sclient"
	"github.com/imamik/k8zenv/internal/config"
	"github.com/imamik/k8zenv/internal/metrics"
	"github.com/imamik/k8zenv/internal/util/retry"
)

// Factory function variables - can be replaced in tests.
var (
	findConfigFile = config.FindConfigFile
	loadConfigFile = config.LoadFile

	readKubeconfig = func(path string) ([]byte, error) {
		// #nosec G304
		return os.ReadFile(path)
	}
	newKubeClient = k8sclient.NewFromKubeconfig

	newApplier = func(kubeconfig []byte, kube k8sclient.Client, log logr.Logger) helm.UnitApplier {
		return helm.NewApplier(kubeconfig, kube, log)
	}

	isTerminal = func() bool {
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}

	stdout io.Writer = os.Stdout
)

// engineMetrics registers the collectors once per process on the
// controller-runtime registry.
var engineMetrics = sync.OnceValue(func() *metrics.Metrics {
	return metrics.New(ctrlmetrics.Registry)
})

// SetupLogging installs the process logger. Verbose enables development
// mode, which also prints V(1) messages.
func SetupLogging(verbose bool) {
	opts := zap.Options{Development: verbose || os.Getenv("DEBUG") == "true"}
	ctrllog.SetLogger(zap.New(zap.UseFlagOptions(&opts), zap.WriteTo(os.Stderr)))
}

func logger() logr.Logger {
	return ctrllog.Log.WithName("k8zenv")
}

// loadConfig loads the configuration from configPath, or from the nearest
// k8zenv.yaml when configPath is empty.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		found, err := findConfigFile()
		if err != nil {
			return nil, fmt.Errorf("no config file given and none found: %w", err)
		}
		configPath = found
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", configPath, err)
	}
	return cfg, nil
}

// clusterDeps holds the collaborators that talk to the cluster.
type clusterDeps struct {
	kube      k8sclient.Client
	deployer  *helm.Deployer
	addonOpts addons.Options
	metrics   *metrics.Metrics
	timeouts  *config.Timeouts
}

func newClusterDeps(cfg *config.Config, log logr.Logger) (*clusterDeps, error) {
	if cfg.Cluster.Kubeconfig == "" {
		return nil, errors.New("cluster.kubeconfig is required to reach the cluster")
	}
	kubeconfig, err := readKubeconfig(cfg.Cluster.Kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to read kubeconfig: %w", err)
	}
	kube, err := newKubeClient(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	timeouts := config.LoadTimeouts()
	m := engineMetrics()

	applier := newApplier(kubeconfig, kube, log)
	if a, ok := applier.(*helm.Applier); ok {
		a.DefaultTimeout = timeouts.ChartDefault
	}

	return &clusterDeps{
		kube: kube,
		deployer: &helm.Deployer{
			Applier:    applier,
			Log:        log,
			Metrics:    m,
			Sequential: cfg.Charts.Sequential,
		},
		addonOpts: addons.Options{
			Kube:         kube,
			Buckets:      addons.S3Buckets(log),
			Log:          log,
			Metrics:      m,
			SettlePeriod: timeouts.AdoptionSettle,
			Env:          chartEnv(cfg),
		},
		metrics:  m,
		timeouts: timeouts,
	}, nil
}

func (d *clusterDeps) retryOptions() []retry.Option {
	return []retry.Option{
		retry.WithMaxRetries(d.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(d.timeouts.RetryInitialDelay),
	}
}

// chartEnv returns the environment relevant to chart installation. It is
// attached to precondition errors for diagnosis.
func chartEnv(cfg *config.Config) map[string]string {
	env := map[string]string{"KUBECONFIG": cfg.Cluster.Kubeconfig}
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if strings.HasPrefix(key, "K8ZENV_") || strings.HasPrefix(key, "AWS_") {
			env[key] = value
		}
	}
	return env
}

// writeMetricsTextfile dumps the engine metrics in the text exposition
// format for the node-exporter textfile collector. Empty path is a no-op.
func writeMetricsTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, ctrlmetrics.Registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
