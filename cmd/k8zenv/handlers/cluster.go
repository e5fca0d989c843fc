package handlers

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/imamik/k8zenv/internal/addons"
	"github.com/imamik/k8zenv/internal/build"
	"github.com/imamik/k8zenv/internal/build/docker"
	"github.com/imamik/k8zenv/internal/build/oci"
	"github.com/imamik/k8zenv/internal/cluster"
	"github.com/imamik/k8zenv/internal/config"
	"github.com/imamik/k8zenv/internal/deploy"
	"github.com/imamik/k8zenv/internal/environment"
	"github.com/imamik/k8zenv/internal/platform/cloudflare"
	"github.com/imamik/k8zenv/internal/progress"
	"github.com/imamik/k8zenv/internal/transaction"
	"github.com/imamik/k8zenv/internal/ui/tui"
	"github.com/imamik/k8zenv/internal/util/retry"
)

// Factory function variables for cluster commands - can be replaced in tests.
var (
	newRegistry = func(cfg config.RegistryConfig, log logr.Logger, opts ...retry.Option) (build.ContainerRegistry, error) {
		reg, err := oci.New(cfg, log, opts...)
		if err != nil {
			return nil, err
		}
		return reg, nil
	}

	runTUI = func(ctx context.Context, m tui.Model, op tui.Operation) error {
		return tui.Run(ctx, m, op)
	}

	confirmDestroy = func(ctx context.Context, clusterName string) (bool, error) {
		confirmed := false
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Remove every chart from cluster %s?", clusterName)).
				Description("Workloads relying on them will stop working.").
				Affirmative("Destroy").
				Negative("Cancel").
				Value(&confirmed),
		))
		err := form.RunWithContext(ctx)
		return confirmed, err
	}

	confirmUndeploy = func(ctx context.Context, namespace string) (bool, error) {
		confirmed := false
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete namespace %s?", namespace)).
				Description("Every service of the environment and its data is removed.").
				Affirmative("Undeploy").
				Negative("Cancel").
				Value(&confirmed),
		))
		err := form.RunWithContext(ctx)
		return confirmed, err
	}

	// cleanupDNS removes the records external-dns created for the cluster.
	cleanupDNS = func(ctx context.Context, cfg *config.Config, log logr.Logger) (int, error) {
		client := cloudflare.NewClient(cfg.DNS.Cloudflare.APIToken, log)
		return client.CleanupOwnedRecords(ctx, cfg.DNS.ManagedDomain, cfg.Cluster.ID)
	}
)

// RunOptions controls how install and destroy report progress.
type RunOptions struct {
	// NoTUI forces plain log output even on a terminal.
	NoTUI bool
	// MetricsTextfile receives the engine metrics when set.
	MetricsTextfile string
	// Yes skips the destroy confirmation.
	Yes bool
	// KeepDNS leaves the external-dns records in place on destroy.
	KeepDNS bool
	// ClusterIssuer enables TLS on the ingresses of environment routers.
	ClusterIssuer string
}

// Install installs or upgrades the cluster charts level by level.
func Install(ctx context.Context, configPath string, opts RunOptions) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	return runTransaction(ctx, cfg, "install", opts, (*transaction.Transaction).CreateKubernetes)
}

// Destroy uninstalls the cluster charts in reverse level order.
func Destroy(ctx context.Context, configPath string, opts RunOptions) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if !opts.Yes {
		if !isTerminal() {
			return errors.New("refusing to destroy without confirmation, pass --yes")
		}
		confirmed, err := confirmDestroy(ctx, cfg.Cluster.Name)
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !confirmed {
			fmt.Fprintln(stdout, "Destroy canceled.")
			return nil
		}
	}
	if err := runTransaction(ctx, cfg, "destroy", opts, (*transaction.Transaction).DeleteKubernetes); err != nil {
		return err
	}
	if opts.KeepDNS || cfg.DNS.Provider != config.DNSProviderCloudflare {
		return nil
	}

	// external-dns is gone at this point, so nothing recreates the records.
	log := logger().WithValues("cluster", cfg.Cluster.Name, "domain", cfg.DNS.ManagedDomain)
	removed, err := cleanupDNS(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("charts removed but DNS cleanup failed: %w", err)
	}
	fmt.Fprintf(stdout, "Removed %d DNS records from %s.\n", removed, cfg.DNS.ManagedDomain)
	return nil
}

// runTransaction builds a transaction against the configured cluster, lets
// push queue its steps and commits it.
func runTransaction(ctx context.Context, cfg *config.Config, action string, opts RunOptions, push func(*transaction.Transaction)) error {
	useTUI := !opts.NoTUI && isTerminal()
	log := logger().WithValues("cluster", cfg.Cluster.Name, "action", action)
	if useTUI {
		log = logr.Discard()
	}

	deps, err := newClusterDeps(cfg, log)
	if err != nil {
		return err
	}

	op := func(ctx context.Context, send func(tea.Msg)) error {
		deps.deployer.OnUnitStart = func(level int, name string) {
			send(tui.UnitMsg{Level: level, Name: name})
		}
		deps.deployer.OnUnitDone = func(level int, name string, err error) {
			send(tui.UnitMsg{Level: level, Name: name, Done: true, Err: err})
		}

		tx, err := newTransaction(cfg, deps, log, opts, func(step transaction.StepName) {
			send(tui.StepMsg{Step: step})
		})
		if err != nil {
			return err
		}
		push(tx)
		return resultError(action, tx.Commit(ctx))
	}

	if useTUI {
		err = runTUI(ctx, tui.NewModel(cfg.Cluster.Name, action, nil), op)
	} else {
		err = op(ctx, func(tea.Msg) {})
	}

	if mErr := writeMetricsTextfile(opts.MetricsTextfile); mErr != nil {
		err = errors.Join(err, mErr)
	}
	if err == nil {
		log.Info("done")
	}
	return err
}

func newTransaction(cfg *config.Config, deps *clusterDeps, log logr.Logger, opts RunOptions, onStep func(transaction.StepName)) (*transaction.Transaction, error) {
	executionID := uuid.NewString()
	listeners := progress.Listeners{
		progress.NewLogListener(log),
		&progress.MetricsListener{Metrics: deps.metrics},
	}

	builder, err := newBuilder(cfg, deps, log, listeners, executionID)
	if err != nil {
		return nil, err
	}

	bootstrapper := cluster.NewBootstrapper(
		cluster.ConfigPlanner(cfg, deps.addonOpts),
		deps.deployer,
		log,
		deps.retryOptions()...,
	)

	return transaction.New(transaction.Config{
		Kubernetes: bootstrapper,
		Builder:    builder,
		Executor: &deploy.Executor{
			Kube:          deps.kube,
			Listeners:     listeners,
			Log:           log,
			ExecutionID:   executionID,
			ClusterIssuer: opts.ClusterIssuer,
		},
		Listeners:    listeners,
		Log:          log,
		ExecutionID:  executionID,
		Metrics:      deps.metrics,
		OnStepChange: onStep,
	})
}

// newBuilder returns an image pipeline when a registry is configured.
func newBuilder(cfg *config.Config, deps *clusterDeps, log logr.Logger, listeners progress.Listeners, executionID string) (transaction.Builder, error) {
	if cfg.Registry.URL == "" {
		return unconfiguredBuilder{}, nil
	}
	reg, err := newRegistry(cfg.Registry, log, deps.retryOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry client: %w", err)
	}
	return &build.Pipeline{
		Registry:         reg,
		Platform:         docker.NewBuilder(deps.timeouts.Build, log),
		Listeners:        listeners,
		Log:              log,
		RetentionSeconds: cfg.Advanced.RegistryImageRetentionSeconds,
		ExecutionID:      executionID,
		Metrics:          deps.metrics,
	}, nil
}

// resultError converts a transaction result into the command error.
// Precondition errors are reported without their environment.
func resultError(action string, res transaction.Result) error {
	switch {
	case res.IsOk():
		return nil
	case res.IsCanceled():
		return fmt.Errorf("%s canceled", action)
	}

	var pre *addons.PreconditionError
	if errors.As(res.Err, &pre) {
		return fmt.Errorf("%s failed: %s", action, pre.SafeMessage())
	}
	return fmt.Errorf("%s failed: %w", action, res.Err)
}

// unconfiguredBuilder fails only when there is something to build.
type unconfiguredBuilder struct{}

func (unconfiguredBuilder) BuildAndPush(_ context.Context, apps []*environment.Application, _ build.Options, _ func() bool) error {
	for _, app := range apps {
		if app.Action() == environment.ActionCreate {
			return errors.New("no container registry configured")
		}
	}
	return nil
}
