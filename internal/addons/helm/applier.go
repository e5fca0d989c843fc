package helm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/go-logr/logr"
	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/release"
	"helm.sh/helm/v3/pkg/repo"
	"helm.sh/helm/v3/pkg/storage/driver"

	"github.com/imamik/k8zenv/internal/addons/k8sclient"
)

// FieldManager owns the fields applied outside helm releases.
const FieldManager = "k8zenv"

// ConfigFactory returns the helm action configuration for a namespace.
type ConfigFactory func(namespace string) (*action.Configuration, error)

// KubeApplier applies raw manifests. k8sclient.Client implements it.
type KubeApplier interface {
	ApplyManifests(ctx context.Context, manifests []byte, opts k8sclient.ApplyOptions) error
	RefreshDiscovery(ctx context.Context) error
}

// Applier installs, upgrades and uninstalls single units with the Helm SDK.
type Applier struct {
	configFor ConfigFactory
	kube      KubeApplier
	getters   getter.Providers
	log       logr.Logger

	// DefaultTimeout replaces DefaultTimeoutSeconds for units that do not
	// set a timeout. Zero keeps DefaultTimeoutSeconds.
	DefaultTimeout time.Duration
}

// NewApplier creates an Applier talking to the cluster in kubeconfig.
func NewApplier(kubeconfig []byte, kube KubeApplier, log logr.Logger) *Applier {
	debug := log.WithName("helm").V(2)
	configFor := func(namespace string) (*action.Configuration, error) {
		cfg := new(action.Configuration)
		restGetter := NewInMemoryRESTClientGetter(kubeconfig, namespace)
		logf := func(format string, v ...any) { debug.Info(fmt.Sprintf(format, v...)) }
		if err := cfg.Init(restGetter, namespace, "secret", logf); err != nil {
			return nil, fmt.Errorf("failed to initialize helm action config: %w", err)
		}
		return cfg, nil
	}
	return NewApplierWithConfig(configFor, kube, getter.All(cli.New()), log)
}

// NewApplierWithConfig creates an Applier from explicit collaborators.
func NewApplierWithConfig(configFor ConfigFactory, kube KubeApplier, getters getter.Providers, log logr.Logger) *Applier {
	return &Applier{configFor: configFor, kube: kube, getters: getters, log: log}
}

func (a *Applier) timeout(c ChartInfo) time.Duration {
	if c.TimeoutSeconds <= 0 && a.DefaultTimeout > 0 {
		return a.DefaultTimeout
	}
	return c.Timeout()
}

// Apply performs the unit action.
func (a *Applier) Apply(ctx context.Context, c ChartInfo) error {
	if err := c.Validate(); err != nil {
		return err
	}

	cfg, err := a.configFor(c.Namespace)
	if err != nil {
		return err
	}

	if c.Action == ActionDestroy {
		return a.uninstall(cfg, c)
	}
	return a.install(ctx, cfg, c)
}

func (a *Applier) install(ctx context.Context, cfg *action.Configuration, c ChartInfo) error {
	log := a.log.WithValues("chart", c.Name, "namespace", c.Namespace)

	if c.CRDsUpdate != nil {
		if err := a.updateCRDs(ctx, c); err != nil {
			return err
		}
	}

	values, err := c.ResolveValues()
	if err != nil {
		return err
	}

	ch, err := a.loadChart(c)
	if err != nil {
		return fmt.Errorf("chart %s: failed to load chart: %w", c.Name, err)
	}

	current, err := lastRelease(cfg, c.Name)
	if err != nil {
		return err
	}

	if current != nil && requiresRestart(current, c.LastBreakingVersionRequiringRestart) {
		log.Info("uninstalling release below breaking version",
			"installed", current.Chart.Metadata.Version,
			"breaking", c.LastBreakingVersionRequiringRestart.String())
		if err := a.uninstall(cfg, c); err != nil {
			return err
		}
		current = nil
	}

	if current == nil {
		install := action.NewInstall(cfg)
		install.ReleaseName = c.Name
		install.Namespace = c.Namespace
		install.CreateNamespace = true
		install.Wait = c.Wait
		install.Atomic = c.Atomic
		install.Timeout = a.timeout(c)
		if _, err := install.RunWithContext(ctx, ch, values); err != nil {
			return fmt.Errorf("chart %s: install failed: %w", c.Name, err)
		}
		log.V(1).Info("release installed")
		return nil
	}

	upgrade := action.NewUpgrade(cfg)
	upgrade.Namespace = c.Namespace
	upgrade.Wait = c.Wait
	upgrade.Atomic = c.Atomic
	upgrade.Timeout = a.timeout(c)
	upgrade.ReuseValues = false
	if _, err := upgrade.RunWithContext(ctx, c.Name, ch, values); err != nil {
		return fmt.Errorf("chart %s: upgrade failed: %w", c.Name, err)
	}
	log.V(1).Info("release upgraded")
	return nil
}

func (a *Applier) uninstall(cfg *action.Configuration, c ChartInfo) error {
	current, err := lastRelease(cfg, c.Name)
	if err != nil {
		return err
	}
	if current == nil {
		return nil
	}

	uninstall := action.NewUninstall(cfg)
	uninstall.Wait = c.Wait
	uninstall.Timeout = a.timeout(c)
	if _, err := uninstall.Run(c.Name); err != nil {
		return fmt.Errorf("chart %s: uninstall failed: %w", c.Name, err)
	}
	a.log.V(1).Info("release uninstalled", "chart", c.Name, "namespace", c.Namespace)
	return nil
}

// InstalledVersion returns the chart version of the latest release, or nil
// when the release does not exist.
func (a *Applier) InstalledVersion(c ChartInfo) (*semver.Version, error) {
	cfg, err := a.configFor(c.Namespace)
	if err != nil {
		return nil, err
	}
	rel, err := lastRelease(cfg, c.Name)
	if err != nil || rel == nil {
		return nil, err
	}
	return releaseVersion(rel)
}

func lastRelease(cfg *action.Configuration, name string) (*release.Release, error) {
	history := action.NewHistory(cfg)
	history.Max = 1
	releases, err := history.Run(name)
	if errors.Is(err, driver.ErrReleaseNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("chart %s: failed to read release history: %w", name, err)
	}
	if len(releases) == 0 {
		return nil, nil
	}

	latest := releases[0]
	for _, r := range releases[1:] {
		if r.Version > latest.Version {
			latest = r
		}
	}
	return latest, nil
}

func releaseVersion(rel *release.Release) (*semver.Version, error) {
	if rel.Chart == nil || rel.Chart.Metadata == nil {
		return nil, fmt.Errorf("release %s has no chart metadata", rel.Name)
	}
	v, err := semver.NewVersion(rel.Chart.Metadata.Version)
	if err != nil {
		return nil, fmt.Errorf("release %s: invalid chart version %q: %w", rel.Name, rel.Chart.Metadata.Version, err)
	}
	return v, nil
}

func requiresRestart(rel *release.Release, breaking *semver.Version) bool {
	if breaking == nil {
		return false
	}
	installed, err := releaseVersion(rel)
	if err != nil {
		return true
	}
	return installed.LessThan(breaking)
}

func (a *Applier) loadChart(c ChartInfo) (*chart.Chart, error) {
	if c.Path != "" {
		return loader.Load(c.Path)
	}

	chartURL, err := repo.FindChartInRepoURL(c.Repository, c.Chart, c.Version, "", "", "", a.getters)
	if err != nil {
		return nil, fmt.Errorf("failed to find chart %s in repo %s: %w", c.Chart, c.Repository, err)
	}

	archive, err := a.fetch(chartURL)
	if err != nil {
		return nil, err
	}
	return loader.LoadArchive(archive)
}

// fetch downloads url with the getter registered for its scheme.
func (a *Applier) fetch(rawURL string) (*bytes.Buffer, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	g, err := a.getters.ByScheme(u.Scheme)
	if err != nil {
		return nil, fmt.Errorf("no getter for %s: %w", rawURL, err)
	}

	buf, err := g.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", rawURL, err)
	}
	return buf, nil
}
