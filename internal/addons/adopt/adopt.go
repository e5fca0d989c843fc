package adopt

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	appsv1 "k8s.io/api/apps/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/imamik/k8zenv/internal/addons/k8sclient"
	"github.com/imamik/k8zenv/internal/metrics"
	"github.com/imamik/k8zenv/internal/util/retry"
)

const (
	AnnotationReleaseName      = "meta.helm.sh/release-name"
	AnnotationReleaseNamespace = "meta.helm.sh/release-namespace"
	LabelManagedBy             = "app.kubernetes.io/managed-by"
	ManagedByHelm              = "Helm"

	// DefaultSettlePeriod is a fixed wait, not a readiness check.
	DefaultSettlePeriod = 30 * time.Second
)

// KubeClient is the subset of k8sclient.Client the protocol needs.
type KubeClient interface {
	GetDaemonSet(ctx context.Context, namespace, name string) (*appsv1.DaemonSet, error)
	ListDaemonSets(ctx context.Context, namespace, selector string) ([]appsv1.DaemonSet, error)
	DeleteCrashLoopingPods(ctx context.Context, namespace, selector string) (int, error)
	Annotate(ctx context.Context, ref k8sclient.ResourceRef, key, value string) error
	Label(ctx context.Context, ref k8sclient.ResourceRef, key, value string) error
}

// Adopter runs the adoption protocol for one set of same-named resources.
type Adopter struct {
	Client  KubeClient
	Log     logr.Logger
	Metrics *metrics.Metrics

	// ResourceName is the name shared by every adopted resource.
	ResourceName string
	// Namespace holds the daemon set and the namespaced kinds.
	Namespace string
	// Kinds are rewritten in this order.
	Kinds []k8sclient.ResourceKind

	ReleaseName      string
	ReleaseNamespace string

	// LegacyLabelKey and LegacyLabelValue identify the resource's pods and
	// the daemon set selector of the out-of-band install.
	LegacyLabelKey   string
	LegacyLabelValue string

	SettlePeriod time.Duration
	// Sleep waits for the settle period. Nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultKinds are the kinds a node-agent daemon set install creates.
func DefaultKinds() []k8sclient.ResourceKind {
	return []k8sclient.ResourceKind{
		k8sclient.KindDaemonSet,
		k8sclient.KindClusterRole,
		k8sclient.KindClusterRoleBinding,
		k8sclient.KindServiceAccount,
	}
}

// LegacySelector matches the resource's pods and daemon set.
func (a *Adopter) LegacySelector() string {
	return fmt.Sprintf("%s=%s", a.LegacyLabelKey, a.LegacyLabelValue)
}

// ManagedSelector matches the daemon set once it is owned by helm.
func (a *Adopter) ManagedSelector() string {
	return fmt.Sprintf("%s,%s=%s", a.LegacySelector(), LabelManagedBy, ManagedByHelm)
}

// LegacyMatchLabels reports whether the live daemon set selects its pods with
// the legacy label. The answer is fed into the chart values so the release
// keeps the immutable selector. A missing daemon set has no legacy labels.
func (a *Adopter) LegacyMatchLabels(ctx context.Context) (bool, error) {
	ds, err := a.Client.GetDaemonSet(ctx, a.Namespace, a.ResourceName)
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if ds.Spec.Selector == nil {
		return false, nil
	}
	return ds.Spec.Selector.MatchLabels[a.LegacyLabelKey] == a.LegacyLabelValue, nil
}

// NeedsAdoption reports whether no helm-managed daemon set matches the
// legacy label. A failed query is an error, never a guess.
func (a *Adopter) NeedsAdoption(ctx context.Context) (bool, error) {
	items, err := a.Client.ListDaemonSets(ctx, a.Namespace, a.ManagedSelector())
	if err != nil {
		return false, fmt.Errorf("failed to check ownership of %s: %w", a.ResourceName, err)
	}
	return len(items) == 0, nil
}

// Run executes the protocol. Errors are wrapped with retry.Fatal because the
// live resource is in an unknown ownership state after a partial rewrite.
func (a *Adopter) Run(ctx context.Context) error {
	log := a.Log.WithValues("resource", a.ResourceName, "namespace", a.Namespace, "release", a.ReleaseName)

	if n, err := a.Client.DeleteCrashLoopingPods(ctx, a.Namespace, a.LegacySelector()); err != nil {
		log.Info("crash-looping pod cleanup failed", "error", err.Error())
	} else if n > 0 {
		log.Info("deleted crash-looping pods", "count", n)
	}

	needed, err := a.NeedsAdoption(ctx)
	if err != nil {
		a.Metrics.RecordAdoption(a.ResourceName, "failed")
		return retry.Fatal(err)
	}
	if !needed {
		log.V(1).Info("already managed by helm")
		a.Metrics.RecordAdoption(a.ResourceName, "skipped")
		return nil
	}

	log.Info("adopting resources into helm release", "kinds", len(a.Kinds))
	for _, kind := range a.Kinds {
		if err := a.rewrite(ctx, kind); err != nil {
			a.Metrics.RecordAdoption(a.ResourceName, "failed")
			return retry.Fatal(fmt.Errorf("failed to adopt %s: %w", a.ResourceName, err))
		}
	}

	log.Info("waiting for the controller to settle", "period", a.settlePeriod())
	if err := a.sleep(ctx, a.settlePeriod()); err != nil {
		a.Metrics.RecordAdoption(a.ResourceName, "failed")
		return retry.Fatal(fmt.Errorf("settle wait for %s interrupted: %w", a.ResourceName, err))
	}

	a.Metrics.RecordAdoption(a.ResourceName, "adopted")
	return nil
}

func (a *Adopter) rewrite(ctx context.Context, kind k8sclient.ResourceKind) error {
	ref := k8sclient.ResourceRef{Kind: kind, Name: a.ResourceName}
	if kind == k8sclient.KindDaemonSet || kind == k8sclient.KindServiceAccount {
		ref.Namespace = a.Namespace
	}

	if err := a.Client.Annotate(ctx, ref, AnnotationReleaseName, a.ReleaseName); err != nil {
		return err
	}
	if err := a.Client.Annotate(ctx, ref, AnnotationReleaseNamespace, a.ReleaseNamespace); err != nil {
		return err
	}
	return a.Client.Label(ctx, ref, LabelManagedBy, ManagedByHelm)
}

func (a *Adopter) settlePeriod() time.Duration {
	if a.SettlePeriod > 0 {
		return a.SettlePeriod
	}
	return DefaultSettlePeriod
}

func (a *Adopter) sleep(ctx context.Context, d time.Duration) error {
	if a.Sleep != nil {
		return a.Sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
