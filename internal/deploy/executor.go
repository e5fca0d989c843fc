// Package deploy applies environments to a Kubernetes cluster.
//
// Every service becomes a set of typed objects applied with Server-Side
// Apply into the environment namespace: a Deployment and Service for
// applications and containers, a StatefulSet and Service for databases
// running in the cluster, and an Ingress for routers. Pausing scales the
// workloads to zero and deleting removes the namespace.
package deploy

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/imamik/k8zenv/internal/addons/k8sclient"
	"github.com/imamik/k8zenv/internal/environment"
	"github.com/imamik/k8zenv/internal/progress"
	"github.com/imamik/k8zenv/internal/transaction"
)

const (
	// DefaultIngressClass is the class of the nginx-ingress chart.
	DefaultIngressClass = "nginx"
	FieldManager        = "k8zenv"
)

// KubeClient is the part of k8sclient.Client the executor needs.
type KubeClient interface {
	EnsureNamespace(ctx context.Context, name string) error
	ApplyManifests(ctx context.Context, manifests []byte, opts k8sclient.ApplyOptions) error
	DeleteNamespace(ctx context.Context, name string) error
}

// Executor implements transaction.EnvironmentExecutor against a cluster.
type Executor struct {
	Kube        KubeClient
	Listeners   progress.Listeners
	Log         logr.Logger
	ExecutionID string

	// IngressClass defaults to DefaultIngressClass.
	IngressClass string
	// ClusterIssuer enables TLS on router ingresses through cert-manager.
	ClusterIssuer string
}

var _ transaction.EnvironmentExecutor = (*Executor)(nil)

// Apply runs action on every service of env. Services are handled in order:
// databases, applications, containers, routers. A failure stops the run and
// returns a *transaction.ExecutorError listing the services completed.
func (e *Executor) Apply(ctx context.Context, env *environment.Environment, action environment.Action) error {
	log := e.Log.WithValues("environment", env.ID, "namespace", env.Namespace(), "action", action.String())

	switch action {
	case environment.ActionCreate, environment.ActionPause:
		return e.apply(ctx, env, action, log)
	case environment.ActionDelete:
		return e.delete(ctx, env, log)
	case environment.ActionNothing:
		return nil
	default:
		return fmt.Errorf("unsupported action %s", action)
	}
}

func (e *Executor) apply(ctx context.Context, env *environment.Environment, action environment.Action, log logr.Logger) error {
	if err := e.Kube.EnsureNamespace(ctx, env.Namespace()); err != nil {
		return transaction.NewExecutorError(err)
	}

	r := &renderer{
		env:           env,
		paused:        action == environment.ActionPause,
		ingressClass:  withDefault(e.IngressClass, DefaultIngressClass),
		clusterIssuer: e.ClusterIssuer,
	}

	var processed []uuid.UUID
	for _, svc := range orderedServices(env) {
		if err := ctx.Err(); err != nil {
			return transaction.NewExecutorError(err, processed...)
		}
		if svc.Action() == environment.ActionNothing {
			processed = append(processed, svc.LongID())
			continue
		}

		e.notify(action, progress.OutcomeInProgress, svc, progress.LevelInfo, "")

		if db, ok := svc.(*environment.Database); ok && db.Mode == environment.DatabaseModeManaged {
			log.Info("skipping managed database", "database", db.Name())
			e.notify(action, progress.OutcomeSuccess, svc, progress.LevelWarning, "managed databases are provisioned outside the cluster")
			processed = append(processed, svc.LongID())
			continue
		}

		if err := e.applyService(ctx, r, svc); err != nil {
			return transaction.NewExecutorError(fmt.Errorf("failed to %s %s %s: %w", action, svc.Kind(), svc.Name(), err), processed...)
		}
		svc.Logger().V(1).Info("service applied", "action", action.String())
		e.notify(action, progress.OutcomeSuccess, svc, progress.LevelInfo, "")
		processed = append(processed, svc.LongID())
	}

	log.Info("environment applied", "services", len(processed))
	return nil
}

func (e *Executor) applyService(ctx context.Context, r *renderer, svc environment.Service) error {
	objs, err := r.objects(svc)
	if err != nil {
		return err
	}
	if len(objs) == 0 {
		return nil
	}
	manifests, err := marshal(objs)
	if err != nil {
		return err
	}
	return e.Kube.ApplyManifests(ctx, manifests, k8sclient.ApplyOptions{
		FieldManager:     FieldManager,
		Force:            true,
		DefaultNamespace: r.env.Namespace(),
	})
}

// delete removes the namespace, which takes every service with it.
func (e *Executor) delete(ctx context.Context, env *environment.Environment, log logr.Logger) error {
	services := orderedServices(env)
	for _, svc := range services {
		e.notify(environment.ActionDelete, progress.OutcomeInProgress, svc, progress.LevelInfo, "")
	}

	if err := e.Kube.DeleteNamespace(ctx, env.Namespace()); err != nil {
		return transaction.NewExecutorError(err)
	}

	for _, svc := range services {
		e.notify(environment.ActionDelete, progress.OutcomeSuccess, svc, progress.LevelInfo, "")
	}
	log.Info("environment namespace deleted")
	return nil
}

func (e *Executor) notify(action environment.Action, outcome progress.Outcome, svc environment.Service, level progress.Level, msg string) {
	e.Listeners.Notify(action, outcome, progress.NewInfo(svc, level, msg, e.ExecutionID))
}

// orderedServices lists databases, applications, containers then routers so
// that routed services exist before their ingress.
func orderedServices(env *environment.Environment) []environment.Service {
	services := make([]environment.Service, 0, len(env.Databases)+len(env.Applications)+len(env.Containers)+len(env.Routers))
	for _, d := range env.Databases {
		services = append(services, d)
	}
	for _, a := range env.Applications {
		services = append(services, a)
	}
	for _, c := range env.Containers {
		services = append(services, c)
	}
	for _, r := range env.Routers {
		services = append(services, r)
	}
	return services
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
