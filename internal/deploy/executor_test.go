package deploy

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	networkingv1 "k8s.io/api/networking/v1"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/imamik/k8zenv/internal/addons/k8sclient"
	"github.com/imamik/k8zenv/internal/environment"
	"github.com/imamik/k8zenv/internal/progress"
	"github.com/imamik/k8zenv/internal/transaction"
)

type applyCall struct {
	manifests string
	opts      k8sclient.ApplyOptions
}

type fakeKube struct {
	namespaces []string
	deleted    []string
	applied    []applyCall

	ensureErr error
	deleteErr error
	// failOn fails ApplyManifests when the manifests contain it.
	failOn string
}

func (f *fakeKube) EnsureNamespace(_ context.Context, name string) error {
	f.namespaces = append(f.namespaces, name)
	return f.ensureErr
}

func (f *fakeKube) ApplyManifests(_ context.Context, manifests []byte, opts k8sclient.ApplyOptions) error {
	if f.failOn != "" && strings.Contains(string(manifests), f.failOn) {
		return errors.New("admission webhook denied the request")
	}
	f.applied = append(f.applied, applyCall{manifests: string(manifests), opts: opts})
	return nil
}

func (f *fakeKube) DeleteNamespace(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return f.deleteErr
}

func id(prefix string) uuid.UUID {
	return uuid.MustParse(prefix + "-0000-4000-8000-000000000000")
}

func testEnvironment(action environment.Action) *environment.Environment {
	env := environment.New(id("aaaaaaaa"), id("bbbbbbbb"), id("cccccccc"), action)
	identity := func(prefix, name string) environment.Identity {
		return environment.Identity{UUID: id(prefix), DisplayName: name, ServiceAction: action}
	}
	env.Databases = []*environment.Database{
		{Identity: identity("dddddddd", "db"), Engine: "postgresql", Version: "16"},
	}
	env.Applications = []*environment.Application{{
		Identity: identity("11111111", "api"),
		Build: &environment.Build{Image: environment.Image{
			RegistryURL: "ghcr.io/example", Name: "app-z11111111", Tag: "abc123",
		}},
		Ports:        []environment.Port{{Number: 8080, PubliclyAccessible: true}},
		MinInstances: 1,
		MaxInstances: 3,
	}}
	env.Containers = []*environment.Container{{
		Identity: identity("22222222", "cache"),
		Image:    environment.Image{RegistryURL: "docker.io", Name: "redis", Tag: "7"},
		Ports:    []environment.Port{{Number: 6379}},
	}}
	env.Routers = []*environment.Router{{
		Identity:      identity("33333333", "edge"),
		DefaultDomain: "api.example.com",
		Routes:        []environment.Route{{Path: "/", ServiceID: "z11111111"}},
	}}
	return env
}

func documents(t *testing.T, manifests string) []map[string]any {
	t.Helper()
	var docs []map[string]any
	for _, raw := range strings.Split(manifests, "---\n") {
		var doc map[string]any
		require.NoError(t, sigsyaml.Unmarshal([]byte(raw), &doc))
		docs = append(docs, doc)
	}
	return docs
}

func kinds(t *testing.T, manifests string) []string {
	t.Helper()
	var out []string
	for _, doc := range documents(t, manifests) {
		out = append(out, doc["kind"].(string))
	}
	return out
}

func TestExecutor_Create(t *testing.T) {
	t.Parallel()

	kube := &fakeKube{}
	rec := &progress.Recorder{}
	exec := &Executor{Kube: kube, Listeners: progress.Listeners{rec}, ExecutionID: "exec-1"}
	env := testEnvironment(environment.ActionCreate)

	require.NoError(t, exec.Apply(context.Background(), env, environment.ActionCreate))

	assert.Equal(t, []string{"zbbbbbbbb-zaaaaaaaa"}, kube.namespaces)
	require.Len(t, kube.applied, 4)
	assert.Equal(t, []string{"StatefulSet", "Service"}, kinds(t, kube.applied[0].manifests))
	assert.Equal(t, []string{"Deployment", "Service", "HorizontalPodAutoscaler"}, kinds(t, kube.applied[1].manifests))
	assert.Equal(t, []string{"Deployment", "Service"}, kinds(t, kube.applied[2].manifests))
	assert.Equal(t, []string{"Ingress"}, kinds(t, kube.applied[3].manifests))

	for _, call := range kube.applied {
		assert.Equal(t, k8sclient.ApplyOptions{
			FieldManager:     FieldManager,
			Force:            true,
			DefaultNamespace: "zbbbbbbbb-zaaaaaaaa",
		}, call.opts)
	}

	var deploy appsv1.Deployment
	require.NoError(t, sigsyaml.Unmarshal([]byte(strings.Split(kube.applied[1].manifests, "---\n")[0]), &deploy))
	assert.Equal(t, "z11111111", deploy.Name)
	assert.Equal(t, int32(1), *deploy.Spec.Replicas)
	assert.Equal(t, "ghcr.io/example/app-z11111111:abc123", deploy.Spec.Template.Spec.Containers[0].Image)
	assert.Equal(t, int32(600), *deploy.Spec.ProgressDeadlineSeconds)
	assert.Equal(t, "zaaaaaaaa", deploy.Labels[LabelEnvironment])

	events := rec.Events()
	require.Len(t, events, 8)
	for i, ev := range events {
		assert.Equal(t, environment.ActionCreate, ev.Action)
		assert.Equal(t, "exec-1", ev.Info.ExecutionID)
		if i%2 == 0 {
			assert.Equal(t, progress.OutcomeInProgress, ev.Outcome)
		} else {
			assert.Equal(t, progress.OutcomeSuccess, ev.Outcome)
		}
	}
	assert.Equal(t, environment.KindDatabase, events[0].Info.Scope.Kind)
	assert.Equal(t, environment.KindRouter, events[7].Info.Scope.Kind)
}

func TestExecutor_RouterIngress(t *testing.T) {
	t.Parallel()

	kube := &fakeKube{}
	exec := &Executor{Kube: kube, ClusterIssuer: "letsencrypt"}
	env := testEnvironment(environment.ActionCreate)
	env.Routers[0].CustomDomains = []string{"www.example.com"}

	require.NoError(t, exec.Apply(context.Background(), env, environment.ActionCreate))

	var ingress networkingv1.Ingress
	require.NoError(t, sigsyaml.Unmarshal([]byte(kube.applied[3].manifests), &ingress))
	assert.Equal(t, DefaultIngressClass, *ingress.Spec.IngressClassName)
	assert.Equal(t, "letsencrypt", ingress.Annotations["cert-manager.io/cluster-issuer"])
	require.Len(t, ingress.Spec.Rules, 2)
	assert.Equal(t, "api.example.com", ingress.Spec.Rules[0].Host)
	assert.Equal(t, "www.example.com", ingress.Spec.Rules[1].Host)

	backend := ingress.Spec.Rules[0].HTTP.Paths[0].Backend.Service
	assert.Equal(t, "z11111111", backend.Name)
	assert.Equal(t, int32(8080), backend.Port.Number)
	assert.Equal(t, []networkingv1.IngressTLS{{
		Hosts:      []string{"api.example.com", "www.example.com"},
		SecretName: "z33333333-tls",
	}}, ingress.Spec.TLS)
}

func TestExecutor_Pause(t *testing.T) {
	t.Parallel()

	kube := &fakeKube{}
	rec := &progress.Recorder{}
	exec := &Executor{Kube: kube, Listeners: progress.Listeners{rec}}
	env := testEnvironment(environment.ActionPause)

	require.NoError(t, exec.Apply(context.Background(), env, environment.ActionPause))

	// the router renders nothing while paused
	require.Len(t, kube.applied, 3)
	var set appsv1.StatefulSet
	require.NoError(t, sigsyaml.Unmarshal([]byte(strings.Split(kube.applied[0].manifests, "---\n")[0]), &set))
	assert.Equal(t, int32(0), *set.Spec.Replicas)

	assert.Equal(t, []string{"Deployment", "Service"}, kinds(t, kube.applied[1].manifests))
	var deploy appsv1.Deployment
	require.NoError(t, sigsyaml.Unmarshal([]byte(strings.Split(kube.applied[1].manifests, "---\n")[0]), &deploy))
	assert.Equal(t, int32(0), *deploy.Spec.Replicas)

	events := rec.Events()
	require.Len(t, events, 8)
	assert.Equal(t, environment.ActionPause, events[7].Action)
	assert.Equal(t, progress.OutcomeSuccess, events[7].Outcome)
}

func TestExecutor_Delete(t *testing.T) {
	t.Parallel()

	kube := &fakeKube{}
	rec := &progress.Recorder{}
	exec := &Executor{Kube: kube, Listeners: progress.Listeners{rec}}
	env := testEnvironment(environment.ActionDelete)

	require.NoError(t, exec.Apply(context.Background(), env, environment.ActionDelete))

	assert.Equal(t, []string{"zbbbbbbbb-zaaaaaaaa"}, kube.deleted)
	assert.Empty(t, kube.applied)
	events := rec.Events()
	require.Len(t, events, 8)
	assert.Equal(t, progress.OutcomeInProgress, events[0].Outcome)
	assert.Equal(t, progress.OutcomeSuccess, events[7].Outcome)
}

func TestExecutor_DeleteFailure(t *testing.T) {
	t.Parallel()

	kube := &fakeKube{deleteErr: errors.New("forbidden")}
	exec := &Executor{Kube: kube}

	err := exec.Apply(context.Background(), testEnvironment(environment.ActionDelete), environment.ActionDelete)

	var execErr *transaction.ExecutorError
	require.ErrorAs(t, err, &execErr)
	assert.Empty(t, execErr.Processed)
}

func TestExecutor_FailureReportsProcessed(t *testing.T) {
	t.Parallel()

	kube := &fakeKube{failOn: "kind: Ingress"}
	rec := &progress.Recorder{}
	exec := &Executor{Kube: kube, Listeners: progress.Listeners{rec}}
	env := testEnvironment(environment.ActionCreate)

	err := exec.Apply(context.Background(), env, environment.ActionCreate)

	var execErr *transaction.ExecutorError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, err.Error(), "failed to create router edge")
	assert.Equal(t, map[uuid.UUID]struct{}{
		id("dddddddd"): {},
		id("11111111"): {},
		id("22222222"): {},
	}, execErr.Processed)

	// the failing router is reported by the transaction, not the executor
	last := rec.Events()[len(rec.Events())-1]
	assert.Equal(t, progress.OutcomeInProgress, last.Outcome)
	assert.Equal(t, environment.KindRouter, last.Info.Scope.Kind)
}

func TestExecutor_NamespaceFailure(t *testing.T) {
	t.Parallel()

	kube := &fakeKube{ensureErr: errors.New("quota exceeded")}
	exec := &Executor{Kube: kube}

	err := exec.Apply(context.Background(), testEnvironment(environment.ActionCreate), environment.ActionCreate)

	var execErr *transaction.ExecutorError
	require.ErrorAs(t, err, &execErr)
	assert.Empty(t, execErr.Processed)
	assert.Empty(t, kube.applied)
}

func TestExecutor_CanceledContextStops(t *testing.T) {
	t.Parallel()

	kube := &fakeKube{}
	exec := &Executor{Kube: kube}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := exec.Apply(ctx, testEnvironment(environment.ActionCreate), environment.ActionCreate)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, kube.applied)
}

func TestExecutor_ManagedDatabaseSkipped(t *testing.T) {
	t.Parallel()

	kube := &fakeKube{}
	rec := &progress.Recorder{}
	exec := &Executor{Kube: kube, Listeners: progress.Listeners{rec}}
	env := testEnvironment(environment.ActionCreate)
	env.Databases[0].Mode = environment.DatabaseModeManaged

	require.NoError(t, exec.Apply(context.Background(), env, environment.ActionCreate))

	assert.Len(t, kube.applied, 3)
	assert.Equal(t, progress.LevelWarning, rec.Events()[1].Info.Level)
	assert.Contains(t, rec.Events()[1].Info.Message, "outside the cluster")
}

func TestExecutor_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(env *environment.Environment)
		wantErr string
	}{
		{
			name:    "unsupported database engine",
			mutate:  func(env *environment.Environment) { env.Databases[0].Engine = "cassandra" },
			wantErr: `unsupported engine "cassandra"`,
		},
		{
			name:    "route to a service without ports",
			mutate:  func(env *environment.Environment) { env.Applications[0].Ports = nil },
			wantErr: "route target z11111111 exposes no port",
		},
		{
			name:    "application without image",
			mutate:  func(env *environment.Environment) { env.Applications[0].Build = nil },
			wantErr: "application api has no image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := testEnvironment(environment.ActionCreate)
			tt.mutate(env)

			err := (&Executor{Kube: &fakeKube{}}).Apply(context.Background(), env, environment.ActionCreate)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExecutor_ActionNothing(t *testing.T) {
	t.Parallel()

	kube := &fakeKube{}
	require.NoError(t, (&Executor{Kube: kube}).Apply(context.Background(), testEnvironment(environment.ActionNothing), environment.ActionNothing))
	assert.Empty(t, kube.namespaces)
}

func TestDatabaseStatefulSet(t *testing.T) {
	t.Parallel()

	env := testEnvironment(environment.ActionCreate)
	r := &renderer{env: env}

	objs, err := r.objects(env.Databases[0])
	require.NoError(t, err)
	set, ok := objs[0].(*appsv1.StatefulSet)
	require.True(t, ok)

	c := set.Spec.Template.Spec.Containers[0]
	assert.Equal(t, "postgres:16", c.Image)
	assert.Equal(t, int32(5432), c.Ports[0].ContainerPort)
	assert.Equal(t, "/var/lib/postgresql/data", c.VolumeMounts[0].MountPath)
	assert.Equal(t, "10Gi", set.Spec.VolumeClaimTemplates[0].Spec.Resources.Requests.Storage().String())
}
