package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/imamik/k8zenv/internal/addons/k8sclient"
)

const testEnvironmentFile = `
id: aaaaaaaa-0000-4000-8000-000000000001
project_id: bbbbbbbb-0000-4000-8000-000000000002
databases:
  - id: dddddddd-0000-4000-8000-000000000004
    name: db
    engine: postgresql
    version: "16"
containers:
  - id: 22222222-0000-4000-8000-000000000006
    name: web
    image: nginx:1.27
    ports:
      - number: 80
        public: true
routers:
  - id: 33333333-0000-4000-8000-000000000007
    name: edge
    default_domain: web.example.com
    routes:
      - service: web
`

const testNamespace = "zbbbbbbbb-zaaaaaaaa"

// recordingKube records the environment calls and delegates the rest to a
// fake clientset.
type recordingKube struct {
	k8sclient.Client

	mu         sync.Mutex
	namespaces []string
	applied    []string
	deleted    []string
	applyErr   error
}

func (k *recordingKube) EnsureNamespace(_ context.Context, name string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.namespaces = append(k.namespaces, name)
	return nil
}

func (k *recordingKube) ApplyManifests(_ context.Context, manifests []byte, _ k8sclient.ApplyOptions) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.applyErr != nil {
		return k.applyErr
	}
	k.applied = append(k.applied, string(manifests))
	return nil
}

func (k *recordingKube) DeleteNamespace(_ context.Context, name string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.deleted = append(k.deleted, name)
	return nil
}

// stubEnvironment stubs the cluster and returns the recording client the
// executor talks to.
func stubEnvironment(t *testing.T) *recordingKube {
	t.Helper()
	stubCluster(t, &recordingApplier{})

	//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient for our testing needs
	kube := &recordingKube{Client: k8sclient.NewFromClients(fake.NewSimpleClientset(helmManagedAWSNode()), nil, nil)}
	newKubeClient = func([]byte) (k8sclient.Client, error) { return kube, nil }
	return kube
}

func writeEnvironmentFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDeploy_AppliesServices(t *testing.T) {
	kube := stubEnvironment(t)

	err := Deploy(context.Background(), writeTestConfig(t), EnvironmentOptions{
		RunOptions: RunOptions{NoTUI: true},
		File:       writeEnvironmentFile(t, testEnvironmentFile),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{testNamespace}, kube.namespaces)
	require.Len(t, kube.applied, 3)
	assert.Contains(t, kube.applied[0], "kind: StatefulSet")
	assert.Contains(t, kube.applied[1], "image: docker.io/nginx:1.27")
	assert.Contains(t, kube.applied[2], "kind: Ingress")
	assert.Contains(t, kube.applied[2], "host: web.example.com")
}

func TestDeploy_ApplicationsNeedRegistry(t *testing.T) {
	kube := stubEnvironment(t)
	content := testEnvironmentFile + `applications:
  - id: 11111111-0000-4000-8000-000000000005
    name: api
    commit_id: abc123
`

	err := Deploy(context.Background(), writeTestConfig(t), EnvironmentOptions{
		RunOptions: RunOptions{NoTUI: true},
		File:       writeEnvironmentFile(t, content),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs registry.url to be configured")
	assert.Empty(t, kube.namespaces)
}

func TestDeploy_ApplyFailure(t *testing.T) {
	kube := stubEnvironment(t)
	kube.applyErr = errors.New("admission webhook denied the request")

	err := Deploy(context.Background(), writeTestConfig(t), EnvironmentOptions{
		RunOptions: RunOptions{NoTUI: true},
		File:       writeEnvironmentFile(t, testEnvironmentFile),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deploy failed: failed to create database db")
	assert.Contains(t, err.Error(), "admission webhook denied the request")
}

func TestDeploy_RequiresEnvironmentFile(t *testing.T) {
	stubEnvironment(t)

	err := Deploy(context.Background(), writeTestConfig(t), EnvironmentOptions{RunOptions: RunOptions{NoTUI: true}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "an environment file is required")
}

func TestPause_Environment(t *testing.T) {
	kube := stubEnvironment(t)

	err := Pause(context.Background(), writeTestConfig(t), EnvironmentOptions{
		RunOptions: RunOptions{NoTUI: true},
		File:       writeEnvironmentFile(t, testEnvironmentFile),
	})
	require.NoError(t, err)

	// the router keeps its ingress while paused
	require.Len(t, kube.applied, 2)
	for _, manifests := range kube.applied {
		assert.Contains(t, manifests, "replicas: 0")
	}
}

func TestPause_ClusterWithoutEnvironment(t *testing.T) {
	kube := stubEnvironment(t)

	err := Pause(context.Background(), writeTestConfig(t), EnvironmentOptions{RunOptions: RunOptions{NoTUI: true}})
	require.NoError(t, err)

	assert.Empty(t, kube.namespaces)
	assert.Empty(t, kube.applied)
}

func TestUndeploy_DeletesNamespace(t *testing.T) {
	kube := stubEnvironment(t)

	err := Undeploy(context.Background(), writeTestConfig(t), EnvironmentOptions{
		RunOptions: RunOptions{NoTUI: true, Yes: true},
		File:       writeEnvironmentFile(t, testEnvironmentFile),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{testNamespace}, kube.deleted)
	assert.Empty(t, kube.applied)
}

func TestUndeploy_RequiresConfirmation(t *testing.T) {
	kube := stubEnvironment(t)

	err := Undeploy(context.Background(), writeTestConfig(t), EnvironmentOptions{
		RunOptions: RunOptions{NoTUI: true},
		File:       writeEnvironmentFile(t, testEnvironmentFile),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass --yes")
	assert.Empty(t, kube.deleted)
}

func TestUndeploy_ConfirmationDeclined(t *testing.T) {
	kube := stubEnvironment(t)
	isTerminal = func() bool { return true }
	origConfirm := confirmUndeploy
	t.Cleanup(func() { confirmUndeploy = origConfirm })
	var asked string
	confirmUndeploy = func(_ context.Context, namespace string) (bool, error) {
		asked = namespace
		return false, nil
	}
	out := stubOutput()

	err := Undeploy(context.Background(), writeTestConfig(t), EnvironmentOptions{
		RunOptions: RunOptions{NoTUI: true},
		File:       writeEnvironmentFile(t, testEnvironmentFile),
	})
	require.NoError(t, err)

	assert.Equal(t, testNamespace, asked)
	assert.Contains(t, out.String(), "Undeploy canceled.")
	assert.Empty(t, kube.deleted)
}
