package k8sclient

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
)

// Client provides the Kubernetes operations used while applying the install plan.
type Client interface {
	// ApplyManifests applies multi-document YAML using Server-Side Apply.
	ApplyManifests(ctx context.Context, manifests []byte, opts ApplyOptions) error

	// RefreshDiscovery rebuilds the REST mapper so newly applied CRDs resolve.
	RefreshDiscovery(ctx context.Context) error

	// EnsureNamespace creates the namespace when it does not exist.
	EnsureNamespace(ctx context.Context, name string) error

	// DeleteNamespace deletes a namespace and everything in it, returning nil
	// if not found.
	DeleteNamespace(ctx context.Context, name string) error

	// CreateSecret creates the secret or replaces its data when it exists.
	CreateSecret(ctx context.Context, secret *corev1.Secret) error

	// DeleteSecret deletes a secret, returning nil if not found.
	DeleteSecret(ctx context.Context, namespace, name string) error

	// GetDaemonSet returns a daemon set by name.
	GetDaemonSet(ctx context.Context, namespace, name string) (*appsv1.DaemonSet, error)

	// ListDaemonSets lists daemon sets matching a label selector.
	ListDaemonSets(ctx context.Context, namespace, selector string) ([]appsv1.DaemonSet, error)

	// DeleteCrashLoopingPods deletes pods matching selector that have a
	// container waiting in CrashLoopBackOff and returns how many were deleted.
	DeleteCrashLoopingPods(ctx context.Context, namespace, selector string) (int, error)

	// Annotate sets one annotation on a resource, overwriting any previous value.
	Annotate(ctx context.Context, ref ResourceRef, key, value string) error

	// Label sets one label on a resource, overwriting any previous value.
	Label(ctx context.Context, ref ResourceRef, key, value string) error
}

// client implements Client using k8s.io/client-go.
type client struct {
	clientset     kubernetes.Interface
	dynamicClient dynamic.Interface
	mapper        meta.RESTMapper
	restConfig    *rest.Config
}

// NewFromKubeconfig creates a Client from kubeconfig bytes.
func NewFromKubeconfig(kubeconfig []byte) (Client, error) {
	restConfig, err := clientcmd.RESTConfigFromKubeConfig(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create REST config from kubeconfig: %w", err)
	}
	return NewFromRESTConfig(restConfig)
}

// NewFromRESTConfig creates a Client from an existing REST config.
func NewFromRESTConfig(restConfig *rest.Config) (Client, error) {
	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	mapper, err := discoverMapper(restConfig)
	if err != nil {
		return nil, err
	}

	return &client{
		clientset:     clientset,
		dynamicClient: dynamicClient,
		mapper:        mapper,
		restConfig:    restConfig,
	}, nil
}

// NewFromClients creates a Client from pre-configured clients, typically fakes.
func NewFromClients(clientset kubernetes.Interface, dynamicClient dynamic.Interface, mapper meta.RESTMapper) Client {
	return &client{
		clientset:     clientset,
		dynamicClient: dynamicClient,
		mapper:        mapper,
	}
}

func discoverMapper(restConfig *rest.Config) (meta.RESTMapper, error) {
	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}

	groupResources, err := restmapper.GetAPIGroupResources(discoveryClient)
	if err != nil {
		return nil, fmt.Errorf("failed to get API group resources: %w", err)
	}
	return restmapper.NewDiscoveryRESTMapper(groupResources), nil
}

// RefreshDiscovery rebuilds the REST mapper. Clients built from fakes keep
// their mapper.
func (c *client) RefreshDiscovery(_ context.Context) error {
	if c.restConfig == nil {
		return nil
	}

	mapper, err := discoverMapper(c.restConfig)
	if err != nil {
		return err
	}
	c.mapper = mapper
	return nil
}
