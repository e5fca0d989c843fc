package helm

import (
	"sync"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// InMemoryRESTClientGetter implements genericclioptions.RESTClientGetter
// over kubeconfig bytes, scoped to one release namespace.
type InMemoryRESTClientGetter struct {
	kubeconfig []byte
	namespace  string

	once       sync.Once
	restConfig *rest.Config
	err        error
}

// NewInMemoryRESTClientGetter creates a getter from kubeconfig bytes.
func NewInMemoryRESTClientGetter(kubeconfig []byte, namespace string) *InMemoryRESTClientGetter {
	return &InMemoryRESTClientGetter{kubeconfig: kubeconfig, namespace: namespace}
}

// ToRESTConfig returns the REST config, built once.
func (g *InMemoryRESTClientGetter) ToRESTConfig() (*rest.Config, error) {
	g.once.Do(func() {
		g.restConfig, g.err = g.ToRawKubeConfigLoader().ClientConfig()
	})
	return g.restConfig, g.err
}

// ToDiscoveryClient returns a memory-cached discovery client.
func (g *InMemoryRESTClientGetter) ToDiscoveryClient() (discovery.CachedDiscoveryInterface, error) {
	restConfig, err := g.ToRESTConfig()
	if err != nil {
		return nil, err
	}

	dc, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, err
	}
	return memory.NewMemCacheClient(dc), nil
}

// ToRESTMapper returns a deferred REST mapper over the cached discovery.
func (g *InMemoryRESTClientGetter) ToRESTMapper() (meta.RESTMapper, error) {
	dc, err := g.ToDiscoveryClient()
	if err != nil {
		return nil, err
	}
	return restmapper.NewDeferredDiscoveryRESTMapper(dc), nil
}

// ToRawKubeConfigLoader returns a client config whose default namespace is
// the release namespace.
func (g *InMemoryRESTClientGetter) ToRawKubeConfigLoader() clientcmd.ClientConfig {
	raw, err := clientcmd.Load(g.kubeconfig)
	if err != nil {
		raw = clientcmdapi.NewConfig()
	}
	overrides := &clientcmd.ConfigOverrides{Context: clientcmdapi.Context{Namespace: g.namespace}}
	return clientcmd.NewDefaultClientConfig(*raw, overrides)
}
