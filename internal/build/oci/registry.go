// Package oci implements build.ContainerRegistry against any OCI
// distribution registry.
package oci

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"oras.land/oras-go/v2/errdef"
	"oras.land/oras-go/v2/registry"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	orasretry "oras.land/oras-go/v2/registry/remote/retry"

	"github.com/imamik/k8zenv/internal/config"
	"github.com/imamik/k8zenv/internal/environment"
	"github.com/imamik/k8zenv/internal/util/retry"
)

// Registry talks to one OCI registry host.
type Registry struct {
	name      string
	host      string
	plainHTTP bool
	client    remote.Client
	log       logr.Logger
	retryOpts []retry.Option
}

// New creates a Registry from configuration.
func New(cfg config.RegistryConfig, log logr.Logger, retryOpts ...retry.Option) (*Registry, error) {
	host := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(cfg.URL, "https://"), "http://"), "/")
	if host == "" {
		return nil, errors.New("registry url is required")
	}

	client := &auth.Client{
		Client: orasretry.DefaultClient,
		Cache:  auth.NewCache(),
	}
	if cfg.Username != "" {
		client.Credential = auth.StaticCredential(host, auth.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	name := cfg.Name
	if name == "" {
		name = host
	}

	return &Registry{
		name:      name,
		host:      host,
		plainHTTP: cfg.PlainHTTP,
		client:    client,
		log:       log.WithName("registry").WithValues("host", host),
		retryOpts: retryOpts,
	}, nil
}

// Name returns the registry display name.
func (r *Registry) Name() string { return r.name }

// Host returns the registry host images are pushed to.
func (r *Registry) Host() string { return r.host }

// CreateRegistry checks the registry is reachable with the configured
// credentials.
func (r *Registry) CreateRegistry(ctx context.Context) error {
	reg, err := remote.NewRegistry(r.host)
	if err != nil {
		return retry.Fatal(fmt.Errorf("invalid registry host %s: %w", r.host, err))
	}
	reg.Client = r.client
	reg.PlainHTTP = r.plainHTTP

	err = retry.Do(ctx, func(ctx context.Context) error {
		return reg.Ping(ctx)
	}, r.retryOpts...)
	if err != nil {
		return fmt.Errorf("registry %s is not reachable: %w", r.host, err)
	}
	return nil
}

// CreateRepository validates the repository name. Distribution registries
// create repositories on first push and enforce retention through their own
// policies, so nothing is written here.
func (r *Registry) CreateRepository(_ context.Context, name string, retentionSeconds uint32) error {
	ref, err := registry.ParseReference(r.host + "/" + name)
	if err != nil {
		return fmt.Errorf("invalid repository name %q: %w", name, err)
	}
	r.log.V(1).Info("repository ready", "repository", ref.Repository, "retentionSeconds", retentionSeconds)
	return nil
}

// DoesImageExist reports whether the image tag resolves in the registry. Any
// lookup error other than not-found is logged and treated as absent so the
// image gets rebuilt.
func (r *Registry) DoesImageExist(ctx context.Context, image environment.Image) bool {
	repo, err := r.repository(image.RepositoryName())
	if err != nil {
		r.log.Error(err, "cannot open repository", "image", image.FullImageNameWithTag())
		return false
	}

	_, err = repo.Resolve(ctx, image.Tag)
	switch {
	case err == nil:
		return true
	case errors.Is(err, errdef.ErrNotFound):
		return false
	default:
		r.log.Error(err, "cannot resolve image", "image", image.FullImageNameWithTag())
		return false
	}
}

func (r *Registry) repository(name string) (*remote.Repository, error) {
	repo, err := remote.NewRepository(r.host + "/" + name)
	if err != nil {
		return nil, err
	}
	repo.Client = r.client
	repo.PlainHTTP = r.plainHTTP
	return repo, nil
}
