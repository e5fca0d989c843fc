package addons

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/imamik/k8zenv/internal/addons/helm"
	"github.com/imamik/k8zenv/internal/addons/k8sclient"
)

const (
	cloudflareSecretName = "cloudflare-api-token" //nolint:gosec // This is a secret name, not a credential
	cloudflareSecretKey  = "api-token"
)

// cloudflareSecretHook stores the Cloudflare API token next to the issuers so
// the DNS01 solver can reference it.
func cloudflareSecretHook(kube k8sclient.Client, apiToken string) helm.PreExecHook {
	return func(ctx context.Context) error {
		if apiToken == "" {
			return fmt.Errorf("cloudflare API token is required")
		}
		if err := kube.EnsureNamespace(ctx, NamespaceCertManager); err != nil {
			return fmt.Errorf("failed to create %s namespace: %w", NamespaceCertManager, err)
		}
		return createCloudflareSecret(ctx, kube, NamespaceCertManager, apiToken)
	}
}

// createCloudflareSecret creates a Cloudflare API token secret in the specified namespace.
func createCloudflareSecret(ctx context.Context, client k8sclient.Client, namespace, apiToken string) error {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cloudflareSecretName,
			Namespace: namespace,
		},
		Type: corev1.SecretTypeOpaque,
		StringData: map[string]string{
			cloudflareSecretKey: apiToken,
		},
	}

	if err := client.CreateSecret(ctx, secret); err != nil {
		return fmt.Errorf("failed to create cloudflare secret: %w", err)
	}

	return nil
}
