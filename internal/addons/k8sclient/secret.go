package k8sclient

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// EnsureNamespace creates the namespace when it does not exist.
func (c *client) EnsureNamespace(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("namespace name is required")
	}

	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: name}}
	_, err := c.clientset.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create namespace %s: %w", name, err)
	}
	return nil
}

// DeleteNamespace deletes a namespace, returning nil if not found. Deletion
// is asynchronous; the namespace is terminating when this returns.
func (c *client) DeleteNamespace(ctx context.Context, name string) error {
	err := c.clientset.CoreV1().Namespaces().Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete namespace %s: %w", name, err)
	}
	return nil
}

// CreateSecret creates the secret, or replaces the data of an existing one
// so the stored keys are exactly the ones given.
func (c *client) CreateSecret(ctx context.Context, secret *corev1.Secret) error {
	if secret.Namespace == "" {
		return fmt.Errorf("secret namespace is required")
	}
	if secret.Name == "" {
		return fmt.Errorf("secret name is required")
	}

	secrets := c.clientset.CoreV1().Secrets(secret.Namespace)
	_, err := secrets.Create(ctx, secret, metav1.CreateOptions{})
	if err == nil {
		return nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create secret %s/%s: %w", secret.Namespace, secret.Name, err)
	}

	existing, err := secrets.Get(ctx, secret.Name, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get secret %s/%s: %w", secret.Namespace, secret.Name, err)
	}
	existing.Data = secret.Data
	existing.StringData = secret.StringData
	if _, err := secrets.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update secret %s/%s: %w", secret.Namespace, secret.Name, err)
	}
	return nil
}

// DeleteSecret deletes a secret, returning nil if not found.
func (c *client) DeleteSecret(ctx context.Context, namespace, name string) error {
	if namespace == "" {
		return fmt.Errorf("namespace is required")
	}
	if name == "" {
		return fmt.Errorf("secret name is required")
	}

	err := c.clientset.CoreV1().Secrets(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete secret %s/%s: %w", namespace, name, err)
	}
	return nil
}
