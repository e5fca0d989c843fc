package k8sclient

import (
	"context"
	"encoding/json"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
)

// ResourceKind is a resource type the client can annotate and label.
type ResourceKind string

const (
	KindDaemonSet          ResourceKind = "DaemonSet"
	KindClusterRole        ResourceKind = "ClusterRole"
	KindClusterRoleBinding ResourceKind = "ClusterRoleBinding"
	KindServiceAccount     ResourceKind = "ServiceAccount"
)

// ResourceRef names one live resource. Namespace is ignored for
// cluster-scoped kinds.
type ResourceRef struct {
	Kind      ResourceKind
	Namespace string
	Name      string
}

func (r ResourceRef) String() string {
	if r.Namespace == "" {
		return fmt.Sprintf("%s/%s", r.Kind, r.Name)
	}
	return fmt.Sprintf("%s %s/%s", r.Kind, r.Namespace, r.Name)
}

// Annotate sets key=value in the resource annotations.
func (c *client) Annotate(ctx context.Context, ref ResourceRef, key, value string) error {
	patch := map[string]any{"metadata": map[string]any{"annotations": map[string]string{key: value}}}
	if err := c.mergePatch(ctx, ref, patch); err != nil {
		return fmt.Errorf("failed to annotate %s with %s: %w", ref, key, err)
	}
	return nil
}

// Label sets key=value in the resource labels.
func (c *client) Label(ctx context.Context, ref ResourceRef, key, value string) error {
	patch := map[string]any{"metadata": map[string]any{"labels": map[string]string{key: value}}}
	if err := c.mergePatch(ctx, ref, patch); err != nil {
		return fmt.Errorf("failed to label %s with %s: %w", ref, key, err)
	}
	return nil
}

func (c *client) mergePatch(ctx context.Context, ref ResourceRef, patch map[string]any) error {
	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to marshal patch: %w", err)
	}

	opts := metav1.PatchOptions{}
	switch ref.Kind {
	case KindDaemonSet:
		_, err = c.clientset.AppsV1().DaemonSets(ref.Namespace).Patch(ctx, ref.Name, types.MergePatchType, data, opts)
	case KindServiceAccount:
		_, err = c.clientset.CoreV1().ServiceAccounts(ref.Namespace).Patch(ctx, ref.Name, types.MergePatchType, data, opts)
	case KindClusterRole:
		_, err = c.clientset.RbacV1().ClusterRoles().Patch(ctx, ref.Name, types.MergePatchType, data, opts)
	case KindClusterRoleBinding:
		_, err = c.clientset.RbacV1().ClusterRoleBindings().Patch(ctx, ref.Name, types.MergePatchType, data, opts)
	default:
		return fmt.Errorf("unsupported resource kind %q", ref.Kind)
	}
	return err
}
