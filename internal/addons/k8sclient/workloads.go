package k8sclient

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const crashLoopBackOff = "CrashLoopBackOff"

// GetDaemonSet returns a daemon set by name.
func (c *client) GetDaemonSet(ctx context.Context, namespace, name string) (*appsv1.DaemonSet, error) {
	ds, err := c.clientset.AppsV1().DaemonSets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get daemon set %s/%s: %w", namespace, name, err)
	}
	return ds, nil
}

// ListDaemonSets lists daemon sets matching a label selector.
func (c *client) ListDaemonSets(ctx context.Context, namespace, selector string) ([]appsv1.DaemonSet, error) {
	list, err := c.clientset.AppsV1().DaemonSets(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, fmt.Errorf("failed to list daemon sets in %s matching %q: %w", namespace, selector, err)
	}
	return list.Items, nil
}

// DeleteCrashLoopingPods deletes every pod matching selector with at least one
// container waiting in CrashLoopBackOff. Pods already gone are ignored.
func (c *client) DeleteCrashLoopingPods(ctx context.Context, namespace, selector string) (int, error) {
	pods := c.clientset.CoreV1().Pods(namespace)
	list, err := pods.List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return 0, fmt.Errorf("failed to list pods in %s matching %q: %w", namespace, selector, err)
	}

	deleted := 0
	for i := range list.Items {
		pod := &list.Items[i]
		if !isCrashLooping(pod) {
			continue
		}
		if err := pods.Delete(ctx, pod.Name, metav1.DeleteOptions{}); err != nil && !apierrors.IsNotFound(err) {
			return deleted, fmt.Errorf("failed to delete pod %s/%s: %w", namespace, pod.Name, err)
		}
		deleted++
	}
	return deleted, nil
}

func isCrashLooping(pod *corev1.Pod) bool {
	for _, st := range pod.Status.ContainerStatuses {
		if st.State.Waiting != nil && st.State.Waiting.Reason == crashLoopBackOff {
			return true
		}
	}
	return false
}
