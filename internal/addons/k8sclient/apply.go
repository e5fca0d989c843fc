package k8sclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/yaml"
)

// ApplyOptions controls a Server-Side Apply call.
type ApplyOptions struct {
	// FieldManager identifies the actor applying the configuration.
	FieldManager string
	// Force takes ownership of fields managed by someone else. CRD updates
	// use it because the previous owner is usually an old chart release.
	Force bool
	// DefaultNamespace is used for namespaced objects without one.
	DefaultNamespace string
}

// ApplyManifests decodes every YAML document and applies it with Server-Side
// Apply. Empty documents are skipped.
func (c *client) ApplyManifests(ctx context.Context, manifests []byte, opts ApplyOptions) error {
	if opts.FieldManager == "" {
		return fmt.Errorf("field manager is required")
	}

	decoder := yaml.NewYAMLOrJSONDecoder(bytes.NewReader(manifests), 4096)
	for doc := 0; ; doc++ {
		var obj unstructured.Unstructured
		if err := decoder.Decode(&obj); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to decode manifest document %d: %w", doc, err)
		}
		if len(obj.Object) == 0 {
			continue
		}

		if err := c.applyObject(ctx, &obj, opts); err != nil {
			return fmt.Errorf("failed to apply %s %s/%s: %w", obj.GetKind(), obj.GetNamespace(), obj.GetName(), err)
		}
	}
}

func (c *client) applyObject(ctx context.Context, obj *unstructured.Unstructured, opts ApplyOptions) error {
	gvk := obj.GroupVersionKind()
	if gvk.Kind == "" {
		return fmt.Errorf("object has no kind set")
	}

	mapping, err := c.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return fmt.Errorf("failed to get REST mapping for %v: %w", gvk, err)
	}

	data, err := obj.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal object to JSON: %w", err)
	}

	patchOpts := metav1.PatchOptions{FieldManager: opts.FieldManager}
	if opts.Force {
		force := true
		patchOpts.Force = &force
	}

	resource := c.dynamicClient.Resource(mapping.Resource)
	if mapping.Scope.Name() != meta.RESTScopeNameNamespace {
		_, err = resource.Patch(ctx, obj.GetName(), types.ApplyPatchType, data, patchOpts)
	} else {
		namespace := obj.GetNamespace()
		if namespace == "" {
			namespace = opts.DefaultNamespace
		}
		if namespace == "" {
			namespace = metav1.NamespaceDefault
		}
		_, err = resource.Namespace(namespace).Patch(ctx, obj.GetName(), types.ApplyPatchType, data, patchOpts)
	}
	if err != nil {
		return fmt.Errorf("server-side apply failed: %w", err)
	}

	return nil
}
