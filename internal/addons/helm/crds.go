package helm

import (
	"context"
	"fmt"

	"github.com/imamik/k8zenv/internal/addons/k8sclient"
)

// updateCRDs downloads every CRD manifest of the unit and applies it with
// forced Server-Side Apply, then refreshes discovery so the release can use
// the new schema.
func (a *Applier) updateCRDs(ctx context.Context, c ChartInfo) error {
	if a.kube == nil {
		return fmt.Errorf("chart %s: CRD update requires a kubernetes client", c.Name)
	}

	for _, crdURL := range c.CRDsUpdate.URLs() {
		buf, err := a.fetch(crdURL)
		if err != nil {
			return fmt.Errorf("chart %s: %w", c.Name, err)
		}

		opts := k8sclient.ApplyOptions{FieldManager: FieldManager, Force: true}
		if err := a.kube.ApplyManifests(ctx, buf.Bytes(), opts); err != nil {
			return fmt.Errorf("chart %s: failed to apply CRDs from %s: %w", c.Name, crdURL, err)
		}
	}

	if err := a.kube.RefreshDiscovery(ctx); err != nil {
		return fmt.Errorf("chart %s: failed to refresh discovery after CRD update: %w", c.Name, err)
	}
	a.log.V(1).Info("CRDs updated", "chart", c.Name, "count", len(c.CRDsUpdate.Files))
	return nil
}
