package cluster

import (
	"context"

	"github.com/imamik/k8zenv/internal/addons"
	"github.com/imamik/k8zenv/internal/addons/helm"
	"github.com/imamik/k8zenv/internal/config"
	"github.com/imamik/k8zenv/internal/util/retry"
)

// ConfigPlanner builds the plan from the engine configuration and the
// Terraform output it points at.
func ConfigPlanner(cfg *config.Config, opts addons.Options) Planner {
	return func(ctx context.Context, removal bool) ([]helm.Level, error) {
		prereqs, err := addons.PrerequisitesFromConfig(cfg)
		if err != nil {
			return nil, retry.Fatal(err)
		}
		planOpts := opts
		planOpts.Removal = removal
		return addons.BuildLevels(ctx, cfg.Charts.TerraformOutput, prereqs, planOpts)
	}
}
