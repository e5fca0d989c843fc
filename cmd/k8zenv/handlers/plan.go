package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"sigs.k8s.io/yaml"

	"github.com/imamik/k8zenv/internal/addons"
	"github.com/imamik/k8zenv/internal/addons/helm"
	"github.com/imamik/k8zenv/internal/ui/tui"
)

// PlanOutputFormats are the machine readable formats of the plan.
var PlanOutputFormats = []string{"yaml", "json"}

// PlanOptions controls the plan output.
type PlanOptions struct {
	// Output is "" for the human readable listing or one of PlanOutputFormats.
	Output string
}

type planDocument struct {
	Cluster string      `json:"cluster"`
	Levels  []planLevel `json:"levels"`
}

type planLevel struct {
	Level  int         `json:"level"`
	Charts []planChart `json:"charts"`
}

type planChart struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Source    string `json:"source"`
	Action    string `json:"action"`
	Timeout   string `json:"timeout"`
	Values    int    `json:"values"`
	PreExec   bool   `json:"preExec,omitempty"`
}

// Plan prints the leveled chart plan without touching the cluster. Charts
// whose values depend on live resources use their defaults.
func Plan(ctx context.Context, configPath string, opts PlanOptions) error {
	if opts.Output != "" && !slices.Contains(PlanOutputFormats, opts.Output) {
		return fmt.Errorf("unsupported output format %q", opts.Output)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	p, err := addons.PrerequisitesFromConfig(cfg)
	if err != nil {
		return err
	}
	levels, err := addons.BuildLevels(ctx, cfg.Charts.TerraformOutput, p, addons.Options{
		Log: logger(),
		Env: chartEnv(cfg),
	})
	if err != nil {
		return fmt.Errorf("failed to build plan: %w", err)
	}

	if opts.Output != "" {
		out, err := marshalPlan(opts.Output, newPlanDocument(cfg.Cluster.Name, levels))
		if err != nil {
			return fmt.Errorf("failed to marshal plan: %w", err)
		}
		_, err = stdout.Write(out)
		return err
	}

	_, err = fmt.Fprint(stdout, tui.RenderPlan(cfg.Cluster.Name, addons.ChartNames(levels), isTerminal()))
	return err
}

func newPlanDocument(clusterName string, levels []helm.Level) planDocument {
	doc := planDocument{Cluster: clusterName, Levels: make([]planLevel, 0, len(levels))}
	for i, level := range levels {
		pl := planLevel{Level: i + 1, Charts: make([]planChart, 0, len(level))}
		for _, c := range level {
			pl.Charts = append(pl.Charts, planChart{
				Name:      c.Name,
				Namespace: c.Namespace,
				Source:    c.Source(),
				Action:    c.Action.String(),
				Timeout:   c.Timeout().String(),
				Values:    len(c.Values),
				PreExec:   c.PreExec != nil,
			})
		}
		doc.Levels = append(doc.Levels, pl)
	}
	return doc
}

func marshalPlan(format string, doc planDocument) ([]byte, error) {
	if format == "json" {
		out, err := json.MarshalIndent(doc, "", "  ")
		return append(out, '\n'), err
	}
	return yaml.Marshal(doc)
}
