package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/k8zenv/cmd/k8zenv/handlers"
)

// Plan returns the plan command.
func Plan() *cobra.Command {
	var (
		configPath string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the leveled chart plan",
		Long: `Plan prints the charts that install would apply, grouped in levels.

Levels are applied in order. Charts within a level have no ordering
between them. The plan is computed offline: the cluster is not read,
so values that depend on live resources show their defaults.

Example:
  k8zenv plan -c k8zenv.yaml -o yaml
  k8zenv plan -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Plan(cmd.Context(), configPath, handlers.PlanOptions{Output: output})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format (yaml or json)")
	completeValues(cmd, "output", handlers.PlanOutputFormats)

	return cmd
}
