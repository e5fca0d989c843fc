package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/k8zenv/cmd/k8zenv/handlers"
)

// Install returns the install command.
func Install() *cobra.Command {
	var (
		configPath string
		opts       handlers.RunOptions
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install or upgrade the cluster charts",
		Long: `Install applies the leveled chart plan to the cluster.

Each level must succeed before the next starts. Charts of an existing
installation are upgraded in place. Resources created by a legacy
installation are adopted by their release before it is applied.

Example:
  k8zenv install -c k8zenv.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Install(cmd.Context(), configPath, opts)
		},
	}

	configFlag(cmd, &configPath)
	runFlags(cmd, &opts)

	return cmd
}

// runFlags binds the progress flags shared by the transaction commands.
func runFlags(cmd *cobra.Command, opts *handlers.RunOptions) {
	cmd.Flags().BoolVar(&opts.NoTUI, "no-tui", false, "Print logs instead of the interactive dashboard")
	cmd.Flags().StringVar(&opts.MetricsTextfile, "metrics-textfile", "", "Write engine metrics to this file when done")
}
