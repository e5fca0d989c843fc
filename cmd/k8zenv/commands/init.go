package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/k8zenv/cmd/k8zenv/handlers"
)

// Init returns the command for interactively creating a configuration file.
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a configuration file",
		Long: `Interactively create a k8zenv configuration file.

The wizard asks for the cluster identity, the DNS provider and the
optional metrics and log history features. Engine tokens and versions
are left for manual editing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "k8zenv.yaml", "Output file path")
	_ = cmd.MarkFlagFilename("output", yamlExtensions...)

	return cmd
}
