package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/k8zenv/cmd/k8zenv/handlers"
)

// Doctor returns the doctor command.
func Doctor() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that install can run",
		Long: `Doctor validates the configuration and its referenced files, checks
that the cluster answers, looks for the client tools and, with
Cloudflare DNS, resolves the managed zone.

Example:
  k8zenv doctor -c k8zenv.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), configPath)
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}
