package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/k8zenv/cmd/k8zenv/handlers"
)

// Destroy returns the destroy command.
func Destroy() *cobra.Command {
	var (
		configPath string
		opts       handlers.RunOptions
	)

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Remove the cluster charts",
		Long: `Destroy uninstalls every chart of the plan.

Levels are removed in reverse order, so charts are uninstalled before
the charts they depend on. With Cloudflare DNS, the records external-dns
created for the cluster are deleted afterwards unless --keep-dns is set.

Example:
  k8zenv destroy -c k8zenv.yaml --yes

WARNING: Workloads relying on the removed charts stop working.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), configPath, opts)
		},
	}

	configFlag(cmd, &configPath)
	runFlags(cmd, &opts)
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&opts.KeepDNS, "keep-dns", false, "Leave the cluster DNS records in place")

	return cmd
}
