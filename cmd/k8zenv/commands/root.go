// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/k8zenv/cmd/k8zenv/handlers"
)

// Root returns the root command for the k8zenv CLI.
func Root() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:          "k8zenv",
		Short:        "Install cluster charts and drive environment transactions",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			handlers.SetupLogging(verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Core commands
	cmd.AddCommand(Init())
	cmd.AddCommand(Plan())
	cmd.AddCommand(Install())
	cmd.AddCommand(Destroy())
	cmd.AddCommand(Doctor())

	// Environment commands
	cmd.AddCommand(Deploy())
	cmd.AddCommand(Pause())
	cmd.AddCommand(Undeploy())

	// Utility commands
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

// configFlag binds the shared --config flag.
func configFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "config", "c", "", "Path to configuration file (default: nearest k8zenv.yaml)")
	_ = cmd.MarkFlagFilename("config", yamlExtensions...)
}
