package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/k8zenv/cmd/k8zenv/handlers"
)

// Deploy returns the deploy command.
func Deploy() *cobra.Command {
	var (
		configPath string
		opts       handlers.EnvironmentOptions
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Build and deploy an environment",
		Long: `Deploy builds the application images of an environment, pushes them
to the configured registry and applies every service to its namespace.

Images already present in the registry are reused unless --force-build
is set. Services are applied in order: databases, applications,
containers, then routers.

Example:
  k8zenv deploy -c k8zenv.yaml -e env.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deploy(cmd.Context(), configPath, opts)
		},
	}

	configFlag(cmd, &configPath)
	envFlag(cmd, &opts.File)
	runFlags(cmd, &opts.RunOptions)
	cmd.Flags().BoolVar(&opts.ForceBuild, "force-build", false, "Rebuild images that already exist")
	cmd.Flags().BoolVar(&opts.ForcePush, "force-push", false, "Push images even if the registry has them")
	cmd.Flags().StringVar(&opts.ClusterIssuer, "cluster-issuer", "", "cert-manager cluster issuer for router TLS")
	_ = cmd.MarkFlagRequired("env")

	return cmd
}

// Pause returns the pause command.
func Pause() *cobra.Command {
	var (
		configPath string
		opts       handlers.EnvironmentOptions
	)

	cmd := &cobra.Command{
		Use:   "pause",
		Short: "Scale an environment to zero",
		Long: `Pause scales every workload of an environment to zero replicas.
Volumes and ingresses are kept, so deploy resumes the environment.

Without --env the cluster pause step runs instead. It keeps every chart.

Example:
  k8zenv pause -c k8zenv.yaml -e env.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Pause(cmd.Context(), configPath, opts)
		},
	}

	configFlag(cmd, &configPath)
	envFlag(cmd, &opts.File)
	runFlags(cmd, &opts.RunOptions)

	return cmd
}

// Undeploy returns the undeploy command.
func Undeploy() *cobra.Command {
	var (
		configPath string
		opts       handlers.EnvironmentOptions
	)

	cmd := &cobra.Command{
		Use:   "undeploy",
		Short: "Delete an environment",
		Long: `Undeploy deletes the namespace of an environment with every service
in it. Images stay in the registry until their retention expires.

Example:
  k8zenv undeploy -c k8zenv.yaml -e env.yaml --yes

WARNING: Database volumes are deleted with the namespace.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Undeploy(cmd.Context(), configPath, opts)
		},
	}

	configFlag(cmd, &configPath)
	envFlag(cmd, &opts.File)
	runFlags(cmd, &opts.RunOptions)
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("env")

	return cmd
}

// envFlag binds the environment descriptor flag.
func envFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "env", "e", "", "Path to the environment file")
	_ = cmd.MarkFlagFilename("env", yamlExtensions...)
}
