package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/imamik/k8zenv/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	runWizard   = config.RunWizard
	writeConfig = config.WriteFile
)

// Init runs the configuration wizard and writes the result to outputPath.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Fprintf(stdout, "Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return err
	}

	cfg := result.ToConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("generated configuration is invalid: %w", err)
	}

	if err := writeConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)
	return nil
}

func printWelcome() {
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "k8zenv - cluster charts and environments")
	fmt.Fprintln(stdout, "========================================")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "This wizard creates a minimal configuration file.")
	fmt.Fprintln(stdout)
}

func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Configuration saved!")
	fmt.Fprintf(stdout, "  File:     %s\n", outputPath)
	fmt.Fprintf(stdout, "  Cluster:  %s (%s)\n", cfg.Cluster.Name, cfg.Cluster.Region)
	fmt.Fprintf(stdout, "  DNS:      %s\n", cfg.DNS.Provider)
	fmt.Fprintf(stdout, "  Metrics:  %t\n", cfg.Features.MetricsHistory)
	fmt.Fprintf(stdout, "  Logs:     %t\n", cfg.Features.LogHistory)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Next Steps")
	fmt.Fprintln(stdout, "----------")
	fmt.Fprintf(stdout, "  1. Fill in the engine tokens and versions in %s\n", outputPath)
	fmt.Fprintln(stdout, "  2. Render the terraform output file")
	fmt.Fprintln(stdout, "  3. Review the plan:  k8zenv plan")
	fmt.Fprintln(stdout, "  4. Install charts:   k8zenv install")
	fmt.Fprintln(stdout)
}
