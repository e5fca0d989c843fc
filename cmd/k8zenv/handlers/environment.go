package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/k8zenv/internal/build"
	"github.com/imamik/k8zenv/internal/config"
	"github.com/imamik/k8zenv/internal/environment"
	"github.com/imamik/k8zenv/internal/transaction"
)

// loadEnvironmentFile can be replaced in tests.
var loadEnvironmentFile = environment.LoadFile

// EnvironmentOptions controls the environment commands.
type EnvironmentOptions struct {
	RunOptions
	// File is the environment descriptor.
	File string
	// ForceBuild rebuilds images that already exist in the registry.
	ForceBuild bool
	// ForcePush pushes images even when the registry already has them.
	ForcePush bool
}

// Deploy builds the applications of an environment and applies every
// service to the cluster.
func Deploy(ctx context.Context, configPath string, opts EnvironmentOptions) error {
	cfg, env, err := loadEnvironment(configPath, opts.File, environment.ActionCreate)
	if err != nil {
		return err
	}
	buildOpts := build.Options{ForceBuild: opts.ForceBuild, ForcePush: opts.ForcePush}
	return runTransaction(ctx, cfg, "deploy", opts.RunOptions, func(tx *transaction.Transaction) {
		tx.DeployEnvironmentWithOptions(env, buildOpts)
	})
}

// Pause scales an environment to zero. Without an environment file it runs
// the cluster pause step, which keeps every chart.
func Pause(ctx context.Context, configPath string, opts EnvironmentOptions) error {
	if opts.File == "" {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		return runTransaction(ctx, cfg, "pause", opts.RunOptions, (*transaction.Transaction).PauseKubernetes)
	}

	cfg, env, err := loadEnvironment(configPath, opts.File, environment.ActionPause)
	if err != nil {
		return err
	}
	return runTransaction(ctx, cfg, "pause", opts.RunOptions, func(tx *transaction.Transaction) {
		tx.PauseEnvironment(env)
	})
}

// Undeploy deletes the namespace of an environment.
func Undeploy(ctx context.Context, configPath string, opts EnvironmentOptions) error {
	cfg, env, err := loadEnvironment(configPath, opts.File, environment.ActionDelete)
	if err != nil {
		return err
	}
	if !opts.Yes {
		if !isTerminal() {
			return errors.New("refusing to undeploy without confirmation, pass --yes")
		}
		confirmed, err := confirmUndeploy(ctx, env.Namespace())
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !confirmed {
			fmt.Fprintln(stdout, "Undeploy canceled.")
			return nil
		}
	}
	return runTransaction(ctx, cfg, "undeploy", opts.RunOptions, func(tx *transaction.Transaction) {
		tx.DeleteEnvironment(env)
	})
}

func loadEnvironment(configPath, file string, action environment.Action) (*config.Config, *environment.Environment, error) {
	if file == "" {
		return nil, nil, errors.New("an environment file is required, pass --env")
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	env, err := loadEnvironmentFile(file, action, environment.FileOptions{
		RegistryName:   cfg.Registry.Name,
		RegistryURL:    cfg.Registry.URL,
		OrganizationID: cfg.Cluster.OrganizationLongID,
		Log:            logger(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load environment %s: %w", file, err)
	}
	return cfg, env, nil
}
