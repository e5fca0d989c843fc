package cluster

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/k8zenv/internal/addons/helm"
	"github.com/imamik/k8zenv/internal/util/retry"
)

// Planner builds the leveled install plan. removal is set when the plan is
// built to uninstall the charts.
type Planner func(ctx context.Context, removal bool) ([]helm.Level, error)

// Installer applies or removes a plan. *helm.Deployer implements it.
type Installer interface {
	Apply(ctx context.Context, levels []helm.Level) error
	Destroy(ctx context.Context, levels []helm.Level) error
}

// Bootstrapper handles the cluster bootstrapping process.
type Bootstrapper struct {
	plan      Planner
	installer Installer
	log       logr.Logger
	retryOpts []retry.Option
}

// NewBootstrapper creates a new Bootstrapper. Building the plan is retried
// with retryOpts unless the failure is fatal.
func NewBootstrapper(plan Planner, installer Installer, log logr.Logger, retryOpts ...retry.Option) *Bootstrapper {
	return &Bootstrapper{
		plan:      plan,
		installer: installer,
		log:       log,
		retryOpts: retryOpts,
	}
}

func (b *Bootstrapper) buildPlan(ctx context.Context, removal bool) ([]helm.Level, error) {
	var levels []helm.Level
	err := retry.Do(ctx, func(ctx context.Context) error {
		var err error
		levels, err = b.plan(ctx, removal)
		return err
	}, b.retryOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build install plan: %w", err)
	}
	return levels, nil
}

// OnCreate installs every level of the plan.
func (b *Bootstrapper) OnCreate(ctx context.Context) error {
	levels, err := b.buildPlan(ctx, false)
	if err != nil {
		return err
	}

	b.log.Info("installing cluster charts", "levels", len(levels))
	if err := b.installer.Apply(ctx, levels); err != nil {
		return fmt.Errorf("failed to install cluster charts: %w", err)
	}
	b.log.Info("cluster charts installed")
	return nil
}

// OnPause leaves the charts in place. Scaling the nodes down is done by the
// cloud provider layer and the releases come back with them.
func (b *Bootstrapper) OnPause(_ context.Context) error {
	b.log.Info("pausing cluster, charts are kept")
	return nil
}

// OnDelete removes the charts, last level first.
func (b *Bootstrapper) OnDelete(ctx context.Context) error {
	levels, err := b.buildPlan(ctx, true)
	if err != nil {
		return err
	}

	b.log.Info("removing cluster charts", "levels", len(levels))
	if err := b.installer.Destroy(ctx, levels); err != nil {
		return fmt.Errorf("failed to remove cluster charts: %w", err)
	}
	b.log.Info("cluster charts removed")
	return nil
}

// OnCreateError leaves partially installed releases in place. Every unit is
// idempotent, so the next create converges.
func (b *Bootstrapper) OnCreateError(_ context.Context) error {
	b.log.Info("cluster create failed, installed charts are kept for the next attempt")
	return nil
}

// OnPauseError has nothing to compensate.
func (b *Bootstrapper) OnPauseError(_ context.Context) error {
	b.log.Info("cluster pause failed")
	return nil
}

// OnDeleteError has nothing to compensate: removed releases stay removed.
func (b *Bootstrapper) OnDeleteError(_ context.Context) error {
	b.log.Info("cluster delete failed, remaining charts are kept")
	return nil
}
