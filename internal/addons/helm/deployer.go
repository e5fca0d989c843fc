package helm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/k8zenv/internal/metrics"
	"github.com/imamik/k8zenv/internal/util/async"
)

// UnitApplier applies one unit. *Applier implements it.
type UnitApplier interface {
	Apply(ctx context.Context, c ChartInfo) error
}

// Deployer applies a leveled plan.
type Deployer struct {
	Applier UnitApplier
	Log     logr.Logger
	Metrics *metrics.Metrics
	// Sequential applies the units of a level one at a time.
	Sequential bool

	// OnUnitStart and OnUnitDone observe unit progress when set. Level is
	// the zero-based plan level. They may be called concurrently.
	OnUnitStart func(level int, name string)
	OnUnitDone  func(level int, name string, err error)
}

// Apply applies levels strictly in order. A level fails when any of its
// units fails, and later levels are not started.
func (d *Deployer) Apply(ctx context.Context, levels []Level) error {
	for i, level := range levels {
		if err := d.applyLevel(ctx, i, level, false); err != nil {
			return err
		}
	}
	return nil
}

// Destroy uninstalls every unit, walking levels in reverse order.
func (d *Deployer) Destroy(ctx context.Context, levels []Level) error {
	for i := len(levels) - 1; i >= 0; i-- {
		if err := d.applyLevel(ctx, i, levels[i], true); err != nil {
			return err
		}
	}
	return nil
}

func (d *Deployer) applyLevel(ctx context.Context, index int, level Level, destroy bool) error {
	if len(level) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("level %d not started: %w", index+1, err)
	}

	names := make([]string, 0, len(level))
	tasks := make([]async.Task, 0, len(level))
	for _, unit := range level {
		if destroy {
			unit.Action = ActionDestroy
			unit.PreExec = nil
			unit.CRDsUpdate = nil
		}
		names = append(names, unit.Name)
		tasks = append(tasks, async.Task{
			Name: unit.Name,
			Func: func(ctx context.Context) error { return d.applyUnit(ctx, index, unit) },
		})
	}

	d.Log.Info("applying level", "level", index+1, "charts", names)
	if err := async.RunParallel(ctx, tasks, d.Sequential); err != nil {
		return fmt.Errorf("level %d failed: %w", index+1, err)
	}
	return nil
}

func (d *Deployer) applyUnit(ctx context.Context, level int, unit ChartInfo) error {
	if d.OnUnitStart != nil {
		d.OnUnitStart(level, unit.Name)
	}
	start := time.Now()
	err := d.runUnit(ctx, unit)
	if d.OnUnitDone != nil {
		d.OnUnitDone(level, unit.Name, err)
	}

	result := "success"
	if err != nil {
		result = "error"
	}
	d.Metrics.RecordChart(unit.Name, unit.Action.String(), result, time.Since(start))
	return err
}

func (d *Deployer) runUnit(ctx context.Context, unit ChartInfo) error {
	log := d.Log.WithValues("chart", unit.Name, "action", unit.Action.String())

	if unit.PreExec != nil {
		if err := unit.PreExec(ctx); err != nil {
			return fmt.Errorf("pre-exec hook failed: %w", err)
		}
	}

	if err := d.Applier.Apply(ctx, unit); err != nil {
		return err
	}
	log.Info("chart applied")
	return nil
}
