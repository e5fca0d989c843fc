package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/k8zenv/internal/build"
	"github.com/imamik/k8zenv/internal/environment"
	"github.com/imamik/k8zenv/internal/metrics"
	"github.com/imamik/k8zenv/internal/progress"
)

// Kubernetes is the cluster-lifecycle collaborator. The On*Error hooks
// compensate a failed operation during rollback.
type Kubernetes interface {
	OnCreate(ctx context.Context) error
	OnPause(ctx context.Context) error
	OnDelete(ctx context.Context) error
	OnCreateError(ctx context.Context) error
	OnPauseError(ctx context.Context) error
	OnDeleteError(ctx context.Context) error
}

// Builder builds the images of an environment. *build.Pipeline implements it.
type Builder interface {
	BuildAndPush(ctx context.Context, apps []*environment.Application, opts build.Options, isAborted func() bool) error
}

// EnvironmentExecutor applies a lifecycle action to every service of an
// environment. On failure it should return an *ExecutorError listing the
// services it completed.
type EnvironmentExecutor interface {
	Apply(ctx context.Context, env *environment.Environment, action environment.Action) error
}

// Config holds the collaborators of a Transaction.
type Config struct {
	Kubernetes  Kubernetes
	Builder     Builder
	Executor    EnvironmentExecutor
	Listeners   progress.Listeners
	Log         logr.Logger
	ExecutionID string
	Metrics     *metrics.Metrics

	// IsAborted is polled before cancellable boundaries. Nil never aborts.
	IsAborted func() bool
	// OnStepChange is called each time the current step changes.
	OnStepChange func(StepName)
}

// Transaction is an ordered list of steps committed once.
type Transaction struct {
	kubernetes  Kubernetes
	builder     Builder
	executor    EnvironmentExecutor
	listeners   progress.Listeners
	log         logr.Logger
	executionID string
	metrics     *metrics.Metrics
	isAborted   func() bool
	onStep      func(StepName)

	pending   []Step
	executed  []Step
	current   StepName
	committed bool
}

// New validates cfg and returns an empty Transaction in the waiting state.
func New(cfg Config) (*Transaction, error) {
	var errs []error
	if cfg.Kubernetes == nil {
		errs = append(errs, errors.New("kubernetes collaborator is required"))
	}
	if cfg.Builder == nil {
		errs = append(errs, errors.New("builder is required"))
	}
	if cfg.Executor == nil {
		errs = append(errs, errors.New("environment executor is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	t := &Transaction{
		kubernetes:  cfg.Kubernetes,
		builder:     cfg.Builder,
		executor:    cfg.Executor,
		listeners:   cfg.Listeners,
		log:         cfg.Log.WithName("transaction").WithValues("execution", cfg.ExecutionID),
		executionID: cfg.ExecutionID,
		metrics:     cfg.Metrics,
		isAborted:   cfg.IsAborted,
		onStep:      cfg.OnStepChange,
	}
	if t.isAborted == nil {
		t.isAborted = func() bool { return false }
	}
	if t.onStep == nil {
		t.onStep = func(StepName) {}
	}
	t.setCurrentStep(StepWaiting)

	return t, nil
}

// Push appends a step. It never executes anything.
func (t *Transaction) Push(step Step) {
	t.pending = append(t.pending, step)
}

func (t *Transaction) CreateKubernetes() { t.Push(CreateInfra()) }
func (t *Transaction) PauseKubernetes() { t.Push(PauseInfra()) }
func (t *Transaction) DeleteKubernetes() { t.Push(DeleteInfra()) }

// BuildEnvironment queues a build of env's applications.
func (t *Transaction) BuildEnvironment(env *environment.Environment, opts build.Options) {
	t.Push(BuildEnvironment(env, opts))
}

// DeployEnvironment queues a build with default options followed by a deploy.
func (t *Transaction) DeployEnvironment(env *environment.Environment) {
	t.DeployEnvironmentWithOptions(env, build.Options{})
}

// DeployEnvironmentWithOptions queues a build with opts followed by a deploy.
func (t *Transaction) DeployEnvironmentWithOptions(env *environment.Environment, opts build.Options) {
	t.Push(BuildEnvironment(env, opts))
	t.Push(DeployEnvironment(env))
}

func (t *Transaction) PauseEnvironment(env *environment.Environment) { t.Push(PauseEnvironment(env)) }
func (t *Transaction) DeleteEnvironment(env *environment.Environment) { t.Push(DeleteEnvironment(env)) }

// CurrentStep returns the step currently running, or the last one started.
func (t *Transaction) CurrentStep() StepName { return t.current }

// PendingSteps returns a copy of the queued steps.
func (t *Transaction) PendingSteps() []Step { return append([]Step(nil), t.pending...) }

// ExecutedSteps returns a copy of the steps started so far, in order.
func (t *Transaction) ExecutedSteps() []Step { return append([]Step(nil), t.executed...) }

func (t *Transaction) setCurrentStep(name StepName) {
	t.onStep(name)
	t.current = name
}

// Commit runs the pending steps in order and stops at the first step that
// does not succeed. A Transaction can be committed once.
func (t *Transaction) Commit(ctx context.Context) Result {
	if t.committed {
		return Failed(ErrAlreadyCommitted)
	}
	t.committed = true

	for i, step := range t.pending {
		t.executed = append(t.executed, step)
		t.setCurrentStep(step.Name)

		log := t.log.WithValues("step", step.Name.String(), "index", i+1, "total", len(t.pending))
		log.Info("starting step")
		start := time.Now()

		res := t.run(ctx, step)

		duration := time.Since(start)
		t.metrics.RecordStep(step.Name.String(), res.Kind.String(), duration)

		switch res.Kind {
		case ResultOk:
			log.Info("step completed", "duration", duration.Round(time.Millisecond))
		case ResultCanceled:
			log.Info("step canceled", "duration", duration.Round(time.Millisecond))
			return res
		default:
			log.Error(res.Err, "step failed", "duration", duration.Round(time.Millisecond))
			return res
		}
	}

	return Ok()
}

func (t *Transaction) run(ctx context.Context, step Step) Result {
	switch step.Name {
	case StepCreateInfra:
		return t.commitInfrastructure(ctx, t.kubernetes.OnCreate)
	case StepDeleteInfra:
		return t.commitInfrastructure(ctx, t.kubernetes.OnDelete)
	case StepPauseInfra:
		return t.commitInfrastructure(ctx, t.kubernetes.OnPause)
	case StepBuildEnvironment:
		return t.buildEnvironment(ctx, step)
	case StepDeployEnvironment:
		return t.commitEnvironment(ctx, step.Environment, environment.ActionCreate)
	case StepPauseEnvironment:
		return t.commitEnvironment(ctx, step.Environment, environment.ActionPause)
	case StepDeleteEnvironment:
		return t.commitEnvironment(ctx, step.Environment, environment.ActionDelete)
	default:
		return Ok()
	}
}

func (t *Transaction) aborted(ctx context.Context) bool {
	return t.isAborted() || ctx.Err() != nil
}

func (t *Transaction) commitInfrastructure(ctx context.Context, op func(context.Context) error) Result {
	err := op(ctx)
	if err == nil {
		return Ok()
	}

	t.log.Info("infrastructure rollback started", "error", err.Error())
	if rbErr := t.Rollback(ctx); rbErr != nil {
		t.log.Error(rbErr, "infrastructure rollback failed")
	}
	return Failed(err)
}

func (t *Transaction) buildEnvironment(ctx context.Context, step Step) Result {
	if t.aborted(ctx) {
		return Canceled()
	}

	err := t.builder.BuildAndPush(ctx, step.Environment.Applications, step.Options, t.isAborted)
	if err == nil {
		return Ok()
	}

	if build.IsAborted(err) || (ctx.Err() != nil && errors.Is(err, context.Canceled)) {
		t.log.Info("build canceled", "environment", step.Environment.ID, "error", err.Error())
		return Canceled()
	}
	t.log.Error(err, "build failed", "environment", step.Environment.ID)
	return Failed(err)
}

func (t *Transaction) commitEnvironment(ctx context.Context, env *environment.Environment, action environment.Action) Result {
	if t.aborted(ctx) {
		return Canceled()
	}

	err := t.executor.Apply(ctx, env, action)
	if err == nil {
		return Ok()
	}

	if rbErr := t.Rollback(ctx); rbErr != nil {
		t.log.Error(rbErr, "rollback failed")
	}

	processed := processedServices(err)
	for _, svc := range env.Services() {
		if _, ok := processed[svc.LongID()]; ok {
			continue
		}
		t.listeners.Notify(env.Action, progress.OutcomeError, progress.NewInfo(svc, progress.LevelError, "", t.executionID))
	}

	return Failed(err)
}

// Rollback runs the compensating hook of every executed infrastructure step
// in execution order and stops at the first hook failure. Environment steps
// have no compensation.
func (t *Transaction) Rollback(ctx context.Context) error {
	for _, step := range t.executed {
		if !step.isInfra() {
			continue
		}

		var hook func(context.Context) error
		switch step.Name {
		case StepCreateInfra:
			hook = t.kubernetes.OnCreateError
		case StepDeleteInfra:
			hook = t.kubernetes.OnDeleteError
		default:
			hook = t.kubernetes.OnPauseError
		}

		if err := hook(ctx); err != nil {
			return &RollbackError{Step: step.Name, Err: err}
		}
	}
	return nil
}
