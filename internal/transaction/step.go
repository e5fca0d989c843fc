package transaction

import (
	"github.com/imamik/k8zenv/internal/build"
	"github.com/imamik/k8zenv/internal/environment"
)

// StepName identifies a kind of step. Waiting is the state before any step
// has started.
type StepName int

const (
	StepWaiting StepName = iota
	StepCreateInfra
	StepDeleteInfra
	StepPauseInfra
	StepBuildEnvironment
	StepDeployEnvironment
	StepPauseEnvironment
	StepDeleteEnvironment
)

// AllStepNames lists every step name.
func AllStepNames() []StepName {
	return []StepName{
		StepWaiting,
		StepCreateInfra,
		StepDeleteInfra,
		StepPauseInfra,
		StepBuildEnvironment,
		StepDeployEnvironment,
		StepPauseEnvironment,
		StepDeleteEnvironment,
	}
}

// Cancellable reports whether a step of this kind may be skipped on abort.
// Everything else must run to completion or be rolled back.
func (s StepName) Cancellable() bool {
	return s == StepBuildEnvironment || s == StepWaiting
}

func (s StepName) String() string {
	switch s {
	case StepWaiting:
		return "waiting"
	case StepCreateInfra:
		return "create_infra"
	case StepDeleteInfra:
		return "delete_infra"
	case StepPauseInfra:
		return "pause_infra"
	case StepBuildEnvironment:
		return "build_environment"
	case StepDeployEnvironment:
		return "deploy_environment"
	case StepPauseEnvironment:
		return "pause_environment"
	case StepDeleteEnvironment:
		return "delete_environment"
	default:
		return "unknown"
	}
}

// Step is one queued lifecycle operation. Environment and Options are only
// set for environment steps.
type Step struct {
	Name        StepName
	Environment *environment.Environment
	Options     build.Options
}

func CreateInfra() Step { return Step{Name: StepCreateInfra} }
func DeleteInfra() Step { return Step{Name: StepDeleteInfra} }
func PauseInfra() Step { return Step{Name: StepPauseInfra} }

func BuildEnvironment(env *environment.Environment, opts build.Options) Step {
	return Step{Name: StepBuildEnvironment, Environment: env, Options: opts}
}

func DeployEnvironment(env *environment.Environment) Step {
	return Step{Name: StepDeployEnvironment, Environment: env}
}

func PauseEnvironment(env *environment.Environment) Step {
	return Step{Name: StepPauseEnvironment, Environment: env}
}

func DeleteEnvironment(env *environment.Environment) Step {
	return Step{Name: StepDeleteEnvironment, Environment: env}
}

func (s Step) isInfra() bool {
	return s.Name == StepCreateInfra || s.Name == StepDeleteInfra || s.Name == StepPauseInfra
}
