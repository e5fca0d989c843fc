package progress

import (
	"github.com/imamik/k8zenv/internal/environment"
)

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the stage of a lifecycle operation a notification reports.
type Outcome int

const (
	OutcomeInProgress Outcome = iota
	OutcomeSuccess
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInProgress:
		return "in_progress"
	case OutcomeSuccess:
		return "ok"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Info is one notification about one service.
type Info struct {
	Scope       environment.Scope
	Level       Level
	Message     string
	ExecutionID string
}

// NewInfo builds an Info for a service.
func NewInfo(svc environment.Service, level Level, message, executionID string) Info {
	return Info{
		Scope:       svc.ProgressScope(),
		Level:       level,
		Message:     message,
		ExecutionID: executionID,
	}
}

// Listener receives lifecycle notifications.
type Listener interface {
	DeploymentInProgress(info Info)
	Deployed(info Info)
	DeploymentError(info Info)
	PauseInProgress(info Info)
	Paused(info Info)
	PauseError(info Info)
	DeleteInProgress(info Info)
	Deleted(info Info)
	DeleteError(info Info)
}

// Listeners fans notifications out to every listener in order.
type Listeners []Listener

// Notify dispatches info to the listener method matching action and outcome.
// ActionNothing emits nothing.
func (ls Listeners) Notify(action environment.Action, outcome Outcome, info Info) {
	for _, l := range ls {
		dispatch(l, action, outcome, info)
	}
}

func dispatch(l Listener, action environment.Action, outcome Outcome, info Info) {
	switch action {
	case environment.ActionCreate:
		switch outcome {
		case OutcomeInProgress:
			l.DeploymentInProgress(info)
		case OutcomeSuccess:
			l.Deployed(info)
		case OutcomeError:
			l.DeploymentError(info)
		}
	case environment.ActionPause:
		switch outcome {
		case OutcomeInProgress:
			l.PauseInProgress(info)
		case OutcomeSuccess:
			l.Paused(info)
		case OutcomeError:
			l.PauseError(info)
		}
	case environment.ActionDelete:
		switch outcome {
		case OutcomeInProgress:
			l.DeleteInProgress(info)
		case OutcomeSuccess:
			l.Deleted(info)
		case OutcomeError:
			l.DeleteError(info)
		}
	case environment.ActionNothing:
	}
}
