package progress

import (
	"sync"

	"github.com/go-logr/logr"

	"github.com/imamik/k8zenv/internal/environment"
	"github.com/imamik/k8zenv/internal/metrics"
)

// LogListener writes notifications to a logger.
type LogListener struct {
	Log logr.Logger
}

// NewLogListener returns a listener that logs every notification.
func NewLogListener(log logr.Logger) *LogListener {
	return &LogListener{Log: log.WithName("progress")}
}

func (l *LogListener) emit(action environment.Action, outcome Outcome, info Info) {
	kv := []any{
		"action", action.String(),
		"outcome", outcome.String(),
		"service", info.Scope.Kind.String(),
		"id", info.Scope.ID,
		"name", info.Scope.Name,
		"execution", info.ExecutionID,
	}
	if info.Level == LevelError {
		l.Log.Error(nil, info.Message, kv...)
		return
	}
	l.Log.Info(info.Message, kv...)
}

func (l *LogListener) DeploymentInProgress(i Info) { l.emit(environment.ActionCreate, OutcomeInProgress, i) }
func (l *LogListener) Deployed(i Info) { l.emit(environment.ActionCreate, OutcomeSuccess, i) }
func (l *LogListener) DeploymentError(i Info) { l.emit(environment.ActionCreate, OutcomeError, i) }
func (l *LogListener) PauseInProgress(i Info) { l.emit(environment.ActionPause, OutcomeInProgress, i) }
func (l *LogListener) Paused(i Info) { l.emit(environment.ActionPause, OutcomeSuccess, i) }
func (l *LogListener) PauseError(i Info) { l.emit(environment.ActionPause, OutcomeError, i) }
func (l *LogListener) DeleteInProgress(i Info) { l.emit(environment.ActionDelete, OutcomeInProgress, i) }
func (l *LogListener) Deleted(i Info) { l.emit(environment.ActionDelete, OutcomeSuccess, i) }
func (l *LogListener) DeleteError(i Info) { l.emit(environment.ActionDelete, OutcomeError, i) }

// MetricsListener counts terminal notifications.
type MetricsListener struct {
	Metrics *metrics.Metrics
}

func (m *MetricsListener) record(action environment.Action, outcome Outcome, i Info) {
	m.Metrics.RecordServiceReport(i.Scope.Kind.String(), action.String(), outcome.String())
}

func (m *MetricsListener) DeploymentInProgress(Info) {}
func (m *MetricsListener) Deployed(i Info) { m.record(environment.ActionCreate, OutcomeSuccess, i) }
func (m *MetricsListener) DeploymentError(i Info) { m.record(environment.ActionCreate, OutcomeError, i) }
func (m *MetricsListener) PauseInProgress(Info) {}
func (m *MetricsListener) Paused(i Info) { m.record(environment.ActionPause, OutcomeSuccess, i) }
func (m *MetricsListener) PauseError(i Info) { m.record(environment.ActionPause, OutcomeError, i) }
func (m *MetricsListener) DeleteInProgress(Info) {}
func (m *MetricsListener) Deleted(i Info) { m.record(environment.ActionDelete, OutcomeSuccess, i) }
func (m *MetricsListener) DeleteError(i Info) { m.record(environment.ActionDelete, OutcomeError, i) }

// Event is a notification captured by a Recorder.
type Event struct {
	Action  environment.Action
	Outcome Outcome
	Info    Info
}

// Recorder keeps every notification in arrival order. It is safe for
// concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) add(action environment.Action, outcome Outcome, i Info) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Action: action, Outcome: outcome, Info: i})
}

func (r *Recorder) DeploymentInProgress(i Info) { r.add(environment.ActionCreate, OutcomeInProgress, i) }
func (r *Recorder) Deployed(i Info) { r.add(environment.ActionCreate, OutcomeSuccess, i) }
func (r *Recorder) DeploymentError(i Info) { r.add(environment.ActionCreate, OutcomeError, i) }
func (r *Recorder) PauseInProgress(i Info) { r.add(environment.ActionPause, OutcomeInProgress, i) }
func (r *Recorder) Paused(i Info) { r.add(environment.ActionPause, OutcomeSuccess, i) }
func (r *Recorder) PauseError(i Info) { r.add(environment.ActionPause, OutcomeError, i) }
func (r *Recorder) DeleteInProgress(i Info) { r.add(environment.ActionDelete, OutcomeInProgress, i) }
func (r *Recorder) Deleted(i Info) { r.add(environment.ActionDelete, OutcomeSuccess, i) }
func (r *Recorder) DeleteError(i Info) { r.add(environment.ActionDelete, OutcomeError, i) }
