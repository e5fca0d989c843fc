package transaction

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrAlreadyCommitted is returned when Commit is called twice.
var ErrAlreadyCommitted = errors.New("transaction already committed")

// ResultKind is the outcome class of a commit.
type ResultKind int

const (
	ResultOk ResultKind = iota
	ResultCanceled
	ResultError
)

func (k ResultKind) String() string {
	switch k {
	case ResultOk:
		return "ok"
	case ResultCanceled:
		return "canceled"
	case ResultError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the outcome of a commit. Canceled is a user-initiated stop and
// is not an incident; Error carries the failure that ended the commit.
type Result struct {
	Kind ResultKind
	Err  error
}

func Ok() Result { return Result{Kind: ResultOk} }
func Canceled() Result { return Result{Kind: ResultCanceled} }
func Failed(err error) Result { return Result{Kind: ResultError, Err: err} }
func (r Result) IsOk() bool { return r.Kind == ResultOk }
func (r Result) IsCanceled() bool { return r.Kind == ResultCanceled }
func (r Result) IsError() bool { return r.Kind == ResultError }

func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %v", r.Kind, r.Err)
	}
	return r.Kind.String()
}

// RollbackError is returned when a compensating hook fails.
type RollbackError struct {
	Step StepName
	Err  error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback of %s failed: %v", e.Step, e.Err)
}

func (e *RollbackError) Unwrap() error { return e.Err }

// ExecutorError is returned by an EnvironmentExecutor that failed part way.
// Processed holds the long IDs of the services it completed.
type ExecutorError struct {
	Processed map[uuid.UUID]struct{}
	Err       error
}

// NewExecutorError wraps err with the services processed before it occurred.
func NewExecutorError(err error, processed ...uuid.UUID) *ExecutorError {
	set := make(map[uuid.UUID]struct{}, len(processed))
	for _, id := range processed {
		set[id] = struct{}{}
	}
	return &ExecutorError{Processed: set, Err: err}
}

func (e *ExecutorError) Error() string { return e.Err.Error() }

func (e *ExecutorError) Unwrap() error { return e.Err }

// processedServices extracts the processed set from an executor error. Any
// other error means nothing was processed.
func processedServices(err error) map[uuid.UUID]struct{} {
	var execErr *ExecutorError
	if errors.As(err, &execErr) && execErr.Processed != nil {
		return execErr.Processed
	}
	return map[uuid.UUID]struct{}{}
}
