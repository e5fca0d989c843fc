package build

import (
	"errors"
	"fmt"

	"github.com/imamik/k8zenv/internal/environment"
)

// ErrAborted is returned, possibly wrapped, by a Platform whose build was
// interrupted through the abort predicate.
var ErrAborted = errors.New("build aborted")

// ErrorKind distinguishes a cancellation from a genuine build failure.
type ErrorKind int

const (
	KindFailed ErrorKind = iota
	KindAborted
)

// Error is the failure of one application build.
type Error struct {
	Kind  ErrorKind
	Image environment.Image
	Err   error
}

func (e *Error) Error() string {
	if e.Kind == KindAborted {
		return fmt.Sprintf("build of %s has been canceled", e.Image.FullImageNameWithTag())
	}
	return fmt.Sprintf("build of %s failed: %v", e.Image.FullImageNameWithTag(), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsAborted reports whether err is a build cancellation.
func IsAborted(err error) bool {
	var buildErr *Error
	if errors.As(err, &buildErr) && buildErr.Kind == KindAborted {
		return true
	}
	return errors.Is(err, ErrAborted)
}
