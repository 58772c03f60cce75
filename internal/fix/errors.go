package fix

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolved marks a run in which some findings could not be fixed.
	ErrUnresolved = errors.New("some fixable findings could not be fixed")
	// ErrNoProgress is returned when a successful single fix leaves the same
	// finding in place.
	ErrNoProgress = errors.New("fix did not make progress")
	// ErrIterationLimit is returned when the iteration cap is reached.
	ErrIterationLimit = errors.New("iteration limit reached")
	// ErrBulkIncomplete is returned when instances of an identifier remain after
	// a bulk fix.
	ErrBulkIncomplete = errors.New("bulk fix did not make all fixes")
	// ErrProviderPanic wraps a recovered provider panic.
	ErrProviderPanic = errors.New("provider panicked")
	// ErrRulePanic wraps a recovered rule panic.
	ErrRulePanic = errors.New("rule panicked")
	// ErrMissingFile is returned when a finding points at a file that is not
	// current in the snapshot.
	ErrMissingFile = errors.New("finding refers to a file outside the snapshot")
	// ErrCommit wraps workspace commit failures.
	ErrCommit = errors.New("changes could not be applied to the workspace")
)

// recoverAs runs fn and converts a panic into an error wrapping sentinel.
func recoverAs(sentinel error, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", sentinel, r)
		}
	}()
	return fn()
}
