package frame

import "errors"

// Runtime-fatal errors (spec §7). Both terminate the world; recovery is
// delegated to whatever supervises it.
var (
	// ErrUnexpectedCompletion fires when a completion signal names an
	// identifier the await_set never held — a corrupted scheduling state.
	ErrUnexpectedCompletion = errors.New("completion signal for an identifier not in the await set")

	// ErrSystemCrash wraps a system task's own error. The driver does not
	// attempt partial-frame recovery.
	ErrSystemCrash = errors.New("system task failed")
)
