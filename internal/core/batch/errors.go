package batch

import "errors"

// Batch-placement errors.
var (
	// ErrUnknownPredecessor is returned by Place when a run_after tag has
	// not yet been placed in any batch (spec §4.2, §7). Fatal at schedule
	// build time.
	ErrUnknownPredecessor = errors.New("run_after references an unknown predecessor")
)
