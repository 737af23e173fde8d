package schedule

import "errors"

// Schedule-build errors (spec §7). All are fatal at schedule construction.
var (
	ErrDuplicateSystem = errors.New("system tag already present in the schedule")
	ErrNotASystem      = errors.New("added value does not implement systems.System")

	// ErrUnknownPredecessor is the builder-surface sentinel spec §7 names.
	// AddSystem translates batch.ErrUnknownPredecessor into this one so
	// callers can errors.Is against the package they actually called.
	ErrUnknownPredecessor = errors.New("run_after references a system not yet added")
)
