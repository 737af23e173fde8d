package schedule

import "github.com/zeusync/ecsworld/internal/core/models"

// Options carries the per-add gating/ordering declarations a user supplies
// to add_frame_start_system, add_system, add_frame_end_system, and
// add_system_set (spec §4.1). add_startup_system and add_shutdown_system
// accept no options at all.
type Options struct {
	RunInState    []string
	RunNotInState []string
	RunIf         []ConditionSpec
	// RunAfter only has meaning on the async phase; sync add_* operations
	// warn and discard it.
	RunAfter []models.SystemTag
}

// ConditionSpec is the "(M, F)" pair from spec §4.1/§4.3: a caller-chosen
// identity key (M) and the nullary predicate itself (F). The key is what
// the run-condition cache keys on, since Go functions are not comparable.
type ConditionSpec struct {
	Key  string
	Eval func() (bool, error)
}

// Merge implements the system-set option-merging rule (spec §4.1): union,
// flatten, de-duplicate, per option key. It is idempotent — Merge(o, o)
// reproduces o up to slice ordering of first occurrence.
func Merge(opts ...Options) Options {
	var out Options
	seenState := make(map[string]struct{})
	seenNotState := make(map[string]struct{})
	seenCond := make(map[string]struct{})
	seenAfter := make(map[models.SystemTag]struct{})

	for _, o := range opts {
		for _, s := range o.RunInState {
			if _, ok := seenState[s]; !ok {
				seenState[s] = struct{}{}
				out.RunInState = append(out.RunInState, s)
			}
		}
		for _, s := range o.RunNotInState {
			if _, ok := seenNotState[s]; !ok {
				seenNotState[s] = struct{}{}
				out.RunNotInState = append(out.RunNotInState, s)
			}
		}
		for _, c := range o.RunIf {
			if _, ok := seenCond[c.Key]; !ok {
				seenCond[c.Key] = struct{}{}
				out.RunIf = append(out.RunIf, c)
			}
		}
		for _, a := range o.RunAfter {
			if _, ok := seenAfter[a]; !ok {
				seenAfter[a] = struct{}{}
				out.RunAfter = append(out.RunAfter, a)
			}
		}
	}
	return out
}
