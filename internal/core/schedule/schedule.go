package schedule

import (
	"github.com/zeusync/ecsworld/internal/core/batch"
	"github.com/zeusync/ecsworld/internal/core/condition"
	"github.com/zeusync/ecsworld/internal/core/models"
)

// Schedule is the finalized, immutable output of a Builder (spec §3
// "Schedule"): five ordered per-phase sequences, plus the async phase's
// batched plan and the deduplicated list of predicates the frame driver
// refreshes once per frame.
type Schedule struct {
	Startup    []Descriptor
	FrameStart []Descriptor
	Async      []Descriptor
	AsyncPlan  batch.Plan
	FrameEnd   []Descriptor
	Shutdown   []Descriptor

	// Predicates is every distinct run-condition across the frame-scoped
	// phases (frame_start, async, frame_end), ready to pass to
	// condition.Engine.Refresh once per frame. Startup and shutdown
	// systems are gate-less/bypass the cache (spec §4.3, §4.6) and so
	// never contribute here.
	Predicates []condition.Predicate
}

// AsyncBatches resolves AsyncPlan's tag-only batches against Async's
// descriptors, producing the runtime shape the frame driver dispatches: an
// ordered list of batches of full Descriptors. AsyncPlan only ever names
// tags added through the same Builder that produced Async, so every lookup
// here is guaranteed to succeed.
func (s *Schedule) AsyncBatches() [][]Descriptor {
	byTag := make(map[models.SystemTag]Descriptor, len(s.Async))
	for _, d := range s.Async {
		byTag[d.Tag] = d
	}
	out := make([][]Descriptor, len(s.AsyncPlan))
	for i, b := range s.AsyncPlan {
		resolved := make([]Descriptor, len(b))
		for j, c := range b {
			resolved[j] = byTag[c.Tag]
		}
		out[i] = resolved
	}
	return out
}

// Phase returns the descriptor list for one phase-queue tag.
func (s *Schedule) Phase(p models.Phase) []Descriptor {
	switch p {
	case models.PhaseStartup:
		return s.Startup
	case models.PhaseFrameStart:
		return s.FrameStart
	case models.PhaseAsync:
		return s.Async
	case models.PhaseFrameEnd:
		return s.FrameEnd
	case models.PhaseShutdown:
		return s.Shutdown
	default:
		return nil
	}
}
