package batch

import (
	"fmt"

	"github.com/zeusync/ecsworld/internal/core/lock"
	"github.com/zeusync/ecsworld/internal/core/models"
)

// Candidate is the minimal shape Place needs from an async system: its
// identity, its static lock-set, and the tags it must run after. The
// schedule package's system descriptor satisfies this by construction.
type Candidate struct {
	Tag      models.SystemTag
	Locks    lock.Set
	RunAfter []models.SystemTag
}

// Batch is one group of candidates the analyzer has decided may run in
// parallel — no two members conflict on their lock-sets.
type Batch []Candidate

// Plan is the ordered, batched placement of every async system added so
// far. Batch order reflects run_after constraints transitively (spec §3
// "Schedule").
type Plan []Batch

// Place runs the batching analyzer (spec §4.2) for a new candidate against
// the current plan and returns the updated plan. It never mutates plan's
// backing storage; callers get a fresh Plan back.
//
// Algorithm: resolve run_after into a minimum starting batch index k (one
// past the latest batch holding any predecessor, or 0 if there are none),
// then scan batches k..n in order and place the candidate in the first one
// with no lock conflict; if none accepts it, append a new batch after the
// last one.
func Place(plan Plan, c Candidate) (Plan, error) {
	k := 0
	for _, pred := range c.RunAfter {
		idx, found := indexOf(plan, pred)
		if !found {
			return plan, fmt.Errorf("system %q: %w %q", c.Tag, ErrUnknownPredecessor, pred)
		}
		if idx+1 > k {
			k = idx + 1
		}
	}

	next := make(Plan, len(plan))
	copy(next, plan)

	for i := k; i < len(next); i++ {
		if !conflictsWithBatch(next[i], c) {
			next[i] = append(append(Batch{}, next[i]...), c)
			return next, nil
		}
	}

	next = append(next, Batch{c})
	return next, nil
}

// indexOf returns the index of the batch containing tag, if any.
func indexOf(plan Plan, tag models.SystemTag) (int, bool) {
	for i, b := range plan {
		for _, c := range b {
			if c.Tag == tag {
				return i, true
			}
		}
	}
	return 0, false
}

func conflictsWithBatch(b Batch, c Candidate) bool {
	for _, existing := range b {
		if lock.Conflicts(existing.Locks, c.Locks) {
			return true
		}
	}
	return false
}
