package batch

import (
	"errors"
	"testing"

	"github.com/zeusync/ecsworld/internal/core/lock"
	"github.com/zeusync/ecsworld/internal/core/models"
)

func tag(s string) models.SystemTag { return models.SystemTag(s) }

func TestPlaceLockConflictForcesNewBatch(t *testing.T) {
	// S1: A(C1), B(C1), C(C2) -> [[A,C],[B]]
	var plan Plan
	var err error
	plan, err = Place(plan, Candidate{Tag: tag("A"), Locks: lock.Set{lock.Bare(1)}})
	mustNoErr(t, err)
	plan, err = Place(plan, Candidate{Tag: tag("B"), Locks: lock.Set{lock.Bare(1)}})
	mustNoErr(t, err)
	plan, err = Place(plan, Candidate{Tag: tag("C"), Locks: lock.Set{lock.Bare(2)}})
	mustNoErr(t, err)

	assertPlan(t, plan, [][]string{{"A", "C"}, {"B"}})
}

func TestPlaceEntityScopedVsBare(t *testing.T) {
	// S2: A(C1 bare), B(C1@T) -> [[A],[B]]
	var plan Plan
	var err error
	plan, err = Place(plan, Candidate{Tag: tag("A"), Locks: lock.Set{lock.Bare(1)}})
	mustNoErr(t, err)
	plan, err = Place(plan, Candidate{Tag: tag("B"), Locks: lock.Set{lock.Scoped(1, 99)}})
	mustNoErr(t, err)

	assertPlan(t, plan, [][]string{{"A"}, {"B"}})
}

func TestPlaceRunAfterCrossesBatches(t *testing.T) {
	// S3: A(C1), B(C2), C(C3, run_after:[A]) -> [[A,B],[C]]
	var plan Plan
	var err error
	plan, err = Place(plan, Candidate{Tag: tag("A"), Locks: lock.Set{lock.Bare(1)}})
	mustNoErr(t, err)
	plan, err = Place(plan, Candidate{Tag: tag("B"), Locks: lock.Set{lock.Bare(2)}})
	mustNoErr(t, err)
	plan, err = Place(plan, Candidate{Tag: tag("C"), Locks: lock.Set{lock.Bare(3)}, RunAfter: []models.SystemTag{tag("A")}})
	mustNoErr(t, err)

	assertPlan(t, plan, [][]string{{"A", "B"}, {"C"}})
}

func TestPlaceNoConflictGoesIntoBatchZero(t *testing.T) {
	var plan Plan
	var err error
	plan, err = Place(plan, Candidate{Tag: tag("A"), Locks: lock.Set{lock.Bare(1)}})
	mustNoErr(t, err)
	plan, err = Place(plan, Candidate{Tag: tag("B"), Locks: lock.Set{lock.Bare(2)}})
	mustNoErr(t, err)

	if len(plan) != 1 || len(plan[0]) != 2 {
		t.Fatalf("expected a single batch of two, got %v", plan)
	}
}

func TestPlaceUnknownPredecessor(t *testing.T) {
	var plan Plan
	_, err := Place(plan, Candidate{Tag: tag("C"), RunAfter: []models.SystemTag{tag("ghost")}})
	if !errors.Is(err, ErrUnknownPredecessor) {
		t.Fatalf("expected ErrUnknownPredecessor, got %v", err)
	}
}

func TestPlaceDoesNotMutateInputPlan(t *testing.T) {
	var plan Plan
	var err error
	plan, err = Place(plan, Candidate{Tag: tag("A"), Locks: lock.Set{lock.Bare(1)}})
	mustNoErr(t, err)
	before := len(plan[0])

	_, err = Place(plan, Candidate{Tag: tag("B"), Locks: lock.Set{lock.Bare(1)}})
	mustNoErr(t, err)

	if len(plan[0]) != before {
		t.Fatalf("Place mutated the caller's plan slice")
	}
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertPlan(t *testing.T, plan Plan, want [][]string) {
	t.Helper()
	if len(plan) != len(want) {
		t.Fatalf("got %d batches, want %d: %v", len(plan), len(want), plan)
	}
	for i, batch := range plan {
		if len(batch) != len(want[i]) {
			t.Fatalf("batch %d: got %d systems, want %d", i, len(batch), len(want[i]))
		}
		for j, c := range batch {
			if string(c.Tag) != want[i][j] {
				t.Fatalf("batch %d[%d]: got %q, want %q", i, j, c.Tag, want[i][j])
			}
		}
	}
}
