package batch

import (
	"time"

	"github.com/zeusync/ecsworld/pkg/sequence"
)

// EventKey identifies one logical event slot: an event type together with a
// caller-supplied id. Two events with the same key inserted in the same
// frame must land in different output batches (spec §4.5).
type EventKey struct {
	Type string
	ID   string
}

// Event is one entry drained from the events table, still carrying its
// insertion time so the batcher can order it.
type Event struct {
	Key        EventKey
	Data       any
	InsertedAt time.Time
}

// EventBatch is one maximal group of events with pairwise-distinct keys.
type EventBatch []Event

// BatchEvents implements the event batcher (spec §4.5): sort the input
// ascending by InsertedAt, then repeatedly peel off the first occurrence of
// each distinct key in the remainder until nothing is left. It is a pure
// function — it never touches the events table itself, only the already
// drained slice the caller hands it.
//
// Events are popped from a min-heap ordered by insertion time. Each pass
// drains the whole heap, keeps the first event seen per key, and pushes the
// rest back onto the heap for the next pass.
func BatchEvents(events []Event) []EventBatch {
	if len(events) == 0 {
		return nil
	}

	pq := sequence.NewPriorityQueue[Event]()
	for _, e := range events {
		// PriorityQueue is a max-heap on Priority; negate the timestamp so
		// the earliest-inserted event has the highest priority and pops
		// first.
		pq.Enqueue(e, -int(e.InsertedAt.UnixNano()))
	}

	var batches []EventBatch
	for pq.Len() > 0 {
		seen := make(map[EventKey]struct{})
		var leftover []Event
		var current EventBatch
		for pq.Len() > 0 {
			e, _ := pq.Dequeue()
			if _, dup := seen[e.Key]; dup {
				leftover = append(leftover, e)
				continue
			}
			seen[e.Key] = struct{}{}
			current = append(current, e)
		}
		batches = append(batches, current)
		for _, e := range leftover {
			pq.Enqueue(e, -int(e.InsertedAt.UnixNano()))
		}
	}
	return batches
}
