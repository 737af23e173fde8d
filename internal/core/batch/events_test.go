package batch

import (
	"testing"
	"time"
)

func TestBatchEventsKeyedOrdering(t *testing.T) {
	// S4: [((E,1),t=1), ((E,1),t=2), ((E,2),t=1)] ->
	// [[e@t=1 key1, e@t=1 key2], [e@t=2 key1]]
	base := time.Unix(0, 0)
	k1 := EventKey{Type: "E", ID: "1"}
	k2 := EventKey{Type: "E", ID: "2"}

	events := []Event{
		{Key: k1, InsertedAt: base.Add(1)},
		{Key: k1, InsertedAt: base.Add(2)},
		{Key: k2, InsertedAt: base.Add(1)},
	}

	batches := BatchEvents(events)
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d: %v", len(batches), batches)
	}
	if len(batches[0]) != 2 {
		t.Fatalf("expected first batch to hold both t=1 events, got %v", batches[0])
	}
	if len(batches[1]) != 1 || batches[1][0].Key != k1 {
		t.Fatalf("expected second batch to hold the later key1 event, got %v", batches[1])
	}
}

func TestBatchEventsEmpty(t *testing.T) {
	if got := BatchEvents(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestBatchEventsSingleElementPerKeyYieldsOneBatch(t *testing.T) {
	base := time.Unix(0, 0)
	events := []Event{
		{Key: EventKey{Type: "E", ID: "1"}, InsertedAt: base},
		{Key: EventKey{Type: "E", ID: "2"}, InsertedAt: base.Add(time.Millisecond)},
		{Key: EventKey{Type: "E", ID: "3"}, InsertedAt: base.Add(2 * time.Millisecond)},
	}
	batches := BatchEvents(events)
	if len(batches) != 1 {
		t.Fatalf("expected exactly one batch, got %d", len(batches))
	}
	if len(batches[0]) != 3 {
		t.Fatalf("expected all 3 events in the one batch, got %d", len(batches[0]))
	}
}

func TestBatchEventsPreservesPerKeyOrder(t *testing.T) {
	base := time.Unix(0, 0)
	k := EventKey{Type: "E", ID: "1"}
	events := []Event{
		{Key: k, Data: "third", InsertedAt: base.Add(3 * time.Millisecond)},
		{Key: k, Data: "first", InsertedAt: base.Add(time.Millisecond)},
		{Key: k, Data: "second", InsertedAt: base.Add(2 * time.Millisecond)},
	}
	batches := BatchEvents(events)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches for 3 same-key events, got %d", len(batches))
	}
	for i, want := range []string{"first", "second", "third"} {
		if batches[i][0].Data != want {
			t.Fatalf("batch %d: got %v, want %q", i, batches[i][0].Data, want)
		}
	}
}
