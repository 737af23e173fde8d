package bus

import (
	"testing"
	"time"
)

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	done := make(chan struct{})
	_, err := b.Subscribe("test.event", func(e Event) error {
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err = b.Publish(NewEvent("test.event", "tester", 123, 0, nil)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("handler not called")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	calls := 0
	sub, err := b.Subscribe("test.event", func(e Event) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err = b.Unsubscribe(sub); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err = b.Publish(NewEvent("test.event", "tester", nil, 0, nil)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if calls != 0 {
		t.Fatalf("handler called after unsubscribe: %d", calls)
	}
}

func TestNewEventCarriesFields(t *testing.T) {
	e := NewEvent("world.phase", "world", "frame_start", 5, map[string]any{"k": "v"})
	if e.Type() != "world.phase" || e.Source() != "world" || e.Data() != "frame_start" || e.Priority() != 5 {
		t.Fatalf("event fields not preserved: %+v", e)
	}
	if e.Metadata()["k"] != "v" {
		t.Fatalf("metadata not preserved: %+v", e.Metadata())
	}
}
