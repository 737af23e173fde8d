package frame

import "time"

// Snapshot is the immutable debug view of spec §6 "Debug surface": enough
// of the frame state to diagnose a stuck or misbehaving world without
// exposing any live, mutable structure.
type Snapshot struct {
	Status        Status
	Timer         TimerState
	AwaitSetSize  int
	Delta         time.Duration
	LastFrameTime time.Time
}

// Snapshot captures the driver's current frame state. Gating this behind
// the development/test toggle (spec's DebugDisabled) is the World's job,
// not the driver's — the driver always knows how to answer this.
func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{
		Status:        d.status,
		Timer:         d.timer,
		AwaitSetSize:  len(d.awaitSet),
		Delta:         d.delta,
		LastFrameTime: d.lastFrameTime,
	}
}
