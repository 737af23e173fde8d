// Package systems defines the contract user code implements to participate
// in a schedule (spec §6 "To user systems"): a static component-lock
// declaration, an execution entry point over the current frame's data, and
// a capability marker the schedule builder uses for its NotASystem check.
package systems

import (
	"context"
	"time"

	"github.com/zeusync/ecsworld/internal/core/batch"
	"github.com/zeusync/ecsworld/internal/core/lock"
)

// FrameData is the read-only view a system's execution entry point receives:
// the elapsed time since the previous frame and the current frame's event
// batches, drained and grouped once at frame start (spec §3 "Frame state").
type FrameData struct {
	Delta   time.Duration
	Batches []batch.EventBatch
}

// System is the capability every schedulable unit must implement. Anything
// that does not satisfy this interface fails the builder's capability check
// with NotASystem.
type System interface {
	// LockedComponents declares, statically, which component types this
	// system may mutate. The schedule builder reads this once, when the
	// system is added; it never changes afterward.
	LockedComponents() lock.Set

	// Execute runs the system's logic against the current frame's data.
	// Shutdown systems receive the last frame_data known at the time they
	// run (spec §4.6); startup systems receive a FrameData holding only the
	// batched startup events, with a zero Delta.
	Execute(ctx context.Context, data FrameData) error
}

// Metrics is the ambient per-system performance counter set exposed through
// the debug surface (spec §12 "Metrics").
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	ErrorCount           uint64
	LastError            error
	LastExecutionTime    time.Time
}

// Record folds one execution's outcome into m.
func (m *Metrics) Record(d time.Duration, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += d
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	m.LastExecutionTime = time.Now()
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}
