// Package frame implements the frame driver (spec §4.4): the long-running
// state machine that cycles a world through startup, the three per-frame
// phases, and shutdown, dispatching systems and enforcing the FPS ceiling.
package frame

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/ecsworld/internal/core/batch"
	"github.com/zeusync/ecsworld/internal/core/condition"
	"github.com/zeusync/ecsworld/internal/core/models"
	"github.com/zeusync/ecsworld/internal/core/observability/log"
	"github.com/zeusync/ecsworld/internal/core/schedule"
	"github.com/zeusync/ecsworld/internal/core/store"
	"github.com/zeusync/ecsworld/internal/core/systems"
	"github.com/zeusync/ecsworld/pkg/concurrent"
	"github.com/zeusync/ecsworld/pkg/generic"
	"github.com/zeusync/ecsworld/pkg/sequence"
)

// Hooks lets the owning world process observe phase transitions and system
// failures without the driver importing anything about it. Both may be nil.
type Hooks struct {
	OnPhase       func(Status)
	OnSystemError func(err error)
}

// completion is the signal a dispatched task sends back when its system's
// Execute call returns (spec §4.4 "Task completion protocol").
type completion struct {
	id  uuid.UUID
	err error
}

// Driver owns the frame state machine of spec §3 "Frame state". It is not
// safe for concurrent use except for the snapshot and shutdown-request
// paths, which take an internal lock.
type Driver struct {
	sched *schedule.Schedule
	store store.Store
	cond  *condition.Engine
	log   log.Log
	hooks Hooks

	fpsLimit int // frames per second; 0 means unlimited.

	mu            sync.Mutex
	status        Status
	timer         TimerState
	awaitSet      map[uuid.UUID]struct{}
	lastFrameTime time.Time
	delta         time.Duration
	frameData     systems.FrameData
	metrics       map[models.SystemTag]*systems.Metrics

	shutdownOnce sync.Once
	shutdownCh   chan struct{}

	completionsPool *generic.Pool[[]completion]
}

// New constructs a Driver over a finalized Schedule and Store. fpsLimit of 0
// means unlimited (spec §6 "Configuration").
func New(sched *schedule.Schedule, st store.Store, logger log.Log, fpsLimit int, hooks Hooks) *Driver {
	return &Driver{
		sched:      sched,
		store:      st,
		cond:       condition.New(),
		log:        logger,
		hooks:      hooks,
		fpsLimit:   fpsLimit,
		status:     StatusStartup,
		timer:      TimerFinished,
		awaitSet:   make(map[uuid.UUID]struct{}),
		metrics:    make(map[models.SystemTag]*systems.Metrics),
		shutdownCh: make(chan struct{}),
		completionsPool: generic.NewPool(func() []completion {
			return make([]completion, 0, 8)
		}),
	}
}

// RequestShutdown signals the driver to stop once the current frame drains.
// Safe to call from any goroutine, any number of times.
func (d *Driver) RequestShutdown() {
	d.shutdownOnce.Do(func() { close(d.shutdownCh) })
}

func (d *Driver) shuttingDown() bool {
	select {
	case <-d.shutdownCh:
		return true
	default:
		return false
	}
}

func (d *Driver) setStatus(s Status) {
	d.mu.Lock()
	d.status = s
	d.mu.Unlock()
	if d.hooks.OnPhase != nil {
		d.hooks.OnPhase(s)
	}
}

// Run drives the world from startup through shutdown. It returns when
// RequestShutdown is called (after shutdown systems finish) or ctx is
// cancelled, or nil error unless a fatal error per spec §7 occurred. startup
// events are batched into the FrameData startup systems see, per spec §6
// "Startup events".
func (d *Driver) Run(ctx context.Context, startupEvents []batch.Event) error {
	startupData := systems.FrameData{Batches: batch.BatchEvents(startupEvents)}
	d.mu.Lock()
	d.frameData = startupData
	d.mu.Unlock()

	d.setStatus(StatusStartup)
	if err := d.dispatchSync(ctx, d.sched.Startup, startupData, true); err != nil {
		return err
	}

	d.mu.Lock()
	d.lastFrameTime = time.Now()
	d.mu.Unlock()

	for {
		if err := d.runFrame(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil || d.shuttingDown() {
			break
		}
	}

	d.setStatus(StatusShutdown)
	d.mu.Lock()
	lastData := d.frameData
	d.mu.Unlock()
	if err := d.dispatchSync(ctx, d.sched.Shutdown, lastData, true); err != nil {
		return err
	}
	d.setStatus(StatusTerminated)
	return nil
}

// runFrame executes exactly one frame_start -> async -> frame_end cycle and
// then waits out whatever remains of the FPS ceiling.
func (d *Driver) runFrame(ctx context.Context) error {
	frameBegin := time.Now()

	d.mu.Lock()
	now := time.Now()
	delta := now.Sub(d.lastFrameTime)
	d.delta = delta
	d.lastFrameTime = now
	d.mu.Unlock()

	drained := d.store.DrainEvents()
	frameData := systems.FrameData{Delta: delta, Batches: batch.BatchEvents(drained)}

	if err := d.cond.Refresh(d.sched.Predicates); err != nil {
		return err
	}

	d.mu.Lock()
	d.frameData = frameData
	d.timer = TimerRunning
	d.mu.Unlock()

	d.setStatus(StatusFrameStart)
	if err := d.dispatchSync(ctx, d.sched.FrameStart, frameData, false); err != nil {
		return err
	}

	d.setStatus(StatusAsync)
	if err := d.dispatchAsync(ctx, frameData); err != nil {
		return err
	}

	d.setStatus(StatusFrameEnd)
	if err := d.dispatchSync(ctx, d.sched.FrameEnd, frameData, false); err != nil {
		return err
	}

	d.setStatus(StatusFrameEnded)
	if err := d.waitForFrameBudget(ctx, frameBegin); err != nil {
		return err
	}

	d.mu.Lock()
	d.timer = TimerFinished
	d.mu.Unlock()
	return nil
}

// waitForFrameBudget implements the FPS ceiling (spec §4.4 "Frame-rate
// discipline", scenario S5): the next frame starts no sooner than
// 1000/fps_limit ms after the previous one began, and immediately if the
// systems already overran that budget. fpsLimit == 0 means unlimited: no
// wait at all.
func (d *Driver) waitForFrameBudget(ctx context.Context, frameBegin time.Time) error {
	if d.fpsLimit <= 0 {
		return nil
	}
	budget := time.Duration(float64(time.Second) / float64(d.fpsLimit))
	remaining := budget - time.Since(frameBegin)
	if remaining <= 0 {
		return nil
	}
	select {
	case <-time.After(remaining):
		return nil
	case <-ctx.Done():
		return nil
	case <-d.shutdownCh:
		return nil
	}
}

// dispatchSync runs descriptors one at a time, in order, awaiting each
// before starting the next (spec §5 "Sync phases: strict insertion order").
// Startup and shutdown systems are gate-less; frame_start/frame_end systems
// are gated by the run-condition cache.
func (d *Driver) dispatchSync(ctx context.Context, descs []schedule.Descriptor, data systems.FrameData, gateless bool) error {
	for _, desc := range descs {
		if !gateless && !d.cond.Gate(desc.ConditionKeys) {
			continue
		}
		id := uuid.New()
		d.trackAwait(id)
		c := d.runTaskSync(ctx, id, desc, data)
		if err := d.settleCompletion(c); err != nil {
			d.reportSystemError(err)
			return err
		}
	}
	return nil
}

// dispatchAsync runs every batch of the async plan in order; within a
// batch, every gated system runs concurrently and the driver awaits the
// whole batch before moving to the next one (spec §4.4, §5).
func (d *Driver) dispatchAsync(ctx context.Context, data systems.FrameData) error {
	for _, b := range d.sched.AsyncBatches() {
		gated := make([]schedule.Descriptor, 0, len(b))
		for _, desc := range b {
			if d.cond.Gate(desc.ConditionKeys) {
				gated = append(gated, desc)
			}
		}
		if len(gated) == 0 {
			continue
		}

		ids := make([]uuid.UUID, len(gated))
		for i := range gated {
			ids[i] = uuid.New()
			d.trackAwait(ids[i])
		}

		completions := d.completionsPool.Get()
		if cap(completions) < len(gated) {
			completions = make([]completion, len(gated))
		} else {
			completions = completions[:len(gated)]
		}

		_ = concurrent.Concurrent(sequence.From(indices(len(gated))), func(i int) error {
			c := d.runTaskSync(ctx, ids[i], gated[i], data)
			completions[i] = c
			return c.err
		})

		var first error
		for _, c := range completions {
			if settleErr := d.settleCompletion(c); settleErr != nil && first == nil {
				first = settleErr
			}
		}
		d.completionsPool.Put(completions[:0])
		if first != nil {
			d.reportSystemError(first)
			return first
		}
	}
	return nil
}

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// runTaskSync executes one system's Execute call and folds the outcome into
// its per-tag Metrics, regardless of whether the caller dispatched it from
// a sync phase or as one member of an async batch.
func (d *Driver) runTaskSync(ctx context.Context, id uuid.UUID, desc schedule.Descriptor, data systems.FrameData) completion {
	start := time.Now()
	err := desc.Sys.Execute(ctx, data)
	d.recordMetrics(desc.Tag, time.Since(start), err)
	if err != nil {
		err = fmt.Errorf("system %q: %w: %v", desc.Tag, ErrSystemCrash, err)
	}
	return completion{id: id, err: err}
}

func (d *Driver) recordMetrics(tag models.SystemTag, elapsed time.Duration, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.metrics[tag]
	if !ok {
		m = &systems.Metrics{}
		d.metrics[tag] = m
	}
	m.Record(elapsed, err)
}

// Metrics returns a snapshot of every system's accumulated Metrics, keyed
// by tag.
func (d *Driver) Metrics() map[models.SystemTag]systems.Metrics {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[models.SystemTag]systems.Metrics, len(d.metrics))
	for tag, m := range d.metrics {
		out[tag] = *m
	}
	return out
}

// trackAwait adds id to the await_set (spec §3 "Frame state").
func (d *Driver) trackAwait(id uuid.UUID) {
	d.mu.Lock()
	d.awaitSet[id] = struct{}{}
	d.mu.Unlock()
}

// settleCompletion removes a completion's identifier from the await_set,
// returning ErrUnexpectedCompletion if it was never tracked (spec §7).
func (d *Driver) settleCompletion(c completion) error {
	d.mu.Lock()
	_, tracked := d.awaitSet[c.id]
	delete(d.awaitSet, c.id)
	d.mu.Unlock()
	if !tracked {
		return fmt.Errorf("%w: %s", ErrUnexpectedCompletion, c.id)
	}
	return c.err
}

func (d *Driver) reportSystemError(err error) {
	if d.hooks.OnSystemError != nil {
		d.hooks.OnSystemError(err)
	}
	if d.log != nil {
		d.log.Error("system task failed", log.Error(err))
	}
}
