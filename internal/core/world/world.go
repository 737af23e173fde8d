// Package world implements the world process of spec §4's component list:
// the owning entity that holds the frame driver's state, exposes lifecycle
// operations, and owns the shared stores through a stable handle.
package world

import (
	"context"
	"sync/atomic"

	"github.com/zeusync/ecsworld/internal/core/events/bus"
	"github.com/zeusync/ecsworld/internal/core/frame"
	"github.com/zeusync/ecsworld/internal/core/models"
	"github.com/zeusync/ecsworld/internal/core/observability/log"
	"github.com/zeusync/ecsworld/internal/core/schedule"
	"github.com/zeusync/ecsworld/internal/core/store"
	"github.com/zeusync/ecsworld/internal/core/systems"
)

const (
	eventTypePhase       = "world.phase"
	eventTypeSystemError = "world.system_error"
)

// World owns one frame.Driver, its Store, and the Config it was built with.
// It is the only thing callers construct directly; everything it needs was
// already assembled by a schedule.Builder before reaching here.
type World struct {
	cfg    Config
	driver *frame.Driver
	store  store.Store
	log    log.Log
	bus    bus.EventBus

	frameCount atomic.Uint64
}

// New validates cfg and assembles a World around a finalized Schedule and
// Store. eventBus may be nil, in which case phase transitions and system
// errors are never published; system errors are still logged by the driver
// when logger is non-nil, and phase transitions are not logged.
func New(cfg Config, sched *schedule.Schedule, st store.Store, logger log.Log, eventBus bus.EventBus) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &World{cfg: cfg, store: st, log: logger, bus: eventBus}
	w.driver = frame.New(sched, st, logger, cfg.FPSLimit, frame.Hooks{
		OnPhase:       w.onPhase,
		OnSystemError: w.onSystemError,
	})
	return w, nil
}

func (w *World) onPhase(s frame.Status) {
	if s == frame.StatusFrameStart {
		w.frameCount.Add(1)
	}
	if w.bus == nil {
		return
	}
	_ = w.bus.Publish(bus.NewEvent(eventTypePhase, "world", s.String(), 0, nil))
}

func (w *World) onSystemError(err error) {
	if w.bus == nil {
		return
	}
	_ = w.bus.Publish(bus.NewEvent(eventTypeSystemError, "world", err.Error(), 0, nil))
}

// Start runs the world until ctx is cancelled or Shutdown is called. It
// blocks for the world's whole lifetime, returning the same error frame.Run
// would: nil on a clean shutdown, a wrapped fatal error otherwise.
func (w *World) Start(ctx context.Context) error {
	return w.driver.Run(ctx, w.cfg.StartupEvents)
}

// Shutdown requests that the world stop once its current frame drains. It
// does not block; call Start's return to know when it actually has.
func (w *World) Shutdown() {
	w.driver.RequestShutdown()
}

// Store returns the world's shared stores handle.
func (w *World) Store() store.Store {
	return w.store
}

// Metrics returns the accumulated per-system execution metrics, grounded on
// the teacher's ManagerMetrics/GetMetrics debug surface.
func (w *World) Metrics() map[models.SystemTag]systems.Metrics {
	return w.driver.Metrics()
}

// DebugSnapshot returns the world's current frame state (spec §6 "Debug
// surface"), or ErrDebugDisabled if Config.DebugEnabled is false.
func (w *World) DebugSnapshot() (DebugSnapshot, error) {
	if !w.cfg.DebugEnabled {
		return DebugSnapshot{}, ErrDebugDisabled
	}
	return DebugSnapshot{
		Snapshot:   w.driver.Snapshot(),
		FrameCount: w.frameCount.Load(),
	}, nil
}
