package world

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/ecsworld/internal/core/events/bus"
	"github.com/zeusync/ecsworld/internal/core/lock"
	"github.com/zeusync/ecsworld/internal/core/schedule"
	"github.com/zeusync/ecsworld/internal/core/store"
	"github.com/zeusync/ecsworld/internal/core/systems"
)

func TestConfigValidateRejectsNegativeFPSLimit(t *testing.T) {
	cfg := Config{FPSLimit: -1}
	require.Error(t, cfg.Validate())
}

func TestConfigValidateAcceptsUnlimited(t *testing.T) {
	cfg := Config{FPSLimit: 0}
	require.NoError(t, cfg.Validate())
}

type tickSystem struct {
	count *atomic.Int64
	w     **World
}

func (s *tickSystem) LockedComponents() lock.Set { return nil }
func (s *tickSystem) Execute(_ context.Context, _ systems.FrameData) error {
	if n := s.count.Add(1); n >= 3 {
		(*s.w).Shutdown()
	}
	return nil
}

func TestWorldRunsAndPublishesPhaseEvents(t *testing.T) {
	b := schedule.NewBuilder(nil, nil)
	var count atomic.Int64
	var w *World
	require.NoError(t, b.AddSystem("tick", &tickSystem{count: &count, w: &w}, schedule.Options{}))
	sched, err := b.Finalize()
	require.NoError(t, err)

	eventBus := bus.New()
	var phaseEvents atomic.Int64
	_, err = eventBus.Subscribe(eventTypePhase, func(bus.Event) error {
		phaseEvents.Add(1)
		return nil
	})
	require.NoError(t, err)

	w, err = New(Config{FPSLimit: 0}, sched, store.New(), nil, eventBus)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.Greater(t, phaseEvents.Load(), int64(0))
}

func TestDebugSnapshotDisabledByDefault(t *testing.T) {
	sched, err := schedule.NewBuilder(nil, nil).Finalize()
	require.NoError(t, err)
	w, err := New(Config{}, sched, store.New(), nil, nil)
	require.NoError(t, err)

	_, err = w.DebugSnapshot()
	require.ErrorIs(t, err, ErrDebugDisabled)
}

func TestDebugSnapshotReportsFrameCount(t *testing.T) {
	b := schedule.NewBuilder(nil, nil)
	var count atomic.Int64
	var w *World
	require.NoError(t, b.AddSystem("tick", &tickSystem{count: &count, w: &w}, schedule.Options{}))
	sched, err := b.Finalize()
	require.NoError(t, err)

	w, err = New(Config{DebugEnabled: true}, sched, store.New(), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Start(ctx))

	snap, err := w.DebugSnapshot()
	require.NoError(t, err)
	require.GreaterOrEqual(t, snap.FrameCount, uint64(3))
}
