package frame

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/ecsworld/internal/core/lock"
	"github.com/zeusync/ecsworld/internal/core/models"
	"github.com/zeusync/ecsworld/internal/core/schedule"
	"github.com/zeusync/ecsworld/internal/core/store"
	"github.com/zeusync/ecsworld/internal/core/systems"
)

// countingSystem increments a shared counter every time it executes and
// calls onTick (if set) with the new count. It never locks any component,
// so it never conflicts with anything else in its batch.
type countingSystem struct {
	count  *atomic.Int64
	onTick func(int64)
}

func (s *countingSystem) LockedComponents() lock.Set { return nil }
func (s *countingSystem) Execute(_ context.Context, _ systems.FrameData) error {
	n := s.count.Add(1)
	if s.onTick != nil {
		s.onTick(n)
	}
	return nil
}

// failingSystem always returns an error, to exercise SystemCrash.
type failingSystem struct{}

func (failingSystem) LockedComponents() lock.Set { return nil }
func (failingSystem) Execute(_ context.Context, _ systems.FrameData) error {
	return errors.New("boom")
}

func buildSchedule(t *testing.T, add func(*schedule.Builder) error) *schedule.Schedule {
	t.Helper()
	b := schedule.NewBuilder(nil, nil)
	require.NoError(t, add(b))
	sched, err := b.Finalize()
	require.NoError(t, err)
	return sched
}

func TestDriverRunsUntilShutdownRequested(t *testing.T) {
	var count atomic.Int64
	var driver *Driver

	sys := &countingSystem{count: &count}
	sched := buildSchedule(t, func(b *schedule.Builder) error {
		return b.AddSystem("counter", sys, schedule.Options{})
	})

	driver = New(sched, store.New(), nil, 0, Hooks{})
	sys.onTick = func(n int64) {
		if n >= 5 {
			driver.RequestShutdown()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- driver.Run(ctx, nil) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("driver did not shut down in time")
	}

	require.GreaterOrEqual(t, count.Load(), int64(5))

	snap := driver.Snapshot()
	require.Equal(t, StatusTerminated, snap.Status)
}

func TestDriverPropagatesSystemCrash(t *testing.T) {
	sched := buildSchedule(t, func(b *schedule.Builder) error {
		return b.AddStartupSystem("boom", failingSystem{})
	})
	driver := New(sched, store.New(), nil, 0, Hooks{})

	err := driver.Run(context.Background(), nil)
	require.ErrorIs(t, err, ErrSystemCrash)
}

func TestDriverRecordsPerSystemMetrics(t *testing.T) {
	var count atomic.Int64
	var driver *Driver
	sys := &countingSystem{count: &count}
	sched := buildSchedule(t, func(b *schedule.Builder) error {
		return b.AddSystem("counter", sys, schedule.Options{})
	})
	driver = New(sched, store.New(), nil, 0, Hooks{})
	sys.onTick = func(n int64) {
		if n >= 3 {
			driver.RequestShutdown()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, driver.Run(ctx, nil))

	m, ok := driver.Metrics()[models.SystemTag("counter")]
	require.True(t, ok)
	require.GreaterOrEqual(t, m.ExecutionCount, uint64(3))
}
