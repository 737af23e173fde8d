// Package movement is a worked example of a user-authored async system: it
// declares a lock on the position component and integrates velocity over
// the frame delta. It exists to exercise the scheduler end to end in the
// cmd/ecsworld demo, not as a reusable physics engine.
package movement

import (
	"context"
	"math"
	"sync"

	"github.com/zeusync/ecsworld/internal/core/lock"
	"github.com/zeusync/ecsworld/internal/core/models"
	"github.com/zeusync/ecsworld/internal/core/systems"
)

// PositionComponent is the component type this system locks.
const PositionComponent models.ComponentID = 1

// Vec2 is a minimal 2D vector, used both for positions and velocities.
type Vec2 struct{ X, Y float64 }

// Distance reports the Euclidean distance between two points.
func Distance(a, b Vec2) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// Body is one entity's position and velocity, in world units per second.
type Body struct {
	Position Vec2
	Velocity Vec2
}

// System integrates every registered body's position by Velocity*delta each
// frame. It holds the only lock on PositionComponent, so the batching
// analyzer never parallelizes it alongside another system that also writes
// positions.
type System struct {
	mu     sync.Mutex
	bodies map[models.EntityID]*Body
}

var _ systems.System = (*System)(nil)

// New creates an empty movement system.
func New() *System {
	return &System{bodies: make(map[models.EntityID]*Body)}
}

// Track registers an entity's body for integration. Safe to call
// concurrently with Execute from a different frame, never from the same
// one — systems never run concurrently with themselves.
func (s *System) Track(id models.EntityID, b Body) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[id] = &b
}

// Position returns the current position of a tracked entity.
func (s *System) Position(id models.EntityID) (Vec2, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bodies[id]
	if !ok {
		return Vec2{}, false
	}
	return b.Position, true
}

func (s *System) LockedComponents() lock.Set {
	return lock.Set{lock.Bare(PositionComponent)}
}

func (s *System) Execute(_ context.Context, data systems.FrameData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dt := data.Delta.Seconds()
	for _, b := range s.bodies {
		b.Position.X += b.Velocity.X * dt
		b.Position.Y += b.Velocity.Y * dt
	}
	return nil
}
