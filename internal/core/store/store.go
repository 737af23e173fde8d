// Package store implements the shared stores handle of spec §3/§9: the
// components table, the resources table, and the events multimap the
// scheduler drains once per frame. It is the only place in this repository
// that holds live component/resource data; everything upstream addresses it
// only by entity/component/resource identifier, never by a live reference it
// keeps across frames.
package store

import (
	"sync"
	"time"

	"github.com/zeusync/ecsworld/internal/core/batch"
	"github.com/zeusync/ecsworld/internal/core/models"
)

// componentKey identifies one (entity, component type) cell.
type componentKey struct {
	Entity    models.EntityID
	Component models.ComponentID
}

// Store is the handle a World and its systems see. Reads are always safe
// concurrently with any write; write safety across systems is a property of
// the schedule's batching plan (spec §4.2), not of this type — Store itself
// only guards its own maps against the Go race detector, not against two
// systems racing on the same component, which the schedule guarantees never
// happens.
type Store interface {
	GetComponent(entity models.EntityID, component models.ComponentID) (any, bool)
	SetComponent(entity models.EntityID, component models.ComponentID, value any)
	DeleteComponent(entity models.EntityID, component models.ComponentID)

	GetResource(id models.ResourceID) (any, bool)
	SetResource(id models.ResourceID, value any)
	DeleteResource(id models.ResourceID)

	// InsertEvent appends to the events table. Safe to call from any task at
	// any time within a frame (spec §5); events inserted during frame N only
	// surface via DrainEvents in frame N+1.
	InsertEvent(key batch.EventKey, data any)

	// DrainEvents empties the events table and returns everything it held,
	// in insertion order. Only the frame driver calls this.
	DrainEvents() []batch.Event
}

// MapStore is the default Store: plain maps behind a sync.RWMutex, the same
// shape as the rest of this package's concurrent state.
type MapStore struct {
	mu         sync.RWMutex
	components map[componentKey]any
	resources  map[models.ResourceID]any
	events     []batch.Event
}

var _ Store = (*MapStore)(nil)

// New creates an empty MapStore.
func New() *MapStore {
	return &MapStore{
		components: make(map[componentKey]any),
		resources:  make(map[models.ResourceID]any),
	}
}

func (s *MapStore) GetComponent(entity models.EntityID, component models.ComponentID) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.components[componentKey{entity, component}]
	return v, ok
}

func (s *MapStore) SetComponent(entity models.EntityID, component models.ComponentID, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.components[componentKey{entity, component}] = value
}

func (s *MapStore) DeleteComponent(entity models.EntityID, component models.ComponentID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.components, componentKey{entity, component})
}

func (s *MapStore) GetResource(id models.ResourceID) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.resources[id]
	return v, ok
}

func (s *MapStore) SetResource(id models.ResourceID, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[id] = value
}

func (s *MapStore) DeleteResource(id models.ResourceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.resources, id)
}

func (s *MapStore) InsertEvent(key batch.EventKey, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, batch.Event{Key: key, Data: data, InsertedAt: time.Now()})
}

func (s *MapStore) DrainEvents() []batch.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.events
	s.events = nil
	return out
}
