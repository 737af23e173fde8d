// Hand-maintained equivalent of the output Wire would produce for injector.go.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package injector

import (
	"github.com/zeusync/ecsworld/internal/core/events/bus"
	"github.com/zeusync/ecsworld/internal/core/observability/log"
	"github.com/zeusync/ecsworld/internal/core/schedule"
	"github.com/zeusync/ecsworld/internal/core/store"
	"github.com/zeusync/ecsworld/internal/core/world"
)

// ProvideLogger builds a new debug-level Logger on every call. The first
// Logger ever built by log.New is the one log.Provide returns.
func ProvideLogger() *log.Logger {
	return log.New(log.LevelDebug)
}

func ProvideStore() store.Store {
	return store.New()
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

// BuildWorld is the hand-written equivalent of what wire would generate
// from injector.go's BuildWorld: it wires a Logger, a Store and an EventBus
// into a World bound to the caller's Schedule and Config.
func BuildWorld(cfg world.Config, sched *schedule.Schedule) (*world.World, error) {
	logger := ProvideLogger()
	st := ProvideStore()
	eventBus := ProvideEventBus()
	return world.New(cfg, sched, st, logger, eventBus)
}
