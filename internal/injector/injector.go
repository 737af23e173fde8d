//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/ecsworld/internal/core/events/bus"
	"github.com/zeusync/ecsworld/internal/core/observability/log"
	"github.com/zeusync/ecsworld/internal/core/schedule"
	"github.com/zeusync/ecsworld/internal/core/store"
	"github.com/zeusync/ecsworld/internal/core/world"
)

func ProvideLogger() *log.Logger {
	wire.Build(log.Provide)
	return log.New(log.LevelDebug)
}

func ProvideStore() store.Store {
	wire.Build(wire.Bind(new(store.Store), new(*store.MapStore)), store.New)
	return nil
}

func ProvideEventBus() bus.EventBus {
	wire.Build(bus.New)
	return nil
}

// BuildWorld wires a fully-constructed World: a logger, a shared Store, an
// event bus for phase/error notifications, bound onto the caller's already
// finalized Schedule and Config.
func BuildWorld(cfg world.Config, sched *schedule.Schedule) (*world.World, error) {
	wire.Build(
		ProvideLogger, wire.Bind(new(log.Log), new(*log.Logger)),
		ProvideStore,
		ProvideEventBus,
		world.New,
	)
	return nil, nil
}
