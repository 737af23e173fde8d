package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/ecsworld/internal/core/schedule"
	"github.com/zeusync/ecsworld/internal/core/systems/movement"
	"github.com/zeusync/ecsworld/internal/core/world"
	"github.com/zeusync/ecsworld/internal/injector"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched, err := buildSchedule()
	if err != nil {
		fmt.Println("Error building schedule:", err)
		os.Exit(1)
	}

	w, err := injector.BuildWorld(world.Config{FPSLimit: 60}, sched)
	if err != nil {
		fmt.Println("Error building world:", err)
		os.Exit(1)
	}

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	runErr := make(chan error, 1)
	go func() { runErr <- w.Start(ctx) }()

	<-stopCh
	w.Shutdown()
	cancel()

	if err := <-runErr; err != nil {
		fmt.Println("Error running world:", err)
		os.Exit(1)
	}
}

// buildSchedule is the setup callback of spec §6 "To user code": it
// constructs the one system this demo exercises and finalizes the
// schedule.
func buildSchedule() (*schedule.Schedule, error) {
	b := schedule.NewBuilder(nil, nil)
	if err := b.AddSystem("movement", movement.New(), schedule.Options{}); err != nil {
		return nil, err
	}
	return b.Finalize()
}
