package world

import "github.com/zeusync/ecsworld/internal/core/frame"

// DebugSnapshot supplements the driver's own Snapshot with the world-level
// counter the driver has no reason to track itself (spec §12 "Debug
// snapshot").
type DebugSnapshot struct {
	frame.Snapshot
	FrameCount uint64
}
