package frame

// Status is the driver's coarse-grained position in the per-frame state
// machine (spec §3 "Frame state", §4.4). It is a strict superset of
// models.Phase: frame_ended and terminated have no corresponding schedule
// phase list of their own (frame_ended is a wait state; terminated follows
// the shutdown phase, which runs once, outside the loop).
type Status uint8

const (
	StatusStartup Status = iota
	StatusFrameStart
	StatusAsync
	StatusFrameEnd
	StatusFrameEnded
	StatusShutdown
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusStartup:
		return "startup"
	case StatusFrameStart:
		return "frame_start"
	case StatusAsync:
		return "async"
	case StatusFrameEnd:
		return "frame_end"
	case StatusFrameEnded:
		return "frame_ended"
	case StatusShutdown:
		return "shutdown"
	case StatusTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// TimerState is the independent frame_timer axis: a frame boundary occurs
// only once both the schedule has drained (status == frame_ended) and the
// timer has finished (spec §3).
type TimerState uint8

const (
	TimerRunning TimerState = iota
	TimerFinished
)
