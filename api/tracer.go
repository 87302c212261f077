// Package api
// Author: momentics <momentics@gmail.com>
//
// Executor tracing contract. Trace hooks fire on the scheduling hot
// path and from interrupt dispatch, so implementations must be cheap
// and must never block.

package api

// TraceKind enumerates the scheduling events the runtime emits.
type TraceKind uint8

const (
	TraceSpawn TraceKind = iota
	TracePoll
	TraceComplete
	TraceFault
	TraceWake
	TraceStaleWake
	TraceAlarmArm
	TraceAlarmFire
	TraceAlarmCancel
	TraceIdleEnter
	TraceIdleExit
)

// String returns the event name used in exported traces.
func (k TraceKind) String() string {
	switch k {
	case TraceSpawn:
		return "spawn"
	case TracePoll:
		return "poll"
	case TraceComplete:
		return "complete"
	case TraceFault:
		return "fault"
	case TraceWake:
		return "wake"
	case TraceStaleWake:
		return "stale-wake"
	case TraceAlarmArm:
		return "alarm-arm"
	case TraceAlarmFire:
		return "alarm-fire"
	case TraceAlarmCancel:
		return "alarm-cancel"
	case TraceIdleEnter:
		return "idle-enter"
	case TraceIdleExit:
		return "idle-exit"
	default:
		return "unknown"
	}
}

// TraceEvent is a single scheduling event. Slot and Gen identify the
// task involved, when any; Tick is the monotonic instant at emission
// when a clock is wired, zero otherwise.
type TraceEvent struct {
	Kind TraceKind
	Slot uint32
	Gen  uint32
	Tick Instant
}

// Tracer receives scheduling events. The trace package provides a
// bounded journal implementation; NopTracer discards everything.
type Tracer interface {
	Trace(ev TraceEvent)
}

// NopTracer discards all events. It is the default tracer.
type NopTracer struct{}

// Trace implements Tracer.
func (NopTracer) Trace(TraceEvent) {}
