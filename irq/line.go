// File: irq/line.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One interrupt line: enable and pend latches, a priority, and an
// atomically swappable handler. All bit operations are lock-free so
// peripheral drivers and handlers may poke lines from any context.

package irq

import (
	"sync/atomic"

	"github.com/momentics/nanoloop/api"
)

// Handler is the attachable interrupt routine for a line.
type Handler struct {
	Fn func()
}

// Line implements api.Interrupt for one controller input.
type Line struct {
	num     int
	ctrl    *Controller
	enabled atomic.Bool
	pending atomic.Bool
	prio    atomic.Uint32
	handler atomic.Pointer[Handler]
	fires   atomic.Uint64
}

// Compile-time interface compliance.
var _ api.Interrupt = (*Line)(nil)

// Number returns the fixed line number.
func (l *Line) Number() int { return l.num }

// Enable sets the enable bit. A pend latched while disabled is raised
// for dispatch now.
func (l *Line) Enable() {
	l.enabled.Store(true)
	if l.pending.Load() {
		l.ctrl.raise(l)
	}
}

// Disable masks the line. The pend bit is held, not cleared.
func (l *Line) Disable() { l.enabled.Store(false) }

// IsEnabled reports the enable bit.
func (l *Line) IsEnabled() bool { return l.enabled.Load() }

// Pend latches the line pending. Pends coalesce: only the transition
// from clear to pending requests dispatch.
func (l *Line) Pend() {
	if l.pending.CompareAndSwap(false, true) && l.enabled.Load() {
		l.ctrl.raise(l)
	}
}

// Unpend clears the pend bit before dispatch reaches it.
func (l *Line) Unpend() { l.pending.Store(false) }

// IsPending reports the pend bit.
func (l *Line) IsPending() bool { return l.pending.Load() }

// Priority returns the line's priority level.
func (l *Line) Priority() api.IntPriority {
	return api.IntPriority(l.prio.Load())
}

// SetPriority moves the line to priority p, clamped to the controller's
// level count. Affects dispatches raised after the call.
func (l *Line) SetPriority(p api.IntPriority) {
	if int(p) >= NumPriorities {
		p = NumPriorities - 1
	}
	l.prio.Store(uint32(p))
}

// SetHandler attaches fn, replacing any previous handler.
func (l *Line) SetHandler(fn func()) {
	l.handler.Store(&Handler{Fn: fn})
}

// RemoveHandler detaches the handler; the line then dispatches as a
// no-op.
func (l *Line) RemoveHandler() {
	l.handler.Store(nil)
}

// Fires returns how many times the line's handler ran.
func (l *Line) Fires() uint64 { return l.fires.Load() }
