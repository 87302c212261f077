// File: api/interrupt.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Interrupt line contract, modeled on a conventional nested vectored
// controller: numbered lines, per-line enable and pend bits, numeric
// priorities, and a single attachable handler per line.

package api

// IntPriority orders interrupt lines: lower values preempt higher
// ones, NVIC style. Within one priority level, lines dispatch in the
// order they were pended.
type IntPriority uint8

// Interrupt is one controller line as seen by peripheral drivers.
// Handlers run in interrupt dispatch context and are restricted to the
// narrow contracts that are interrupt-safe: waking wakers, pending
// other lines, and arming or cancelling alarms. They must do bounded
// work and must never touch task state directly.
type Interrupt interface {
	// Number returns the fixed line number.
	Number() int

	// Enable allows the line to dispatch. A pend bit latched while the
	// line was disabled dispatches as soon as the line is enabled.
	Enable()

	// Disable masks the line. The pend bit is held, not cleared.
	Disable()

	// IsEnabled reports the enable bit.
	IsEnabled() bool

	// Pend latches the line pending and requests dispatch. Idempotent:
	// multiple pends before dispatch coalesce into one.
	Pend()

	// Unpend clears a latched pend bit before it dispatches.
	Unpend()

	// IsPending reports the pend bit.
	IsPending() bool

	// Priority returns the line's current priority.
	Priority() IntPriority

	// SetPriority reorders the line relative to others. Takes effect
	// for dispatches after the call.
	SetPriority(p IntPriority)

	// SetHandler attaches the line's handler, replacing any previous
	// one. A line with no handler dispatches as a no-op.
	SetHandler(fn func())

	// RemoveHandler detaches the handler.
	RemoveHandler()
}
