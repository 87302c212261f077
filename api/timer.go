// File: api/timer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Hardware timer contract. The runtime assumes exactly one free-running
// counter peripheral per core: narrow (32-bit), wrapping, with a single
// compare interrupt and a wrap interrupt. Everything wider or smarter
// (64-bit instants, multiple deadlines) is built above this contract in
// the timerq package.

package api

// Instant is a point on the monotonic timeline, in timer ticks since
// boot, widened to 64 bits by the clock. Instants never decrease, even
// across hardware counter wraparound.
type Instant uint64

// Add returns the instant d ticks later.
func (i Instant) Add(d uint64) Instant {
	return i + Instant(d)
}

// Before reports whether i precedes other.
func (i Instant) Before(other Instant) bool {
	return i < other
}

// HardwareTimer abstracts the single timer/counter peripheral. All
// methods except the handler attachments may be called with the
// peripheral's interrupt masked; implementations must not call the
// attached handlers re-entrantly from ArmAt or Disarm.
type HardwareTimer interface {
	// Counter returns the current raw counter value. It wraps at 2^32.
	Counter() uint32

	// ArmAt programs the compare interrupt to fire when the counter
	// reaches tick. Re-arming replaces any previously armed compare;
	// at most one compare is armed at any instant.
	ArmAt(tick uint32)

	// Disarm cancels a pending compare, if any.
	Disarm()

	// OnCompare attaches the compare interrupt handler. Attach once,
	// at initialization, before the first ArmAt.
	OnCompare(fn func())

	// OnWrap attaches the counter overflow interrupt handler, used by
	// the clock to extend the counter width in software.
	OnWrap(fn func())

	// Frequency returns counter ticks per second.
	Frequency() uint32
}
