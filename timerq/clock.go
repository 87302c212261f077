// File: timerq/clock.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Monotonic clock, widening the 32-bit hardware counter to a 64-bit
// instant. The high word advances from the counter's wrap interrupt;
// reads reconcile the two halves with a double-read of the high word
// and retry when a wrap lands in between. A last-value clamp keeps the
// result non-decreasing even when the wrap interrupt itself is late.

package timerq

import (
	"sync/atomic"

	"github.com/momentics/nanoloop/api"
)

// Clock is the process-wide monotonic time source. One instance per
// hardware timer; constructed by the Driver.
type Clock struct {
	hw   api.HardwareTimer
	high atomic.Uint32
	last atomic.Uint64
}

// NewClock wraps hw and attaches its wrap interrupt. The hardware
// counter must be free-running from this point on.
func NewClock(hw api.HardwareTimer) *Clock {
	c := &Clock{hw: hw}
	hw.OnWrap(c.wrapTick)
	return c
}

// wrapTick runs in interrupt dispatch context on counter overflow.
func (c *Clock) wrapTick() {
	c.high.Add(1)
}

// Now returns the current monotonic instant in ticks since boot.
// Never decreases, even across counter wraparound or a concurrently
// delivered wrap tick. Safe from any context.
func (c *Clock) Now() api.Instant {
	var now uint64
	for {
		h1 := c.high.Load()
		low := c.hw.Counter()
		h2 := c.high.Load()
		if h1 == h2 {
			now = uint64(h1)<<32 | uint64(low)
			break
		}
		// A wrap slid in between the two reads; take another sample.
	}
	// The wrap interrupt can lag the counter by its dispatch latency.
	// Clamp to the last value handed out so callers never observe time
	// running backward across that window.
	for {
		prev := c.last.Load()
		if now <= prev {
			return api.Instant(prev)
		}
		if c.last.CompareAndSwap(prev, now) {
			return api.Instant(now)
		}
	}
}

// Frequency returns counter ticks per second.
func (c *Clock) Frequency() uint32 {
	return c.hw.Frequency()
}
