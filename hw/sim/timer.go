// File: hw/sim/timer.go
// Package sim provides the simulated board peripherals: a manually
// advanced 32-bit timer with compare and wrap interrupts.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The simulated counter only moves when Advance is called, which makes
// every timing scenario in tests deterministic, wraparound included.
// Interrupt handlers fire outside the timer's own lock, in the exact
// order the hardware would deliver them, so a compare handler may
// re-arm the timer from within its callback.

package sim

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/nanoloop/api"
)

// counterSpan is the full range of the 32-bit counter.
const counterSpan = uint64(1) << 32

// Timer is the simulated timer peripheral.
type Timer struct {
	mu        sync.Mutex
	counter   atomic.Uint32
	freq      uint32
	armed     bool
	compare   uint32
	onCompare func()
	onWrap    func()
}

// Compile-time interface compliance.
var _ api.HardwareTimer = (*Timer)(nil)

// NewTimer builds a simulated timer ticking at freq counts per second.
// The counter starts at zero and only moves through Advance.
func NewTimer(freq uint32) *Timer {
	if freq == 0 {
		freq = 1_000_000
	}
	return &Timer{freq: freq}
}

// Counter returns the current raw counter value. Lock-free.
func (t *Timer) Counter() uint32 { return t.counter.Load() }

// Frequency returns ticks per second.
func (t *Timer) Frequency() uint32 { return t.freq }

// ArmAt programs the compare interrupt for tick, replacing any armed
// compare.
func (t *Timer) ArmAt(tick uint32) {
	t.mu.Lock()
	t.armed = true
	t.compare = tick
	t.mu.Unlock()
}

// Disarm cancels a pending compare.
func (t *Timer) Disarm() {
	t.mu.Lock()
	t.armed = false
	t.mu.Unlock()
}

// OnCompare attaches the compare interrupt handler.
func (t *Timer) OnCompare(fn func()) {
	t.mu.Lock()
	t.onCompare = fn
	t.mu.Unlock()
}

// OnWrap attaches the overflow interrupt handler.
func (t *Timer) OnWrap(fn func()) {
	t.mu.Lock()
	t.onWrap = fn
	t.mu.Unlock()
}

// Advance moves the counter forward by ticks, delivering wrap and
// compare interrupts in hardware order as boundaries are crossed.
// Single-driver: tests and demos advance from one goroutine.
func (t *Timer) Advance(ticks uint64) {
	var events []func()
	t.mu.Lock()
	remaining := ticks
	for remaining > 0 {
		cur := t.counter.Load()
		wrapDist := counterSpan - uint64(cur) // ticks until the counter passes zero
		step := remaining
		if step > wrapDist {
			step = wrapDist
		}
		if t.armed {
			compDist := uint64(t.compare - cur) // modular distance; 0 = match now
			if compDist == 0 {
				t.armed = false
				if t.onCompare != nil {
					events = append(events, t.onCompare)
				}
				continue
			}
			if compDist < step {
				step = compDist
			}
		}
		t.counter.Store(cur + uint32(step)) // wraps in uint32 arithmetic
		remaining -= step
		if step == wrapDist {
			if t.onWrap != nil {
				events = append(events, t.onWrap)
			}
		}
		if t.armed && t.counter.Load() == t.compare {
			t.armed = false
			if t.onCompare != nil {
				events = append(events, t.onCompare)
			}
		}
	}
	t.mu.Unlock()
	for _, fn := range events {
		fn()
	}
}

// Armed reports whether a compare is pending and for which tick.
// Test inspection hook; real hardware exposes the same through its
// compare register.
func (t *Timer) Armed() (tick uint32, armed bool) {
	t.mu.Lock()
	tick, armed = t.compare, t.armed
	t.mu.Unlock()
	return tick, armed
}
