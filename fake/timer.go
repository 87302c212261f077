// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"

	"github.com/momentics/nanoloop/api"
)

// Timer is a scriptable hardware timer: the counter is set directly
// and every arm/disarm is recorded, so driver tests can assert the
// exact compare value programmed. Interrupts fire only when the test
// calls FireCompare or FireWrap.
type Timer struct {
	mu        sync.Mutex
	counter   uint32
	freq      uint32
	armed     bool
	compare   uint32
	armLog    []uint32
	disarms   int
	onCompare func()
	onWrap    func()
}

var _ api.HardwareTimer = (*Timer)(nil)

// NewTimer builds a fake timer at freq ticks per second.
func NewTimer(freq uint32) *Timer {
	if freq == 0 {
		freq = 1_000_000
	}
	return &Timer{freq: freq}
}

// Counter implements api.HardwareTimer.
func (t *Timer) Counter() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counter
}

// SetCounter moves the counter without delivering interrupts.
func (t *Timer) SetCounter(v uint32) {
	t.mu.Lock()
	t.counter = v
	t.mu.Unlock()
}

// ArmAt implements api.HardwareTimer and records the compare value.
func (t *Timer) ArmAt(tick uint32) {
	t.mu.Lock()
	t.armed = true
	t.compare = tick
	t.armLog = append(t.armLog, tick)
	t.mu.Unlock()
}

// Disarm implements api.HardwareTimer.
func (t *Timer) Disarm() {
	t.mu.Lock()
	t.armed = false
	t.disarms++
	t.mu.Unlock()
}

// OnCompare implements api.HardwareTimer.
func (t *Timer) OnCompare(fn func()) {
	t.mu.Lock()
	t.onCompare = fn
	t.mu.Unlock()
}

// OnWrap implements api.HardwareTimer.
func (t *Timer) OnWrap(fn func()) {
	t.mu.Lock()
	t.onWrap = fn
	t.mu.Unlock()
}

// Frequency implements api.HardwareTimer.
func (t *Timer) Frequency() uint32 { return t.freq }

// Armed reports the current compare state.
func (t *Timer) Armed() (tick uint32, armed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.compare, t.armed
}

// ArmLog returns every compare value programmed so far.
func (t *Timer) ArmLog() []uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]uint32(nil), t.armLog...)
}

// Disarms returns how many times the compare was cancelled.
func (t *Timer) Disarms() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.disarms
}

// FireCompare clears the armed state and delivers the compare
// interrupt.
func (t *Timer) FireCompare() {
	t.mu.Lock()
	t.armed = false
	fn := t.onCompare
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// FireWrap delivers the overflow interrupt.
func (t *Timer) FireWrap() {
	t.mu.Lock()
	fn := t.onWrap
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}
