// File: timerq/driver.go
// Package timerq implements the alarm driver above the single
// hardware timer peripheral.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The driver keeps an ordered set of pending deadlines in a min-heap
// and always has the hardware compare armed for the nearest one, or
// disarmed when none remain. The compare interrupt pops every deadline
// at or before now, wakes each waiting task through its waker, and
// re-arms for the new minimum. Deadlines further out than the 32-bit
// compare can express are reached through intermediate arm points.

package timerq

import (
	"container/heap"
	"sync"
	"sync/atomic"

	"github.com/momentics/nanoloop/api"
)

// maxArmSpan caps how far ahead the 32-bit compare is armed in one
// step: a quarter of the counter range, so an arm point can never be
// mistaken for one already behind the counter.
const maxArmSpan = uint64(1) << 30

// Driver multiplexes any number of pending deadlines onto the single
// hardware compare. One instance per timer peripheral, created once at
// startup before any task is spawned.
type Driver struct {
	// mu stands in for masking the timer interrupt: it is the minimal
	// critical section shared between main context (ScheduleAt, Cancel)
	// and the compare interrupt. Wakers fired under it never re-enter
	// the driver, so holding it across wakes is safe.
	mu       sync.Mutex
	hw       api.HardwareTimer
	clock    *Clock
	pending  alarmHeap
	armed    bool
	armedFor api.Instant
	seq      uint64
	tracer   api.Tracer

	scheduled atomic.Uint64
	fired     atomic.Uint64
	cancelled atomic.Uint64
}

// Option customizes driver construction.
type Option func(*Driver)

// WithTracer attaches a scheduling tracer.
func WithTracer(t api.Tracer) Option {
	return func(d *Driver) {
		if t != nil {
			d.tracer = t
		}
	}
}

// NewDriver wraps the hardware timer and attaches its compare
// interrupt. Call exactly once per peripheral, before spawning tasks.
func NewDriver(hw api.HardwareTimer, opts ...Option) *Driver {
	d := &Driver{
		hw:     hw,
		clock:  NewClock(hw),
		tracer: api.NopTracer{},
	}
	for _, opt := range opts {
		opt(d)
	}
	hw.OnCompare(d.onCompare)
	return d
}

// Clock returns the monotonic clock built on the same counter.
func (d *Driver) Clock() *Clock { return d.clock }

// Now returns the current monotonic instant.
func (d *Driver) Now() api.Instant { return d.clock.Now() }

// ScheduleAt registers a deadline for w. A waker carries at most one
// pending deadline: scheduling again replaces the earlier one, which
// lets a suspended task refresh its alarm on every poll without
// flooding the queue. A deadline already in the past wakes w before
// ScheduleAt returns.
func (d *Driver) ScheduleAt(at api.Instant, w api.Waker) {
	if w.IsZero() {
		return
	}
	d.mu.Lock()
	d.removeLocked(w)
	d.seq++
	heap.Push(&d.pending, alarm{at: at, waker: w, seq: d.seq})
	d.scheduled.Add(1)
	d.serviceLocked()
	d.mu.Unlock()
}

// Cancel removes w's pending deadline if one exists. Idempotent: a
// deadline that already fired, or was never scheduled, is a no-op.
// Returns whether a deadline was actually removed.
func (d *Driver) Cancel(w api.Waker) bool {
	if w.IsZero() {
		return false
	}
	d.mu.Lock()
	removed := d.removeLocked(w)
	if removed {
		d.cancelled.Add(1)
		slot, gen := w.Target()
		d.tracer.Trace(api.TraceEvent{Kind: api.TraceAlarmCancel, Slot: slot, Gen: gen, Tick: d.clock.Now()})
		d.serviceLocked()
	}
	d.mu.Unlock()
	return removed
}

// Pending returns the number of deadlines currently queued.
func (d *Driver) Pending() int {
	d.mu.Lock()
	n := len(d.pending)
	d.mu.Unlock()
	return n
}

// Stats returns driver counters for the control plane.
func (d *Driver) Stats() map[string]any {
	return map[string]any{
		"alarms_scheduled": d.scheduled.Load(),
		"alarms_fired":     d.fired.Load(),
		"alarms_cancelled": d.cancelled.Load(),
		"alarms_pending":   d.Pending(),
	}
}

// onCompare runs in interrupt dispatch context on compare match.
func (d *Driver) onCompare() {
	d.mu.Lock()
	d.armed = false
	d.serviceLocked()
	d.mu.Unlock()
}

// serviceLocked pops every due deadline, wakes its task, and re-arms
// the compare for the new minimum. Loops until the armed point is
// still in the future, so a deadline slipping past while arming is
// never stranded until counter wrap.
func (d *Driver) serviceLocked() {
	for {
		now := d.clock.Now()
		for len(d.pending) > 0 && d.pending[0].at <= now {
			a := heap.Pop(&d.pending).(alarm)
			d.fired.Add(1)
			slot, gen := a.waker.Target()
			d.tracer.Trace(api.TraceEvent{Kind: api.TraceAlarmFire, Slot: slot, Gen: gen, Tick: now})
			a.waker.Wake()
		}
		if len(d.pending) == 0 {
			if d.armed {
				d.hw.Disarm()
				d.armed = false
			}
			return
		}
		next := d.pending[0].at
		if horizon := now.Add(maxArmSpan); next > horizon {
			next = horizon
		}
		if d.armed && d.armedFor == next {
			return
		}
		d.hw.ArmAt(uint32(next))
		d.armed = true
		d.armedFor = next
		d.tracer.Trace(api.TraceEvent{Kind: api.TraceAlarmArm, Tick: next})
		if next > d.clock.Now() {
			return
		}
		// The arm point is already behind the counter; service again.
	}
}

// removeLocked deletes the pending deadline bound to w, if any.
func (d *Driver) removeLocked(w api.Waker) bool {
	for i := range d.pending {
		if d.pending[i].waker == w {
			heap.Remove(&d.pending, i)
			return true
		}
	}
	return false
}

// SleepUntil suspends the calling task until the deadline elapses.
// Intended for use inside a task's poll function:
//
//	if timerq.SleepUntil(drv, cx, wakeAt) == api.Pending {
//		return api.Pending
//	}
//
// Each call while the deadline is still ahead re-registers the task's
// single alarm, so spurious wakes are harmless.
func SleepUntil(d *Driver, cx *api.Context, at api.Instant) api.Poll {
	if d.Now() >= at {
		return api.Done
	}
	d.ScheduleAt(at, cx.Waker())
	return api.Pending
}
