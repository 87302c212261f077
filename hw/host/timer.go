// File: hw/host/timer.go
// Package host implements the hardware timer contract on top of the
// operating system clock, for running firmware images on a
// development machine.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The counter is derived from the OS monotonic clock and truncated to
// 32 bits, so it wraps exactly like the real peripheral. One platform
// timer (timerfd on Linux, a time.Timer elsewhere) is kept armed for
// the nearer of the compare target and the next wrap boundary; its
// expirations are the interrupt context on a host.

package host

import (
	"sync"
	"time"

	"github.com/momentics/nanoloop/api"
)

// counterSpan is the full range of the 32-bit counter.
const counterSpan = uint64(1) << 32

// platform is the OS-specific one-shot timer behind the backend.
type platform interface {
	// set re-arms the one-shot for d from now. d is clamped positive.
	set(d time.Duration)
	// stop cancels a pending expiration if possible.
	stop()
	// close releases OS resources; the backend is dead afterwards.
	close() error
}

// Timer is the hosted timer backend.
type Timer struct {
	freq  uint32
	epoch time.Time

	mu        sync.Mutex
	onCompare func()
	onWrap    func()
	armed     bool
	target    uint64 // absolute tick of the armed compare
	seenAbs   uint64 // wrap accounting high-water mark
	p         platform
}

// Compile-time interface compliance.
var _ api.HardwareTimer = (*Timer)(nil)

// NewTimer builds a hosted timer ticking at freq counts per second.
func NewTimer(freq uint32) (*Timer, error) {
	if freq == 0 {
		freq = 1_000_000
	}
	t := &Timer{freq: freq, epoch: time.Now()}
	p, err := newPlatform(t.expire)
	if err != nil {
		return nil, err
	}
	t.p = p
	t.mu.Lock()
	t.rearmLocked(t.abs())
	t.mu.Unlock()
	return t, nil
}

// Close releases the OS timer. Only hosted runs ever tear down.
func (t *Timer) Close() error {
	t.p.stop()
	return t.p.close()
}

// abs returns ticks elapsed since the epoch, unwrapped.
func (t *Timer) abs() uint64 {
	elapsed := time.Since(t.epoch)
	secs := uint64(elapsed / time.Second)
	frac := uint64(elapsed % time.Second)
	return secs*uint64(t.freq) + frac*uint64(t.freq)/uint64(time.Second)
}

// ticksToDuration converts a tick delta to wall time.
func (t *Timer) ticksToDuration(ticks uint64) time.Duration {
	secs := ticks / uint64(t.freq)
	rem := ticks % uint64(t.freq)
	return time.Duration(secs)*time.Second + time.Duration(rem*uint64(time.Second)/uint64(t.freq))
}

// Counter returns the current raw counter value, truncated to the
// peripheral's 32-bit width.
func (t *Timer) Counter() uint32 { return uint32(t.abs()) }

// Frequency returns ticks per second.
func (t *Timer) Frequency() uint32 { return t.freq }

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

// ArmAt programs the compare for the next time the 32-bit counter
// reaches tick, replacing any armed compare.
func (t *Timer) ArmAt(tick uint32) {
	t.mu.Lock()
	now := t.abs()
	delta := uint64(tick - uint32(now)) // modular distance; 0 = due now
	t.armed = true
	t.target = now + delta
	t.rearmLocked(now)
	t.mu.Unlock()
}

// Disarm cancels a pending compare. The platform timer stays armed for
// the wrap boundary so the clock's high word keeps advancing.
func (t *Timer) Disarm() {
	t.mu.Lock()
	t.armed = false
	t.rearmLocked(t.abs())
	t.mu.Unlock()
}

// rearmLocked points the platform one-shot at the nearer of the
// compare target and the next wrap boundary.
func (t *Timer) rearmLocked(now uint64) {
	next := (now/counterSpan + 1) * counterSpan // next wrap boundary
	if t.armed && t.target < next {
		next = t.target
	}
	var d time.Duration
	if next > now {
		d = t.ticksToDuration(next - now)
	}
	if d <= 0 {
		d = time.Nanosecond
	}
	t.p.set(d)
}

// expire runs on the platform timer's goroutine: the host's interrupt
// context. It delivers wrap ticks for every boundary crossed since the
// last expiration, then the compare if due, then re-arms.
func (t *Timer) expire() {
	var events []func()
	t.mu.Lock()
	now := t.abs()
	for t.seenAbs/counterSpan < now/counterSpan {
		t.seenAbs += counterSpan
		if t.onWrap != nil {
			events = append(events, t.onWrap)
		}
	}
	t.seenAbs = now
	if t.armed && now >= t.target {
		t.armed = false
		if t.onCompare != nil {
			events = append(events, t.onCompare)
		}
	}
	t.rearmLocked(now)
	t.mu.Unlock()
	for _, fn := range events {
		fn()
	}
}
