// File: irq/controller.go
// Package irq implements the simulated interrupt controller and the
// bridge from hardware events to task wakes.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Interrupt context is modeled as the dispatcher: the only code path
// that runs line handlers. Handlers do bounded work and touch the
// executor solely through the wake/schedule contracts. Main-context
// code that shares state with handlers masks them with Critical, the
// stand-in for disabling the interrupt priority around the minimal
// critical section.

package irq

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
)

// NumPriorities is the number of dispatch levels. Lower is more
// urgent, NVIC style.
const NumPriorities = 8

// Controller owns a fixed set of lines and dispatches the pending ones
// in priority order, then in pend order within a level.
type Controller struct {
	lines []*Line

	// mu is the interrupt mask: held while a handler runs and by
	// Critical sections. Handlers therefore never overlap a masked
	// main-context mutation.
	mu sync.Mutex

	// qmu guards the per-priority raise FIFOs; raise is called from
	// arbitrary contexts (drivers, handlers, timer callbacks).
	qmu    sync.Mutex
	raised [NumPriorities]*queue.Queue

	notify chan struct{}

	dispatched atomic.Uint64
	spurious   atomic.Uint64
}

// NewController builds a controller with numLines lines, all disabled,
// priority NumPriorities-1 (least urgent), no handler.
func NewController(numLines int) *Controller {
	if numLines < 1 {
		numLines = 1
	}
	c := &Controller{
		lines:  make([]*Line, numLines),
		notify: make(chan struct{}, 1),
	}
	for i := range c.lines {
		l := &Line{num: i, ctrl: c}
		l.prio.Store(NumPriorities - 1)
		c.lines[i] = l
	}
	for p := range c.raised {
		c.raised[p] = queue.New()
	}
	return c
}

// Line returns line n, or nil when out of range.
func (c *Controller) Line(n int) *Line {
	if n < 0 || n >= len(c.lines) {
		return nil
	}
	return c.lines[n]
}

// Lines returns the fixed line count.
func (c *Controller) Lines() int { return len(c.lines) }

// Critical runs fn with interrupts masked: no handler dispatches while
// fn executes. Keep fn minimal; this is the shared-state mutation
// window, not a general lock.
func (c *Controller) Critical(fn func()) {
	c.mu.Lock()
	fn()
	c.mu.Unlock()
}

// raise queues l for dispatch at its current priority and nudges the
// dispatcher. Lock-free callers land here; the FIFO mutex bounds the
// critical section to one enqueue.
func (c *Controller) raise(l *Line) {
	p := l.prio.Load()
	c.qmu.Lock()
	c.raised[p].Add(l.num)
	c.qmu.Unlock()
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Step dispatches the lines raised at entry, highest priority first,
// and returns how many handlers ran. Work is bounded by the raise
// count captured at entry: lines re-pended by handlers dispatch on the
// next step, keeping interrupt latency predictable.
func (c *Controller) Step() int {
	var budget [NumPriorities]int
	c.qmu.Lock()
	for p := range c.raised {
		budget[p] = c.raised[p].Length()
	}
	c.qmu.Unlock()

	ran := 0
	for p := 0; p < NumPriorities; p++ {
		for i := 0; i < budget[p]; i++ {
			c.qmu.Lock()
			if c.raised[p].Length() == 0 {
				c.qmu.Unlock()
				break
			}
			n := c.raised[p].Remove().(int)
			c.qmu.Unlock()
			if c.fire(c.lines[n]) {
				ran++
			}
		}
	}
	return ran
}

// fire consumes one raise for l and runs its handler if the line is
// still enabled and pending.
func (c *Controller) fire(l *Line) bool {
	if !l.enabled.Load() {
		// Pend bit stays latched; Enable re-raises it.
		c.spurious.Add(1)
		return false
	}
	if !l.pending.CompareAndSwap(true, false) {
		// Unpended, or coalesced with an earlier raise.
		c.spurious.Add(1)
		return false
	}
	c.mu.Lock()
	h := l.handler.Load()
	if h != nil && h.Fn != nil {
		h.Fn()
	}
	c.mu.Unlock()
	l.fires.Add(1)
	c.dispatched.Add(1)
	return true
}

// Dispatch runs the dispatcher until ctx is cancelled: step when lines
// are raised, park on the notify token otherwise.
func (c *Controller) Dispatch(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.Step() > 0 {
			continue
		}
		select {
		case <-c.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stats returns dispatcher counters for the control plane.
func (c *Controller) Stats() map[string]any {
	return map[string]any{
		"irq_lines":      len(c.lines),
		"irq_dispatched": c.dispatched.Load(),
		"irq_spurious":   c.spurious.Load(),
	}
}
