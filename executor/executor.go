// File: executor/executor.go
// Package executor implements the cooperative run loop.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One executor per core. Tasks live in a fixed-capacity arena and are
// resumed in slot-index order each pass over the ready bitset, which
// gives round-robin fairness between tasks that keep re-arming their
// wakers. When nothing is runnable the loop parks through its idle
// policy until a waker fires; the mark-then-notify ordering on the
// token channel closes the classic check-then-sleep race.

package executor

import (
	"context"
	"sync/atomic"

	"github.com/momentics/nanoloop/api"
	"github.com/momentics/nanoloop/internal/arena"
	"github.com/momentics/nanoloop/internal/readyq"
)

// Executor drives spawned tasks. Spawn and Run belong to the main
// context; Wake is the only method safe from interrupt dispatch.
type Executor struct {
	arena  *arena.Arena
	ready  *readyq.Queue
	notify chan struct{} // one-token wake permit
	cxs    []api.Context // per-slot contexts, reused across polls
	idle   IdlePolicy
	tracer api.Tracer

	running atomic.Bool

	spawned    atomic.Uint64
	polls      atomic.Uint64
	completed  atomic.Uint64
	cancelled  atomic.Uint64
	faulted    atomic.Uint64
	wakes      atomic.Uint64
	staleWakes atomic.Uint64
	idleParks  atomic.Uint64
}

// Compile-time interface compliance.
var _ api.WakeSink = (*Executor)(nil)

// New builds an executor with a fixed task capacity.
func New(capacity int, opts ...Option) *Executor {
	e := &Executor{
		arena:  arena.New(capacity),
		ready:  readyq.New(capacity),
		notify: make(chan struct{}, 1),
		idle:   BlockIdle{},
		tracer: api.NopTracer{},
	}
	e.cxs = make([]api.Context, e.arena.Cap())
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Spawn places fn into a free slot and marks it ready. Fails with
// ErrCapacityExceeded when the arena is full; no live task is
// disturbed in that case. Main-context only: call it before Run or
// from inside a running task.
func (e *Executor) Spawn(fn api.TaskFunc) (api.TaskHandle, error) {
	h, err := e.arena.Spawn(fn)
	if err != nil {
		return api.TaskHandle{}, err
	}
	e.spawned.Add(1)
	e.tracer.Trace(api.TraceEvent{Kind: api.TraceSpawn, Slot: h.Slot, Gen: h.Gen})
	e.Wake(h.Slot, h.Gen) // initial state is Ready
	return h, nil
}

// Cancel drops the task behind h without resuming it: the computation
// is discarded and the slot freed. Wakers already issued for the task
// degrade to no-ops through the generation check, so in-flight alarms
// and interrupt bindings need no teardown. Main-context only, like
// Spawn. A handle whose task completed, or that refers to an earlier
// occupant of a reused slot, yields a stale handle error.
func (e *Executor) Cancel(h api.TaskHandle) error {
	if !e.arena.Free(h) {
		return api.NewError(api.ErrCodeStaleHandle, "cancel of completed or reused task").
			WithContext("slot", h.Slot).
			WithContext("gen", h.Gen)
	}
	e.cancelled.Add(1)
	e.tracer.Trace(api.TraceEvent{Kind: api.TraceComplete, Slot: h.Slot, Gen: h.Gen})
	return nil
}

// WakerFor returns a waker bound to h at its current generation. The
// waker stays valid for copying and invoking forever; once the task
// completes it degrades to a no-op.
func (e *Executor) WakerFor(h api.TaskHandle) api.Waker {
	return api.MakeWaker(e, h.Slot, h.Gen)
}

// Wake implements api.WakeSink. It marks the slot ready if gen still
// matches the live task there, then releases the idle token. Lock-free
// and allocation-free; safe from interrupt dispatch context. A stale
// generation is a silent no-op.
func (e *Executor) Wake(slot, gen uint32) {
	cur, live := e.arena.Live(slot)
	if !live || cur != gen {
		e.staleWakes.Add(1)
		e.tracer.Trace(api.TraceEvent{Kind: api.TraceStaleWake, Slot: slot, Gen: gen})
		return
	}
	e.wakes.Add(1)
	e.tracer.Trace(api.TraceEvent{Kind: api.TraceWake, Slot: slot, Gen: gen})
	e.ready.Mark(slot)
	// Non-blocking token send: a token already in flight covers this
	// wake too, because the run loop re-drains after consuming it.
	select {
	case e.notify <- struct{}{}:
	default:
	}
}

// Step drains the bits pending at entry and polls each task once, in
// slot-index order. Returns the number of tasks polled. Exposed for
// tests and for hosts that interleave the executor with other work.
func (e *Executor) Step() int {
	return e.ready.Drain(e.pollSlot)
}

// Run drives the loop until ctx is cancelled. Firmware deployments
// pass a background context and never return; hosted runs cancel to
// stop. Returns ErrAlreadyRunning if the loop is already active.
func (e *Executor) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return api.ErrAlreadyRunning
	}
	defer e.running.Store(false)
	for {
		e.Step()
		if err := ctx.Err(); err != nil {
			return err
		}
		if !e.ready.Empty() {
			continue
		}
		e.idleParks.Add(1)
		e.tracer.Trace(api.TraceEvent{Kind: api.TraceIdleEnter})
		e.idle.Park(ctx, e.notify)
		e.tracer.Trace(api.TraceEvent{Kind: api.TraceIdleExit})
	}
}

// pollSlot resumes the task in slot idx one step and retires it when
// it completes or faults.
func (e *Executor) pollSlot(idx uint32) {
	gen, live := e.arena.Live(idx)
	if !live {
		// Bit latched for a task that completed before the drain
		// reached it; nothing to resume.
		e.staleWakes.Add(1)
		return
	}
	h := api.TaskHandle{Slot: idx, Gen: gen}
	fn, ok := e.arena.Task(h)
	if !ok {
		return
	}
	e.cxs[idx] = api.NewContext(api.MakeWaker(e, idx, gen))
	e.polls.Add(1)
	e.tracer.Trace(api.TraceEvent{Kind: api.TracePoll, Slot: idx, Gen: gen})
	res, faulted := e.resume(fn, &e.cxs[idx])
	if faulted {
		e.faulted.Add(1)
		e.tracer.Trace(api.TraceEvent{Kind: api.TraceFault, Slot: idx, Gen: gen})
		res = api.Done
	}
	if res == api.Done {
		e.completed.Add(1)
		e.tracer.Trace(api.TraceEvent{Kind: api.TraceComplete, Slot: idx, Gen: gen})
		e.arena.Free(h)
	}
}

// resume runs one poll step, converting a panic inside the task into a
// fault. The executor does not retry faulted tasks; retry policy, if
// any, belongs to the task's own logic.
func (e *Executor) resume(fn api.TaskFunc, cx *api.Context) (res api.Poll, faulted bool) {
	defer func() {
		if r := recover(); r != nil {
			faulted = true
		}
	}()
	return fn(cx), false
}

// Len returns the number of live tasks.
func (e *Executor) Len() int { return e.arena.Len() }

// Cap returns the fixed task capacity.
func (e *Executor) Cap() int { return e.arena.Cap() }

// Stats returns run-loop counters for the control plane.
func (e *Executor) Stats() map[string]any {
	return map[string]any{
		"tasks_spawned":   e.spawned.Load(),
		"tasks_completed": e.completed.Load(),
		"tasks_cancelled": e.cancelled.Load(),
		"tasks_faulted":   e.faulted.Load(),
		"tasks_live":      e.arena.Len(),
		"polls":           e.polls.Load(),
		"wakes":           e.wakes.Load(),
		"stale_wakes":     e.staleWakes.Load(),
		"idle_parks":      e.idleParks.Load(),
	}
}
