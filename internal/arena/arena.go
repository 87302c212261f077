// File: internal/arena/arena.go
// Package arena implements the fixed-capacity task slot store.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Slots are allocated at construction and never grow: spawn fails with
// ErrCapacityExceeded rather than touching the heap. A slot index is
// the task's identity for its whole life; a per-slot generation counter
// distinguishes the current occupant from any stale handle or waker
// kept after the slot was freed and reused.

package arena

import (
	"sync/atomic"

	"github.com/momentics/nanoloop/api"
)

// slot holds one task. The generation is odd while the slot is live
// and even while it is free; it advances by one on every spawn and
// every free, so a (slot, gen) pair never refers to two occupants.
// The generation is the only field read outside the main context: wake
// paths load it atomically to validate stale wakers.
type slot struct {
	gen atomic.Uint32
	fn  api.TaskFunc
}

// Arena is the fixed task slot store. Spawn and Free are main-context
// operations (the executor's run loop and code running before it);
// only Generation and Live are safe from interrupt dispatch context.
type Arena struct {
	slots []slot
	free  []uint32 // LIFO freelist of slot indices
	live  int
}

// New builds an arena with the given fixed capacity, clamped to at
// least 1. The ready bitset above sizes itself from the same number.
func New(capacity int) *Arena {
	if capacity < 1 {
		capacity = 1
	}
	a := &Arena{
		slots: make([]slot, capacity),
		free:  make([]uint32, capacity),
	}
	// Seed the freelist so that the lowest index comes off first;
	// spawn order then matches slot order, which keeps the run loop's
	// index-ordered drain equal to spawn order for fresh arenas.
	for i := range a.free {
		a.free[i] = uint32(capacity - 1 - i)
	}
	return a
}

// Spawn claims a free slot for fn and returns its handle. Fails with
// ErrCapacityExceeded when every slot is occupied; existing tasks are
// untouched in that case.
func (a *Arena) Spawn(fn api.TaskFunc) (api.TaskHandle, error) {
	if fn == nil {
		return api.TaskHandle{}, api.NewError(api.ErrCodeInvalidArgument, "spawn with nil computation")
	}
	if len(a.free) == 0 {
		return api.TaskHandle{}, api.NewError(api.ErrCodeCapacityExceeded, "task arena full").
			WithContext("capacity", len(a.slots))
	}
	idx := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]
	s := &a.slots[idx]
	s.fn = fn
	gen := s.gen.Add(1) // even -> odd: live
	a.live++
	return api.TaskHandle{Slot: idx, Gen: gen}, nil
}

// Free releases the slot behind h. Returns false for stale handles and
// leaves the arena untouched. Called by the executor once the task's
// computation reports completion, never by task code.
func (a *Arena) Free(h api.TaskHandle) bool {
	if int(h.Slot) >= len(a.slots) {
		return false
	}
	s := &a.slots[h.Slot]
	gen := s.gen.Load()
	if gen != h.Gen || gen&1 == 0 {
		return false
	}
	s.fn = nil
	s.gen.Add(1) // odd -> even: free; stale wakers now miss
	a.free = append(a.free, h.Slot)
	a.live--
	return true
}

// Task returns the computation behind h if the handle is still live.
func (a *Arena) Task(h api.TaskHandle) (api.TaskFunc, bool) {
	if int(h.Slot) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[h.Slot]
	if s.gen.Load() != h.Gen || h.Gen&1 == 0 {
		return nil, false
	}
	return s.fn, true
}

// Live reports whether idx currently holds a task, and under which
// generation. Safe from interrupt dispatch context.
func (a *Arena) Live(idx uint32) (gen uint32, ok bool) {
	if int(idx) >= len(a.slots) {
		return 0, false
	}
	gen = a.slots[idx].gen.Load()
	return gen, gen&1 == 1
}

// Generation returns the raw generation counter of idx.
func (a *Arena) Generation(idx uint32) uint32 {
	if int(idx) >= len(a.slots) {
		return 0
	}
	return a.slots[idx].gen.Load()
}

// Len returns the number of live tasks.
func (a *Arena) Len() int { return a.live }

// Cap returns the fixed capacity.
func (a *Arena) Cap() int { return len(a.slots) }
