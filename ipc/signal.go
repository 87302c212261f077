// File: ipc/signal.go
// Package ipc provides driver-to-task handoff primitives: a one-shot
// event flag and a bounded mailbox.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ipc

import (
	"sync/atomic"

	"github.com/momentics/nanoloop/api"
)

// Signal is a latching event flag with a single waiter. A peripheral
// driver or interrupt handler calls Set; the task polls Wait. Multiple
// Sets before the waiter runs coalesce into one observation.
type Signal struct {
	set   atomic.Bool
	waker atomic.Pointer[api.Waker]
}

// Set latches the signal and wakes the registered waiter, if any.
// Lock-free; safe from interrupt dispatch context.
func (s *Signal) Set() {
	s.set.Store(true)
	if w := s.waker.Swap(nil); w != nil {
		w.Wake()
	}
}

// IsSet reports the latch without consuming it.
func (s *Signal) IsSet() bool { return s.set.Load() }

// Wait consumes the latch if set, otherwise registers the task's waker
// and suspends. Only one task may wait on a signal; a second waiter
// replaces the first's registration.
func (s *Signal) Wait(cx *api.Context) api.Poll {
	if s.set.CompareAndSwap(true, false) {
		return api.Done
	}
	w := cx.Waker()
	s.waker.Store(&w)
	// Re-check: a Set between the first check and the registration
	// would otherwise be missed until the next unrelated wake.
	if s.set.CompareAndSwap(true, false) {
		s.waker.Store(nil)
		return api.Done
	}
	return api.Pending
}
