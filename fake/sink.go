// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

// Package fake provides test doubles for the runtime contracts: a
// recording wake sink, a scriptable hardware timer and a recording
// tracer.
package fake

import (
	"sync"

	"github.com/momentics/nanoloop/api"
)

// WakeCall records one Wake invocation.
type WakeCall struct {
	Slot uint32
	Gen  uint32
}

// WakeSink records every wake it receives.
type WakeSink struct {
	mu    sync.Mutex
	calls []WakeCall
}

var _ api.WakeSink = (*WakeSink)(nil)

// Wake implements api.WakeSink.
func (s *WakeSink) Wake(slot, gen uint32) {
	s.mu.Lock()
	s.calls = append(s.calls, WakeCall{Slot: slot, Gen: gen})
	s.mu.Unlock()
}

// Calls returns a copy of the recorded wakes.
func (s *WakeSink) Calls() []WakeCall {
	s.mu.Lock()
	out := append([]WakeCall(nil), s.calls...)
	s.mu.Unlock()
	return out
}

// Reset clears the record.
func (s *WakeSink) Reset() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}
