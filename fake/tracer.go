// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"

	"github.com/momentics/nanoloop/api"
)

// Tracer records every scheduling event it receives.
type Tracer struct {
	mu     sync.Mutex
	events []api.TraceEvent
}

var _ api.Tracer = (*Tracer)(nil)

// Trace implements api.Tracer.
func (t *Tracer) Trace(ev api.TraceEvent) {
	t.mu.Lock()
	t.events = append(t.events, ev)
	t.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (t *Tracer) Events() []api.TraceEvent {
	t.mu.Lock()
	out := append([]api.TraceEvent(nil), t.events...)
	t.mu.Unlock()
	return out
}

// Count returns how many events of kind were recorded.
func (t *Tracer) Count(kind api.TraceKind) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, ev := range t.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
