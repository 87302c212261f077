// File: api/waker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Waker is the only channel through which interrupt context may touch
// the executor: it flips a ready bit and nothing else. It is a plain
// value, freely copyable, and invoking it after the task completed is
// a silent no-op thanks to the generation check in the sink.

package api

// WakeSink receives wake requests for (slot, generation) pairs. The
// executor implements it; the generation check happens behind this
// interface so that every copy of a waker stays safe after the task is
// gone.
type WakeSink interface {
	// Wake marks the task in slot runnable if gen still matches the
	// slot's live generation. Must never block or allocate: it is
	// called from interrupt dispatch context.
	Wake(slot, gen uint32)
}

// Waker marks one specific task runnable. The zero Waker is inert.
type Waker struct {
	sink WakeSink
	slot uint32
	gen  uint32
}

// MakeWaker binds a waker to a sink and a task identity. Normally
// obtained through Executor.WakerFor or Context.Waker rather than
// constructed directly.
func MakeWaker(sink WakeSink, slot, gen uint32) Waker {
	return Waker{sink: sink, slot: slot, gen: gen}
}

// Wake marks the referenced task runnable. Safe from any context,
// idempotent, and a no-op once the task has completed.
func (w Waker) Wake() {
	if w.sink != nil {
		w.sink.Wake(w.slot, w.gen)
	}
}

// IsZero reports whether the waker is unbound.
func (w Waker) IsZero() bool {
	return w.sink == nil
}

// Target returns the slot and generation this waker refers to. Used by
// the alarm driver to identify pending deadlines for cancellation.
func (w Waker) Target() (slot, gen uint32) {
	return w.slot, w.gen
}
