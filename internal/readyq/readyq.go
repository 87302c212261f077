// File: internal/readyq/readyq.go
// Package readyq implements the runnable-task bitset.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One bit per arena slot, set with an atomic OR from any context and
// drained word-by-word by the run loop with an atomic swap. A bit is a
// single flag, so concurrent wakes for the same task coalesce for free
// and marking is idempotent by construction.

package readyq

import (
	"math/bits"
	"sync/atomic"
)

// Queue is the ready bitset. The zero value is unusable; use New.
type Queue struct {
	words []atomic.Uint64
	n     uint32
}

// New builds a bitset covering capacity slots.
func New(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{
		words: make([]atomic.Uint64, (capacity+63)/64),
		n:     uint32(capacity),
	}
}

// Mark sets the ready bit for idx. Returns true when the bit was newly
// set, false when it was already pending (coalesced wake) or idx is out
// of range. Lock-free, allocation-free, interrupt-safe.
func (q *Queue) Mark(idx uint32) bool {
	if idx >= q.n {
		return false
	}
	mask := uint64(1) << (idx & 63)
	old := q.words[idx>>6].Or(mask)
	return old&mask == 0
}

// Drain consumes the currently pending bits in ascending index order,
// calling visit for each. Bits set while a word is being visited land
// in the next drain pass, which is what gives the run loop round-robin
// fairness over repeatedly self-waking tasks. Returns the number of
// bits consumed.
func (q *Queue) Drain(visit func(idx uint32)) int {
	n := 0
	for w := range q.words {
		pending := q.words[w].Swap(0)
		for pending != 0 {
			tz := bits.TrailingZeros64(pending)
			pending &^= 1 << tz
			visit(uint32(w<<6 + tz))
			n++
		}
	}
	return n
}

// Empty reports whether no bit is set. Only advisory: a concurrent
// Mark may land right after the last word is inspected, which is why
// the executor re-checks through its notify token before parking.
func (q *Queue) Empty() bool {
	for w := range q.words {
		if q.words[w].Load() != 0 {
			return false
		}
	}
	return true
}

// Len counts the currently set bits.
func (q *Queue) Len() int {
	n := 0
	for w := range q.words {
		n += bits.OnesCount64(q.words[w].Load())
	}
	return n
}
