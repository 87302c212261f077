// File: ipc/mailbox.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Mailbox is a bounded single-producer single-consumer ring carrying
// items from a peripheral driver into a task (or between two tasks).
// Push on a full ring and Pop on an empty ring suspend by registering
// the send or receive waker; the opposite side wakes it on the next
// state change. Capacity is fixed at construction: no heap growth.

package ipc

import (
	"sync/atomic"

	"github.com/momentics/nanoloop/api"
)

// Mailbox is the bounded SPSC ring. One producer context, one consumer
// context; the two may be a task and an interrupt handler.
type Mailbox[T any] struct {
	entries []T
	mask    uint64
	head    atomic.Uint64
	tail    atomic.Uint64

	recvWaker atomic.Pointer[api.Waker]
	sendWaker atomic.Pointer[api.Waker]
}

// NewMailbox allocates a mailbox with capacity rounded up to a power
// of two, minimum 2.
func NewMailbox[T any](capacity int) *Mailbox[T] {
	size := 2
	for size < capacity {
		size <<= 1
	}
	return &Mailbox[T]{
		entries: make([]T, size),
		mask:    uint64(size - 1),
	}
}

// TryPush appends v without suspending; false when full.
func (m *Mailbox[T]) TryPush(v T) bool {
	tail := m.tail.Load()
	head := m.head.Load()
	if tail-head >= uint64(len(m.entries)) {
		return false
	}
	m.entries[tail&m.mask] = v
	m.tail.Store(tail + 1)
	if w := m.recvWaker.Swap(nil); w != nil {
		w.Wake()
	}
	return true
}

// TryPop removes the oldest item without suspending; ok false when
// empty.
func (m *Mailbox[T]) TryPop() (item T, ok bool) {
	head := m.head.Load()
	tail := m.tail.Load()
	if head >= tail {
		return item, false
	}
	item = m.entries[head&m.mask]
	m.head.Store(head + 1)
	if w := m.sendWaker.Swap(nil); w != nil {
		w.Wake()
	}
	return item, true
}

// Push appends v, suspending the calling task while the ring is full.
func (m *Mailbox[T]) Push(cx *api.Context, v T) api.Poll {
	if m.TryPush(v) {
		return api.Done
	}
	w := cx.Waker()
	m.sendWaker.Store(&w)
	// The consumer may have drained between the failed push and the
	// registration; retry once so the waker is not parked stale.
	if m.TryPush(v) {
		m.sendWaker.Store(nil)
		return api.Done
	}
	return api.Pending
}

// Pop removes the oldest item, suspending the calling task while the
// ring is empty.
func (m *Mailbox[T]) Pop(cx *api.Context) (item T, res api.Poll) {
	if it, ok := m.TryPop(); ok {
		return it, api.Done
	}
	w := cx.Waker()
	m.recvWaker.Store(&w)
	if it, ok := m.TryPop(); ok {
		m.recvWaker.Store(nil)
		return it, api.Done
	}
	return item, api.Pending
}

// Len returns the number of queued items.
func (m *Mailbox[T]) Len() int {
	return int(m.tail.Load() - m.head.Load())
}

// Cap returns the fixed capacity.
func (m *Mailbox[T]) Cap() int { return len(m.entries) }
