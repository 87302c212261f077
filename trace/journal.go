// File: trace/journal.go
// Package trace records scheduling events in a bounded in-memory
// journal for post-run inspection and export.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The journal drops its oldest records once full rather than growing:
// tracing must never become an unbounded sink inside a fixed-memory
// runtime. Record sits on the scheduling hot path, so it does one
// deque operation under a short lock and nothing else.

package trace

import (
	"sync"

	"github.com/gammazero/deque"
	"github.com/momentics/nanoloop/api"
)

// Record is one journaled scheduling event.
type Record struct {
	Seq  uint64 `msgpack:"seq"`
	Kind string `msgpack:"kind"`
	Slot uint32 `msgpack:"slot"`
	Gen  uint32 `msgpack:"gen"`
	Tick uint64 `msgpack:"tick"`
}

// Journal is a bounded scheduling event log.
type Journal struct {
	mu      sync.Mutex
	buf     deque.Deque[Record]
	depth   int
	seq     uint64
	dropped uint64
}

// Compile-time interface compliance.
var _ api.Tracer = (*Journal)(nil)

// NewJournal builds a journal keeping at most depth records.
func NewJournal(depth int) *Journal {
	if depth < 1 {
		depth = 1
	}
	j := &Journal{depth: depth}
	j.buf.SetBaseCap(depth)
	return j
}

// Trace implements api.Tracer.
func (j *Journal) Trace(ev api.TraceEvent) {
	j.mu.Lock()
	j.seq++
	if j.buf.Len() >= j.depth {
		j.buf.PopFront()
		j.dropped++
	}
	j.buf.PushBack(Record{
		Seq:  j.seq,
		Kind: ev.Kind.String(),
		Slot: ev.Slot,
		Gen:  ev.Gen,
		Tick: uint64(ev.Tick),
	})
	j.mu.Unlock()
}

// Snapshot copies the current records, oldest first.
func (j *Journal) Snapshot() []Record {
	j.mu.Lock()
	out := make([]Record, j.buf.Len())
	for i := range out {
		out[i] = j.buf.At(i)
	}
	j.mu.Unlock()
	return out
}

// Len returns the number of retained records.
func (j *Journal) Len() int {
	j.mu.Lock()
	n := j.buf.Len()
	j.mu.Unlock()
	return n
}

// Dropped returns how many records were evicted to stay within depth.
func (j *Journal) Dropped() uint64 {
	j.mu.Lock()
	d := j.dropped
	j.mu.Unlock()
	return d
}
