// File: timerq/heap.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package timerq

import "github.com/momentics/nanoloop/api"

// alarm is one pending deadline: the instant and the waker of the task
// awaiting it. seq breaks timestamp ties in insertion order so equal
// deadlines fire deterministically.
type alarm struct {
	at    api.Instant
	waker api.Waker
	seq   uint64
}

// alarmHeap is a min-heap on (at, seq), used with container/heap.
type alarmHeap []alarm

func (h alarmHeap) Len() int { return len(h) }

func (h alarmHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}

func (h alarmHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *alarmHeap) Push(x any) {
	*h = append(*h, x.(alarm))
}

func (h *alarmHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}
