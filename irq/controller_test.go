// File: irq/controller_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package irq

import (
	"testing"

	"github.com/momentics/nanoloop/api"
	"github.com/momentics/nanoloop/fake"
)

func line(t *testing.T, c *Controller, n int, prio api.IntPriority, fn func()) *Line {
	t.Helper()
	l := c.Line(n)
	if l == nil {
		t.Fatalf("line %d out of range", n)
	}
	l.SetPriority(prio)
	l.SetHandler(fn)
	l.Enable()
	return l
}

// TestController_PriorityOrder checks a single step dispatches more
// urgent levels first regardless of pend order.
func TestController_PriorityOrder(t *testing.T) {
	c := NewController(4)
	var order []int
	l0 := line(t, c, 0, 5, func() { order = append(order, 0) })
	l1 := line(t, c, 1, 1, func() { order = append(order, 1) })
	l2 := line(t, c, 2, 5, func() { order = append(order, 2) })

	// Pend least urgent first.
	l0.Pend()
	l2.Pend()
	l1.Pend()

	if ran := c.Step(); ran != 3 {
		t.Fatalf("dispatched %d handlers, want 3", ran)
	}
	want := []int{1, 0, 2} // level 1 first, then level 5 in pend order
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("dispatch order %v, want %v", order, want)
		}
	}
}

// TestController_DisabledHoldsPend checks a pend latched while the line
// is disabled dispatches exactly once after Enable.
func TestController_DisabledHoldsPend(t *testing.T) {
	c := NewController(2)
	fired := 0
	l := c.Line(0)
	l.SetHandler(func() { fired++ })
	l.SetPriority(2)

	l.Pend()
	if c.Step() != 0 {
		t.Fatal("disabled line dispatched")
	}
	if !l.IsPending() {
		t.Fatal("pend bit dropped while disabled")
	}

	l.Enable()
	if c.Step() != 1 {
		t.Fatal("held pend not dispatched after enable")
	}
	if fired != 1 {
		t.Fatalf("handler ran %d times, want 1", fired)
	}
	if l.Fires() != 1 {
		t.Fatalf("line counted %d fires, want 1", l.Fires())
	}
	if l.IsPending() {
		t.Fatal("pend bit still set after dispatch")
	}
}

// TestController_PendCoalesces checks repeated pends before dispatch
// run the handler once.
func TestController_PendCoalesces(t *testing.T) {
	c := NewController(1)
	fired := 0
	l := line(t, c, 0, 0, func() { fired++ })
	for i := 0; i < 5; i++ {
		l.Pend()
	}
	c.Step()
	c.Step()
	if fired != 1 {
		t.Fatalf("handler ran %d times, want 1 (pends must coalesce)", fired)
	}
}

// TestController_UnpendCancels checks clearing the pend bit before
// dispatch suppresses the handler.
func TestController_UnpendCancels(t *testing.T) {
	c := NewController(1)
	fired := 0
	l := line(t, c, 0, 0, func() { fired++ })
	l.Pend()
	l.Unpend()
	c.Step()
	if fired != 0 {
		t.Fatalf("handler ran %d times after unpend, want 0", fired)
	}
}

// TestController_StepBudget checks a handler that re-pends its own line
// does not starve the step: the re-pend dispatches next step.
func TestController_StepBudget(t *testing.T) {
	c := NewController(1)
	fired := 0
	var l *Line
	l = line(t, c, 0, 0, func() {
		fired++
		if fired < 3 {
			l.Pend()
		}
	})
	l.Pend()
	for i := 1; i <= 3; i++ {
		if ran := c.Step(); ran != 1 {
			t.Fatalf("step %d dispatched %d, want 1", i, ran)
		}
		if fired != i {
			t.Fatalf("step %d: handler ran %d times, want %d", i, fired, i)
		}
	}
}

// TestController_CriticalMasksHandlers checks no handler overlaps a
// Critical section: the handler observes state only after the masked
// mutation finished.
func TestController_CriticalMasksHandlers(t *testing.T) {
	c := NewController(1)
	state := 0
	observed := -1
	l := line(t, c, 0, 0, func() { observed = state })

	entered := make(chan struct{})
	release := make(chan struct{})
	go c.Critical(func() {
		close(entered)
		<-release
		state = 1
	})
	<-entered

	l.Pend()
	done := make(chan struct{})
	go func() {
		c.Step()
		close(done)
	}()
	close(release)
	<-done
	if observed != 1 {
		t.Fatalf("handler observed state %d inside critical section, want 1", observed)
	}
}

// TestBindWake checks the interrupt-to-waker bridge delivers the bound
// slot and generation on dispatch.
func TestBindWake(t *testing.T) {
	c := NewController(2)
	sink := &fake.WakeSink{}
	l := c.Line(1)
	l.SetPriority(3)
	BindWake(l, api.MakeWaker(sink, 7, 9))
	l.Enable()

	l.Pend()
	c.Step()
	calls := sink.Calls()
	if len(calls) != 1 || calls[0].Slot != 7 || calls[0].Gen != 9 {
		t.Fatalf("wake calls %v, want one call for (7,9)", calls)
	}
}
