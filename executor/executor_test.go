// File: executor/executor_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/momentics/nanoloop/api"
)

// TestExecutor_SpawnCapacity checks the (N+1)-th spawn fails cleanly.
func TestExecutor_SpawnCapacity(t *testing.T) {
	e := New(2)
	pending := func(cx *api.Context) api.Poll { return api.Pending }
	if _, err := e.Spawn(pending); err != nil {
		t.Fatalf("spawn 1: %v", err)
	}
	if _, err := e.Spawn(pending); err != nil {
		t.Fatalf("spawn 2: %v", err)
	}
	if _, err := e.Spawn(pending); !errors.Is(err, api.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if e.Len() != 2 {
		t.Errorf("live=%d, want 2", e.Len())
	}
}

// TestExecutor_StepOrder checks ready tasks resume in slot-index order.
func TestExecutor_StepOrder(t *testing.T) {
	e := New(8)
	var order []int
	for i := 0; i < 4; i++ {
		i := i
		if _, err := e.Spawn(func(cx *api.Context) api.Poll {
			order = append(order, i)
			return api.Done
		}); err != nil {
			t.Fatalf("spawn %d: %v", i, err)
		}
	}
	if n := e.Step(); n != 4 {
		t.Fatalf("polled %d tasks, want 4", n)
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("resume order %v, want spawn order", order)
		}
	}
	if e.Len() != 0 {
		t.Errorf("live=%d after completion, want 0", e.Len())
	}
}

// TestExecutor_CompletionFreesSlot checks a completed task's slot is
// reused by the next spawn.
func TestExecutor_CompletionFreesSlot(t *testing.T) {
	e := New(1)
	h1, _ := e.Spawn(func(cx *api.Context) api.Poll { return api.Done })
	e.Step()
	h2, err := e.Spawn(func(cx *api.Context) api.Poll { return api.Pending })
	if err != nil {
		t.Fatalf("respawn into freed slot: %v", err)
	}
	if h2.Slot != h1.Slot || h2.Gen == h1.Gen {
		t.Errorf("reuse handle (%d,%d) vs (%d,%d): want same slot, new gen",
			h2.Slot, h2.Gen, h1.Slot, h1.Gen)
	}
}

// TestExecutor_StaleWakerDoesNotResumeSuccessor checks a waker created
// for a completed task never marks the slot's next occupant ready.
func TestExecutor_StaleWakerDoesNotResumeSuccessor(t *testing.T) {
	e := New(1)
	h1, _ := e.Spawn(func(cx *api.Context) api.Poll { return api.Done })
	stale := e.WakerFor(h1)
	e.Step() // completes the first task

	polls := 0
	if _, err := e.Spawn(func(cx *api.Context) api.Poll {
		polls++
		return api.Pending
	}); err != nil {
		t.Fatalf("respawn: %v", err)
	}
	e.Step() // consume the successor's initial readiness
	if polls != 1 {
		t.Fatalf("successor polled %d times, want 1", polls)
	}

	stale.Wake()
	if n := e.Step(); n != 0 {
		t.Fatalf("stale waker resumed the successor: %d polls", n)
	}
	if polls != 1 {
		t.Fatalf("successor polled %d times after stale wake, want 1", polls)
	}
}

// TestExecutor_CancelSuspendedTask checks cancellation frees the slot
// without resuming the task, degrades outstanding wakers to no-ops,
// and rejects the handle afterwards as stale.
func TestExecutor_CancelSuspendedTask(t *testing.T) {
	e := New(2)
	polls := 0
	h, err := e.Spawn(func(cx *api.Context) api.Poll {
		polls++
		return api.Pending
	})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	w := e.WakerFor(h)
	e.Step() // suspend after the initial poll

	if err := e.Cancel(h); err != nil {
		t.Fatalf("cancel of suspended task: %v", err)
	}
	if e.Len() != 0 {
		t.Fatalf("live=%d after cancel, want 0", e.Len())
	}
	w.Wake()
	if n := e.Step(); n != 0 || polls != 1 {
		t.Fatalf("cancelled task resumed: %d polls after wake", polls)
	}

	err = e.Cancel(h)
	if !errors.Is(err, api.ErrStaleHandle) {
		t.Fatalf("second cancel returned %v, want ErrStaleHandle", err)
	}
	var serr *api.Error
	if !errors.As(err, &serr) || serr.Code != api.ErrCodeStaleHandle {
		t.Fatalf("expected structured stale handle error, got %#v", err)
	}
	if got := e.Stats()["tasks_cancelled"].(uint64); got != 1 {
		t.Errorf("tasks_cancelled=%d, want 1", got)
	}
}

// TestExecutor_Fairness checks two perpetually self-waking tasks both
// progress once per pass.
func TestExecutor_Fairness(t *testing.T) {
	e := New(4)
	counters := [2]int{}
	for i := 0; i < 2; i++ {
		i := i
		if _, err := e.Spawn(func(cx *api.Context) api.Poll {
			counters[i]++
			cx.Waker().Wake()
			return api.Pending
		}); err != nil {
			t.Fatalf("spawn %d: %v", i, err)
		}
	}
	for pass := 1; pass <= 5; pass++ {
		e.Step()
		if counters[0] != pass || counters[1] != pass {
			t.Fatalf("pass %d: counters %v, want both %d", pass, counters, pass)
		}
	}
}

// TestExecutor_PanicFault checks a panicking task completes, frees its
// slot and is counted as faulted.
func TestExecutor_PanicFault(t *testing.T) {
	e := New(1)
	if _, err := e.Spawn(func(cx *api.Context) api.Poll {
		panic("task internal fault")
	}); err != nil {
		t.Fatalf("spawn: %v", err)
	}
	e.Step()
	if e.Len() != 0 {
		t.Fatalf("faulted task still live")
	}
	stats := e.Stats()
	if stats["tasks_faulted"].(uint64) != 1 {
		t.Errorf("tasks_faulted=%v, want 1", stats["tasks_faulted"])
	}
	if _, err := e.Spawn(func(cx *api.Context) api.Poll { return api.Done }); err != nil {
		t.Errorf("slot not reusable after fault: %v", err)
	}
}

// TestExecutor_WakeDuringParkWindow checks a wake delivered while the
// loop is checking for sleep is not lost: the executor resumes rather
// than staying parked.
func TestExecutor_WakeDuringParkWindow(t *testing.T) {
	e := New(2)
	done := make(chan struct{})
	step := 0
	h, err := e.Spawn(func(cx *api.Context) api.Poll {
		if step == 0 {
			step = 1
			return api.Pending // suspend with no wake source yet
		}
		close(done)
		return api.Done
	})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	w := e.WakerFor(h)
	// Hammer the park window: the wake may land before, during or
	// after the loop's empty-check, and must succeed regardless.
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				w.Wake()
				time.Sleep(time.Millisecond)
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("executor stayed parked across a delivered wake")
	}
}

// TestExecutor_RunAlreadyRunning checks a second Run call is rejected.
func TestExecutor_RunAlreadyRunning(t *testing.T) {
	e := New(1)
	started := make(chan struct{})
	if _, err := e.Spawn(func(cx *api.Context) api.Poll {
		close(started)
		return api.Pending
	}); err != nil {
		t.Fatalf("spawn: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ctx) }()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first Run never polled the sentinel task")
	}
	if err := e.Run(ctx); !errors.Is(err, api.ErrAlreadyRunning) {
		t.Fatalf("second Run returned %v, want ErrAlreadyRunning", err)
	}
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
}
