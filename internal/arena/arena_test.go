// File: internal/arena/arena_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package arena

import (
	"errors"
	"testing"

	"github.com/momentics/nanoloop/api"
)

func nopTask(*api.Context) api.Poll { return api.Done }

// TestArena_CapacityExceeded checks the (N+1)-th spawn fails and no
// existing task is disturbed.
func TestArena_CapacityExceeded(t *testing.T) {
	const capacity = 4
	a := New(capacity)
	handles := make([]api.TaskHandle, 0, capacity)
	for i := 0; i < capacity; i++ {
		h, err := a.Spawn(nopTask)
		if err != nil {
			t.Fatalf("spawn %d failed: %v", i, err)
		}
		handles = append(handles, h)
	}
	_, err := a.Spawn(nopTask)
	if !errors.Is(err, api.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	var serr *api.Error
	if !errors.As(err, &serr) || serr.Code != api.ErrCodeCapacityExceeded {
		t.Fatalf("expected structured capacity error, got %#v", err)
	}
	if serr.Context["capacity"] != capacity {
		t.Errorf("error context capacity=%v, want %d", serr.Context["capacity"], capacity)
	}
	for i, h := range handles {
		if _, ok := a.Task(h); !ok {
			t.Errorf("task %d disturbed by failed spawn", i)
		}
	}
	if a.Len() != capacity {
		t.Errorf("expected %d live tasks, got %d", capacity, a.Len())
	}
}

// TestArena_GenerationAdvancesOnReuse checks a freed slot's next
// occupant carries a different generation.
func TestArena_GenerationAdvancesOnReuse(t *testing.T) {
	a := New(1)
	h1, err := a.Spawn(nopTask)
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}
	if !a.Free(h1) {
		t.Fatal("free of live handle failed")
	}
	h2, err := a.Spawn(nopTask)
	if err != nil {
		t.Fatalf("respawn failed: %v", err)
	}
	if h2.Slot != h1.Slot {
		t.Fatalf("expected slot reuse, got %d then %d", h1.Slot, h2.Slot)
	}
	if h2.Gen == h1.Gen {
		t.Error("reused slot kept the same generation")
	}
	if _, ok := a.Task(h1); ok {
		t.Error("stale handle still resolves to a task")
	}
	if _, ok := a.Task(h2); !ok {
		t.Error("live handle does not resolve")
	}
}

// TestArena_FreeStale checks double free and stale free are rejected.
func TestArena_FreeStale(t *testing.T) {
	a := New(2)
	h, _ := a.Spawn(nopTask)
	if !a.Free(h) {
		t.Fatal("first free failed")
	}
	if a.Free(h) {
		t.Error("double free succeeded")
	}
	if a.Free(api.TaskHandle{Slot: 99, Gen: 1}) {
		t.Error("out-of-range free succeeded")
	}
	if a.Len() != 0 {
		t.Errorf("expected 0 live, got %d", a.Len())
	}
}

// TestArena_LiveParity checks Live odd/even generation tracking.
func TestArena_LiveParity(t *testing.T) {
	a := New(1)
	if _, ok := a.Live(0); ok {
		t.Error("empty slot reported live")
	}
	h, _ := a.Spawn(nopTask)
	gen, ok := a.Live(h.Slot)
	if !ok || gen != h.Gen {
		t.Fatalf("live slot: gen=%d ok=%v, want gen=%d ok=true", gen, ok, h.Gen)
	}
	if g := a.Generation(h.Slot); g%2 != 1 {
		t.Errorf("live slot generation %d not odd", g)
	}
	a.Free(h)
	if _, ok := a.Live(h.Slot); ok {
		t.Error("freed slot reported live")
	}
	if g := a.Generation(h.Slot); g%2 != 0 {
		t.Errorf("freed slot generation %d not even", g)
	}
}

// TestArena_SpawnNil rejects nil computations.
func TestArena_SpawnNil(t *testing.T) {
	a := New(1)
	if _, err := a.Spawn(nil); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
