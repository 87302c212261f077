// File: internal/readyq/readyq_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package readyq

import (
	"math/rand"
	"testing"
)

// TestQueue_MarkIdempotent checks concurrent-style repeated marks
// coalesce into one drained bit.
func TestQueue_MarkIdempotent(t *testing.T) {
	q := New(128)
	if !q.Mark(7) {
		t.Fatal("first mark reported already-set")
	}
	for i := 0; i < 10; i++ {
		if q.Mark(7) {
			t.Fatal("duplicate mark reported newly-set")
		}
	}
	var got []uint32
	q.Drain(func(idx uint32) { got = append(got, idx) })
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("expected single drain of bit 7, got %v", got)
	}
}

// TestQueue_DrainOrder checks drain visits set bits in ascending slot
// order regardless of mark order.
func TestQueue_DrainOrder(t *testing.T) {
	q := New(200)
	marks := []uint32{130, 3, 64, 0, 199, 65}
	for _, m := range marks {
		q.Mark(m)
	}
	var got []uint32
	q.Drain(func(idx uint32) { got = append(got, idx) })
	want := []uint32{0, 3, 64, 65, 130, 199}
	if len(got) != len(want) {
		t.Fatalf("drained %d bits, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("drain order %v, want %v", got, want)
		}
	}
}

// TestQueue_OutOfRange checks marks beyond capacity are rejected.
func TestQueue_OutOfRange(t *testing.T) {
	q := New(64)
	if q.Mark(64) {
		t.Error("out-of-range mark accepted")
	}
	if !q.Empty() {
		t.Error("queue not empty after rejected mark")
	}
}

// TestQueue_PropertyBased performs randomized mark/drain cycles and
// checks the drained set always equals the marked set.
func TestQueue_PropertyBased(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		q := New(256)
		for round := 0; round < 50; round++ {
			want := make(map[uint32]bool)
			for i := 0; i < rng.Intn(40); i++ {
				idx := uint32(rng.Intn(256))
				want[idx] = true
				q.Mark(idx)
			}
			if q.Len() != len(want) {
				t.Fatalf("seed %d round %d: Len=%d want %d", seed, round, q.Len(), len(want))
			}
			got := make(map[uint32]bool)
			prev := -1
			q.Drain(func(idx uint32) {
				if int(idx) <= prev {
					t.Fatalf("seed %d: drain not ascending: %d after %d", seed, idx, prev)
				}
				prev = int(idx)
				got[idx] = true
			})
			if len(got) != len(want) {
				t.Fatalf("seed %d round %d: drained %d bits, want %d", seed, round, len(got), len(want))
			}
			for idx := range want {
				if !got[idx] {
					t.Fatalf("seed %d round %d: bit %d lost", seed, round, idx)
				}
			}
			if !q.Empty() {
				t.Fatalf("seed %d round %d: queue not empty after drain", seed, round)
			}
		}
	}
}
