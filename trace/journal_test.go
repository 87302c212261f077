// File: trace/journal_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package trace

import (
	"bytes"
	"testing"

	"github.com/momentics/nanoloop/api"
)

// TestJournal_BoundedEviction checks the journal holds at most depth
// records and drops the oldest ones.
func TestJournal_BoundedEviction(t *testing.T) {
	j := NewJournal(4)
	for i := 0; i < 10; i++ {
		j.Trace(api.TraceEvent{Kind: api.TraceWake, Slot: uint32(i)})
	}
	if j.Len() != 4 {
		t.Fatalf("len=%d, want 4", j.Len())
	}
	if j.Dropped() != 6 {
		t.Fatalf("dropped=%d, want 6", j.Dropped())
	}
	recs := j.Snapshot()
	for i, r := range recs {
		if want := uint32(6 + i); r.Slot != want {
			t.Fatalf("record %d slot=%d, want %d (oldest evicted first)", i, r.Slot, want)
		}
		if r.Seq != uint64(7+i) {
			t.Fatalf("record %d seq=%d, want %d", i, r.Seq, 7+i)
		}
	}
}

// TestJournal_RecordFields checks event fields survive the translation
// into the journaled record.
func TestJournal_RecordFields(t *testing.T) {
	j := NewJournal(8)
	j.Trace(api.TraceEvent{Kind: api.TraceAlarmFire, Slot: 3, Gen: 11, Tick: 4096})
	recs := j.Snapshot()
	if len(recs) != 1 {
		t.Fatalf("len=%d, want 1", len(recs))
	}
	r := recs[0]
	if r.Kind != api.TraceAlarmFire.String() || r.Slot != 3 || r.Gen != 11 || r.Tick != 4096 {
		t.Fatalf("record %+v does not match the traced event", r)
	}
}

// TestJournal_ExportDecode checks a journal export reads back intact.
func TestJournal_ExportDecode(t *testing.T) {
	j := NewJournal(3)
	kinds := []api.TraceKind{api.TraceSpawn, api.TracePoll, api.TraceComplete, api.TraceWake}
	for i, k := range kinds {
		j.Trace(api.TraceEvent{Kind: k, Slot: uint32(i), Gen: 1, Tick: api.Instant(100 * i)})
	}

	var buf bytes.Buffer
	if err := j.Export(&buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := j.Snapshot()
	if len(got) != len(want) {
		t.Fatalf("decoded %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d: decoded %+v, want %+v", i, got[i], want[i])
		}
	}
}
