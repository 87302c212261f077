// control/plane_test.go
// Author: momentics <momentics@gmail.com>

package control

import "testing"

func TestPlaneStatsMergePrefixed(t *testing.T) {
	p := NewPlane(nil)
	p.Metrics().RegisterSource("executor", func() map[string]any {
		return map[string]any{"polls": uint64(12)}
	})
	p.Metrics().RegisterSource("irq", func() map[string]any {
		return map[string]any{"dispatched": uint64(3)}
	})
	stats := p.Stats()
	if stats["executor.polls"] != uint64(12) {
		t.Errorf("executor.polls=%v, want 12", stats["executor.polls"])
	}
	if stats["irq.dispatched"] != uint64(3) {
		t.Errorf("irq.dispatched=%v, want 3", stats["irq.dispatched"])
	}
}

func TestPlaneDebugProbes(t *testing.T) {
	p := NewPlane(nil)
	calls := 0
	p.RegisterDebugProbe("tasks_live", func() any { calls++; return 5 })
	dump := p.DumpState()
	if dump["tasks_live"] != 5 {
		t.Errorf("dump=%v, want tasks_live 5", dump)
	}
	p.DumpState()
	if calls != 2 {
		t.Errorf("probe ran %d times over two dumps, want 2", calls)
	}
}

func TestPlaneConfigSnapshot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 4
	p := NewPlane(cfg)
	got := p.GetConfig()
	if got["capacity"] != 4 {
		t.Errorf("capacity=%v, want 4", got["capacity"])
	}
	if got["idle_policy"] != "block" {
		t.Errorf("idle_policy=%v, want block", got["idle_policy"])
	}
}
