// control/plane.go
// Author: momentics <momentics@gmail.com>
//
// The control plane implementation: one object tying the immutable
// configuration, the metrics registry and the debug probes behind the
// api.Control contract.

package control

import "github.com/momentics/nanoloop/api"

// Plane implements api.Control for a running firmware instance.
type Plane struct {
	cfg     *Config
	metrics *MetricsRegistry
	probes  *DebugProbes
}

// Compile-time interface compliance.
var _ api.Control = (*Plane)(nil)

// NewPlane builds a control plane over cfg.
func NewPlane(cfg *Config) *Plane {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	p := &Plane{
		cfg:     cfg,
		metrics: NewMetricsRegistry(),
		probes:  NewDebugProbes(),
	}
	RegisterPlatformProbes(p.probes)
	return p
}

// Metrics exposes the registry for subsystem registration.
func (p *Plane) Metrics() *MetricsRegistry { return p.metrics }

// GetConfig returns the immutable configuration snapshot.
func (p *Plane) GetConfig() map[string]any { return p.cfg.Snapshot() }

// Stats merges all registered stat sources.
func (p *Plane) Stats() map[string]any { return p.metrics.GetSnapshot() }

// RegisterDebugProbe inserts a named inspection hook.
func (p *Plane) RegisterDebugProbe(name string, fn func() any) {
	p.probes.RegisterProbe(name, fn)
}

// DumpState runs every probe and collects the results.
func (p *Plane) DumpState() map[string]any { return p.probes.DumpState() }
