// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics aggregation. Subsystems (executor, alarm driver,
// interrupt controller) register stat sources; the registry merges
// their counters into one snapshot on demand, so the hot paths only
// ever bump their own atomics.

package control

import (
	"sync"
	"time"
)

// StatSource produces a point-in-time counter map.
type StatSource func() map[string]any

// MetricsRegistry aggregates named stat sources.
type MetricsRegistry struct {
	mu      sync.RWMutex
	sources map[string]StatSource
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		sources: make(map[string]StatSource),
	}
}

// RegisterSource attaches a named stat source.
func (mr *MetricsRegistry) RegisterSource(name string, src StatSource) {
	mr.mu.Lock()
	mr.sources[name] = src
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// GetSnapshot merges all sources into one flat map, keys prefixed by
// source name.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any)
	for name, src := range mr.sources {
		for k, v := range src() {
			out[name+"."+k] = v
		}
	}
	return out
}
