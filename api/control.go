// File: api/control.go
// Package api defines Control interface.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Control exposes runtime configuration and introspection: the
// immutable firmware configuration snapshot, live counters from the
// executor, alarm driver and interrupt controller, and named debug
// probes registered by subsystems.
type Control interface {
	GetConfig() map[string]any
	Stats() map[string]any
	RegisterDebugProbe(name string, fn func() any)
	DumpState() map[string]any
}
