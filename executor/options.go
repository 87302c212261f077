// File: executor/options.go
// Package executor defines functional options for the run loop.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package executor

import "github.com/momentics/nanoloop/api"

// Option customizes executor initialization.
type Option func(*Executor)

// WithIdlePolicy overrides the default blocking idle wait.
func WithIdlePolicy(p IdlePolicy) Option {
	return func(e *Executor) {
		if p != nil {
			e.idle = p
		}
	}
}

// WithTracer attaches a scheduling tracer.
func WithTracer(t api.Tracer) Option {
	return func(e *Executor) {
		if t != nil {
			e.tracer = t
		}
	}
}
