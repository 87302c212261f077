// File: api/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package api declares the public contracts of the nanoloop runtime:
// task and waker types, the hardware timer and interrupt abstractions,
// tracing hooks and the shared error taxonomy.
//
// Implementations live in the executor, timerq, irq and hw packages.
// api itself has no dependencies and no behavior beyond trivial value
// helpers, so peripheral driver authors can depend on it alone.
package api
