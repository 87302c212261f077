// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics and debug introspection for the
// nanoloop runtime core.
//
// Provides:
//   - Immutable per-run configuration with TOML file loading
//   - A metrics registry merging per-subsystem counter sources
//   - Debug probe registration and on-demand state dumps
//
// Configuration is fixed before the executor starts; there is no
// reconfiguration path once tasks run, matching the one-boot lifetime
// of the firmware the runtime models.
package control
