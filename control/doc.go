// Package control
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Configuration, logging, metrics and debug introspection for hioload-exec.
//
// Provides concurrent-safe state handling primitives including:
//   - Environment-driven executor configuration with validation
//   - A hot-reloadable config snapshot with reload listeners
//   - Executor stats snapshots and a Prometheus collector over them
//   - Debug probe registration and state export
package control
