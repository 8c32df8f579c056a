// File: api/control.go
// Package api defines Control interface.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Control manages dynamic config and runtime metrics.
type Control interface {
	GetConfig() map[string]any
	SetConfig(cfg map[string]any) error
	Stats() map[string]any
	OnReload(fn func())
	RegisterDebugProbe(name string, fn func() any)
}

// ExecutorStats is a point-in-time view of one runtime, pool or bridge.
// Counters are monotonic; gauges reflect the moment of the call.
type ExecutorStats struct {
	Spawned   uint64 // tasks accepted
	Dropped   uint64 // tasks refused or abandoned at shutdown
	Completed uint64 // tasks that returned or panicked
	Panicked  uint64 // tasks recovered from a panic
	Pending   int    // accepted, not yet started
	Live      int    // live worker threads or loops
	Idle      int    // workers waiting for a task
}

// StatsProvider is implemented by every component that exposes ExecutorStats.
type StatsProvider interface {
	Stats() ExecutorStats
}
