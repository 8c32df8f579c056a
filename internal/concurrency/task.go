// File: internal/concurrency/task.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-exec/api"
)

// Counters is the task bookkeeping shared by every runtime, pool and bridge.
// The zero value is ready to use.
type Counters struct {
	spawned   atomic.Uint64
	dropped   atomic.Uint64
	completed atomic.Uint64
	panicked  atomic.Uint64
}

// MarkSpawned records an accepted task.
func (c *Counters) MarkSpawned() { c.spawned.Add(1) }

// MarkDropped records n refused or abandoned tasks.
func (c *Counters) MarkDropped(n int) { c.dropped.Add(uint64(n)) }

// Execute runs task, recovering a panic so the calling worker survives.
func (c *Counters) Execute(log zerolog.Logger, task api.Task) {
	defer func() {
		if r := recover(); r != nil {
			c.panicked.Add(1)
			log.Error().Interface("panic", r).Msg("task panicked")
		}
		c.completed.Add(1)
	}()
	task()
}

// Fill copies the counters into s.
func (c *Counters) Fill(s *api.ExecutorStats) {
	s.Spawned = c.spawned.Load()
	s.Dropped = c.dropped.Load()
	s.Completed = c.completed.Load()
	s.Panicked = c.panicked.Load()
}
