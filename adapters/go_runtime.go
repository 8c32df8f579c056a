// File: adapters/go_runtime.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// GoRuntime treats the Go scheduler as the reactor: every spawned task gets its own
// goroutine and the netpoller multiplexes them over GOMAXPROCS threads. It has no
// blocking facility of its own, so bridges pair it with a thread pool.

package adapters

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/internal/concurrency"
)

// Ensure compile-time interface compliance.
var _ api.Runtime = (*GoRuntime)(nil)

// GoRuntime is an api.Runtime backed by plain goroutines.
type GoRuntime struct {
	id  uuid.UUID
	log zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	counts concurrency.Counters
}

// NewGoRuntime returns a live runtime.
func NewGoRuntime(opts ...Option) *GoRuntime {
	o := buildOptions("go-runtime", opts)
	id := uuid.New()
	return &GoRuntime{
		id:  id,
		log: o.log.With().Str("runtime", o.name).Str("id", id.String()).Logger(),
	}
}

// Spawn starts task on a new goroutine unless the runtime is closed.
func (g *GoRuntime) Spawn(task api.Task) bool {
	if task == nil {
		return false
	}
	g.mu.RLock()
	if g.closed {
		g.mu.RUnlock()
		g.counts.MarkDropped(1)
		return false
	}
	g.wg.Add(1)
	g.mu.RUnlock()

	g.counts.MarkSpawned()
	go func() {
		defer g.wg.Done()
		g.counts.Execute(g.log, task)
	}()
	return true
}

// Stats reports task counters. Live is the number of goroutines still running.
func (g *GoRuntime) Stats() api.ExecutorStats {
	var s api.ExecutorStats
	g.counts.Fill(&s)
	if s.Spawned > s.Completed {
		s.Live = int(s.Spawned - s.Completed)
	}
	return s
}

// Close refuses further work and waits for running goroutines or ctx. It may be
// called again after a timeout to keep waiting.
func (g *GoRuntime) Close(ctx context.Context) error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return api.WrapError(api.ErrCodeTimeout, api.ErrOperationTimeout, "go runtime close").
			WithContext("runtime", g.id.String())
	}
}
