// File: adapters/reactor_bridge.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ReactorBridge implements api.Executor on top of an event-loop runtime. Spawn goes
// to the runtime's native spawner; SpawnBlocking goes to the runtime's own blocking
// facility when it implements api.BlockingRuntime, otherwise to a fallback pool.

package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/internal/concurrency"
)

// Ensure compile-time interface compliance.
var _ api.Executor = (*ReactorBridge)(nil)

// ReactorBridge adapts an api.Runtime to api.Executor.
type ReactorBridge struct {
	name     string
	rt       api.Runtime
	native   api.BlockingRuntime // nil when rt has no blocking facility
	fallback api.BlockingPool    // used when native is nil
	owned    *concurrency.ThreadPool
	log      zerolog.Logger

	offload blockingSubmitter
	counts  concurrency.Counters
}

// NewReactorBridge wraps rt. When rt has no blocking facility and no fallback pool is
// supplied, the bridge creates and owns a default ThreadPool, closed by Close.
func NewReactorBridge(rt api.Runtime, opts ...Option) *ReactorBridge {
	o := buildOptions("reactor-bridge", opts)
	b := &ReactorBridge{
		name: o.name,
		rt:   rt,
		log:  o.log.With().Str("bridge", o.name).Logger(),
	}
	if br, ok := rt.(api.BlockingRuntime); ok {
		b.native = br
	} else {
		b.fallback = o.fallback
		if b.fallback == nil {
			b.owned = concurrency.NewThreadPool(
				concurrency.ThreadPoolConfig{Name: o.name + "-fallback", LockOSThread: true},
				concurrency.WithLogger(o.log),
			)
			b.fallback = b.owned
		}
		b.offload = newBlockingSubmitter(b.fallback, o.submitTimeout, b.log)
	}
	return b
}

// Spawn hands task to the runtime. A refused task is dropped.
func (b *ReactorBridge) Spawn(task api.Task) {
	if task == nil {
		return
	}
	if !b.rt.Spawn(task) {
		b.counts.MarkDropped(1)
		b.log.Debug().Msg("runtime refused task, dropped")
		return
	}
	b.counts.MarkSpawned()
}

// SpawnBlocking hands task to the blocking facility, waiting under backpressure.
func (b *ReactorBridge) SpawnBlocking(task api.Task) {
	if task == nil {
		return
	}
	if b.native != nil {
		if !b.native.SpawnBlocking(task) {
			b.counts.MarkDropped(1)
			b.log.Debug().Msg("runtime refused blocking task, dropped")
			return
		}
		b.counts.MarkSpawned()
		return
	}
	if b.offload.submit(task) {
		b.counts.MarkSpawned()
	} else {
		b.counts.MarkDropped(1)
	}
}

// UsesNativeBlocking reports whether SpawnBlocking goes to the runtime itself.
func (b *ReactorBridge) UsesNativeBlocking() bool { return b.native != nil }

// Stats reports what the bridge accepted and dropped.
func (b *ReactorBridge) Stats() api.ExecutorStats {
	var s api.ExecutorStats
	b.counts.Fill(&s)
	return s
}

// Close releases submitters waiting on the fallback pool and closes the pool if the
// bridge owns it. The runtime itself belongs to the caller; with a native blocking
// runtime, waiting submitters are released only by closing that runtime.
func (b *ReactorBridge) Close(ctx context.Context) error {
	b.offload.close()
	if b.owned != nil {
		return b.owned.Close(ctx)
	}
	return nil
}

// blockingSubmitter applies the queue-and-wait policy on top of an api.BlockingPool.
type blockingSubmitter struct {
	pool    api.BlockingPool
	timeout time.Duration
	life    context.Context
	cancel  context.CancelFunc
	log     zerolog.Logger
}

func newBlockingSubmitter(pool api.BlockingPool, timeout time.Duration, log zerolog.Logger) blockingSubmitter {
	life, cancel := context.WithCancel(context.Background())
	return blockingSubmitter{pool: pool, timeout: timeout, life: life, cancel: cancel, log: log}
}

// submit reports whether the pool accepted task.
func (s blockingSubmitter) submit(task api.Task) bool {
	if s.pool == nil {
		return false
	}
	ctx := s.life
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	err := s.pool.Submit(ctx, task)
	switch {
	case err == nil:
		return true
	case errors.Is(err, context.DeadlineExceeded):
		s.log.Error().Err(err).Dur("timeout", s.timeout).Msg("blocking pool saturated, task dropped")
	default:
		s.log.Debug().Err(err).Msg("blocking pool refused task, dropped")
	}
	return false
}

func (s blockingSubmitter) close() {
	if s.cancel != nil {
		s.cancel()
	}
}
