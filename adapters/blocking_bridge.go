// File: adapters/blocking_bridge.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// BlockingBridge implements api.Executor around a managed thread pool. SpawnBlocking
// is a thin pass-through to the pool: the pool decides whether to reuse a worker,
// start one, or make the submitter wait. Spawn goes to a paired reactor runtime;
// without one, the bridge owns a GoRuntime for that purpose.

package adapters

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/internal/concurrency"
)

// Ensure compile-time interface compliance.
var _ api.Executor = (*BlockingBridge)(nil)

// BlockingBridge adapts an api.BlockingPool to api.Executor.
type BlockingBridge struct {
	name    string
	pool    api.BlockingPool
	reactor api.Runtime
	owned   *GoRuntime
	log     zerolog.Logger

	offload blockingSubmitter
	counts  concurrency.Counters
}

// NewBlockingBridge wraps pool. The pool's lifecycle stays with the caller.
func NewBlockingBridge(pool api.BlockingPool, opts ...Option) *BlockingBridge {
	o := buildOptions("blocking-bridge", opts)
	b := &BlockingBridge{
		name:    o.name,
		pool:    pool,
		reactor: o.reactor,
		log:     o.log.With().Str("bridge", o.name).Logger(),
	}
	if b.reactor == nil {
		b.owned = NewGoRuntime(WithName(o.name+"-reactor"), WithLogger(o.log))
		b.reactor = b.owned
	}
	b.offload = newBlockingSubmitter(pool, o.submitTimeout, b.log)
	return b
}

// Spawn hands a non-blocking task to the paired reactor.
func (b *BlockingBridge) Spawn(task api.Task) {
	if task == nil {
		return
	}
	if !b.reactor.Spawn(task) {
		b.counts.MarkDropped(1)
		b.log.Debug().Msg("paired reactor refused task, dropped")
		return
	}
	b.counts.MarkSpawned()
}

// SpawnBlocking submits task to the pool. It returns once a worker owns the task; while
// the pool is saturated it waits (queue-and-wait), bounded only by the submit timeout
// and by Close.
func (b *BlockingBridge) SpawnBlocking(task api.Task) {
	if task == nil {
		return
	}
	if b.offload.submit(task) {
		b.counts.MarkSpawned()
		return
	}
	b.counts.MarkDropped(1)
}

// Stats reports what the bridge accepted and dropped.
func (b *BlockingBridge) Stats() api.ExecutorStats {
	var s api.ExecutorStats
	b.counts.Fill(&s)
	return s
}

// Close releases waiting submitters and closes the owned reactor, if any.
func (b *BlockingBridge) Close(ctx context.Context) error {
	b.offload.close()
	if b.owned != nil {
		return b.owned.Close(ctx)
	}
	return nil
}
