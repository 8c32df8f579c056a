// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime pairs an EventLoop with a ThreadPool, which gives it a native blocking
// facility in the same way multi-threaded async runtimes ship a blocking pool next
// to their reactor workers.

package concurrency

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-exec/api"
)

// Ensure compile-time interface compliance.
var _ api.BlockingRuntime = (*Runtime)(nil)

// Runtime is an api.BlockingRuntime.
type Runtime struct {
	loop *EventLoop
	pool *ThreadPool
	log  zerolog.Logger

	submitTimeout time.Duration

	// ctx bounds queue-and-wait in SpawnBlocking; cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRuntime starts the event loop and prepares the blocking pool.
func NewRuntime(loopCfg EventLoopConfig, poolCfg ThreadPoolConfig, opts ...Option) *Runtime {
	o := buildOptions(opts)
	ctx, cancel := context.WithCancel(context.Background())
	return &Runtime{
		loop:          NewEventLoop(loopCfg, opts...),
		pool:          NewThreadPool(poolCfg, opts...),
		log:           o.log,
		submitTimeout: o.submitTimeout,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Spawn enqueues a non-blocking task on the event loop.
func (r *Runtime) Spawn(task api.Task) bool {
	return r.loop.Spawn(task)
}

// SpawnBlocking hands task to the blocking pool, waiting while it is saturated.
func (r *Runtime) SpawnBlocking(task api.Task) bool {
	ctx := r.ctx
	if r.submitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.submitTimeout)
		defer cancel()
	}
	err := r.pool.Submit(ctx, task)
	if errors.Is(err, context.DeadlineExceeded) {
		r.log.Error().Err(err).Dur("timeout", r.submitTimeout).Msg("blocking pool saturated, task dropped")
	}
	return err == nil
}

// Loop exposes the reactor half for stats and tests.
func (r *Runtime) Loop() *EventLoop { return r.loop }

// Pool exposes the blocking half for stats and tests.
func (r *Runtime) Pool() *ThreadPool { return r.pool }

// Close shuts down both halves. Waiting SpawnBlocking callers are released first.
func (r *Runtime) Close(ctx context.Context) error {
	r.cancel()
	_, loopErr := r.loop.Close(ctx)
	poolErr := r.pool.Close(ctx)
	return errors.Join(loopErr, poolErr)
}
