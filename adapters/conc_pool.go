// File: adapters/conc_pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ConcPool exposes a sourcegraph/conc goroutine pool as an api.BlockingPool. conc owns
// worker reuse and the goroutine limit; the semaphore in front of it only lets
// submitters wait with a context instead of blocking inside Pool.Go.

package adapters

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/semaphore"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/internal/concurrency"
)

// Ensure compile-time interface compliance.
var _ api.BlockingPool = (*ConcPool)(nil)

// ConcPool is a bounded blocking pool backed by conc.
type ConcPool struct {
	name   string
	max    int
	lockOS bool
	log    zerolog.Logger

	workers *pool.Pool
	slots   *semaphore.Weighted

	mu     sync.RWMutex
	closed bool
	life   context.Context
	cancel context.CancelFunc

	running atomic.Int64
	waiting atomic.Int64
	counts  concurrency.Counters
}

// NewConcPool creates a pool running at most maxGoroutines tasks at once.
// maxGoroutines <= 0 selects concurrency.DefaultMaxThreads.
func NewConcPool(maxGoroutines int, opts ...Option) *ConcPool {
	o := buildOptions("conc-pool", opts)
	if maxGoroutines <= 0 {
		maxGoroutines = concurrency.DefaultMaxThreads
	}
	life, cancel := context.WithCancel(context.Background())
	return &ConcPool{
		name:    o.name,
		max:     maxGoroutines,
		lockOS:  o.lockOSThread,
		log:     o.log.With().Str("pool", o.name).Logger(),
		workers: pool.New().WithMaxGoroutines(maxGoroutines),
		slots:   semaphore.NewWeighted(int64(maxGoroutines)),
		life:    life,
		cancel:  cancel,
	}
}

// Submit waits for a free slot, then hands task to conc.
func (c *ConcPool) Submit(ctx context.Context, task api.Task) error {
	if task == nil {
		return fmt.Errorf("conc pool %s: nil task: %w", c.name, api.ErrInvalidArgument)
	}
	if c.life.Err() != nil {
		c.counts.MarkDropped(1)
		return api.ErrPoolClosed
	}

	if !c.slots.TryAcquire(1) {
		c.waiting.Add(1)
		waitCtx, cancel := context.WithCancel(ctx)
		stop := context.AfterFunc(c.life, cancel)
		err := c.slots.Acquire(waitCtx, 1)
		stop()
		cancel()
		c.waiting.Add(-1)
		if err != nil {
			c.counts.MarkDropped(1)
			if c.life.Err() != nil {
				return api.ErrPoolClosed
			}
			return fmt.Errorf("conc pool %s: %w", c.name, ctx.Err())
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		c.slots.Release(1)
		c.counts.MarkDropped(1)
		return api.ErrPoolClosed
	}
	c.counts.MarkSpawned()
	c.workers.Go(func() {
		defer c.slots.Release(1)
		c.running.Add(1)
		defer c.running.Add(-1)
		if c.lockOS {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
		}
		c.counts.Execute(c.log, task)
	})
	return nil
}

// Stats reports counters; Live is the number of tasks running right now.
func (c *ConcPool) Stats() api.ExecutorStats {
	var s api.ExecutorStats
	c.counts.Fill(&s)
	s.Live = int(c.running.Load())
	s.Pending = int(c.waiting.Load())
	return s
}

// Close refuses new work, releases waiting submitters and waits for running tasks.
// Repeated calls keep waiting.
func (c *ConcPool) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.cancel()
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return api.WrapError(api.ErrCodeTimeout, api.ErrOperationTimeout, "conc pool close").
			WithContext("pool", c.name)
	}
}
