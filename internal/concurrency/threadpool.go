// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ThreadPool is a cached, bounded pool of OS threads for tasks that may block.
// Idle workers are reused first, a new worker is started when none is idle and
// the thread bound allows it, and otherwise the submitter waits for a worker to
// free up. Workers that stay idle for KeepAlive exit.

package concurrency

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/momentics/hioload-exec/api"
)

// Ensure compile-time interface compliance.
var _ api.BlockingPool = (*ThreadPool)(nil)

const (
	DefaultMaxThreads = 512
	DefaultKeepAlive  = 10 * time.Second
)

// ThreadPoolConfig bounds the pool.
type ThreadPoolConfig struct {
	Name         string
	MaxThreads   int           // upper bound on live workers; <= 0 means DefaultMaxThreads
	KeepAlive    time.Duration // idle time before a worker exits; <= 0 means DefaultKeepAlive
	LockOSThread bool          // dedicate an OS thread to each worker
}

// ThreadPool implements api.BlockingPool.
type ThreadPool struct {
	id        uuid.UUID
	name      string
	max       int
	keepAlive time.Duration
	lockOS    bool
	log       zerolog.Logger

	threads *semaphore.Weighted // one unit per live worker
	handoff chan api.Task       // unbuffered; only idle workers receive
	closeCh chan struct{}

	mu     sync.Mutex // orders worker start against Close
	closed bool
	wg     sync.WaitGroup

	live    atomic.Int64
	idle    atomic.Int64
	waiting atomic.Int64

	counters Counters
}

// NewThreadPool creates an empty pool; workers are started on demand.
func NewThreadPool(cfg ThreadPoolConfig, opts ...Option) *ThreadPool {
	o := buildOptions(opts)
	if cfg.MaxThreads <= 0 {
		cfg.MaxThreads = DefaultMaxThreads
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = DefaultKeepAlive
	}
	if cfg.Name == "" {
		cfg.Name = "blocking"
	}
	p := &ThreadPool{
		id:        uuid.New(),
		name:      cfg.Name,
		max:       cfg.MaxThreads,
		keepAlive: cfg.KeepAlive,
		lockOS:    cfg.LockOSThread,
		threads:   semaphore.NewWeighted(int64(cfg.MaxThreads)),
		handoff:   make(chan api.Task),
		closeCh:   make(chan struct{}),
	}
	p.log = o.log.With().Str("pool", cfg.Name).Str("id", p.id.String()).Logger()
	return p
}

// ID identifies this pool instance.
func (p *ThreadPool) ID() uuid.UUID { return p.id }

// MaxThreads returns the configured thread bound.
func (p *ThreadPool) MaxThreads() int { return p.max }

// Submit hands task to an idle worker, starts a new worker, or waits until one of
// the two becomes possible. It fails only when ctx is done or the pool is closed.
func (p *ThreadPool) Submit(ctx context.Context, task api.Task) error {
	if task == nil {
		return fmt.Errorf("threadpool %s: nil task: %w", p.name, api.ErrInvalidArgument)
	}

	select {
	case <-p.closeCh:
		p.counters.MarkDropped(1)
		return api.ErrPoolClosed
	case p.handoff <- task:
		p.counters.MarkSpawned()
		return nil
	default:
	}

	started, err := p.tryStartWorker(task)
	if err != nil {
		p.counters.MarkDropped(1)
		return err
	}
	if started {
		p.counters.MarkSpawned()
		return nil
	}

	// Saturated: queue-and-wait.
	p.waiting.Add(1)
	defer p.waiting.Add(-1)
	p.log.Debug().Int("max", p.max).Msg("pool saturated, submitter waiting")

	// A worker may exit on keep-alive while we wait, so retry growth periodically.
	retry := time.NewTicker(max(p.keepAlive/4, time.Millisecond))
	defer retry.Stop()
	for {
		select {
		case p.handoff <- task:
			p.counters.MarkSpawned()
			return nil
		case <-retry.C:
			started, err := p.tryStartWorker(task)
			if err != nil {
				p.counters.MarkDropped(1)
				return err
			}
			if started {
				p.counters.MarkSpawned()
				return nil
			}
		case <-ctx.Done():
			p.counters.MarkDropped(1)
			return fmt.Errorf("threadpool %s: %w", p.name, ctx.Err())
		case <-p.closeCh:
			p.counters.MarkDropped(1)
			return api.ErrPoolClosed
		}
	}
}

// tryStartWorker starts a worker owning first if the thread bound allows it.
func (p *ThreadPool) tryStartWorker(first api.Task) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false, api.ErrPoolClosed
	}
	if !p.threads.TryAcquire(1) {
		return false, nil
	}
	p.wg.Add(1)
	n := p.live.Add(1)
	p.log.Debug().Int64("live", n).Msg("worker started")
	go p.worker(first)
	return true, nil
}

func (p *ThreadPool) worker(first api.Task) {
	defer func() {
		n := p.live.Add(-1)
		p.threads.Release(1)
		p.wg.Done()
		p.log.Debug().Int64("live", n).Msg("worker exited")
	}()
	if p.lockOS {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	p.counters.Execute(p.log, first)

	idle := time.NewTimer(p.keepAlive)
	defer idle.Stop()
	for {
		p.idle.Add(1)
		select {
		case task := <-p.handoff:
			p.idle.Add(-1)
			p.counters.Execute(p.log, task)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(p.keepAlive)
		case <-idle.C:
			p.idle.Add(-1)
			return
		case <-p.closeCh:
			p.idle.Add(-1)
			return
		}
	}
}

// Stats reports counters and thread occupancy. Pending counts waiting submitters.
func (p *ThreadPool) Stats() api.ExecutorStats {
	var s api.ExecutorStats
	p.counters.Fill(&s)
	s.Live = int(p.live.Load())
	s.Idle = int(p.idle.Load())
	s.Pending = int(p.waiting.Load())
	return s
}

// Close stops accepting tasks, releases waiting submitters and idle workers, and waits
// for running tasks to finish or for ctx to expire. Repeated calls keep waiting.
func (p *ThreadPool) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.closeCh)
		p.log.Debug().Int64("live", p.live.Load()).Msg("thread pool closing")
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return api.WrapError(api.ErrCodeTimeout, api.ErrOperationTimeout, "thread pool close").
			WithContext("pool", p.name).
			WithContext("busy", p.live.Load()-p.idle.Load())
	}
}
