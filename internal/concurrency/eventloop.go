// File: internal/concurrency/eventloop.go
// Package concurrency implements the reactor-style event loop runtime.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// EventLoop time-shares a small, fixed number of loop goroutines between all
// spawned tasks. Tasks are expected never to block: a task that needs to wait
// re-arms itself (timer, readiness callback) and returns. Submission never blocks
// because the run queue is unbounded.

package concurrency

import (
	"context"
	"runtime"
	"sync"

	"github.com/eapache/queue"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/momentics/hioload-exec/affinity"
	"github.com/momentics/hioload-exec/api"
)

// Ensure compile-time interface compliance.
var _ api.Runtime = (*EventLoop)(nil)

// EventLoopConfig sizes and places the loop threads.
type EventLoopConfig struct {
	Name         string // used in logs and debug state
	Loops        int    // loop goroutines; <= 0 means runtime.NumCPU()
	LockOSThread bool   // dedicate an OS thread to each loop
	PinCPUs      bool   // pin loop i to CPU i mod NumCPU; implies LockOSThread
}

// EventLoop is a multi-threaded reactor runtime with a shared FIFO run queue.
type EventLoop struct {
	id    uuid.UUID
	name  string
	loops int
	log   zerolog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	runq   *queue.Queue // of api.Task; guarded by mu
	closed bool
	idle   int // loops parked in cond.Wait; guarded by mu
	wg     sync.WaitGroup

	counters Counters
}

// NewEventLoop starts the loop goroutines and returns a live runtime.
func NewEventLoop(cfg EventLoopConfig, opts ...Option) *EventLoop {
	o := buildOptions(opts)
	if cfg.Loops <= 0 {
		cfg.Loops = runtime.NumCPU()
	}
	if cfg.Name == "" {
		cfg.Name = "eventloop"
	}
	el := &EventLoop{
		id:    uuid.New(),
		name:  cfg.Name,
		loops: cfg.Loops,
		runq:  queue.New(),
	}
	el.log = o.log.With().Str("runtime", cfg.Name).Str("id", el.id.String()).Logger()
	el.cond = sync.NewCond(&el.mu)

	el.wg.Add(cfg.Loops)
	for i := 0; i < cfg.Loops; i++ {
		go el.run(i, cfg.LockOSThread || cfg.PinCPUs, cfg.PinCPUs)
	}
	el.log.Debug().Int("loops", cfg.Loops).Bool("pinned", cfg.PinCPUs).Msg("event loop started")
	return el
}

// ID identifies this runtime instance.
func (el *EventLoop) ID() uuid.UUID { return el.id }

// Spawn enqueues task. It returns false once Close has been called.
func (el *EventLoop) Spawn(task api.Task) bool {
	if task == nil {
		return false
	}
	el.mu.Lock()
	if el.closed {
		el.mu.Unlock()
		el.counters.MarkDropped(1)
		return false
	}
	el.runq.Add(task)
	el.counters.MarkSpawned()
	el.mu.Unlock()
	el.cond.Signal()
	return true
}

// Pending returns the number of queued, not yet started tasks.
func (el *EventLoop) Pending() int {
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.runq.Length()
}

// Stats reports counters and loop occupancy.
func (el *EventLoop) Stats() api.ExecutorStats {
	var s api.ExecutorStats
	el.counters.Fill(&s)
	el.mu.Lock()
	s.Pending = el.runq.Length()
	s.Idle = el.idle
	if !el.closed {
		s.Live = el.loops
	}
	el.mu.Unlock()
	return s
}

// Close refuses further work, discards queued tasks that have not started and waits
// for running tasks to return or for ctx to expire. It returns the number of discarded
// tasks; repeated calls discard nothing and keep waiting. Calling Close from inside a
// loop task returns only when ctx is done.
func (el *EventLoop) Close(ctx context.Context) (int, error) {
	discarded := 0
	el.mu.Lock()
	first := !el.closed
	if first {
		el.closed = true
		discarded = el.runq.Length()
		el.runq = queue.New()
	}
	el.mu.Unlock()
	if first {
		el.cond.Broadcast()
		el.counters.MarkDropped(discarded)
		el.log.Debug().Int("discarded", discarded).Msg("event loop closing")
	}

	done := make(chan struct{})
	go func() {
		el.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return discarded, nil
	case <-ctx.Done():
		return discarded, api.WrapError(api.ErrCodeTimeout, api.ErrOperationTimeout, "event loop close").
			WithContext("runtime", el.name)
	}
}

func (el *EventLoop) run(index int, lockThread, pin bool) {
	defer el.wg.Done()
	if lockThread {
		runtime.LockOSThread()
		// A pinned thread stays locked so it is destroyed with the goroutine
		// instead of returning to the scheduler with a narrowed CPU mask.
		if !pin {
			defer runtime.UnlockOSThread()
		}
	}
	if pin {
		cpu := affinity.CPUFor(index)
		if err := affinity.SetAffinity(cpu); err != nil {
			el.log.Warn().Err(err).Int("loop", index).Msg("cpu pinning unavailable")
		}
	}
	for {
		task, ok := el.next()
		if !ok {
			return
		}
		el.counters.Execute(el.log, task)
	}
}

// next parks the loop until a task is available or the loop is closed.
func (el *EventLoop) next() (api.Task, bool) {
	el.mu.Lock()
	defer el.mu.Unlock()
	for el.runq.Length() == 0 && !el.closed {
		el.idle++
		el.cond.Wait()
		el.idle--
	}
	if el.closed {
		return nil, false
	}
	return el.runq.Remove().(api.Task), true
}
