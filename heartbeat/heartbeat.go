// File: heartbeat/heartbeat.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package heartbeat drives a connection heartbeat on an api.Executor. Each tick is
// a short non-blocking task; the wait between ticks is a runtime timer, so no
// reactor thread ever sleeps.
package heartbeat

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-exec/api"
)

// Heartbeat is polled on every tick. PollTimeout performs any due work (such as
// sending a heartbeat frame) and returns the delay until the next tick, or false
// when the heartbeat is finished.
type Heartbeat interface {
	PollTimeout() (time.Duration, bool)
}

// Driver runs one Heartbeat until it finishes or Stop is called.
type Driver struct {
	exec api.Executor
	hb   Heartbeat
	log  zerolog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	ticks   uint64
	done    chan struct{}
}

// Option customizes a Driver.
type Option func(*Driver)

// WithLogger sets the driver logger.
func WithLogger(l zerolog.Logger) Option { return func(d *Driver) { d.log = l } }

// Start spawns the first tick of hb on exec and returns its driver.
func Start(exec api.Executor, hb Heartbeat, opts ...Option) *Driver {
	d := &Driver{exec: exec, hb: hb, log: zerolog.Nop(), done: make(chan struct{})}
	for _, opt := range opts {
		opt(d)
	}
	exec.Spawn(d.tick)
	return d
}

func (d *Driver) tick() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.ticks++
	d.mu.Unlock()

	next, ok := d.hb.PollTimeout()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if !ok {
		d.finish()
		d.log.Debug().Uint64("ticks", d.ticks).Msg("heartbeat finished")
		return
	}
	d.timer = time.AfterFunc(next, func() { d.exec.Spawn(d.tick) })
}

// finish must be called with mu held.
func (d *Driver) finish() {
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.done)
}

// Stop cancels the pending tick. A tick already running completes but does not re-arm.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.stopped {
		d.finish()
	}
}

// Done is closed once the driver has stopped for any reason.
func (d *Driver) Done() <-chan struct{} { return d.done }

// Ticks returns how many ticks have run.
func (d *Driver) Ticks() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ticks
}
