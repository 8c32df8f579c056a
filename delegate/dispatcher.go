// File: delegate/dispatcher.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package delegate routes consumer deliveries either to a buffer drained by the
// application or, once a delegate is set, to that delegate as executor tasks.
// Each delivery, cancellation, error and prefetch drop becomes one task, so
// deliveries may be handled in parallel and in any order.
package delegate

import (
	"context"
	"sync"

	"github.com/eapache/queue"
	"github.com/rs/zerolog"

	"github.com/momentics/hioload-exec/api"
)

// Result is one notification for a consumer: a delivery, a cancellation
// (Canceled set, no item) or an error.
type Result[T any] struct {
	Item     T
	Canceled bool
	Err      error
}

// Delegate receives notifications once set on a Dispatcher.
type Delegate[T any] interface {
	OnNewDelivery(r Result[T])
	DropPrefetched()
}

// Mode selects how delegate calls are submitted.
type Mode int

const (
	// Async delegates are short and non-blocking; they run through Spawn.
	Async Mode = iota
	// Sync delegates may block (application callbacks); they run through SpawnBlocking.
	Sync
)

func (m Mode) String() string {
	if m == Sync {
		return "sync"
	}
	return "async"
}

// Dispatcher is safe for concurrent use.
type Dispatcher[T any] struct {
	tag  string
	exec api.Executor
	log  zerolog.Logger

	mu       sync.Mutex
	buffer   *queue.Queue // of Result[T]; used while no delegate is set
	delegate Delegate[T]
	mode     Mode
	notify   chan struct{}
}

// Option customizes a Dispatcher.
type Option func(*options)

type options struct{ log zerolog.Logger }

// WithLogger sets the dispatcher logger.
func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.log = l } }

// NewDispatcher creates a dispatcher for the consumer identified by tag.
func NewDispatcher[T any](tag string, exec api.Executor, opts ...Option) *Dispatcher[T] {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Dispatcher[T]{
		tag:    tag,
		exec:   exec,
		log:    o.log.With().Str("consumer", tag).Logger(),
		buffer: queue.New(),
		notify: make(chan struct{}, 1),
	}
}

// Tag returns the consumer tag.
func (d *Dispatcher[T]) Tag() string { return d.tag }

// Push records a completed delivery.
func (d *Dispatcher[T]) Push(item T) {
	d.log.Trace().Msg("new delivery")
	d.route(Result[T]{Item: item})
}

// Cancel records the end of the consumer.
func (d *Dispatcher[T]) Cancel() {
	d.log.Trace().Msg("cancel")
	d.route(Result[T]{Canceled: true})
}

// Fail records err and then cancels the consumer.
func (d *Dispatcher[T]) Fail(err error) {
	d.log.Trace().Err(err).Msg("set error")
	d.route(Result[T]{Err: err})
	d.Cancel()
}

// DropPrefetched discards buffered results and tells the delegate, if any, to drop
// what it prefetched.
func (d *Dispatcher[T]) DropPrefetched() {
	d.mu.Lock()
	dropped := d.buffer.Length()
	d.buffer = queue.New()
	del, mode := d.delegate, d.mode
	d.mu.Unlock()

	d.log.Trace().Int("dropped", dropped).Msg("drop prefetched messages")
	if del != nil {
		d.submit(mode, del.DropPrefetched)
	}
}

// SetDelegate installs del. Buffered results are submitted to it first; later
// results bypass the buffer.
func (d *Dispatcher[T]) SetDelegate(del Delegate[T], mode Mode) {
	d.mu.Lock()
	pending := make([]Result[T], 0, d.buffer.Length())
	for d.buffer.Length() > 0 {
		pending = append(pending, d.buffer.Remove().(Result[T]))
	}
	d.delegate = del
	d.mode = mode
	d.mu.Unlock()

	d.log.Debug().Stringer("mode", mode).Int("buffered", len(pending)).Msg("delegate set")
	for _, r := range pending {
		d.submit(mode, func() { del.OnNewDelivery(r) })
	}
}

// HasDelegate reports whether SetDelegate has been called.
func (d *Dispatcher[T]) HasDelegate() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delegate != nil
}

// Buffered returns the number of results waiting for Next.
func (d *Dispatcher[T]) Buffered() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buffer.Length()
}

// TryNext pops a buffered result without waiting.
func (d *Dispatcher[T]) TryNext() (Result[T], bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.buffer.Length() == 0 {
		return Result[T]{}, false
	}
	return d.buffer.Remove().(Result[T]), true
}

// Next waits for a buffered result or for ctx to be done.
func (d *Dispatcher[T]) Next(ctx context.Context) (Result[T], error) {
	for {
		if r, ok := d.TryNext(); ok {
			if d.Buffered() > 0 {
				d.signal()
			}
			return r, nil
		}
		select {
		case <-d.notify:
		case <-ctx.Done():
			return Result[T]{}, ctx.Err()
		}
	}
}

func (d *Dispatcher[T]) route(r Result[T]) {
	d.mu.Lock()
	del, mode := d.delegate, d.mode
	if del == nil {
		d.buffer.Add(r)
		d.mu.Unlock()
		d.signal()
		return
	}
	d.mu.Unlock()
	d.submit(mode, func() { del.OnNewDelivery(r) })
}

func (d *Dispatcher[T]) signal() {
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

func (d *Dispatcher[T]) submit(mode Mode, task api.Task) {
	if mode == Sync {
		d.exec.SpawnBlocking(task)
		return
	}
	d.exec.Spawn(task)
}
