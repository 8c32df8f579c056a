// File: reactor/watcher.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Watcher turns an EventReactor into executor tasks. The wait loop occupies one
// blocking thread for the watcher's lifetime; readiness callbacks are short and
// run as non-blocking tasks.

package reactor

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-exec/api"
)

// DefaultBatch is the number of events fetched per Wait.
const DefaultBatch = 128

// SlotID identifies a registered socket for its whole registration.
type SlotID uint64

// SocketHandler receives readiness notifications for one slot.
type SocketHandler interface {
	OnReady(slot SlotID, ready Interest)
}

// HandlerFunc adapts a function to SocketHandler.
type HandlerFunc func(slot SlotID, ready Interest)

// OnReady calls f.
func (f HandlerFunc) OnReady(slot SlotID, ready Interest) { f(slot, ready) }

type registration struct {
	id      SlotID
	fd      uintptr
	handler SocketHandler
}

// Watcher owns an EventReactor and a slot table.
type Watcher struct {
	exec    api.Executor
	reactor EventReactor
	log     zerolog.Logger
	batch   int

	mu      sync.Mutex
	nextID  SlotID
	slots   map[SlotID]*registration
	byFD    map[uintptr]*registration
	started bool
	running bool
	closed  bool
	done    chan struct{}
}

// WatcherOption customizes a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets the watcher logger.
func WithLogger(l zerolog.Logger) WatcherOption { return func(w *Watcher) { w.log = l } }

// WithBatch sets how many events a single Wait may return.
func WithBatch(n int) WatcherOption {
	return func(w *Watcher) {
		if n > 0 {
			w.batch = n
		}
	}
}

// NewWatcher creates a watcher over a fresh platform reactor.
func NewWatcher(exec api.Executor, opts ...WatcherOption) (*Watcher, error) {
	r, err := NewReactor()
	if err != nil {
		return nil, err
	}
	return NewWatcherWith(exec, r, opts...), nil
}

// NewWatcherWith creates a watcher over r, taking ownership of it.
func NewWatcherWith(exec api.Executor, r EventReactor, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		exec:    exec,
		reactor: r,
		log:     zerolog.Nop(),
		batch:   DefaultBatch,
		nextID:  1,
		slots:   make(map[SlotID]*registration),
		byFD:    make(map[uintptr]*registration),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Register watches fd and returns its slot. h is called through Spawn for every
// readiness edge until Deregister.
func (w *Watcher) Register(fd uintptr, interest Interest, h SocketHandler) (SlotID, error) {
	if h == nil {
		return 0, fmt.Errorf("register fd %d: nil handler: %w", fd, api.ErrInvalidArgument)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, api.ErrRuntimeClosed
	}
	if _, dup := w.byFD[fd]; dup {
		return 0, fmt.Errorf("register fd %d: already registered: %w", fd, api.ErrInvalidArgument)
	}
	if err := w.reactor.Register(fd, interest); err != nil {
		return 0, err
	}
	reg := &registration{id: w.nextID, fd: fd, handler: h}
	w.nextID++
	w.slots[reg.id] = reg
	w.byFD[fd] = reg
	w.log.Debug().Uint64("slot", uint64(reg.id)).Uint64("fd", uint64(fd)).Stringer("interest", interest).Msg("socket registered")
	return reg.id, nil
}

// Deregister stops watching a slot. Events already dispatched may still arrive.
func (w *Watcher) Deregister(slot SlotID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	reg, ok := w.slots[slot]
	if !ok {
		return fmt.Errorf("deregister slot %d: %w", slot, api.ErrInvalidArgument)
	}
	delete(w.slots, slot)
	delete(w.byFD, reg.fd)
	if w.closed {
		return nil
	}
	return w.reactor.Deregister(reg.fd)
}

// Len returns the number of registered slots.
func (w *Watcher) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.slots)
}

// Start submits the wait loop as a blocking task. Calling it twice is a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started || w.closed {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()
	w.exec.SpawnBlocking(w.loop)
}

func (w *Watcher) loop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()
	defer close(w.done)

	w.log.Debug().Msg("watcher loop started")
	events := make([]Event, w.batch)
	for {
		n, err := w.reactor.Wait(events, -1)

		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			w.log.Debug().Msg("watcher loop stopped")
			return
		}
		type dispatch struct {
			reg   *registration
			ready Interest
		}
		batch := make([]dispatch, 0, n)
		for _, ev := range events[:n] {
			if reg, ok := w.byFD[ev.Fd]; ok {
				batch = append(batch, dispatch{reg, ev.Ready})
			}
		}
		w.mu.Unlock()

		if err != nil {
			w.log.Error().Err(err).Msg("reactor wait failed, watcher loop stopped")
			return
		}
		for _, d := range batch {
			h, id, ready := d.reg.handler, d.reg.id, d.ready
			w.exec.Spawn(func() { h.OnReady(id, ready) })
		}
	}
}

// Close stops the wait loop, waits for it to exit or ctx to expire, and closes the
// reactor. Registered descriptors stay open; they belong to the caller.
func (w *Watcher) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	running := w.running
	w.mu.Unlock()

	if running {
		if err := w.reactor.Wake(); err != nil {
			return err
		}
		select {
		case <-w.done:
		case <-ctx.Done():
			return api.WrapError(api.ErrCodeTimeout, api.ErrOperationTimeout, "watcher close")
		}
	}
	return w.reactor.Close()
}
