// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"
	"time"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/reactor"
)

// Ensure compile-time interface compliance.
var _ reactor.EventReactor = (*Reactor)(nil)

// Reactor is a reactor.EventReactor whose readiness events are injected by tests.
type Reactor struct {
	mu         sync.Mutex
	registered map[uintptr]reactor.Interest
	closed     bool
	events     chan reactor.Event
	wake       chan struct{}
}

// NewReactor returns an empty fake reactor.
func NewReactor() *Reactor {
	return &Reactor{
		registered: make(map[uintptr]reactor.Interest),
		events:     make(chan reactor.Event, 64),
		wake:       make(chan struct{}, 1),
	}
}

func (f *Reactor) Register(fd uintptr, interest reactor.Interest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return api.ErrRuntimeClosed
	}
	f.registered[fd] = interest
	return nil
}

func (f *Reactor) Deregister(fd uintptr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.registered[fd]; !ok {
		return api.ErrInvalidArgument
	}
	delete(f.registered, fd)
	return nil
}

// Inject queues a readiness event for the next Wait.
func (f *Reactor) Inject(fd uintptr, ready reactor.Interest) {
	f.events <- reactor.Event{Fd: fd, Ready: ready}
}

// Registered reports fd's interest, if registered.
func (f *Reactor) Registered(fd uintptr) (reactor.Interest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.registered[fd]
	return i, ok
}

func (f *Reactor) Wait(events []reactor.Event, timeout time.Duration) (int, error) {
	var expire <-chan time.Time
	if timeout >= 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expire = t.C
	}
	select {
	case ev := <-f.events:
		events[0] = ev
		n := 1
		for n < len(events) {
			select {
			case ev := <-f.events:
				events[n] = ev
				n++
				continue
			default:
			}
			break
		}
		return n, nil
	case <-f.wake:
		return 0, nil
	case <-expire:
		return 0, nil
	}
}

func (f *Reactor) Wake() error {
	select {
	case f.wake <- struct{}{}:
	default:
	}
	return nil
}

func (f *Reactor) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *Reactor) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
