// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"

	"github.com/momentics/hioload-exec/api"
)

// Ensure compile-time interface compliance.
var _ api.Runtime = (*Runtime)(nil)

// Runtime queues spawned tasks until the test drains them with RunPending.
type Runtime struct {
	mu      sync.Mutex
	queue   []api.Task
	stopped bool
	refused int
}

// NewRuntime returns a live runtime with an empty queue.
func NewRuntime() *Runtime { return &Runtime{} }

// Spawn queues task, or refuses it after Shutdown.
func (r *Runtime) Spawn(task api.Task) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped || task == nil {
		r.refused++
		return false
	}
	r.queue = append(r.queue, task)
	return true
}

// RunPending runs queued tasks in FIFO order, including tasks they spawn, and
// returns how many ran.
func (r *Runtime) RunPending() int {
	ran := 0
	for {
		r.mu.Lock()
		if len(r.queue) == 0 {
			r.mu.Unlock()
			return ran
		}
		task := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		task()
		ran++
	}
}

// Pending returns the queue length.
func (r *Runtime) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// Refused returns how many Spawn calls returned false.
func (r *Runtime) Refused() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refused
}

// Shutdown discards queued tasks and refuses new ones. It returns the discarded count.
func (r *Runtime) Shutdown() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	n := len(r.queue)
	r.queue = nil
	return n
}
