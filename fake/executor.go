// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake executors and runtimes for testing.
// Provides predictable, controllable behavior for the executor contracts.

package fake

import (
	"sync"

	"github.com/momentics/hioload-exec/api"
)

// Ensure compile-time interface compliance.
var _ api.Executor = (*InlineExecutor)(nil)

// InlineExecutor runs every task synchronously on the caller's goroutine and
// counts what it was given. After Shutdown it drops everything.
type InlineExecutor struct {
	mu       sync.Mutex
	spawned  int
	blocking int
	dropped  int
	closed   bool
}

// NewInlineExecutor returns a live executor.
func NewInlineExecutor() *InlineExecutor { return &InlineExecutor{} }

func (e *InlineExecutor) Spawn(task api.Task) {
	if e.admit(task, &e.spawned) {
		task()
	}
}

func (e *InlineExecutor) SpawnBlocking(task api.Task) {
	if e.admit(task, &e.blocking) {
		task()
	}
}

func (e *InlineExecutor) admit(task api.Task, counter *int) bool {
	if task == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		e.dropped++
		return false
	}
	*counter++
	return true
}

// Shutdown makes every later submission a drop.
func (e *InlineExecutor) Shutdown() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

// Counts returns spawned, spawned-blocking and dropped totals.
func (e *InlineExecutor) Counts() (spawned, blocking, dropped int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spawned, e.blocking, e.dropped
}
