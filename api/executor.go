// File: api/executor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor contract through which a protocol client delegates its concurrent work
// (socket readiness, response dispatch, application callbacks) to whichever runtime
// the embedding application configured.

package api

import "context"

//go:generate go tool mockgen -source=executor.go -destination=../internal/mocks/mock_executor.go -package=mocks

// Task is a one-shot, fire-and-forget unit of work.
type Task func()

// Executor is the capability handed to every protocol subcomponent that needs work done
// concurrently. Implementations are safe for concurrent use and never report errors:
// a task submitted to a runtime that is shutting down is dropped.
type Executor interface {
	// Spawn submits a non-blocking task. It returns immediately.
	// The task must not block; it may run on a thread shared with other reactor tasks.
	Spawn(task Task)

	// SpawnBlocking submits a task that is allowed to block its thread.
	// The task never runs on a thread that services Spawn work. The call may wait
	// while the blocking pool is saturated.
	SpawnBlocking(task Task)
}

// Runtime is the non-blocking spawn primitive of an embedding runtime.
type Runtime interface {
	// Spawn enqueues task without blocking. It reports false when the runtime no
	// longer accepts work; the task is then not run.
	Spawn(task Task) bool
}

// BlockingRuntime is a Runtime that ships its own blocking-task facility.
type BlockingRuntime interface {
	Runtime

	// SpawnBlocking enqueues a task allowed to block. Same return contract as Spawn,
	// except that it may wait while the runtime's blocking facility is saturated.
	SpawnBlocking(task Task) bool
}

// BlockingPool is a managed set of worker threads. Sizing, growth and idle reclamation
// belong to the pool.
type BlockingPool interface {
	// Submit hands task to a worker. While every worker is busy and the pool is at its
	// bound, Submit waits until a worker frees up, ctx is done, or the pool is closed.
	// A nil return means the task will run exactly once.
	Submit(ctx context.Context, task Task) error
}
