// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides socket readiness notification on top of an api.Executor:
// an epoll-backed EventReactor (Linux) and a Watcher that runs the wait loop as a
// blocking task and dispatches every readiness event as a non-blocking task.
package reactor
