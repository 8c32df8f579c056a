// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime primitives behind the executor bridges: a reactor-style EventLoop that
// multiplexes non-blocking tasks over a few loop threads, a cached bounded ThreadPool
// for tasks that may block, and Runtime, which pairs the two so that it offers a
// native blocking facility. Every primitive recovers panicking tasks, counts what
// it accepted and dropped, and refuses work after Close without blocking the caller.
package concurrency
