// File: internal/concurrency/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"time"

	"github.com/rs/zerolog"
)

type options struct {
	log           zerolog.Logger
	submitTimeout time.Duration
}

// Option customises an EventLoop, ThreadPool or Runtime.
type Option func(*options)

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithSubmitTimeout bounds how long Runtime.SpawnBlocking waits on a saturated pool.
// Zero waits until Close. EventLoop and ThreadPool ignore it.
func WithSubmitTimeout(d time.Duration) Option {
	return func(o *options) { o.submitTimeout = d }
}

func buildOptions(opts []Option) options {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
