// File: adapters/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package adapters

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-exec/api"
)

type bridgeOptions struct {
	name          string
	log           zerolog.Logger
	fallback      api.BlockingPool
	reactor       api.Runtime
	submitTimeout time.Duration
	lockOSThread  bool
}

// Option configures bridges, GoRuntime and ConcPool.
type Option func(*bridgeOptions)

// WithName labels the component in logs and stats.
func WithName(name string) Option {
	return func(o *bridgeOptions) { o.name = name }
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *bridgeOptions) { o.log = l }
}

// WithFallbackPool sets the pool a ReactorBridge uses for SpawnBlocking when its
// runtime has no blocking facility.
func WithFallbackPool(p api.BlockingPool) Option {
	return func(o *bridgeOptions) { o.fallback = p }
}

// WithPairedReactor sets the runtime a BlockingBridge uses for Spawn.
func WithPairedReactor(rt api.Runtime) Option {
	return func(o *bridgeOptions) { o.reactor = rt }
}

// WithSubmitTimeout bounds how long SpawnBlocking waits on a saturated pool.
// Zero waits until the pool accepts the task or the bridge is closed. A ReactorBridge
// over an api.BlockingRuntime ignores it: the runtime applies its own policy.
func WithSubmitTimeout(d time.Duration) Option {
	return func(o *bridgeOptions) { o.submitTimeout = d }
}

// WithLockOSThread makes ConcPool run each task locked to its OS thread.
func WithLockOSThread(lock bool) Option {
	return func(o *bridgeOptions) { o.lockOSThread = lock }
}

func buildOptions(defaultName string, opts []Option) bridgeOptions {
	o := bridgeOptions{name: defaultName, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
