// File: facade/hioload.go
// Unified facade layer for hioload-exec.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// HioloadExec assembles a runtime, a blocking pool and the matching bridge from
// control.Config and exposes the resulting api.Executor together with control,
// metrics and debug services. Heartbeat drivers and readiness watchers created
// through the facade run on its executor and are stopped by Shutdown.

package facade

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/momentics/hioload-exec/adapters"
	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/control"
	"github.com/momentics/hioload-exec/heartbeat"
	"github.com/momentics/hioload-exec/internal/concurrency"
	"github.com/momentics/hioload-exec/reactor"
)

// Component names used in Stats, metrics labels and debug state.
const (
	ComponentRuntime  = "runtime"
	ComponentBlocking = "blocking"
	ComponentBridge   = "bridge"
)

// Option customizes New.
type Option func(*settings)

type settings struct {
	log    *zerolog.Logger
	levels *control.LevelSwitch
}

// WithLogger replaces the logger built from the config. Log level reloads then
// have no effect unless levels is non-nil.
func WithLogger(l zerolog.Logger, levels *control.LevelSwitch) Option {
	return func(s *settings) {
		s.log = &l
		s.levels = levels
	}
}

// HioloadExec is the main facade type.
// It implements api.GracefulShutdown to allow unified shutdown logic.
type HioloadExec struct {
	id     uuid.UUID
	cfg    control.Config
	log    zerolog.Logger
	levels *control.LevelSwitch

	executor api.Executor
	closers  []func(context.Context) error // bridge first, then runtime, then pool

	store     *control.ConfigStore
	metrics   *control.MetricsRegistry
	control   *adapters.ControlAdapter
	collector *control.StatsCollector

	mu       sync.Mutex
	drivers  []*heartbeat.Driver
	watchers []*reactor.Watcher
	closed   bool
	closeErr error
}

// Ensure compliance with api.GracefulShutdown.
var _ api.GracefulShutdown = (*HioloadExec)(nil)

// New validates cfg and builds the executor it describes.
func New(cfg control.Config, opts ...Option) (*HioloadExec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("facade config: %w", err)
	}
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	h := &HioloadExec{id: uuid.New(), cfg: cfg}
	if s.log != nil {
		h.log, h.levels = *s.log, s.levels
	} else {
		h.log, h.levels = control.NewLogger(cfg)
	}
	h.log = h.log.With().Str("executor", h.id.String()).Logger()

	h.store = control.NewConfigStore(cfg.Snapshot())
	h.metrics = control.NewMetricsRegistry()
	h.control = adapters.NewControlAdapter(h.store, h.metrics, control.NewDebugProbes())
	h.collector = control.NewStatsCollector(cfg.MetricsNamespace, h.metrics)

	h.assemble()

	if h.levels != nil {
		h.store.OnReload(func() { control.ApplyLogLevel(h.store, h.levels) })
	}
	h.control.RegisterProbe("executor.id", func() any { return h.id.String() })
	h.control.RegisterProbe("executor.config", func() any { return h.store.GetSnapshot() })
	h.control.RegisterProbe("executor.heartbeats", func() any {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.drivers)
	})

	h.log.Info().
		Str("runtime", cfg.Runtime).
		Str("blocking_pool", cfg.BlockingPool).
		Int("max_threads", cfg.MaxThreads).
		Msg("executor started")
	return h, nil
}

// assemble builds runtime, pool and bridge for the configured kinds.
func (h *HioloadExec) assemble() {
	cfg := h.cfg
	logOpt := concurrency.WithLogger(h.log)
	loopCfg := concurrency.EventLoopConfig{Loops: cfg.Loops, LockOSThread: cfg.LockOSThread, PinCPUs: cfg.PinCPUs}
	poolCfg := concurrency.ThreadPoolConfig{MaxThreads: cfg.MaxThreads, KeepAlive: cfg.KeepAlive, LockOSThread: true}
	bridgeOpts := []adapters.Option{adapters.WithLogger(h.log), adapters.WithSubmitTimeout(cfg.SubmitTimeout)}

	newPool := func() (api.BlockingPool, api.StatsProvider, func(context.Context) error) {
		if cfg.BlockingPool == control.PoolConc {
			p := adapters.NewConcPool(cfg.MaxThreads, adapters.WithLogger(h.log), adapters.WithLockOSThread(true))
			return p, p, p.Close
		}
		p := concurrency.NewThreadPool(poolCfg, logOpt)
		return p, p, p.Close
	}

	switch {
	case cfg.Runtime == control.RuntimeEventLoop && cfg.BlockingPool == control.PoolThreads:
		rt := concurrency.NewRuntime(loopCfg, poolCfg, logOpt, concurrency.WithSubmitTimeout(cfg.SubmitTimeout))
		bridge := adapters.NewReactorBridge(rt, bridgeOpts...)
		h.executor = bridge
		h.track(bridge, rt.Loop(), rt.Pool())
		h.closers = []func(context.Context) error{bridge.Close, rt.Close}

	case cfg.Runtime == control.RuntimeEventLoop:
		loop := concurrency.NewEventLoop(loopCfg, logOpt)
		pool, stats, closePool := newPool()
		bridge := adapters.NewReactorBridge(loop, append(bridgeOpts, adapters.WithFallbackPool(pool))...)
		h.executor = bridge
		h.track(bridge, loop, stats)
		h.closers = []func(context.Context) error{
			bridge.Close,
			func(ctx context.Context) error { _, err := loop.Close(ctx); return err },
			closePool,
		}

	default:
		rt := adapters.NewGoRuntime(adapters.WithLogger(h.log))
		pool, stats, closePool := newPool()
		bridge := adapters.NewBlockingBridge(pool, append(bridgeOpts, adapters.WithPairedReactor(rt))...)
		h.executor = bridge
		h.track(bridge, rt, stats)
		h.closers = []func(context.Context) error{bridge.Close, rt.Close, closePool}
	}
}

func (h *HioloadExec) track(bridge, runtime, blocking api.StatsProvider) {
	h.metrics.Track(ComponentBridge, bridge)
	h.metrics.Track(ComponentRuntime, runtime)
	h.metrics.Track(ComponentBlocking, blocking)
}

// Executor returns the api.Executor handed to the client library.
func (h *HioloadExec) Executor() api.Executor { return h.executor }

// Config returns the configuration the facade was built from.
func (h *HioloadExec) Config() control.Config { return h.cfg }

// Logger returns the facade logger.
func (h *HioloadExec) Logger() zerolog.Logger { return h.log }

// Control returns the Control interface for dynamic config and metrics.
func (h *HioloadExec) Control() api.Control { return h.control }

// Collector returns a Prometheus collector over all components; register it with
// any prometheus.Registerer.
func (h *HioloadExec) Collector() prometheus.Collector { return h.collector }

// Stats returns a snapshot per component.
func (h *HioloadExec) Stats() map[string]api.ExecutorStats {
	out := make(map[string]api.ExecutorStats, 3)
	for _, name := range h.metrics.Components() {
		if s, ok := h.metrics.StatsOf(name); ok {
			out[name] = s
		}
	}
	return out
}

// DumpState returns the output of every debug probe.
func (h *HioloadExec) DumpState() map[string]any { return h.control.DumpState() }

// OnReload registers fn to run after every Control().SetConfig.
func (h *HioloadExec) OnReload(fn func()) { h.control.OnReload(fn) }

// StartHeartbeat drives hb on the facade executor until it finishes or Shutdown.
func (h *HioloadExec) StartHeartbeat(hb heartbeat.Heartbeat) (*heartbeat.Driver, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, api.ErrRuntimeClosed
	}
	d := heartbeat.Start(h.executor, hb, heartbeat.WithLogger(h.log))
	h.drivers = append(h.drivers, d)
	return d, nil
}

// NewWatcher creates and starts a readiness watcher on the facade executor. The
// watcher loop occupies one blocking thread, so NewWatcher waits like SpawnBlocking
// while the blocking pool is saturated.
func (h *HioloadExec) NewWatcher() (*reactor.Watcher, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, api.ErrRuntimeClosed
	}
	w, err := reactor.NewWatcher(h.executor, reactor.WithLogger(h.log))
	if err != nil {
		h.mu.Unlock()
		return nil, err
	}
	h.watchers = append(h.watchers, w)
	h.mu.Unlock()

	// Start may wait on the pool; Shutdown must still be able to take h.mu.
	w.Start()
	return w, nil
}

// Shutdown implements api.GracefulShutdown. It stops heartbeats and watchers, then
// closes bridge, runtime and pool within ShutdownTimeout. Tasks submitted afterwards
// are dropped. Later calls return the first call's result.
func (h *HioloadExec) Shutdown() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return h.closeErr
	}
	h.closed = true
	drivers, watchers := h.drivers, h.watchers
	h.mu.Unlock()

	ctx := context.Background()
	if h.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.ShutdownTimeout)
		defer cancel()
	}

	var errs []error
	for _, d := range drivers {
		d.Stop()
	}
	for _, w := range watchers {
		errs = append(errs, w.Close(ctx))
	}
	for _, closeFn := range h.closers {
		errs = append(errs, closeFn(ctx))
	}
	err := errors.Join(errs...)

	ev := h.log.Info()
	if err != nil {
		ev = h.log.Error().Err(err)
	}
	ev.Interface("stats", h.Stats()).Msg("executor stopped")

	h.mu.Lock()
	h.closeErr = err
	h.mu.Unlock()
	return err
}
