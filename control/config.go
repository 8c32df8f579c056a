// control/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor configuration loaded from the environment, plus a thread-safe
// key/value store with hot-reload propagation.

package control

import (
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/momentics/hioload-exec/api"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "HIOLOAD_EXEC_"

// Runtime kinds.
const (
	RuntimeEventLoop = "eventloop"
	RuntimeGoroutine = "goroutine"
)

// Blocking pool kinds.
const (
	PoolThreads = "threadpool"
	PoolConc    = "conc"
)

// Config selects and sizes the runtime, the blocking pool and the ambient stack.
type Config struct {
	Runtime      string `env:"RUNTIME" envDefault:"eventloop"`
	Loops        int    `env:"LOOPS" envDefault:"0"` // 0 means one per CPU
	LockOSThread bool   `env:"LOCK_OS_THREAD" envDefault:"false"`
	PinCPUs      bool   `env:"PIN_CPUS" envDefault:"false"`

	BlockingPool  string        `env:"BLOCKING_POOL" envDefault:"threadpool"`
	MaxThreads    int           `env:"MAX_THREADS" envDefault:"512"`
	KeepAlive     time.Duration `env:"KEEP_ALIVE" envDefault:"10s"`
	SubmitTimeout time.Duration `env:"SUBMIT_TIMEOUT" envDefault:"0s"` // 0 waits until shutdown

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // json | console

	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	MetricsNamespace string        `env:"METRICS_NAMESPACE" envDefault:"hioload_exec"`
}

// DefaultConfig returns the configuration LoadConfig yields with an empty environment.
func DefaultConfig() Config {
	return Config{
		Runtime:          RuntimeEventLoop,
		BlockingPool:     PoolThreads,
		MaxThreads:       512,
		KeepAlive:        10 * time.Second,
		LogLevel:         "info",
		LogFormat:        "json",
		ShutdownTimeout:  5 * time.Second,
		MetricsNamespace: "hioload_exec",
	}
}

// LoadConfig parses HIOLOAD_EXEC_* variables on top of the defaults and validates the result.
func LoadConfig() (Config, error) {
	return loadConfig(env.Options{Prefix: EnvPrefix})
}

// LoadConfigFrom is LoadConfig over an explicit environment map.
func LoadConfigFrom(environment map[string]string) (Config, error) {
	return loadConfig(env.Options{Prefix: EnvPrefix, Environment: environment})
}

func loadConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, api.WrapError(api.ErrCodeInvalidArgument, err, "parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks kinds and bounds.
func (c Config) Validate() error {
	switch c.Runtime {
	case RuntimeEventLoop, RuntimeGoroutine:
	default:
		return fmt.Errorf("runtime %q: %w", c.Runtime, api.ErrInvalidArgument)
	}
	switch c.BlockingPool {
	case PoolThreads, PoolConc:
	default:
		return fmt.Errorf("blocking pool %q: %w", c.BlockingPool, api.ErrInvalidArgument)
	}
	if c.Loops < 0 {
		return fmt.Errorf("loops %d: %w", c.Loops, api.ErrInvalidArgument)
	}
	if c.MaxThreads <= 0 {
		return fmt.Errorf("max threads %d: %w", c.MaxThreads, api.ErrInvalidArgument)
	}
	if c.KeepAlive <= 0 {
		return fmt.Errorf("keep-alive %s: %w", c.KeepAlive, api.ErrInvalidArgument)
	}
	if c.SubmitTimeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("negative timeout: %w", api.ErrInvalidArgument)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level %q: %w", c.LogLevel, api.ErrInvalidArgument)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("log format %q: %w", c.LogFormat, api.ErrInvalidArgument)
	}
	return nil
}

// Snapshot flattens the reloadable fields for a ConfigStore.
func (c Config) Snapshot() map[string]any {
	return map[string]any{
		KeyLogLevel:      c.LogLevel,
		"runtime":        c.Runtime,
		"loops":          c.Loops,
		"blocking_pool":  c.BlockingPool,
		"max_threads":    c.MaxThreads,
		"keep_alive":     c.KeepAlive,
		"submit_timeout": c.SubmitTimeout,
	}
}

// KeyLogLevel is the only key with live effect after a reload.
const KeyLogLevel = "log_level"

// ConfigStore is a dynamic key/value map with atomic snapshot and listener support.
type ConfigStore struct {
	mu        sync.RWMutex
	config    map[string]any
	listeners []func()
}

// NewConfigStore initializes a store seeded with initial.
func NewConfigStore(initial map[string]any) *ConfigStore {
	cs := &ConfigStore{config: make(map[string]any, len(initial))}
	for k, v := range initial {
		cs.config[k] = v
	}
	return cs
}

// GetSnapshot returns a copy of all config values.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make(map[string]any, len(cs.config))
	for k, v := range cs.config {
		out[k] = v
	}
	return out
}

// Get returns one value.
func (cs *ConfigStore) Get(key string) (any, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	v, ok := cs.config[key]
	return v, ok
}

// SetConfig merges new values and runs reload listeners synchronously, outside the lock.
func (cs *ConfigStore) SetConfig(newCfg map[string]any) {
	cs.mu.Lock()
	for k, v := range newCfg {
		cs.config[k] = v
	}
	listeners := append([]func(){}, cs.listeners...)
	cs.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// OnReload registers a listener called after every SetConfig.
func (cs *ConfigStore) OnReload(fn func()) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}
