// Package adapters
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Control adapter implementing api.Control over the control package primitives.

package adapters

import (
	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/control"
)

// Ensure compile-time interface compliance.
var (
	_ api.Control = (*ControlAdapter)(nil)
	_ api.Debug   = (*ControlAdapter)(nil)
)

// ControlAdapter joins config, executor metrics and debug probes behind api.Control.
type ControlAdapter struct {
	config  *control.ConfigStore
	metrics *control.MetricsRegistry
	debug   *control.DebugProbes
}

// NewControlAdapter wires the given primitives. Platform probes are registered on debug.
func NewControlAdapter(config *control.ConfigStore, metrics *control.MetricsRegistry, debug *control.DebugProbes) *ControlAdapter {
	control.RegisterPlatformProbes(debug)
	return &ControlAdapter{config: config, metrics: metrics, debug: debug}
}

func (c *ControlAdapter) GetConfig() map[string]any {
	return c.config.GetSnapshot()
}

// SetConfig validates well-known keys, then merges cfg and runs reload listeners.
func (c *ControlAdapter) SetConfig(cfg map[string]any) error {
	if v, ok := cfg[control.KeyLogLevel]; ok {
		if _, isString := v.(string); !isString {
			return api.WrapError(api.ErrCodeInvalidArgument, api.ErrInvalidArgument, "log_level must be a string").
				WithContext("value", v)
		}
	}
	c.config.SetConfig(cfg)
	return nil
}

// Stats merges executor metrics with debug probe output under "debug.".
func (c *ControlAdapter) Stats() map[string]any {
	stats := c.metrics.GetSnapshot()
	debugStats := c.debug.DumpState()
	combined := make(map[string]any, len(stats)+len(debugStats))
	for k, v := range stats {
		combined[k] = v
	}
	for k, v := range debugStats {
		combined["debug."+k] = v
	}
	return combined
}

func (c *ControlAdapter) OnReload(fn func()) {
	c.config.OnReload(fn)
}

func (c *ControlAdapter) SetMetric(key string, value any) {
	c.metrics.Set(key, value)
}

func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}

// RegisterProbe implements api.Debug.
func (c *ControlAdapter) RegisterProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}

func (c *ControlAdapter) DumpState() map[string]any {
	return c.debug.DumpState()
}
