package adapters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-exec/adapters"
	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/control"
)

func TestControlAdapterBasic(t *testing.T) {
	metrics := control.NewMetricsRegistry()
	ctrl := adapters.NewControlAdapter(control.NewConfigStore(nil), metrics, control.NewDebugProbes())
	assert.Empty(t, ctrl.GetConfig())

	require.NoError(t, ctrl.SetConfig(map[string]any{"k": 1}))
	assert.Equal(t, 1, ctrl.GetConfig()["k"])

	called := false
	ctrl.OnReload(func() { called = true })
	require.NoError(t, ctrl.SetConfig(map[string]any{"x": 2}))
	assert.True(t, called, "reload hook runs before SetConfig returns")

	assert.ErrorIs(t, ctrl.SetConfig(map[string]any{control.KeyLogLevel: 3}), api.ErrInvalidArgument)
}

func TestControlAdapterStats(t *testing.T) {
	metrics := control.NewMetricsRegistry()
	ctrl := adapters.NewControlAdapter(control.NewConfigStore(nil), metrics, control.NewDebugProbes())

	rt := adapters.NewGoRuntime()
	metrics.Track("goroutine", rt)
	ctrl.SetMetric("build", "dev")
	ctrl.RegisterDebugProbe("probe", func() any { return 42 })

	stats := ctrl.Stats()
	assert.Equal(t, "dev", stats["build"])
	assert.Contains(t, stats, "goroutine.spawned")
	assert.Equal(t, 42, stats["debug.probe"])
	assert.Contains(t, stats, "debug.platform.cpus")
	assert.Equal(t, 42, ctrl.DumpState()["probe"])
}
