package control_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/control"
)

func TestLoadConfig_DefaultsMatchDefaultConfig(t *testing.T) {
	cfg, err := control.LoadConfigFrom(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, control.DefaultConfig(), cfg)
	assert.NoError(t, control.DefaultConfig().Validate())
}

func TestLoadConfig_ReadsPrefixedEnvironment(t *testing.T) {
	cfg, err := control.LoadConfigFrom(map[string]string{
		"HIOLOAD_EXEC_RUNTIME":        "goroutine",
		"HIOLOAD_EXEC_BLOCKING_POOL":  "conc",
		"HIOLOAD_EXEC_MAX_THREADS":    "16",
		"HIOLOAD_EXEC_KEEP_ALIVE":     "250ms",
		"HIOLOAD_EXEC_SUBMIT_TIMEOUT": "2s",
		"HIOLOAD_EXEC_LOG_LEVEL":      "debug",
		"MAX_THREADS":                 "99", // unprefixed, ignored
	})
	require.NoError(t, err)
	assert.Equal(t, control.RuntimeGoroutine, cfg.Runtime)
	assert.Equal(t, control.PoolConc, cfg.BlockingPool)
	assert.Equal(t, 16, cfg.MaxThreads)
	assert.Equal(t, 250*time.Millisecond, cfg.KeepAlive)
	assert.Equal(t, 2*time.Second, cfg.SubmitTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_RejectsMalformedValues(t *testing.T) {
	_, err := control.LoadConfigFrom(map[string]string{"HIOLOAD_EXEC_MAX_THREADS": "many"})
	require.Error(t, err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, api.ErrCodeInvalidArgument, apiErr.Code)
}

func TestConfig_Validate(t *testing.T) {
	cases := map[string]func(*control.Config){
		"unknown runtime":  func(c *control.Config) { c.Runtime = "tokio" },
		"unknown pool":     func(c *control.Config) { c.BlockingPool = "forkjoin" },
		"negative loops":   func(c *control.Config) { c.Loops = -1 },
		"zero threads":     func(c *control.Config) { c.MaxThreads = 0 },
		"zero keep-alive":  func(c *control.Config) { c.KeepAlive = 0 },
		"negative timeout": func(c *control.Config) { c.SubmitTimeout = -time.Second },
		"bad level":        func(c *control.Config) { c.LogLevel = "loud" },
		"bad format":       func(c *control.Config) { c.LogFormat = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := control.DefaultConfig()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), api.ErrInvalidArgument)
		})
	}
}

func TestConfigStore_ReloadListeners(t *testing.T) {
	cs := control.NewConfigStore(control.DefaultConfig().Snapshot())
	v, ok := cs.Get(control.KeyLogLevel)
	require.True(t, ok)
	assert.Equal(t, "info", v)

	calls := 0
	cs.OnReload(func() {
		calls++
		got, _ := cs.Get(control.KeyLogLevel)
		assert.Equal(t, "warn", got)
	})
	cs.SetConfig(map[string]any{control.KeyLogLevel: "warn"})
	assert.Equal(t, 1, calls)

	snap := cs.GetSnapshot()
	snap[control.KeyLogLevel] = "mutated"
	got, _ := cs.Get(control.KeyLogLevel)
	assert.Equal(t, "warn", got, "snapshot must be a copy")
}
