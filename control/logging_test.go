package control_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-exec/control"
)

func TestNewLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := control.DefaultConfig()
	cfg.LogLevel = "warn"
	log, ls := control.NewLoggerTo(&buf, cfg)

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Equal(t, zerolog.WarnLevel, ls.Level())
}

func TestApplyLogLevel_ChangesHandedOutLoggers(t *testing.T) {
	var buf bytes.Buffer
	log, ls := control.NewLoggerTo(&buf, control.DefaultConfig())
	child := log.With().Str("runtime", "eventloop").Logger()

	cs := control.NewConfigStore(control.DefaultConfig().Snapshot())
	cs.OnReload(func() { control.ApplyLogLevel(cs, ls) })

	child.Debug().Msg("before")
	cs.SetConfig(map[string]any{control.KeyLogLevel: "debug"})
	child.Debug().Msg("after")

	assert.NotContains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "after")

	cs.SetConfig(map[string]any{control.KeyLogLevel: "nonsense"})
	assert.Equal(t, zerolog.DebugLevel, ls.Level())
}
