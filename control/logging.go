// control/logging.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Process logger with a level that can be changed after loggers have been
// handed out to runtimes and pools.

package control

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// LevelSwitch is a zerolog.LevelWriter that filters events below a mutable level.
type LevelSwitch struct {
	out   io.Writer
	level atomic.Int32
}

// NewLevelSwitch wraps out, letting through events at level and above.
func NewLevelSwitch(out io.Writer, level zerolog.Level) *LevelSwitch {
	ls := &LevelSwitch{out: out}
	ls.level.Store(int32(level))
	return ls
}

// Level returns the current threshold.
func (ls *LevelSwitch) Level() zerolog.Level { return zerolog.Level(ls.level.Load()) }

// SetLevel replaces the threshold.
func (ls *LevelSwitch) SetLevel(l zerolog.Level) { ls.level.Store(int32(l)) }

// Write passes p through unfiltered; zerolog calls WriteLevel for leveled events.
func (ls *LevelSwitch) Write(p []byte) (int, error) { return ls.out.Write(p) }

// WriteLevel drops events below the threshold.
func (ls *LevelSwitch) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < ls.Level() {
		return len(p), nil
	}
	return ls.out.Write(p)
}

// NewLogger builds the process logger from cfg, writing to stderr.
func NewLogger(cfg Config) (zerolog.Logger, *LevelSwitch) {
	return NewLoggerTo(os.Stderr, cfg)
}

// NewLoggerTo is NewLogger with an explicit sink.
func NewLoggerTo(w io.Writer, cfg Config) (zerolog.Logger, *LevelSwitch) {
	if cfg.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Stamp}
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	ls := NewLevelSwitch(w, level)
	return zerolog.New(ls).With().Timestamp().Logger(), ls
}

// ApplyLogLevel reloads the log level key of cs into ls. Unknown values are ignored.
func ApplyLogLevel(cs *ConfigStore, ls *LevelSwitch) {
	v, ok := cs.Get(KeyLogLevel)
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok {
		return
	}
	if level, err := zerolog.ParseLevel(s); err == nil {
		ls.SetLevel(level)
	}
}
