// Package obslog owns the process-wide structured logger. Console output
// goes through zap's console encoder; an optional rotating JSON file core
// is teed in for the server and for TUI runs, where the terminal belongs
// to the interface and logs must go elsewhere.
package obslog

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	globalLogger atomic.Pointer[zap.Logger]
	once         sync.Once
)

// Config controls log destinations and verbosity.
type Config struct {
	// Level is a zap level name: debug, info, warn, error. Unknown values
	// fall back to info.
	Level string

	// File enables the rotating JSON file core when non-empty.
	File string

	// Quiet drops the console core. TUI runs set this so log lines never
	// tear the rendered screen; with no File either, logging is a no-op.
	Quiet bool

	// Rotation knobs for the file core. Zero values mean lumberjack
	// defaults (100 MB, no backup/age limit).
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Initialize builds and installs the global logger. The console writer is
// injectable so tests can capture output; later calls are no-ops.
func Initialize(cfg Config, console zapcore.WriteSyncer) {
	once.Do(func() {
		level := zap.NewAtomicLevel()
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level.SetLevel(zap.InfoLevel)
		}

		var cores []zapcore.Core
		if !cfg.Quiet {
			cores = append(cores, zapcore.NewCore(consoleEncoder(), console, level))
		}
		if cfg.File != "" {
			fileWriter := zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   cfg.Compress,
			})
			cores = append(cores, zapcore.NewCore(fileEncoder(), fileWriter, level))
		}
		if len(cores) == 0 {
			globalLogger.Store(zap.NewNop())
			return
		}

		logger := zap.New(
			zapcore.NewTee(cores...),
			zap.AddStacktrace(zap.ErrorLevel),
		).Named("lernpath")

		globalLogger.Store(logger)
		zap.ReplaceGlobals(logger)
		zap.RedirectStdLog(logger)
	})
}

// Setup is the production entry point: console output on locked stderr,
// leaving stdout for command output.
func Setup(cfg Config) {
	Initialize(cfg, zapcore.Lock(os.Stderr))
}

// GetLogger returns the installed global logger, or a no-op logger when
// Initialize has not run.
func GetLogger() *zap.Logger {
	if l := globalLogger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// Sync flushes buffered entries. Call before process exit; sync errors on
// terminal file descriptors are expected and swallowed.
func Sync() {
	l := globalLogger.Load()
	if l == nil {
		return
	}
	if err := l.Sync(); err != nil {
		msg := err.Error()
		if !strings.Contains(msg, "invalid argument") &&
			!strings.Contains(msg, "operation not supported") &&
			!strings.Contains(msg, "bad file descriptor") {
			fmt.Fprintln(os.Stderr, "log sync:", err)
		}
	}
}

// ResetForTest clears the global logger and re-arms Initialize. Tests only.
func ResetForTest() {
	globalLogger.Store(nil)
	once = sync.Once{}
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func fileEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}
