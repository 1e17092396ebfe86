// Package rbplog wraps log/slog with a colorized text handler and a
// process-wide default logger, carrying the register-bus client/CLI's
// own domain fields (client URI, protocol version, transaction/packet
// counters) through every log line.
package rbplog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Level is the logger's own level type, independent of slog.Level so
// callers configuring via string (CLI flag, config file) don't need
// to import log/slog.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures the process-wide logger (pkg/rbpconfig binds this
// to the `logging` section of the client's configuration file).
type Config struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text, json
	Output string `mapstructure:"output" yaml:"output"` // stdout, stderr, or file path
}

var (
	currentLevel  atomic.Int32
	currentFormat atomic.Value // "text" or "json"

	mu       sync.RWMutex
	logger   *slog.Logger
	output   io.Writer = os.Stdout
	useColor           = true
)

func init() {
	currentLevel.Store(int32(LevelInfo))
	currentFormat.Store("text")
	if f, ok := output.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}
	rebuild()
}

func rebuild() {
	mu.Lock()
	defer mu.Unlock()

	level := Level(currentLevel.Load())
	format, _ := currentFormat.Load().(string)

	levelVar := new(slog.LevelVar)
	levelVar.Set(level.slogLevel())
	opts := &slog.HandlerOptions{Level: levelVar}

	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(output, opts)
	} else {
		h = NewColorTextHandler(output, opts, useColor)
	}
	logger = slog.New(h)
}

// Init applies cfg to the process-wide logger. Output may be "stdout",
// "stderr", or a file path; an empty Output leaves the current
// destination untouched.
func Init(cfg Config) error {
	if cfg.Output != "" {
		mu.Lock()
		var newOutput io.Writer
		var newUseColor bool

		switch strings.ToLower(cfg.Output) {
		case "stdout":
			newOutput, newUseColor = os.Stdout, isTerminal(os.Stdout.Fd())
		case "stderr":
			newOutput, newUseColor = os.Stderr, isTerminal(os.Stderr.Fd())
		default:
			f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				mu.Unlock()
				return fmt.Errorf("rbplog: open log file %q: %w", cfg.Output, err)
			}
			newOutput, newUseColor = f, false
		}

		output = newOutput
		useColor = newUseColor
		mu.Unlock()
	}

	if cfg.Level != "" {
		SetLevel(cfg.Level)
	}
	if cfg.Format != "" {
		SetFormat(cfg.Format)
	}
	return nil
}

// SetLevel sets the minimum level by name, ignoring unrecognized
// values rather than erroring.
func SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		currentLevel.Store(int32(LevelDebug))
	case "INFO":
		currentLevel.Store(int32(LevelInfo))
	case "WARN":
		currentLevel.Store(int32(LevelWarn))
	case "ERROR":
		currentLevel.Store(int32(LevelError))
	default:
		return
	}
	rebuild()
}

// SetFormat sets the output format, "text" or "json".
func SetFormat(format string) {
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return
	}
	currentFormat.Store(format)
	rebuild()
}

func get() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	return l
}

// Debug logs at debug level with structured key/value fields.
func Debug(msg string, args ...any) { get().Debug(msg, args...) }

// Info logs at info level with structured key/value fields.
func Info(msg string, args ...any) { get().Info(msg, args...) }

// Warn logs at warn level with structured key/value fields.
func Warn(msg string, args ...any) { get().Warn(msg, args...) }

// Error logs at error level with structured key/value fields.
func Error(msg string, args ...any) { get().Error(msg, args...) }

// With returns a logger with the given attrs pre-bound, for a
// transaction or client session's lifetime.
func With(args ...any) *slog.Logger { return get().With(args...) }
