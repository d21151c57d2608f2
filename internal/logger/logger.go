package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/coastalsim/longshore/internal/env"
)

// Options control how the logger is assembled.
type Options struct {
	Level     slog.Level
	LogToFile bool
	LogFile   string
}

// Option mutates Options.
type Option func(*Options)

// WithLevel sets the minimum level the logger emits.
func WithLevel(level slog.Level) Option {
	return func(o *Options) { o.Level = level }
}

// WithLogToFile enables mirroring log output to a rotated file.
func WithLogToFile(enabled bool) Option {
	return func(o *Options) { o.LogToFile = enabled }
}

// WithLogFile sets the path of the rotated log file.
func WithLogFile(path string) Option {
	return func(o *Options) { o.LogFile = path }
}

// New builds the daemon logger. Development gets a colorized console
// handler; production gets JSON. When file logging is enabled, output is
// mirrored to a size-rotated file as well.
func New(environment env.Environment, opts ...Option) *slog.Logger {
	options := Options{
		Level:   slog.LevelInfo,
		LogFile: "logs/longshored.log",
	}
	for _, opt := range opts {
		opt(&options)
	}

	out := io.Writer(os.Stderr)
	if options.LogToFile && options.LogFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   options.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = io.MultiWriter(os.Stderr, rotated)
	}

	var handler slog.Handler
	if environment == env.Production {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: options.Level})
	} else {
		handler = tint.NewHandler(out, &tint.Options{
			Level:      options.Level,
			TimeFormat: time.TimeOnly,
		})
	}

	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
