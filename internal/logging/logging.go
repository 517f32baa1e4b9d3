// Package logging builds the zap loggers used across the tool.
package logging

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects where logs go. File takes precedence over Console; with
// neither set logs are discarded.
type Options struct {
	// File is a log file path, rotated by size.
	File string
	// Level is a zap level name such as "debug" or "info"; empty means info.
	Level string
	// Console receives logs when no File is set.
	Console io.Writer
}

// NewLoggerConfig returns the console encoder settings: ISO8601 time, capital
// color levels, no stacktraces.
func NewLoggerConfig() zap.Config {
	return zap.Config{
		Level:    zap.NewAtomicLevelAt(zap.InfoLevel),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
	}
}

// ParseLevel parses a level name. The empty string is info.
func ParseLevel(name string) (zapcore.Level, error) {
	if strings.TrimSpace(name) == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(name)
	if err != nil {
		return lvl, errors.Wrapf(err, "log level %q", name)
	}
	return lvl, nil
}

// New returns a named logger and a function that flushes and closes its sink.
func New(name string, opts Options) (*zap.SugaredLogger, func() error, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	cfg := NewLoggerConfig()

	var (
		sink      zapcore.WriteSyncer
		closeSink func() error
	)
	switch {
	case opts.File != "":
		// no color escapes in files
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			Compress:   true,
		}
		sink = zapcore.AddSync(lj)
		closeSink = lj.Close
	case opts.Console != nil:
		sink = zapcore.Lock(zapcore.AddSync(opts.Console))
	default:
		return zap.NewNop().Sugar(), func() error { return nil }, nil
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg.EncoderConfig), sink, zap.NewAtomicLevelAt(lvl))
	logger := zap.New(core).Named(name).Sugar()
	if closeSink == nil {
		// terminals reject fsync, nothing to close
		return logger, func() error { return nil }, nil
	}
	return logger, func() error {
		return multierr.Combine(logger.Sync(), closeSink())
	}, nil
}
