package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// NewTestLogger returns a debug logger that writes to tb and records every
// entry for assertions.
func NewTestLogger(tb testing.TB) (*zap.SugaredLogger, *observer.ObservedLogs) {
	tb.Helper()
	observed, logs := observer.New(zap.DebugLevel)
	core := zapcore.NewTee(zaptest.NewLogger(tb).Core(), observed)
	return zap.New(core).Sugar(), logs
}
