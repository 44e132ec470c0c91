package bapp

import (
	"github.com/advdv/broute"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger configured from the environment.
// Uses JSON encoding with ISO8601 timestamps.
// BR_LOG_LEVEL controls the level (debug, info, warn, error).
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.logLevel())
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogImplicitHeadWriteError(err error) {
	l.Logger.Error("error while writing head implicitly", zap.Error(err))
}

func (l zapLogger) LogTeardownHeadWriteError(err error) {
	l.Logger.Warn("error while writing head on teardown", zap.Error(err))
}

func (l zapLogger) LogUnhandledDispatchError(err error) {
	l.Logger.Error("unhandled dispatch error", zap.Error(err))
}

// NewRouteLogger adapts l so the router reports its best-effort failures to it.
func NewRouteLogger(l *zap.Logger) broute.Logger {
	return zapLogger{l.Named("broute").Named("bapp")}
}
