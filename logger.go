package broute

import (
	"log"
	"sync/atomic"
	"testing"
)

// Logger can be implemented to get informed about failures that happen on best-effort paths, where the
// caller has no remaining opportunity to react.
type Logger interface {
	LogImplicitHeadWriteError(err error)
	LogTeardownHeadWriteError(err error)
	LogUnhandledDispatchError(err error)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogImplicitHeadWriteError(err error) {
	l.Logger.Printf("broute: error while writing head implicitly: %s", err)
}

func (l stdLogger) LogTeardownHeadWriteError(err error) {
	l.Logger.Printf("broute: error while writing head on teardown: %s", err)
}

func (l stdLogger) LogUnhandledDispatchError(err error) {
	l.Logger.Printf("broute: unhandled dispatch error: %s", err)
}

// NewStdLogger reports to a standard library logger, or the default logger if l is nil.
func NewStdLogger(l *log.Logger) Logger {
	if l == nil {
		l = log.Default()
	}

	return stdLogger{l}
}

// NopLogger drops every report.
type NopLogger struct{}

func (NopLogger) LogImplicitHeadWriteError(error) {}
func (NopLogger) LogTeardownHeadWriteError(error) {}
func (NopLogger) LogUnhandledDispatchError(error) {}

type TestLogger struct {
	tb testing.TB

	NumLogImplicitHeadWriteError int64
	NumLogTeardownHeadWriteError int64
	NumLogUnhandledDispatchError int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogImplicitHeadWriteError(err error) {
	atomic.AddInt64(&l.NumLogImplicitHeadWriteError, 1)
	l.tb.Logf("broute: error while writing head implicitly: %s", err)
}

func (l *TestLogger) LogTeardownHeadWriteError(err error) {
	atomic.AddInt64(&l.NumLogTeardownHeadWriteError, 1)
	l.tb.Logf("broute: error while writing head on teardown: %s", err)
}

func (l *TestLogger) LogUnhandledDispatchError(err error) {
	atomic.AddInt64(&l.NumLogUnhandledDispatchError, 1)
	l.tb.Logf("broute: unhandled dispatch error: %s", err)
}

var (
	_ Logger = &TestLogger{}
	_ Logger = NopLogger{}
)
