package bapptest

import (
	"strconv"
	"testing"
)

// Env provides a chainable builder for setting [bapp.BaseEnvironment] env vars
// via t.Setenv. Create one with [SetBaseEnv].
type Env struct {
	t testing.TB
}

// SetBaseEnv sets all required [bapp.BaseEnvironment] env vars to sensible test defaults.
// Port is required because each test must use a unique port to avoid collisions.
//
// Defaults:
//   - BR_SERVICE_NAME: "test"
//   - BR_HEALTH_CHECK_PATH: "/health"
//   - BR_OTEL_EXPORTER: "none"
//   - BR_LOG_LEVEL: "warn"
//
// Use the returned [Env] to override individual values:
//
//	bapptest.SetBaseEnv(t, 18085).ServiceName("orders").HealthCheckPath("/ready")
func SetBaseEnv(t testing.TB, port int) *Env {
	t.Helper()
	t.Setenv("BR_PORT", strconv.Itoa(port))
	t.Setenv("BR_SERVICE_NAME", "test")
	t.Setenv("BR_HEALTH_CHECK_PATH", "/health")
	t.Setenv("BR_OTEL_EXPORTER", "none")
	t.Setenv("BR_LOG_LEVEL", "warn")
	return &Env{t: t}
}

// ServiceName overrides BR_SERVICE_NAME.
func (e *Env) ServiceName(name string) *Env {
	e.t.Helper()
	e.t.Setenv("BR_SERVICE_NAME", name)
	return e
}

// HealthCheckPath overrides BR_HEALTH_CHECK_PATH.
func (e *Env) HealthCheckPath(path string) *Env {
	e.t.Helper()
	e.t.Setenv("BR_HEALTH_CHECK_PATH", path)
	return e
}

// MetricsPath overrides BR_METRICS_PATH.
func (e *Env) MetricsPath(path string) *Env {
	e.t.Helper()
	e.t.Setenv("BR_METRICS_PATH", path)
	return e
}

// OtelExporter overrides BR_OTEL_EXPORTER.
func (e *Env) OtelExporter(exporter string) *Env {
	e.t.Helper()
	e.t.Setenv("BR_OTEL_EXPORTER", exporter)
	return e
}

// LogLevel overrides BR_LOG_LEVEL.
func (e *Env) LogLevel(level string) *Env {
	e.t.Helper()
	e.t.Setenv("BR_LOG_LEVEL", level)
	return e
}
