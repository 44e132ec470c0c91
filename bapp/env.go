package bapp

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must implement.
// Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	port() int
	serviceName() string
	logLevel() zapcore.Level
	otelExporter() string
	healthCheckPath() string
	metricsPath() string
	readHeaderTimeout() time.Duration
	idleTimeout() time.Duration
}

// BaseEnvironment contains the environment variables every app reads.
// Embed this in your custom environment struct.
type BaseEnvironment struct {
	Port            int           `env:"BR_PORT,required"`
	ServiceName     string        `env:"BR_SERVICE_NAME,required"`
	LogLevel        zapcore.Level `env:"BR_LOG_LEVEL" envDefault:"info"`
	OtelExporter    string        `env:"BR_OTEL_EXPORTER" envDefault:"none"`
	HealthCheckPath string        `env:"BR_HEALTH_CHECK_PATH" envDefault:"/healthz"`
	MetricsPath     string        `env:"BR_METRICS_PATH" envDefault:"/metrics"`
	// ReadHeaderTimeout bounds reading the request head. The router itself imposes no timeouts on
	// handlers, so this and IdleTimeout are the only server-side bounds.
	ReadHeaderTimeout time.Duration `env:"BR_READ_HEADER_TIMEOUT" envDefault:"5s"`
	IdleTimeout       time.Duration `env:"BR_IDLE_TIMEOUT" envDefault:"60s"`
}

func (e BaseEnvironment) port() int {
	return e.Port
}

func (e BaseEnvironment) serviceName() string {
	return e.ServiceName
}

func (e BaseEnvironment) logLevel() zapcore.Level {
	return e.LogLevel
}

func (e BaseEnvironment) otelExporter() string {
	return e.OtelExporter
}

func (e BaseEnvironment) healthCheckPath() string {
	return e.HealthCheckPath
}

func (e BaseEnvironment) metricsPath() string {
	return e.MetricsPath
}

func (e BaseEnvironment) readHeaderTimeout() time.Duration {
	return e.ReadHeaderTimeout
}

func (e BaseEnvironment) idleTimeout() time.Duration {
	return e.IdleTimeout
}

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}
		return e, nil
	}
}
