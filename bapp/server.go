package bapp

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/advdv/broute"
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServerConfig holds optional configuration for the HTTP server.
type ServerConfig struct {
	HealthHandler broute.HandlerFunc
}

// ServerParams holds the dependencies for creating an HTTP server.
type ServerParams struct {
	fx.In

	Env        Environment
	Router     *Router
	Logger     *zap.Logger
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
	Registry   *prometheus.Registry
	Metrics    *Metrics
}

// NewServer creates an HTTP server with all middleware and routing configured.
func NewServer(params ServerParams, cfg ServerConfig) *http.Server {
	d := &requestDep{
		logger: params.Logger,
	}

	params.Router.Use(withRequestDep(d))
	params.Router.Use(withRouteSpan(params.TracerProv))

	// Register the health check endpoint first so application routes can never shadow it. Tracing is
	// disabled for this path to avoid noisy traces from probes.
	healthPath := params.Env.healthCheckPath()
	healthHandler := cfg.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	params.Router.Handle(http.MethodGet, broute.Exact(healthPath), healthHandler)

	dispatch := broute.ToStd(params.Router, params.Router.Logger(),
		broute.WithOutcomeObserver(params.Metrics.Observe))

	// Metrics are served by the standard library directly, they are not part of the routed application.
	mux := http.NewServeMux()
	mux.Handle(params.Env.metricsPath(), promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/", withTracing(params.TracerProv, params.Propagator, params.Env.serviceName(), healthPath)(dispatch))

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", params.Env.port()),
		Handler:           mux,
		ReadHeaderTimeout: params.Env.readHeaderTimeout(),
		IdleTimeout:       params.Env.idleTimeout(),
	}
}

// startServerHook registers lifecycle hooks for the HTTP server. The listener is bound before start
// returns, so requests can be sent as soon as the app started.
func startServerHook(lc fx.Lifecycle, server *http.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := new(net.ListenConfig).Listen(ctx, "tcp", server.Addr)
			if err != nil {
				return errors.Wrapf(err, "listen on %s", server.Addr)
			}

			logger.Info("starting server", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return server.Shutdown(ctx)
		},
	})
}

// defaultHealthHandler answers probes with an empty 200 OK.
var defaultHealthHandler = broute.Terminal(func(_ *broute.Request, resp *broute.Response, _ *broute.Context) error {
	return resp.End()
})
