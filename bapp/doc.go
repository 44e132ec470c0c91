// Package bapp provides a batteries-included framework for serving a broute Router.
//
// # Overview
//
// bapp handles the boilerplate of setting up an HTTP server around a [broute.Router]: environment
// parsing, structured logging, OpenTelemetry tracing, Prometheus metrics and graceful shutdown. A
// complete application can be created in a single call:
//
//	bapp.NewApp[Env](func(r *bapp.Router, h *Handlers) {
//	    r.Get("/items", broute.Terminal(h.ListItems))
//	    r.Get("/items/<int:id>", broute.Terminal(h.GetItem), "get-item")
//	},
//	    bapp.WithFx(fx.Provide(NewHandlers)),
//	).Run()
//
// # Environment Configuration
//
// Define your environment by embedding [BaseEnvironment]:
//
//	type Env struct {
//	    bapp.BaseEnvironment
//	    MainTableName string `env:"MAIN_TABLE_NAME,required"`
//	}
//
// BaseEnvironment provides the following environment variables:
//
//	| Variable                | Required | Default  | Description                                   |
//	|-------------------------|----------|----------|-----------------------------------------------|
//	| BR_PORT                 | Yes      | -        | Port the HTTP server listens on               |
//	| BR_SERVICE_NAME         | Yes      | -        | Service name for logging and tracing          |
//	| BR_LOG_LEVEL            | No       | info     | Log level (debug, info, warn, error)          |
//	| BR_OTEL_EXPORTER        | No       | none     | Trace exporter: "none" or "stdout"            |
//	| BR_HEALTH_CHECK_PATH    | No       | /healthz | Health check endpoint path                    |
//	| BR_METRICS_PATH         | No       | /metrics | Prometheus scrape endpoint path               |
//	| BR_READ_HEADER_TIMEOUT  | No       | 5s       | Time allowed to read a request head           |
//	| BR_IDLE_TIMEOUT         | No       | 60s      | Keep-alive idle timeout                       |
//
// # Runtime
//
// [Runtime] provides access to app-scoped dependencies and should be injected into
// handler constructors via fx. App-level dependencies are passed explicitly, not
// pulled from the route context.
//
// Runtime provides:
//   - [Runtime.Env] returns the typed environment configuration
//   - [Runtime.Reverse] generates URLs for named routes
//   - [Runtime.NewRequest] builds outbound HTTP requests traced as children of the route span
//
// # Context
//
// Handlers receive a [broute.Context]. Use the package-level functions to access
// request-scoped values:
//
//	func (h *Handlers) GetItem(req *broute.Request, resp *broute.Response, c *broute.Context) error {
//	    bapp.Log(c).Info("fetching item", zap.String("id", c.Param("id")))
//	    bapp.Span(c).AddEvent("fetching item")
//	    // ...
//	}
//
// Available functions:
//
//   - [Log] - trace-correlated zap logger
//   - [Span] - current OpenTelemetry span for custom instrumentation
//
// # Tracing
//
// OpenTelemetry tracing is configured based on BR_OTEL_EXPORTER:
//
//   - "none" (default): a no-op tracer provider
//   - "stdout": Pretty-printed spans for local development
//
// Every request gets a server span from otelhttp, and every route the router
// tries gets a child span. Attempts that fall through are visible in the trace
// with "broute.handled" set to false. The tracer provider and propagator are
// injected explicitly (no globals), allowing for proper testing and isolation.
//
// # Metrics
//
// Dispatches are counted per method, outcome and status and timed in a
// histogram. The registry is served at BR_METRICS_PATH by the standard library,
// outside of the router.
package bapp
