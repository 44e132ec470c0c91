package bapp

import (
	"context"
	"net/http"

	"github.com/advdv/broute"
	"github.com/carlmjohnson/requests"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"
)

// tracerName identifies spans created by the route middleware.
const tracerName = "github.com/advdv/broute/bapp"

// NewTracerProvider creates and configures the OpenTelemetry TracerProvider.
// Supported exporters via BR_OTEL_EXPORTER: "none" (default) and "stdout".
// Shutdown is handled automatically via fx.Lifecycle.
func NewTracerProvider(lc fx.Lifecycle, env Environment) (trace.TracerProvider, error) {
	exporterType := env.otelExporter()

	exporter, err := newExporter(exporterType)
	if err != nil {
		return nil, err
	}

	if exporter == nil {
		return noop.NewTracerProvider(), nil
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(newResource(env.serviceName())),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})

	return tp, nil
}

// NewPropagator creates the W3C TraceContext + Baggage composite propagator.
func NewPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

// newExporter creates a span exporter based on the exporter type. A nil exporter disables tracing.
func newExporter(exporterType string) (sdktrace.SpanExporter, error) {
	switch exporterType {
	case "none", "":
		return nil, nil
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, errors.Newf("unsupported BR_OTEL_EXPORTER: %q (supported: none, stdout)", exporterType)
	}
}

// newResource describes the service the spans belong to.
func newResource(serviceName string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	)
}

// withTracing wraps the handler with otelhttp for automatic span creation.
// Requests to excludePaths are not traced.
// The TracerProvider and Propagator are explicitly injected to avoid global state.
func withTracing(tp trace.TracerProvider, prop propagation.TextMapPropagator, serviceName string, excludePaths ...string) func(http.Handler) http.Handler {
	excludeSet := make(map[string]struct{}, len(excludePaths))
	for _, p := range excludePaths {
		excludeSet[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName,
			otelhttp.WithTracerProvider(tp),
			otelhttp.WithPropagators(prop),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
			otelhttp.WithFilter(func(r *http.Request) bool {
				_, excluded := excludeSet[r.URL.Path]
				return !excluded
			}),
		)
	}
}

// NewOutboundTransport is the traced round tripper for calls a handler makes to other services. Spans
// are named "outbound METHOD HOST" and the trace context is propagated in the request headers.
func NewOutboundTransport(tp trace.TracerProvider, prop propagation.TextMapPropagator) http.RoundTripper {
	return otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithPropagators(prop),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "outbound " + r.Method + " " + r.URL.Host
		}),
	)
}

// withRouteParent makes the span of a route attempt the parent of outbound requests whose context does
// not carry a span of its own.
func withRouteParent(base http.RoundTripper, route trace.Span) http.RoundTripper {
	return requests.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		if !trace.SpanContextFromContext(req.Context()).IsValid() {
			req = req.WithContext(trace.ContextWithSpan(req.Context(), route))
		}

		return base.RoundTrip(req)
	})
}

// withRouteSpan starts a span for every route attempt. Attempts that fall through end their span with
// "broute.handled" set to false, so traces show the order in which candidates were tried.
func withRouteSpan(tp trace.TracerProvider) broute.HandlerFunc {
	tracer := tp.Tracer(tracerName)

	return func(req *broute.Request, _ *broute.Response, next broute.Next, c *broute.Context) bool {
		ctx, span := tracer.Start(c.Context(), "route "+req.Method+" "+req.Path(),
			trace.WithAttributes(attribute.StringSlice("broute.params", c.ParamNames())))
		defer span.End()

		c.WithContext(ctx)

		handled := next()
		span.SetAttributes(attribute.Bool("broute.handled", handled))

		return handled
	}
}
