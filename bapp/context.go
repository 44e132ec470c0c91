package bapp

import (
	"context"

	"github.com/advdv/broute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ctxKey is the key type for context values.
type ctxKey int

const (
	ctxKeyRequestDep ctxKey = iota
)

// requestDep holds request-scoped dependencies available via the route context.
// App-scoped dependencies (env, router) are accessed via Runtime instead.
type requestDep struct {
	logger *zap.Logger
}

// withRequestDep injects dependencies into the route context.
func withRequestDep(d *requestDep) broute.HandlerFunc {
	return func(_ *broute.Request, _ *broute.Response, next broute.Next, c *broute.Context) bool {
		c.Set(ctxKeyRequestDep, d)
		return next()
	}
}

func requestDepFromContext(c *broute.Context) *requestDep {
	d, ok := c.Value(ctxKeyRequestDep).(*requestDep)
	if !ok {
		panic("bapp: requestDep not found in context; is the middleware configured?")
	}
	return d
}

// Log returns a trace-correlated zap logger for the route being handled.
func Log(c *broute.Context) *zap.Logger {
	d := requestDepFromContext(c)
	return d.logger.With(traceFields(c.Context())...)
}

// Span returns the current trace span of the route being handled.
func Span(c *broute.Context) trace.Span {
	return trace.SpanFromContext(c.Context())
}

// traceFields extracts trace_id and span_id from the context for log correlation.
func traceFields(ctx context.Context) []zap.Field {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}
	sc := span.SpanContext()
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
