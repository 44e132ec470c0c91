// Package example implements example middleware in an outside package.
package example

import (
	"log/slog"

	"github.com/advdv/broute"
)

// ctxKey type scopes middlware values.
type ctxKey string

// Middleware provides an example for middleware that adds a logger to the request context.
func Middleware(logs *slog.Logger) broute.HandlerFunc {
	return func(req *broute.Request, resp *broute.Response, next broute.Next, c *broute.Context) bool {
		c.Set(ctxKey("slog"), logs.With(slog.String("method", req.Method)))

		return next()
	}
}

func Log(c *broute.Context) *slog.Logger {
	v, _ := c.Value(ctxKey("slog")).(*slog.Logger)

	return v
}
