package broute

import (
	"context"
	"maps"
	"slices"

	"github.com/samber/lo"
)

// Context is the request-scoped bag that travels along a handler chain. It carries the parameters
// captured by the matched route and any values set by handlers. The router creates a fresh Context for
// every route it tries, so nothing leaks from a candidate that fell through. Below a mount point every
// fresh Context starts out with the values the parent chain had set when it entered the mount. A
// Context must not be retained after the handler returns.
type Context struct {
	ctx    context.Context
	params map[string]string
	values map[any]any
}

// NewContext inits an empty Context on top of a standard library context.
func NewContext(ctx context.Context) *Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return &Context{ctx: ctx, params: make(map[string]string)}
}

// Context returns the standard library context, for cancellation and deadlines.
func (c *Context) Context() context.Context { return c.ctx }

// WithContext replaces the standard library context for handlers further down the chain.
func (c *Context) WithContext(ctx context.Context) {
	if ctx == nil {
		panic("broute: nil context")
	}

	c.ctx = ctx
}

// Param returns the named route parameter.
func (c *Context) Param(name string) string { return c.params[name] }

// LookupParam returns the named route parameter and whether it was captured.
func (c *Context) LookupParam(name string) (string, bool) {
	v, ok := c.params[name]
	return v, ok
}

// SetParam sets a route parameter.
func (c *Context) SetParam(name, value string) { c.params[name] = value }

// Params returns a copy of all route parameters.
func (c *Context) Params() map[string]string {
	return lo.Assign(c.params)
}

// ParamNames returns the captured parameter names in sorted order.
func (c *Context) ParamNames() []string {
	names := lo.Keys(c.params)
	slices.Sort(names)

	return names
}

// Set stores an application value under key.
func (c *Context) Set(key, value any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}

	c.values[key] = value
}

// Value returns the application value stored under key, or nil.
func (c *Context) Value(key any) any { return c.values[key] }

// Reset drops all parameters and values so the Context can serve another route attempt.
func (c *Context) Reset(ctx context.Context) { c.reset(ctx, nil) }

// reset is Reset followed by copying the inherited values into the Context.
func (c *Context) reset(ctx context.Context, inherited map[any]any) {
	clear(c.params)
	clear(c.values)
	c.ctx = ctx

	if len(inherited) == 0 {
		return
	}

	if c.values == nil {
		c.values = make(map[any]any, len(inherited))
	}

	maps.Copy(c.values, inherited)
}
