package broute

// Sequence composes a and b into one handler: a is invoked with a continuation that runs b with the
// original continuation and Context. If a does not call its continuation, b never runs.
func Sequence(a, b HandlerFunc) HandlerFunc {
	return func(req *Request, resp *Response, next Next, c *Context) bool {
		return a(req, resp, func() bool {
			return b(req, resp, next, c)
		}, c)
	}
}

// Chain composes the handlers with [Sequence]. The order is that of the Gorilla and Chi router. That
// is: the handler provided first is called first and is the "outer" most wrapping, the handler provided
// last is the "inner most" one (usually the terminal handler).
func Chain(h HandlerFunc, more ...HandlerFunc) HandlerFunc {
	chained := h
	for _, next := range more {
		chained = Sequence(chained, next)
	}

	return chained
}
