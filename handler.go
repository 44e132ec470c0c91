package broute

// Next is the continuation handed to a handler. Calling it runs the rest of the chain and reports
// whether that fully handled the request. A handler short-circuits by not calling it.
type Next func() bool

// HandlerFunc handles a request. It returns true when the request was fully handled and false to let
// the router fall through to the next matching route. Handlers must not retain the Context after they
// return.
type HandlerFunc func(req *Request, resp *Response, next Next, c *Context) bool

// Done is the continuation at the end of a chain: nothing is left to handle the request.
func Done() bool { return false }

// Terminal adapts a function that always fully handles a request (unless it returns an error, in which
// case the error is rendered with [WriteError]) into a [HandlerFunc] that never calls its continuation.
func Terminal(fn func(req *Request, resp *Response, c *Context) error) HandlerFunc {
	return func(req *Request, resp *Response, _ Next, c *Context) bool {
		if err := fn(req, resp, c); err != nil {
			if werr := WriteError(resp, err); werr != nil {
				resp.logs.LogUnhandledDispatchError(werr)
			}
		}

		return true
	}
}
