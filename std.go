package broute

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
)

// ExhaustedFunc renders the response for a request that no route handled.
type ExhaustedFunc func(req *Request, resp *Response) error

// OutcomeFunc is informed after every dispatch through [ToStd].
type OutcomeFunc func(req *Request, resp *Response, outcome Outcome, elapsed time.Duration)

type stdOptions struct {
	exhausted ExhaustedFunc
	observe   OutcomeFunc
}

// StdOption configures [ToStd].
type StdOption func(*stdOptions)

// WithExhaustedHandler replaces the default "404 Not Found" response for exhausted dispatches.
func WithExhaustedHandler(fn ExhaustedFunc) StdOption {
	return func(o *stdOptions) { o.exhausted = fn }
}

// WithOutcomeObserver registers fn to be called after every dispatch.
func WithOutcomeObserver(fn OutcomeFunc) StdOption {
	return func(o *stdOptions) { o.observe = fn }
}

// ToStd serves rt through the standard library server. The connection is hijacked so the router owns
// the bytes written to it: every response is announced with "Connection: close" and the connection is
// closed once the dispatch finished. When no route handled the request a "404 Not Found" is rendered, if
// a handler never wrote the head it is written on teardown.
func ToStd(rt *Router, logs Logger, opts ...StdOption) http.Handler {
	if logs == nil {
		logs = NopLogger{}
	}

	o := stdOptions{exhausted: notFound}
	for _, opt := range opts {
		opt(&o)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nc, brw, err := http.NewResponseController(w).Hijack()
		if err != nil {
			logs.LogUnhandledDispatchError(errors.Wrap(err, "hijack connection"))
			http.Error(w,
				http.StatusText(http.StatusInternalServerError),
				http.StatusInternalServerError)

			return
		}

		conn := &hijackedConn{Conn: nc, brw: brw}
		defer conn.Close()

		start := time.Now()

		req := FromStd(r, conn)
		req.Body = hijackedBody(r, brw.Reader)
		resp := NewResponse(req, logs)
		_ = resp.SetHeader("Connection", "close")

		outcome := rt.Dispatch(req, resp)
		if outcome == Exhausted && !resp.HeadWritten() {
			if err := o.exhausted(req, resp); err != nil {
				logs.LogUnhandledDispatchError(err)
			}
		}

		resp.Discard()

		if err := conn.Flush(); err != nil {
			logs.LogUnhandledDispatchError(errors.Wrap(err, "flush connection"))
		}

		if o.observe != nil {
			o.observe(req, resp, outcome, time.Since(start))
		}
	})
}

func notFound(_ *Request, resp *Response) error {
	return WriteError(resp, NewError(CodeNotFound, ErrExhausted))
}

// hijackedBody reads the request body straight from the hijacked connection, the standard library's
// body reader must no longer be used at that point.
func hijackedBody(r *http.Request, br *bufio.Reader) io.Reader {
	switch {
	case slices.Contains(r.TransferEncoding, "chunked"):
		return httputil.NewChunkedReader(br)
	case r.ContentLength > 0:
		return io.LimitReader(br, r.ContentLength)
	default:
		return http.NoBody
	}
}

// hijackedConn writes through the buffered writer handed out by the hijack, so data the server buffered
// before the hijack is kept in order.
type hijackedConn struct {
	net.Conn
	brw *bufio.ReadWriter
}

func (c *hijackedConn) Read(p []byte) (int, error)  { return c.brw.Read(p) }
func (c *hijackedConn) Write(p []byte) (int, error) { return c.brw.Write(p) }
func (c *hijackedConn) Flush() error                { return c.brw.Flush() }
