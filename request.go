package broute

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"
)

// Conn is the bidirectional stream underneath a request: readable for the request body, writable for
// the response. The core never opens or closes it. When the Conn also implements SetWriteDeadline (like
// net.Conn does) blocked writes are interrupted on context cancellation, and when it implements
// Flush() error, buffered output is flushed after the head and when the body closes.
type Conn interface {
	io.Reader
	io.Writer
}

// Request is the read-only view of an incoming request that the core routes on.
type Request struct {
	Method     string
	URL        *url.URL
	Proto      string
	ProtoMajor int
	ProtoMinor int
	Header     http.Header
	Body       io.Reader
	Conn       Conn

	ctx context.Context
}

// NewRequest inits a request for the given method and target (a path with optional query, or an absolute
// URL) served over conn. It defaults to HTTP/1.1.
func NewRequest(ctx context.Context, method, target string, conn Conn) (*Request, error) {
	u, err := url.ParseRequestURI(target)
	if err != nil {
		return nil, errors.Wrapf(err, "parse request target %q", target)
	}

	return &Request{
		Method:     method,
		URL:        u,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     make(http.Header),
		Body:       http.NoBody,
		Conn:       conn,
		ctx:        ctx,
	}, nil
}

// FromStd converts a standard library request into a Request served over conn.
func FromStd(r *http.Request, conn Conn) *Request {
	return &Request{
		Method:     r.Method,
		URL:        r.URL,
		Proto:      r.Proto,
		ProtoMajor: r.ProtoMajor,
		ProtoMinor: r.ProtoMinor,
		Header:     r.Header,
		Body:       r.Body,
		Conn:       conn,
		ctx:        r.Context(),
	}
}

// Context returns the request's context. It is never nil.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}

	return r.ctx
}

// Path returns the decoded path that routes are matched against.
func (r *Request) Path() string {
	if r.URL == nil {
		return ""
	}

	return r.URL.Path
}

// ProtoAtLeast reports whether the HTTP protocol used in the request is at least major.minor.
func (r *Request) ProtoAtLeast(major, minor int) bool {
	return r.ProtoMajor > major || r.ProtoMajor == major && r.ProtoMinor >= minor
}

// withPath returns a shallow copy of the request with a different path.
func (r *Request) withPath(path, rawPath string) *Request {
	r2 := new(Request)
	*r2 = *r
	r2.URL = new(url.URL)
	*r2.URL = *r.URL
	r2.URL.Path = path
	r2.URL.RawPath = rawPath

	return r2
}
