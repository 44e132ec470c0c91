package broute

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"mime"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"golang.org/x/net/http/httpguts"
)

// headState tracks the head through its lifecycle. It only ever moves away from headPending.
type headState int

const (
	headPending headState = iota
	headWritten
	headFailed
)

// Response governs how a status line, headers and a body are written to the request's connection: the
// head exactly once and always before any body byte.
//
// Every operation that performs I/O has a Context variant that accepts a context for cancellation and a
// blocking variant that calls it with [context.Background]. Both produce the same bytes and the same
// state transitions. A Response is owned by a single in-flight dispatch and must not be used
// concurrently.
type Response struct {
	req    *Request
	logs   Logger
	status int
	reason string
	header http.Header
	state  headState
	convs  []Converter
	eof    bool
	body   *Body
}

// NewResponse inits a response to req. The head is rendered with the request's HTTP version and written
// to the request's Conn. Best-effort failures are reported to logs, which may be nil.
func NewResponse(req *Request, logs Logger) *Response {
	if logs == nil {
		logs = NopLogger{}
	}

	return &Response{
		req:    req,
		logs:   logs,
		status: http.StatusOK,
		header: make(http.Header),
	}
}

// Request returns the request this response answers.
func (r *Response) Request() *Request { return r.req }

// Status returns the status code, 200 unless set otherwise.
func (r *Response) Status() int { return r.status }

// SetStatus sets the status code. It fails once the head has been written.
func (r *Response) SetStatus(code int) error {
	if r.state != headPending {
		return r.frozen(fmt.Sprintf("set status %d", code))
	}

	if code < 100 || code > 999 {
		return errors.Newf("invalid status code %d", code)
	}

	r.status = code

	return nil
}

// Reason returns the reason phrase for the status line: the override if one was set and the standard
// text for the status code otherwise.
func (r *Response) Reason() string {
	if r.reason != "" {
		return r.reason
	}

	return http.StatusText(r.status)
}

// SetReason overrides the reason phrase. It fails once the head has been written.
func (r *Response) SetReason(reason string) error {
	if r.state != headPending {
		return r.frozen("set reason")
	}

	if !httpguts.ValidHeaderFieldValue(reason) {
		return errors.Newf("invalid reason phrase %q", reason)
	}

	r.reason = reason

	return nil
}

// Header returns the header map that will be sent with the head. Once the head has been written a
// detached copy is returned, so later mutations have no effect.
func (r *Response) Header() http.Header {
	if r.state != headPending {
		return r.header.Clone()
	}

	return r.header
}

// SetHeader validates and sets a header field. It fails once the head has been written.
func (r *Response) SetHeader(name, value string) error {
	if err := r.checkField(name, value); err != nil {
		return err
	}

	r.header.Set(name, value)

	return nil
}

// AddHeader validates and adds a header field value. It fails once the head has been written.
func (r *Response) AddHeader(name, value string) error {
	if err := r.checkField(name, value); err != nil {
		return err
	}

	r.header.Add(name, value)

	return nil
}

// DelHeader removes a header field. It fails once the head has been written.
func (r *Response) DelHeader(name string) error {
	if r.state != headPending {
		return r.frozen(fmt.Sprintf("delete header %q", name))
	}

	r.header.Del(name)

	return nil
}

func (r *Response) checkField(name, value string) error {
	switch {
	case r.state != headPending:
		return r.frozen(fmt.Sprintf("set header %q", name))
	case !httpguts.ValidHeaderFieldName(name):
		return errors.Newf("invalid header field name %q", name)
	case !httpguts.ValidHeaderFieldValue(value):
		return errors.Newf("invalid header field value for %q", name)
	}

	return nil
}

// SetCookie adds a Set-Cookie header for c.
func (r *Response) SetCookie(c *http.Cookie) error {
	if err := c.Valid(); err != nil {
		return errors.Wrap(err, "invalid cookie")
	}

	return r.AddHeader("Set-Cookie", c.String())
}

// Cookies parses every Set-Cookie entry of the header. The result is computed on each call and entries
// that do not parse are skipped.
func (r *Response) Cookies() []*http.Cookie {
	var cookies []*http.Cookie
	for _, line := range r.header.Values("Set-Cookie") {
		c, err := http.ParseSetCookie(line)
		if err != nil {
			continue
		}

		cookies = append(cookies, c)
	}

	return cookies
}

// frozen returns the error for op, an attempt to change the head after it left the pending state.
func (r *Response) frozen(op string) error {
	if r.state == headFailed {
		return errors.Wrap(ErrHeadFailed, op)
	}

	return errors.Wrap(ErrHeadWritten, op)
}

// HeadWritten reports whether the head has been confirmed written to the connection.
func (r *Response) HeadWritten() bool { return r.state == headWritten }

// EOFTerminated reports whether the body length is indicated by closing the connection. The server
// layer must close the connection after such a response.
func (r *Response) EOFTerminated() bool { return r.eof }

// BuildHead renders the status line, the header fields and the terminating blank line. The version on
// the status line mirrors the request. HTTP/0.9 requests have no head so the result is empty.
func (r *Response) BuildHead() []byte {
	if r.req.ProtoMajor < 1 {
		return nil
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "HTTP/%d.%d %03d %s\r\n", r.req.ProtoMajor, r.req.ProtoMinor, r.status, r.Reason())
	_ = r.header.Write(&buf) // writes to a bytes.Buffer do not fail
	buf.WriteString("\r\n")

	return buf.Bytes()
}

// WriteHead writes the head, see [Response.WriteHeadContext].
func (r *Response) WriteHead() (bool, error) {
	return r.WriteHeadContext(context.Background())
}

// WriteHeadContext writes the head to the connection. It reports whether any bytes were written: an empty
// head still marks the head as written. Writing the head a second time fails with [ErrHeadWritten].
//
// The head only counts as written once every byte has been accepted (and flushed, for buffered
// connections). When ctx is canceled before anything reached the connection the head stays unwritten and
// the call may be retried, any other failure is final and later body access fails with [ErrHeadFailed].
func (r *Response) WriteHeadContext(ctx context.Context) (bool, error) {
	switch r.state {
	case headWritten:
		return false, ErrHeadWritten
	case headFailed:
		return false, ErrHeadFailed
	}

	head := r.BuildHead()
	if len(head) == 0 {
		r.state = headWritten
		return false, nil
	}

	n, err := writeContext(ctx, r.req.Conn, head)
	if err != nil {
		if n > 0 || !isCanceled(err) {
			r.state = headFailed
		}

		return false, errors.Wrap(err, "write head")
	}

	if err := flushContext(ctx, r.req.Conn); err != nil {
		r.state = headFailed
		return false, errors.Wrap(err, "flush head")
	}

	r.state = headWritten

	return true, nil
}

// Body returns the (possibly converted) body stream. Note that this has a side effect: when the head has
// not been written yet it is written first. A failure to do so is reported to the Logger and not
// returned, writes to the stream will fail with [ErrHeadFailed] instead. Use [Response.BodyContext] to
// observe the head write.
func (r *Response) Body() *Body {
	if r.state == headPending {
		if _, err := r.WriteHead(); err != nil {
			r.logs.LogImplicitHeadWriteError(err)
		}
	}

	return r.stream()
}

// BodyContext is like [Response.Body] but the head is written with ctx and its failure is returned.
func (r *Response) BodyContext(ctx context.Context) (*Body, error) {
	if r.state == headPending {
		if _, err := r.WriteHeadContext(ctx); err != nil {
			return nil, err
		}
	}

	if r.state == headFailed {
		return nil, ErrHeadFailed
	}

	return r.stream(), nil
}

// stream lazily constructs the body stream. The first converter sits closest to the connection, the
// most recently stacked one sees written bytes first.
func (r *Response) stream() *Body {
	if r.body != nil {
		return r.body
	}

	base := &connWriter{conn: r.req.Conn}

	var top io.WriteCloser = base
	for _, c := range r.convs {
		top = c.Convert(top)
	}

	r.body = &Body{resp: r, base: base, top: top}

	return r.body
}

// Convert stacks a transforming filter onto the body stream. A non-negative contentLength sets the
// Content-Length header. It is rejected once the response is chunked, the head may not carry both. With
// an unknown length (negative) a chunked response keeps its transfer coding, otherwise the body becomes
// EOF-terminated: the length is signaled by closing the connection. The header is left untouched when
// stacking fails.
func (r *Response) Convert(c Converter, contentLength int64) error {
	if r.state != headPending {
		return r.frozen("convert")
	}

	h := r.header.Clone()
	c.Head(h)

	switch {
	case isChunked(h) && !r.req.ProtoAtLeast(1, 1):
		return errors.Newf("chunked transfer coding requires HTTP/1.1, request is %s", r.req.Proto)
	case isChunked(h) && contentLength >= 0:
		return errors.Newf("content length %d conflicts with the chunked transfer coding", contentLength)
	}

	clear(r.header)
	maps.Copy(r.header, h)

	switch {
	case contentLength >= 0:
		r.header.Set("Content-Length", strconv.FormatInt(contentLength, 10))
	case isChunked(r.header):
	default:
		r.header.Del("Content-Length")
		r.header.Set("Connection", "close")
		r.eof = true
	}

	r.convs = append(r.convs, c)

	return nil
}

// Expand writes buf as the complete body, see [Response.ExpandContext].
func (r *Response) Expand(buf []byte) error {
	return r.ExpandContext(context.Background(), buf)
}

// ExpandContext writes buf as the complete body: it sets Content-Length to the size of buf unless the
// body is being converted (the raw size would be wrong), writes the head, the buffer and closes the body.
func (r *Response) ExpandContext(ctx context.Context, buf []byte) error {
	if r.state == headPending && r.unencoded() {
		r.header.Set("Content-Length", strconv.Itoa(len(buf)))
	}

	body, err := r.BodyContext(ctx)
	if err != nil {
		return err
	}

	if _, err := body.WriteContext(ctx, buf); err != nil {
		return errors.Wrap(err, "write body")
	}

	return body.CloseContext(ctx)
}

// ExpandUTF8 writes text as the complete body, see [Response.ExpandUTF8Context].
func (r *Response) ExpandUTF8(text string) error {
	return r.ExpandUTF8Context(context.Background(), text)
}

// ExpandUTF8Context is like [Response.ExpandContext] but makes sure a Content-Type with a charset is
// sent. Without a Content-Type the generic "application/octet-stream" is used, and a Content-Type
// without a charset parameter gets "charset=UTF-8".
func (r *Response) ExpandUTF8Context(ctx context.Context, text string) error {
	if r.state == headPending {
		r.header.Set("Content-Type", withUTF8Charset(r.header.Get("Content-Type")))
	}

	return r.ExpandContext(ctx, []byte(text))
}

// End finishes a response without payload, see [Response.EndContext].
func (r *Response) End() error {
	return r.EndContext(context.Background())
}

// EndContext writes the head if that did not happen yet and closes the body. An unconverted response
// without Content-Length is announced with a zero length.
func (r *Response) EndContext(ctx context.Context) error {
	if r.state == headPending && r.unencoded() && r.header.Get("Content-Length") == "" && bodyAllowed(r.status) {
		r.header.Set("Content-Length", "0")
	}

	body, err := r.BodyContext(ctx)
	if err != nil {
		return err
	}

	return body.CloseContext(ctx)
}

// Discard tears the response down. If the head was never written it is written now, so no response
// vanishes without at least a status line. This is best-effort: a failure is reported to the Logger.
func (r *Response) Discard() {
	if r.state != headPending {
		return
	}

	if _, err := r.WriteHead(); err != nil {
		r.logs.LogTeardownHeadWriteError(err)
	}
}

func (r *Response) unencoded() bool {
	return len(r.convs) == 0 &&
		r.header.Get("Content-Encoding") == "" &&
		r.header.Get("Transfer-Encoding") == ""
}

// Body is the response body stream. It only exists after the head was (attempted to be) written.
type Body struct {
	resp   *Response
	base   *connWriter
	top    io.WriteCloser
	closed bool
}

// Write implements io.Writer.
func (b *Body) Write(p []byte) (int, error) {
	return b.WriteContext(context.Background(), p)
}

// WriteContext writes p through the converters to the connection, interrupting on cancellation of ctx.
func (b *Body) WriteContext(ctx context.Context, p []byte) (int, error) {
	if b.resp.state != headWritten {
		return 0, ErrHeadFailed
	}

	if b.closed {
		return 0, errors.New("write to closed body")
	}

	b.base.ctx = ctx
	defer func() { b.base.ctx = nil }()

	return b.top.Write(p)
}

// Close implements io.Closer.
func (b *Body) Close() error {
	return b.CloseContext(context.Background())
}

// CloseContext flushes the converters and the connection. The connection itself stays open. Closing
// more than once is a no-op.
func (b *Body) CloseContext(ctx context.Context) error {
	if b.resp.state != headWritten {
		return ErrHeadFailed
	}

	if b.closed {
		return nil
	}

	b.base.ctx = ctx
	defer func() { b.base.ctx = nil }()

	b.closed = true
	if err := b.top.Close(); err != nil {
		return errors.Wrap(err, "close body")
	}

	return nil
}

// connWriter is the bottom of every body stream.
type connWriter struct {
	conn Conn
	ctx  context.Context
}

func (w *connWriter) context() context.Context {
	if w.ctx == nil {
		return context.Background()
	}

	return w.ctx
}

func (w *connWriter) Write(p []byte) (int, error) {
	return writeContext(w.context(), w.conn, p)
}

func (w *connWriter) Close() error {
	return flushContext(w.context(), w.conn)
}

func withUTF8Charset(contentType string) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}

	if _, ok := params["charset"]; ok {
		return contentType
	}

	params["charset"] = "UTF-8"

	return mime.FormatMediaType(mediaType, params)
}

func isChunked(h http.Header) bool {
	return httpguts.HeaderValuesContainsToken(h.Values("Transfer-Encoding"), "chunked")
}

func bodyAllowed(status int) bool {
	return status >= 200 && status != http.StatusNoContent && status != http.StatusNotModified
}
