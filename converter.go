package broute

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httputil"

	"github.com/cockroachdb/errors"
)

// Converter is a transforming filter that can be stacked onto a response body with [Response.Convert].
type Converter interface {
	// Head adjusts the response header for the transformation. It is called when the converter is
	// stacked, before the head is written.
	Head(h http.Header)

	// Convert wraps w. Bytes written to the result end up, transformed, in w. Closing the result must
	// flush any pending output and close w.
	Convert(w io.WriteCloser) io.WriteCloser
}

// Chunked frames the body with the chunked transfer coding (HTTP/1.1 only).
func Chunked() Converter { return chunked{} }

type chunked struct{}

func (chunked) Head(h http.Header) {
	h.Del("Content-Length")
	if !isChunked(h) {
		h.Add("Transfer-Encoding", "chunked")
	}
}

func (chunked) Convert(w io.WriteCloser) io.WriteCloser {
	return &chunkedWriter{cw: httputil.NewChunkedWriter(w), w: w}
}

type chunkedWriter struct {
	cw io.WriteCloser
	w  io.WriteCloser
}

func (c *chunkedWriter) Write(p []byte) (int, error) { return c.cw.Write(p) }

func (c *chunkedWriter) Close() error {
	if err := c.cw.Close(); err != nil {
		return errors.Wrap(err, "write last chunk")
	}

	// the chunked writer leaves the CRLF after the (empty) trailer section to the caller
	if _, err := io.WriteString(c.w, "\r\n"); err != nil {
		return errors.Wrap(err, "terminate chunked body")
	}

	return c.w.Close()
}

// Gzip compresses the body and sets the Content-Encoding accordingly.
func Gzip() Converter { return gzipConverter{level: gzip.DefaultCompression} }

// GzipLevel is like [Gzip] with an explicit compression level.
func GzipLevel(level int) (Converter, error) {
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		return nil, errors.Newf("invalid gzip level %d", level)
	}

	return gzipConverter{level: level}, nil
}

type gzipConverter struct{ level int }

func (gzipConverter) Head(h http.Header) {
	h.Del("Content-Length")
	h.Set("Content-Encoding", "gzip")
	h.Add("Vary", "Accept-Encoding")
}

func (g gzipConverter) Convert(w io.WriteCloser) io.WriteCloser {
	zw, err := gzip.NewWriterLevel(w, g.level)
	if err != nil {
		panic("broute: " + err.Error()) // level is validated by GzipLevel
	}

	return &gzipWriter{zw: zw, w: w}
}

type gzipWriter struct {
	zw *gzip.Writer
	w  io.WriteCloser
}

func (g *gzipWriter) Write(p []byte) (int, error) { return g.zw.Write(p) }

func (g *gzipWriter) Close() error {
	if err := g.zw.Close(); err != nil {
		return errors.Wrap(err, "finish gzip stream")
	}

	return g.w.Close()
}
