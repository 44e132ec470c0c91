package broute_test

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/advdv/broute"
	"github.com/stretchr/testify/require"
)

// newTestResponse inits a response to an HTTP/1.1 request whose connection is an in-memory buffer.
func newTestResponse(tb testing.TB, method, target string) (*bytes.Buffer, *broute.Request, *broute.Response) {
	tb.Helper()

	conn := new(bytes.Buffer)
	req, err := broute.NewRequest(context.Background(), method, target, conn)
	require.NoError(tb, err)

	return conn, req, broute.NewResponse(req, broute.NewTestLogger(tb))
}

// readResponse parses the bytes written to conn as an HTTP response.
func readResponse(tb testing.TB, conn *bytes.Buffer) *http.Response {
	tb.Helper()

	res, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(tb, err)

	return res
}

func readBody(tb testing.TB, res *http.Response) string {
	tb.Helper()

	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(tb, err)

	return string(data)
}

// text is a terminal handler that writes body as UTF-8 text.
func text(body string) broute.HandlerFunc {
	return broute.Terminal(func(_ *broute.Request, resp *broute.Response, _ *broute.Context) error {
		return resp.ExpandUTF8(body)
	})
}

// pass is a handler that declines every request.
func pass(*broute.Request, *broute.Response, broute.Next, *broute.Context) bool { return false }

// dispatch routes a request for target through rt and returns the outcome together with the
// written response, nil if nothing was written.
func dispatch(tb testing.TB, rt *broute.Router, method, target string) (broute.Outcome, *http.Response) {
	tb.Helper()

	conn, req, resp := newTestResponse(tb, method, target)
	outcome := rt.Dispatch(req, resp)
	if conn.Len() == 0 {
		return outcome, nil
	}

	return outcome, readResponse(tb, conn)
}
