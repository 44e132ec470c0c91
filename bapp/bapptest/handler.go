package bapptest

import (
	"bufio"
	"bytes"
	"net/http"

	"github.com/advdv/broute"
)

// CallHandler invokes a [broute.HandlerFunc] against an in-memory connection and
// returns the parsed response. It handles the boilerplate of building the
// request and response, tearing the response down and reading back what was
// written to the connection. The continuation handed to the handler reports
// "not handled".
func CallHandler(handler broute.HandlerFunc, req *http.Request) *http.Response {
	var conn bytes.Buffer

	breq := broute.FromStd(req, &conn)
	bresp := broute.NewResponse(breq, nil)
	handler(breq, bresp, broute.Done, broute.NewContext(req.Context()))
	bresp.Discard()

	resp, err := http.ReadResponse(bufio.NewReader(&conn), req)
	if err != nil {
		panic("bapptest: ReadResponse failed: " + err.Error())
	}

	return resp
}
