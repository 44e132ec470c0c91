package broute

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Code is an error code that mirrors the http status codes. It is used by the server layer to turn
// errors (and dispatch exhaustion) into a default response.
type Code int

const (
	CodeUnknown                      Code = 0
	CodeBadRequest                   Code = http.StatusBadRequest                    // RFC 9110, 15.5.1
	CodeUnauthorized                 Code = http.StatusUnauthorized                  // RFC 9110, 15.5.2
	CodeForbidden                    Code = http.StatusForbidden                     // RFC 9110, 15.5.4
	CodeNotFound                     Code = http.StatusNotFound                      // RFC 9110, 15.5.5
	CodeMethodNotAllowed             Code = http.StatusMethodNotAllowed              // RFC 9110, 15.5.6
	CodeRequestTimeout               Code = http.StatusRequestTimeout                // RFC 9110, 15.5.9
	CodeConflict                     Code = http.StatusConflict                      // RFC 9110, 15.5.10
	CodeGone                         Code = http.StatusGone                          // RFC 9110, 15.5.11
	CodeRequestEntityTooLarge        Code = http.StatusRequestEntityTooLarge         // RFC 9110, 15.5.14
	CodeUnsupportedMediaType         Code = http.StatusUnsupportedMediaType          // RFC 9110, 15.5.16
	CodeUnprocessableEntity          Code = http.StatusUnprocessableEntity           // RFC 9110, 15.5.21
	CodeTooManyRequests              Code = http.StatusTooManyRequests               // RFC 6585, 4
	CodeRequestHeaderFieldsTooLarge  Code = http.StatusRequestHeaderFieldsTooLarge   // RFC 6585, 5
	CodeInternalServerError          Code = http.StatusInternalServerError           // RFC 9110, 15.6.1
	CodeNotImplemented               Code = http.StatusNotImplemented                // RFC 9110, 15.6.2
	CodeBadGateway                   Code = http.StatusBadGateway                    // RFC 9110, 15.6.3
	CodeServiceUnavailable           Code = http.StatusServiceUnavailable            // RFC 9110, 15.6.4
	CodeGatewayTimeout               Code = http.StatusGatewayTimeout                // RFC 9110, 15.6.5
	CodeHTTPVersionNotSupported      Code = http.StatusHTTPVersionNotSupported       // RFC 9110, 15.6.6
	CodeNetworkAuthenticationNeeded  Code = http.StatusNetworkAuthenticationRequired // RFC 6585, 6
	CodeUnavailableForLegalReasons   Code = http.StatusUnavailableForLegalReasons    // RFC 7725, 3
	CodeRequestedRangeNotSatisfiable Code = http.StatusRequestedRangeNotSatisfiable  // RFC 9110, 15.5.17
)

var (
	// ErrMalformedPlaceholder is wrapped by a CompileError when a "<...>" token cannot be parsed.
	ErrMalformedPlaceholder = errors.New("malformed placeholder")

	// ErrUndefinedType is wrapped by a CompileError when a placeholder names an unregistered type.
	ErrUndefinedType = errors.New("undefined type")

	// ErrDuplicateName is wrapped by a CompileError when a rule uses a placeholder name twice.
	ErrDuplicateName = errors.New("duplicate placeholder name")

	// ErrProtocolPrecondition marks programming errors against the response lifecycle.
	ErrProtocolPrecondition = errors.New("protocol precondition violated")

	// ErrHeadWritten is returned when the head is written (or altered) a second time.
	ErrHeadWritten = errors.Mark(errors.New("head already written"), ErrProtocolPrecondition)

	// ErrHeadFailed is returned when the body is used after the head could not be written.
	ErrHeadFailed = errors.Mark(errors.New("head write failed earlier"), ErrProtocolPrecondition)

	// ErrMissingParam is returned by reverse construction when a placeholder has no value.
	ErrMissingParam = errors.New("missing parameter")

	// ErrInvalidParam is returned by reverse construction when a value would not match its placeholder.
	ErrInvalidParam = errors.New("invalid parameter")

	// ErrNoRoute is returned when reversing a name that no route was registered under.
	ErrNoRoute = errors.New("no route named")

	// ErrExhausted describes a dispatch where no route both matched and fully handled the request.
	ErrExhausted = errors.New("no route handled the request")
)

// CompileError is returned when a rule cannot be compiled. It is always produced at registration time.
type CompileError struct {
	Rule   string
	Offset int
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile rule %q at offset %d: %s", e.Rule, e.Offset, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Error describes an http error.
type Error struct {
	code Code
	err  error
}

// NewError inits a new error given the error code.
func NewError(c Code, underlying error) *Error {
	return &Error{c, underlying}
}

func (e *Error) Code() Code { return e.code }
func (e *Error) Unwrap() error { return e.err }
func (e *Error) Error() string {
	status := http.StatusText(int(e.Code()))
	if status == "" {
		status = "Unknown"
	}

	return fmt.Sprintf("%s: %s", status, e.err.Error())
}

// CodeOf returns the error's status code if it is or wraps an [*Error] and
// [CodeUnknown] otherwise.
func CodeOf(err error) Code {
	if httpErr, ok := asError(err); ok {
		return httpErr.Code()
	}
	return CodeUnknown
}

// asError uses errors.As to unwrap any error and look for a *Error.
func asError(err error) (*Error, bool) {
	var httpErr *Error
	ok := errors.As(err, &httpErr)
	return httpErr, ok
}

// WriteError renders err as a plain-text response and ends it. The status is taken from [CodeOf], falling
// back to 500. The body only carries the status text so internal details never leak to the client.
func WriteError(resp *Response, err error) error {
	code := CodeOf(err)
	if code == CodeUnknown {
		code = CodeInternalServerError
	}

	if rerr := resp.SetStatus(int(code)); rerr != nil {
		return rerr
	}

	resp.Header().Set("Content-Type", "text/plain; charset=utf-8")
	resp.Header().Set("X-Content-Type-Options", "nosniff")

	return resp.Expand([]byte(http.StatusText(int(code)) + "\n"))
}
