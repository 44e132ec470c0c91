package bapp

import (
	"net/http"

	"github.com/advdv/broute"
	"github.com/carlmjohnson/requests"
	"go.opentelemetry.io/otel/trace"
)

// Runtime provides access to app-scoped dependencies.
// Inject this into handler constructors via fx instead of pulling from context.
//
// Example:
//
//	type Handlers struct {
//	    rt *bapp.Runtime[Env]
//	}
//
//	func NewHandlers(rt *bapp.Runtime[Env]) *Handlers {
//	    return &Handlers{rt: rt}
//	}
//
//	func (h *Handlers) GetItem(req *broute.Request, resp *broute.Response, c *broute.Context) error {
//	    env := h.rt.Env()
//	    url, _ := h.rt.Reverse("get-item", map[string]string{"id": c.Param("id")})
//	    // ...
//	}
type Runtime[E Environment] struct {
	env       E
	router    *Router
	transport http.RoundTripper
}

// NewRuntime creates a new Runtime with the given dependencies.
func NewRuntime[E Environment](env E, router *Router, transport http.RoundTripper) *Runtime[E] {
	return &Runtime[E]{
		env:       env,
		router:    router,
		transport: transport,
	}
}

// Env returns the environment configuration.
func (r *Runtime[E]) Env() E {
	return r.env
}

// Reverse returns the URL for a named route with the given parameters.
// The route must have been registered with a name.
func (r *Runtime[E]) Reverse(name string, params map[string]string) (string, error) {
	return r.router.Reverse(name, params)
}

// NewRequest returns a request builder for an outbound call made while handling the route attempt c.
// The call is traced; when Fetch is given a context without a span the outbound span becomes a child of
// the route span, so c.Context() and context.Background() both end up in the request's trace.
//
//	var out Item
//	err := h.rt.NewRequest(c).
//	    BaseURL("https://api.example.com").
//	    Pathf("/items/%s", id).
//	    ToJSON(&out).
//	    Fetch(c.Context())
func (r *Runtime[E]) NewRequest(c *broute.Context) *requests.Builder {
	return requests.New().Transport(withRouteParent(r.transport, trace.SpanFromContext(c.Context())))
}
