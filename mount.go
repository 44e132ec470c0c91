package broute

import (
	"strings"
)

// mountParam captures the remainder of the path below a mount point.
const mountParam = "mounted"

// mountTypes only knows the catch-all type used below a mount point.
var mountTypes = func() *TypeRegistry {
	reg := NewTypeRegistry()
	reg.MustRegister("path", `.*`)

	return reg
}()

// Mount dispatches every request for prefix, or below it, into sub with the prefix stripped from the
// path. Middleware registered via [Router.Use] sees the original path; the strip happens after
// middleware. Values the parent chain set on the [Context] are visible to every handler in sub, while
// route parameters are not. When sub exhausts its routes the parent falls through to its next candidate. The prefix
// is literal and must not end with a slash.
func (m *Router) Mount(prefix string, sub *Router) {
	if strings.ContainsAny(prefix, "<>") || !strings.HasPrefix(prefix, "/") || strings.HasSuffix(prefix, "/") {
		panic("broute: invalid mount prefix " + prefix)
	}

	handler := mountHandler(prefix, sub)

	m.Handle(MethodAny, Exact(prefix), handler)
	m.Handle(MethodAny, RouteOf(MustCompileRule(prefix+"/<path:"+mountParam+">", mountTypes)), handler)
}

func mountHandler(prefix string, sub *Router) HandlerFunc {
	return func(req *Request, resp *Response, _ Next, c *Context) bool {
		p := strings.TrimPrefix(req.URL.Path, prefix)
		if p == "" {
			p = "/"
		}

		rp := ""
		if req.URL.RawPath != "" {
			rp = strings.TrimPrefix(req.URL.RawPath, prefix)
			if rp == "" {
				rp = "/"
			}
		}

		r2 := req.withPath(p, rp)
		r2.ctx = c.Context()

		return sub.dispatch(r2, resp, 0, c.values)
	}
}
