package broute

import (
	"log"
	"net/http"
	"strings"
)

// MethodAny registers a route for every request method.
const MethodAny = "*"

// Outcome is the terminal state of a dispatch.
type Outcome int

const (
	// Exhausted means no route both matched and fully handled the request. The server layer is expected
	// to emit a default response.
	Exhausted Outcome = iota
	// Handled means a handler chain reported the request as fully handled.
	Handled
)

func (o Outcome) String() string {
	if o == Handled {
		return "handled"
	}

	return "exhausted"
}

// Router is an ordered collection of routes. Candidates are tried strictly in registration order, the
// first one that matches and fully handles the request wins. Registration must be complete before the
// router serves requests, after that it is read-only and safe for concurrent dispatch.
type Router struct {
	logs        Logger
	types       *TypeRegistry
	reverser    *Reverser
	entries     []entry
	middlewares struct {
		captured bool
		buffered []HandlerFunc
	}
}

// entry is a registered (method, route, handler) triple.
type entry struct {
	method  string
	route   Route
	handler HandlerFunc
}

// NewRouter creates a new Router with default settings.
func NewRouter() *Router {
	return NewRouterWith(DefaultTypes(), NewStdLogger(log.Default()), NewReverser())
}

// NewRouterWith creates a Router with custom settings. A nil types registry compiles every placeholder
// with [DefaultFragment] and performs no type checking.
func NewRouterWith(types *TypeRegistry, logger Logger, reverser *Reverser) *Router {
	if logger == nil {
		logger = NopLogger{}
	}

	return &Router{
		logs:     logger,
		types:    types,
		reverser: reverser,
	}
}

// Types returns the registry rules are compiled with.
func (m *Router) Types() *TypeRegistry { return m.types }

// Logger returns the logger responses created for this router should report to.
func (m *Router) Logger() Logger { return m.logs }

// Reverse returns the url based on the route name and parameter values.
func (m *Router) Reverse(name string, params map[string]string) (string, error) {
	return m.reverser.Reverse(name, params)
}

// Use allows providing of middleware: handlers that are sequenced in front of every route registered
// afterwards.
func (m *Router) Use(mw ...HandlerFunc) {
	m.ensureNoUseAfterHandle()
	m.middlewares.buffered = append(m.middlewares.buffered, mw...)
}

// Handle registers a route for method (or [MethodAny]). An optional name makes the route reversible.
func (m *Router) Handle(method string, route Route, handler HandlerFunc, name ...string) {
	if handler == nil {
		panic("broute: nil handler passed to Handle")
	}

	m.middlewares.captured = true

	if len(name) > 0 {
		route = m.reverser.Named(name[0], route)
	}

	chain := append(append([]HandlerFunc{}, m.middlewares.buffered...), handler)
	m.entries = append(m.entries, entry{
		method:  strings.ToUpper(method),
		route:   route,
		handler: Chain(chain[0], chain[1:]...),
	})
}

// HandleRule compiles rule and registers it. A rule without placeholders becomes an [ExactRoute]. It
// panics with the [*CompileError] message if the rule is invalid, use [Router.HandleRuleE] to handle it.
func (m *Router) HandleRule(method, rule string, handler HandlerFunc, name ...string) {
	if err := m.HandleRuleE(method, rule, handler, name...); err != nil {
		panic("broute: " + err.Error())
	}
}

// HandleRuleE is like [Router.HandleRule] but returns the compile error.
func (m *Router) HandleRuleE(method, rule string, handler HandlerFunc, name ...string) error {
	route, err := m.compile(rule)
	if err != nil {
		return err
	}

	m.Handle(method, route, handler, name...)

	return nil
}

func (m *Router) compile(rule string) (Route, error) {
	if !strings.ContainsAny(rule, "<>") {
		return Exact(rule), nil
	}

	return NewRuleRoute(rule, m.types)
}

// Get registers a GET route for rule.
func (m *Router) Get(rule string, handler HandlerFunc, name ...string) {
	m.HandleRule(http.MethodGet, rule, handler, name...)
}

// Post registers a POST route for rule.
func (m *Router) Post(rule string, handler HandlerFunc, name ...string) {
	m.HandleRule(http.MethodPost, rule, handler, name...)
}

// Put registers a PUT route for rule.
func (m *Router) Put(rule string, handler HandlerFunc, name ...string) {
	m.HandleRule(http.MethodPut, rule, handler, name...)
}

// Patch registers a PATCH route for rule.
func (m *Router) Patch(rule string, handler HandlerFunc, name ...string) {
	m.HandleRule(http.MethodPatch, rule, handler, name...)
}

// Delete registers a DELETE route for rule.
func (m *Router) Delete(rule string, handler HandlerFunc, name ...string) {
	m.HandleRule(http.MethodDelete, rule, handler, name...)
}

// Any registers a route for rule that matches every method.
func (m *Router) Any(rule string, handler HandlerFunc, name ...string) {
	m.HandleRule(MethodAny, rule, handler, name...)
}

// Dispatch routes req. Candidates for the request method (and [MethodAny]) are tried in registration
// order. A matching candidate's handler chain runs to completion before the next one is considered: when
// it returns false the next candidate is tried with a fresh Context. The continuation handed to the chain
// tries the remaining candidates directly, in which case its result is final.
func (m *Router) Dispatch(req *Request, resp *Response) Outcome {
	if m.dispatch(req, resp, 0, nil) {
		return Handled
	}

	return Exhausted
}

// dispatch tries the candidates from index from onwards. Every candidate gets a fresh Context that
// holds the inherited values and nothing else.
func (m *Router) dispatch(req *Request, resp *Response, from int, inherited map[any]any) bool {
	c := NewContext(req.Context())

	for i := from; i < len(m.entries); i++ {
		ent := &m.entries[i]
		if ent.method != MethodAny && ent.method != req.Method {
			continue
		}

		c.reset(req.Context(), inherited)
		if !ent.route.Match(req, c) {
			continue
		}

		continued := false
		handled := ent.handler(req, resp, func() bool {
			continued = true
			return m.dispatch(req, resp, i+1, inherited)
		}, c)

		if handled || continued {
			return handled
		}
	}

	return false
}

func (m *Router) ensureNoUseAfterHandle() {
	if m.middlewares.captured {
		panic("broute: cannot call Use() after calling Handle")
	}
}
