package broute

// Route decides whether a request matches and can build a URL back from parameters. The two variants are
// [ExactRoute] and [RuleRoute]. Routes are immutable and safe for concurrent use.
type Route interface {
	// Match reports whether req matches. On a match the route may populate c with parameters.
	Match(req *Request, c *Context) bool

	// URL builds the path this route matches for the given parameters. It has no side effects.
	URL(params map[string]string) (string, error)
}

// ExactRoute matches one literal path.
type ExactRoute struct {
	path string
}

// Exact inits a route that matches path exactly.
func Exact(path string) ExactRoute {
	return ExactRoute{path: path}
}

// Match implements [Route]. No parameters are extracted.
func (r ExactRoute) Match(req *Request, _ *Context) bool {
	return req.Path() == r.path
}

// URL implements [Route]. The literal path is returned, parameters are ignored.
func (r ExactRoute) URL(map[string]string) (string, error) {
	return r.path, nil
}

func (r ExactRoute) String() string { return r.path }

// RuleRoute matches a compiled [Rule] against the full request path.
type RuleRoute struct {
	rule *Rule
}

// NewRuleRoute compiles rule with reg (which may be nil) into a route.
func NewRuleRoute(rule string, reg *TypeRegistry) (*RuleRoute, error) {
	r, err := CompileRule(rule, reg)
	if err != nil {
		return nil, err
	}

	return &RuleRoute{rule: r}, nil
}

// RouteOf wraps an already compiled rule.
func RouteOf(rule *Rule) *RuleRoute {
	return &RuleRoute{rule: rule}
}

// Rule returns the compiled rule.
func (r *RuleRoute) Rule() *Rule { return r.rule }

// Match implements [Route]. Every named capture is copied into c.
func (r *RuleRoute) Match(req *Request, c *Context) bool {
	m := r.rule.re.FindStringSubmatch(req.Path())
	if m == nil {
		return false
	}

	for _, seg := range r.rule.segs {
		if seg.name != "" {
			c.SetParam(seg.name, m[seg.group])
		}
	}

	return true
}

// URL implements [Route] by substituting params into the rule.
func (r *RuleRoute) URL(params map[string]string) (string, error) {
	return r.rule.Build(params)
}

func (r *RuleRoute) String() string { return r.rule.String() }
