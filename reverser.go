package broute

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Reverser keeps track of named routes and allows building URLs.
type Reverser struct {
	routes map[string]Route
}

// NewReverser inits the reverser.
func NewReverser() *Reverser {
	return &Reverser{make(map[string]Route)}
}

// Reverse builds the url of the named route from params.
func (r Reverser) Reverse(name string, params map[string]string) (string, error) {
	route, ok := r.routes[name]
	if !ok {
		names := lo.Keys(r.routes)
		slices.Sort(names)

		return "", errors.Wrapf(ErrNoRoute, "%q, got: %v", name, names)
	}

	res, err := route.URL(params)
	if err != nil {
		return "", errors.Wrap(err, "failed to build")
	}

	return res, nil
}

// Named is a convenience method that panics if naming the route fails.
func (r Reverser) Named(name string, route Route) Route {
	route, err := r.NamedRoute(name, route)
	if err != nil {
		panic("broute: " + err.Error())
	}

	return route
}

// NamedRoute will register route under name while returning it as well.
func (r Reverser) NamedRoute(name string, route Route) (Route, error) {
	if name == "" {
		return route, errors.New("route name must not be empty")
	}

	if _, exists := r.routes[name]; exists {
		return route, errors.Newf("route with name %q already exists", name)
	}

	r.routes[name] = route

	return route, nil
}
