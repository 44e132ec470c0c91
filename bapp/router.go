package bapp

import (
	"github.com/advdv/broute"
	"go.uber.org/zap"
)

// Router is an alias for broute.Router.
type Router = broute.Router

// NewRouter creates a new Router with the default types that reports to logger.
func NewRouter(logger *zap.Logger) *Router {
	return broute.NewRouterWith(
		broute.DefaultTypes(),
		NewRouteLogger(logger),
		broute.NewReverser(),
	)
}
