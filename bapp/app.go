package bapp

import (
	"context"

	"github.com/advdv/broute"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// App wraps an fx.App for lifecycle management.
type App struct {
	app *fx.App
}

// AppConfig holds configuration for the app.
type AppConfig struct {
	ServerConfig
	FxOptions []fx.Option
}

// Option configures the App.
type Option func(*AppConfig)

// WithFx adds fx options for dependency injection.
func WithFx(fxOpts ...fx.Option) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fxOpts...)
	}
}

// WithHealthHandler sets a custom health check handler.
// If not set, a default handler returning 200 OK is used.
func WithHealthHandler(h broute.HandlerFunc) Option {
	return func(c *AppConfig) {
		c.HealthHandler = h
	}
}

// NewApp creates a batteries-included app with dependency injection.
//
// The routing function can request any types that are provided via fx options.
// At minimum, it should accept *Router for routing.
//
// Example:
//
//	bapp.NewApp[Env](func(r *bapp.Router, h *Handlers) {
//	    r.Get("/items/<int:id>", broute.Terminal(h.GetItem), "get-item")
//	},
//	    bapp.WithFx(fx.Provide(NewHandlers)),
//	).Run()
func NewApp[E Environment](routing any, opts ...Option) *App {
	return &App{
		app: fx.New(FxOptions[E](routing, opts...)...),
	}
}

// FxOptions returns the complete DI graph of an app. It is exported so test helpers can construct the
// identical graph with fxtest.
func FxOptions[E Environment](routing any, opts ...Option) []fx.Option {
	var cfg AppConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	baseOpts := make([]fx.Option, 0, 16+len(cfg.FxOptions))
	baseOpts = append(baseOpts, []fx.Option{
		fx.NopLogger,
		fx.Provide(ParseEnv[E]()),
		fx.Provide(func(e E) Environment { return e }),
		fx.Provide(func(e E) (*zap.Logger, error) { return NewLogger(e) }),
		fx.Provide(NewRouter),
		fx.Provide(NewTracerProvider),
		fx.Provide(NewPropagator),
		fx.Provide(NewRegistry),
		fx.Provide(func(reg *prometheus.Registry) prometheus.Registerer { return reg }),
		fx.Provide(NewMetrics),
		fx.Provide(NewOutboundTransport),
		fx.Supply(cfg.ServerConfig),
		fx.Provide(NewServer),
		fx.Provide(NewRuntime[E]),
		fx.Invoke(startServerHook),
		fx.Invoke(routing),
	}...)

	return append(baseOpts, cfg.FxOptions...)
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() {
	a.app.Run()
}

// Start starts the application with the given context. It blocks until the context is done and stops
// the application afterwards.
func (a *App) Start(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.app.StopTimeout())
	defer cancel()

	return a.app.Stop(stopCtx)
}
