// Package bapptest provides test helpers for bapp applications.
//
// [New] builds the DI graph of [bapp.NewApp] on top of [fxtest.App], so DI errors fail the test right
// away, and keeps hold of the app's router and server so tests can address routes by name:
//
//	bapptest.SetBaseEnv(t, 18081)
//	app := bapptest.New[TestEnv](t, routing, bapp.WithFx(...)).Started()
//
//	var item Item
//	err := app.Request("get-item", map[string]string{"id": "42"}).ToJSON(&item).Fetch(ctx)
package bapptest

import (
	"net/http"
	"testing"

	"github.com/advdv/broute/bapp"
	"github.com/carlmjohnson/requests"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

// App is a bapp application under test.
type App struct {
	*fxtest.App

	tb     testing.TB
	router *bapp.Router
	server *http.Server
}

// New creates a test app with the same DI graph as [bapp.NewApp]. The app is not started.
func New[E bapp.Environment](tb testing.TB, routing any, opts ...bapp.Option) *App {
	app := &App{tb: tb}
	app.App = fxtest.New(tb, append(bapp.FxOptions[E](routing, opts...),
		fx.Populate(&app.router, &app.server))...)

	return app
}

// Started starts the app and stops it again when the test finishes.
func (a *App) Started() *App {
	a.RequireStart()
	a.tb.Cleanup(a.RequireStop)

	return a
}

// Router returns the app's router.
func (a *App) Router() *bapp.Router { return a.router }

// BaseURL is the root of the app's listener.
func (a *App) BaseURL() string { return "http://localhost" + a.server.Addr }

// URL reverses the named route into an absolute URL on the app's listener. The test fails when the route
// cannot be reversed with params.
func (a *App) URL(name string, params map[string]string) string {
	a.tb.Helper()

	path, err := a.router.Reverse(name, params)
	require.NoError(a.tb, err, "reverse %q", name)

	return a.BaseURL() + path
}

// Request returns a request builder aimed at the named route.
func (a *App) Request(name string, params map[string]string) *requests.Builder {
	a.tb.Helper()

	return requests.URL(a.URL(name, params))
}
