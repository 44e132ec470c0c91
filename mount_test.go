package broute_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/advdv/broute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoPath() broute.HandlerFunc {
	return broute.Terminal(func(req *broute.Request, resp *broute.Response, c *broute.Context) error {
		return resp.ExpandUTF8("path:" + req.Path() + " id:" + c.Param("id"))
	})
}

func newAPI() *broute.Router {
	api := broute.NewRouter()
	api.Get("/", echoPath())
	api.Get("/users/<int:id>", echoPath())
	api.Get("/v1/<path:rest>", echoPath())

	return api
}

func TestMount(t *testing.T) {
	rt := broute.NewRouter()
	rt.Mount("/api", newAPI())

	for target, want := range map[string]string{
		"/api":                "path:/ id:",
		"/api/":               "path:/ id:",
		"/api/users/12":       "path:/users/12 id:12",
		"/api/v1/users/123/x": "path:/v1/users/123/x id:",
	} {
		outcome, res := dispatch(t, rt, http.MethodGet, target)
		require.Equal(t, broute.Handled, outcome, target)
		assert.Equal(t, want, readBody(t, res), target)
	}

	for _, target := range []string{"/apix", "/api/users/abc", "/other"} {
		outcome, res := dispatch(t, rt, http.MethodGet, target)
		assert.Equal(t, broute.Exhausted, outcome, target)
		assert.Nil(t, res, target)
	}
}

func TestMountFallsThrough(t *testing.T) {
	rt := broute.NewRouter()
	rt.Mount("/api", newAPI())
	rt.Get("/api/health", text("parent"))

	outcome, res := dispatch(t, rt, http.MethodGet, "/api/health")
	require.Equal(t, broute.Handled, outcome)
	assert.Equal(t, "parent", readBody(t, res))
}

func TestMountMiddlewareSeesOriginalPath(t *testing.T) {
	var mwPath string

	rt := broute.NewRouter()
	rt.Use(func(req *broute.Request, _ *broute.Response, next broute.Next, _ *broute.Context) bool {
		mwPath = req.Path()
		return next()
	})
	rt.Mount("/api", newAPI())

	outcome, res := dispatch(t, rt, http.MethodGet, "/api/users/7")
	require.Equal(t, broute.Handled, outcome)
	assert.Equal(t, "/api/users/7", mwPath)
	assert.Equal(t, "path:/users/7 id:7", readBody(t, res))
}

func TestMountNested(t *testing.T) {
	v2 := broute.NewRouter()
	v2.Get("/items/<int:id>", echoPath())

	api := broute.NewRouter()
	api.Mount("/v2", v2)

	rt := broute.NewRouter()
	rt.Mount("/api", api)

	outcome, res := dispatch(t, rt, http.MethodGet, "/api/v2/items/5")
	require.Equal(t, broute.Handled, outcome)
	assert.Equal(t, "path:/items/5 id:5", readBody(t, res))
}

func TestMountEncodedPath(t *testing.T) {
	api := broute.NewRouter()
	api.Get("/files/<path:name>", broute.Terminal(func(req *broute.Request, resp *broute.Response, c *broute.Context) error {
		return resp.ExpandUTF8(req.URL.RawPath + " " + c.Param("name"))
	}))

	rt := broute.NewRouter()
	rt.Mount("/api", api)

	outcome, res := dispatch(t, rt, http.MethodGet, "/api/files/a%2Fb")
	require.Equal(t, broute.Handled, outcome)
	assert.Equal(t, "/files/a%2Fb a/b", readBody(t, res))
}

func TestMountInvalidPrefix(t *testing.T) {
	for _, prefix := range []string{"", "api", "/api/", "/", "/<id>"} {
		assert.PanicsWithValue(t, "broute: invalid mount prefix "+prefix, func() {
			broute.NewRouter().Mount(prefix, broute.NewRouter())
		}, prefix)
	}
}

func TestMountInheritsValues(t *testing.T) {
	api := broute.NewRouter()
	api.Get("/x", func(_ *broute.Request, _ *broute.Response, _ broute.Next, c *broute.Context) bool {
		c.Set(ctxKey("sub"), "leaked")
		c.Set(ctxKey("parent"), "overwritten")
		return false
	})
	api.Get("/<id>", broute.Terminal(func(_ *broute.Request, resp *broute.Response, c *broute.Context) error {
		return resp.ExpandUTF8(fmt.Sprintf("%v %v %v", c.Value(ctxKey("parent")), c.Value(ctxKey("sub")), c.Params()))
	}))

	rt := broute.NewRouter()
	rt.Use(func(_ *broute.Request, _ *broute.Response, next broute.Next, c *broute.Context) bool {
		c.Set(ctxKey("parent"), "from-parent")
		return next()
	})
	rt.Mount("/api", api)

	outcome, res := dispatch(t, rt, http.MethodGet, "/api/x")
	require.Equal(t, broute.Handled, outcome)
	assert.Equal(t, "from-parent <nil> map[id:x]", readBody(t, res))
}

func TestMountInheritsValuesNested(t *testing.T) {
	v2 := broute.NewRouter()
	v2.Get("/items", broute.Terminal(func(_ *broute.Request, resp *broute.Response, c *broute.Context) error {
		return resp.ExpandUTF8(fmt.Sprintf("%v %v", c.Value(ctxKey("root")), c.Value(ctxKey("api"))))
	}))

	api := broute.NewRouter()
	api.Use(func(_ *broute.Request, _ *broute.Response, next broute.Next, c *broute.Context) bool {
		c.Set(ctxKey("api"), "from-api")
		return next()
	})
	api.Mount("/v2", v2)

	rt := broute.NewRouter()
	rt.Use(func(_ *broute.Request, _ *broute.Response, next broute.Next, c *broute.Context) bool {
		c.Set(ctxKey("root"), "from-root")
		return next()
	})
	rt.Mount("/api", api)

	outcome, res := dispatch(t, rt, http.MethodGet, "/api/v2/items")
	require.Equal(t, broute.Handled, outcome)
	assert.Equal(t, "from-root from-api", readBody(t, res))
}
