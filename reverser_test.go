package broute_test

import (
	"testing"

	"github.com/advdv/broute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverser(t *testing.T) {
	rev := broute.NewReverser()
	post, err := broute.NewRuleRoute("/blog/<int:id>/<slug:title>", broute.DefaultTypes())
	require.NoError(t, err)

	t.Run("should allow naming routes", func(t *testing.T) {
		r := rev.Named("homepage", broute.Exact("/"))
		assert.Equal(t, broute.Exact("/"), r)

		r, err := rev.NamedRoute("blog_post", post)
		require.NoError(t, err)
		assert.Same(t, post, r)
	})

	t.Run("should reverse named routes", func(t *testing.T) {
		res, err := rev.Reverse("homepage", nil)
		require.NoError(t, err)
		assert.Equal(t, "/", res)

		res, err = rev.Reverse("blog_post", map[string]string{"id": "12", "title": "hello-world"})
		require.NoError(t, err)
		assert.Equal(t, "/blog/12/hello-world", res)
	})

	t.Run("should error if name already exists", func(t *testing.T) {
		_, err := rev.NamedRoute("homepage", broute.Exact("/home"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("should panic for Named error", func(t *testing.T) {
		assert.PanicsWithValue(t, "broute: route name must not be empty", func() {
			rev.Named("", broute.Exact("/"))
		})
	})

	t.Run("should error if reversing unknown name", func(t *testing.T) {
		_, err := rev.Reverse("bogus", nil)
		require.ErrorIs(t, err, broute.ErrNoRoute)
		assert.Contains(t, err.Error(), `"bogus", got: [blog_post homepage]`)
	})

	t.Run("should error if url building fails", func(t *testing.T) {
		_, err := rev.Reverse("blog_post", map[string]string{"id": "12"})
		require.ErrorIs(t, err, broute.ErrMissingParam)
		assert.Contains(t, err.Error(), "failed to build")

		_, err = rev.Reverse("blog_post", map[string]string{"id": "twelve", "title": "x"})
		require.ErrorIs(t, err, broute.ErrInvalidParam)
	})
}
