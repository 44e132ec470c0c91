package broute_test

import (
	"net/url"
	"testing"

	"github.com/advdv/broute"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileRule(t *testing.T) {
	rule, err := broute.CompileRule("/user/<int:id>/edit", broute.DefaultTypes())
	require.NoError(t, err)

	assert.Equal(t, "/user/<int:id>/edit", rule.String())
	assert.Equal(t, `^/user/(?P<id>(?:\d+))/edit$`, rule.Pattern())
	assert.Equal(t, []string{"id"}, rule.Names())
}

func TestRuleMatchPath(t *testing.T) {
	for _, tt := range []struct {
		rule   string
		path   string
		params map[string]string
	}{
		{"/user/<int:id>", "/user/42", map[string]string{"id": "42"}},
		{"/user/<int:id>", "/user/abc", nil},
		{"/user/<int:id>", "/user/42/", nil},
		{"/user/<int:id>", "/api/user/42", nil},
		{"/user/<name>", "/user/bob_1", map[string]string{"name": "bob_1"}},
		{"/user/<name>", "/user/bob-1", nil},
		{"/user/<name>", "/User/bob", nil},
		{"/a.b/<x>", "/axb/y", nil},
		{"/files/<path:rest>", "/files/a/b/c.txt", map[string]string{"rest": "a/b/c.txt"}},
		{"/p/<float:x>,<float:y>", "/p/1.5,2.25", map[string]string{"x": "1.5", "y": "2.25"}},
		{"/<slug:a>-<int:b>", "/foo-bar-12", map[string]string{"a": "foo-bar", "b": "12"}},
		{
			"/o/<uuid:id>", "/o/123e4567-e89b-12d3-a456-426614174000",
			map[string]string{"id": "123e4567-e89b-12d3-a456-426614174000"},
		},
		{"/static", "/static", map[string]string{}},
	} {
		t.Run(tt.rule+" "+tt.path, func(t *testing.T) {
			rule, err := broute.CompileRule(tt.rule, broute.DefaultTypes())
			require.NoError(t, err)

			params, ok := rule.MatchPath(tt.path)
			require.Equal(t, tt.params != nil, ok)
			if ok {
				assert.Equal(t, tt.params, params)
			}
		})
	}
}

func TestRuleWithoutRegistry(t *testing.T) {
	rule, err := broute.CompileRule("/x/<whatever:id>", nil)
	require.NoError(t, err)

	params, ok := rule.MatchPath("/x/abc")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"id": "abc"}, params)

	_, ok = rule.MatchPath("/x/a/b")
	assert.False(t, ok)
}

func TestRuleCompileErrors(t *testing.T) {
	for _, tt := range []struct {
		rule   string
		offset int
		target error
	}{
		{"/a>", 2, broute.ErrMalformedPlaceholder},
		{"/a/<id", 3, broute.ErrMalformedPlaceholder},
		{"/a/<b<c>>", 3, broute.ErrMalformedPlaceholder},
		{"/a/<>", 3, broute.ErrMalformedPlaceholder},
		{"/a/<1d>", 3, broute.ErrMalformedPlaceholder},
		{"/a/<int:>", 3, broute.ErrMalformedPlaceholder},
		{"/a/<in-t:id>", 3, broute.ErrMalformedPlaceholder},
		{"/a/<nope:id>", 3, broute.ErrUndefinedType},
		{"/<a>/<int:a>", 5, broute.ErrDuplicateName},
	} {
		t.Run(tt.rule, func(t *testing.T) {
			_, err := broute.CompileRule(tt.rule, broute.DefaultTypes())
			require.ErrorIs(t, err, tt.target)

			var cerr *broute.CompileError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.rule, cerr.Rule)
			assert.Equal(t, tt.offset, cerr.Offset)
		})
	}

	assert.PanicsWithValue(t,
		`broute: compile rule "/a/<nope:id>" at offset 3: "nope", got: [float int path slug string uuid]: undefined type`,
		func() { broute.MustCompileRule("/a/<nope:id>", broute.DefaultTypes()) })
}

func TestRuleBuild(t *testing.T) {
	reg := broute.DefaultTypes()

	t.Run("round trip", func(t *testing.T) {
		for _, tt := range []struct {
			rule   string
			params map[string]string
			want   string
		}{
			{"/user/<int:id>/edit", map[string]string{"id": "42"}, "/user/42/edit"},
			{"/files/<path:rest>", map[string]string{"rest": "a/b c.txt"}, "/files/a/b%20c.txt"},
			{"/<slug:a>-<int:b>", map[string]string{"a": "x-y", "b": "7"}, "/x-y-7"},
			{"/static", map[string]string{"ignored": "1"}, "/static"},
		} {
			rule := broute.MustCompileRule(tt.rule, reg)

			got, err := rule.Build(tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			if len(rule.Names()) == 0 {
				continue
			}

			decoded, err := url.PathUnescape(got)
			require.NoError(t, err)

			params, ok := rule.MatchPath(decoded)
			require.True(t, ok)
			assert.Equal(t, tt.params, params)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := broute.MustCompileRule("/user/<int:id>", reg).Build(nil)
		require.ErrorIs(t, err, broute.ErrMissingParam)
	})

	t.Run("invalid for type", func(t *testing.T) {
		_, err := broute.MustCompileRule("/user/<int:id>", reg).Build(map[string]string{"id": "4a"})
		require.ErrorIs(t, err, broute.ErrInvalidParam)
		assert.Contains(t, err.Error(), `"id"="4a" is not a valid int`)
	})
}
