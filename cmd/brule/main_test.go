package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/advdv/broute"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writeTypes(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "types.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCompile(t *testing.T) {
	out, err := run(t, "compile", "/user/<int:id>/<name>")
	require.NoError(t, err)
	assert.Equal(t, "pattern: ^/user/(?P<id>(?:\\d+))/(?P<name>(?:\\w+))$\nparams:  id, name\n", out)
}

func TestCompileErrors(t *testing.T) {
	for _, tt := range []struct {
		name string
		rule string
		want error
	}{
		{"undefined type", "/x/<hex:sha>", broute.ErrUndefinedType},
		{"malformed", "/x/<id", broute.ErrMalformedPlaceholder},
		{"duplicate", "/<a>/<a>", broute.ErrDuplicateName},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "compile", tt.rule)
			require.ErrorIs(t, err, tt.want)

			var cerr *broute.CompileError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.rule, cerr.Rule)
		})
	}
}

func TestMatch(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		out, err := run(t, "match", "/user/<int:id>/<name>", "/user/42/bob")
		require.NoError(t, err)
		assert.Equal(t, "id=42\nname=bob\n", out)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := run(t, "match", "/user/<int:id>", "/user/abc")
		require.ErrorContains(t, err, "does not match")
	})
}

func TestURL(t *testing.T) {
	t.Run("build", func(t *testing.T) {
		out, err := run(t, "url", "/user/<int:id>/edit", "id=42")
		require.NoError(t, err)
		assert.Equal(t, "/user/42/edit\n", out)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := run(t, "url", "/user/<int:id>/edit")
		require.ErrorIs(t, err, broute.ErrMissingParam)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := run(t, "url", "/user/<int:id>/edit", "id=abc")
		require.ErrorIs(t, err, broute.ErrInvalidParam)
	})

	t.Run("bad argument", func(t *testing.T) {
		_, err := run(t, "url", "/user/<int:id>/edit", "id")
		require.ErrorContains(t, err, "expected name=value")
	})
}

func TestTypesFile(t *testing.T) {
	path := writeTypes(t, "types:\n  hex: \"[0-9a-f]+\"\n")

	t.Run("custom type compiles", func(t *testing.T) {
		out, err := run(t, "match", "--types", path, "/commits/<hex:sha>", "/commits/deadbeef")
		require.NoError(t, err)
		assert.Equal(t, "sha=deadbeef\n", out)
	})

	t.Run("listed", func(t *testing.T) {
		out, err := run(t, "types", "--types", path)
		require.NoError(t, err)
		assert.Contains(t, out, "hex      [0-9a-f]+\n")
		assert.Contains(t, out, "int      \\d+\n")
	})

	t.Run("redefining a default fails", func(t *testing.T) {
		bad := writeTypes(t, "types:\n  int: \"[0-9]\"\n")
		_, err := run(t, "types", "--types", bad)
		require.ErrorContains(t, err, `type "int" already registered`)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		bad := writeTypes(t, "types: [")
		_, err := run(t, "types", "--types", bad)
		require.ErrorContains(t, err, "parse types file")
	})

	t.Run("invalid fragment", func(t *testing.T) {
		bad := writeTypes(t, "types:\n  broken: \"(\"\n")
		_, err := run(t, "types", "--types", bad)
		require.ErrorContains(t, err, `invalid fragment for type "broken"`)
	})
}
