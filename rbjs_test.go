package rbjs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rbjs-dev/rbjs/errors"
)

func TestCompile(t *testing.T) {
	res, err := Compile(context.Background(), `(send nil :puts (str "hi"))`)
	require.NoError(t, err)
	require.Contains(t, res.Code, `return self.$puts("hi");`)
	require.Equal(t, []string{"puts"}, res.MethodCalls)
	require.NotNil(t, res.SourceMap)
	require.False(t, res.Cached)
}

func TestCompileOptions(t *testing.T) {
	res, err := Compile(context.Background(), "(int 1)",
		WithFilename("lib/util.rb"),
		WithOptions(map[string]any{"requirable": true, "load": false}),
		WithOption("load", true))
	require.NoError(t, err)
	require.Contains(t, res.Code, `RB.modules["lib/util"] = function(RB) {`)
	require.Contains(t, res.Code, `RB.load_normalized("lib/util");`)
}

func TestCompileError(t *testing.T) {
	_, err := Compile(context.Background(), "(int 1)", WithOption("arity_chek", true))
	require.Error(t, err)
	var ce *errors.CompileError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, errors.E4002, ce.Code)
}

func TestCompileCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compile(ctx, "(int 1)")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.rb")
	source := "# use_strict: true\n(send nil :require_relative (str \"lib/helper\"))\n"
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))

	res, err := CompileFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.ToSlash(filepath.Join(dir, "lib/helper"))}, res.Requires)
	require.Equal(t, map[string]any{"use_strict": true}, res.Directives)
	require.Contains(t, res.Code, `"use strict";`)

	res, err = CompileFile(context.Background(), path, WithFilename("app.rb"))
	require.NoError(t, err)
	require.Equal(t, []string{"lib/helper"}, res.Requires)

	_, err = CompileFile(context.Background(), filepath.Join(dir, "missing.rb"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileCache(t *testing.T) {
	dir := t.TempDir()
	reg := prometheus.NewRegistry()
	opts := []Option{WithFileCache(dir, 0), WithMetrics(reg), WithFilename("a.rb")}

	first, err := Compile(context.Background(), `(send nil :require (str "set"))`, opts...)
	require.NoError(t, err)
	require.False(t, first.Cached)

	second, err := Compile(context.Background(), `(send nil :require (str "set"))`, opts...)
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Equal(t, first.Code, second.Code)
	require.Equal(t, first.Requires, second.Requires)
	require.Equal(t, first.SourceMap, second.SourceMap)

	fc, err := OpenCache(dir, 0, WithMetrics(reg))
	require.NoError(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(fc.Metrics().Hits))
	require.Equal(t, 1.0, testutil.ToFloat64(fc.Metrics().Misses))
}

func TestSharedCache(t *testing.T) {
	fc, err := OpenCache(t.TempDir(), 0)
	require.NoError(t, err)
	for i, want := range []bool{false, true, true} {
		res, err := Compile(context.Background(), "(int 1)", WithCache(fc))
		require.NoError(t, err)
		require.Equal(t, want, res.Cached, "compilation %d", i)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	_, err := Compile(context.Background(), "(send nil :require (lvar :name))",
		WithLogger(zerolog.New(&buf)),
		WithFilename("dyn.rb"),
		WithOption("dynamic_require_severity", "warning"))
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"file":"dyn.rb"`)
	require.Contains(t, buf.String(), "cannot handle dynamic require")
}
