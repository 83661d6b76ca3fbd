package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbjs-dev/rbjs/cache"
	"github.com/rbjs-dev/rbjs/compiler"
	"github.com/rbjs-dev/rbjs/fragment"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCompileCode(t *testing.T) {
	out, _, err := execute(t, "", "--no-cache", "-c", "(int 1)")
	require.NoError(t, err)
	require.Contains(t, out, "return 1;")
	require.True(t, strings.HasPrefix(out, "/* Generated by rbjs "))
}

func TestCompileStdin(t *testing.T) {
	out, _, err := execute(t, `(send nil :puts (str "hi"))`, "--no-cache", "--stdin")
	require.NoError(t, err)
	require.Contains(t, out, `return self.$puts("hi");`)
}

func TestCompileFileWithMap(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.rb")
	js := filepath.Join(dir, "main.js")
	sourceMap := filepath.Join(dir, "main.js.map")
	require.NoError(t, os.WriteFile(src, []byte("(send nil :puts (int 1))\n"), 0o644))

	out, _, err := execute(t, "", "--no-cache", src, "-o", js, "--map", sourceMap)
	require.NoError(t, err)
	require.Empty(t, out)

	code, err := os.ReadFile(js)
	require.NoError(t, err)
	require.Contains(t, string(code), "return self.$puts(1);")

	data, err := os.ReadFile(sourceMap)
	require.NoError(t, err)
	m, err := fragment.ParseSourceMap(data)
	require.NoError(t, err)
	require.Equal(t, 3, m.Version)
	require.Equal(t, []string{src}, m.Sources)
}

func TestCompilerFlags(t *testing.T) {
	out, _, err := execute(t, "",
		"--no-cache",
		"--requirable",
		"--filename", "lib/tool.rb",
		"-O", "arity_check=true",
		"-O", "method_missing=false",
		"-c", "(def :go (args (arg :a)) nil)")
	require.NoError(t, err)
	require.Contains(t, out, `RB.modules["lib/tool"] = function(RB) {`)
	require.Contains(t, out, `if (arguments.length !== 1) $ac(arguments.length, 1, self, "go");`)
	require.NotContains(t, out, "RB.add_stubs")
}

func TestESM(t *testing.T) {
	out, _, err := execute(t, "", "--no-cache", "--esm", "-c", "(nil)")
	require.NoError(t, err)
	require.Contains(t, out, "export default RB.queue(function(RB) {")
}

func TestInputErrors(t *testing.T) {
	_, _, err := execute(t, "", "--no-cache")
	require.ErrorContains(t, err, "no input")

	_, _, err = execute(t, "", "--no-cache", "--stdin", "-c", "(nil)")
	require.ErrorContains(t, err, "multiple input sources specified")

	_, _, err = execute(t, "", "--no-cache", "-O", "=1", "-c", "(nil)")
	require.ErrorContains(t, err, "expected name=value")
}

func TestCompileErrorOutput(t *testing.T) {
	_, _, err := execute(t, "", "--no-cache", "-O", "arity_chek=true", "-c", "(nil)")
	require.Error(t, err)
	var buf bytes.Buffer
	printError(&buf, err, false)
	require.Contains(t, buf.String(), "error[E4002]: ")
	require.Contains(t, buf.String(), "arity_check")

	buf.Reset()
	_, _, err = execute(t, "", "--no-cache", "-c", "(yield)")
	require.Error(t, err)
	printError(&buf, err, false)
	require.Contains(t, buf.String(), "invalid yield (no block to yield to)")
	require.Contains(t, buf.String(), "--> (file):1:1")
}

func TestCacheDir(t *testing.T) {
	dir := t.TempDir()
	for range 2 {
		out, _, err := execute(t, "", "--cache-dir", dir, "-c", "(int 7)")
		require.NoError(t, err)
		require.Contains(t, out, "return 7;")
	}
	entries, err := filepath.Glob(filepath.Join(dir, "*"+cache.Extension))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	require.Equal(t, "rbjs dev (compiler "+compiler.Version+", commit unknown, built unknown)\n", out)
}

func TestOptionsCommand(t *testing.T) {
	out, _, err := execute(t, "", "options")
	require.NoError(t, err)
	require.Contains(t, out, "arity_check")
	require.Contains(t, out, "check argument counts of methods and blocks (default false)")
	require.Contains(t, out, "valid values: [error warning ignore]")
}

func TestParseOption(t *testing.T) {
	tests := []struct {
		arg   string
		name  string
		value any
	}{
		{"irb=true", "irb", true},
		{"irb=false", "irb", false},
		{"irb", "irb", true},
		{"await=fetch*,load*", "await", "fetch*,load*"},
		{"file=a=b.rb", "file", "a=b.rb"},
		{" esm =true", "esm", true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			name, value, err := parseOption(tt.arg)
			require.NoError(t, err)
			require.Equal(t, tt.name, name)
			require.Equal(t, tt.value, value)
		})
	}
}
