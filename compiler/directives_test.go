package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbjs-dev/rbjs/parser"
)

func TestParseDirectives(t *testing.T) {
	source := "# frozen-string-literal: true\n" +
		"#   use_strict :   false  \n" +
		"# helpers: a, b\n" +
		"# just a note\n" +
		"# nothing: nil\n" +
		"(int 1)\n" +
		"# after: true\n"
	tree, comments, _, err := parser.NewSexp().Tokenize(parser.NewSourceBuffer("a.rb", source))
	require.NoError(t, err)
	got := parseDirectives(tree, comments)
	require.Equal(t, map[string]any{
		"frozen_string_literal": true,
		"use_strict":            false,
		"helpers":               "a, b",
		"nothing":               nil,
	}, got)
}

func TestParseDirectivesWithoutTree(t *testing.T) {
	comments := []parser.Comment{{Text: "# await: fetch*"}, {Text: "#runtime_mode:true"}}
	require.Equal(t, map[string]any{
		"await":        "fetch*",
		"runtime_mode": true,
	}, parseDirectives(nil, comments))
}
