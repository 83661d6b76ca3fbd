package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbjs-dev/rbjs/internal/token"
)

func TestSourceLocation_String(t *testing.T) {
	tests := []struct {
		name     string
		loc      SourceLocation
		expected string
	}{
		{"with filename", SourceLocation{Filename: "main.rb", Line: 10, Column: 5}, "main.rb:10:5"},
		{"without filename", SourceLocation{Line: 10, Column: 5}, "10:5"},
		{"zero location", SourceLocation{}, "0:0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.loc.String())
		})
	}
	require.True(t, SourceLocation{}.IsZero())
	require.False(t, SourceLocation{Line: 1}.IsZero())
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{
		Option: "dynamic_require_severity",
		Value:  "loud",
		Valid:  []any{"error", "warning", "ignore"},
	}
	require.Equal(t,
		`invalid value "loud" for option "dynamic_require_severity" (valid values: "error", "warning", "ignore")`,
		err.Error())
	require.Equal(t, E4001, err.Code())

	unknown := &ConfigError{Option: "frobnicate", Message: `unknown option "frobnicate"`, Unknown: true}
	require.Equal(t, E4002, unknown.Code())
}

func TestCompileErrorWrapsCause(t *testing.T) {
	cause := &UnsupportedError{Kind: "flip_flop", Pos: token.Position{Line: 2}}
	err := &CompileError{
		Code:       E2001,
		Message:    cause.Error(),
		Filename:   "app.rb",
		Line:       3,
		SourceLine: "a..b",
		Cause:      cause,
	}
	require.Equal(t, "app.rb:3: unsupported syntax node: flip_flop", err.Error())
	require.Equal(t, "app.rb:3", err.Location())

	var unsupported *UnsupportedError
	require.True(t, errors.As(err, &unsupported))
	require.Equal(t, "flip_flop", unsupported.Kind)
	require.Equal(t, 2, unsupported.Position().Line)
}

func TestCompileErrorWithoutLocation(t *testing.T) {
	err := &CompileError{Message: "boom"}
	require.Equal(t, "boom", err.Error())
	require.Empty(t, err.Location())
	require.Nil(t, err.Unwrap())
}

func TestSyntaxErrorCode(t *testing.T) {
	require.Equal(t, E1001, (&SyntaxError{Message: "x"}).Code())
	err := Syntaxf(E2002, token.NoPos, "Invalid %s", "break")
	require.Equal(t, "Invalid break", err.Error())
	require.Equal(t, E2002, err.Code())
	require.Equal(t, "compile", err.Code().Category())
}

func TestCodeCategories(t *testing.T) {
	require.Equal(t, "syntax", E1004.Category())
	require.Equal(t, "config", E4002.Category())
	require.Equal(t, "unknown", ErrorCode("X").Category())
	require.Equal(t, "unknown error", ErrorCode("E9999").Description())
	require.Equal(t, "dynamic require", E2005.Description())
}

func TestSuggestSimilar(t *testing.T) {
	names := []string{"arity_check", "await", "esm", "eval", "irb", "method_missing"}

	got := SuggestSimilar("arity-chek", names)
	require.Len(t, got, 1)
	require.Equal(t, "arity_check", got[0].Value)

	require.Empty(t, SuggestSimilar("completely_different", names))
	require.Empty(t, SuggestSimilar("", names))
	require.Empty(t, SuggestSimilar("esm", names), "exact matches are not suggestions")

	short := SuggestSimilar("evl", names)
	require.Equal(t, []Suggestion{{Value: "eval", Distance: 1}}, short)
}

func TestFormatSuggestions(t *testing.T) {
	require.Equal(t, "", FormatSuggestions(nil))
	require.Equal(t, "Did you mean 'esm'?", FormatSuggestions([]Suggestion{{Value: "esm"}}))
	require.Equal(t, "Did you mean one of: 'a', 'b'?",
		FormatSuggestions([]Suggestion{{Value: "a"}, {Value: "b"}}))
}

func TestEditDistance(t *testing.T) {
	require.Equal(t, 0, editDistance("abc", "abc"))
	require.Equal(t, 3, editDistance("", "abc"))
	require.Equal(t, 3, editDistance("kitten", "sitting"))
	require.Equal(t, 1, editDistance("ü", "u"))
}

func TestFormatterPlain(t *testing.T) {
	err := &CompileError{
		Code:        E4002,
		Message:     `unknown option "evl"`,
		Filename:    "app.rb",
		Line:        4,
		Column:      3,
		SourceLine:  "x = 1",
		Suggestions: []Suggestion{{Value: "eval"}},
	}
	out := err.Pretty(false)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Equal(t, `error[E4002]: unknown option "evl"`, lines[0])
	require.Equal(t, "  --> app.rb:4:3", lines[1])
	require.Equal(t, "   |", lines[2])
	require.Equal(t, " 4 | x = 1", lines[3])
	require.Equal(t, "   |   ^", lines[4])
	require.Equal(t, "   = hint: Did you mean 'eval'?", lines[5])
}

func TestFormatMultiple(t *testing.T) {
	f := NewFormatter(false)
	out := f.FormatMultiple([]*FormattedError{{Message: "one"}, {Message: "two"}})
	require.Contains(t, out, "error[1/2]: one")
	require.Contains(t, out, "error[2/2]: two")
	require.Equal(t, "error: solo\n", f.FormatMultiple([]*FormattedError{{Message: "solo"}}))
}

func TestFormatterColor(t *testing.T) {
	f := NewFormatter(true)
	out := f.Format(&FormattedError{Message: "boom"})
	require.Contains(t, out, "\x1b[")
	require.Contains(t, out, "boom")
}
