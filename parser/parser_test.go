package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbjs-dev/rbjs/ast"
	rberrors "github.com/rbjs-dev/rbjs/errors"
)

func TestParseForms(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"literal", "(int 1)", "(int 1)"},
		{"nested", `(send nil :puts (str "hi"))`, `(send nil :puts (str "hi"))`},
		{"float", "(float 2.0)", "(float 2.0)"},
		{"underscored int", "(int 1_000)", "(int 1000)"},
		{"quoted symbol", `(sym :"a b")`, `(sym :a b)`},
		{"nil tag", "(nil)", "(nil)"},
		{"several forms", "(int 1) (int 2)", "(begin (int 1) (int 2))"},
		{"escapes", `(str "a\nb")`, `(str "a\nb")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Parse(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, tree.String())
		})
	}
}

func TestEmptyInput(t *testing.T) {
	tree, comments, eof, err := NewSexp().Tokenize(NewSourceBuffer("x.rb", "# only a comment\n"))
	require.NoError(t, err)
	require.Nil(t, tree)
	require.Len(t, comments, 1)
	require.Equal(t, "# only a comment", comments[0].Text)
	require.Equal(t, "", eof)
}

func TestCommentsAndTrailingContent(t *testing.T) {
	src := strings.Join([]string{
		"# use_strict: true",
		"(begin",
		"  # inside",
		"  (int 1))",
		"__END__",
		"raw data",
	}, "\n")
	tree, comments, eof, err := NewSexp().Tokenize(NewSourceBuffer("app.rb", src))
	require.NoError(t, err)
	require.Equal(t, "(begin (int 1))", tree.String())
	require.Len(t, comments, 2)
	require.Equal(t, 0, comments[0].Pos.Line)
	require.Equal(t, "# inside", comments[1].Text)
	require.Equal(t, 1, tree.Loc.Line)
	require.Equal(t, "app.rb", tree.Loc.File)
	require.Equal(t, 3, tree.NodeAt(0).Loc.Line)
	require.Equal(t, "raw data", eof)
}

func TestChildKinds(t *testing.T) {
	tree, err := Parse(`(send (lvar :a) :+ (int 2) nil "s" 1.5)`)
	require.NoError(t, err)
	require.Equal(t, ast.Send, tree.Kind)
	require.Equal(t, ast.Lvar, tree.NodeAt(0).Kind)
	require.Equal(t, ast.Symbol("+"), tree.SymbolAt(1))
	require.Nil(t, tree.Child(3))
	require.Equal(t, "s", tree.StringAt(4))
	require.Equal(t, 1.5, tree.Child(5))
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  rberrors.ErrorCode
		msg   string
	}{
		{"unknown tag", "(frobnicate 1)", rberrors.E1004, `unknown node tag "frobnicate"`},
		{"unclosed", "(begin (int 1)", rberrors.E1003, "unclosed '(' for begin node"},
		{"unterminated", `(str "abc`, rberrors.E1002, "unterminated string literal"},
		{"bare ident", "(send foo)", rberrors.E1001, `unexpected "foo" (node tags must follow '(')`},
		{"top level atom", ":sym", rberrors.E1001, "unexpected symbol :sym (expected '(' at top level)"},
		{"stray paren", ")", rberrors.E1001, "unexpected ')' (expected '(' at top level)"},
		{"missing tag", "()", rberrors.E1001, "unexpected ')' (expected a node tag)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			var syntaxErr *rberrors.SyntaxError
			require.True(t, errors.As(err, &syntaxErr))
			require.Equal(t, tt.code, syntaxErr.Code())
			require.Equal(t, tt.msg, syntaxErr.Error())
		})
	}
}

func TestErrorPosition(t *testing.T) {
	_, _, _, err := NewSexp().Tokenize(NewSourceBuffer("bad.rb", "(begin\n  (oops))"))
	var syntaxErr *rberrors.SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	require.Equal(t, "bad.rb:2:4", syntaxErr.Position().String())
}

func TestMaxDepth(t *testing.T) {
	deep := strings.Repeat("(begin ", 10) + strings.Repeat(")", 10)
	_, _, _, err := NewSexp(WithMaxDepth(5)).Tokenize(NewSourceBuffer("", deep))
	require.ErrorContains(t, err, "maximum nesting depth of 5 exceeded")

	_, _, _, err = NewSexp(WithMaxDepth(10)).Tokenize(NewSourceBuffer("", deep))
	require.NoError(t, err)
}
