package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbjs-dev/rbjs/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `(send nil :puts (str "hi \"there\"") (int -12) (float 1.5)) # done`
	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.LPAREN, "("},
		{token.IDENT, "send"},
		{token.NIL, "nil"},
		{token.SYMBOL, "puts"},
		{token.LPAREN, "("},
		{token.IDENT, "str"},
		{token.STRING, `"hi \"there\""`},
		{token.RPAREN, ")"},
		{token.LPAREN, "("},
		{token.IDENT, "int"},
		{token.INT, "-12"},
		{token.RPAREN, ")"},
		{token.LPAREN, "("},
		{token.IDENT, "float"},
		{token.FLOAT, "1.5"},
		{token.RPAREN, ")"},
		{token.RPAREN, ")"},
		{token.COMMENT, "# done"},
		{token.EOF, ""},
	}
	l := New(input)
	for i, tt := range tests {
		tok, err := l.Next()
		require.NoError(t, err)
		require.Equal(t, tt.expectedType, tok.Type, "token %d", i)
		require.Equal(t, tt.expectedLiteral, tok.Literal, "token %d", i)
	}
}

func TestOperatorSymbols(t *testing.T) {
	l := New(`:<=> :[]= :block_given? :"with space"`)
	for _, want := range []string{"<=>", "[]=", "block_given?", `"with space"`} {
		tok, err := l.Next()
		require.NoError(t, err)
		require.Equal(t, token.SYMBOL, tok.Type)
		require.Equal(t, want, tok.Literal)
	}
}

func TestEndMarker(t *testing.T) {
	l := New("(nil)\n__END__\ntrailing\ndata\n")
	var types []token.Type
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		types = append(types, tok.Type)
		if tok.Type == token.EOF {
			break
		}
	}
	require.Equal(t, []token.Type{token.LPAREN, token.NIL, token.RPAREN, token.END, token.EOF}, types)
	require.Equal(t, "trailing\ndata\n", l.Rest())
}

func TestEndMarkerMustStartLine(t *testing.T) {
	l := New("(sym :__END__)")
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		require.NotEqual(t, token.END, tok.Type)
		if tok.Type == token.EOF {
			break
		}
	}
	require.Equal(t, "", l.Rest())
}

func TestPositions(t *testing.T) {
	l := New("(begin\n  (int 1))")
	l.SetFilename("a.rb")
	require.Equal(t, "a.rb", l.Filename())
	var last token.Token
	for i := 0; i < 5; i++ {
		tok, err := l.Next()
		require.NoError(t, err)
		last = tok
	}
	require.Equal(t, token.INT, last.Type)
	require.Equal(t, 1, last.StartPosition.Line)
	require.Equal(t, 7, last.StartPosition.Column)
	require.Equal(t, "  (int 1))", l.GetLineText(last))
	require.Equal(t, "a.rb:2:8", last.StartPosition.String())
}

func TestSaveRestore(t *testing.T) {
	l := New("(a b)")
	_, err := l.Next()
	require.NoError(t, err)
	state := l.SaveState()
	first, err := l.Next()
	require.NoError(t, err)
	l.RestoreState(state)
	again, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, first, again)
}

func TestErrors(t *testing.T) {
	_, err := New(`"open`).Next()
	require.True(t, IsUnterminated(err))

	tok, err := New("@").Next()
	require.Error(t, err)
	require.Equal(t, token.ILLEGAL, tok.Type)

	_, err = New(": ").Next()
	require.EqualError(t, err, "empty symbol")
}
