package parser

import (
	"strconv"
	"strings"

	"github.com/rbjs-dev/rbjs/ast"
	"github.com/rbjs-dev/rbjs/internal/token"
)

// literal converts a leaf token into a node child value.
func (r *reader) literal(tok token.Token) (any, error) {
	switch tok.Type {
	case token.NIL:
		return nil, nil
	case token.SYMBOL:
		if strings.HasPrefix(tok.Literal, `"`) {
			name, err := strconv.Unquote(tok.Literal)
			if err != nil {
				return nil, r.syntaxError(tok, codeSyntax, "invalid symbol literal %s", tok.Literal)
			}
			return ast.Symbol(name), nil
		}
		return ast.Symbol(tok.Literal), nil
	case token.STRING:
		s, err := strconv.Unquote(tok.Literal)
		if err != nil {
			return nil, r.syntaxError(tok, codeSyntax, "invalid string literal %s", tok.Literal)
		}
		return s, nil
	case token.INT:
		i, err := strconv.ParseInt(strings.ReplaceAll(tok.Literal, "_", ""), 0, 64)
		if err != nil {
			return nil, r.syntaxError(tok, codeSyntax, "invalid integer literal %q", tok.Literal)
		}
		return i, nil
	case token.FLOAT:
		f, err := strconv.ParseFloat(strings.ReplaceAll(tok.Literal, "_", ""), 64)
		if err != nil {
			return nil, r.syntaxError(tok, codeSyntax, "invalid float literal %q", tok.Literal)
		}
		return f, nil
	case token.IDENT:
		return nil, r.unexpected(tok, "node tags must follow '('")
	}
	return nil, r.unexpected(tok, "")
}
