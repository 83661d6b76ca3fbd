package parser

import (
	"fmt"

	"github.com/rbjs-dev/rbjs/errors"
	"github.com/rbjs-dev/rbjs/internal/lexer"
	"github.com/rbjs-dev/rbjs/internal/token"
)

const (
	codeSyntax       = errors.E1001
	codeUnterminated = errors.E1002
	codeUnclosed     = errors.E1003
	codeUnknownTag   = errors.E1004
)

// syntaxError builds a positioned syntax error for tok.
func (r *reader) syntaxError(tok token.Token, code errors.ErrorCode, format string, args ...any) *errors.SyntaxError {
	return errors.Syntaxf(code, tok.StartPosition, format, args...)
}

func (r *reader) unexpected(tok token.Token, context string) *errors.SyntaxError {
	what := fmt.Sprintf("unexpected %s", describe(tok))
	if context != "" {
		what += " (" + context + ")"
	}
	return r.syntaxError(tok, codeSyntax, "%s", what)
}

func (r *reader) lexError(tok token.Token, err error) *errors.SyntaxError {
	if lexer.IsUnterminated(err) {
		return r.syntaxError(tok, codeUnterminated, "%s", err.Error())
	}
	return r.syntaxError(tok, codeSyntax, "%s", err.Error())
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.RPAREN:
		return "')'"
	case token.SYMBOL:
		return "symbol :" + tok.Literal
	case token.STRING:
		return "string " + tok.Literal
	}
	return fmt.Sprintf("%q", tok.Literal)
}
