// Package lexer splits the S-expression form of a syntax tree into tokens.
package lexer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rbjs-dev/rbjs/internal/token"
)

// Lexer reads tokens from an input string.
type Lexer struct {
	input     string
	pos       int // byte offset of the next unread character
	line      int
	lineStart int
	filename  string
	endSeen   bool
}

// State is a snapshot of the lexer position.
type State struct {
	pos       int
	line      int
	lineStart int
	endSeen   bool
}

// New returns a lexer over input.
func New(input string) *Lexer {
	return &Lexer{input: input}
}

// SetFilename sets the name recorded in token positions.
func (l *Lexer) SetFilename(name string) {
	l.filename = name
}

// Filename returns the name recorded in token positions.
func (l *Lexer) Filename() string {
	return l.filename
}

// SaveState returns the current position so it can be restored later.
func (l *Lexer) SaveState() State {
	return State{pos: l.pos, line: l.line, lineStart: l.lineStart, endSeen: l.endSeen}
}

// RestoreState rewinds the lexer to a saved position.
func (l *Lexer) RestoreState(s State) {
	l.pos, l.line, l.lineStart, l.endSeen = s.pos, s.line, s.lineStart, s.endSeen
}

// Position returns the position of the next unread character.
func (l *Lexer) Position() token.Position {
	return token.Position{
		Char:      l.pos,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.pos - l.lineStart,
		File:      l.filename,
	}
}

// GetLineText returns the text of the line containing tok.
func (l *Lexer) GetLineText(tok token.Token) string {
	start := tok.StartPosition.LineStart
	if start > len(l.input) {
		return ""
	}
	end := strings.IndexByte(l.input[start:], '\n')
	if end < 0 {
		return l.input[start:]
	}
	return l.input[start : start+end]
}

// Rest returns the input following the line of the last __END__ marker.
func (l *Lexer) Rest() string {
	if !l.endSeen {
		return ""
	}
	return l.input[l.pos:]
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.lineStart = l.pos + 1
	}
	l.pos++
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

// atEndMarker reports whether the current line is exactly __END__.
func (l *Lexer) atEndMarker() bool {
	if l.pos != l.lineStart || !strings.HasPrefix(l.input[l.pos:], "__END__") {
		return false
	}
	rest := l.input[l.pos+len("__END__"):]
	return rest == "" || rest[0] == '\n' || strings.HasPrefix(rest, "\r\n")
}

// Next returns the next token. After __END__ only EOF is returned.
func (l *Lexer) Next() (token.Token, error) {
	if l.endSeen {
		pos := l.Position()
		return token.Token{Type: token.EOF, StartPosition: pos, EndPosition: pos}, nil
	}
	l.skipWhitespace()
	start := l.Position()
	if l.pos >= len(l.input) {
		return token.Token{Type: token.EOF, StartPosition: start, EndPosition: start}, nil
	}
	if l.atEndMarker() {
		l.pos += len("__END__")
		if l.peek() == '\r' {
			l.pos++
		}
		if l.peek() == '\n' {
			l.advance()
		}
		l.endSeen = true
		return l.token(token.END, "__END__", start), nil
	}
	ch := l.peek()
	switch {
	case ch == '(':
		l.advance()
		return l.token(token.LPAREN, "(", start), nil
	case ch == ')':
		l.advance()
		return l.token(token.RPAREN, ")", start), nil
	case ch == '#':
		for l.peek() != '\n' && l.pos < len(l.input) {
			l.advance()
		}
		return l.token(token.COMMENT, strings.TrimRight(l.input[start.Char:l.pos], "\r"), start), nil
	case ch == '"':
		lit, err := l.readString()
		if err != nil {
			return l.token(token.ILLEGAL, lit, start), err
		}
		return l.token(token.STRING, lit, start), nil
	case ch == ':':
		l.advance()
		if l.peek() == '"' {
			lit, err := l.readString()
			if err != nil {
				return l.token(token.ILLEGAL, lit, start), err
			}
			return l.token(token.SYMBOL, lit, start), nil
		}
		name := l.readAtom()
		if name == "" {
			return l.token(token.ILLEGAL, ":", start), errors.New("empty symbol")
		}
		return l.token(token.SYMBOL, name, start), nil
	case isDigit(ch) || (ch == '-' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1])):
		return l.readNumber(start)
	case isIdentStart(ch):
		word := l.readAtom()
		return l.token(token.Lookup(word), word, start), nil
	}
	l.advance()
	return l.token(token.ILLEGAL, string(ch), start), fmt.Errorf("unexpected character %q", ch)
}

func (l *Lexer) token(typ token.Type, literal string, start token.Position) token.Token {
	return token.Token{Type: typ, Literal: literal, StartPosition: start, EndPosition: l.Position()}
}

// readString consumes a double quoted literal and returns it, quotes
// included.
func (l *Lexer) readString() (string, error) {
	begin := l.pos
	l.advance()
	for l.pos < len(l.input) {
		switch l.peek() {
		case '\\':
			l.advance()
			l.advance()
		case '"':
			l.advance()
			return l.input[begin:l.pos], nil
		default:
			l.advance()
		}
	}
	return l.input[begin:l.pos], errUnterminated
}

func (l *Lexer) readAtom() string {
	begin := l.pos
	for l.pos < len(l.input) && !isDelimiter(l.input[l.pos]) {
		l.advance()
	}
	return l.input[begin:l.pos]
}

func (l *Lexer) readNumber(start token.Position) (token.Token, error) {
	lit := l.readAtom()
	typ := token.INT
	if strings.ContainsAny(lit, ".eE") {
		typ = token.FLOAT
	}
	return l.token(typ, lit, start), nil
}

var errUnterminated = errors.New("unterminated string literal")

// IsUnterminated reports whether err is the unterminated string error.
func IsUnterminated(err error) bool {
	return err == errUnterminated
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '(', ')', '"', '#':
		return true
	}
	return false
}
