// Package token defines source positions and the tokens produced while
// reading the S-expression form of a syntax tree.
package token

import "fmt"

// Position is a location in the source. Line and Column are 0-indexed.
type Position struct {
	Char      int // byte offset
	LineStart int // byte offset of the first byte of Line
	Line      int
	Column    int
	File      string
}

// NoPos is the unset position.
var NoPos Position

func (p Position) LineNumber() int   { return p.Line + 1 }
func (p Position) ColumnNumber() int { return p.Column + 1 }

// IsValid reports whether p was set.
func (p Position) IsValid() bool {
	return p != NoPos
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.LineNumber(), p.ColumnNumber())
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.LineNumber(), p.ColumnNumber())
}

// Type identifies the kind of a token.
type Type uint8

const (
	ILLEGAL Type = iota
	EOF
	LPAREN
	RPAREN
	IDENT
	SYMBOL
	STRING
	INT
	FLOAT
	NIL
	COMMENT
	END // __END__, everything after it is ignored
)

var typeNames = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	LPAREN:  "(",
	RPAREN:  ")",
	IDENT:   "IDENT",
	SYMBOL:  "SYMBOL",
	STRING:  "STRING",
	INT:     "INT",
	FLOAT:   "FLOAT",
	NIL:     "nil",
	COMMENT: "COMMENT",
	END:     "__END__",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// Token is one token read from the input.
type Token struct {
	Type          Type
	Literal       string
	StartPosition Position
	EndPosition   Position
}

// Lookup returns the type of a bare word: NIL and END for the reserved
// words, IDENT otherwise.
func Lookup(word string) Type {
	switch word {
	case "nil":
		return NIL
	case "__END__":
		return END
	}
	return IDENT
}
