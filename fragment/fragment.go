// Package fragment holds the pieces of generated code and assembles them
// into the final program text and its source map.
package fragment

import (
	"strings"

	"github.com/rbjs-dev/rbjs/ast"
	"github.com/rbjs-dev/rbjs/internal/token"
	"github.com/rbjs-dev/rbjs/scope"
)

// Fragment is one piece of emitted code. Scope refers to the scope that
// was current when the code was generated and Node, when set, is the syntax
// node the code comes from.
type Fragment struct {
	Code  string
	Scope scope.ID
	Node  *ast.Node
}

// New returns a fragment.
func New(code string, s scope.ID, node *ast.Node) Fragment {
	return Fragment{Code: code, Scope: s, Node: node}
}

// Location returns the source position of the fragment, if it has one.
func (f Fragment) Location() (token.Position, bool) {
	if f.Node == nil {
		return token.NoPos, false
	}
	return f.Node.Loc, true
}

// Text concatenates the code of the fragments in order.
func Text(frags []Fragment) string {
	var b strings.Builder
	for _, f := range frags {
		b.WriteString(f.Code)
	}
	return b.String()
}

// Assemble returns the fragments and their text, appending a newline
// fragment when the text would not end with one.
func Assemble(frags []Fragment) ([]Fragment, string) {
	text := Text(frags)
	if !strings.HasSuffix(text, "\n") {
		frags = append(frags, Fragment{Code: "\n", Scope: scope.None})
		text += "\n"
	}
	return frags, text
}
