// Package ast defines the syntax tree consumed by the compiler.
//
// A tree is made of *Node values. Each node carries a Kind tag, an ordered
// list of children and an optional source position. Nodes are treated as
// values: passes that need a different node build one with Updated instead
// of mutating the tree, so unmodified subtrees can be shared freely.
package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rbjs-dev/rbjs/internal/token"
)

// Symbol is a name child, such as a method or variable name. It is kept
// distinct from string so that (str "a") and (sym :a) print differently.
type Symbol string

// Node is one tagged node of the syntax tree.
//
// Children hold *Node, Symbol, string, int64, float64 or nil values.
type Node struct {
	Kind     Kind
	Children []any
	Loc      token.Position

	// Returning is set on an if node whose branches were already rewritten
	// to return their values.
	Returning bool
}

// S builds a node of the given kind without position information.
func S(kind Kind, children ...any) *Node {
	return &Node{Kind: kind, Children: children}
}

// At builds a node located at pos.
func At(pos token.Position, kind Kind, children ...any) *Node {
	return &Node{Kind: kind, Children: children, Loc: pos}
}

// Updated returns a copy of the node with a new kind and children. Passing
// Invalid keeps the current kind and passing nil keeps the current children.
// The location is preserved and the Returning flag is reset.
func (n *Node) Updated(kind Kind, children []any) *Node {
	clone := &Node{Kind: n.Kind, Loc: n.Loc}
	if kind != Invalid {
		clone.Kind = kind
	}
	if children == nil {
		clone.Children = append([]any(nil), n.Children...)
	} else {
		clone.Children = children
	}
	return clone
}

// WithReturning returns a copy of the node flagged as already rewritten.
func (n *Node) WithReturning() *Node {
	clone := *n
	clone.Children = append([]any(nil), n.Children...)
	clone.Returning = true
	return &clone
}

// Pos returns the position of the node.
func (n *Node) Pos() token.Position {
	return n.Loc
}

// Len returns the number of children.
func (n *Node) Len() int {
	return len(n.Children)
}

// Child returns the child at index i, or nil when out of range.
func (n *Node) Child(i int) any {
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// NodeAt returns the child at index i when it is a node.
func (n *Node) NodeAt(i int) *Node {
	child, _ := n.Child(i).(*Node)
	return child
}

// SymbolAt returns the child at index i when it is a Symbol.
func (n *Node) SymbolAt(i int) Symbol {
	sym, _ := n.Child(i).(Symbol)
	return sym
}

// StringAt returns the child at index i when it is a string.
func (n *Node) StringAt(i int) string {
	s, _ := n.Child(i).(string)
	return s
}

// Nodes returns the node children starting at index from. Non-node
// children are skipped.
func (n *Node) Nodes(from int) []*Node {
	var nodes []*Node
	for i := from; i < len(n.Children); i++ {
		if child, ok := n.Children[i].(*Node); ok {
			nodes = append(nodes, child)
		}
	}
	return nodes
}

// Is reports whether the node is non-nil and has one of the given kinds.
func (n *Node) Is(kinds ...Kind) bool {
	if n == nil {
		return false
	}
	for _, k := range kinds {
		if n.Kind == k {
			return true
		}
	}
	return false
}

// String returns the S-expression form of the node.
func (n *Node) String() string {
	if n == nil {
		return "nil"
	}
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	b.WriteString("(")
	b.WriteString(n.Kind.String())
	for _, child := range n.Children {
		b.WriteString(" ")
		writeChild(b, child)
	}
	b.WriteString(")")
}

func writeChild(b *strings.Builder, child any) {
	switch v := child.(type) {
	case nil:
		b.WriteString("nil")
	case *Node:
		if v == nil {
			b.WriteString("nil")
			return
		}
		writeNode(b, v)
	case Symbol:
		b.WriteString(":")
		b.WriteString(string(v))
	case string:
		b.WriteString(strconv.Quote(v))
	case int64:
		b.WriteString(strconv.FormatInt(v, 10))
	case float64:
		s := strconv.FormatFloat(v, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		b.WriteString(s)
	default:
		fmt.Fprintf(b, "%v", v)
	}
}
