package ast

import "iter"

// Visitor defines the interface for tree traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node *Node) (w Visitor)
}

// Walk traverses a tree in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the node children of node.
func Walk(v Visitor, node *Node) {
	if node == nil {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range node.Children {
		if n, ok := child.(*Node); ok && n != nil {
			Walk(v, n)
		}
	}
}

type inspector func(*Node) bool

func (f inspector) Visit(node *Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses a tree in depth-first order, calling f for each node.
// Children are skipped when f returns false.
func Inspect(node *Node, f func(*Node) bool) {
	Walk(inspector(f), node)
}

// Preorder returns an iterator over all nodes of the tree in depth-first
// order.
func Preorder(root *Node) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		ok := true
		Inspect(root, func(n *Node) bool {
			if ok {
				ok = yield(n)
			}
			return ok
		})
	}
}

// Contains reports whether any node of the tree has one of the given kinds.
// Subtrees rooted at a kind in stop are not entered.
func Contains(root *Node, kinds []Kind, stop ...Kind) bool {
	found := false
	Inspect(root, func(n *Node) bool {
		if found {
			return false
		}
		if n != root && n.Is(stop...) {
			return false
		}
		if n.Is(kinds...) {
			found = true
			return false
		}
		return true
	})
	return found
}
