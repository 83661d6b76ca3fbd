// Package rewrite turns the trailing expressions of a body into explicit
// returns.
//
// JavaScript only returns a value from a function through a return
// statement, and many Ruby constructs become JavaScript statements that
// cannot be returned directly. Returns walks the tail positions of a tree
// and wraps each reachable trailing expression in a js_return node, leaving
// constructs that never produce a value untouched. The input tree is never
// modified; changed nodes are copies made with Updated.
package rewrite

import "github.com/rbjs-dev/rbjs/ast"

// Rewriter applies the return rewrite.
type Rewriter struct {
	// AllowXstr reports whether backtick strings are embedded JavaScript,
	// in which case their code is returned. It may log a warning the first
	// time it is called. A nil AllowXstr allows embedding.
	AllowXstr func() bool
}

// Returns rewrites n so every trailing expression is returned. A nil node
// is treated as nil.
func Returns(n *ast.Node) *ast.Node {
	return (&Rewriter{}).Returns(n)
}

// Returns rewrites n so every trailing expression is returned. A nil node
// is treated as nil.
func (r *Rewriter) Returns(n *ast.Node) *ast.Node {
	if n == nil {
		return r.Returns(ast.S(ast.Nil))
	}
	switch n.Kind {
	case ast.Undef:
		return r.Returns(n.Updated(ast.Begin, []any{n, ast.S(ast.Nil)}))

	case ast.Break, ast.Next, ast.Redo, ast.Retry:
		return n

	case ast.Yield:
		return n.Updated(ast.ReturnableYield, nil)

	case ast.When:
		if n.Len() == 0 {
			return n
		}
		return r.replaceLast(n)

	case ast.Rescue:
		// body, resbody..., else
		children := make([]any, n.Len())
		copy(children, n.Children)
		if len(children) == 0 {
			return n.Updated(ast.Invalid, []any{r.Returns(nil)})
		}
		children[0] = r.Returns(n.NodeAt(0))
		last := len(children) - 1
		for i := 1; i < last; i++ {
			if body := n.NodeAt(i); body.Is(ast.Resbody) {
				children[i] = r.Returns(body)
			}
		}
		if last > 0 {
			if els := n.NodeAt(last); els != nil {
				children[last] = r.Returns(els)
			}
		}
		return n.Updated(ast.Invalid, children)

	case ast.Resbody:
		// exception classes, variable, body
		children := []any{n.Child(0), n.Child(1), r.Returns(n.NodeAt(2))}
		return n.Updated(ast.Invalid, children)

	case ast.Ensure:
		// body, cleanup
		inner := n.Updated(ast.Invalid, []any{r.Returns(n.NodeAt(0)), n.Child(1)})
		return n.Updated(ast.JSReturn, []any{inner})

	case ast.Begin, ast.Kwbegin:
		if n.Len() == 0 {
			return n.Updated(ast.Invalid, []any{r.Returns(nil)})
		}
		return r.replaceLast(n)

	case ast.While, ast.Until, ast.WhilePost, ast.UntilPost:
		return n

	case ast.Return, ast.JSReturn, ast.ReturnableYield:
		return n

	case ast.Xstr:
		if n.NodeAt(0).Is(ast.JSReturn) {
			return n
		}
		if r.AllowXstr == nil || r.AllowXstr() {
			return n.Updated(ast.Invalid, []any{ast.At(n.Loc, ast.JSReturn, n.Children...)})
		}
		return n

	case ast.If:
		if n.Returning {
			return n
		}
		children := []any{n.Child(0), r.Returns(n.NodeAt(1)), r.Returns(n.NodeAt(2))}
		return n.Updated(ast.Invalid, children).WithReturning()

	case ast.Send:
		if n.SymbolAt(1) == "debugger" {
			return n.Updated(ast.Begin, []any{n, ast.S(ast.JSReturn, ast.S(ast.Nil))})
		}
	}
	return n.Updated(ast.JSReturn, []any{n})
}

func (r *Rewriter) replaceLast(n *ast.Node) *ast.Node {
	children := make([]any, n.Len())
	copy(children, n.Children)
	last := len(children) - 1
	children[last] = r.Returns(n.NodeAt(last))
	return n.Updated(ast.Invalid, children)
}
