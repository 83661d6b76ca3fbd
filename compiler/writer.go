package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rbjs-dev/rbjs/ast"
	"github.com/rbjs-dev/rbjs/fragment"
	"github.com/rbjs-dev/rbjs/scope"
)

// indentUnit is added to the indentation for each nested body.
const indentUnit = "  "

// writer collects the fragments of one handler. Errors are sticky: once a
// step fails, later calls do nothing and done returns the first error.
type writer struct {
	c    *Compiler
	node *ast.Node
	out  []fragment.Fragment
	err  error
}

func (c *Compiler) writer(n *ast.Node) *writer {
	return &writer{c: c, node: n}
}

func (c *Compiler) fragment(code string, n *ast.Node) fragment.Fragment {
	return fragment.New(code, c.scopes.CurrentID(), n)
}

// str appends code attributed to the node of the writer.
func (w *writer) str(parts ...string) {
	if w.err != nil || len(parts) == 0 {
		return
	}
	w.out = append(w.out, w.c.fragment(strings.Join(parts, ""), w.node))
}

func (w *writer) strf(format string, args ...any) {
	w.str(fmt.Sprintf(format, args...))
}

// line starts a new line at the current indentation and appends parts.
func (w *writer) line(parts ...string) {
	w.str(append([]string{"\n", w.c.indent}, parts...)...)
}

func (w *writer) add(frags []fragment.Fragment) {
	if w.err != nil {
		return
	}
	w.out = append(w.out, frags...)
}

// label prefixes the statement starting at fragment i with name.
func (w *writer) label(i int, name string) {
	if w.err != nil || name == "" {
		return
	}
	w.out = slices.Insert(w.out, i, w.c.fragment(name+": ", w.node))
}

func (w *writer) try(frags []fragment.Fragment, err error) {
	if err != nil {
		w.fail(err)
		return
	}
	w.add(frags)
}

// expr appends n compiled for its value.
func (w *writer) expr(n *ast.Node) {
	if w.err != nil {
		return
	}
	w.try(w.c.process(n, Expr))
}

// stmt appends n compiled as a statement.
func (w *writer) stmt(n *ast.Node) {
	if w.err != nil {
		return
	}
	w.try(w.c.stmt(n))
}

// stmtLine appends n as a statement on a new line. Nothing is written when
// the statement produces no code.
func (w *writer) stmtLine(n *ast.Node) {
	if w.err != nil {
		return
	}
	frags, err := w.c.stmt(n)
	if err != nil {
		w.fail(err)
		return
	}
	if fragment.Text(frags) == "" {
		return
	}
	w.line()
	w.add(frags)
}

// stmts appends the statements of a body, one per line.
func (w *writer) stmts(n *ast.Node) {
	if n.Is(ast.Begin) && !n.Returning {
		for _, child := range n.Nodes(0) {
			w.stmtLine(child)
		}
		return
	}
	w.stmtLine(n)
}

// recv appends n as the receiver of a property access.
func (w *writer) recv(n *ast.Node) {
	if w.err != nil {
		return
	}
	frags, err := w.c.process(n, Expr)
	if err != nil {
		w.fail(err)
		return
	}
	if n.Is(primaryKinds...) {
		w.add(frags)
		return
	}
	w.str("(")
	w.add(frags)
	w.str(")")
}

// exprs appends nodes compiled for their values, separated by sep.
func (w *writer) exprs(nodes []*ast.Node, sep string) {
	for i, n := range nodes {
		if i > 0 {
			w.str(sep)
		}
		w.expr(n)
	}
}

// indented runs fn one level deeper.
func (w *writer) indented(fn func()) {
	w.c.withIndent(fn)
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *writer) done() ([]fragment.Fragment, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.out, nil
}

func (c *Compiler) withIndent(fn func()) {
	saved := c.indent
	c.indent += indentUnit
	defer func() { c.indent = saved }()
	fn()
}

// inScope runs fn inside a new scope of the given kind.
func (c *Compiler) inScope(kind scope.Kind, fn func(s *scope.Scope) error) error {
	s := c.scopes.Open(kind)
	defer c.scopes.Close()
	defer c.resetRetries()()
	return fn(s)
}

// resetRetries hides the enclosing retry loops from code compiled in a new
// function and returns the func restoring them.
func (c *Compiler) resetRetries() func() {
	retries, depth := c.retries, c.retryDepth
	c.retries, c.retryDepth = nil, 0
	return func() { c.retries, c.retryDepth = retries, depth }
}

// primaryKinds compile to JavaScript expressions that need no parentheses
// as a receiver.
var primaryKinds = []ast.Kind{
	ast.Nil, ast.True, ast.False, ast.Self, ast.Str, ast.Sym,
	ast.Array, ast.Hash, ast.Lvar, ast.Ivar, ast.Gvar, ast.Const, ast.Send,
	ast.Block, ast.If, ast.And, ast.Or,
}
