package compiler

import (
	"github.com/rbjs-dev/rbjs/ast"
	"github.com/rbjs-dev/rbjs/fragment"
)

// retryLoop is the loop a rescue statement runs in when one of its clauses
// retries.
type retryLoop struct {
	flag  string
	label string
}

// compileRescue compiles begin/rescue/else into try/catch. Each rescue
// clause tests the error with $rescue; an unmatched error is rethrown.
// The else body runs in a finally block guarded by a flag cleared when an
// error is caught. When a clause retries, the whole statement runs in a
// labeled loop repeated while the retry flag is set.
func (c *Compiler) compileRescue(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	body := n.NodeAt(0)
	var clauses []*ast.Node
	var els *ast.Node
	last := n.Len() - 1
	for i := 1; i <= last; i++ {
		child := n.NodeAt(i)
		switch {
		case child.Is(ast.Resbody):
			clauses = append(clauses, child)
		case i == last:
			els = child
		}
	}

	s := c.scopes.Current()
	w := c.writer(n)
	var noErrors string
	var retry *retryLoop
	if els != nil {
		noErrors = s.NewTemp()
		defer s.QueueTemp(noErrors)
		w.str(noErrors, " = true;")
		w.line()
	}
	clauseBodies := make([]any, len(clauses))
	for i, clause := range clauses {
		clauseBodies[i] = clause
	}
	stop := []ast.Kind{ast.Block, ast.Def, ast.Class, ast.Module, ast.Rescue}
	if ast.Contains(ast.S(ast.Begin, clauseBodies...), []ast.Kind{ast.Retry}, stop...) {
		retry = &retryLoop{flag: s.NewTemp(), label: c.uniqueName("retry")}
		defer s.QueueTemp(retry.flag)
		c.retryDepth++
		defer func() { c.retryDepth-- }()
		w.str(retry.label, ": do {")
		c.indent += indentUnit
		w.line(retry.flag, " = false;")
		w.line()
	}

	w.str("try {")
	w.indented(func() { w.stmts(body) })
	w.line("} catch ($err) {")
	w.indented(func() {
		if noErrors != "" {
			w.line(noErrors, " = false;")
		}
		w.line()
		c.retries = append(c.retries, retry)
		for i, clause := range clauses {
			if i > 0 {
				w.str(" else ")
			}
			w.try(c.process(clause, Stmt))
		}
		c.retries = c.retries[:len(c.retries)-1]
		if len(clauses) > 0 {
			w.str(" else {")
			w.indented(func() { w.line("throw $err;") })
			w.line("}")
		} else {
			w.str("throw $err;")
		}
	})
	w.line("}")
	if noErrors != "" {
		w.str(" finally {")
		w.indented(func() {
			w.line("if (", noErrors, ") {")
			w.indented(func() { w.stmts(els) })
			w.line("}")
		})
		w.line("}")
	}
	if retry != nil {
		c.indent = c.indent[:len(c.indent)-len(indentUnit)]
		w.line("} while (", retry.flag, ");")
	}
	return w.done()
}

// compileResbody compiles one rescue clause. It is only valid inside
// compileRescue, which provides the caught error as $err.
func (c *Compiler) compileResbody(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	if len(c.retries) == 0 || level == Expr {
		return nil, malformed(n, "rescue clause outside of begin")
	}
	classes, target, body := n.NodeAt(0), n.NodeAt(1), n.NodeAt(2)
	c.helper("rescue")
	w := c.writer(n)
	w.str("if ($rescue($err, [")
	switch {
	case classes == nil:
		w.str("RB.StandardError")
	case classes.Is(ast.Array):
		w.exprs(classes.Nodes(0), ", ")
	default:
		w.expr(classes)
	}
	w.str("])) {")
	w.indented(func() {
		if target != nil {
			name, err := c.target(target)
			if err != nil {
				w.fail(err)
				return
			}
			w.line(name, " = $err;")
		}
		w.stmts(body)
	})
	w.line("}")
	return w.done()
}

// compileEnsure compiles begin/ensure into try/finally.
func (c *Compiler) compileEnsure(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	w := c.writer(n)
	w.str("try {")
	w.indented(func() { w.stmts(n.NodeAt(0)) })
	w.line("} finally {")
	w.indented(func() { w.stmts(n.NodeAt(1)) })
	w.line("}")
	return w.done()
}
