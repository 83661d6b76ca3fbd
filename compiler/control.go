package compiler

import (
	"github.com/rbjs-dev/rbjs/ast"
	"github.com/rbjs-dev/rbjs/errors"
	"github.com/rbjs-dev/rbjs/fragment"
	"github.com/rbjs-dev/rbjs/scope"
)

// compileBegin compiles a sequence. As a statement every child is a
// statement on its own line. As an expression the children are joined
// with the comma operator.
func (c *Compiler) compileBegin(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	children := n.Nodes(0)
	w := c.writer(n)
	if level == Stmt {
		first := true
		for _, child := range children {
			frags, err := c.stmt(child)
			if err != nil {
				return nil, err
			}
			if fragment.Text(frags) == "" {
				continue
			}
			if !first {
				w.line()
			}
			w.add(frags)
			first = false
		}
		return w.done()
	}
	switch len(children) {
	case 0:
		return c.text(n, "nil")
	case 1:
		return c.process(children[0], Expr)
	}
	w.str("(")
	w.exprs(children, ", ")
	w.str(")")
	return w.done()
}

// truthy appends the JavaScript truth test of a Ruby condition.
func (w *writer) truthy(cond *ast.Node) {
	w.c.helper("truthy")
	w.str("$truthy(")
	w.expr(cond)
	w.str(")")
}

func (c *Compiler) compileIf(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	cond, then, els := n.NodeAt(0), n.NodeAt(1), n.NodeAt(2)
	w := c.writer(n)
	if level == Expr {
		w.str("(")
		w.truthy(cond)
		w.str(" ? ")
		w.expr(then)
		w.str(" : ")
		w.expr(els)
		w.str(")")
		return w.done()
	}

	w.str("if (")
	if then == nil && els != nil {
		w.str("!")
		then, els = els, nil
	}
	w.truthy(cond)
	w.str(") {")
	w.indented(func() { w.stmts(then) })
	if els == nil {
		w.line("}")
		return w.done()
	}
	if els.Is(ast.If) {
		w.line("} else ")
		w.try(c.process(els, Stmt))
		return w.done()
	}
	w.line("} else {")
	w.indented(func() { w.stmts(els) })
	w.line("}")
	return w.done()
}

func (c *Compiler) compileAnd(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	return c.compileLogical(n, level, true)
}

func (c *Compiler) compileOr(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	return c.compileLogical(n, level, false)
}

// compileLogical compiles and/or. The left value is kept in a temporary so
// it is evaluated once and returned when it decides the result.
func (c *Compiler) compileLogical(n *ast.Node, level Level, and bool) ([]fragment.Fragment, error) {
	left, right := n.NodeAt(0), n.NodeAt(1)
	w := c.writer(n)
	if level == Stmt {
		w.str("if (")
		if !and {
			w.str("!")
		}
		w.truthy(left)
		w.str(") {")
		w.indented(func() { w.stmtLine(right) })
		w.line("}")
		return w.done()
	}
	w.fail(c.scopes.WithTemp(func(tmp string) error {
		c.helper("truthy")
		w.str("($truthy(", tmp, " = ")
		w.expr(left)
		w.str(") ? ")
		if and {
			w.expr(right)
			w.str(" : ", tmp, ")")
		} else {
			w.str(tmp, " : ")
			w.expr(right)
			w.str(")")
		}
		return nil
	}))
	return w.done()
}

// compileWhile compiles the four loop kinds. When the body uses redo, a
// temporary flag makes the loop run again without testing the condition.
// As an expression the loop runs in a closure returning nil, or the value
// given to break.
func (c *Compiler) compileWhile(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	if level == Expr {
		return c.closureOf(n, func(w *writer) {
			w.line()
			w.try(c.loop(n, true))
			w.line("return nil;")
		})
	}
	return c.loop(n, false)
}

func (c *Compiler) loop(n *ast.Node, closure bool) ([]fragment.Fragment, error) {
	cond, body := n.NodeAt(0), n.NodeAt(1)
	until := n.Is(ast.Until, ast.UntilPost)
	post := n.Is(ast.WhilePost, ast.UntilPost)

	s := c.scopes.Current()
	wh := s.PushWhile()
	defer s.PopWhile()
	wh.Closure = closure
	wh.RetryDepth = c.retryDepth
	stop := append([]ast.Kind{ast.Block, ast.Def, ast.Class, ast.Module}, loopKinds...)
	if ast.Contains(ast.S(ast.Begin, body), []ast.Kind{ast.Redo}, stop...) {
		wh.RedoVar = s.NewTemp()
		wh.UseRedo = true
		defer s.QueueTemp(wh.RedoVar)
	}

	test := func(w *writer) {
		if wh.UseRedo {
			w.str(wh.RedoVar, " || ")
		}
		if until {
			w.str("!")
		}
		w.truthy(cond)
	}
	w := c.writer(n)
	if wh.UseRedo {
		w.str(wh.RedoVar, " = false;")
		w.line()
	}
	head := len(w.out)
	if post {
		w.str("do {")
	} else {
		w.str("while (")
		test(w)
		w.str(") {")
	}
	w.indented(func() {
		if wh.UseRedo {
			w.line(wh.RedoVar, " = false;")
		}
		w.stmts(body)
	})
	if post {
		w.line("} while (")
		test(w)
		w.str(");")
	} else {
		w.line("}")
	}
	w.label(head, wh.Label)
	return w.done()
}

// loopJump returns the break or continue statement for wh. A retry loop
// between the jump and wh would catch an unlabeled jump, so wh is then
// labeled and addressed by name.
func (c *Compiler) loopJump(wh *scope.While, keyword string) string {
	if c.retryDepth <= wh.RetryDepth {
		return keyword + ";"
	}
	if wh.Label == "" {
		wh.Label = c.uniqueName("loop")
	}
	return keyword + " " + wh.Label + ";"
}

func invalidJump(n *ast.Node) error {
	return errors.Syntaxf(errors.E2002, n.Loc, "invalid %s", n.Kind)
}

// compileBreak leaves the innermost loop, or the call of the innermost
// block.
func (c *Compiler) compileBreak(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	s := c.scopes.Current()
	if s == nil {
		return nil, invalidJump(n)
	}
	value := returnValue(n)
	if wh := s.CurrentWhile(); wh != nil {
		if level == Expr {
			return nil, voidValue(n)
		}
		if !wh.Closure {
			return c.text(n, c.loopJump(wh, "break"))
		}
		w := c.writer(n)
		w.str("return ")
		w.expr(value)
		w.str(";")
		return w.done()
	}
	if s.IsBlock() {
		c.helper("break")
		w := c.writer(n)
		w.str("$break(")
		w.expr(value)
		w.str(", $brk)")
		if level == Stmt {
			w.str(";")
		}
		return w.done()
	}
	return nil, invalidJump(n)
}

// compileNext continues the innermost loop, or returns from the innermost
// block.
func (c *Compiler) compileNext(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	s := c.scopes.Current()
	if s == nil || (!s.InWhile() && !s.IsBlock()) {
		return nil, invalidJump(n)
	}
	if level == Expr {
		return nil, voidValue(n)
	}
	if wh := s.CurrentWhile(); wh != nil {
		return c.text(n, c.loopJump(wh, "continue"))
	}
	w := c.writer(n)
	w.str("return ")
	w.expr(returnValue(n))
	w.str(";")
	return w.done()
}

// compileRedo restarts the body of the innermost loop, or calls the
// innermost block again with the same arguments.
func (c *Compiler) compileRedo(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	s := c.scopes.Current()
	if s == nil || (!s.InWhile() && !s.IsBlock()) {
		return nil, invalidJump(n)
	}
	if level == Expr {
		return nil, voidValue(n)
	}
	if wh := s.CurrentWhile(); wh != nil {
		if wh.RedoVar == "" {
			wh.RedoVar = s.NewTemp()
		}
		wh.UseRedo = true
		return c.text(n, wh.RedoVar+" = true; "+c.loopJump(wh, "continue"))
	}
	return c.text(n, "return "+s.Identity+".apply(null, arguments);")
}

// compileRetry restarts the begin block of the enclosing rescue clause.
func (c *Compiler) compileRetry(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	last := len(c.retries) - 1
	if last < 0 || c.retries[last] == nil {
		return nil, invalidJump(n)
	}
	if level == Expr {
		return nil, voidValue(n)
	}
	r := c.retries[last]
	return c.text(n, r.flag+" = true; continue "+r.label+";")
}

// caseParts splits the children of a case node into its when clauses and
// its else body.
func caseParts(n *ast.Node) (whens []*ast.Node, els *ast.Node) {
	for i := 1; i < n.Len(); i++ {
		child := n.NodeAt(i)
		if child.Is(ast.When) {
			whens = append(whens, child)
		} else if i == n.Len()-1 {
			els = child
		}
	}
	return whens, els
}

// returningCase rewrites every branch of a case to return its value. A
// missing else returns nil.
func (c *Compiler) returningCase(n *ast.Node) *ast.Node {
	whens, els := caseParts(n)
	children := []any{n.Child(0)}
	for _, when := range whens {
		children = append(children, c.rewriter.Returns(when))
	}
	children = append(children, c.rewriter.Returns(els))
	return n.Updated(ast.Invalid, children)
}

// compileCase compiles a case into a chain of if statements testing the
// subject, held in a temporary, with ===.
func (c *Compiler) compileCase(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	if level == Expr {
		returning := c.returningCase(n)
		return c.closureOf(n, func(w *writer) {
			w.line()
			w.try(c.compileCase(returning, Stmt))
		})
	}
	whens, els := caseParts(n)
	s := c.scopes.Current()
	w := c.writer(n)
	var subject string
	if value := n.NodeAt(0); value != nil {
		subject = s.NewTemp()
		defer s.QueueTemp(subject)
		w.str(subject, " = ")
		w.expr(value)
		w.str(";")
		w.line()
	}
	s.PushCase(subject)
	defer s.PopCase()
	for i, when := range whens {
		if i > 0 {
			w.str(" else ")
		}
		w.try(c.process(when, Stmt))
	}
	if els == nil {
		return w.done()
	}
	if len(whens) == 0 {
		w.stmts(els)
		return w.done()
	}
	w.str(" else {")
	w.indented(func() { w.stmts(els) })
	w.line("}")
	return w.done()
}

func (c *Compiler) compileWhen(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	s := c.scopes.Current()
	if s == nil || !s.InCase() {
		return nil, malformed(n, "when outside of case")
	}
	if level == Expr {
		return nil, voidValue(n)
	}
	if n.Len() == 0 {
		return nil, malformed(n, "expected a body")
	}
	subject := s.CaseSubject()
	patterns := n.Nodes(0)
	body := n.NodeAt(n.Len() - 1)
	if len(patterns) > 0 && patterns[len(patterns)-1] == body {
		patterns = patterns[:len(patterns)-1]
	}
	w := c.writer(n)
	w.str("if (")
	for i, p := range patterns {
		if i > 0 {
			w.str(" || ")
		}
		if subject == "" {
			w.truthy(p)
			continue
		}
		c.helper("eqeqeq")
		w.str("$eqeqeq(")
		w.expr(p)
		w.str(", ", subject, ")")
	}
	w.str(") {")
	w.indented(func() { w.stmts(body) })
	w.line("}")
	return w.done()
}
