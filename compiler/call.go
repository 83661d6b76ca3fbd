package compiler

import (
	"fmt"
	"path"
	"strings"

	"github.com/rbjs-dev/rbjs/ast"
	"github.com/rbjs-dev/rbjs/errors"
	"github.com/rbjs-dev/rbjs/fragment"
	"github.com/rbjs-dev/rbjs/options"
	"github.com/rbjs-dev/rbjs/scope"
)

// inlineOperators maps binary operators to the runtime helpers used when
// inline_operators is enabled.
var inlineOperators = map[string]string{
	"+":  "rb_plus",
	"-":  "rb_minus",
	"*":  "rb_times",
	"/":  "rb_divide",
	"<":  "rb_lt",
	">":  "rb_gt",
	"<=": "rb_le",
	">=": "rb_ge",
}

// loopKinds own break and next when they are not inside a block.
var loopKinds = []ast.Kind{ast.While, ast.Until, ast.WhilePost, ast.UntilPost}

func (c *Compiler) compileSend(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	return c.compileCall(n, level, nil)
}

// compileCall compiles a method call. iter, when not nil, holds the
// compiled block function passed to the method.
func (c *Compiler) compileCall(n *ast.Node, level Level, iter []fragment.Fragment) ([]fragment.Fragment, error) {
	recv := n.NodeAt(0)
	name := string(n.SymbolAt(1))
	if name == "" {
		return nil, malformed(n, "expected a method name")
	}
	args := n.Nodes(2)
	var blockPass *ast.Node
	if last := len(args) - 1; last >= 0 && args[last].Is(ast.BlockPass) {
		blockPass = args[last]
		args = args[:last]
	}

	if recv == nil && iter == nil && blockPass == nil {
		switch name {
		case "block_given?":
			return c.compileBlockGiven(n)
		case "debugger":
			return c.text(n, "debugger")
		case "require":
			if err := c.trackRequire(n, args); err != nil {
				return nil, err
			}
		case "require_relative":
			return c.compileRequireRelative(n, args)
		case "require_tree":
			n, args = c.trackRequireTree(n, args)
		case "autoload":
			c.trackAutoload(n, args)
		}
	}
	if name == "__await__" && iter == nil && c.await.Enabled {
		c.markAsync()
		w := c.writer(n)
		w.str("(await ")
		if recv != nil {
			w.expr(recv)
		} else {
			w.str("self")
		}
		w.str(")")
		return w.done()
	}

	w := c.writer(n)
	awaited := c.await.Match(name)
	if awaited {
		c.markAsync()
		w.str("(await ")
	}
	switch {
	case iter != nil || blockPass != nil:
		c.helper("send")
		c.recordCall(name)
		w.str("$send(")
		if recv != nil {
			w.expr(recv)
		} else {
			w.str("self")
		}
		w.str(", ", quote("$"+name), ", [")
		w.exprs(args, ", ")
		w.str("], ")
		if iter != nil {
			w.add(iter)
		} else {
			w.expr(blockPass)
		}
		w.str(")")
	case recv != nil && len(args) == 1 && inlineOperators[name] != "" && c.flag(options.InlineOperators):
		helper := inlineOperators[name]
		c.helper(helper)
		w.str("$", helper, "(")
		w.expr(recv)
		w.str(", ")
		w.expr(args[0])
		w.str(")")
	default:
		c.recordCall(name)
		if recv != nil {
			w.recv(recv)
		} else {
			w.str("self")
		}
		w.str(jsProperty(name), "(")
		w.exprs(args, ", ")
		w.str(")")
	}
	if awaited {
		w.str(")")
	}
	return w.done()
}

// markAsync records that an await was emitted in the current function.
func (c *Compiler) markAsync() {
	c.awaits++
	if s := c.scopes.Current(); s != nil {
		s.Async = true
	}
}

// compileBlockGiven checks the block parameter of the enclosing method.
func (c *Compiler) compileBlockGiven(n *ast.Node) ([]fragment.Fragment, error) {
	s := c.scopes.Current()
	if s == nil || !s.IsDef() {
		s = c.scopes.FindParentDef()
	}
	if s == nil {
		return c.text(n, "false")
	}
	s.UsesBlock()
	return c.text(n, "("+s.BlockName+" !== nil)")
}

// literalPath returns the string of a str node argument.
func literalPath(n *ast.Node) (string, bool) {
	if !n.Is(ast.Str) {
		return "", false
	}
	s, ok := n.Child(0).(string)
	return s, ok
}

// dynamicRequire reports a require whose argument is not a literal, as
// configured by dynamic_require_severity.
func (c *Compiler) dynamicRequire(n *ast.Node, call string) error {
	severity, _ := c.opts.String(options.DynamicRequireSeverity)
	msg := fmt.Sprintf("cannot handle dynamic %s", call)
	switch severity {
	case "error":
		return errors.Syntaxf(errors.E2005, n.Loc, "%s", msg)
	case "warning":
		c.warn(n, msg)
	}
	return nil
}

func (c *Compiler) trackRequire(n *ast.Node, args []*ast.Node) error {
	if len(args) == 0 {
		return nil
	}
	if p, ok := literalPath(args[0]); ok {
		c.requires = append(c.requires, p)
		return nil
	}
	return c.dynamicRequire(n, "require")
}

// compileRequireRelative records the path relative to the compiled file
// and requires it at runtime relative to the same file.
func (c *Compiler) compileRequireRelative(n *ast.Node, args []*ast.Node) ([]fragment.Fragment, error) {
	if len(args) == 0 {
		return nil, malformed(n, "require_relative expects a path")
	}
	if p, ok := literalPath(args[0]); ok {
		c.requires = append(c.requires, path.Clean(path.Join(path.Dir(c.file), p)))
	} else if err := c.dynamicRequire(n, "require_relative"); err != nil {
		return nil, err
	}
	c.recordCall("require")
	w := c.writer(n)
	w.str("self.$require(", quote(c.file), " + \"/../\" + ")
	w.expr(args[0])
	w.str(")")
	return w.done()
}

// trackRequireTree records the directory and rewrites the argument to the
// path relative to the compiled file.
func (c *Compiler) trackRequireTree(n *ast.Node, args []*ast.Node) (*ast.Node, []*ast.Node) {
	if len(args) == 0 {
		return n, args
	}
	p, ok := literalPath(args[0])
	if !ok {
		return n, args
	}
	c.requiredTrees = append(c.requiredTrees, p)
	full := path.Clean(path.Join(path.Dir(c.file), p))
	rewritten := append([]*ast.Node{args[0].Updated(ast.Invalid, []any{full})}, args[1:]...)
	children := []any{n.Child(0), n.Child(1)}
	for _, arg := range rewritten {
		children = append(children, arg)
	}
	return n.Updated(ast.Invalid, children), rewritten
}

func (c *Compiler) trackAutoload(n *ast.Node, args []*ast.Node) {
	if len(args) != 2 || !args[0].Is(ast.Sym) {
		return
	}
	if p, ok := literalPath(args[1]); ok {
		c.requires = append(c.requires, p)
		c.autoloads = append(c.autoloads, p)
		return
	}
	c.warn(n, fmt.Sprintf("file for autoload of constant %s could not be bundled", args[0].SymbolAt(0)))
}

// compileBlock compiles a call with a literal block. When the block breaks
// out of the call, the call runs inside $catch_break, which returns the
// value given to break.
func (c *Compiler) compileBlock(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	call := n.NodeAt(0)
	if !call.Is(ast.Send) {
		return nil, malformed(n, "expected a method call")
	}
	body := n.NodeAt(2)
	stop := append([]ast.Kind{ast.Block, ast.Def, ast.Class, ast.Module}, loopKinds...)
	breaks := ast.Contains(ast.S(ast.Begin, body), []ast.Kind{ast.Break}, stop...)

	if !breaks {
		iter, err := c.compileIter(n, n.NodeAt(1), body)
		if err != nil {
			return nil, err
		}
		return c.compileCall(call, level, iter)
	}
	c.helper("catch_break")
	w := c.writer(n)
	w.str("$catch_break(function($brk) {")
	w.indented(func() {
		iter, err := c.compileIter(n, n.NodeAt(1), body)
		if err != nil {
			w.fail(err)
			return
		}
		w.line("return ")
		w.try(c.compileCall(call, Expr, iter))
		w.str(";")
	})
	w.line("})")
	return w.done()
}

// compileIter compiles the function of a block.
func (c *Compiler) compileIter(n, args, body *ast.Node) ([]fragment.Fragment, error) {
	var out []fragment.Fragment
	err := c.inScope(scope.Block, func(s *scope.Scope) error {
		s.Identity = c.uniqueName("")
		ps, err := c.params(args, s)
		if err != nil {
			return err
		}
		w := c.writer(n)
		w.indented(func() {
			for _, name := range ps.required {
				w.line("if (", name, " == null) ", name, " = nil;")
			}
			c.paramPrelude(w, ps)
			w.stmts(c.rewriter.Returns(body))
		})
		inner, err := w.done()
		if err != nil {
			return err
		}

		head := c.writer(n)
		if s.Async {
			head.str("async ")
		}
		head.str("function ", s.Identity, "(", strings.Join(ps.names, ", "), ") {")
		var pre []string
		if ps.block != "" {
			pre = append(pre, ps.block+" = "+s.Identity+".$$p || nil")
		}
		head.indented(func() {
			c.declare(head, s, pre)
			if ps.block != "" {
				head.line(s.Identity, ".$$p = null;")
			}
		})
		head.add(inner)
		head.line("}")
		out, err = head.done()
		return err
	})
	return out, err
}

// compileBlockPass converts the value passed with & to a proc. A bare &
// forwards the block of the enclosing method.
func (c *Compiler) compileBlockPass(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	value := n.NodeAt(0)
	if value == nil {
		s := c.scopes.FindYieldingScope()
		if s == nil || s.IsTop() {
			return nil, errors.Syntaxf(errors.E2003, n.Loc, "no anonymous block parameter")
		}
		s.UsesBlock()
		return c.text(n, s.BlockName)
	}
	c.helper("to_proc")
	w := c.writer(n)
	w.str("$to_proc(")
	w.expr(value)
	w.str(")")
	return w.done()
}
