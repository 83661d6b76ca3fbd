package compiler

import (
	"strings"

	"github.com/rbjs-dev/rbjs/ast"
	"github.com/rbjs-dev/rbjs/fragment"
	"github.com/rbjs-dev/rbjs/options"
	"github.com/rbjs-dev/rbjs/scope"
)

func (c *Compiler) compileLvar(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	name := string(n.SymbolAt(0))
	if name == "" {
		return nil, malformed(n, "expected a name")
	}
	if !c.irbLocal(name) {
		return c.text(n, jsLocal(name))
	}
	w := c.writer(n)
	w.fail(c.scopes.WithTemp(func(tmp string) error {
		w.strf("((%s = RB.irb_vars.%s) == null ? nil : %s)", tmp, name, tmp)
		return nil
	}))
	return w.done()
}

func (c *Compiler) compileLvasgn(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	return c.assign(n, level)
}

func (c *Compiler) compileIvar(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	name := string(n.SymbolAt(0))
	if name == "" {
		return nil, malformed(n, "expected a name")
	}
	return c.text(n, "self."+ivarName(name))
}

func (c *Compiler) compileIvasgn(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	return c.assign(n, level)
}

func (c *Compiler) compileGvar(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	name := string(n.SymbolAt(0))
	if name == "" {
		return nil, malformed(n, "expected a name")
	}
	c.helper("gvars")
	return c.text(n, "$gvars["+quote(strings.TrimPrefix(name, "$"))+"]")
}

func (c *Compiler) compileGvasgn(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	return c.assign(n, level)
}

// assign compiles lvasgn, ivasgn and gvasgn nodes. An assignment without a
// value, as found in rescue clauses, compiles to the target alone.
func (c *Compiler) assign(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	target, err := c.target(n)
	if err != nil {
		return nil, err
	}
	if n.Child(1) == nil {
		return c.text(n, target)
	}
	w := c.writer(n)
	if level == Expr {
		w.str("(")
	}
	w.str(target, " = ")
	w.expr(n.NodeAt(1))
	if level == Expr {
		w.str(")")
	}
	return w.done()
}

// target returns the JavaScript left-hand side of an assignment node,
// declaring the local variable when needed.
func (c *Compiler) target(n *ast.Node) (string, error) {
	name := string(n.SymbolAt(0))
	if name == "" {
		return "", malformed(n, "expected a name")
	}
	switch n.Kind {
	case ast.Lvasgn:
		if c.irbLocal(name) {
			return "RB.irb_vars." + name, nil
		}
		if !c.scopes.IsLocal(name) {
			c.scopes.Current().AddLocal(name)
		}
		return jsLocal(name), nil
	case ast.Ivasgn:
		return "self." + ivarName(name), nil
	case ast.Gvasgn:
		c.helper("gvars")
		return "$gvars[" + quote(strings.TrimPrefix(name, "$")) + "]", nil
	}
	return "", malformed(n, "not an assignment")
}

// irbLocal reports whether the local name is kept in RB.irb_vars: irb mode
// is on and the variable belongs to the program scope.
func (c *Compiler) irbLocal(name string) bool {
	if !c.flag(options.IRB) {
		return false
	}
	for s := c.scopes.Current(); s != nil; s = c.scopes.Parent(s) {
		if s.IsTop() {
			return !s.HasArg(name)
		}
		if !s.IsBlock() || s.HasLocal(name) {
			return false
		}
	}
	return false
}

func (c *Compiler) compileConst(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	name := string(n.SymbolAt(1))
	if name == "" {
		return nil, malformed(n, "expected a constant name")
	}
	c.helper("const_get")
	w := c.writer(n)
	w.str("$const_get(")
	if base := n.NodeAt(0); base != nil {
		w.expr(base)
	} else {
		w.str("$nesting")
	}
	w.str(", ", quote(name), ")")
	return w.done()
}

func (c *Compiler) compileCasgn(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	name := string(n.SymbolAt(1))
	if name == "" {
		return nil, malformed(n, "expected a constant name")
	}
	c.helper("const_set")
	w := c.writer(n)
	w.str("$const_set(")
	if base := n.NodeAt(0); base != nil {
		w.expr(base)
	} else {
		w.str(c.cref())
	}
	w.str(", ", quote(name), ", ")
	w.expr(n.NodeAt(2))
	w.str(")")
	return w.done()
}

// cref returns the module new constants are defined in.
func (c *Compiler) cref() string {
	for s := c.scopes.Current(); s != nil; s = c.scopes.Parent(s) {
		switch s.Kind {
		case scope.Top:
			return "RB.Object"
		case scope.Class, scope.Module:
			return "self"
		case scope.Def:
			return "($nesting[0] || RB.Object)"
		}
	}
	return "RB.Object"
}
