package compiler

import (
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rbjs-dev/rbjs/ast"
	"github.com/rbjs-dev/rbjs/errors"
	"github.com/rbjs-dev/rbjs/fragment"
	"github.com/rbjs-dev/rbjs/options"
	"github.com/rbjs-dev/rbjs/scope"
)

// paramList describes the parameters of a method or block.
type paramList struct {
	// names are the JavaScript parameters, in order.
	names     []string
	required  []string
	optional  []*ast.Node
	rest      string
	hasRest   bool
	restIndex int
	block     string
}

// arity returns the Ruby arity: the required count, or its one's
// complement when optional or rest parameters exist.
func (ps *paramList) arity() int {
	if len(ps.optional) > 0 || ps.hasRest {
		return -(len(ps.required) + 1)
	}
	return len(ps.required)
}

// params declares the parameters of args in s.
func (c *Compiler) params(args *ast.Node, s *scope.Scope) (*paramList, error) {
	ps := &paramList{}
	if args == nil {
		return ps, nil
	}
	if !args.Is(ast.Args) {
		return nil, malformed(args, "expected a parameter list")
	}
	for _, arg := range args.Nodes(0) {
		name := string(arg.SymbolAt(0))
		if name == "" && !arg.Is(ast.Restarg) {
			return nil, malformed(arg, "expected a parameter name")
		}
		js := jsLocal(name)
		switch arg.Kind {
		case ast.Arg:
			s.AddArg(name)
			ps.names = append(ps.names, js)
			ps.required = append(ps.required, js)
		case ast.Optarg:
			s.AddArg(name)
			ps.names = append(ps.names, js)
			ps.optional = append(ps.optional, arg)
		case ast.Restarg:
			ps.hasRest = true
			ps.restIndex = len(ps.names)
			if name != "" {
				s.AddLocal(name)
				ps.rest = js
			}
		case ast.Blockarg:
			s.AddArg(name)
			ps.block = js
			s.BlockName = js
		default:
			return nil, malformed(args, "unexpected "+arg.Kind.String())
		}
	}
	return ps, nil
}

// paramPrelude fills in default values and collects rest arguments.
func (c *Compiler) paramPrelude(w *writer, ps *paramList) {
	for _, opt := range ps.optional {
		name := jsLocal(string(opt.SymbolAt(0)))
		w.line("if (", name, " == null) ", name, " = ")
		w.expr(opt.NodeAt(1))
		w.str(";")
	}
	if ps.rest != "" {
		c.helper("slice")
		w.line(ps.rest, " = $slice(arguments, ", strconv.Itoa(ps.restIndex), ");")
	}
}

// declare writes the var statement of a function scope: the entries of
// pre, the locals initialized to nil and the temporaries.
func (c *Compiler) declare(w *writer, s *scope.Scope, pre []string) {
	vars := slices.Clone(pre)
	for _, name := range s.Locals() {
		vars = append(vars, jsLocal(name)+" = nil")
	}
	vars = append(vars, s.Temps()...)
	if len(vars) > 0 {
		w.line("var ", strings.Join(vars, ", "), ";")
	}
}

// defMeta is the optional last argument of $def.
type defMeta struct {
	SourceLocation []any    `json:"source_location,omitempty"`
	Comments       []string `json:"comments,omitempty"`
}

func (c *Compiler) compileDef(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	name := string(n.SymbolAt(0))
	if name == "" {
		return nil, malformed(n, "expected a method name")
	}
	body := n.NodeAt(2)
	var out []fragment.Fragment
	err := c.inScope(scope.Def, func(s *scope.Scope) error {
		s.Name = name
		if isIdentifier(name) {
			s.Identity = "$$" + name
		} else {
			s.Identity = c.uniqueName(name)
		}
		s.BlockName = "$yield"
		s.CatchReturn = blockReturns(body)
		ps, err := c.params(n.NodeAt(1), s)
		if err != nil {
			return err
		}

		w := c.writer(n)
		w.indented(func() {
			c.arityCheck(w, name, ps)
			c.paramPrelude(w, ps)
			if !s.CatchReturn {
				w.stmts(c.rewriter.Returns(body))
				return
			}
			w.line("try {")
			w.indented(func() { w.stmts(c.rewriter.Returns(body)) })
			w.line("} catch ($returner) {")
			w.indented(func() {
				w.line("if ($returner === RB.returner) { return $returner.$v; }")
				w.line("throw $returner;")
			})
			w.line("}")
		})
		inner, err := w.done()
		if err != nil {
			return err
		}

		c.helper("def")
		head := c.writer(n)
		head.str("$def(self, ", quote("$"+name), ", ")
		if s.Async {
			head.str("async ")
		}
		head.str("function ", s.Identity, "(", strings.Join(ps.names, ", "), ") {")
		pre := []string{"self = this"}
		usesBlock := ps.block != "" || s.BlockUsed()
		if usesBlock {
			pre = append(pre, s.BlockName+" = "+s.Identity+".$$p || nil")
		}
		head.indented(func() {
			c.declare(head, s, pre)
			if usesBlock {
				head.line(s.Identity, ".$$p = null;")
			}
		})
		head.add(inner)
		head.line("}, ", strconv.Itoa(ps.arity()))
		if meta := c.defMeta(n); meta != nil {
			data, err := json.Marshal(meta)
			if err != nil {
				return err
			}
			head.str(", ", string(data))
		}
		head.str(")")
		out, err = head.done()
		return err
	})
	return out, err
}

// blockReturns reports whether a block in the method body returns from
// the method.
func blockReturns(body *ast.Node) bool {
	found := false
	ast.Inspect(ast.S(ast.Begin, body), func(n *ast.Node) bool {
		if found || n.Is(ast.Def, ast.Class, ast.Module) {
			return false
		}
		if n.Is(ast.Block) {
			found = ast.Contains(ast.S(ast.Begin, n.NodeAt(2)), []ast.Kind{ast.Return},
				ast.Def, ast.Class, ast.Module)
		}
		return !found
	})
	return found
}

// arityCheck raises ArgumentError at runtime when the method receives the
// wrong number of arguments.
func (c *Compiler) arityCheck(w *writer, name string, ps *paramList) {
	if !c.flag(options.ArityCheck) {
		return
	}
	c.helper("ac")
	required := len(ps.required)
	arity := strconv.Itoa(ps.arity())
	call := " $ac(arguments.length, " + arity + ", self, " + quote(name) + ");"
	if len(ps.optional) == 0 && !ps.hasRest {
		w.line("if (arguments.length !== ", strconv.Itoa(required), ")", call)
		return
	}
	if required > 0 {
		w.line("if (arguments.length < ", strconv.Itoa(required), ")", call)
	}
	if !ps.hasRest {
		w.line("if (arguments.length > ", strconv.Itoa(required+len(ps.optional)), ")", call)
	}
}

// defMeta returns the source location and documentation comments of a
// method, or nil when neither is enabled.
func (c *Compiler) defMeta(n *ast.Node) *defMeta {
	var meta defMeta
	if c.flag(options.EnableSourceLocation) {
		meta.SourceLocation = []any{c.file, n.Loc.LineNumber()}
	}
	if c.flag(options.ParseComments) {
		meta.Comments = c.commentsAbove(n.Loc.Line)
	}
	if meta.SourceLocation == nil && meta.Comments == nil {
		return nil
	}
	return &meta
}

// commentsAbove returns the comment lines directly preceding the 0-indexed
// line, without blank lines in between.
func (c *Compiler) commentsAbove(line int) []string {
	var lines []string
	want := line - 1
	for i := len(c.comments) - 1; i >= 0; i-- {
		cl := c.comments[i].Pos.Line
		if cl >= line {
			continue
		}
		if cl != want {
			break
		}
		lines = append(lines, c.comments[i].Text)
		want--
	}
	slices.Reverse(lines)
	return lines
}

func (c *Compiler) compileClass(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	return c.compileNamespace(n, true)
}

func (c *Compiler) compileModule(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	return c.compileNamespace(n, false)
}

// compileNamespace compiles a class or module body inside a function
// receiving the enclosing module, the superclass and the nesting.
func (c *Compiler) compileNamespace(n *ast.Node, class bool) ([]fragment.Fragment, error) {
	path := n.NodeAt(0)
	if !path.Is(ast.Const) || path.SymbolAt(1) == "" {
		return nil, malformed(n, "expected a constant name")
	}
	name := string(path.SymbolAt(1))
	body := n.NodeAt(1)
	if class {
		body = n.NodeAt(2)
	}

	// base and superclass are evaluated outside the new scope
	args := c.writer(n)
	if base := path.NodeAt(0); base != nil {
		args.expr(base)
	} else {
		args.str(c.cref())
	}
	if class {
		args.str(", ")
		if super := n.NodeAt(1); super != nil {
			args.expr(super)
		} else {
			args.str("null")
		}
	}
	args.str(", $nesting")
	argFrags, err := args.done()
	if err != nil {
		return nil, err
	}

	var out []fragment.Fragment
	err = c.inScope(scopeKind(class), func(s *scope.Scope) error {
		s.Name = name
		w := c.writer(n)
		w.indented(func() { w.stmts(c.rewriter.Returns(body)) })
		inner, err := w.done()
		if err != nil {
			return err
		}

		head := c.writer(n)
		var create string
		if class {
			c.helper("klass")
			head.str("(function($base, $super, $parent_nesting) {")
			create = "self = $klass($base, $super, " + quote(name) + ")"
		} else {
			c.helper("module")
			head.str("(function($base, $parent_nesting) {")
			create = "self = $module($base, " + quote(name) + ")"
		}
		head.indented(func() {
			c.declare(head, s, []string{create, "$nesting = [self].concat($parent_nesting)"})
		})
		head.add(inner)
		head.line("})(")
		out, err = head.done()
		return err
	})
	if err != nil {
		return nil, err
	}
	out = append(out, argFrags...)
	return append(out, c.fragment(")", n)), nil
}

func scopeKind(class bool) scope.Kind {
	if class {
		return scope.Class
	}
	return scope.Module
}

func (c *Compiler) compileUndef(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	c.helper("udef")
	w := c.writer(n)
	if level == Expr {
		w.str("(")
	}
	for i, sym := range n.Nodes(0) {
		name := string(sym.SymbolAt(0))
		if !sym.Is(ast.Sym) || name == "" {
			return nil, malformed(n, "expected method names")
		}
		switch {
		case i == 0:
		case level == Expr:
			w.str(", ")
		default:
			w.line()
		}
		w.str("$udef(self, ", quote("$"+name), ")")
		if level == Stmt {
			w.str(";")
		}
	}
	if level == Expr {
		w.str(", nil)")
	}
	return w.done()
}

// yieldCall compiles a call of the block of the enclosing method.
func (c *Compiler) yieldCall(n *ast.Node) ([]fragment.Fragment, error) {
	s := c.scopes.FindYieldingScope()
	if s == nil || s.IsTop() {
		return nil, errors.Syntaxf(errors.E2003, n.Loc, "invalid yield (no block to yield to)")
	}
	s.UsesBlock()
	args := n.Nodes(0)
	w := c.writer(n)
	if len(args) == 1 {
		c.helper("yield1")
		w.str("$yield1(", s.BlockName, ", ")
		w.expr(args[0])
		w.str(")")
		return w.done()
	}
	c.helper("yieldX")
	w.str("$yieldX(", s.BlockName, ", [")
	w.exprs(args, ", ")
	w.str("])")
	return w.done()
}

func (c *Compiler) compileYield(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	return c.yieldCall(n)
}

func (c *Compiler) compileReturnableYield(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	if level == Expr {
		return c.yieldCall(n)
	}
	w := c.writer(n)
	w.str("return ")
	w.try(c.yieldCall(n))
	w.str(";")
	return w.done()
}

func voidValue(n *ast.Node) error {
	return errors.Syntaxf(errors.E2004, n.Loc, "void value expression: %s cannot be used as a value", n.Kind)
}

// returnValue returns the value of a return or break node: nil, the single
// value, or an array of the values.
func returnValue(n *ast.Node) *ast.Node {
	values := n.Nodes(0)
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	}
	children := make([]any, len(values))
	for i, v := range values {
		children[i] = v
	}
	return ast.At(n.Loc, ast.Array, children...)
}

// compileReturn returns from the method. Inside a block the return is
// thrown with $ret and caught by the method.
func (c *Compiler) compileReturn(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	value := returnValue(n)
	if s := c.scopes.Current(); s != nil && s.IsBlock() {
		if def := c.scopes.FindParentDef(); def != nil {
			def.CatchReturn = true
		}
		c.helper("ret")
		w := c.writer(n)
		w.str("$ret(")
		w.expr(value)
		w.str(")")
		if level == Stmt {
			w.str(";")
		}
		return w.done()
	}
	if level == Expr {
		return nil, voidValue(n)
	}
	w := c.writer(n)
	w.str("return ")
	w.expr(value)
	w.str(";")
	return w.done()
}

func (c *Compiler) compileJSReturn(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	value := n.NodeAt(0)
	switch {
	case value.Is(ast.Ensure):
		return c.process(value, Stmt)
	case value.Is(ast.Case) && level == Stmt:
		return c.compileCase(c.returningCase(value), Stmt)
	}
	if level == Expr {
		return nil, voidValue(n)
	}
	w := c.writer(n)
	w.str("return ")
	w.expr(value)
	w.str(";")
	return w.done()
}

// compileXstr emits backtick strings as JavaScript when allowed, and as a
// call of the backtick method otherwise.
func (c *Compiler) compileXstr(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	parts := n.Nodes(0)
	returning := false
	if len(parts) == 1 && parts[0].Is(ast.JSReturn) {
		returning = true
		parts = parts[0].Nodes(0)
	}
	if !c.allowXstr() {
		c.recordCall("`")
		children := make([]any, len(parts))
		for i, p := range parts {
			children[i] = p
		}
		w := c.writer(n)
		if returning {
			w.str("return ")
		}
		w.str("self[\"$`\"](")
		w.expr(ast.At(n.Loc, ast.Dstr, children...))
		w.str(")")
		if level == Stmt {
			w.str(";")
		}
		return w.done()
	}

	code := c.writer(n)
	for _, p := range parts {
		if s, ok := literalPath(p); ok {
			code.out = append(code.out, c.fragment(s, p))
			continue
		}
		code.expr(p)
	}
	frags, err := code.done()
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(fragment.Text(frags))

	w := c.writer(n)
	switch {
	case returning:
		w.str("return ")
		w.add(frags)
		if !strings.HasSuffix(text, ";") {
			w.str(";")
		}
	case level == Expr:
		w.str("(")
		w.add(frags)
		w.str(")")
	default:
		w.add(frags)
		if text != "" && !strings.HasSuffix(text, ";") && !strings.HasSuffix(text, "}") {
			w.str(";")
		}
	}
	return w.done()
}
