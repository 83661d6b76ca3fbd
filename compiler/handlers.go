package compiler

import (
	"math"
	"strconv"

	"github.com/rbjs-dev/rbjs/ast"
	"github.com/rbjs-dev/rbjs/errors"
	"github.com/rbjs-dev/rbjs/fragment"
)

// handler compiles one node kind.
type handler func(c *Compiler, n *ast.Node, level Level) ([]fragment.Fragment, error)

var handlers map[ast.Kind]handler

func init() {
	handlers = map[ast.Kind]handler{
		ast.Nil:   (*Compiler).compileNil,
		ast.True:  (*Compiler).compileTrue,
		ast.False: (*Compiler).compileFalse,
		ast.Self:  (*Compiler).compileSelf,
		ast.Int:   (*Compiler).compileInt,
		ast.Float: (*Compiler).compileFloat,
		ast.Str:   (*Compiler).compileStr,
		ast.Dstr:  (*Compiler).compileDstr,
		ast.Sym:   (*Compiler).compileSym,
		ast.Array: (*Compiler).compileArray,
		ast.Hash:  (*Compiler).compileHash,
		ast.Pair:  (*Compiler).compilePair,

		ast.Lvar:   (*Compiler).compileLvar,
		ast.Lvasgn: (*Compiler).compileLvasgn,
		ast.Ivar:   (*Compiler).compileIvar,
		ast.Ivasgn: (*Compiler).compileIvasgn,
		ast.Gvar:   (*Compiler).compileGvar,
		ast.Gvasgn: (*Compiler).compileGvasgn,
		ast.Const:  (*Compiler).compileConst,
		ast.Casgn:  (*Compiler).compileCasgn,

		ast.Send:      (*Compiler).compileSend,
		ast.Block:     (*Compiler).compileBlock,
		ast.BlockPass: (*Compiler).compileBlockPass,

		ast.Begin:           (*Compiler).compileBegin,
		ast.Kwbegin:         (*Compiler).compileBegin,
		ast.If:              (*Compiler).compileIf,
		ast.And:             (*Compiler).compileAnd,
		ast.Or:              (*Compiler).compileOr,
		ast.While:           (*Compiler).compileWhile,
		ast.Until:           (*Compiler).compileWhile,
		ast.WhilePost:       (*Compiler).compileWhile,
		ast.UntilPost:       (*Compiler).compileWhile,
		ast.Break:           (*Compiler).compileBreak,
		ast.Next:            (*Compiler).compileNext,
		ast.Redo:            (*Compiler).compileRedo,
		ast.Retry:           (*Compiler).compileRetry,
		ast.Return:          (*Compiler).compileReturn,
		ast.JSReturn:        (*Compiler).compileJSReturn,
		ast.Yield:           (*Compiler).compileYield,
		ast.ReturnableYield: (*Compiler).compileReturnableYield,
		ast.Case:            (*Compiler).compileCase,
		ast.When:            (*Compiler).compileWhen,
		ast.Rescue:          (*Compiler).compileRescue,
		ast.Resbody:         (*Compiler).compileResbody,
		ast.Ensure:          (*Compiler).compileEnsure,

		ast.Def:    (*Compiler).compileDef,
		ast.Class:  (*Compiler).compileClass,
		ast.Module: (*Compiler).compileModule,
		ast.Undef:  (*Compiler).compileUndef,
		ast.Xstr:   (*Compiler).compileXstr,
		ast.Top:    (*Compiler).compileTop,
	}
}

// statementKinds produce complete JavaScript statements, so no semicolon
// is added after them.
var statementKinds = map[ast.Kind]bool{
	ast.Begin: true, ast.Kwbegin: true, ast.If: true, ast.And: true,
	ast.Or: true, ast.While: true, ast.Until: true, ast.WhilePost: true,
	ast.UntilPost: true, ast.Break: true, ast.Next: true, ast.Redo: true,
	ast.Retry: true, ast.Return: true, ast.JSReturn: true,
	ast.ReturnableYield: true, ast.Case: true, ast.When: true,
	ast.Rescue: true, ast.Resbody: true, ast.Ensure: true, ast.Undef: true,
	ast.Xstr: true, ast.Top: true,
}

// process compiles n at the given level. A nil node is Ruby nil.
func (c *Compiler) process(n *ast.Node, level Level) ([]fragment.Fragment, error) {
	if n == nil {
		if level == Stmt {
			return nil, nil
		}
		return []fragment.Fragment{c.fragment("nil", nil)}, nil
	}
	h, ok := handlers[n.Kind]
	if !ok {
		return nil, &errors.UnsupportedError{Kind: n.Kind.String(), Pos: n.Loc}
	}
	prev := c.currentNode
	c.currentNode = n
	var frags []fragment.Fragment
	var err error
	if level == Expr && needsClosure(n) {
		frags, err = c.closure(n)
	} else {
		frags, err = h(c, n, level)
	}
	if err != nil {
		// currentNode is left on the failing node for error locations
		return nil, err
	}
	c.currentNode = prev
	return frags, nil
}

// stmt compiles n as a statement terminated by a semicolon when needed.
func (c *Compiler) stmt(n *ast.Node) ([]fragment.Fragment, error) {
	frags, err := c.process(n, Stmt)
	if err != nil || n == nil || len(frags) == 0 || statementKinds[n.Kind] {
		return frags, err
	}
	return append(frags, c.fragment(";", n)), nil
}

// needsClosure reports whether n can only be compiled as a statement and
// must be wrapped in a function to produce a value.
func needsClosure(n *ast.Node) bool {
	switch n.Kind {
	case ast.Rescue, ast.Ensure:
		return true
	case ast.If:
		return n.Returning
	case ast.Begin, ast.Kwbegin:
		for _, child := range n.Nodes(0) {
			if child.Is(ast.JSReturn, ast.ReturnableYield) || needsClosure(child) {
				return true
			}
		}
	}
	return false
}

// closure compiles n inside an immediately invoked function returning its
// value.
func (c *Compiler) closure(n *ast.Node) ([]fragment.Fragment, error) {
	return c.closureOf(n, func(w *writer) { w.stmtLine(c.rewriter.Returns(n)) })
}

// closureOf wraps the statements written by body in an immediately invoked
// function. The function is async when an await was emitted inside it.
func (c *Compiler) closureOf(n *ast.Node, body func(w *writer)) ([]fragment.Fragment, error) {
	awaits := c.awaits
	restore := c.resetRetries()
	inner := c.writer(n)
	inner.indented(func() { body(inner) })
	restore()
	frags, err := inner.done()
	if err != nil {
		return nil, err
	}
	async := c.awaits > awaits
	w := c.writer(n)
	if async {
		w.str("(await (async function() {")
	} else {
		w.str("(function() {")
	}
	w.add(frags)
	w.line("})()")
	if async {
		w.str(")")
	}
	return w.done()
}

func (c *Compiler) text(n *ast.Node, code string) ([]fragment.Fragment, error) {
	return []fragment.Fragment{c.fragment(code, n)}, nil
}

func malformed(n *ast.Node, detail string) error {
	return errors.Syntaxf(errors.E2006, n.Loc, "malformed %s node: %s", n.Kind, detail)
}

func (c *Compiler) compileNil(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	return c.text(n, "nil")
}

func (c *Compiler) compileTrue(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	return c.text(n, "true")
}

func (c *Compiler) compileFalse(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	return c.text(n, "false")
}

func (c *Compiler) compileSelf(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	return c.text(n, "self")
}

func (c *Compiler) compileInt(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	v, ok := n.Child(0).(int64)
	if !ok {
		return nil, malformed(n, "expected an integer")
	}
	return c.text(n, strconv.FormatInt(v, 10))
}

func (c *Compiler) compileFloat(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	var v float64
	switch x := n.Child(0).(type) {
	case float64:
		v = x
	case int64:
		v = float64(x)
	default:
		return nil, malformed(n, "expected a number")
	}
	switch {
	case math.IsNaN(v):
		return c.text(n, "NaN")
	case math.IsInf(v, 1):
		return c.text(n, "Infinity")
	case math.IsInf(v, -1):
		return c.text(n, "-Infinity")
	}
	return c.text(n, strconv.FormatFloat(v, 'g', -1, 64))
}

func (c *Compiler) compileStr(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	s, ok := n.Child(0).(string)
	if !ok {
		return nil, malformed(n, "expected a string")
	}
	return c.text(n, quote(s))
}

func (c *Compiler) compileSym(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	switch v := n.Child(0).(type) {
	case ast.Symbol:
		return c.text(n, quote(string(v)))
	case string:
		return c.text(n, quote(v))
	}
	return nil, malformed(n, "expected a name")
}

// compileDstr concatenates the parts of an interpolated string. Evaluated
// parts are converted with to_s.
func (c *Compiler) compileDstr(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	parts := n.Nodes(0)
	if len(parts) == 0 {
		return c.text(n, `""`)
	}
	w := c.writer(n)
	if !parts[0].Is(ast.Str) {
		w.str(`"" + `)
	}
	for i, part := range parts {
		if i > 0 {
			w.str(" + ")
		}
		if part.Is(ast.Str) {
			w.expr(part)
			continue
		}
		c.recordCall("to_s")
		w.str("(")
		w.expr(part)
		w.str(").$to_s()")
	}
	return w.done()
}

func (c *Compiler) compileArray(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	w := c.writer(n)
	w.str("[")
	w.exprs(n.Nodes(0), ", ")
	w.str("]")
	return w.done()
}

func (c *Compiler) compileHash(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	c.helper("hash")
	w := c.writer(n)
	w.str("$hash(")
	for i, pair := range n.Nodes(0) {
		if !pair.Is(ast.Pair) {
			return nil, malformed(n, "expected pairs")
		}
		if i > 0 {
			w.str(", ")
		}
		w.expr(pair)
	}
	w.str(")")
	return w.done()
}

func (c *Compiler) compilePair(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	if n.Len() != 2 {
		return nil, malformed(n, "expected a key and a value")
	}
	w := c.writer(n)
	w.expr(n.NodeAt(0))
	w.str(", ")
	w.expr(n.NodeAt(1))
	return w.done()
}
