package compiler

import (
	"strings"

	"github.com/rbjs-dev/rbjs/ast"
	"github.com/rbjs-dev/rbjs/fragment"
	"github.com/rbjs-dev/rbjs/options"
	"github.com/rbjs-dev/rbjs/scope"
)

// topKind is the shape of the generated program.
type topKind int

const (
	topMain topKind = iota
	topEval
	topRequire
)

func (c *Compiler) topKind() topKind {
	switch {
	case c.flag(options.Requirable):
		return topRequire
	case c.flag(options.Eval):
		return topEval
	}
	return topMain
}

// compileTop compiles the whole program: a header comment, the wrapper
// selected by the options, the prelude declaring self, nil and the
// runtime helpers, then the body returning its last value.
func (c *Compiler) compileTop(n *ast.Node, _ Level) ([]fragment.Fragment, error) {
	kind := c.topKind()
	var out []fragment.Fragment
	err := c.inScope(scope.Top, func(s *scope.Scope) error {
		if kind == topEval {
			names, _ := c.opts.Strings(options.ScopeVariables)
			for _, name := range names {
				s.AddArg(name)
			}
		}
		w := c.writer(n)
		w.indented(func() { w.stmts(c.rewriter.Returns(n.NodeAt(0))) })
		body, err := w.done()
		if err != nil {
			return err
		}

		head := c.writer(n)
		head.str("/* Generated by rbjs ", Version, " */")
		head.line()
		module := quote(ModuleName(c.file))
		switch {
		case kind == topRequire:
			head.str("RB.modules[", module, "] = function(RB) {")
		case kind == topEval:
			head.str("(function(RB, self) {")
		case c.flag(options.RuntimeMode):
			head.str("(function(RB) {")
		default:
			if c.flag(options.ESM) && !c.flag(options.NoExport) {
				head.str("export default ")
			}
			head.str("RB.queue(")
			if s.Async {
				head.str("async ")
			}
			head.str("function(RB) {")
		}
		head.indented(func() { c.prelude(head, s, kind) })
		head.line()
		head.add(body)
		switch {
		case kind == topRequire:
			head.line("};")
			if c.flag(options.Load) {
				head.line("RB.load_normalized(", module, ");")
			}
		case kind == topEval:
			head.line("})(RB, self)")
		case c.flag(options.RuntimeMode):
			head.line("})(RB);")
		default:
			head.line("});")
		}
		out, err = head.done()
		return err
	})
	return out, err
}

// prelude declares the program variables and registers the method stubs,
// the embedded source and the text after __END__.
func (c *Compiler) prelude(w *writer, s *scope.Scope, kind topKind) {
	if c.flag(options.UseStrict) {
		w.line(`"use strict";`)
	}
	var vars []string
	if kind != topEval {
		vars = append(vars, "self = RB.top")
	}
	vars = append(vars, "$nesting = []", "nil = RB.nil")
	for _, name := range c.Helpers() {
		vars = append(vars, "$"+name+" = RB."+name)
	}
	if !c.flag(options.IRB) {
		for _, name := range s.Locals() {
			vars = append(vars, jsLocal(name)+" = nil")
		}
	}
	vars = append(vars, s.Temps()...)
	w.line("var ", strings.Join(vars, ", "), ";")

	if calls := c.MethodCalls(); len(calls) > 0 {
		w.line("RB.add_stubs(", quote(strings.Join(calls, ",")), ");")
	}
	if c.flag(options.EnableFileSourceEmbed) {
		w.line("RB.file_sources[", quote(c.file), "] = ", quote(c.source), ";")
	}
	if c.eof != "" {
		w.line("RB.__END__ = ", quote(c.eof), ";")
	}
}
