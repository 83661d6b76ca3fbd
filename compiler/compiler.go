// Package compiler generates JavaScript from a Ruby syntax tree.
//
// # Compilation
//
// A Compiler is one compilation session. Compile obtains a syntax tree from
// the configured parser, reads the directive block from the leading
// comments, resolves the options and walks the tree. Every node kind has a
// handler returning the fragments of code for the node; handlers recurse
// through process for their children.
//
// # Levels
//
// A node is compiled either as a statement (Stmt) or for its value (Expr).
// Ruby treats most constructs as expressions while JavaScript does not, so
// a construct that only exists as a JavaScript statement (a loop, a
// begin/rescue, a case) is wrapped in a closure when its value is needed.
// Bodies whose value is returned, such as methods and blocks, go through
// the return rewrite first so their trailing expressions become explicit
// returns.
//
// # Errors
//
// Failures raised by the parser or by a handler are caught once, in Compile,
// and returned as a *errors.CompileError naming the file, the line and a
// trimmed excerpt of that line.
package compiler

import (
	"maps"
	"slices"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/rbjs-dev/rbjs/ast"
	"github.com/rbjs-dev/rbjs/errors"
	"github.com/rbjs-dev/rbjs/fragment"
	"github.com/rbjs-dev/rbjs/internal/token"
	"github.com/rbjs-dev/rbjs/options"
	"github.com/rbjs-dev/rbjs/parser"
	"github.com/rbjs-dev/rbjs/rewrite"
	"github.com/rbjs-dev/rbjs/scope"
)

// Version is written in the header of generated code and is part of every
// cache key.
const Version = "0.1.0"

// Level tells a handler whether the value of the node is used.
type Level int

const (
	// Stmt compiles the node as a statement. Its value is discarded.
	Stmt Level = iota
	// Expr compiles the node as a JavaScript expression.
	Expr
)

func (l Level) String() string {
	if l == Expr {
		return "expr"
	}
	return "stmt"
}

// Compiler compiles one source text. A Compiler must not be used from
// several goroutines at once.
type Compiler struct {
	source   string
	parser   parser.Parser
	registry *options.Registry
	explicit map[string]any
	log      zerolog.Logger
	store    Store
	session  uuid.UUID

	// Per compilation state, reset by Compile.
	opts           *options.Set
	file           string
	await          options.AwaitMatcher
	rewriter       *rewrite.Rewriter
	scopes         *scope.Manager
	indent         string
	unique         int
	awaits         int
	helpers        map[string]bool
	methodCalls    map[string]bool
	requires       []string
	requiredTrees  []string
	autoloads      []string
	comments       []parser.Comment
	directives     map[string]any
	eof            string
	retries        []*retryLoop
	retryDepth     int
	warnedBacktick bool
	currentNode    *ast.Node

	fragments []fragment.Fragment
	result    string
	sourceMap *fragment.SourceMap
	cached    bool
}

// New returns a compiler for source. Options are checked when Compile is
// called.
func New(source string, opts ...Option) *Compiler {
	c := &Compiler{
		source:   source,
		parser:   parser.NewSexp(),
		registry: options.DefaultRegistry,
		explicit: map[string]any{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if id, err := uuid.NewV4(); err == nil {
		c.session = id
	}
	c.log = c.log.With().Str("session", c.session.String()).Logger()
	return c
}

// Compile compiles source and returns the generated JavaScript.
func Compile(source string, opts ...Option) (string, error) {
	return New(source, opts...).Compile()
}

// Compile runs the compilation and returns the generated JavaScript. When a
// cache store is configured, a stored artifact for the same source and
// options is used instead and Fragments returns nil.
func (c *Compiler) Compile() (string, error) {
	c.reset()
	set, err := c.registry.NewSet(c.explicit)
	if err != nil {
		return "", c.wrap(err)
	}
	c.opts = set
	if c.file, err = set.String(options.File); err != nil {
		return "", c.wrap(err)
	}

	var key string
	if c.store != nil {
		key = CacheKey(c.source, c.explicit)
		var a Artifact
		if c.store.Get(key, &a) && a.Version == Version {
			c.restore(&a)
			c.log.Debug().Str("file", c.file).Str("key", key).Msg("using cached compilation")
			return c.result, nil
		}
	}
	if err := c.compile(); err != nil {
		return "", err
	}
	if c.store != nil {
		if err := c.store.Set(key, c.Artifact()); err != nil {
			c.log.Warn().Err(err).Str("file", c.file).Msg("could not cache compilation")
		}
	}
	return c.result, nil
}

func (c *Compiler) reset() {
	c.opts = nil
	c.file = ""
	c.await = options.AwaitMatcher{}
	c.rewriter = &rewrite.Rewriter{AllowXstr: c.allowXstr}
	c.scopes = scope.NewManager()
	c.indent = ""
	c.unique = 0
	c.awaits = 0
	c.helpers = map[string]bool{}
	c.methodCalls = map[string]bool{}
	c.requires = nil
	c.requiredTrees = nil
	c.autoloads = nil
	c.comments = nil
	c.directives = map[string]any{}
	c.eof = ""
	c.retries = nil
	c.retryDepth = 0
	c.warnedBacktick = false
	c.currentNode = nil
	c.fragments = nil
	c.result = ""
	c.sourceMap = nil
	c.cached = false
}

func (c *Compiler) compile() error {
	tree, comments, eof, err := c.parser.Tokenize(parser.NewSourceBuffer(c.file, c.source))
	if err != nil {
		return c.wrap(err)
	}
	c.comments = comments
	c.eof = eof
	c.directives = parseDirectives(tree, comments)
	c.opts.SetDirectives(c.directives)
	if err := c.validate(); err != nil {
		return c.wrap(err)
	}
	if c.await, err = c.opts.Await(); err != nil {
		return c.wrap(err)
	}
	if v, ok := c.directives["helpers"]; ok {
		for _, name := range strings.Split(cast.ToString(v), ",") {
			if name = strings.TrimSpace(name); name != "" {
				c.helpers[name] = true
			}
		}
	}

	top := ast.S(ast.Top, tree)
	if tree != nil {
		top.Loc = tree.Loc
	}
	frags, err := c.process(top, Stmt)
	if err != nil {
		return c.wrap(err)
	}
	c.fragments, c.result = fragment.Assemble(frags)
	return nil
}

// validate resolves every option with the type of its default, so a value
// that cannot be used is reported before any code is generated.
func (c *Compiler) validate() error {
	if err := c.opts.Validate(); err != nil {
		return err
	}
	for _, name := range c.registry.Names() {
		if name == options.Await {
			continue
		}
		decl, _ := c.registry.Lookup(name)
		var err error
		switch decl.Default.(type) {
		case bool:
			_, err = c.opts.Bool(name)
		case string:
			_, err = c.opts.String(name)
		case []string:
			_, err = c.opts.Strings(name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// flag returns a boolean option. Options are validated before code
// generation starts, so errors cannot happen here.
func (c *Compiler) flag(name string) bool {
	b, _ := c.opts.Bool(name)
	return b
}

// wrap turns any failure into the single structured error of the package.
func (c *Compiler) wrap(err error) error {
	if err == nil {
		return nil
	}
	var ce *errors.CompileError
	if errors.As(err, &ce) {
		return ce
	}
	out := &errors.CompileError{Message: err.Error(), Cause: err}
	if coded, ok := err.(interface{ Code() errors.ErrorCode }); ok {
		out.Code = coded.Code()
	}
	var cfg *errors.ConfigError
	if errors.As(err, &cfg) {
		out.Suggestions = cfg.Suggestions
		return out
	}
	pos := token.NoPos
	if c.currentNode != nil {
		pos = c.currentNode.Loc
	}
	var positioned errors.Positioned
	if errors.As(err, &positioned) && positioned.Position().IsValid() {
		pos = positioned.Position()
	}
	out.Filename = c.file
	out.Line = pos.LineNumber()
	out.Column = pos.ColumnNumber()
	out.SourceLine = strings.TrimSpace(c.sourceLine(pos.Line))
	return out
}

// sourceLine returns the 0-indexed line of the source, or "".
func (c *Compiler) sourceLine(line int) string {
	lines := strings.Split(c.source, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	return lines[line]
}

// warn logs a compilation warning located at n.
func (c *Compiler) warn(n *ast.Node, msg string) {
	ev := c.log.Warn().Str("file", c.file)
	if n != nil {
		ev = ev.Int("line", n.Loc.LineNumber())
	}
	ev.Msg(msg)
}

// allowXstr reports whether backtick strings embed JavaScript. When the
// option is left unset, embedding is allowed and a deprecation warning is
// logged once.
func (c *Compiler) allowXstr() bool {
	v, _ := c.opts.Resolve(options.BacktickJavaScript)
	if v == nil {
		if !c.warnedBacktick {
			c.warnedBacktick = true
			c.warn(c.currentNode, "backtick strings are compiled as embedded JavaScript; "+
				"add a `# backtick_javascript: true` directive, as this default will change")
		}
		return true
	}
	return cast.ToBool(v)
}

// helper records a runtime helper used by the generated code. It is
// declared as $name in the program prelude.
func (c *Compiler) helper(name string) {
	c.helpers[name] = true
}

// recordCall records a method called by the generated code.
func (c *Compiler) recordCall(name string) {
	if c.flag(options.MethodMissing) {
		c.methodCalls[name] = true
	}
}

// Result returns the generated code of the last compilation.
func (c *Compiler) Result() string {
	return c.result
}

// Fragments returns the fragments the result was assembled from. It is nil
// when the result came from the cache.
func (c *Compiler) Fragments() []fragment.Fragment {
	return c.fragments
}

// SourceMap returns the source map of the result. It is built from the
// fragments on first use, unless the result came from the cache, in which
// case the cached map is returned as is.
func (c *Compiler) SourceMap() *fragment.SourceMap {
	if c.sourceMap == nil && c.fragments != nil {
		c.sourceMap = fragment.NewSourceMap(c.fragments, c.file, c.source)
	}
	return c.sourceMap
}

// Helpers returns the runtime helpers referenced by the result, sorted.
func (c *Compiler) Helpers() []string {
	return slices.Sorted(maps.Keys(c.helpers))
}

// MethodCalls returns the names of the methods called by the result,
// sorted. It is empty when method_missing is disabled.
func (c *Compiler) MethodCalls() []string {
	return slices.Sorted(maps.Keys(c.methodCalls))
}

// Requires returns the files required by the source, in order.
func (c *Compiler) Requires() []string {
	return slices.Clone(c.requires)
}

// RequiredTrees returns the directories passed to require_tree.
func (c *Compiler) RequiredTrees() []string {
	return slices.Clone(c.requiredTrees)
}

// Autoloads returns the files registered with autoload.
func (c *Compiler) Autoloads() []string {
	return slices.Clone(c.autoloads)
}

// Directives returns the values read from the directive block.
func (c *Compiler) Directives() map[string]any {
	return maps.Clone(c.directives)
}

// Comments returns the comments of the source.
func (c *Compiler) Comments() []parser.Comment {
	return slices.Clone(c.comments)
}

// EOFContent returns the text following an __END__ line.
func (c *Compiler) EOFContent() string {
	return c.eof
}

// Cached reports whether the last result came from the cache.
func (c *Compiler) Cached() bool {
	return c.cached
}

// Session returns the id of the compilation session, as logged.
func (c *Compiler) Session() string {
	return c.session.String()
}

// Option returns the resolved value of the named option. It fails before
// Compile has been called.
func (c *Compiler) Option(name string) (any, error) {
	if c.opts == nil {
		set, err := c.registry.NewSet(c.explicit)
		if err != nil {
			return nil, err
		}
		c.opts = set
	}
	return c.opts.Resolve(options.NormalizeName(name))
}
