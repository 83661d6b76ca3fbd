// Package options declares the compilation options understood by the
// compiler and resolves their values for one compilation.
//
// A value is taken from the explicit options given by the caller, then from
// the directive block of the source (only for options that allow it), and
// finally from the declared default.
package options

import (
	"fmt"
	"slices"
	"sync"
)

// Decl declares one option.
type Decl struct {
	Name    string
	Default any
	// Valid, when non-empty, lists every accepted value.
	Valid []any
	// Directive allows the option to be set from the source directive block.
	Directive bool
	// Doc is a one line description shown by the command line tool.
	Doc string
}

// Registry is a table of declared options.
type Registry struct {
	mu    sync.RWMutex
	decls map[string]*Decl
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{decls: map[string]*Decl{}}
}

// Declare adds an option to the registry. Declaring the same name twice
// panics, as registering a duplicate is a programming error.
func (r *Registry) Declare(decl Decl) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.decls[decl.Name]; exists {
		panic(fmt.Sprintf("options: option %q declared twice", decl.Name))
	}
	s := decl
	r.decls[decl.Name] = &s
	r.order = append(r.order, decl.Name)
}

// Lookup returns the declaration of the named option.
func (r *Registry) Lookup(name string) (Decl, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	decl, ok := r.decls[name]
	if !ok {
		return Decl{}, false
	}
	return *decl, true
}

// Names returns the declared option names in declaration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// DirectiveNames returns the names of options that may be set from the
// directive block.
func (r *Registry) DirectiveNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for _, name := range r.order {
		if r.decls[name].Directive {
			names = append(names, name)
		}
	}
	return names
}

// Option names of the default registry.
const (
	File                   = "file"
	MethodMissing          = "method_missing"
	ArityCheck             = "arity_check"
	Freezing               = "freezing"
	IRB                    = "irb"
	DynamicRequireSeverity = "dynamic_require_severity"
	Requirable             = "requirable"
	Load                   = "load"
	ESM                    = "esm"
	NoExport               = "no_export"
	InlineOperators        = "inline_operators"
	Eval                   = "eval"
	EnableSourceLocation   = "enable_source_location"
	EnableFileSourceEmbed  = "enable_file_source_embed"
	UseStrict              = "use_strict"
	Directory              = "directory"
	ParseComments          = "parse_comments"
	BacktickJavaScript     = "backtick_javascript"
	RuntimeMode            = "runtime_mode"
	ScopeVariables         = "scope_variables"
	Await                  = "await"
)

// DefaultRegistry holds the options understood by the compiler.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Declare(Decl{Name: File, Default: "(file)", Doc: "file name used in errors and source maps"})
	r.Declare(Decl{Name: MethodMissing, Default: true, Doc: "emit method_missing stubs for called methods"})
	r.Declare(Decl{Name: ArityCheck, Default: false, Doc: "check argument counts of methods and blocks"})
	r.Declare(Decl{Name: Freezing, Default: true, Doc: "deprecated, has no effect"})
	r.Declare(Decl{Name: IRB, Default: false, Doc: "keep top level locals between evaluations"})
	r.Declare(Decl{
		Name:    DynamicRequireSeverity,
		Default: "ignore",
		Valid:   []any{"error", "warning", "ignore"},
		Doc:     "how to report requires with a non literal argument",
	})
	r.Declare(Decl{Name: Requirable, Default: false, Doc: "compile as a module registered by name"})
	r.Declare(Decl{Name: Load, Default: false, Doc: "load the module right after registering it"})
	r.Declare(Decl{Name: ESM, Default: false, Doc: "emit an ES module"})
	r.Declare(Decl{Name: NoExport, Default: false, Doc: "omit the default export of an ES module"})
	r.Declare(Decl{Name: InlineOperators, Default: true, Doc: "compile arithmetic operators to runtime helpers"})
	r.Declare(Decl{Name: Eval, Default: false, Doc: "compile code evaluated at runtime"})
	r.Declare(Decl{Name: EnableSourceLocation, Default: false, Doc: "record method source locations"})
	r.Declare(Decl{Name: EnableFileSourceEmbed, Default: false, Doc: "embed the source text in the output"})
	r.Declare(Decl{Name: UseStrict, Default: false, Directive: true, Doc: "emit a use strict directive"})
	r.Declare(Decl{Name: Directory, Default: false, Doc: "the output is part of a directory build"})
	r.Declare(Decl{Name: ParseComments, Default: false, Doc: "attach method comments to definitions"})
	r.Declare(Decl{Name: BacktickJavaScript, Default: nil, Directive: true, Doc: "treat backticks as embedded JavaScript"})
	r.Declare(Decl{Name: RuntimeMode, Default: false, Directive: true, Doc: "compile part of the runtime itself"})
	r.Declare(Decl{Name: ScopeVariables, Default: []string{}, Doc: "locals already defined in an eval scope"})
	r.Declare(Decl{Name: Await, Default: false, Directive: true, Doc: "compile methods as async, optionally auto awaiting calls"})
	return r
}
