// Package rbjs compiles Ruby syntax trees to JavaScript.
//
// Compile and CompileFile run one compilation with the compiler package and
// return its output together with what the build step needs to know about
// it: the files it requires, the runtime helpers it uses and the methods it
// calls. Compilations can be cached on disk:
//
//	res, err := rbjs.CompileFile(ctx, "app/main.rb",
//		rbjs.WithFileCache("", 0),
//		rbjs.WithOption("arity_check", true))
package rbjs

import (
	"context"
	"os"

	"github.com/rbjs-dev/rbjs/cache"
	"github.com/rbjs-dev/rbjs/compiler"
	"github.com/rbjs-dev/rbjs/fragment"
)

// Result is the outcome of a compilation.
type Result struct {
	// Code is the generated JavaScript.
	Code string
	// SourceMap maps Code back to the compiled file.
	SourceMap *fragment.SourceMap
	// Requires lists the files required by the program, in order.
	Requires []string
	// RequiredTrees lists the directories passed to require_tree.
	RequiredTrees []string
	// Autoloads lists the files registered with autoload.
	Autoloads []string
	// Helpers lists the runtime helpers used by the generated code.
	Helpers []string
	// MethodCalls lists the methods called by the generated code.
	MethodCalls []string
	// Directives holds the directive comments found in the source.
	Directives map[string]any
	// Cached is true when the result was read from the cache.
	Cached bool
}

// Compile compiles source. The context is checked before any work starts;
// a compilation is not interrupted once it runs.
func Compile(ctx context.Context, source string, opts ...Option) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := collectOptions(opts...)
	compilerOpts, err := cfg.compilerOpts()
	if err != nil {
		return nil, err
	}
	c := compiler.New(source, compilerOpts...)
	code, err := c.Compile()
	if err != nil {
		return nil, err
	}
	return &Result{
		Code:          code,
		SourceMap:     c.SourceMap(),
		Requires:      c.Requires(),
		RequiredTrees: c.RequiredTrees(),
		Autoloads:     c.Autoloads(),
		Helpers:       c.Helpers(),
		MethodCalls:   c.MethodCalls(),
		Directives:    c.Directives(),
		Cached:        c.Cached(),
	}, nil
}

// CompileFile reads and compiles the file at path. Unless WithFilename is
// given, path is the file name used in errors, source maps and module
// names.
func CompileFile(ctx context.Context, path string, opts ...Option) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithFilename(path)}, opts...)
	return Compile(ctx, string(data), opts...)
}

// OpenCache opens a file cache that can be shared between compilations
// with WithCache. An empty dir selects the per-user cache directory.
func OpenCache(dir string, maxSize int64, opts ...Option) (*cache.FileCache, error) {
	cfg := collectOptions(opts...)
	return cache.New(&cache.Config{
		Dir:        dir,
		MaxSize:    maxSize,
		Logger:     cfg.logger,
		Registerer: cfg.registerer,
	})
}
