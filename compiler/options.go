package compiler

import (
	"github.com/rs/zerolog"

	"github.com/rbjs-dev/rbjs/options"
	"github.com/rbjs-dev/rbjs/parser"
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithOption sets the value of a compilation option, such as
// options.ArityCheck. Explicit values take precedence over the directive
// block of the source.
func WithOption(name string, value any) Option {
	return func(c *Compiler) {
		c.explicit[name] = value
	}
}

// WithOptions sets several compilation options. This option is additive.
func WithOptions(values map[string]any) Option {
	return func(c *Compiler) {
		for name, value := range values {
			c.explicit[name] = value
		}
	}
}

// WithFile sets the file name used in errors, in the source map and as the
// module name of requirable output.
func WithFile(name string) Option {
	return WithOption(options.File, name)
}

// WithParser replaces the bundled S-expression reader.
func WithParser(p parser.Parser) Option {
	return func(c *Compiler) {
		c.parser = p
	}
}

// WithRegistry resolves options against r instead of
// options.DefaultRegistry.
func WithRegistry(r *options.Registry) Option {
	return func(c *Compiler) {
		c.registry = r
	}
}

// WithLogger sets the logger receiving compilation warnings.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Compiler) {
		c.log = log
	}
}

// WithCache makes Compile look up and store its result in store.
func WithCache(store Store) Option {
	return func(c *Compiler) {
		c.store = store
	}
}
