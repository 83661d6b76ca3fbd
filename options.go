package rbjs

import (
	"maps"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/rbjs-dev/rbjs/cache"
	"github.com/rbjs-dev/rbjs/compiler"
	"github.com/rbjs-dev/rbjs/parser"
)

// Option configures a compilation.
type Option func(*config)

type config struct {
	options    map[string]any
	filename   string
	logger     *zerolog.Logger
	parser     parser.Parser
	store      compiler.Store
	fileCache  bool
	cacheDir   string
	cacheSize  int64
	registerer prometheus.Registerer
}

func collectOptions(opts ...Option) *config {
	cfg := &config{options: map[string]any{}}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (cfg *config) compilerOpts() ([]compiler.Option, error) {
	opts := []compiler.Option{compiler.WithOptions(cfg.options)}
	if cfg.filename != "" {
		opts = append(opts, compiler.WithFile(cfg.filename))
	}
	if cfg.logger != nil {
		opts = append(opts, compiler.WithLogger(*cfg.logger))
	}
	if cfg.parser != nil {
		opts = append(opts, compiler.WithParser(cfg.parser))
	}
	store := cfg.store
	if store == nil && cfg.fileCache {
		fc, err := cache.New(&cache.Config{
			Dir:        cfg.cacheDir,
			MaxSize:    cfg.cacheSize,
			Logger:     cfg.logger,
			Registerer: cfg.registerer,
		})
		if err != nil {
			return nil, err
		}
		store = fc
	}
	if store != nil {
		opts = append(opts, compiler.WithCache(store))
	}
	return opts, nil
}

// WithOption sets a compiler option by name, such as "arity_check" or
// "requirable". Unknown names fail the compilation.
func WithOption(name string, value any) Option {
	return func(cfg *config) {
		cfg.options[name] = value
	}
}

// WithOptions sets several compiler options. This option is additive; when
// a name is given more than once the last value wins.
func WithOptions(values map[string]any) Option {
	return func(cfg *config) {
		maps.Copy(cfg.options, values)
	}
}

// WithFilename sets the name of the compiled file.
func WithFilename(filename string) Option {
	return func(cfg *config) {
		cfg.filename = filename
	}
}

// WithLogger sets the logger receiving compiler and cache warnings.
func WithLogger(log zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = &log
	}
}

// WithParser replaces the bundled S-expression reader.
func WithParser(p parser.Parser) Option {
	return func(cfg *config) {
		cfg.parser = p
	}
}

// WithCache stores compilations in store. It takes precedence over
// WithFileCache.
func WithCache(store compiler.Store) Option {
	return func(cfg *config) {
		cfg.store = store
	}
}

// WithFileCache stores compilations in a file cache opened for the
// compilation. An empty dir selects the per-user cache directory and a
// maxSize of zero the default budget. Opening the cache trims it, so
// programs compiling many files should share one cache from OpenCache.
func WithFileCache(dir string, maxSize int64) Option {
	return func(cfg *config) {
		cfg.fileCache = true
		cfg.cacheDir = dir
		cfg.cacheSize = maxSize
	}
}

// WithMetrics registers the cache counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(cfg *config) {
		cfg.registerer = reg
	}
}
