package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cast"

	"github.com/rbjs-dev/rbjs/fragment"
)

// Store persists compilation artifacts. *cache.FileCache implements it.
type Store interface {
	Get(key string, v any) bool
	Set(key string, v any) error
}

// Artifact is the cached form of a compilation.
type Artifact struct {
	Version       string              `json:"version"`
	Result        string              `json:"result"`
	SourceMap     *fragment.SourceMap `json:"source_map,omitempty"`
	Options       map[string]string   `json:"options,omitempty"`
	Directives    map[string]any      `json:"directives,omitempty"`
	Requires      []string            `json:"requires,omitempty"`
	RequiredTrees []string            `json:"required_trees,omitempty"`
	Autoloads     []string            `json:"autoloads,omitempty"`
	Helpers       []string            `json:"helpers,omitempty"`
	MethodCalls   []string            `json:"method_calls,omitempty"`
	EOF           string              `json:"eof,omitempty"`
}

// Artifact returns the artifact of the last compilation.
func (c *Compiler) Artifact() *Artifact {
	opts := make(map[string]string, len(c.explicit))
	for name, value := range c.explicit {
		opts[name] = optionString(value)
	}
	return &Artifact{
		Version:       Version,
		Result:        c.result,
		SourceMap:     c.SourceMap(),
		Options:       opts,
		Directives:    c.Directives(),
		Requires:      c.Requires(),
		RequiredTrees: c.RequiredTrees(),
		Autoloads:     c.Autoloads(),
		Helpers:       c.Helpers(),
		MethodCalls:   c.MethodCalls(),
		EOF:           c.eof,
	}
}

// restore makes the accessors return the state recorded in a.
func (c *Compiler) restore(a *Artifact) {
	c.cached = true
	c.result = a.Result
	c.sourceMap = a.SourceMap
	c.fragments = nil
	c.directives = maps.Clone(a.Directives)
	if c.directives == nil {
		c.directives = map[string]any{}
	}
	c.requires = slices.Clone(a.Requires)
	c.requiredTrees = slices.Clone(a.RequiredTrees)
	c.autoloads = slices.Clone(a.Autoloads)
	for _, name := range a.Helpers {
		c.helpers[name] = true
	}
	for _, name := range a.MethodCalls {
		c.methodCalls[name] = true
	}
	c.eof = a.EOF
	c.opts.SetDirectives(c.directives)
}

// CacheKey returns the key identifying a compilation of source with the
// given explicit options.
func CacheKey(source string, opts map[string]any) string {
	h := sha256.New()
	fmt.Fprintf(h, "rbjs %s\x00", Version)
	h.Write([]byte(source))
	h.Write([]byte{0})
	for _, name := range slices.Sorted(maps.Keys(opts)) {
		fmt.Fprintf(h, "%s=%s\x00", name, optionString(opts[name]))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func optionString(v any) string {
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// ModuleName returns the name a file is registered under: the path with
// forward slashes, cleaned, without its extensions.
func ModuleName(p string) string {
	p = filepath.ToSlash(p)
	base := strings.Split(path.Base(p), ".")[0]
	if base == "" {
		return path.Clean(p)
	}
	return path.Clean(path.Join(path.Dir(p), base))
}
