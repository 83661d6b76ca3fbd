package options

import (
	"fmt"
	"maps"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"github.com/rbjs-dev/rbjs/errors"
)

// Set holds the option values of one compilation. Resolved values are
// memoized, so a Set must not be shared between compilations.
type Set struct {
	registry   *Registry
	explicit   map[string]any
	directives map[string]any
	resolved   map[string]any
	await      *AwaitMatcher
}

// NormalizeName lower-cases an option name and maps '-' to '_'.
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}

// NewSet returns a Set for the given explicit values. Unknown option names
// are rejected with a *errors.ConfigError.
func (r *Registry) NewSet(explicit map[string]any) (*Set, error) {
	s := &Set{
		registry:   r,
		explicit:   make(map[string]any, len(explicit)),
		directives: map[string]any{},
		resolved:   map[string]any{},
	}
	for name, value := range explicit {
		key := NormalizeName(name)
		if _, ok := r.Lookup(key); !ok {
			return nil, r.unknown(name)
		}
		s.explicit[key] = value
	}
	return s, nil
}

func (r *Registry) unknown(name string) *errors.ConfigError {
	return &errors.ConfigError{
		Option:      name,
		Message:     fmt.Sprintf("unknown option %q", name),
		Suggestions: errors.SuggestSimilar(name, r.Names()),
		Unknown:     true,
	}
}

// SetDirectives installs the values parsed from the source directive block.
// Values for options that do not allow directives are kept but ignored by
// Resolve.
func (s *Set) SetDirectives(directives map[string]any) {
	s.directives = make(map[string]any, len(directives))
	for name, value := range directives {
		s.directives[NormalizeName(name)] = value
	}
	clear(s.resolved)
	s.await = nil
}

// Explicit returns a copy of the explicitly given values.
func (s *Set) Explicit() map[string]any {
	return maps.Clone(s.explicit)
}

// Directives returns a copy of the directive values.
func (s *Set) Directives() map[string]any {
	return maps.Clone(s.directives)
}

// Resolve returns the value of the named option.
func (s *Set) Resolve(name string) (any, error) {
	if v, ok := s.resolved[name]; ok {
		return v, nil
	}
	decl, ok := s.registry.Lookup(name)
	if !ok {
		return nil, s.registry.unknown(name)
	}
	value, found := s.explicit[name]
	if !found && decl.Directive {
		value, found = s.directives[name]
	}
	if !found {
		value = decl.Default
	}
	if len(decl.Valid) > 0 {
		matched, ok := matchValid(decl.Valid, value)
		if !ok {
			return nil, &errors.ConfigError{Option: name, Value: value, Valid: decl.Valid}
		}
		value = matched
	}
	s.resolved[name] = value
	return value, nil
}

func matchValid(valid []any, value any) (any, bool) {
	for _, allowed := range valid {
		if want, ok := allowed.(string); ok {
			if got, err := cast.ToStringE(value); err == nil && got == want {
				return allowed, true
			}
			continue
		}
		if allowed == value {
			return allowed, true
		}
	}
	return nil, false
}

// Bool resolves the named option as a boolean. nil is false.
func (s *Set) Bool(name string) (bool, error) {
	v, err := s.Resolve(name)
	if err != nil || v == nil {
		return false, err
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, &errors.ConfigError{Option: name, Value: v, Valid: []any{true, false}}
	}
	return b, nil
}

// String resolves the named option as a string. nil is "".
func (s *Set) String(name string) (string, error) {
	v, err := s.Resolve(name)
	if err != nil || v == nil {
		return "", err
	}
	str, err := cast.ToStringE(v)
	if err != nil {
		return "", &errors.ConfigError{Option: name, Value: v}
	}
	return str, nil
}

// Strings resolves the named option as a list of strings. A single string
// is split on commas.
func (s *Set) Strings(name string) ([]string, error) {
	v, err := s.Resolve(name)
	if err != nil || v == nil {
		return nil, err
	}
	if str, ok := v.(string); ok {
		return splitList(str), nil
	}
	list, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil, &errors.ConfigError{Option: name, Value: v}
	}
	return list, nil
}

// Validate resolves every declared option so invalid values are reported
// before any code is generated.
func (s *Set) Validate() error {
	for _, name := range s.registry.Names() {
		if _, err := s.Resolve(name); err != nil {
			return err
		}
	}
	_, err := s.Await()
	return err
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// AwaitMatcher is the normalized form of the await option.
type AwaitMatcher struct {
	// Enabled compiles methods and blocks as async functions.
	Enabled bool
	// Pattern, when set, selects method names whose calls are awaited
	// automatically.
	Pattern *regexp.Regexp
}

// Match reports whether calls to the named method are awaited automatically.
func (m AwaitMatcher) Match(method string) bool {
	return m.Pattern != nil && m.Pattern.MatchString(method)
}

// Await resolves the await option into a matcher. The value may be a
// boolean, a comma separated string, a list of names or a *regexp.Regexp.
// In names, '*' matches any run of characters.
func (s *Set) Await() (AwaitMatcher, error) {
	if s.await != nil {
		return *s.await, nil
	}
	v, err := s.Resolve(Await)
	if err != nil {
		return AwaitMatcher{}, err
	}
	var m AwaitMatcher
	switch v := v.(type) {
	case nil:
	case bool:
		m.Enabled = v
	case *regexp.Regexp:
		m = AwaitMatcher{Enabled: true, Pattern: v}
	case string:
		m = AwaitMatcher{Enabled: true, Pattern: namesPattern(strings.Split(v, ","))}
	case []string:
		m = AwaitMatcher{Enabled: true, Pattern: namesPattern(v)}
	case []any:
		names, err := cast.ToStringSliceE(v)
		if err != nil {
			return AwaitMatcher{}, awaitError(v)
		}
		m = AwaitMatcher{Enabled: true, Pattern: namesPattern(names)}
	default:
		return AwaitMatcher{}, awaitError(v)
	}
	s.await = &m
	return m, nil
}

func awaitError(v any) *errors.ConfigError {
	return &errors.ConfigError{
		Option:  Await,
		Value:   v,
		Message: fmt.Sprintf("invalid value %v for option %q (expected a boolean, a string, a list of names or a pattern)", v, Await),
	}
}

func namesPattern(names []string) *regexp.Regexp {
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = strings.ReplaceAll(regexp.QuoteMeta(strings.TrimSpace(name)), `\*`, ".*?")
	}
	return regexp.MustCompile("^(" + strings.Join(parts, "|") + ")$")
}
