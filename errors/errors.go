// Package errors defines the error types produced while compiling.
//
// Every fatal failure leaves the compiler as a *CompileError. The more
// specific types below (ConfigError, UnsupportedError, SyntaxError) are
// carried as its cause and can be reached with errors.As.
package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rbjs-dev/rbjs/internal/token"
)

// As calls errors.As from the standard library.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is calls errors.Is from the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// SourceLocation represents a position in source code.
type SourceLocation struct {
	Filename string
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Source   string // The line of source code
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// FriendlyError is an interface for errors that have a human friendly message
// in addition to a the lower level default error message.
type FriendlyError interface {
	Error() string
	FriendlyErrorMessage() string
}

// FormattableError is an interface for errors that can be formatted with
// the enhanced error formatter (with colors, source context, etc).
type FormattableError interface {
	Error() string
	ToFormatted() *FormattedError
}

// Positioned is implemented by errors that know where in the source they
// happened.
type Positioned interface {
	Position() token.Position
}

// ConfigError reports an invalid compiler option value or an unknown option.
type ConfigError struct {
	Option      string
	Value       any
	Valid       []any
	Message     string
	Suggestions []Suggestion
	// Unknown is set when the option itself is not declared.
	Unknown bool
}

func (e *ConfigError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Valid) == 0 {
		return fmt.Sprintf("invalid value %s for option %q", inspect(e.Value), e.Option)
	}
	valid := make([]string, 0, len(e.Valid))
	for _, v := range e.Valid {
		valid = append(valid, inspect(v))
	}
	return fmt.Sprintf("invalid value %s for option %q (valid values: %s)",
		inspect(e.Value), e.Option, strings.Join(valid, ", "))
}

// Code returns the error code of the configuration error.
func (e *ConfigError) Code() ErrorCode {
	if e.Unknown {
		return E4002
	}
	return E4001
}

// UnsupportedError reports a node kind that has no code generation handler.
type UnsupportedError struct {
	Kind string
	Pos  token.Position
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported syntax node: %s", e.Kind)
}

// Position returns the location of the unsupported node.
func (e *UnsupportedError) Position() token.Position {
	return e.Pos
}

// Code returns E2001.
func (e *UnsupportedError) Code() ErrorCode {
	return E2001
}

// SyntaxError is raised by the parser, or by the compiler when a construct
// is well formed but invalid where it appears.
type SyntaxError struct {
	Message string
	Pos     token.Position
	ErrCode ErrorCode
}

func (e *SyntaxError) Error() string {
	return e.Message
}

// Position returns the location the error refers to.
func (e *SyntaxError) Position() token.Position {
	return e.Pos
}

// Code returns the error code, defaulting to E1001.
func (e *SyntaxError) Code() ErrorCode {
	if e.ErrCode == "" {
		return E1001
	}
	return e.ErrCode
}

// Syntaxf returns a SyntaxError with the given code and formatted message.
func Syntaxf(code ErrorCode, pos token.Position, format string, args ...any) *SyntaxError {
	return &SyntaxError{Message: fmt.Sprintf(format, args...), Pos: pos, ErrCode: code}
}

func inspect(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
