package errors

import (
	"strconv"
	"strings"
)

// CompileError is returned for every failed compilation. Whatever the
// cause, a CompileError carries where it happened and the source line
// there, and Unwrap gives access to the cause itself.
type CompileError struct {
	Code        ErrorCode
	Message     string
	Filename    string
	Line        int
	Column      int
	SourceLine  string
	Suggestions []Suggestion
	Note        string
	Cause       error
}

// Location returns "file:line:column", leaving out the parts that are not
// known.
func (e *CompileError) Location() string {
	parts := make([]string, 0, 3)
	if e.Filename != "" {
		parts = append(parts, e.Filename)
	}
	if e.Line > 0 {
		parts = append(parts, strconv.Itoa(e.Line))
		if e.Column > 0 {
			parts = append(parts, strconv.Itoa(e.Column))
		}
	}
	return strings.Join(parts, ":")
}

func (e *CompileError) Error() string {
	if loc := e.Location(); loc != "" {
		return loc + ": " + e.Message
	}
	return e.Message
}

func (e *CompileError) Unwrap() error {
	return e.Cause
}

// Pretty renders the error with its source excerpt and hint.
func (e *CompileError) Pretty(colored bool) string {
	return NewFormatter(colored).Format(e.ToFormatted())
}

// ToFormatted converts the error for a Formatter.
func (e *CompileError) ToFormatted() *FormattedError {
	kind := "error"
	if e.Code.Category() == "syntax" {
		kind = "syntax error"
	}
	out := &FormattedError{
		Code:     e.Code,
		Kind:     kind,
		Message:  e.Message,
		Filename: e.Filename,
		Line:     e.Line,
		Column:   e.Column,
		Hint:     FormatSuggestions(e.Suggestions),
		Note:     e.Note,
	}
	if e.SourceLine != "" {
		out.SourceLines = append(out.SourceLines, SourceLineEntry{Number: e.Line, Text: e.SourceLine, IsMain: true})
	}
	return out
}
