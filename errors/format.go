package errors

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Formatter renders errors for a terminal, optionally with ANSI colors.
type Formatter struct {
	UseColor bool
}

// NewFormatter creates a new error formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

var (
	styleLabel    = color.New(color.FgHiRed, color.Bold)
	styleCode     = color.New(color.FgHiBlack)
	styleLocation = color.New(color.FgCyan)
	styleGutter   = color.New(color.FgHiBlack)
	styleCaret    = color.New(color.FgHiRed)
	styleHint     = color.New(color.FgHiYellow)
	styleNote     = color.New(color.FgHiBlue)
)

// FormattedError represents an error ready for display.
type FormattedError struct {
	Code        ErrorCode
	Kind        string // "error", "syntax error", ...
	Message     string
	Filename    string
	Line        int
	Column      int
	SourceLines []SourceLineEntry
	Hint        string
	Note        string
}

// SourceLineEntry is one numbered line of source context.
type SourceLineEntry struct {
	Number int
	Text   string
	IsMain bool
}

func (f *Formatter) paint(c *color.Color, s string) string {
	if !f.UseColor {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}

// Format renders the error as a header, a location arrow, the source
// context and any hint or note.
func (f *Formatter) Format(err *FormattedError) string {
	return f.FormatWithPrefix(err, "")
}

// FormatWithPrefix renders the error using prefix (like "1/3") in the
// header when the error has no code.
func (f *Formatter) FormatWithPrefix(err *FormattedError, prefix string) string {
	var b strings.Builder
	width := max(2, len(strconv.Itoa(err.Line)))
	pad := strings.Repeat(" ", width)

	label := err.Kind
	if label == "" {
		label = "error"
	}
	b.WriteString(f.paint(styleLabel, label))
	switch {
	case err.Code != "":
		b.WriteString(f.paint(styleCode, "["+err.Code.String()+"]"))
	case prefix != "":
		b.WriteString(f.paint(styleCode, "["+prefix+"]"))
	}
	b.WriteString(": ")
	b.WriteString(err.Message)
	b.WriteString("\n")

	if err.Line > 0 || err.Filename != "" {
		loc := err.Filename
		if err.Line > 0 {
			if loc != "" {
				loc += ":"
			}
			loc += strconv.Itoa(err.Line)
			if err.Column > 0 {
				loc += ":" + strconv.Itoa(err.Column)
			}
		}
		fmt.Fprintf(&b, "%s%s %s\n", pad, f.paint(styleLocation, "-->"), loc)
	}

	if len(err.SourceLines) > 0 {
		b.WriteString(pad + " " + f.paint(styleGutter, "|") + "\n")
		for _, line := range err.SourceLines {
			num := fmt.Sprintf("%*d", width, line.Number)
			b.WriteString(f.paint(styleGutter, num+" |"))
			b.WriteString(" ")
			b.WriteString(line.Text)
			b.WriteString("\n")
			if line.IsMain && err.Column > 0 {
				b.WriteString(pad + " " + f.paint(styleGutter, "|") + " ")
				b.WriteString(strings.Repeat(" ", err.Column-1))
				b.WriteString(f.paint(styleCaret, "^"))
				b.WriteString("\n")
			}
		}
	}

	if err.Hint != "" {
		fmt.Fprintf(&b, "%s %s %s\n", pad, f.paint(styleGutter, "="), f.paint(styleHint, "hint: "+err.Hint))
	}
	if err.Note != "" {
		fmt.Fprintf(&b, "%s %s %s\n", pad, f.paint(styleGutter, "="), f.paint(styleNote, "note: "+err.Note))
	}
	return b.String()
}

// FormatMultiple renders several errors, numbering them when there is more
// than one.
func (f *Formatter) FormatMultiple(errs []*FormattedError) string {
	if len(errs) == 1 {
		return f.Format(errs[0])
	}
	var parts []string
	for i, err := range errs {
		parts = append(parts, f.FormatWithPrefix(err, fmt.Sprintf("%d/%d", i+1, len(errs))))
	}
	return strings.Join(parts, "\n")
}
