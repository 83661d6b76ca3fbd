package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/rbjs-dev/rbjs/errors"
)

var red = color.New(color.FgRed)

// useColor reports whether output to f should be colored: f is a terminal,
// NO_COLOR is unset and --no-color was not given.
func useColor(f *os.File, cmd *cobra.Command) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if flag := cmd.Flags().Lookup("no-color"); flag != nil && flag.Value.String() == "true" {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// printError writes err to w. Compilation errors are shown with their
// source excerpt and hints.
func printError(w io.Writer, err error, colored bool) {
	var ce *errors.CompileError
	if errors.As(err, &ce) {
		fmt.Fprint(w, ce.Pretty(colored))
		return
	}
	msg := err.Error()
	if colored {
		red.EnableColor()
		msg = red.Sprint(msg)
	}
	fmt.Fprintln(w, msg)
}
