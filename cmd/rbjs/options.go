package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rbjs-dev/rbjs"
)

// readSource returns the source to compile and its file name. There are
// three possible inputs: --code, --stdin or a path as the first argument.
func readSource(cmd *cobra.Command, v *viper.Viper, args []string) (string, string, error) {
	codeFlagSet := cmd.Flags().Changed("code")
	stdinFlagSet := v.GetBool("stdin")
	pathSupplied := len(args) > 0

	inputs := 0
	for _, set := range []bool{codeFlagSet, stdinFlagSet, pathSupplied} {
		if set {
			inputs++
		}
	}
	if inputs > 1 {
		return "", "", errors.New("multiple input sources specified")
	}

	filename := v.GetString("filename")
	switch {
	case stdinFlagSet:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", err
		}
		return string(data), filename, nil
	case pathSupplied:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", err
		}
		if filename == "" {
			filename = args[0]
		}
		return string(data), filename, nil
	case codeFlagSet:
		return v.GetString("code"), filename, nil
	}
	return "", "", errors.New("no input: give a file, --code or --stdin")
}

// compileOptions translates the flags into options of the rbjs package.
func compileOptions(cmd *cobra.Command, v *viper.Viper, filename string) ([]rbjs.Option, error) {
	args, err := cmd.Flags().GetStringArray("option")
	if err != nil {
		return nil, err
	}
	values := map[string]any{}
	for _, arg := range args {
		name, value, err := parseOption(arg)
		if err != nil {
			return nil, err
		}
		values[name] = value
	}
	if v.GetBool("requirable") {
		values["requirable"] = true
	}
	if v.GetBool("esm") {
		values["esm"] = true
	}

	opts := []rbjs.Option{
		rbjs.WithOptions(values),
		rbjs.WithLogger(newLogger(cmd.ErrOrStderr(), v.GetBool("verbose"), useColor(os.Stderr, cmd))),
	}
	if filename != "" {
		opts = append(opts, rbjs.WithFilename(filename))
	}
	if !v.GetBool("no-cache") {
		opts = append(opts, rbjs.WithFileCache(v.GetString("cache-dir"), v.GetInt64("cache-size")))
	}
	return opts, nil
}

// parseOption splits a name=value flag. The values true and false are
// booleans; anything else is passed as a string. A bare name is true.
func parseOption(arg string) (string, any, error) {
	name, value, found := strings.Cut(arg, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, fmt.Errorf("invalid option %q: expected name=value", arg)
	}
	if !found {
		return name, true, nil
	}
	switch value {
	case "true":
		return name, true, nil
	case "false":
		return name, false, nil
	}
	return name, value, nil
}

func newLogger(w io.Writer, verbose, color bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: !color, PartsExclude: []string{zerolog.TimestampFieldName}}
	return zerolog.New(out).Level(level)
}
