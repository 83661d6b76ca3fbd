package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rbjs-dev/rbjs"
	"github.com/rbjs-dev/rbjs/compiler"
	"github.com/rbjs-dev/rbjs/options"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "rbjs [file]",
		Short: "Compile Ruby syntax trees to JavaScript",
		Long: `Compile Ruby syntax trees to JavaScript.

The source is read from the file argument, from --code or from stdin. The
generated JavaScript is written to stdout unless --output is given.

Flags can also be set through RBJS_ environment variables, for example
RBJS_CACHE_DIR or RBJS_NO_CACHE, and from a .env file in the working
directory.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, v, args)
		},
	}

	flags := cmd.Flags()
	flags.StringP("code", "c", "", "Source to compile")
	flags.Bool("stdin", false, "Read the source from stdin")
	flags.StringP("output", "o", "", "Write the JavaScript to this file")
	flags.String("map", "", "Write the source map to this file")
	flags.StringArrayP("option", "O", nil, "Compiler option as name=value (repeatable)")
	flags.String("filename", "", "File name used in errors and source maps")
	flags.Bool("requirable", false, "Compile as a module registered by name")
	flags.Bool("esm", false, "Emit an ES module")
	flags.String("cache-dir", "", "Directory of the compile cache")
	flags.Bool("no-cache", false, "Disable the compile cache")
	flags.Int64("cache-size", 0, "Size budget of the compile cache in bytes")
	flags.Bool("no-color", false, "Disable colored output")
	flags.BoolP("verbose", "v", false, "Log debug messages")

	v.SetEnvPrefix("RBJS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	cmd.AddCommand(newVersionCmd(), newOptionsCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rbjs %s (compiler %s, commit %s, built %s)\n",
				version, compiler.Version, commit, date)
		},
	}
}

func newOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the compiler options accepted by -O",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, name := range options.DefaultRegistry.Names() {
				decl, _ := options.DefaultRegistry.Lookup(name)
				fmt.Fprintf(out, "%-26s %s (default %v)\n", name, decl.Doc, decl.Default)
				if len(decl.Valid) > 0 {
					fmt.Fprintf(out, "%-26s valid values: %v\n", "", decl.Valid)
				}
				if decl.Directive {
					fmt.Fprintf(out, "%-26s can be set with a # %s: directive\n", "", name)
				}
			}
		},
	}
}

func runCompile(cmd *cobra.Command, v *viper.Viper, args []string) error {
	source, filename, err := readSource(cmd, v, args)
	if err != nil {
		return err
	}
	opts, err := compileOptions(cmd, v, filename)
	if err != nil {
		return err
	}
	res, err := rbjs.Compile(cmd.Context(), source, opts...)
	if err != nil {
		return err
	}

	if out := v.GetString("output"); out != "" {
		if err := os.WriteFile(out, []byte(res.Code), 0o644); err != nil {
			return err
		}
	} else if _, err := fmt.Fprint(cmd.OutOrStdout(), res.Code); err != nil {
		return err
	}
	if mapFile := v.GetString("map"); mapFile != "" && res.SourceMap != nil {
		data, err := res.SourceMap.JSON()
		if err != nil {
			return err
		}
		if err := os.WriteFile(mapFile, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
