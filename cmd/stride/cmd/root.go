// Package cmd wires the stride compiler driver into a cobra CLI:
// `stride <file> [<file>...]` compiles and runs each file in order, and
// `stride` with no arguments compiles the project described by
// stride.json in the working directory.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "stride [file...]",
	Short: "Stride compiler and runner",
	Long: `stride is the compiler front-end and code-generation driver for the
stride programming language: a small statically-typed, imperative
language with modules, enums, structs, first-class and variadic
functions, and lambdas.

Each source file is parsed into an AST, resolved through a nested
symbol registry, lowered to a machine-neutral IR, and then either
interpreted or handed to a native backend. With no arguments, the
project described by stride.json is built instead.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runFiles,
}

// Execute runs the root command, printing any error it returns to
// standard error. The process exits 1 on any parse, semantic, or backend
// error; main owns the actual os.Exit call.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
