package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/stride-lang/stride/internal/backend/interp"
	"github.com/stride-lang/stride/internal/config"
	"github.com/stride-lang/stride/internal/diag"
	"github.com/stride-lang/stride/internal/lexer"
	"github.com/stride-lang/stride/internal/lowering"
	"github.com/stride-lang/stride/internal/parser"
	"github.com/stride-lang/stride/internal/source"
)

// projectFile is the project document stride looks for when invoked with
// no source-file arguments.
const projectFile = "stride.json"

func runFiles(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		proj, err := config.Load(projectFile)
		if err != nil {
			return renderError(err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "building project %s %s (target %s, mode %s)\n",
				proj.Name, proj.Version, proj.Target, proj.Mode)
		}
		if proj.Mode == config.CompileNative {
			return renderError(diag.New(diag.BackendError, nil, source.Position{},
				"no native backend is linked into this build; set mode to COMPILE_JIT"))
		}
		if _, err := compileAndRun(proj.Main); err != nil {
			return renderError(err)
		}
		return nil
	}

	for _, path := range args {
		if _, err := compileAndRun(path); err != nil {
			return renderError(err)
		}
	}
	return nil
}

// compileAndRun drives the whole pipeline for one file (read, lex, parse,
// lower, verify, interpret main) and returns main's exit value.
func compileAndRun(path string) (int, error) {
	file, err := readSource(path)
	if err != nil {
		return 1, err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "compiling %s\n", path)
	}
	root, _, err := parser.Parse(file, lexer.Tokenize(file))
	if err != nil {
		return 1, err
	}

	mod := interp.NewModule()
	if err := lowering.Lower(root, mod); err != nil {
		return 1, err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "running %s\n", path)
	}
	code, err := interp.RunMain(mod)
	if err != nil {
		return code, diag.New(diag.BackendError, file, source.Position{}, "%s", err.Error())
	}
	return code, nil
}

func readSource(path string) (*source.File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.New(diag.IOError, nil, source.Position{}, "cannot open source file %s: %v", path, err)
	}
	return source.New(path, string(content)), nil
}

// renderError formats a diagnostic with color when standard error is a
// terminal, and passes any other error through untouched.
func renderError(err error) error {
	var d *diag.Diagnostic
	if errors.As(err, &d) {
		useColor := !color.NoColor && isatty.IsTerminal(os.Stderr.Fd())
		return errors.New(d.Format(useColor))
	}
	return err
}
