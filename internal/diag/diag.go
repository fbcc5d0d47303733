// Package diag implements the compiler's diagnostic model: every fallible
// operation surfaces a *Diagnostic carrying a Kind, a message, and the
// source location, rather than an ad-hoc error string. Rendering is a
// one-line header plus a source-line-and-caret excerpt, colorized through
// github.com/fatih/color when requested.
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/stride-lang/stride/internal/source"
)

// Kind is the closed set of diagnostic categories.
type Kind int

const (
	// SyntaxError covers token-level expectation violations, unmatched
	// delimiters, and misuse of `use`/`module` outside global scope.
	SyntaxError Kind = iota
	// SemanticError covers duplicate names, unresolved identifiers or
	// functions, and type mismatches.
	SemanticError
	// IOError covers failure to open a source file.
	IOError
	// BackendError covers IR verification failure or a missing `main` at
	// run time in JIT mode.
	BackendError
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case SemanticError:
		return "SemanticError"
	case IOError:
		return "IOError"
	case BackendError:
		return "BackendError"
	default:
		return "Error"
	}
}

// Diagnostic is a single compilation error: kind, message, and the File and
// Position it was raised against. Diagnostics propagate by ordinary Go error
// returns; compilation stops at the first error, there is no batching.
type Diagnostic struct {
	Kind    Kind
	Message string
	File    *source.File
	Pos     source.Position
}

// New constructs a Diagnostic.
func New(kind Kind, file *source.File, pos source.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), File: file, Pos: pos}
}

// Error implements the error interface with an uncolored, single-line-plus-
// caret rendering.
func (d *Diagnostic) Error() string {
	return d.Format(false)
}

// Format renders the diagnostic as a header line, a source excerpt with a
// caret under the offending column, and the message. When color is true,
// the kind and caret are colorized via fatih/color.
func (d *Diagnostic) Format(useColor bool) string {
	var sb strings.Builder

	kindLabel := d.Kind.String()
	if useColor {
		kindLabel = color.New(color.FgRed, color.Bold).Sprint(kindLabel)
	}

	if d.File != nil {
		line, col := d.File.LineCol(d.Pos.Offset)
		fmt.Fprintf(&sb, "%s in %s:%d:%d: %s\n", kindLabel, d.File.Path, line, col, d.Message)

		sourceLine := d.File.Line(line)
		if sourceLine != "" {
			lineNumStr := fmt.Sprintf("%4d | ", line)
			sb.WriteString(lineNumStr)
			sb.WriteString(sourceLine)
			sb.WriteString("\n")

			caret := strings.Repeat(" ", len(lineNumStr)+col-1) + "^"
			if useColor {
				caret = color.New(color.FgRed, color.Bold).Sprint(caret)
			}
			sb.WriteString(caret)
		}
	} else {
		fmt.Fprintf(&sb, "%s: %s", kindLabel, d.Message)
	}

	return sb.String()
}
