// Package source holds the immutable source-file and source-position types
// shared by every later compilation stage: tokens, AST nodes, and
// diagnostics all carry a *File plus a Position into it.
package source

import "strings"

// File is an immutable (path, text) pair. It is shared by reference: every
// Token and every AST node derived from it holds a pointer to the same File
// rather than copying its text. A File outlives every token and node derived
// from it.
type File struct {
	Path string
	Text string

	lineOffsets []int // byte offset of the start of each line, computed lazily
}

// New wraps path and text into a File, ready for lexing.
func New(path, text string) *File {
	return &File{Path: path, Text: text}
}

// Position is a (byte offset, length) span into a File. Positions are used
// only for diagnostics: they are always non-overlapping with their own
// children but need not be contiguous with siblings.
type Position struct {
	Offset int
	Length int
}

// End returns the offset one past the last byte covered by p.
func (p Position) End() int {
	return p.Offset + p.Length
}

// LineCol resolves a byte offset within f into a 1-indexed (line, column)
// pair, for diagnostic rendering. Columns are counted in bytes, the same
// unit token offsets are reported in.
func (f *File) LineCol(offset int) (line, col int) {
	f.ensureLineOffsets()
	// Binary search for the last line whose start offset is <= offset.
	lo, hi := 0, len(f.lineOffsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineOffsets[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line = lo + 1
	col = offset - f.lineOffsets[lo] + 1
	return line, col
}

// Line returns the text of the 1-indexed line, without its terminator.
func (f *File) Line(line int) string {
	f.ensureLineOffsets()
	if line < 1 || line > len(f.lineOffsets) {
		return ""
	}
	start := f.lineOffsets[line-1]
	end := len(f.Text)
	if line < len(f.lineOffsets) {
		end = f.lineOffsets[line] - 1 // exclude the '\n'
	}
	if end > len(f.Text) {
		end = len(f.Text)
	}
	return strings.TrimRight(f.Text[start:end], "\r")
}

func (f *File) ensureLineOffsets() {
	if f.lineOffsets != nil {
		return
	}
	offsets := []int{0}
	for i, b := range []byte(f.Text) {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	f.lineOffsets = offsets
}
