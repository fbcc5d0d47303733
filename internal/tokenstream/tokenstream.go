// Package tokenstream implements the token-stream primitives that drive
// recursive-descent parsing: cursor discipline, lookahead, and subset
// creation over a flat slice of tokens. The cursor is the only mutable
// state: Next/Skip mutate the receiver in place, and subsets are fully
// independent copies.
package tokenstream

import (
	"github.com/stride-lang/stride/internal/diag"
	"github.com/stride-lang/stride/internal/source"
	"github.com/stride-lang/stride/internal/token"
)

// TokenSet is an ordered sequence of tokens bound to a single source.File,
// with a mutable cursor. Invariant: 0 <= cursor <= len(tokens).
type TokenSet struct {
	file   *source.File
	tokens []token.Token
	cursor int
}

// New wraps a token slice (as produced by a lexer) into a TokenSet whose
// cursor starts at 0.
func New(file *source.File, tokens []token.Token) *TokenSet {
	return &TokenSet{file: file, tokens: tokens}
}

// File returns the source.File shared by every token in the set.
func (s *TokenSet) File() *source.File { return s.file }

// Size returns the number of tokens in the set.
func (s *TokenSet) Size() int { return len(s.tokens) }

// Cursor returns the current cursor position.
func (s *TokenSet) Cursor() int { return s.cursor }

// eof synthesizes an END_OF_FILE token anchored just past the last real
// token, so lookahead past the end of the stream never fails.
func (s *TokenSet) eof() token.Token {
	if n := len(s.tokens); n > 0 {
		last := s.tokens[n-1]
		return token.Token{Type: token.EOF, File: s.file, Pos: source.Position{Offset: last.Pos.End()}}
	}
	return token.Token{Type: token.EOF, File: s.file}
}

// Peek returns the token at cursor+off without consuming it. Out-of-range
// offsets (including negative ones that would land before 0) yield the
// synthetic EOF token rather than failing.
func (s *TokenSet) Peek(off int) token.Token {
	idx := s.cursor + off
	if idx < 0 || idx >= len(s.tokens) {
		return s.eof()
	}
	return s.tokens[idx]
}

// PeekNext is Peek(0): the token the cursor currently points at.
func (s *TokenSet) PeekNext() token.Token {
	return s.Peek(0)
}

// PeekEq reports whether the token at cursor+off has the given type.
func (s *TokenSet) PeekEq(off int, t token.Type) bool {
	return s.Peek(off).Type == t
}

// PeekNextEq reports whether the current token has the given type.
func (s *TokenSet) PeekNextEq(t token.Type) bool {
	return s.PeekEq(0, t)
}

// Next consumes and returns the current token. At end of stream it returns
// EOF without advancing the cursor past the tokens slice.
func (s *TokenSet) Next() token.Token {
	tok := s.PeekNext()
	if s.cursor < len(s.tokens) {
		s.cursor++
	}
	return tok
}

// Skip advances the cursor by n (which may be negative, to roll back after
// a look-past, e.g. in the block collector).
func (s *TokenSet) Skip(n int) {
	s.cursor += n
	if s.cursor < 0 {
		s.cursor = 0
	}
	if s.cursor > len(s.tokens) {
		s.cursor = len(s.tokens)
	}
}

// Expect asserts that the current token has type t; on match it consumes and
// returns it, on mismatch it raises a SyntaxError anchored at the current
// position. message, if given, overrides the default mismatch wording.
func (s *TokenSet) Expect(t token.Type, message ...string) (token.Token, error) {
	cur := s.PeekNext()
	if cur.Type == t {
		return s.Next(), nil
	}
	msg := ""
	if len(message) > 0 {
		msg = message[0]
	} else {
		msg = "expected " + t.String() + ", got " + cur.Type.String()
	}
	return token.Token{}, s.ThrowError(cur, diag.SyntaxError, msg)
}

// CreateSubset returns an independent TokenSet covering [offset, offset+length)
// of s, sharing the same File and starting its own cursor at 0. Mutating the
// subset never affects s. Out-of-range bounds fail with a SyntaxError.
func (s *TokenSet) CreateSubset(offset, length int) (*TokenSet, error) {
	if offset < 0 || length < 0 || offset+length > len(s.tokens) {
		return nil, s.ThrowError(s.PeekNext(), diag.SyntaxError, "token subset out of range")
	}
	copied := make([]token.Token, length)
	copy(copied, s.tokens[offset:offset+length])
	return &TokenSet{file: s.file, tokens: copied}, nil
}

// ThrowError anchors a diagnostic of the given kind and message at tok.
func (s *TokenSet) ThrowError(tok token.Token, kind diag.Kind, message string) error {
	return diag.New(kind, s.file, tok.Pos, "%s", message)
}
