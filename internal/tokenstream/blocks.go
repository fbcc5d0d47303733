package tokenstream

import (
	"github.com/stride-lang/stride/internal/diag"
	"github.com/stride-lang/stride/internal/token"
)

// CollectBlockVariant collects a balanced-delimiter block: starting after
// the opening delimiter (which
// it consumes from set), it tracks a virtual depth counter (+1 on open, -1
// on close) until depth returns to zero, then returns a subset covering the
// interior (exclusive of both delimiters).
//
// Edge cases:
//   - Empty interior ("{}"): returns (nil, nil), leaving the cursor
//     positioned just after the closing delimiter.
//   - Unmatched closer: rolls the cursor back one position and returns a
//     SyntaxError.
func CollectBlockVariant(set *TokenSet, open, close token.Type) (*TokenSet, error) {
	openTok, err := set.Expect(open)
	if err != nil {
		return nil, err
	}
	_ = openTok

	start := set.Cursor()
	depth := 1

	for {
		cur := set.PeekNext()
		if cur.Type == token.EOF {
			set.Skip(-1)
			return nil, set.ThrowError(set.PeekNext(), diag.SyntaxError, "Unmatched closing '"+close.String()+"'")
		}
		if cur.Type == open {
			depth++
			set.Next()
			continue
		}
		if cur.Type == close {
			depth--
			if depth == 0 {
				length := set.Cursor() - start
				interior, err := interiorSubset(set, start, length)
				if err != nil {
					return nil, err
				}
				set.Next() // consume the matching close
				if length == 0 {
					return nil, nil
				}
				return interior, nil
			}
			set.Next()
			continue
		}
		set.Next()
	}
}

// interiorSubset builds a TokenSet over set's tokens [start, start+length)
// and leaves set's own cursor where it was.
func interiorSubset(set *TokenSet, start, length int) (*TokenSet, error) {
	saved := set.Cursor()
	set.Skip(start - saved)
	subset, err := set.CreateSubset(set.Cursor(), length)
	set.Skip(saved - set.Cursor())
	return subset, err
}

// CollectBlock collects a brace-delimited block: CollectBlockVariant(set,
// LBRACE, RBRACE).
func CollectBlock(set *TokenSet) (*TokenSet, error) {
	return CollectBlockVariant(set, token.LBRACE, token.RBRACE)
}

// CollectUntilToken returns a subset covering [cursor, first T), consuming
// through T. Returns (nil, nil) if T is the very next token, and likewise
// if T never appears before the end of the stream (the remaining tokens
// are consumed; no error is raised).
func CollectUntilToken(set *TokenSet, t token.Type) (*TokenSet, error) {
	start := set.Cursor()
	for {
		cur := set.PeekNext()
		if cur.Type == token.EOF {
			return nil, nil
		}
		if cur.Type == t {
			length := set.Cursor() - start
			subset, err := interiorSubset(set, start, length)
			if err != nil {
				return nil, err
			}
			set.Next() // consume T
			if length == 0 {
				return nil, nil
			}
			return subset, nil
		}
		set.Next()
	}
}
