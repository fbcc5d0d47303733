// Package parser implements the recursive-descent parser: parseSequential
// dispatches on the next token to route between declarations, statements,
// and expression statements, and precedence climbing handles expressions.
// One parseX method per grammar production, all threading the current
// TokenSet and Scope explicitly.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stride-lang/stride/internal/ast"
	"github.com/stride-lang/stride/internal/diag"
	"github.com/stride-lang/stride/internal/scope"
	"github.com/stride-lang/stride/internal/source"
	"github.com/stride-lang/stride/internal/token"
	"github.com/stride-lang/stride/internal/tokenstream"
	"github.com/stride-lang/stride/internal/types"
)

// MaxFunctionParameters is the hard cap on declared parameter lists
// (variadic parameter included).
const MaxFunctionParameters = 255

// Parser holds the state the productions need beyond the TokenSet/Scope
// pair they thread explicitly: the file being parsed and the
// anonymous-lambda counter.
type Parser struct {
	file        *source.File
	anonCounter int
}

// New creates a Parser for the given source file.
func New(file *source.File) *Parser {
	return &Parser{file: file}
}

// Parse parses the entire token stream into a root Block under a fresh
// GLOBAL scope.
func Parse(file *source.File, tokens []token.Token) (*ast.Block, *scope.Scope, error) {
	global := scope.NewGlobal()
	set := tokenstream.New(file, tokens)
	p := New(file)

	stmts, err := p.parseSequential(set, global)
	if err != nil {
		return nil, nil, err
	}
	return ast.NewBlock(file, source.Position{Offset: 0}, global, stmts), global, nil
}

// parseSequential repeatedly dispatches on the next token until EOF.
func (p *Parser) parseSequential(set *tokenstream.TokenSet, reg *scope.Scope) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !set.PeekNextEq(token.EOF) {
		stmt, err := p.parseOne(set, reg)
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}

func (p *Parser) parseOne(set *tokenstream.TokenSet, reg *scope.Scope) (ast.Stmt, error) {
	cur := set.PeekNext()
	switch cur.Type {
	case token.MODULE:
		return p.parseModule(set, reg)
	case token.USE:
		if reg.Kind() != scope.GLOBAL {
			return nil, set.ThrowError(cur, diag.SyntaxError, "'use' is only legal at global scope")
		}
		return p.parseImport(set, reg)
	case token.ENUM:
		return p.parseEnum(set, reg)
	case token.STRUCT:
		return p.parseStruct(set, reg)
	case token.FN:
		return p.parseFunctionDeclaration(set, reg)
	case token.LET:
		return p.parseVariableDeclaration(set, reg)
	case token.RETURN:
		return p.parseReturn(set, reg)
	default:
		var expr ast.Expr
		var err error
		if p.isLambdaLookahead(set) {
			expr, err = p.parseLambda(set, reg)
		} else {
			expr, err = p.parseExpr(set, reg)
		}
		if err != nil {
			return nil, err
		}
		if set.PeekNextEq(token.SEMICOLON) {
			set.Next()
		}
		return ast.NewExpressionStatement(expr), nil
	}
}

// isLambdaLookahead reports whether the next three tokens are `(`, IDENT,
// `:`, the fixed lookahead that distinguishes a lambda from a
// parenthesised expression.
func (p *Parser) isLambdaLookahead(set *tokenstream.TokenSet) bool {
	return set.PeekEq(0, token.LPAREN) && set.PeekEq(1, token.IDENT) && set.PeekEq(2, token.COLON)
}

// parseType parses a type expression: a primitive name, a named reference,
// an array form `[T]` / `[T; N]`, or a function type `(T1, T2) -> Ret`.
func (p *Parser) parseType(set *tokenstream.TokenSet) (types.Type, error) {
	cur := set.PeekNext()
	switch cur.Type {
	case token.LSQUARE:
		set.Next()
		elem, err := p.parseType(set)
		if err != nil {
			return nil, err
		}
		rank := 0
		if set.PeekNextEq(token.SEMICOLON) {
			set.Next()
			n := set.Next()
			if n.Type != token.INTEGER {
				return nil, set.ThrowError(n, diag.SyntaxError, "expected array rank integer literal")
			}
			v, _ := strconv.Atoi(n.Lexeme)
			rank = v
		}
		if _, err := set.Expect(token.RSQUARE); err != nil {
			return nil, err
		}
		return types.Array{Element: elem, Rank: rank}, nil
	case token.LPAREN:
		set.Next()
		var params []types.Type
		for !set.PeekNextEq(token.RPAREN) {
			t, err := p.parseType(set)
			if err != nil {
				return nil, err
			}
			params = append(params, t)
			if set.PeekNextEq(token.COMMA) {
				set.Next()
				continue
			}
			break
		}
		if _, err := set.Expect(token.RPAREN); err != nil {
			return nil, err
		}
		if _, err := set.Expect(token.DASH_RARROW); err != nil {
			return nil, err
		}
		ret, err := p.parseType(set)
		if err != nil {
			return nil, err
		}
		return types.Function{Params: params, Return: ret}, nil
	case token.IDENT:
		set.Next()
		if k, ok := primitiveKind(cur.Lexeme); ok {
			return types.Primitive{Kind: k}, nil
		}
		return types.Named{Name: cur.Lexeme}, nil
	default:
		return nil, set.ThrowError(cur, diag.SyntaxError, "expected a type, got "+cur.Type.String())
	}
}

var primitiveNames = map[string]types.PrimitiveKind{
	"i8": types.I8, "i16": types.I16, "i32": types.I32, "i64": types.I64,
	"f32": types.F32, "f64": types.F64,
	"u8": types.U8, "u16": types.U16, "u32": types.U32, "u64": types.U64,
	"bool": types.Bool, "char": types.Char, "void": types.Void, "ptr": types.Ptr,
}

func primitiveKind(name string) (types.PrimitiveKind, bool) {
	k, ok := primitiveNames[name]
	return k, ok
}

// parseQualifiedName consumes IDENT (`::` IDENT)* and returns the leading
// segments and the final name, used for identifiers and calls (parseImport
// reads a `use` module path with its own loop).
func (p *Parser) parseQualifiedName(set *tokenstream.TokenSet) ([]string, string, error) {
	first, err := set.Expect(token.IDENT)
	if err != nil {
		return nil, "", err
	}
	segments := []string{first.Lexeme}
	for set.PeekNextEq(token.DOUBLE_COLON) {
		set.Next()
		next, err := set.Expect(token.IDENT)
		if err != nil {
			return nil, "", err
		}
		segments = append(segments, next.Lexeme)
	}
	name := segments[len(segments)-1]
	qualifier := segments[:len(segments)-1]
	return qualifier, name, nil
}

func inferIntBitWidth(v int64) (int, error) {
	switch {
	case v >= -(1<<7) && v < 1<<7:
		return 8, nil
	case v >= -(1<<15) && v < 1<<15:
		return 16, nil
	case v >= -(1<<31) && v < 1<<31:
		return 32, nil
	default:
		return 0, fmt.Errorf("integer literal %d out of range for a 32-bit INTEGER (use an L suffix for 64-bit)", v)
	}
}

func stripSuffix(lexeme string) string {
	return strings.TrimRight(lexeme, "LlDd")
}
