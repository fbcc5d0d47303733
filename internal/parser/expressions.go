package parser

import (
	"strconv"

	"github.com/stride-lang/stride/internal/ast"
	"github.com/stride-lang/stride/internal/diag"
	"github.com/stride-lang/stride/internal/scope"
	"github.com/stride-lang/stride/internal/token"
	"github.com/stride-lang/stride/internal/tokenstream"
)

// precedence levels for binary operators, low to high. Logical operators
// bind loosest so `a == b && c == d` parses as `(a==b) && (c==d)`.
const (
	precNone = iota
	precLogicalOr
	precLogicalAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
)

func binaryPrecedence(t token.Type) int {
	switch t {
	case token.DOUBLE_PIPE:
		return precLogicalOr
	case token.DOUBLE_AMPERSAND:
		return precLogicalAnd
	case token.DOUBLE_EQUALS, token.BANG_EQUALS:
		return precEquality
	case token.LANGLE, token.LEQUALS, token.RANGLE, token.GEQUALS:
		return precRelational
	case token.PLUS, token.DASH:
		return precAdditive
	case token.STAR, token.SLASH, token.PERCENT:
		return precMultiplicative
	default:
		return precNone
	}
}

func isLogical(t token.Type) bool {
	return t == token.DOUBLE_PIPE || t == token.DOUBLE_AMPERSAND
}

func isComparison(t token.Type) bool {
	switch t {
	case token.DOUBLE_EQUALS, token.BANG_EQUALS, token.LANGLE, token.LEQUALS, token.RANGLE, token.GEQUALS:
		return true
	default:
		return false
	}
}

// parseExpr parses a full expression via precedence climbing.
func (p *Parser) parseExpr(set *tokenstream.TokenSet, reg *scope.Scope) (ast.Expr, error) {
	return p.parseBinary(set, reg, precLogicalOr)
}

func (p *Parser) parseBinary(set *tokenstream.TokenSet, reg *scope.Scope, minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary(set, reg)
	if err != nil {
		return nil, err
	}

	for {
		op := set.PeekNext()
		prec := binaryPrecedence(op.Type)
		if prec == precNone || prec < minPrec {
			return left, nil
		}
		set.Next()
		right, err := p.parseBinary(set, reg, prec+1)
		if err != nil {
			return nil, err
		}

		switch {
		case isLogical(op.Type):
			left = ast.NewLogicalOp(p.file, op.Pos, reg, op.Type, left, right)
		case isComparison(op.Type):
			left = ast.NewComparisonOp(p.file, op.Pos, reg, op.Type, left, right)
		default:
			left = ast.NewBinaryArith(p.file, op.Pos, reg, op.Type, left, right)
		}
	}
}

// parseUnary handles the unary `-` and `!` prefixes by desugaring into a
// BinaryArith/ComparisonOp against a zero/false literal; the expression
// taxonomy has no dedicated unary node.
func (p *Parser) parseUnary(set *tokenstream.TokenSet, reg *scope.Scope) (ast.Expr, error) {
	cur := set.PeekNext()
	switch cur.Type {
	case token.DASH:
		// A literal directly after '-' negates the literal's value so
		// bit-width inference runs on the true magnitude instead of on the
		// unsigned digits; anything else desugars to 0 - operand.
		if isLiteralStart(set.Peek(1).Type) {
			set.Next()
			lit, err := p.parseLiteral(set, reg)
			if err != nil {
				return nil, err
			}
			return negateLiteral(lit), nil
		}
		set.Next()
		operand, err := p.parseUnary(set, reg)
		if err != nil {
			return nil, err
		}
		zero := ast.NewIntLit(p.file, cur.Pos, reg, 0, 32, true)
		return ast.NewBinaryArith(p.file, cur.Pos, reg, token.DASH, zero, operand), nil
	case token.BANG:
		set.Next()
		operand, err := p.parseUnary(set, reg)
		if err != nil {
			return nil, err
		}
		falseLit := ast.NewBoolLit(p.file, cur.Pos, reg, false)
		return ast.NewComparisonOp(p.file, cur.Pos, reg, token.DOUBLE_EQUALS, operand, falseLit), nil
	default:
		return p.parsePostfix(set, reg)
	}
}

// parsePostfix parses an atom followed by any number of `[index]`
// suffixes. Call argument lists are not postfix here: only a (qualified)
// identifier can be called, and parseIdentifierOrCall parses that form.
func (p *Parser) parsePostfix(set *tokenstream.TokenSet, reg *scope.Scope) (ast.Expr, error) {
	expr, err := p.parseAtom(set, reg)
	if err != nil {
		return nil, err
	}

	for {
		cur := set.PeekNext()
		switch cur.Type {
		case token.LSQUARE:
			set.Next()
			idx, err := p.parseExpr(set, reg)
			if err != nil {
				return nil, err
			}
			if _, err := set.Expect(token.RSQUARE); err != nil {
				return nil, err
			}
			expr = ast.NewArrayMemberAccessor(p.file, cur.Pos, reg, expr, idx)
		default:
			return expr, nil
		}
	}
}

// parseAtom parses a single expression atom: literal, identifier/call,
// parenthesised expression, array initializer, lambda, or variadic
// reference.
func (p *Parser) parseAtom(set *tokenstream.TokenSet, reg *scope.Scope) (ast.Expr, error) {
	cur := set.PeekNext()
	switch cur.Type {
	case token.INTEGER, token.LONG_INTEGER, token.HEX, token.FLOAT, token.DOUBLE,
		token.STRING, token.CHAR, token.BOOLEAN, token.NIL:
		return p.parseLiteral(set, reg)
	case token.THREE_DOTS:
		set.Next()
		return ast.NewVariadicArgReference(p.file, cur.Pos, reg), nil
	case token.LSQUARE:
		return p.parseArrayInitializer(set, reg)
	case token.LPAREN:
		if p.isLambdaLookahead(set) {
			return p.parseLambda(set, reg)
		}
		set.Next()
		expr, err := p.parseExpr(set, reg)
		if err != nil {
			return nil, err
		}
		if _, err := set.Expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case token.IDENT:
		return p.parseIdentifierOrCall(set, reg)
	default:
		return nil, set.ThrowError(cur, diag.SyntaxError, "unexpected token "+cur.Type.String())
	}
}

func (p *Parser) parseIdentifierOrCall(set *tokenstream.TokenSet, reg *scope.Scope) (ast.Expr, error) {
	start := set.PeekNext()
	qualifier, name, err := p.parseQualifiedName(set)
	if err != nil {
		return nil, err
	}

	if !set.PeekNextEq(token.LPAREN) {
		return ast.NewIdentifier(p.file, start.Pos, reg, qualifier, name), nil
	}

	set.Next() // consume '('
	var args []ast.Expr
	for !set.PeekNextEq(token.RPAREN) {
		arg, err := p.parseExpr(set, reg)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if set.PeekNextEq(token.COMMA) {
			set.Next()
			continue
		}
		break
	}
	if _, err := set.Expect(token.RPAREN); err != nil {
		return nil, err
	}
	return ast.NewFunctionInvocation(p.file, start.Pos, reg, qualifier, name, args), nil
}

func (p *Parser) parseArrayInitializer(set *tokenstream.TokenSet, reg *scope.Scope) (ast.Expr, error) {
	start, err := set.Expect(token.LSQUARE)
	if err != nil {
		return nil, err
	}
	var elements []ast.Expr
	for !set.PeekNextEq(token.RSQUARE) {
		elem, err := p.parseExpr(set, reg)
		if err != nil {
			return nil, err
		}
		elements = append(elements, elem)
		if set.PeekNextEq(token.COMMA) {
			set.Next()
			continue
		}
		break
	}
	if _, err := set.Expect(token.RSQUARE); err != nil {
		return nil, err
	}
	return ast.NewArrayInitializer(p.file, start.Pos, reg, elements), nil
}

// parseLiteral parses a single literal token into its typed AST node,
// inferring integer bit width from magnitude.
func (p *Parser) parseLiteral(set *tokenstream.TokenSet, reg *scope.Scope) (ast.Expr, error) {
	tok := set.Next()
	switch tok.Type {
	case token.INTEGER:
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, set.ThrowError(tok, diag.SemanticError, "malformed integer literal '"+tok.Lexeme+"'")
		}
		width, err := inferIntBitWidth(v)
		if err != nil {
			return nil, set.ThrowError(tok, diag.SemanticError, err.Error())
		}
		return ast.NewIntLit(p.file, tok.Pos, reg, v, width, true), nil

	case token.HEX:
		v, err := strconv.ParseUint(stripHexPrefix(tok.Lexeme), 16, 64)
		if err != nil {
			return nil, set.ThrowError(tok, diag.SemanticError, "malformed hex literal '"+tok.Lexeme+"'")
		}
		width, err := inferIntBitWidth(int64(v))
		if err != nil {
			width = 32
		}
		return ast.NewIntLit(p.file, tok.Pos, reg, int64(v), width, false), nil

	case token.LONG_INTEGER:
		v, err := strconv.ParseInt(stripSuffix(tok.Lexeme), 10, 64)
		if err != nil {
			return nil, set.ThrowError(tok, diag.SemanticError, "malformed long integer literal '"+tok.Lexeme+"'")
		}
		return ast.NewLongLit(p.file, tok.Pos, reg, v), nil

	case token.FLOAT:
		v, err := strconv.ParseFloat(tok.Lexeme, 32)
		if err != nil {
			return nil, set.ThrowError(tok, diag.SemanticError, "malformed float literal '"+tok.Lexeme+"'")
		}
		return ast.NewFloatLit(p.file, tok.Pos, reg, float32(v)), nil

	case token.DOUBLE:
		v, err := strconv.ParseFloat(stripSuffix(tok.Lexeme), 64)
		if err != nil {
			return nil, set.ThrowError(tok, diag.SemanticError, "malformed double literal '"+tok.Lexeme+"'")
		}
		return ast.NewDoubleLit(p.file, tok.Pos, reg, v), nil

	case token.STRING:
		return ast.NewStringLit(p.file, tok.Pos, reg, tok.Lexeme), nil

	case token.CHAR:
		r := rune(0)
		for _, c := range tok.Lexeme {
			r = c
			break
		}
		return ast.NewCharLit(p.file, tok.Pos, reg, r), nil

	case token.BOOLEAN:
		return ast.NewBoolLit(p.file, tok.Pos, reg, tok.Lexeme == "true"), nil

	case token.NIL:
		return ast.NewNilLit(p.file, tok.Pos, reg), nil

	default:
		return nil, set.ThrowError(tok, diag.SyntaxError, "expected a literal, got "+tok.Type.String())
	}
}

func isLiteralStart(t token.Type) bool {
	switch t {
	case token.INTEGER, token.LONG_INTEGER, token.FLOAT, token.DOUBLE:
		return true
	default:
		return false
	}
}

// negateLiteral flips the sign of a numeric literal node in place and
// returns it, re-running integer bit-width inference since negation can
// change which width the magnitude fits.
func negateLiteral(lit ast.Expr) ast.Expr {
	switch v := lit.(type) {
	case *ast.IntLit:
		v.Value = -v.Value
		if width, err := inferIntBitWidth(v.Value); err == nil {
			v.BitWidth = width
		}
		return v
	case *ast.LongLit:
		v.Value = -v.Value
		return v
	case *ast.FloatLit:
		v.Value = -v.Value
		return v
	case *ast.DoubleLit:
		v.Value = -v.Value
		return v
	default:
		return lit
	}
}

func stripHexPrefix(lexeme string) string {
	if len(lexeme) > 2 && (lexeme[1] == 'x' || lexeme[1] == 'X') {
		return lexeme[2:]
	}
	return lexeme
}
