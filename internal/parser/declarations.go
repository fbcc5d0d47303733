package parser

import (
	"strconv"

	"github.com/stride-lang/stride/internal/ast"
	"github.com/stride-lang/stride/internal/diag"
	"github.com/stride-lang/stride/internal/scope"
	"github.com/stride-lang/stride/internal/token"
	"github.com/stride-lang/stride/internal/tokenstream"
	"github.com/stride-lang/stride/internal/types"
)

// parseBlock collects a brace-delimited block via the token-stream block
// collector and recursively parses its interior as its own statement
// sequence under a BLOCK child scope.
func (p *Parser) parseBlock(set *tokenstream.TokenSet, reg *scope.Scope) (*ast.Block, error) {
	start := set.PeekNext()
	interior, err := tokenstream.CollectBlock(set)
	if err != nil {
		return nil, err
	}
	child := reg.Derive(scope.BLOCK, "")
	if interior == nil {
		return ast.NewBlock(p.file, start.Pos, child, nil), nil
	}
	stmts, err := p.parseSequential(interior, child)
	if err != nil {
		return nil, err
	}
	return ast.NewBlock(p.file, start.Pos, child, stmts), nil
}

// parseModule parses `module name { body }`, extending the qualified
// prefix for every declaration inside body.
func (p *Parser) parseModule(set *tokenstream.TokenSet, reg *scope.Scope) (ast.Stmt, error) {
	start, err := set.Expect(token.MODULE)
	if err != nil {
		return nil, err
	}
	name, err := set.Expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := reg.DefineSymbol(name.Lexeme, scope.MODULE_SYM); err != nil {
		return nil, set.ThrowError(name, diag.SemanticError, err.Error())
	}
	child := reg.Derive(scope.MODULE, name.Lexeme)

	interior, err := tokenstream.CollectBlock(set)
	if err != nil {
		return nil, err
	}
	var body []ast.Decl
	if interior != nil {
		stmts, err := p.parseSequential(interior, child)
		if err != nil {
			return nil, err
		}
		for _, s := range stmts {
			d, ok := s.(ast.Decl)
			if !ok {
				return nil, set.ThrowError(name, diag.SyntaxError, "only declarations are allowed directly inside a module body")
			}
			body = append(body, d)
		}
	}
	return ast.NewModule(p.file, start.Pos, reg, name.Lexeme, body), nil
}

// parseImport parses `use a::b::{Foo, Bar};`.
func (p *Parser) parseImport(set *tokenstream.TokenSet, reg *scope.Scope) (ast.Stmt, error) {
	start, err := set.Expect(token.USE)
	if err != nil {
		return nil, err
	}

	var segments []string
	for {
		seg, err := set.Expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg.Lexeme)
		if set.PeekNextEq(token.DOUBLE_COLON) {
			set.Next()
			if set.PeekNextEq(token.LBRACE) {
				break
			}
			continue
		}
		return nil, set.ThrowError(set.PeekNext(), diag.SyntaxError, "expected '::{' in use declaration")
	}

	if _, err := set.Expect(token.LBRACE); err != nil {
		return nil, err
	}
	var submodules []string
	for !set.PeekNextEq(token.RBRACE) {
		name, err := set.Expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		submodules = append(submodules, name.Lexeme)
		if set.PeekNextEq(token.COMMA) {
			set.Next()
			continue
		}
		break
	}
	if _, err := set.Expect(token.RBRACE); err != nil {
		return nil, err
	}
	if _, err := set.Expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	if len(submodules) == 0 {
		return nil, set.ThrowError(start, diag.SyntaxError, "use declaration must import at least one submodule")
	}

	moduleBase := scope.ResolveInternalName(segments)
	return ast.NewImport(p.file, start.Pos, reg, moduleBase, submodules), nil
}

// parseEnum parses `enum Name { member: value, ... }`.
func (p *Parser) parseEnum(set *tokenstream.TokenSet, reg *scope.Scope) (ast.Stmt, error) {
	start, err := set.Expect(token.ENUM)
	if err != nil {
		return nil, err
	}
	name, err := set.Expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := reg.DefineSymbol(name.Lexeme, scope.ENUM); err != nil {
		return nil, set.ThrowError(name, diag.SemanticError, err.Error())
	}
	child := reg.Derive(scope.BLOCK, name.Lexeme)

	if _, err := set.Expect(token.LBRACE); err != nil {
		return nil, err
	}
	var members []*ast.EnumerableMember
	for !set.PeekNextEq(token.RBRACE) {
		memberName, err := set.Expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := set.Expect(token.COLON); err != nil {
			return nil, err
		}
		valueTok, err := set.Expect(token.INTEGER)
		if err != nil {
			return nil, err
		}
		value, convErr := strconv.ParseInt(valueTok.Lexeme, 10, 64)
		if convErr != nil {
			return nil, set.ThrowError(valueTok, diag.SemanticError, "malformed enum member value '"+valueTok.Lexeme+"'")
		}
		if _, err := child.DefineSymbol(memberName.Lexeme, scope.ENUM_MEMBER); err != nil {
			return nil, set.ThrowError(memberName, diag.SemanticError, err.Error())
		}
		members = append(members, ast.NewEnumerableMember(p.file, memberName.Pos, child, memberName.Lexeme, value))
		if set.PeekNextEq(token.COMMA) {
			set.Next()
			continue
		}
		break
	}
	if _, err := set.Expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewEnumerable(p.file, start.Pos, reg, name.Lexeme, members), nil
}

// parseStruct parses `struct Name { member: Type; ... }` or the alias form
// `struct Name = Other;`.
func (p *Parser) parseStruct(set *tokenstream.TokenSet, reg *scope.Scope) (ast.Stmt, error) {
	start, err := set.Expect(token.STRUCT)
	if err != nil {
		return nil, err
	}
	name, err := set.Expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := reg.DefineSymbol(name.Lexeme, scope.STRUCT); err != nil {
		return nil, set.ThrowError(name, diag.SemanticError, err.Error())
	}

	if set.PeekNextEq(token.EQUALS) {
		set.Next()
		aliasTok, err := set.Expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := set.Expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return ast.NewStruct(p.file, start.Pos, reg, name.Lexeme, aliasTok.Lexeme, nil), nil
	}

	child := reg.Derive(scope.BLOCK, name.Lexeme)
	if _, err := set.Expect(token.LBRACE); err != nil {
		return nil, err
	}
	var members []*ast.StructMember
	for !set.PeekNextEq(token.RBRACE) {
		memberName, err := set.Expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := set.Expect(token.COLON); err != nil {
			return nil, err
		}
		memberType, err := p.parseType(set)
		if err != nil {
			return nil, err
		}
		if _, err := child.DefineField(memberName.Lexeme, memberName.Lexeme, memberType); err != nil {
			return nil, set.ThrowError(memberName, diag.SemanticError, err.Error())
		}
		members = append(members, ast.NewStructMember(p.file, memberName.Pos, child, memberName.Lexeme, memberType))
		if _, err := set.Expect(token.SEMICOLON); err != nil {
			return nil, err
		}
	}
	if _, err := set.Expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewStruct(p.file, start.Pos, reg, name.Lexeme, "", members), nil
}

// parseVariableDeclaration parses `let [mut] name: Type = init;`.
func (p *Parser) parseVariableDeclaration(set *tokenstream.TokenSet, reg *scope.Scope) (ast.Stmt, error) {
	start, err := set.Expect(token.LET)
	if err != nil {
		return nil, err
	}
	mutable := false
	if set.PeekNextEq(token.MUT) {
		set.Next()
		mutable = true
	}
	name, err := set.Expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := set.Expect(token.COLON); err != nil {
		return nil, err
	}
	declaredType, err := p.parseType(set)
	if err != nil {
		return nil, err
	}

	var init ast.Expr
	if set.PeekNextEq(token.EQUALS) {
		set.Next()
		init, err = p.parseExpr(set, reg)
		if err != nil {
			return nil, err
		}
	}
	if _, err := set.Expect(token.SEMICOLON); err != nil {
		return nil, err
	}

	field, err := reg.DefineField(name.Lexeme, name.Lexeme, declaredType)
	if err != nil {
		return nil, set.ThrowError(name, diag.SemanticError, err.Error())
	}
	return ast.NewVariableDeclaration(p.file, start.Pos, reg, name.Lexeme, field.Internal, mutable, declaredType, init), nil
}

// parseReturn parses `return expr;` or `return;`.
func (p *Parser) parseReturn(set *tokenstream.TokenSet, reg *scope.Scope) (ast.Stmt, error) {
	start, err := set.Expect(token.RETURN)
	if err != nil {
		return nil, err
	}
	if set.PeekNextEq(token.SEMICOLON) {
		set.Next()
		return ast.NewReturn(p.file, start.Pos, reg, nil), nil
	}
	value, err := p.parseExpr(set, reg)
	if err != nil {
		return nil, err
	}
	if _, err := set.Expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ast.NewReturn(p.file, start.Pos, reg, value), nil
}

// parseFunctionDeclaration parses
// `fn name(p1: T1, ..., ...pn: Tn) : Ret -> { body }`, or the bodyless
// extern form `fn name(...) : Ret;`. The internal mangled name is computed
// once the full parameter-type list is known.
func (p *Parser) parseFunctionDeclaration(set *tokenstream.TokenSet, reg *scope.Scope) (ast.Stmt, error) {
	start, err := set.Expect(token.FN)
	if err != nil {
		return nil, err
	}
	name, err := set.Expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	funcScope := reg.Derive(scope.FUNCTION, "")

	params, err := p.parseParameterList(set, funcScope)
	if err != nil {
		return nil, err
	}

	if _, err := set.Expect(token.COLON); err != nil {
		return nil, err
	}
	retType, err := p.parseType(set)
	if err != nil {
		return nil, err
	}

	isExtern := !set.PeekNextEq(token.DASH_RARROW)
	var body *ast.Block
	if isExtern {
		if _, err := set.Expect(token.SEMICOLON); err != nil {
			return nil, err
		}
	} else {
		set.Next() // consume '->'
		body, err = p.parseBlock(set, funcScope)
		if err != nil {
			return nil, err
		}
	}

	// The mangled internal name folds the parameter-type hash onto the
	// already scope-qualified name (a function g in module a::b becomes
	// a__b__g$<hex6>), not onto the bare source name. "main" and externs
	// are exempt and keep their unqualified source name untouched.
	var internal string
	if isExtern || name.Lexeme == "main" {
		internal = name.Lexeme
	} else {
		qualified := reg.ResolveInternalName(name.Lexeme)
		internal = scope.ResolveInternalFunctionName(paramTypesOf(params), qualified, false)
	}
	if _, err := reg.DefineSymbol(name.Lexeme, scope.FUNCTION_SYM); err != nil {
		return nil, set.ThrowError(name, diag.SemanticError, err.Error())
	}

	return ast.NewFunctionDeclaration(p.file, start.Pos, reg, name.Lexeme, internal, params, retType, body, isExtern), nil
}

func paramTypesOf(params []*ast.FunctionParameter) []types.Type {
	out := make([]types.Type, len(params))
	for i, pm := range params {
		out[i] = pm.DeclaredType
	}
	return out
}

// parseParameterList parses the parenthesised, comma-separated parameter
// list of a function/lambda declaration, enforcing uniqueness,
// MaxFunctionParameters, and variadic-must-be-last.
func (p *Parser) parseParameterList(set *tokenstream.TokenSet, funcScope *scope.Scope) ([]*ast.FunctionParameter, error) {
	if _, err := set.Expect(token.LPAREN); err != nil {
		return nil, err
	}

	var params []*ast.FunctionParameter
	seen := make(map[string]bool)
	for !set.PeekNextEq(token.RPAREN) {
		paramStart := set.PeekNext()
		variadic := false
		if set.PeekNextEq(token.THREE_DOTS) {
			set.Next()
			variadic = true
		}
		mutable := false
		if set.PeekNextEq(token.MUT) {
			set.Next()
			mutable = true
		}
		pname, err := set.Expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if seen[pname.Lexeme] {
			return nil, set.ThrowError(pname, diag.SemanticError, "duplicate parameter name '"+pname.Lexeme+"'")
		}
		seen[pname.Lexeme] = true

		if _, err := set.Expect(token.COLON); err != nil {
			return nil, err
		}
		ptype, err := p.parseType(set)
		if err != nil {
			return nil, err
		}

		if variadic && set.PeekNextEq(token.COMMA) {
			return nil, set.ThrowError(set.PeekNext(), diag.SyntaxError, "variadic parameter must be last")
		}

		field, err := funcScope.DefineField(pname.Lexeme, pname.Lexeme, ptype)
		if err != nil {
			return nil, set.ThrowError(pname, diag.SemanticError, err.Error())
		}
		param := ast.NewFunctionParameter(p.file, paramStart.Pos, funcScope, pname.Lexeme, field.Internal, ptype, variadic, mutable)
		flags := types.NONE
		if variadic {
			flags |= types.TYPE_VARIADIC
		}
		if mutable {
			flags |= types.FN_PARAM_MUTABLE
		}
		param.SetFlags(flags)
		params = append(params, param)

		if len(params) > MaxFunctionParameters {
			return nil, set.ThrowError(pname, diag.SyntaxError, "too many function parameters")
		}

		if variadic {
			break
		}
		if set.PeekNextEq(token.COMMA) {
			set.Next()
			continue
		}
		break
	}

	if _, err := set.Expect(token.RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}

// parseLambda parses an anonymous function literal, synthesising the name
// `__anonymous_<N>` from the monotonic per-parser counter.
func (p *Parser) parseLambda(set *tokenstream.TokenSet, reg *scope.Scope) (ast.Expr, error) {
	start := set.PeekNext()
	funcScope := reg.Derive(scope.FUNCTION, "")

	params, err := p.parseParameterList(set, funcScope)
	if err != nil {
		return nil, err
	}

	var retType types.Type = types.Primitive{Kind: types.Void}
	if set.PeekNextEq(token.COLON) {
		set.Next()
		retType, err = p.parseType(set)
		if err != nil {
			return nil, err
		}
	}

	if _, err := set.Expect(token.DASH_RARROW); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(set, funcScope)
	if err != nil {
		return nil, err
	}

	p.anonCounter++
	name := "__anonymous_" + strconv.Itoa(p.anonCounter)
	qualified := reg.ResolveInternalName(name)
	internal := scope.ResolveInternalFunctionName(paramTypesOf(params), qualified, false)

	decl := ast.NewFunctionDeclaration(p.file, start.Pos, reg, name, internal, params, retType, body, false)
	return ast.NewLambdaExpression(p.file, start.Pos, reg, decl), nil
}
