package ast

import (
	"testing"

	"github.com/stride-lang/stride/internal/scope"
	"github.com/stride-lang/stride/internal/source"
	"github.com/stride-lang/stride/internal/types"
)

func testBase() (*source.File, source.Position, *scope.Scope) {
	return source.New("test.sr", "fn main(): void -> { }"), source.Position{Offset: 3, Length: 4}, scope.NewGlobal()
}

func TestNodeCarriesFileAndPosition(t *testing.T) {
	f, pos, reg := testBase()
	lit := NewIntLit(f, pos, reg, 42, 8, true)

	if lit.File() != f {
		t.Error("node does not share the source file by reference")
	}
	if lit.Pos() != pos {
		t.Errorf("position = %+v, want %+v", lit.Pos(), pos)
	}
	if lit.Registry() != reg {
		t.Error("node lost its registry back-reference")
	}
}

func TestIsTerminator(t *testing.T) {
	f, pos, reg := testBase()

	if !IsTerminator(NewReturn(f, pos, reg, nil)) {
		t.Error("return is a terminator")
	}
	if IsTerminator(NewVariableDeclaration(f, pos, reg, "x", "x", false, types.Primitive{Kind: types.I32}, nil)) {
		t.Error("a variable declaration is not a terminator")
	}
	if IsTerminator(NewExpressionStatement(NewBoolLit(f, pos, reg, true))) {
		t.Error("an expression statement is not a terminator")
	}
}

func TestFunctionDeclarationHelpers(t *testing.T) {
	f, pos, reg := testBase()
	i32 := types.Primitive{Kind: types.I32}
	params := []*FunctionParameter{
		NewFunctionParameter(f, pos, reg, "a", "a", i32, false, false),
		NewFunctionParameter(f, pos, reg, "rest", "rest", i32, true, false),
	}
	fn := NewFunctionDeclaration(f, pos, reg, "f", "f$000022", params, i32, nil, false)

	if !fn.IsVariadic() {
		t.Error("trailing variadic parameter should make the declaration variadic")
	}
	got := fn.ParamTypes()
	if len(got) != 2 || got[0] != types.Type(i32) {
		t.Errorf("ParamTypes = %v", got)
	}

	empty := NewFunctionDeclaration(f, pos, reg, "g", "g$000000", nil, i32, nil, false)
	if empty.IsVariadic() {
		t.Error("a parameterless declaration is not variadic")
	}
}

func TestStructAliasPredicate(t *testing.T) {
	f, pos, reg := testBase()
	if !NewStruct(f, pos, reg, "A", "B", nil).IsAlias() {
		t.Error("struct with an alias target should report IsAlias")
	}
	if NewStruct(f, pos, reg, "A", "", nil).IsAlias() {
		t.Error("member struct should not report IsAlias")
	}
}

func TestExpressionStatementInheritsSpan(t *testing.T) {
	f, pos, reg := testBase()
	inner := NewStringLit(f, pos, reg, "hello")
	stmt := NewExpressionStatement(inner)

	if stmt.File() != f || stmt.Pos() != pos {
		t.Error("expression statement should carry its expression's span")
	}
}
