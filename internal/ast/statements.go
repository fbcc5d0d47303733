package ast

import (
	"github.com/stride-lang/stride/internal/scope"
	"github.com/stride-lang/stride/internal/source"
	"github.com/stride-lang/stride/internal/types"
)

// VariableDeclaration is `let name: Type = init;` (or without `= init`).
// Mutable records whether the declaration used `mut`; lowering allocates
// its stack slot at the enclosing function's entry block, not at the
// current insertion point.
type VariableDeclaration struct {
	base
	Name         string
	Internal     string
	Mutable      bool
	DeclaredType types.Type
	Init         Expr
}

func NewVariableDeclaration(file *source.File, pos source.Position, reg *scope.Scope, name, internal string, mutable bool, declaredType types.Type, init Expr) *VariableDeclaration {
	return &VariableDeclaration{
		base:         newBase(file, pos, reg),
		Name:         name,
		Internal:     internal,
		Mutable:      mutable,
		DeclaredType: declaredType,
		Init:         init,
	}
}

func (*VariableDeclaration) stmtNode() {}

// ExpressionStatement adapts a bare expression to statement position.
type ExpressionStatement struct {
	base
	Expr Expr
}

func NewExpressionStatement(expr Expr) *ExpressionStatement {
	return &ExpressionStatement{
		base: base{file: expr.File(), pos: expr.Pos()},
		Expr: expr,
	}
}

func (*ExpressionStatement) stmtNode() {}

// Return is `return expr;` or `return;`. Value is nil for a void return.
type Return struct {
	base
	Value Expr
}

func NewReturn(file *source.File, pos source.Position, reg *scope.Scope, value Expr) *Return {
	return &Return{base: newBase(file, pos, reg), Value: value}
}

func (*Return) stmtNode() {}

// Block is an ordered sequence of statements sharing one BLOCK scope.
type Block struct {
	base
	Stmts []Stmt
}

func NewBlock(file *source.File, pos source.Position, reg *scope.Scope, stmts []Stmt) *Block {
	return &Block{base: newBase(file, pos, reg), Stmts: stmts}
}

func (*Block) stmtNode() {}

// IsTerminator reports whether stmt always transfers control out of its
// enclosing block. Only Return counts: the language has no other
// unconditional control-transfer statement.
func IsTerminator(stmt Stmt) bool {
	_, ok := stmt.(*Return)
	return ok
}
