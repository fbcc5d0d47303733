// Package ast defines the AST node taxonomy for stride: a polymorphic tree
// of literals, expressions, statements, and declarations, each carrying
// the source file, position, owning scope, and (once known) static type
// that diagnostics and lowering need. Nodes share a common embedded base
// rather than repeating the same fields on every struct; what a node can
// do (emit IR, fold to a constant) is resolved by type switches in
// internal/lowering rather than marker interfaces here.
package ast

import (
	"github.com/stride-lang/stride/internal/scope"
	"github.com/stride-lang/stride/internal/source"
	"github.com/stride-lang/stride/internal/types"
)

// Node is implemented by every AST node.
type Node interface {
	File() *source.File
	Pos() source.Position
}

// Expr is any node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any node that performs an action in a Block.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is any top-level or module-level declaration.
type Decl interface {
	Node
	declNode()
}

// base carries the fields every node shares: the source
// file, its span, the scope it was parsed in, its static type (nil until a
// lowering pass fills it in for nodes whose type isn't known at parse
// time), and its flag bitset.
type base struct {
	file     *source.File
	pos      source.Position
	registry *scope.Scope
	typ      types.Type
	flags    types.Flags
}

func (b *base) File() *source.File    { return b.file }
func (b *base) Pos() source.Position  { return b.pos }
func (b *base) Registry() *scope.Scope { return b.registry }
func (b *base) Type() types.Type      { return b.typ }
func (b *base) SetType(t types.Type)  { b.typ = t }
func (b *base) Flags() types.Flags    { return b.flags }
func (b *base) SetFlags(f types.Flags) { b.flags = f }

func newBase(file *source.File, pos source.Position, reg *scope.Scope) base {
	return base{file: file, pos: pos, registry: reg}
}

// IntLit is a plain decimal or hex integer literal; BitWidth has already
// been inferred from its magnitude by the parser.
type IntLit struct {
	base
	Value    int64
	BitWidth int
	Signed   bool
}

func NewIntLit(file *source.File, pos source.Position, reg *scope.Scope, value int64, bitWidth int, signed bool) *IntLit {
	return &IntLit{base: newBase(file, pos, reg), Value: value, BitWidth: bitWidth, Signed: signed}
}

func (*IntLit) exprNode() {}

// LongLit is an INTEGER literal with the `L` suffix: always 64-bit.
type LongLit struct {
	base
	Value int64
}

func NewLongLit(file *source.File, pos source.Position, reg *scope.Scope, value int64) *LongLit {
	return &LongLit{base: newBase(file, pos, reg), Value: value}
}

func (*LongLit) exprNode() {}

// FloatLit is a FLOAT literal: 32-bit.
type FloatLit struct {
	base
	Value float32
}

func NewFloatLit(file *source.File, pos source.Position, reg *scope.Scope, value float32) *FloatLit {
	return &FloatLit{base: newBase(file, pos, reg), Value: value}
}

func (*FloatLit) exprNode() {}

// DoubleLit is a DOUBLE literal (`D` suffix): 64-bit.
type DoubleLit struct {
	base
	Value float64
}

func NewDoubleLit(file *source.File, pos source.Position, reg *scope.Scope, value float64) *DoubleLit {
	return &DoubleLit{base: newBase(file, pos, reg), Value: value}
}

func (*DoubleLit) exprNode() {}

// CharLit is a single-character literal.
type CharLit struct {
	base
	Value rune
}

func NewCharLit(file *source.File, pos source.Position, reg *scope.Scope, value rune) *CharLit {
	return &CharLit{base: newBase(file, pos, reg), Value: value}
}

func (*CharLit) exprNode() {}

// StringLit is a string literal. Lowering interns these by byte content,
// not this package.
type StringLit struct {
	base
	Value string
}

func NewStringLit(file *source.File, pos source.Position, reg *scope.Scope, value string) *StringLit {
	return &StringLit{base: newBase(file, pos, reg), Value: value}
}

func (*StringLit) exprNode() {}

// BoolLit is a `true`/`false` literal.
type BoolLit struct {
	base
	Value bool
}

func NewBoolLit(file *source.File, pos source.Position, reg *scope.Scope, value bool) *BoolLit {
	return &BoolLit{base: newBase(file, pos, reg), Value: value}
}

func (*BoolLit) exprNode() {}

// NilLit is the `nil` null-pointer literal.
type NilLit struct {
	base
}

func NewNilLit(file *source.File, pos source.Position, reg *scope.Scope) *NilLit {
	return &NilLit{base: newBase(file, pos, reg)}
}

func (*NilLit) exprNode() {}
