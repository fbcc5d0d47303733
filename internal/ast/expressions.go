package ast

import (
	"github.com/stride-lang/stride/internal/scope"
	"github.com/stride-lang/stride/internal/source"
	"github.com/stride-lang/stride/internal/token"
)

// Identifier is a (possibly module-qualified) name reference, e.g. `x` or
// `a::b::g`. Qualifier holds the `::`-separated segments before the final
// name, empty for an unqualified reference.
type Identifier struct {
	base
	Qualifier []string
	Name      string
}

func NewIdentifier(file *source.File, pos source.Position, reg *scope.Scope, qualifier []string, name string) *Identifier {
	return &Identifier{base: newBase(file, pos, reg), Qualifier: qualifier, Name: name}
}

func (*Identifier) exprNode() {}

// BinaryArith is an arithmetic binary expression (+, -, *, /, %).
type BinaryArith struct {
	base
	Op    token.Type
	Left  Expr
	Right Expr
}

func NewBinaryArith(file *source.File, pos source.Position, reg *scope.Scope, op token.Type, left, right Expr) *BinaryArith {
	return &BinaryArith{base: newBase(file, pos, reg), Op: op, Left: left, Right: right}
}

func (*BinaryArith) exprNode() {}

// ComparisonOp is a relational comparison (==, !=, <, <=, >, >=). Lowering
// dispatches on operand type: floating-point operands use ordered float
// comparisons, everything else uses signed integer comparisons.
type ComparisonOp struct {
	base
	Op    token.Type
	Left  Expr
	Right Expr
}

func NewComparisonOp(file *source.File, pos source.Position, reg *scope.Scope, op token.Type, left, right Expr) *ComparisonOp {
	return &ComparisonOp{base: newBase(file, pos, reg), Op: op, Left: left, Right: right}
}

func (*ComparisonOp) exprNode() {}

// LogicalOp is a short-circuiting `&&` or `||` expression, lowered via a
// three-basic-block branch-and-phi scheme.
type LogicalOp struct {
	base
	Op    token.Type // DOUBLE_AMPERSAND or DOUBLE_PIPE
	Left  Expr
	Right Expr
}

func NewLogicalOp(file *source.File, pos source.Position, reg *scope.Scope, op token.Type, left, right Expr) *LogicalOp {
	return &LogicalOp{base: newBase(file, pos, reg), Op: op, Left: left, Right: right}
}

func (*LogicalOp) exprNode() {}

// ArrayInitializer is an array literal `[e1, e2, ...]`.
type ArrayInitializer struct {
	base
	Elements []Expr
}

func NewArrayInitializer(file *source.File, pos source.Position, reg *scope.Scope, elements []Expr) *ArrayInitializer {
	return &ArrayInitializer{base: newBase(file, pos, reg), Elements: elements}
}

func (*ArrayInitializer) exprNode() {}

// ArrayMemberAccessor is an indexing expression `arr[index]`.
type ArrayMemberAccessor struct {
	base
	Array Expr
	Index Expr
}

func NewArrayMemberAccessor(file *source.File, pos source.Position, reg *scope.Scope, array, index Expr) *ArrayMemberAccessor {
	return &ArrayMemberAccessor{base: newBase(file, pos, reg), Array: array, Index: index}
}

func (*ArrayMemberAccessor) exprNode() {}

// FunctionInvocation is a call `name(args...)`, possibly module-qualified.
type FunctionInvocation struct {
	base
	Qualifier []string
	Name      string
	Args      []Expr
}

func NewFunctionInvocation(file *source.File, pos source.Position, reg *scope.Scope, qualifier []string, name string, args []Expr) *FunctionInvocation {
	return &FunctionInvocation{base: newBase(file, pos, reg), Qualifier: qualifier, Name: name, Args: args}
}

func (*FunctionInvocation) exprNode() {}

// LambdaExpression wraps a synthesized FunctionDeclaration (named
// __anonymous_<N>) so it can appear anywhere an expression is expected.
type LambdaExpression struct {
	base
	Decl *FunctionDeclaration
}

func NewLambdaExpression(file *source.File, pos source.Position, reg *scope.Scope, decl *FunctionDeclaration) *LambdaExpression {
	return &LambdaExpression{base: newBase(file, pos, reg), Decl: decl}
}

func (*LambdaExpression) exprNode() {}

// VariadicArgReference is the bare `...` expression referencing the
// enclosing variadic function's argument list. Legal only inside a
// variadic function body; lowering raises SemanticError otherwise.
type VariadicArgReference struct {
	base
}

func NewVariadicArgReference(file *source.File, pos source.Position, reg *scope.Scope) *VariadicArgReference {
	return &VariadicArgReference{base: newBase(file, pos, reg)}
}

func (*VariadicArgReference) exprNode() {}
