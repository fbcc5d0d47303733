package lowering

import (
	"strings"

	"github.com/stride-lang/stride/internal/ast"
	"github.com/stride-lang/stride/internal/backend/interp"
	"github.com/stride-lang/stride/internal/scope"
	"github.com/stride-lang/stride/internal/token"
	"github.com/stride-lang/stride/internal/types"
)

func (d *driver) emitExpr(e ast.Expr) (interp.Value, error) {
	switch n := e.(type) {
	case *ast.IntLit:
		return d.b.ConstInt(n.Value, intLitType(n)), nil
	case *ast.LongLit:
		return d.b.ConstInt(n.Value, types.Primitive{Kind: types.I64}), nil
	case *ast.FloatLit:
		return d.b.ConstFloat(float64(n.Value), types.Primitive{Kind: types.F32}), nil
	case *ast.DoubleLit:
		return d.b.ConstFloat(n.Value, types.Primitive{Kind: types.F64}), nil
	case *ast.CharLit:
		return d.b.ConstInt(int64(n.Value), types.Primitive{Kind: types.Char}), nil
	case *ast.BoolLit:
		return d.b.ConstBool(n.Value), nil
	case *ast.StringLit:
		return d.b.ConstString(n.Value), nil
	case *ast.NilLit:
		return d.b.ConstNil(), nil
	case *ast.Identifier:
		return d.emitIdentifier(n)
	case *ast.BinaryArith:
		return d.emitBinaryArith(n)
	case *ast.ComparisonOp:
		return d.emitComparison(n)
	case *ast.LogicalOp:
		return d.emitLogical(n)
	case *ast.ArrayInitializer:
		return d.emitArrayInitializer(n)
	case *ast.ArrayMemberAccessor:
		return d.emitArrayAccess(n)
	case *ast.FunctionInvocation:
		return d.emitInvocation(n)
	case *ast.LambdaExpression:
		return d.emitLambda(n)
	case *ast.VariadicArgReference:
		return d.emitVariadicRef(n)
	default:
		return nil, semErr(e, "expression cannot be lowered")
	}
}

// emitIdentifier resolves a name reference: the current function's local
// symbol table first (stack slots load, arguments are used directly),
// then enum members, then module functions.
func (d *driver) emitIdentifier(id *ast.Identifier) (interp.Value, error) {
	if len(id.Qualifier) == 0 {
		if fe, ok := id.Registry().FieldLookup(id.Name); ok {
			if lv, ok := d.locals[fe.Internal]; ok {
				if lv.slot {
					return d.b.Load(lv.value), nil
				}
				return lv.value, nil
			}
		}
	}

	for _, cand := range d.qualifiedCandidates(id.Registry(), id.Qualifier, id.Name) {
		if v, ok := d.enumValues[cand]; ok {
			return d.b.ConstInt(v, types.Primitive{Kind: types.I32}), nil
		}
		if fn, ok := d.mod.LookupFunction(cand); ok {
			return d.b.FuncRef(fn.Name, functionType(fn)), nil
		}
	}

	return nil, semErr(id, "Unresolved identifier '%s'", displayName(id.Qualifier, id.Name))
}

func (d *driver) emitBinaryArith(n *ast.BinaryArith) (interp.Value, error) {
	left, err := d.emitExpr(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := d.emitExpr(n.Right)
	if err != nil {
		return nil, err
	}
	v, err := d.b.BinArith(n.Op, left, right, d.exprType(n.Left))
	if err != nil {
		return nil, semErr(n, "%s", err.Error())
	}
	return v, nil
}

// emitComparison dispatches on operand type: if either side is
// floating-point, the ordered float comparison family is used, otherwise
// signed integer comparisons.
func (d *driver) emitComparison(n *ast.ComparisonOp) (interp.Value, error) {
	left, err := d.emitExpr(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := d.emitExpr(n.Right)
	if err != nil {
		return nil, err
	}
	float := isFloat(d.exprType(n.Left)) || isFloat(d.exprType(n.Right))
	v, err := d.b.Compare(n.Op, left, right, float)
	if err != nil {
		return nil, semErr(n, "%s", err.Error())
	}
	return v, nil
}

// emitLogical lowers `&&` and `||` through three basic blocks: evaluate
// the left operand, branch so the right operand is only evaluated when it
// can still affect the result, and merge through a two-incoming phi whose
// skip path carries the short-circuit constant.
func (d *driver) emitLogical(n *ast.LogicalOp) (interp.Value, error) {
	left, err := d.emitExpr(n.Left)
	if err != nil {
		return nil, err
	}
	leftCond := d.coerceToBool(left)
	start := d.b.InsertPoint()

	evalRight := d.b.NewBlock("logic.rhs")
	merge := d.b.NewBlock("logic.end")

	shortValue := false
	if n.Op == token.DOUBLE_AMPERSAND {
		// false && _ skips straight to the merge carrying false.
		d.b.CondBr(leftCond, evalRight, merge)
	} else {
		// true || _ skips straight to the merge carrying true.
		shortValue = true
		d.b.CondBr(leftCond, merge, evalRight)
	}

	d.b.SetInsertPoint(evalRight)
	right, err := d.emitExpr(n.Right)
	if err != nil {
		return nil, err
	}
	rightCond := d.coerceToBool(right)
	rightEnd := d.b.InsertPoint()
	d.b.Br(merge)

	d.b.SetInsertPoint(merge)
	skip := d.b.ConstBool(shortValue)
	return d.b.Phi(types.Primitive{Kind: types.Bool}, map[*interp.BasicBlock]interp.Value{
		start:    skip,
		rightEnd: rightCond,
	}), nil
}

// coerceToBool adapts a logical operand to boolean: booleans pass
// through, integers compare against zero, floats compare against 0.0
// with unordered-not-equal, anything else is left unchanged.
func (d *driver) coerceToBool(v interp.Value) interp.Value {
	p, ok := v.Typ.(types.Primitive)
	if !ok {
		return v
	}
	switch {
	case p.Kind == types.Bool:
		return v
	case p.IsInteger():
		zero := d.b.ConstInt(0, p)
		cond, _ := d.b.Compare(token.BANG_EQUALS, v, zero, false)
		return cond
	case p.IsFloat():
		zero := d.b.ConstFloat(0, p)
		return d.b.FCmpUNE(v, zero)
	default:
		return v
	}
}

// emitArrayInitializer allocates a contiguous region sized from the
// element count and evaluates elements left-to-right, storing each in
// order.
func (d *driver) emitArrayInitializer(n *ast.ArrayInitializer) (interp.Value, error) {
	elemType := types.Type(types.Primitive{Kind: types.I32})
	if len(n.Elements) > 0 {
		elemType = d.exprType(n.Elements[0])
	}
	arr := d.b.ArrayAlloca(elemType, len(n.Elements))
	for i, el := range n.Elements {
		v, err := d.emitExpr(el)
		if err != nil {
			return nil, err
		}
		idx := d.b.ConstInt(int64(i), types.Primitive{Kind: types.I64})
		d.b.Store(d.b.IndexAddr(arr, idx, elemType), v)
	}
	return arr, nil
}

// emitArrayAccess checks that the index is integer-typed and the base
// array-typed, then computes the element address and loads through it.
func (d *driver) emitArrayAccess(n *ast.ArrayMemberAccessor) (interp.Value, error) {
	if p, ok := d.exprType(n.Index).(types.Primitive); !ok || !p.IsInteger() {
		return nil, semErr(n, "array index must be an integer, got %s", d.exprType(n.Index).String())
	}
	arrType, ok := d.exprType(n.Array).(types.Array)
	if !ok {
		return nil, semErr(n, "cannot index a value of non-array type %s", d.exprType(n.Array).String())
	}

	base, err := d.emitExpr(n.Array)
	if err != nil {
		return nil, err
	}
	index, err := d.emitExpr(n.Index)
	if err != nil {
		return nil, err
	}
	return d.b.Load(d.b.IndexAddr(base, index, arrType.Element)), nil
}

// emitInvocation lowers a call site: it composes the candidate mangled
// name from the argument expression types, looks that up in the backend
// module, falls back to the unmangled source name (extern resolution),
// and raises SemanticError when neither exists.
func (d *driver) emitInvocation(n *ast.FunctionInvocation) (interp.Value, error) {
	argTypes := make([]types.Type, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = d.exprType(a)
	}

	var callee *interp.Function
	var mangled, plain string
	for _, base := range d.qualifiedCandidates(n.Registry(), n.Qualifier, n.Name) {
		candidate := scope.ResolveInternalFunctionName(argTypes, base, false)
		if fn, ok := d.mod.LookupFunction(candidate); ok {
			callee, mangled, plain = fn, candidate, base
			break
		}
		if fn, ok := d.mod.LookupFunction(base); ok {
			callee, mangled, plain = fn, base, base
			break
		}
	}
	if callee == nil {
		return nil, semErr(n, "Function '%s' not found in this scope", displayName(n.Qualifier, n.Name))
	}

	if !callee.Variadic && len(n.Args) != len(callee.Params) {
		return nil, semErr(n, "'%s' expects %d argument(s), got %d",
			displayName(n.Qualifier, n.Name), len(callee.Params), len(n.Args))
	}
	if callee.Variadic && len(n.Args) < len(callee.Params) {
		return nil, semErr(n, "'%s' expects at least %d argument(s), got %d",
			displayName(n.Qualifier, n.Name), len(callee.Params), len(n.Args))
	}

	args := make([]interp.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := d.emitExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	v, err := d.b.Call(mangled, plain, args)
	if err != nil {
		return nil, semErr(n, "%s", err.Error())
	}
	return v, nil
}

// emitLambda declares and defines the lambda's synthesized function on
// the spot (it cannot be forward-referenced: the expression is its only
// handle), then yields a reference to it.
func (d *driver) emitLambda(n *ast.LambdaExpression) (interp.Value, error) {
	if err := d.declareFunction(n.Decl); err != nil {
		return nil, err
	}
	if err := d.emitFunction(n.Decl); err != nil {
		return nil, err
	}
	fn, _ := d.mod.LookupFunction(n.Decl.Internal)
	return d.b.FuncRef(fn.Name, functionType(fn)), nil
}

// emitVariadicRef lowers the bare `...` expression: legal only inside a
// variadic function body, where it yields the platform's variable-argument
// list handle via the start-intrinsic. The handle is never released here;
// whatever consumes it downstream owns that.
func (d *driver) emitVariadicRef(n *ast.VariadicArgReference) (interp.Value, error) {
	if d.current == nil || !d.current.IsVariadic() {
		return nil, semErr(n, "'...' is only legal inside a variadic function body")
	}
	return d.b.VAStart(), nil
}

// exprType statically infers an expression's type without emitting any
// IR. Call-site mangling folds the argument expression types, so the
// rules here must agree with how declarations record their parameter
// types.
func (d *driver) exprType(e ast.Expr) types.Type {
	switch n := e.(type) {
	case *ast.IntLit:
		return intLitType(n)
	case *ast.LongLit:
		return types.Primitive{Kind: types.I64}
	case *ast.FloatLit:
		return types.Primitive{Kind: types.F32}
	case *ast.DoubleLit:
		return types.Primitive{Kind: types.F64}
	case *ast.CharLit:
		return types.Primitive{Kind: types.Char}
	case *ast.BoolLit:
		return types.Primitive{Kind: types.Bool}
	case *ast.StringLit, *ast.NilLit, *ast.VariadicArgReference:
		return types.Primitive{Kind: types.Ptr}
	case *ast.Identifier:
		if len(n.Qualifier) == 0 {
			if fe, ok := n.Registry().FieldLookup(n.Name); ok {
				return fe.Type
			}
		}
		for _, cand := range d.qualifiedCandidates(n.Registry(), n.Qualifier, n.Name) {
			if _, ok := d.enumValues[cand]; ok {
				return types.Primitive{Kind: types.I32}
			}
			if fn, ok := d.mod.LookupFunction(cand); ok {
				return functionType(fn)
			}
		}
		return types.Primitive{Kind: types.I32}
	case *ast.BinaryArith:
		return d.exprType(n.Left)
	case *ast.ComparisonOp, *ast.LogicalOp:
		return types.Primitive{Kind: types.Bool}
	case *ast.ArrayInitializer:
		elem := types.Type(types.Primitive{Kind: types.I32})
		if len(n.Elements) > 0 {
			elem = d.exprType(n.Elements[0])
		}
		return types.Array{Element: elem, Rank: len(n.Elements)}
	case *ast.ArrayMemberAccessor:
		if arr, ok := d.exprType(n.Array).(types.Array); ok {
			return arr.Element
		}
		return types.Primitive{Kind: types.I32}
	case *ast.FunctionInvocation:
		argTypes := make([]types.Type, len(n.Args))
		for i, a := range n.Args {
			argTypes[i] = d.exprType(a)
		}
		for _, base := range d.qualifiedCandidates(n.Registry(), n.Qualifier, n.Name) {
			if fn, ok := d.mod.LookupFunction(scope.ResolveInternalFunctionName(argTypes, base, false)); ok {
				return fn.ReturnType
			}
			if fn, ok := d.mod.LookupFunction(base); ok {
				return fn.ReturnType
			}
		}
		return types.Primitive{Kind: types.I32}
	case *ast.LambdaExpression:
		return types.Function{Params: n.Decl.ParamTypes(), Return: n.Decl.ReturnType}
	default:
		return types.Primitive{Kind: types.I32}
	}
}

// intLitType maps an IntLit's inferred bit width and signedness to its
// primitive type.
func intLitType(n *ast.IntLit) types.Primitive {
	switch {
	case n.Signed && n.BitWidth == 8:
		return types.Primitive{Kind: types.I8}
	case n.Signed && n.BitWidth == 16:
		return types.Primitive{Kind: types.I16}
	case n.Signed && n.BitWidth == 64:
		return types.Primitive{Kind: types.I64}
	case !n.Signed && n.BitWidth == 8:
		return types.Primitive{Kind: types.U8}
	case !n.Signed && n.BitWidth == 16:
		return types.Primitive{Kind: types.U16}
	case !n.Signed && n.BitWidth == 64:
		return types.Primitive{Kind: types.U64}
	case !n.Signed:
		return types.Primitive{Kind: types.U32}
	default:
		return types.Primitive{Kind: types.I32}
	}
}

func functionType(fn *interp.Function) types.Function {
	params := make([]types.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Type
	}
	return types.Function{Params: params, Return: fn.ReturnType}
}

func isFloat(t types.Type) bool {
	p, ok := t.(types.Primitive)
	return ok && p.IsFloat()
}

func displayName(qualifier []string, name string) string {
	if len(qualifier) == 0 {
		return name
	}
	return strings.Join(qualifier, "::") + "::" + name
}
