package interp

import (
	"fmt"

	"github.com/stride-lang/stride/internal/diag"
	"github.com/stride-lang/stride/internal/source"
	"github.com/stride-lang/stride/internal/token"
	"github.com/stride-lang/stride/internal/types"
)

// Builder is the backend-facing API the lowering driver emits
// instructions through, narrowed to this package's concrete IR instead of
// a generic interface since this is the only backend the compiler ships
// with.
type Builder struct {
	mod *Module
	fn  *Function
	at  *BasicBlock
}

// NewBuilder returns a Builder writing into mod.
func NewBuilder(mod *Module) *Builder { return &Builder{mod: mod} }

// Module returns the module this builder writes into.
func (b *Builder) Module() *Module { return b.mod }

// DefineFunction begins emitting the body of a previously declared
// function, creating its entry block and synthetic parameter values.
func (b *Builder) DefineFunction(name string) (*Function, error) {
	f, ok := b.mod.Functions[name]
	if !ok {
		return nil, fmt.Errorf("backend: function %q was never declared", name)
	}
	b.fn = f
	entry := &BasicBlock{Label: "entry"}
	f.Blocks = []*BasicBlock{entry}
	b.at = entry

	f.ParamValues = make([]Value, len(f.Params))
	for i, param := range f.Params {
		v := &Instr{Op: OpParam, Typ: param.Type, Imm: i}
		f.ParamValues[i] = v
	}
	return f, nil
}

// CurrentFunction returns the function currently being defined, if any.
func (b *Builder) CurrentFunction() *Function { return b.fn }

// NewBlock creates (but does not switch into) a new basic block in the
// current function.
func (b *Builder) NewBlock(label string) *BasicBlock {
	bb := &BasicBlock{Label: label}
	b.fn.Blocks = append(b.fn.Blocks, bb)
	return bb
}

// SetInsertPoint moves subsequent emission to bb.
func (b *Builder) SetInsertPoint(bb *BasicBlock) { b.at = bb }

// InsertPoint returns the block currently receiving instructions.
func (b *Builder) InsertPoint() *BasicBlock { return b.at }

// EntryBlock returns the current function's entry block.
func (b *Builder) EntryBlock() *BasicBlock { return b.fn.EntryBlock() }

func (b *Builder) emit(instr *Instr) Value {
	b.at.Instrs = append(b.at.Instrs, instr)
	return instr
}

// ConstInt builds an integer constant of bit width/signedness carried by t.
func (b *Builder) ConstInt(v int64, t types.Type) Value {
	return b.emit(&Instr{Op: OpConstInt, Typ: t, Imm: v})
}

// ConstFloat builds a floating-point constant (32 or 64 bit, per t).
func (b *Builder) ConstFloat(v float64, t types.Type) Value {
	return b.emit(&Instr{Op: OpConstFloat, Typ: t, Imm: v})
}

// ConstBool builds a boolean constant.
func (b *Builder) ConstBool(v bool) Value {
	return b.emit(&Instr{Op: OpConstBool, Typ: types.Primitive{Kind: types.Bool}, Imm: v})
}

// ConstString interns s in the module and returns a handle to it.
func (b *Builder) ConstString(s string) Value {
	label := b.mod.internString(s)
	return b.emit(&Instr{Op: OpConstString, Typ: types.Primitive{Kind: types.Ptr}, Imm: label})
}

// ConstNil builds the nil pointer constant.
func (b *Builder) ConstNil() Value {
	return b.emit(&Instr{Op: OpConstNil, Typ: types.Primitive{Kind: types.Ptr}})
}

// Param returns the i'th parameter value of the function currently being
// defined.
func (b *Builder) Param(i int) Value { return b.fn.ParamValues[i] }

// Alloca reserves a stack slot in the entry block of the enclosing
// function regardless of the current insertion point, so the slot
// dominates every use no matter where the declaration sits.
func (b *Builder) Alloca(name string, t types.Type) Value {
	instr := &Instr{Op: OpAlloca, Typ: t, Imm: name}
	entry := b.fn.EntryBlock()
	entry.Instrs = append(entry.Instrs, instr)
	return instr
}

// ArrayAlloca reserves storage for a fixed-size array literal, placed at
// the current insertion point (array literals are evaluated where they
// appear, unlike named variable slots).
func (b *Builder) ArrayAlloca(elem types.Type, count int) Value {
	return b.emit(&Instr{Op: OpArrayAlloca, Typ: types.Array{Element: elem, Rank: count}, Imm: count})
}

// Load reads the value currently stored at ptr.
func (b *Builder) Load(ptr Value) Value {
	return b.emit(&Instr{Op: OpLoad, Typ: ptr.Typ, Args: []Value{ptr}})
}

// Store writes v to ptr.
func (b *Builder) Store(ptr, v Value) {
	b.emit(&Instr{Op: OpStore, Args: []Value{ptr, v}})
}

// IndexAddr computes the address of base[index] for an element of type
// elemType.
func (b *Builder) IndexAddr(base, index Value, elemType types.Type) Value {
	return b.emit(&Instr{Op: OpIndexAddr, Typ: elemType, Args: []Value{base, index}})
}

// BinArith emits an arithmetic instruction for op (+, -, *, /, %).
func (b *Builder) BinArith(op token.Type, l, r Value, resultType types.Type) (Value, error) {
	var code Op
	switch op {
	case token.PLUS:
		code = OpAdd
	case token.DASH:
		code = OpSub
	case token.STAR:
		code = OpMul
	case token.SLASH:
		code = OpDiv
	case token.PERCENT:
		code = OpMod
	default:
		return nil, fmt.Errorf("backend: %s is not an arithmetic operator", op)
	}
	return b.emit(&Instr{Op: code, Typ: resultType, Args: []Value{l, r}}), nil
}

// Compare emits a float or integer comparison; the caller chooses the
// family based on the operands' types.
func (b *Builder) Compare(op token.Type, l, r Value, float bool) (Value, error) {
	var code Op
	if float {
		switch op {
		case token.DOUBLE_EQUALS:
			code = OpFCmpOEQ
		case token.BANG_EQUALS:
			code = OpFCmpONE
		case token.LANGLE:
			code = OpFCmpOLT
		case token.LEQUALS:
			code = OpFCmpOLE
		case token.RANGLE:
			code = OpFCmpOGT
		case token.GEQUALS:
			code = OpFCmpOGE
		default:
			return nil, fmt.Errorf("backend: %s is not a comparison operator", op)
		}
	} else {
		switch op {
		case token.DOUBLE_EQUALS:
			code = OpICmpEQ
		case token.BANG_EQUALS:
			code = OpICmpNE
		case token.LANGLE:
			code = OpICmpSLT
		case token.LEQUALS:
			code = OpICmpSLE
		case token.RANGLE:
			code = OpICmpSGT
		case token.GEQUALS:
			code = OpICmpSGE
		default:
			return nil, fmt.Errorf("backend: %s is not a comparison operator", op)
		}
	}
	return b.emit(&Instr{Op: code, Typ: types.Primitive{Kind: types.Bool}, Args: []Value{l, r}}), nil
}

// Br emits an unconditional branch, terminating the current block.
func (b *Builder) Br(target *BasicBlock) {
	b.at.Term = &Instr{Op: OpBr, Imm: target}
}

// CondBr emits a conditional branch, terminating the current block. This
// is how short-circuit logical operators are lowered: evaluate left,
// conditionally evaluate right, merge via phi.
func (b *Builder) CondBr(cond Value, then, els *BasicBlock) {
	b.at.Term = &Instr{Op: OpCondBr, Args: []Value{cond}, Imm: [2]*BasicBlock{then, els}}
}

// Phi emits a phi node selecting among incoming values by predecessor
// block.
func (b *Builder) Phi(t types.Type, incoming map[*BasicBlock]Value) Value {
	return b.emit(&Instr{Op: OpPhi, Typ: t, Imm: incoming})
}

// Call emits a call, resolving the mangled name first and falling back to
// the unmangled source name so extern calls bind without knowing the
// mangling scheme.
func (b *Builder) Call(mangled, plain string, args []Value) (Value, error) {
	fn, ok := b.mod.LookupFunction(mangled)
	if !ok {
		fn, ok = b.mod.LookupFunction(plain)
	}
	if !ok {
		return nil, fmt.Errorf("backend: call to undeclared function %q", plain)
	}
	if !fn.Variadic && len(args) != len(fn.Params) {
		return nil, fmt.Errorf("backend: %s expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
	}
	if fn.Variadic && len(args) < len(fn.Params) {
		return nil, fmt.Errorf("backend: %s expects at least %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
	}
	argVals := append([]Value{}, args...)
	return b.emit(&Instr{Op: OpCall, Typ: fn.ReturnType, Args: argVals, Imm: fn.Name}), nil
}

// FCmpUNE emits an unordered-not-equal float comparison. Lowering uses it
// to coerce a floating-point operand of `&&`/`||` to boolean by comparing
// against 0.0, where NaN must coerce to true.
func (b *Builder) FCmpUNE(l, r Value) Value {
	return b.emit(&Instr{Op: OpFCmpUNE, Typ: types.Primitive{Kind: types.Bool}, Args: []Value{l, r}})
}

// FuncRef materializes a reference to a declared function as a first-class
// value (used when an identifier resolves to a function rather than a
// variable or argument).
func (b *Builder) FuncRef(name string, t types.Type) Value {
	return b.emit(&Instr{Op: OpFuncRef, Typ: t, Imm: name})
}

// SetCurrent re-targets the builder at a previously defined function and
// one of its blocks. Lowering uses this to save and restore its position
// around nested function definitions (lambdas, functions declared inside
// another function's body).
func (b *Builder) SetCurrent(f *Function, bb *BasicBlock) {
	b.fn = f
	b.at = bb
}

// VAStart emits the variadic start-intrinsic, legal only inside a
// variadic function body (callers check this before emitting).
func (b *Builder) VAStart() Value {
	return b.emit(&Instr{Op: OpVAStart, Typ: types.Primitive{Kind: types.Ptr}})
}

// Ret terminates the current block with a typed return.
func (b *Builder) Ret(v Value) {
	b.at.Term = &Instr{Op: OpRet, Args: []Value{v}}
}

// RetVoid terminates the current block with a void return.
func (b *Builder) RetVoid() {
	b.at.Term = &Instr{Op: OpRetVoid}
}

// ThrowBackendError wraps msg as a diag.BackendError with no source
// position, for defects only the backend itself can detect (arity
// mismatches, verification failures) rather than the parser/lowering
// passes.
func ThrowBackendError(msg string) error {
	return diag.New(diag.BackendError, nil, source.Position{}, "%s", msg)
}
