package interp

import (
	"fmt"

	"github.com/stride-lang/stride/internal/types"
)

// scalar is the runtime representation the interpreter actually computes
// with: every constant/arithmetic/comparison result boils down to one of
// these Go primitives, tagged by the Instr's static Typ when it matters
// (signed vs. unsigned shifts, float vs. int comparison).
type scalar = any

// slot is the backing storage an Alloca/ArrayAlloca produces; Load/Store
// read and write through it, and IndexAddr returns a slot view into an
// array's backing elements.
type slot struct {
	value    scalar
	elements []slot // non-nil for array-backed slots
}

// frame is one function activation: computed instruction results, keyed
// by instruction identity since the same *Instr is shared across
// recursive/concurrent activations, plus slot storage for every Alloca in
// this call and this call's variadic overflow arguments.
type frame struct {
	values   map[*Instr]scalar
	variadic []scalar
}

// Interpret runs fn with the given argument values and returns its return
// value (nil for a void function), walking basic blocks until a Ret or
// RetVoid terminator fires.
func Interpret(mod *Module, fn *Function, args []scalar) (scalar, error) {
	if fn.Extern {
		return nil, fmt.Errorf("backend: external function %q has no interpretable body", fn.Name)
	}
	entry := fn.EntryBlock()
	if entry == nil {
		return nil, fmt.Errorf("backend: function %q was declared but never defined", fn.Name)
	}

	fr := &frame{values: make(map[*Instr]scalar)}
	for i, pv := range fn.ParamValues {
		if i < len(args) {
			fr.values[pv] = args[i]
		}
	}
	if fn.Variadic && len(args) > len(fn.Params) {
		fr.variadic = args[len(fn.Params):]
	}

	block, prev := entry, (*BasicBlock)(nil)
	for {
		for _, instr := range block.Instrs {
			if instr.Op == OpPhi {
				incoming := instr.Imm.(map[*BasicBlock]Value)
				fr.values[instr] = fr.values[incoming[prev]]
				continue
			}
			v, err := evalInstr(mod, fr, instr)
			if err != nil {
				return nil, err
			}
			fr.values[instr] = v
		}

		switch block.Term.Op {
		case OpRet:
			return fr.values[block.Term.Args[0]], nil
		case OpRetVoid:
			return nil, nil
		case OpBr:
			prev, block = block, block.Term.Imm.(*BasicBlock)
		case OpCondBr:
			cond := fr.values[block.Term.Args[0]].(bool)
			targets := block.Term.Imm.([2]*BasicBlock)
			prev = block
			if cond {
				block = targets[0]
			} else {
				block = targets[1]
			}
		default:
			return nil, fmt.Errorf("backend: block %q has no terminator", block.Label)
		}
	}
}

// RunMain verifies mod and interprets its "main" function with no
// arguments, returning main's integer return value as a process exit code
// (0 for a void-returning main). A missing main is reported here at run
// time rather than at Verify: only JIT execution ever looks it up.
func RunMain(mod *Module) (int, error) {
	if err := mod.Verify(); err != nil {
		return 1, err
	}
	main, ok := mod.LookupFunction("main")
	if !ok {
		return 1, fmt.Errorf("backend: module has no \"main\" function")
	}
	result, err := Interpret(mod, main, nil)
	if err != nil {
		return 1, err
	}
	if result == nil {
		return 0, nil
	}
	return int(toInt(result)), nil
}

func evalInstr(mod *Module, fr *frame, instr *Instr) (scalar, error) {
	switch instr.Op {
	case OpConstInt:
		return instr.Imm.(int64), nil
	case OpConstFloat:
		return instr.Imm.(float64), nil
	case OpConstBool:
		return instr.Imm.(bool), nil
	case OpConstString:
		return instr.Imm.(string), nil
	case OpConstNil:
		return nil, nil
	case OpParam:
		return fr.values[instr], nil
	case OpAlloca:
		return &slot{}, nil
	case OpArrayAlloca:
		count := instr.Imm.(int)
		return &slot{elements: make([]slot, count)}, nil
	case OpLoad:
		ptr := fr.values[instr.Args[0]].(*slot)
		return ptr.value, nil
	case OpStore:
		ptr := fr.values[instr.Args[0]].(*slot)
		ptr.value = fr.values[instr.Args[1]]
		return nil, nil
	case OpIndexAddr:
		base := fr.values[instr.Args[0]].(*slot)
		idx := toInt(fr.values[instr.Args[1]])
		if idx < 0 || int(idx) >= len(base.elements) {
			return nil, fmt.Errorf("backend: array index %d out of bounds (len %d)", idx, len(base.elements))
		}
		return &base.elements[idx], nil
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return evalArith(instr, fr)
	case OpICmpEQ, OpICmpNE, OpICmpSLT, OpICmpSLE, OpICmpSGT, OpICmpSGE:
		return evalICmp(instr, fr)
	case OpFCmpOEQ, OpFCmpONE, OpFCmpOLT, OpFCmpOLE, OpFCmpOGT, OpFCmpOGE:
		return evalFCmp(instr, fr)
	case OpFCmpUNE:
		// Go's != on floats is already unordered-not-equal: NaN != x is true.
		l, r := toFloat(fr.values[instr.Args[0]]), toFloat(fr.values[instr.Args[1]])
		return l != r, nil
	case OpFuncRef:
		return instr.Imm.(string), nil
	case OpVAStart:
		return fr.variadic, nil
	case OpCall:
		callee, ok := mod.LookupFunction(instr.Imm.(string))
		if !ok {
			return nil, fmt.Errorf("backend: call to undeclared function %q", instr.Imm.(string))
		}
		args := make([]scalar, len(instr.Args))
		for i, a := range instr.Args {
			args[i] = fr.values[a]
		}
		return Interpret(mod, callee, args)
	default:
		return nil, fmt.Errorf("backend: unsupported instruction op %d", instr.Op)
	}
}

func evalArith(instr *Instr, fr *frame) (scalar, error) {
	l, r := fr.values[instr.Args[0]], fr.values[instr.Args[1]]
	if isFloatType(instr.Typ) {
		lf, rf := toFloat(l), toFloat(r)
		switch instr.Op {
		case OpAdd:
			return lf + rf, nil
		case OpSub:
			return lf - rf, nil
		case OpMul:
			return lf * rf, nil
		case OpDiv:
			return lf / rf, nil
		default:
			return nil, fmt.Errorf("backend: modulo is not defined for floating-point operands")
		}
	}
	li, ri := toInt(l), toInt(r)
	switch instr.Op {
	case OpAdd:
		return li + ri, nil
	case OpSub:
		return li - ri, nil
	case OpMul:
		return li * ri, nil
	case OpDiv:
		if ri == 0 {
			return nil, fmt.Errorf("backend: integer division by zero")
		}
		return li / ri, nil
	case OpMod:
		if ri == 0 {
			return nil, fmt.Errorf("backend: integer division by zero")
		}
		return li % ri, nil
	}
	return nil, fmt.Errorf("backend: unsupported arithmetic op")
}

func evalICmp(instr *Instr, fr *frame) (scalar, error) {
	l, r := toInt(fr.values[instr.Args[0]]), toInt(fr.values[instr.Args[1]])
	switch instr.Op {
	case OpICmpEQ:
		return l == r, nil
	case OpICmpNE:
		return l != r, nil
	case OpICmpSLT:
		return l < r, nil
	case OpICmpSLE:
		return l <= r, nil
	case OpICmpSGT:
		return l > r, nil
	case OpICmpSGE:
		return l >= r, nil
	}
	return nil, fmt.Errorf("backend: unsupported integer comparison")
}

func evalFCmp(instr *Instr, fr *frame) (scalar, error) {
	l, r := toFloat(fr.values[instr.Args[0]]), toFloat(fr.values[instr.Args[1]])
	switch instr.Op {
	case OpFCmpOEQ:
		return l == r, nil
	case OpFCmpONE:
		return l != r, nil
	case OpFCmpOLT:
		return l < r, nil
	case OpFCmpOLE:
		return l <= r, nil
	case OpFCmpOGT:
		return l > r, nil
	case OpFCmpOGE:
		return l >= r, nil
	}
	return nil, fmt.Errorf("backend: unsupported float comparison")
}

func isFloatType(t types.Type) bool {
	p, ok := t.(types.Primitive)
	return ok && p.IsFloat()
}

func toInt(v scalar) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func toFloat(v scalar) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}
