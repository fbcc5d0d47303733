package interp

import (
	"strings"
	"testing"

	"github.com/stride-lang/stride/internal/token"
	"github.com/stride-lang/stride/internal/types"
)

var i32 = types.Primitive{Kind: types.I32}

func TestInterpretConstantReturn(t *testing.T) {
	mod := NewModule()
	mod.DeclareFunction("main", nil, i32, false, false)

	b := NewBuilder(mod)
	if _, err := b.DefineFunction("main"); err != nil {
		t.Fatal(err)
	}
	b.Ret(b.ConstInt(7, i32))

	code, err := RunMain(mod)
	if err != nil {
		t.Fatalf("RunMain failed: %v", err)
	}
	if code != 7 {
		t.Fatalf("exit code = %d, want 7", code)
	}
}

func TestInterpretArithmeticAndCall(t *testing.T) {
	mod := NewModule()
	mod.DeclareFunction("double", []Param{{Name: "x", Type: i32}}, i32, false, false)
	mod.DeclareFunction("main", nil, i32, false, false)

	b := NewBuilder(mod)
	if _, err := b.DefineFunction("double"); err != nil {
		t.Fatal(err)
	}
	two := b.ConstInt(2, i32)
	prod, err := b.BinArith(token.STAR, b.Param(0), two, i32)
	if err != nil {
		t.Fatal(err)
	}
	b.Ret(prod)

	if _, err := b.DefineFunction("main"); err != nil {
		t.Fatal(err)
	}
	arg := b.ConstInt(21, i32)
	call, err := b.Call("double", "double", []Value{arg})
	if err != nil {
		t.Fatal(err)
	}
	b.Ret(call)

	code, err := RunMain(mod)
	if err != nil {
		t.Fatalf("RunMain failed: %v", err)
	}
	if code != 42 {
		t.Fatalf("exit code = %d, want 42", code)
	}
}

func TestInterpretBranchAndPhi(t *testing.T) {
	mod := NewModule()
	mod.DeclareFunction("main", nil, i32, false, false)

	b := NewBuilder(mod)
	if _, err := b.DefineFunction("main"); err != nil {
		t.Fatal(err)
	}

	thenB := b.NewBlock("then")
	elseB := b.NewBlock("else")
	merge := b.NewBlock("merge")

	b.CondBr(b.ConstBool(true), thenB, elseB)

	b.SetInsertPoint(thenB)
	one := b.ConstInt(1, i32)
	b.Br(merge)
	b.SetInsertPoint(elseB)
	two := b.ConstInt(2, i32)
	b.Br(merge)

	b.SetInsertPoint(merge)
	phi := b.Phi(i32, map[*BasicBlock]Value{thenB: one, elseB: two})
	b.Ret(phi)

	code, err := RunMain(mod)
	if err != nil {
		t.Fatalf("RunMain failed: %v", err)
	}
	if code != 1 {
		t.Fatalf("exit code = %d, want 1 (the then-path value)", code)
	}
}

func TestInterpretStackSlots(t *testing.T) {
	mod := NewModule()
	mod.DeclareFunction("main", nil, i32, false, false)

	b := NewBuilder(mod)
	if _, err := b.DefineFunction("main"); err != nil {
		t.Fatal(err)
	}
	slot := b.Alloca("x", i32)
	b.Store(slot, b.ConstInt(5, i32))
	b.Ret(b.Load(slot))

	code, err := RunMain(mod)
	if err != nil {
		t.Fatal(err)
	}
	if code != 5 {
		t.Fatalf("exit code = %d, want 5", code)
	}
}

func TestInterpretArraySlots(t *testing.T) {
	mod := NewModule()
	mod.DeclareFunction("main", nil, i32, false, false)

	b := NewBuilder(mod)
	if _, err := b.DefineFunction("main"); err != nil {
		t.Fatal(err)
	}
	arr := b.ArrayAlloca(i32, 2)
	b.Store(b.IndexAddr(arr, b.ConstInt(0, i32), i32), b.ConstInt(10, i32))
	b.Store(b.IndexAddr(arr, b.ConstInt(1, i32), i32), b.ConstInt(32, i32))
	a := b.Load(b.IndexAddr(arr, b.ConstInt(0, i32), i32))
	c := b.Load(b.IndexAddr(arr, b.ConstInt(1, i32), i32))
	sum, err := b.BinArith(token.PLUS, a, c, i32)
	if err != nil {
		t.Fatal(err)
	}
	b.Ret(sum)

	code, err := RunMain(mod)
	if err != nil {
		t.Fatal(err)
	}
	if code != 42 {
		t.Fatalf("exit code = %d, want 42", code)
	}
}

func TestIndexOutOfBounds(t *testing.T) {
	mod := NewModule()
	mod.DeclareFunction("main", nil, i32, false, false)

	b := NewBuilder(mod)
	if _, err := b.DefineFunction("main"); err != nil {
		t.Fatal(err)
	}
	arr := b.ArrayAlloca(i32, 1)
	b.Ret(b.Load(b.IndexAddr(arr, b.ConstInt(5, i32), i32)))

	_, err := RunMain(mod)
	if err == nil || !strings.Contains(err.Error(), "out of bounds") {
		t.Fatalf("expected an out-of-bounds error, got %v", err)
	}
}

func TestStringInterningByValue(t *testing.T) {
	mod := NewModule()
	first := mod.internString("hello")
	second := mod.internString("hello")
	other := mod.internString("world")

	if first != second {
		t.Fatalf("identical bytes interned as %q and %q", first, second)
	}
	if first == other {
		t.Fatal("distinct bytes share one global")
	}
}

func TestVerifyRejectsMissingTerminator(t *testing.T) {
	mod := NewModule()
	mod.DeclareFunction("main", nil, i32, false, false)

	b := NewBuilder(mod)
	if _, err := b.DefineFunction("main"); err != nil {
		t.Fatal(err)
	}
	b.ConstInt(1, i32) // no terminator

	err := mod.Verify()
	if err == nil || !strings.Contains(err.Error(), "missing terminator") {
		t.Fatalf("Verify = %v, want a missing-terminator error", err)
	}
}

func TestRunMainWithoutMain(t *testing.T) {
	mod := NewModule()
	_, err := RunMain(mod)
	if err == nil || !strings.Contains(err.Error(), "main") {
		t.Fatalf("RunMain on an empty module = %v, want a missing-main error", err)
	}
}

func TestVariadicOverflowArguments(t *testing.T) {
	mod := NewModule()
	mod.DeclareFunction("count", []Param{{Name: "first", Type: i32}}, i32, true, false)

	b := NewBuilder(mod)
	fn, err := b.DefineFunction("count")
	if err != nil {
		t.Fatal(err)
	}
	b.Ret(b.VAStart())

	got, err := Interpret(mod, fn, []scalar{int64(1), int64(2), int64(3)})
	if err != nil {
		t.Fatal(err)
	}
	overflow, ok := got.([]scalar)
	if !ok {
		t.Fatalf("VAStart handle = %T, want the overflow argument list", got)
	}
	if len(overflow) != 2 {
		t.Fatalf("overflow count = %d, want 2 (arguments beyond the declared parameters)", len(overflow))
	}
}
