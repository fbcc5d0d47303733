// Package lowering implements the two-pass AST lowering driver: a declare
// pass that registers every declaration's signature into the backend
// module so forward references resolve, then an emit pass that walks the
// tree in order and writes IR through the backend builder. Both passes
// live on one driver because they share all their state: the backend
// module, the enum-member value table, and the per-function locals.
package lowering

import (
	"strings"

	"github.com/stride-lang/stride/internal/ast"
	"github.com/stride-lang/stride/internal/backend/interp"
	"github.com/stride-lang/stride/internal/diag"
	"github.com/stride-lang/stride/internal/scope"
	"github.com/stride-lang/stride/internal/types"
)

// local is one entry of a function's runtime symbol table: the backend
// value plus whether it is a stack slot (loads required) or a direct
// value (function arguments are used as-is).
type local struct {
	value interp.Value
	slot  bool
}

// driver carries the state shared by both lowering passes.
type driver struct {
	mod *interp.Module
	b   *interp.Builder

	// enumValues maps an enum member's internal name to its declared
	// value, filled by the declare pass so member references lower to
	// integer constants before the member's body position is reached.
	enumValues map[string]int64

	// imports maps a name brought in by a global `use` declaration to its
	// fully qualified internal base, e.g. Foo -> a__b__Foo for
	// `use a::b::{Foo};`. Only these names may resolve across a MODULE
	// boundary.
	imports map[string]string

	locals  map[string]local
	current *ast.FunctionDeclaration // function whose body is being emitted
}

// Lower runs both passes over the root block, writing into mod. mod is
// externally owned: the driver writes declarations and bodies into it but
// never deletes from it.
//
// A file whose root block contains executable statements (variable
// declarations, expression statements, returns) and no explicit `main` is
// treated as a script: the driver synthesizes a `main` around those
// statements so JIT mode has an entry point. Mixing top-level executable
// statements with an explicit `main` is a SemanticError: there would be
// two competing entry points.
func Lower(root *ast.Block, mod *interp.Module) error {
	d := &driver{
		mod:        mod,
		b:          interp.NewBuilder(mod),
		enumValues: make(map[string]int64),
		imports:    make(map[string]string),
	}

	if err := d.declareStmts(root.Stmts); err != nil {
		return err
	}

	script := firstExecutable(root.Stmts)
	if script != nil {
		if _, hasMain := mod.LookupFunction("main"); hasMain {
			return semErr(script, "top-level statements are not allowed alongside an explicit 'main' function")
		}
		mod.DeclareFunction("main", nil, types.Primitive{Kind: types.Void}, false, false)
		if _, err := d.b.DefineFunction("main"); err != nil {
			return backendErr(root, err)
		}
		d.locals = make(map[string]local)
		if err := d.emitStmts(root.Stmts); err != nil {
			return err
		}
		if d.b.InsertPoint().Term == nil {
			d.b.RetVoid()
		}
		return nil
	}

	return d.emitStmts(root.Stmts)
}

// firstExecutable returns the first root statement that needs a function
// to execute in, or nil if the file only holds declarations.
func firstExecutable(stmts []ast.Stmt) ast.Stmt {
	for _, s := range stmts {
		switch s.(type) {
		case *ast.FunctionDeclaration, *ast.Module, *ast.Enumerable, *ast.Struct, *ast.Import:
			continue
		default:
			return s
		}
	}
	return nil
}

// declareStmts is pass 1, forward-reference resolution: register every
// declaration signature so later call sites and type references resolve
// regardless of source order.
func (d *driver) declareStmts(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := d.declareStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (d *driver) declareStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.FunctionDeclaration:
		return d.declareFunction(n)
	case *ast.Module:
		for _, decl := range n.Body {
			if ds, ok := decl.(ast.Stmt); ok {
				if err := d.declareStmt(ds); err != nil {
					return err
				}
			}
		}
	case *ast.Enumerable:
		for _, m := range n.Members {
			d.enumValues[m.Registry().ResolveInternalName(m.Name)] = m.Value
		}
	case *ast.Struct:
		// Struct fields and aliases are recorded in the scope at parse
		// time; nothing reaches the backend.
	case *ast.Import:
		return d.declareImport(n)
	case *ast.Block:
		return d.declareStmts(n.Stmts)
	}
	return nil
}

// declareImport resolves a global `use` declaration and records the names
// it brings into scope. Imports are the one place resolution is allowed
// to go straight to the root scope.
func (d *driver) declareImport(imp *ast.Import) error {
	segs := strings.Split(imp.ModuleBase, scope.SegmentDelimiter)
	entry, ok := imp.Registry().GlobalSymbolLookup(segs[0])
	if !ok || entry.Kind != scope.MODULE_SYM {
		return semErr(imp, "unknown module '%s' in use declaration", segs[0])
	}
	for _, sub := range imp.Submodules {
		d.imports[sub] = imp.ModuleBase + scope.SegmentDelimiter + sub
	}
	return nil
}

func (d *driver) declareFunction(fn *ast.FunctionDeclaration) error {
	params := make([]interp.Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = interp.Param{Name: p.Internal, Type: p.DeclaredType}
	}
	d.mod.DeclareFunction(fn.Internal, params, fn.ReturnType, fn.IsVariadic(), fn.IsExtern)
	if fn.Body != nil {
		// Nested declarations (functions inside functions, lambdas are
		// handled at emission) must also be visible forward.
		return d.declareStmts(fn.Body.Stmts)
	}
	return nil
}

// emitStmts is pass 2 over one statement sequence: children are walked in
// order, and any child after a terminated point is skipped, except
// function declarations, which define their own fresh block and are
// always visited.
func (d *driver) emitStmts(stmts []ast.Stmt) error {
	terminated := false
	for _, s := range stmts {
		if terminated {
			if fn, ok := s.(*ast.FunctionDeclaration); ok {
				if err := d.emitFunction(fn); err != nil {
					return err
				}
			}
			continue
		}
		if err := d.emitStmt(s); err != nil {
			return err
		}
		if ast.IsTerminator(s) {
			terminated = true
		}
	}
	return nil
}

func (d *driver) emitStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.FunctionDeclaration:
		return d.emitFunction(n)
	case *ast.Module:
		for _, decl := range n.Body {
			if ds, ok := decl.(ast.Stmt); ok {
				if err := d.emitStmt(ds); err != nil {
					return err
				}
			}
		}
		return nil
	case *ast.Enumerable, *ast.Struct, *ast.Import:
		// Fully handled by the declare pass; nothing executes.
		return nil
	case *ast.VariableDeclaration:
		return d.emitVariableDeclaration(n)
	case *ast.Return:
		return d.emitReturn(n)
	case *ast.Block:
		return d.emitStmts(n.Stmts)
	case *ast.ExpressionStatement:
		_, err := d.emitExpr(n.Expr)
		return err
	default:
		return semErr(s, "statement cannot be lowered")
	}
}

// emitFunction defines the body of a previously declared function. The
// builder's position is saved and restored around the definition so a
// function declared mid-block (or a lambda) does not derail the enclosing
// body's emission.
func (d *driver) emitFunction(fn *ast.FunctionDeclaration) error {
	if fn.IsExtern {
		return nil // signature only; the body lives outside this module
	}

	savedFn, savedAt := d.b.CurrentFunction(), d.b.InsertPoint()
	savedLocals, savedCurrent := d.locals, d.current
	defer func() {
		d.b.SetCurrent(savedFn, savedAt)
		d.locals, d.current = savedLocals, savedCurrent
	}()

	if _, err := d.b.DefineFunction(fn.Internal); err != nil {
		return backendErr(fn, err)
	}
	d.locals = make(map[string]local)
	d.current = fn
	for i, p := range fn.Params {
		d.locals[p.Internal] = local{value: d.b.Param(i)}
	}

	if fn.Body != nil {
		if err := d.emitStmts(fn.Body.Stmts); err != nil {
			return err
		}
	}
	if d.b.InsertPoint().Term == nil {
		d.b.RetVoid()
	}
	return nil
}

// emitVariableDeclaration allocates the variable's stack slot at the
// enclosing function's entry block (the builder guarantees this) so the
// slot dominates every use, then stores the initializer at the current
// insertion point.
func (d *driver) emitVariableDeclaration(v *ast.VariableDeclaration) error {
	if d.b.CurrentFunction() == nil {
		return semErr(v, "variable declaration outside a function body")
	}
	slot := d.b.Alloca(v.Internal, v.DeclaredType)
	d.locals[v.Internal] = local{value: slot, slot: true}
	if v.Init != nil {
		init, err := d.emitExpr(v.Init)
		if err != nil {
			return err
		}
		d.b.Store(slot, init)
	}
	return nil
}

func (d *driver) emitReturn(r *ast.Return) error {
	if r.Value == nil {
		d.b.RetVoid()
		return nil
	}
	v, err := d.emitExpr(r.Value)
	if err != nil {
		return err
	}
	d.b.Ret(v)
	return nil
}

// qualifiedCandidates lists the internal names a (qualifier, name)
// reference may resolve to. Resolution is lexical: inside a module the
// reference is prefixed with the scope's qualified prefix (an unqualified
// reference inside `module a` sees a__x), and the bare form is only
// consulted at global scope, where a call site `a::b::g` composes
// a__b__g directly. A name whose leading segment was brought in by a
// global `use` resolves through that import's target; nothing else
// crosses a MODULE boundary upward.
func (d *driver) qualifiedCandidates(reg *scope.Scope, qualifier []string, name string) []string {
	segs := append(append([]string{}, qualifier...), name)
	base := scope.ResolveInternalName(segs)

	var cands []string
	if prefix := reg.Prefix(); prefix != "" {
		cands = append(cands, prefix+scope.SegmentDelimiter+base)
	} else {
		cands = append(cands, base)
	}
	if target, ok := d.imports[segs[0]]; ok {
		cands = append(cands, scope.ResolveInternalName(append([]string{target}, segs[1:]...)))
	}
	return cands
}

func semErr(n ast.Node, format string, args ...any) error {
	return diag.New(diag.SemanticError, n.File(), n.Pos(), format, args...)
}

func backendErr(n ast.Node, err error) error {
	return diag.New(diag.BackendError, n.File(), n.Pos(), "%s", err.Error())
}
