package ast

import (
	"github.com/stride-lang/stride/internal/scope"
	"github.com/stride-lang/stride/internal/source"
	"github.com/stride-lang/stride/internal/types"
)

// FunctionParameter is one declared parameter of a FunctionDeclaration.
// Variadic marks the trailing `...name: T` form (must be the last
// parameter, enforced by the parser, not here).
type FunctionParameter struct {
	base
	Name         string
	Internal     string
	DeclaredType types.Type
	Variadic     bool
	Mutable      bool
}

func NewFunctionParameter(file *source.File, pos source.Position, reg *scope.Scope, name, internal string, declaredType types.Type, variadic, mutable bool) *FunctionParameter {
	return &FunctionParameter{
		base:         newBase(file, pos, reg),
		Name:         name,
		Internal:     internal,
		DeclaredType: declaredType,
		Variadic:     variadic,
		Mutable:      mutable,
	}
}

func (*FunctionParameter) declNode() {}

// FunctionDeclaration is `fn name(params...) : Ret -> { body }`, or an
// extern declaration when Body is nil. Internal is the mangled name,
// equal to Name for "main" and for externs.
type FunctionDeclaration struct {
	base
	Name       string
	Internal   string
	Params     []*FunctionParameter
	ReturnType types.Type
	Body       *Block // nil for an external/foreign declaration
	IsExtern   bool
}

func NewFunctionDeclaration(file *source.File, pos source.Position, reg *scope.Scope, name, internal string, params []*FunctionParameter, returnType types.Type, body *Block, isExtern bool) *FunctionDeclaration {
	return &FunctionDeclaration{
		base:       newBase(file, pos, reg),
		Name:       name,
		Internal:   internal,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
		IsExtern:   isExtern,
	}
}

func (*FunctionDeclaration) declNode() {}

// FunctionDeclaration, Enumerable, Struct, Module, and Import also satisfy
// Stmt: the parser's sequential dispatch treats declarations and statements
// uniformly wherever a Block can appear, not only at file scope, so a
// Block's statement list is allowed to hold them directly.
func (*FunctionDeclaration) stmtNode() {}

// IsVariadic reports whether the declaration's last parameter is variadic.
func (f *FunctionDeclaration) IsVariadic() bool {
	if len(f.Params) == 0 {
		return false
	}
	return f.Params[len(f.Params)-1].Variadic
}

// ParamTypes returns the declared types of f's parameters, in order, for
// feeding into scope.ResolveInternalFunctionName.
func (f *FunctionDeclaration) ParamTypes() []types.Type {
	out := make([]types.Type, len(f.Params))
	for i, p := range f.Params {
		out[i] = p.DeclaredType
	}
	return out
}

// EnumerableMember is one `name: value,` entry of an Enumerable.
type EnumerableMember struct {
	base
	Name  string
	Value int64
}

func NewEnumerableMember(file *source.File, pos source.Position, reg *scope.Scope, name string, value int64) *EnumerableMember {
	return &EnumerableMember{base: newBase(file, pos, reg), Name: name, Value: value}
}

func (*EnumerableMember) declNode() {}

// Enumerable is `enum Name { member, ... }`. Members are defined into a
// BLOCK child scope of Name's declaring scope.
type Enumerable struct {
	base
	Name    string
	Members []*EnumerableMember
}

func NewEnumerable(file *source.File, pos source.Position, reg *scope.Scope, name string, members []*EnumerableMember) *Enumerable {
	return &Enumerable{base: newBase(file, pos, reg), Name: name, Members: members}
}

func (*Enumerable) declNode() {}
func (*Enumerable) stmtNode() {}

// StructMember is one `name: Type;` field of a Struct.
type StructMember struct {
	base
	Name         string
	DeclaredType types.Type
}

func NewStructMember(file *source.File, pos source.Position, reg *scope.Scope, name string, declaredType types.Type) *StructMember {
	return &StructMember{base: newBase(file, pos, reg), Name: name, DeclaredType: declaredType}
}

func (*StructMember) declNode() {}

// Struct is `struct Name { member; ... }`, or the alias form
// `struct Name = Other;` when Alias is non-empty (Members is then empty).
type Struct struct {
	base
	Name    string
	Alias   string
	Members []*StructMember
}

func NewStruct(file *source.File, pos source.Position, reg *scope.Scope, name, alias string, members []*StructMember) *Struct {
	return &Struct{base: newBase(file, pos, reg), Name: name, Alias: alias, Members: members}
}

func (*Struct) declNode() {}
func (*Struct) stmtNode() {}

// IsAlias reports whether this is the `struct Foo = Bar;` form.
func (s *Struct) IsAlias() bool { return s.Alias != "" }

// Module is `module Name { body }`. Nested modules extend the qualified
// name prefix (`A { module B { ... } }` → prefix `A__B`); every symbol
// defined inside Body inherits that prefix via Registry.
type Module struct {
	base
	Name string
	Body []Decl
}

func NewModule(file *source.File, pos source.Position, reg *scope.Scope, name string, body []Decl) *Module {
	return &Module{base: newBase(file, pos, reg), Name: name, Body: body}
}

func (*Module) declNode() {}
func (*Module) stmtNode() {}

// Import is `use a::b::{Foo, Bar};`, legal only at GLOBAL scope.
// ModuleBase is the `__`-joined qualifier (`a__b`); Submodules lists the
// braced names, which must be non-empty.
type Import struct {
	base
	ModuleBase string
	Submodules []string
}

func NewImport(file *source.File, pos source.Position, reg *scope.Scope, moduleBase string, submodules []string) *Import {
	return &Import{base: newBase(file, pos, reg), ModuleBase: moduleBase, Submodules: submodules}
}

func (*Import) declNode() {}
func (*Import) stmtNode() {}
