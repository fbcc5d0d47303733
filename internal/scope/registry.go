// Package scope implements hierarchical name resolution: a tree of Scope
// records (the symbol registry), each owning a table of SymbolEntry and a
// table of FieldEntry, with module-qualified name mangling. Symbols and
// fields are tracked in separate tables, scopes carry a ScopeType and a
// qualified-name segment, and lookups can optionally cross module
// boundaries for import resolution.
package scope

import (
	"fmt"
	"strings"

	"github.com/stride-lang/stride/internal/types"
)

// ScopeType classifies what kind of lexical region a Scope represents.
type ScopeType int

const (
	GLOBAL ScopeType = iota
	MODULE
	BLOCK
	FUNCTION
)

func (t ScopeType) String() string {
	switch t {
	case GLOBAL:
		return "GLOBAL"
	case MODULE:
		return "MODULE"
	case BLOCK:
		return "BLOCK"
	case FUNCTION:
		return "FUNCTION"
	default:
		return "UNKNOWN"
	}
}

// SymbolKind is the closed set of things a SymbolEntry can name.
type SymbolKind int

const (
	ENUM SymbolKind = iota
	ENUM_MEMBER
	STRUCT
	FUNCTION_SYM
	MODULE_SYM
	VARIABLE
)

// SymbolEntry names a module-level declaration: its kind and its internal
// (mangled) name.
type SymbolEntry struct {
	Kind     SymbolKind
	Internal string
}

// FieldEntry names a variable or function parameter: its source name, its
// internal name, and a clone of its declared type.
type FieldEntry struct {
	Source   string
	Internal string
	Type     types.Type
}

// Scope is one node in the registry tree. The root (GLOBAL) scope has a nil
// parent and an empty qualified-name segment.
//
// Ownership: during compilation the parent always outlives its children, so
// the parent pointer here is a logical back-reference only; nothing in
// this package ever frees a Scope out from under a child that still
// references it.
type Scope struct {
	parent  *Scope
	kind    ScopeType
	segment string // this scope's own qualified-name segment, e.g. "b" in a__b
	prefix  string // full qualified prefix inherited by children, e.g. "a__b"

	symbols map[string]*SymbolEntry
	fields  map[string]*FieldEntry
}

// NewGlobal creates the root GLOBAL scope.
func NewGlobal() *Scope {
	return &Scope{
		kind:    GLOBAL,
		symbols: make(map[string]*SymbolEntry),
		fields:  make(map[string]*FieldEntry),
	}
}

// Kind returns the scope's ScopeType.
func (s *Scope) Kind() ScopeType { return s.kind }

// Parent returns the enclosing scope, or nil for GLOBAL.
func (s *Scope) Parent() *Scope { return s.parent }

// Prefix returns this scope's fully-qualified name prefix (segments joined
// by "__"), the empty string at global scope.
func (s *Scope) Prefix() string { return s.prefix }

// Derive creates a child scope of the given kind whose qualified prefix is
// (this scope's prefix ++ segment). An empty segment (e.g. for an anonymous
// BLOCK or FUNCTION scope) leaves the child's prefix equal to the parent's.
func (s *Scope) Derive(kind ScopeType, segment string) *Scope {
	prefix := s.prefix
	if segment != "" {
		if prefix != "" {
			prefix = prefix + SegmentDelimiter + segment
		} else {
			prefix = segment
		}
	}
	return &Scope{
		parent:  s,
		kind:    kind,
		segment: segment,
		prefix:  prefix,
		symbols: make(map[string]*SymbolEntry),
		fields:  make(map[string]*FieldEntry),
	}
}

// SegmentDelimiter joins qualified-name segments.
const SegmentDelimiter = "__"

// DefineSymbol inserts a SymbolEntry for name in the current scope. Its
// internal name is ResolveInternalName of the path from global down to and
// including name. Re-definition of the same name within one scope is a
// semantic error (shadowing is forbidden within a single scope, not across
// nested scopes).
func (s *Scope) DefineSymbol(name string, kind SymbolKind) (*SymbolEntry, error) {
	if _, exists := s.symbols[name]; exists {
		return nil, fmt.Errorf("'%s' is already defined in this scope", name)
	}
	internal := s.ResolveInternalName(name)
	entry := &SymbolEntry{Kind: kind, Internal: internal}
	s.symbols[name] = entry
	return entry, nil
}

// DefineField inserts a FieldEntry for a variable or function parameter.
// Same shadowing rule as DefineSymbol.
func (s *Scope) DefineField(sourceName, referenceLexeme string, typ types.Type) (*FieldEntry, error) {
	if _, exists := s.fields[sourceName]; exists {
		return nil, fmt.Errorf("'%s' is already defined in this scope", sourceName)
	}
	internal := s.ResolveInternalName(sourceName)
	entry := &FieldEntry{Source: sourceName, Internal: internal, Type: typ}
	_ = referenceLexeme // retained for diagnostic call sites that want the token text
	s.fields[sourceName] = entry
	return entry, nil
}

// FieldLookup walks the parent chain looking for a FieldEntry named name.
func (s *Scope) FieldLookup(name string) (*FieldEntry, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if e, ok := cur.fields[name]; ok {
			return e, true
		}
	}
	return nil, false
}

// SymbolLookup walks the parent chain looking for a SymbolEntry named name.
// If filter is non-nil, only a match with that kind is returned.
func (s *Scope) SymbolLookup(name string, filter *SymbolKind) (*SymbolEntry, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if e, ok := cur.symbols[name]; ok {
			if filter == nil || e.Kind == *filter {
				return e, true
			}
		}
	}
	return nil, false
}

// GlobalSymbolLookup resolves name by walking up to the GLOBAL scope and
// then searching there directly, ignoring intervening MODULE boundaries.
// FieldLookup and SymbolLookup also walk through MODULE scopes; the rule
// that a reference inside a module does not reach global declarations is
// applied by the lowering driver's qualified-name resolution, which calls
// this global form only to validate `use` declarations.
func (s *Scope) GlobalSymbolLookup(name string) (*SymbolEntry, bool) {
	root := s
	for root.parent != nil {
		root = root.parent
	}
	e, ok := root.symbols[name]
	return e, ok
}

// ResolveInternalName joins the scope's qualified prefix with name using
// SegmentDelimiter.
func (s *Scope) ResolveInternalName(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + SegmentDelimiter + name
}

// ResolveInternalName joins arbitrary segments by SegmentDelimiter.
func ResolveInternalName(segments []string) string {
	return strings.Join(segments, SegmentDelimiter)
}
