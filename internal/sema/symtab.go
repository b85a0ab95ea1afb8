// Package sema resolves an *ast.File into typed symbols: a parent-linked
// scope chain (generalizing the teacher's flat global-plus-per-function
// symbol tables into real nested lexical scoping) and a three-pass
// Analyzer that builds scopes, elaborates signatures, then type-checks
// every expression.
package sema

import "github.com/gmofishsauce/emberc/internal/types"

// SymbolKind tags what a Symbol names.
type SymbolKind int

const (
	SymFunc SymbolKind = iota
	SymStruct
	SymConst
	SymParam
	SymLet
)

// Symbol is one name bound in a Scope.
type Symbol struct {
	Kind SymbolKind
	Name string
	Type *types.Type

	// Params/Returns are populated for SymFunc only.
	Params  []*types.Type
	Returns *types.Type
}

// Scope is one lexical block: function bodies, if/while/for/loop bodies,
// and nested blocks each get their own Scope, parented to the scope they
// are lexically inside of. Lookup walks Parent chains until a match or
// the root, per the teacher's symtab invariant generalized to real
// nesting (the teacher's SymbolTable has exactly two levels: flat
// globals and a flat per-function scope; this one nests arbitrarily).
type Scope struct {
	Parent  *Scope
	symbols map[string]*Symbol
}

// NewScope returns an empty scope nested inside parent (nil for the
// root/global scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{Parent: parent, symbols: make(map[string]*Symbol)}
}

// Define adds sym to s, reporting false if the name is already bound
// directly in s (shadowing an outer scope's binding is allowed; redefining
// within the same scope is not).
func (s *Scope) Define(sym *Symbol) bool {
	if _, exists := s.symbols[sym.Name]; exists {
		return false
	}
	s.symbols[sym.Name] = sym
	return true
}

// Lookup walks s and its ancestors for name, returning the nearest match.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym, ok := sc.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupLocal looks up name only in s itself, not its ancestors.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}
