package sema

import (
	"github.com/gmofishsauce/emberc/internal/ast"
	"github.com/gmofishsauce/emberc/internal/diag"
	"github.com/gmofishsauce/emberc/internal/types"
)

// Analyzer runs the three-pass semantic analysis the teacher's
// sem/analyzer.go does in two (scope-build-and-typecheck); this repo
// splits out an explicit middle pass because struct/function
// declarations in this language can reference each other regardless of
// declaration order, so every top-level signature needs to be resolved
// before any function body is type-checked.
type Analyzer struct {
	file   *ast.File
	sink   *diag.Sink
	global *Scope

	// structDecls maps a struct name to its declaration, consulted during
	// Pass 2 to elaborate field types and during Pass 3 to type-check
	// struct literals.
	structDecls map[string]*ast.StructDecl
	structTypes map[string]*types.Type

	// loopStack tracks the value type of every loop expression currently
	// being type-checked, so "break <expr>" can unify with sibling
	// breaks and "continue"/"break" outside any loop can be rejected.
	loopStack []*loopCtx

	// fn holds the declared return type of the function body Pass 3 is
	// currently walking, consulted by "return" expressions.
	fn *fnContext
}

type loopCtx struct {
	breakType  *types.Type
	sawBreak   bool
	isBareLoop bool // loop{} (vs while/for, whose value is always unit)
}

// New returns an Analyzer ready to run over file.
func New(file *ast.File, sink *diag.Sink) *Analyzer {
	return &Analyzer{
		file:        file,
		sink:        sink,
		global:      NewScope(nil),
		structDecls: make(map[string]*ast.StructDecl),
		structTypes: make(map[string]*types.Type),
	}
}

// Run executes all three passes in order, stopping after Pass 1 if it
// found a fatal structural problem (a duplicate top-level name), since
// elaborating and type-checking against an incomplete symbol set
// produces confusing cascades rather than useful diagnostics.
func (a *Analyzer) Run() {
	if !a.passOneScopeBuild() {
		return
	}
	a.passTwoSignatures()
	a.passThreeTypeExpressions()
}

// passOneScopeBuild registers every top-level item's name in the global
// scope and returns false if a duplicate top-level name makes further
// analysis unreliable.
func (a *Analyzer) passOneScopeBuild() bool {
	ok := true
	for _, item := range a.file.Items {
		switch it := item.(type) {
		case *ast.Function:
			sym := &Symbol{Kind: SymFunc, Name: it.Name}
			if !a.global.Define(sym) {
				a.sink.Report(diag.Semantic, it.Pos, "function %q redefines an existing name", it.Name)
				ok = false
			}
		case *ast.StructDecl:
			if _, dup := a.structDecls[it.Name]; dup {
				a.sink.Report(diag.Semantic, it.Pos, "struct %q redefines an existing name", it.Name)
				ok = false
				continue
			}
			a.structDecls[it.Name] = it
			sym := &Symbol{Kind: SymStruct, Name: it.Name}
			if !a.global.Define(sym) {
				a.sink.Report(diag.Semantic, it.Pos, "struct %q redefines an existing name", it.Name)
				ok = false
			}
		case *ast.ConstItem:
			sym := &Symbol{Kind: SymConst, Name: it.Name}
			if !a.global.Define(sym) {
				a.sink.Report(diag.Semantic, it.Pos, "const %q redefines an existing name", it.Name)
				ok = false
			}
		}
	}
	return ok
}

// resolveType turns a TypeNode written in source into a semantic
// *types.Type, consulting built-ins first and then struct declarations,
// per the type-resolution order this language uses (no shadowing of
// built-in scalar names is possible since they are reserved).
func (a *Analyzer) resolveType(tn ast.TypeNode) *types.Type {
	if tn == nil {
		return types.Unit()
	}
	switch t := tn.(type) {
	case *ast.IdentifierType:
		if bt := types.LookupBuiltin(t.Name); bt != nil {
			return bt
		}
		if st, ok := a.structTypes[t.Name]; ok {
			return st
		}
		if decl, ok := a.structDecls[t.Name]; ok {
			return a.elaborateStruct(decl)
		}
		a.sink.Report(diag.Semantic, t.Pos, "unknown type %q", t.Name)
		return nil
	case *ast.TupleType:
		if len(t.Elems) == 0 {
			return types.Unit()
		}
		elems := make([]*types.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = a.resolveType(e)
		}
		return &types.Type{Kind: types.Tuple, Elems: elems}
	case *ast.ReferenceType:
		return &types.Type{Kind: types.Reference, Mutable: t.Mutable, Pointee: a.resolveType(t.Inner)}
	case *ast.ArrayType:
		// Arrays reuse the Tuple shape as a single-element marker
		// (Elems[0] is the element type); the declared length is a
		// codegen-time concern (how many slots to reserve), not part of
		// type equality, so it is not carried on types.Type itself.
		elem := a.resolveType(t.Elem)
		return &types.Type{Kind: types.Tuple, Elems: []*types.Type{elem}}
	default:
		return nil
	}
}

// elaborateStruct resolves decl's field/element types once, caching the
// result so repeated references to the same struct name share one Type.
func (a *Analyzer) elaborateStruct(decl *ast.StructDecl) *types.Type {
	if st, ok := a.structTypes[decl.Name]; ok {
		return st
	}
	st := &types.Type{StructName: decl.Name}
	a.structTypes[decl.Name] = st // pre-register to break recursive references
	switch decl.Shape {
	case ast.NamedStruct:
		st.Kind = types.Struct
		st.Fields = make([]types.Field, len(decl.Fields))
		for i, f := range decl.Fields {
			st.Fields[i] = types.Field{Name: f.Name, Type: a.resolveType(f.Type)}
		}
	case ast.TupleStructShape:
		st.Kind = types.TupleStruct
		st.TupleElems = make([]*types.Type, len(decl.TupleTypes))
		for i, ft := range decl.TupleTypes {
			st.TupleElems[i] = a.resolveType(ft)
		}
	default: // UnitStruct
		st.Kind = types.TupleStruct
	}
	return st
}

// passTwoSignatures elaborates every function signature, struct
// definition and const type annotation into concrete *types.Type values,
// attached to their Pass 1 symbols.
func (a *Analyzer) passTwoSignatures() {
	for _, item := range a.file.Items {
		switch it := item.(type) {
		case *ast.Function:
			sym, _ := a.global.LookupLocal(it.Name)
			params := make([]*types.Type, len(it.Params))
			for i, p := range it.Params {
				params[i] = a.resolveType(p.Type)
			}
			sym.Params = params
			sym.Returns = a.resolveType(it.ReturnType)
			sym.Type = &types.Type{Kind: types.Func, Params: params, Returns: sym.Returns}
		case *ast.StructDecl:
			a.elaborateStruct(it)
		case *ast.ConstItem:
			sym, _ := a.global.LookupLocal(it.Name)
			sym.Type = a.resolveType(it.Type)
		}
	}
}
