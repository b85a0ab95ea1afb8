package wasmgen

import (
	"github.com/gmofishsauce/emberc/internal/ast"
	"github.com/gmofishsauce/emberc/internal/diag"
	"github.com/gmofishsauce/emberc/internal/iet"
	"github.com/gmofishsauce/emberc/internal/types"
)

// Generator lowers an analyzed *ast.File into a *Module, post-order per
// function: every expression emits the instructions that produce its
// value, and parents compose their children's bytes in evaluation order.
type Generator struct {
	sink   *diag.Sink
	table  *iet.Table
	module *Module

	// funcIdx maps every callable name (an import's associate name, or a
	// locally-defined function's own name) to its absolute function
	// index — imports occupy 0..I-1, locals follow in declaration order.
	funcIdx map[string]uint32

	consts map[string]*ast.ConstItem
}

// Generate runs the whole lowering pipeline and returns the assembled
// module. Errors (unmatched exports, unsupported constructs) are
// reported to sink rather than returned, per this repo's collect-don't-
// abort diagnostic policy; callers should check sink before writing the
// result to disk.
func Generate(file *ast.File, table *iet.Table, sink *diag.Sink) *Module {
	g := &Generator{
		sink:    sink,
		table:   table,
		module:  &Module{},
		funcIdx: make(map[string]uint32),
		consts:  make(map[string]*ast.ConstItem),
	}
	g.bindImports()
	funcs := g.collectFunctions(file)
	g.bindConsts(file)
	g.bindExports(funcs)
	for _, fn := range funcs {
		ft, code := g.generateFunction(fn)
		idx := uint32(len(g.module.Types))
		g.module.Types = append(g.module.Types, ft)
		g.module.Funcs = append(g.module.Funcs, idx)
		g.module.Code = append(g.module.Code, code)
	}
	return g.module
}

func (g *Generator) bindImports() {
	for _, im := range g.table.Imports {
		ft, ok := g.resolveSig(im.Type.Params, im.Type.Return, im.Field)
		if !ok {
			continue
		}
		idx := uint32(len(g.module.Types))
		g.module.Types = append(g.module.Types, ft)
		g.module.Imports = append(g.module.Imports, ImportEntry{Module: im.Module, Field: im.Field, TypeIdx: idx})
		g.funcIdx[im.Associate] = idx
	}
}

func (g *Generator) collectFunctions(file *ast.File) []*ast.Function {
	var funcs []*ast.Function
	base := uint32(len(g.table.Imports))
	for _, item := range file.Items {
		if fn, ok := item.(*ast.Function); ok {
			g.funcIdx[fn.Name] = base + uint32(len(funcs))
			funcs = append(funcs, fn)
		}
	}
	return funcs
}

func (g *Generator) bindConsts(file *ast.File) {
	for _, item := range file.Items {
		if c, ok := item.(*ast.ConstItem); ok {
			g.consts[c.Name] = c
		}
	}
}

func (g *Generator) bindExports(funcs []*ast.Function) {
	byName := make(map[string]*ast.Function, len(funcs))
	for _, fn := range funcs {
		byName[fn.Name] = fn
	}
	for _, ex := range g.table.Exports {
		fn, ok := byName[ex.Associate]
		if !ok {
			g.sink.ReportFile(diag.Codegen, "export %q: no locally-defined function named %q", ex.Field, ex.Associate)
			continue
		}
		g.module.Exports = append(g.module.Exports, ExportEntry{Name: ex.Field, Index: g.funcIdx[fn.Name]})
	}
}

// resolveSig turns an IET signature's tag list into a FuncType, using
// label only to make diagnostics legible.
func (g *Generator) resolveSig(paramTags, returnTags []string, label string) (FuncType, bool) {
	ft := FuncType{}
	for _, p := range paramTags {
		vt, ok := tagToValType(p)
		if !ok {
			g.sink.ReportFile(diag.Codegen, "%s: type tag %q has no wasm value representation", label, p)
			return FuncType{}, false
		}
		ft.Params = append(ft.Params, vt)
	}
	for _, r := range returnTags {
		if r == "void" {
			continue
		}
		vt, ok := tagToValType(r)
		if !ok {
			g.sink.ReportFile(diag.Codegen, "%s: type tag %q has no wasm value representation", label, r)
			return FuncType{}, false
		}
		ft.Results = append(ft.Results, vt)
	}
	return ft, true
}

func tagToValType(tag string) (ValType, bool) {
	switch tag {
	case "bool", "char", "i8", "i16", "i32", "u8", "u16", "u32":
		return ValI32, true
	case "i64", "u64":
		return ValI64, true
	case "f32":
		return ValF32, true
	case "f64":
		return ValF64, true
	default:
		return 0, false
	}
}

// resolveParamType resolves a function parameter or return TypeNode to
// a wasm value type; this generator only supports scalar-valued
// signatures, matching the spec's own acknowledgment that unlowered
// struct/tuple constructs are a code-gen error, not a crash.
func (g *Generator) resolveParamType(tn ast.TypeNode, context string) (ValType, bool) {
	it, ok := tn.(*ast.IdentifierType)
	if !ok {
		g.sink.Report(diag.Codegen, tn.Position(), "%s: only scalar types are supported by the code generator", context)
		return 0, false
	}
	bt := types.LookupBuiltin(it.Name)
	if bt == nil {
		g.sink.Report(diag.Codegen, tn.Position(), "%s: struct types are not supported by the code generator", context)
		return 0, false
	}
	vt, ok := valTypeOf(bt)
	if !ok {
		g.sink.Report(diag.Codegen, tn.Position(), "%s: unsupported scalar type %q", context, it.Name)
		return 0, false
	}
	return vt, true
}
