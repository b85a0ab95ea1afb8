package wasmgen

import (
	"github.com/gmofishsauce/emberc/internal/ast"
	"github.com/gmofishsauce/emberc/internal/diag"
	"github.com/gmofishsauce/emberc/internal/types"
)

// binding is one slot-worthy name: a parameter or a (supported) let
// binding, in the order the allocator first sees it.
type binding struct {
	name string
	vt   ValType
	let  *ast.LetStmt // nil for a parameter
}

// localEnv is a chain of name→slot maps mirroring the lexical block
// nesting the analyzer walked, rebuilt independently here rather than
// consulting sema's Scope objects, so code generation never mutates
// analyzer-owned state.
type localEnv struct {
	parent *localEnv
	slots  map[string]uint32
}

func newLocalEnv(parent *localEnv) *localEnv {
	return &localEnv{parent: parent, slots: make(map[string]uint32)}
}

func (e *localEnv) lookup(name string) (uint32, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if idx, ok := cur.slots[name]; ok {
			return idx, true
		}
	}
	return 0, false
}

// loopFrame records the branch depths a break/continue inside this loop
// must target, per the relative-depth scheme: depth = openCount at the
// branch site minus the count recorded when the target construct opened.
type loopFrame struct {
	blockLevel int
	loopLevel  int
	resultVT   ValType
	hasResult  bool
}

// funcGen holds the per-function state threaded through generation:
// branch-depth bookkeeping and the function's own local environment.
type funcGen struct {
	g         *Generator
	env       *localEnv
	openCount int
	loops     []loopFrame
	returnVT  ValType
	hasReturn bool
	failed    bool
	slotOfLet map[*ast.LetStmt]uint32
}

// generateFunction resolves fn's signature and lowers its body,
// returning both the FuncType for the Type/Function sections and the
// CodeEntry for the Code section — kept together so a signature that
// this generator cannot express still yields a syntactically valid
// (if unreachable) function, keeping every index-based cross-reference
// among Types/Funcs/Code/Exports consistent.
func (g *Generator) generateFunction(fn *ast.Function) (FuncType, CodeEntry) {
	fg := &funcGen{g: g}

	paramVTs := make([]ValType, len(fn.Params))
	var bindings []binding
	for i, p := range fn.Params {
		vt, ok := g.resolveParamType(p.Type, "parameter "+p.Name)
		if !ok {
			return FuncType{}, fg.abortBody()
		}
		paramVTs[i] = vt
		bindings = append(bindings, binding{name: p.Name, vt: vt})
	}
	ft := FuncType{Params: paramVTs}
	if fn.ReturnType != nil {
		vt, ok := g.resolveParamType(fn.ReturnType, "return type of "+fn.Name)
		if !ok {
			return FuncType{}, fg.abortBody()
		}
		fg.returnVT = vt
		fg.hasReturn = true
		ft.Results = []ValType{vt}
	}

	letBindings, ok := fg.collectLets(fn.Body)
	if !ok {
		return ft, fg.abortBody()
	}
	bindings = append(bindings, letBindings...)

	slotOf := make(map[string]uint32) // param name -> slot (stable, no shadowing at top level)
	slotOfLet := make(map[*ast.LetStmt]uint32)
	locals := groupByType(bindings, uint32(len(fn.Params)), slotOf, slotOfLet)

	fg.env = newLocalEnv(nil)
	e := NewEmitter()
	for i, p := range fn.Params {
		e.LocalGet(uint32(i))
		e.LocalSet(slotOf[p.Name])
		fg.env.slots[p.Name] = slotOf[p.Name]
	}
	fg.slotOfLet = slotOfLet
	fg.emitBlockBody(e, fn.Body)
	e.End()

	return ft, CodeEntry{Locals: locals, Body: e.Bytes()}
}

// abortBody is used when a function signature or body contains a
// construct this generator cannot lower; the function still needs a
// syntactically valid body so later function/export indices stay
// consistent, so it becomes a single unreachable instruction.
func (fg *funcGen) abortBody() CodeEntry {
	e := NewEmitter()
	e.Unreachable()
	e.End()
	return CodeEntry{Body: e.Bytes()}
}

func groupByType(bindings []binding, paramCount uint32, slotOf map[string]uint32, slotOfLet map[*ast.LetStmt]uint32) []LocalGroup {
	order := []ValType{ValI32, ValI64, ValF32, ValF64}
	next := paramCount
	var groups []LocalGroup
	for _, vt := range order {
		count := uint32(0)
		for _, b := range bindings {
			if b.vt != vt {
				continue
			}
			slot := next + count
			if b.let != nil {
				slotOfLet[b.let] = slot
			} else {
				slotOf[b.name] = slot
			}
			count++
		}
		if count > 0 {
			groups = append(groups, LocalGroup{Count: count, Type: vt})
			next += count
		}
	}
	return groups
}

// collectLets walks fn.Body in source order gathering every Let binding
// this generator can lower (single-name IdentPattern bindings of a
// scalar type); anything else — a destructuring pattern, a struct- or
// tuple-typed binding — is a code-gen error, since this generator never
// models memory-backed aggregates.
func (fg *funcGen) collectLets(body *ast.BlockExpr) ([]binding, bool) {
	var out []binding
	ok := fg.walkLets(body, &out)
	return out, ok
}

func (fg *funcGen) walkLets(e ast.Expr, out *[]binding) bool {
	if e == nil {
		return true
	}
	switch n := e.(type) {
	case *ast.BlockExpr:
		for _, stmt := range n.Stmts {
			if ls, ok := stmt.(*ast.LetStmt); ok {
				if !fg.collectOneLet(ls, out) {
					return false
				}
			}
			if es, ok := stmt.(*ast.ExprStmt); ok {
				if !fg.walkLets(es.Expr, out) {
					return false
				}
			}
		}
		return fg.walkLets(n.Tail, out)
	case *ast.IfExpr:
		if !fg.walkLets(n.Cond, out) || !fg.walkLets(n.Then, out) {
			return false
		}
		return fg.walkLets(n.Else, out)
	case *ast.WhileExpr:
		return fg.walkLets(n.Cond, out) && fg.walkLets(n.Body, out)
	case *ast.LoopExpr:
		return fg.walkLets(n.Body, out)
	case *ast.UnaryExpr:
		return fg.walkLets(n.Operand, out)
	case *ast.BinaryExpr:
		return fg.walkLets(n.Left, out) && fg.walkLets(n.Right, out)
	case *ast.CallExpr:
		for _, a := range n.Args {
			if !fg.walkLets(a, out) {
				return false
			}
		}
		return true
	case *ast.ParenExpr:
		return fg.walkLets(n.Inner, out)
	case *ast.CastExpr:
		return fg.walkLets(n.Operand, out)
	case *ast.ReturnExpr:
		return fg.walkLets(n.Value, out)
	case *ast.BreakExpr:
		return fg.walkLets(n.Value, out)
	default:
		// Identifier, Literal and ContinueExpr carry no Let statements of
		// their own. Field/Index/Tuple/Array/Struct/For bodies might, but
		// those constructs are rejected wholesale at emission time, so
		// skipping their subtrees here costs nothing.
		return true
	}
}

func (fg *funcGen) collectOneLet(ls *ast.LetStmt, out *[]binding) bool {
	ident, ok := ls.Pattern.(*ast.IdentPattern)
	if !ok {
		if _, wild := ls.Pattern.(*ast.WildcardPattern); wild {
			return true
		}
		fg.g.sink.Report(diag.Codegen, ls.Pos, "destructuring let bindings are not supported by the code generator")
		return false
	}
	vt, ok := fg.letValType(ls)
	if !ok {
		return false
	}
	*out = append(*out, binding{name: ident.Name, vt: vt, let: ls})
	return true
}

func (fg *funcGen) letValType(ls *ast.LetStmt) (ValType, bool) {
	var ty *types.Type
	if ls.Value != nil {
		ty, _ = ls.Value.GetType().(*types.Type)
	} else if ls.Type != nil {
		vt, ok := fg.g.resolveParamType(ls.Type, "let binding")
		return vt, ok
	}
	vt, ok := valTypeOf(ty)
	if !ok {
		fg.g.sink.Report(diag.Codegen, ls.Pos, "let binding has a type the code generator cannot place in a local")
		return 0, false
	}
	return vt, true
}
