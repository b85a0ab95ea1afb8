package sema

import (
	"github.com/gmofishsauce/emberc/internal/ast"
	"github.com/gmofishsauce/emberc/internal/diag"
	"github.com/gmofishsauce/emberc/internal/token"
	"github.com/gmofishsauce/emberc/internal/types"
)

// fnContext is carried on the Analyzer (as a.fn) rather than threaded as a
// parameter through every typeExpr call, since this language has no
// nested function items — exactly one function body is ever being
// type-checked at a time.
type fnContext struct {
	returns *types.Type
}

func (a *Analyzer) passThreeTypeExpressions() {
	for _, item := range a.file.Items {
		switch it := item.(type) {
		case *ast.Function:
			a.checkFunction(it)
		case *ast.ConstItem:
			sym, _ := a.global.LookupLocal(it.Name)
			valType := a.typeExpr(it.Value, a.global)
			if sym.Type != nil && valType != nil && !sym.Type.Equal(valType) {
				a.sink.Report(diag.Semantic, it.Value.Position(),
					"const %q declared as %s but initializer has type %s", it.Name, sym.Type, valType)
			}
		}
	}
}

func (a *Analyzer) checkFunction(fn *ast.Function) {
	sym, _ := a.global.LookupLocal(fn.Name)
	scope := NewScope(a.global)
	for i, p := range fn.Params {
		scope.Define(&Symbol{Kind: SymParam, Name: p.Name, Type: sym.Params[i]})
	}
	saved := a.fn
	a.fn = &fnContext{returns: sym.Returns}
	bodyType := a.typeExpr(fn.Body, scope)
	if sym.Returns != nil && bodyType != nil && !sym.Returns.Equal(bodyType) {
		a.sink.Report(diag.Semantic, fn.Pos,
			"function %q declared to return %s but body evaluates to %s", fn.Name, sym.Returns, bodyType)
	}
	a.fn = saved
}

// typeExpr is the single dispatch point for Pass 3: every expression
// node is typed exactly once here, its resolved type (or nil, if a
// diagnostic was already reported for it) recorded via SetType, and its
// enclosing scope recorded via SetScope. The code generator does not read
// these scopes; it rebuilds its own name-to-local mapping.
func (a *Analyzer) typeExpr(e ast.Expr, scope *Scope) *types.Type {
	if e == nil {
		return types.Unit()
	}
	e.SetScope(scope)
	var t *types.Type
	switch n := e.(type) {
	case *ast.Identifier:
		t = a.typeIdentifier(n, scope)
	case *ast.Literal:
		t = a.typeLiteral(n)
	case *ast.UnaryExpr:
		t = a.typeUnary(n, scope)
	case *ast.BinaryExpr:
		t = a.typeBinary(n, scope)
	case *ast.CallExpr:
		t = a.typeCall(n, scope)
	case *ast.FieldAccessExpr:
		t = a.typeFieldAccess(n, scope)
	case *ast.IndexExpr:
		t = a.typeIndex(n, scope)
	case *ast.TupleExpr:
		if len(n.Elems) == 0 {
			t = types.Unit()
			break
		}
		elems := make([]*types.Type, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = a.typeExpr(el, scope)
		}
		t = &types.Type{Kind: types.Tuple, Elems: elems}
	case *ast.ArrayExpr:
		t = a.typeArray(n, scope)
	case *ast.StructExpr:
		t = a.typeStructExpr(n, scope)
	case *ast.BlockExpr:
		t = a.typeBlock(n, scope)
	case *ast.IfExpr:
		t = a.typeIf(n, scope)
	case *ast.WhileExpr:
		a.typeExpr(n.Cond, scope)
		a.pushLoop(false)
		a.typeExpr(n.Body, scope)
		a.popLoop()
		t = types.Unit()
	case *ast.ForExpr:
		t = a.typeFor(n, scope)
	case *ast.LoopExpr:
		t = a.typeLoop(n, scope)
	case *ast.BreakExpr:
		t = a.typeBreak(n, scope)
	case *ast.ContinueExpr:
		if len(a.loopStack) == 0 {
			a.sink.Report(diag.Semantic, n.Pos, "continue outside of a loop")
		}
		t = types.Unit()
	case *ast.ReturnExpr:
		t = a.typeReturn(n, scope)
	case *ast.CastExpr:
		t = a.typeCast(n, scope)
	case *ast.ParenExpr:
		t = a.typeExpr(n.Inner, scope)
	default:
		a.sink.Report(diag.Semantic, e.Position(), "internal: no type rule for expression node")
	}
	e.SetType(t)
	return t
}

func (a *Analyzer) typeIdentifier(n *ast.Identifier, scope *Scope) *types.Type {
	sym, ok := scope.Lookup(n.Name)
	if !ok {
		a.sink.Report(diag.Semantic, n.Pos, "undefined name %q", n.Name)
		return nil
	}
	return sym.Type
}

var scalarKindToTypeName = map[token.ScalarKind]string{
	token.ScalarBool: "bool", token.ScalarChar: "char",
	token.ScalarI8: "i8", token.ScalarI16: "i16", token.ScalarI32: "i32", token.ScalarI64: "i64",
	token.ScalarU8: "u8", token.ScalarU16: "u16", token.ScalarU32: "u32", token.ScalarU64: "u64",
	token.ScalarF32: "f32", token.ScalarF64: "f64",
	token.ScalarText: "str",
}

func (a *Analyzer) typeLiteral(n *ast.Literal) *types.Type {
	if n.Scalar == nil {
		return types.Unit()
	}
	if n.Scalar.Kind == token.ScalarBytes {
		return &types.Type{Kind: types.Tuple, Elems: []*types.Type{{Kind: types.Default, Name: "u8"}}}
	}
	name, ok := scalarKindToTypeName[n.Scalar.Kind]
	if !ok {
		a.sink.Report(diag.Semantic, n.Pos, "internal: unhandled literal scalar kind")
		return nil
	}
	return &types.Type{Kind: types.Default, Name: name}
}

func (a *Analyzer) typeUnary(n *ast.UnaryExpr, scope *Scope) *types.Type {
	operand := a.typeExpr(n.Operand, scope)
	switch n.Op {
	case ast.UnaryNeg:
		if operand != nil && !operand.IsInteger() && !operand.IsFloat() {
			a.sink.Report(diag.Semantic, n.Pos, "unary '-' requires a numeric operand, found %s", operand)
		}
		return operand
	case ast.UnaryNot:
		if operand != nil && !(operand.Kind == types.Default && operand.Name == "bool") {
			a.sink.Report(diag.Semantic, n.Pos, "unary '!' requires a bool operand, found %s", operand)
		}
		return operand
	case ast.UnaryRef:
		return &types.Type{Kind: types.Reference, Mutable: false, Pointee: operand}
	case ast.UnaryRefMut:
		return &types.Type{Kind: types.Reference, Mutable: true, Pointee: operand}
	case ast.UnaryDoubleRef:
		inner := &types.Type{Kind: types.Reference, Mutable: false, Pointee: operand}
		return &types.Type{Kind: types.Reference, Mutable: false, Pointee: inner}
	case ast.UnaryDoubleRefMut:
		inner := &types.Type{Kind: types.Reference, Mutable: true, Pointee: operand}
		return &types.Type{Kind: types.Reference, Mutable: false, Pointee: inner}
	default:
		return nil
	}
}

var compoundAssignBase = map[ast.BinaryOp]ast.BinaryOp{
	ast.BinAddAssign: ast.BinAdd, ast.BinSubAssign: ast.BinSub,
	ast.BinMulAssign: ast.BinMul, ast.BinDivAssign: ast.BinDiv,
	ast.BinModAssign: ast.BinMod, ast.BinAndAssign: ast.BinAnd,
	ast.BinOrAssign: ast.BinOr, ast.BinXorAssign: ast.BinXor,
	ast.BinShlAssign: ast.BinShl, ast.BinShrAssign: ast.BinShr,
}

func isBoolType(t *types.Type) bool {
	return t != nil && t.Kind == types.Default && t.Name == "bool"
}

func (a *Analyzer) typeBinary(n *ast.BinaryExpr, scope *Scope) *types.Type {
	left := a.typeExpr(n.Left, scope)
	right := a.typeExpr(n.Right, scope)

	switch n.Op {
	case ast.BinAssign:
		if left != nil && right != nil && !left.Equal(right) {
			a.sink.Report(diag.Semantic, n.Pos, "cannot assign %s to a place of type %s", right, left)
		}
		return types.Unit()
	case ast.BinLogAnd, ast.BinLogOr:
		if left != nil && !isBoolType(left) {
			a.sink.Report(diag.Semantic, n.Left.Position(), "expected bool, found %s", left)
		}
		if right != nil && !isBoolType(right) {
			a.sink.Report(diag.Semantic, n.Right.Position(), "expected bool, found %s", right)
		}
		return &types.Type{Kind: types.Default, Name: "bool"}
	case ast.BinEq, ast.BinNe, ast.BinLt, ast.BinGt, ast.BinLe, ast.BinGe:
		if left != nil && right != nil && !left.Equal(right) {
			a.sink.Report(diag.Semantic, n.Pos, "cannot compare %s with %s", left, right)
		}
		return &types.Type{Kind: types.Default, Name: "bool"}
	default:
		if _, isCompound := compoundAssignBase[n.Op]; isCompound {
			if left != nil && right != nil && !left.Equal(right) {
				a.sink.Report(diag.Semantic, n.Pos, "cannot apply compound assignment to %s with operand %s", left, right)
			}
			return types.Unit()
		}
		// Plain arithmetic/bitwise: Add, Sub, Mul, Div, Mod, And, Or, Xor, Shl, Shr.
		if left != nil && right != nil && !left.Equal(right) {
			a.sink.Report(diag.Semantic, n.Pos, "mismatched operand types %s and %s", left, right)
		}
		return left
	}
}

func (a *Analyzer) typeCall(n *ast.CallExpr, scope *Scope) *types.Type {
	ident, ok := n.Callee.(*ast.Identifier)
	if !ok {
		a.sink.Report(diag.Semantic, n.Pos, "call target must be a function name")
		for _, arg := range n.Args {
			a.typeExpr(arg, scope)
		}
		return nil
	}
	sym, found := scope.Lookup(ident.Name)
	if !found || sym.Kind != SymFunc {
		a.sink.Report(diag.Semantic, n.Pos, "%q is not a function", ident.Name)
		for _, arg := range n.Args {
			a.typeExpr(arg, scope)
		}
		return nil
	}
	ident.SetScope(scope)
	ident.SetType(sym.Type)
	if len(n.Args) != len(sym.Params) {
		a.sink.Report(diag.Semantic, n.Pos, "function %q expects %d argument(s), found %d",
			ident.Name, len(sym.Params), len(n.Args))
	}
	for i, arg := range n.Args {
		argType := a.typeExpr(arg, scope)
		if i < len(sym.Params) && argType != nil && sym.Params[i] != nil && !argType.Equal(sym.Params[i]) {
			a.sink.Report(diag.Semantic, arg.Position(),
				"argument %d to %q has type %s, expected %s", i+1, ident.Name, argType, sym.Params[i])
		}
	}
	return sym.Returns
}

func (a *Analyzer) typeFieldAccess(n *ast.FieldAccessExpr, scope *Scope) *types.Type {
	target := a.typeExpr(n.Target, scope)
	if target == nil {
		return nil
	}
	switch target.Kind {
	case types.Struct:
		for _, f := range target.Fields {
			if f.Name == n.Field {
				return f.Type
			}
		}
		a.sink.Report(diag.Semantic, n.Pos, "struct %q has no field %q", target.StructName, n.Field)
		return nil
	case types.TupleStruct:
		idx, ok := tupleIndex(n.Field)
		if !ok || idx < 0 || idx >= len(target.TupleElems) {
			a.sink.Report(diag.Semantic, n.Pos, "tuple struct %q has no element %q", target.StructName, n.Field)
			return nil
		}
		return target.TupleElems[idx]
	case types.Tuple:
		idx, ok := tupleIndex(n.Field)
		if !ok || idx < 0 || idx >= len(target.Elems) {
			a.sink.Report(diag.Semantic, n.Pos, "tuple has no element %q", n.Field)
			return nil
		}
		return target.Elems[idx]
	default:
		a.sink.Report(diag.Semantic, n.Pos, "%s has no field %q", target, n.Field)
		return nil
	}
}

func tupleIndex(field string) (int, bool) {
	if field == "" {
		return 0, false
	}
	n := 0
	for _, r := range field {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// typeIndex resolves Target[Index]. Arrays are represented as a
// single-element Tuple (see resolveType's ArrayType case); this is a
// simplification that cannot distinguish a true 1-element tuple from a
// 1-element-typed array, traded for not growing a dedicated Array Kind
// for this pass.
func (a *Analyzer) typeIndex(n *ast.IndexExpr, scope *Scope) *types.Type {
	target := a.typeExpr(n.Target, scope)
	idxType := a.typeExpr(n.Index, scope)
	if idxType != nil && !idxType.IsInteger() {
		a.sink.Report(diag.Semantic, n.Index.Position(), "array index must be an integer, found %s", idxType)
	}
	if target == nil || target.Kind != types.Tuple || len(target.Elems) == 0 {
		a.sink.Report(diag.Semantic, n.Pos, "%s cannot be indexed", target)
		return nil
	}
	return target.Elems[0]
}

func (a *Analyzer) typeArray(n *ast.ArrayExpr, scope *Scope) *types.Type {
	if n.Repeat != nil {
		elem := a.typeExpr(n.Repeat, scope)
		countType := a.typeExpr(n.Count, scope)
		if countType != nil && !countType.IsInteger() {
			a.sink.Report(diag.Semantic, n.Count.Position(), "array length must be an integer, found %s", countType)
		}
		return &types.Type{Kind: types.Tuple, Elems: []*types.Type{elem}}
	}
	if len(n.Elems) == 0 {
		return &types.Type{Kind: types.Tuple, Elems: []*types.Type{types.Unit()}}
	}
	first := a.typeExpr(n.Elems[0], scope)
	for _, el := range n.Elems[1:] {
		et := a.typeExpr(el, scope)
		if first != nil && et != nil && !first.Equal(et) {
			a.sink.Report(diag.Semantic, el.Position(), "array element has type %s, expected %s", et, first)
		}
	}
	return &types.Type{Kind: types.Tuple, Elems: []*types.Type{first}}
}

func (a *Analyzer) typeStructExpr(n *ast.StructExpr, scope *Scope) *types.Type {
	decl, ok := a.structDecls[n.Name]
	if !ok {
		a.sink.Report(diag.Semantic, n.Pos, "undefined struct %q", n.Name)
		for _, f := range n.Fields {
			a.typeExpr(f.Value, scope)
		}
		for _, e := range n.Elems {
			a.typeExpr(e, scope)
		}
		return nil
	}
	st := a.elaborateStruct(decl)
	if decl.Shape == ast.NamedStruct {
		seen := make(map[string]bool, len(n.Fields))
		for _, f := range n.Fields {
			valType := a.typeExpr(f.Value, scope)
			seen[f.Name] = true
			var declared *types.Type
			for _, sf := range st.Fields {
				if sf.Name == f.Name {
					declared = sf.Type
					break
				}
			}
			if declared == nil {
				a.sink.Report(diag.Semantic, n.Pos, "struct %q has no field %q", n.Name, f.Name)
				continue
			}
			if valType != nil && !valType.Equal(declared) {
				a.sink.Report(diag.Semantic, n.Pos, "field %q of %q has type %s, expected %s", f.Name, n.Name, valType, declared)
			}
		}
		for _, sf := range st.Fields {
			if !seen[sf.Name] {
				a.sink.Report(diag.Semantic, n.Pos, "missing field %q in literal of struct %q", sf.Name, n.Name)
			}
		}
	} else {
		if len(n.Elems) != len(st.TupleElems) {
			a.sink.Report(diag.Semantic, n.Pos, "tuple struct %q expects %d element(s), found %d", n.Name, len(st.TupleElems), len(n.Elems))
		}
		for i, e := range n.Elems {
			et := a.typeExpr(e, scope)
			if i < len(st.TupleElems) && et != nil && !et.Equal(st.TupleElems[i]) {
				a.sink.Report(diag.Semantic, e.Position(), "element %d of %q has type %s, expected %s", i, n.Name, et, st.TupleElems[i])
			}
		}
	}
	return st
}

func (a *Analyzer) typeBlock(n *ast.BlockExpr, parent *Scope) *types.Type {
	scope := NewScope(parent)
	for _, stmt := range n.Stmts {
		a.typeStmt(stmt, scope)
	}
	if n.Tail != nil {
		return a.typeExpr(n.Tail, scope)
	}
	return types.Unit()
}

func (a *Analyzer) typeStmt(stmt ast.Stmt, scope *Scope) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		var valType *types.Type
		if s.Value != nil {
			valType = a.typeExpr(s.Value, scope)
		}
		declared := valType
		if s.Type != nil {
			declared = a.resolveType(s.Type)
			if valType != nil && declared != nil && !valType.Equal(declared) {
				a.sink.Report(diag.Semantic, s.Pos, "let binding declared as %s but initializer has type %s", declared, valType)
			}
		}
		a.bindPattern(s.Pattern, declared, scope)
	case *ast.ExprStmt:
		a.typeExpr(s.Expr, scope)
	case *ast.EmptyStmt:
		// nothing to check
	}
}

// bindPattern defines every name a pattern introduces in scope, given
// the type the pattern is being matched against.
func (a *Analyzer) bindPattern(pat ast.Pattern, ty *types.Type, scope *Scope) {
	switch p := pat.(type) {
	case *ast.IdentPattern:
		scope.Define(&Symbol{Kind: SymLet, Name: p.Name, Type: ty})
	case *ast.WildcardPattern:
		// binds nothing
	case *ast.TuplePattern:
		if ty == nil || ty.Kind != types.Tuple || len(ty.Elems) != len(p.Elems) {
			for _, sub := range p.Elems {
				a.bindPattern(sub, nil, scope)
			}
			return
		}
		for i, sub := range p.Elems {
			a.bindPattern(sub, ty.Elems[i], scope)
		}
	case *ast.StructPattern:
		if ty == nil || ty.Kind != types.Struct {
			for _, f := range p.Fields {
				if f.Pattern != nil {
					a.bindPattern(f.Pattern, nil, scope)
				} else {
					scope.Define(&Symbol{Kind: SymLet, Name: f.Name, Type: nil})
				}
			}
			return
		}
		for _, f := range p.Fields {
			var fieldType *types.Type
			for _, sf := range ty.Fields {
				if sf.Name == f.Name {
					fieldType = sf.Type
					break
				}
			}
			if f.Pattern != nil {
				a.bindPattern(f.Pattern, fieldType, scope)
			} else {
				scope.Define(&Symbol{Kind: SymLet, Name: f.Name, Type: fieldType})
			}
		}
	}
}

func (a *Analyzer) typeIf(n *ast.IfExpr, scope *Scope) *types.Type {
	condType := a.typeExpr(n.Cond, scope)
	if condType != nil && !isBoolType(condType) {
		a.sink.Report(diag.Semantic, n.Cond.Position(), "if condition must be bool, found %s", condType)
	}
	thenType := a.typeExpr(n.Then, scope)
	if n.Else == nil {
		if thenType != nil && !thenType.Equal(types.Unit()) {
			a.sink.Report(diag.Semantic, n.Pos, "if without else must evaluate to (), found %s", thenType)
		}
		return types.Unit()
	}
	elseType := a.typeExpr(n.Else, scope)
	if thenType != nil && elseType != nil && !thenType.Equal(elseType) {
		a.sink.Report(diag.Semantic, n.Pos, "if/else branches have mismatched types %s and %s", thenType, elseType)
		return nil
	}
	return thenType
}

func (a *Analyzer) typeFor(n *ast.ForExpr, scope *Scope) *types.Type {
	iterType := a.typeExpr(n.Iterable, scope)
	var elemType *types.Type
	if iterType != nil && iterType.Kind == types.Tuple && len(iterType.Elems) > 0 {
		elemType = iterType.Elems[0]
	}
	loopScope := NewScope(scope)
	a.bindPattern(n.Pattern, elemType, loopScope)
	a.pushLoop(false)
	a.typeExpr(n.Body, loopScope)
	a.popLoop()
	return types.Unit()
}

func (a *Analyzer) typeLoop(n *ast.LoopExpr, scope *Scope) *types.Type {
	a.pushLoop(true)
	a.typeExpr(n.Body, scope)
	ctx := a.popLoop()
	if ctx.sawBreak && ctx.breakType != nil {
		return ctx.breakType
	}
	return types.Unit()
}

func (a *Analyzer) typeBreak(n *ast.BreakExpr, scope *Scope) *types.Type {
	var valType *types.Type
	if n.Value != nil {
		valType = a.typeExpr(n.Value, scope)
	} else {
		valType = types.Unit()
	}
	if len(a.loopStack) == 0 {
		a.sink.Report(diag.Semantic, n.Pos, "break outside of a loop")
		return types.Unit()
	}
	top := a.loopStack[len(a.loopStack)-1]
	if top.isBareLoop {
		if top.sawBreak && top.breakType != nil && valType != nil && !top.breakType.Equal(valType) {
			a.sink.Report(diag.Semantic, n.Pos, "break value type %s does not match earlier break type %s", valType, top.breakType)
		} else {
			top.breakType = valType
		}
		top.sawBreak = true
	} else if n.Value != nil {
		a.sink.Report(diag.Semantic, n.Pos, "while/for loops cannot break with a value")
	}
	return types.Unit()
}

func (a *Analyzer) typeReturn(n *ast.ReturnExpr, scope *Scope) *types.Type {
	var valType *types.Type
	if n.Value != nil {
		valType = a.typeExpr(n.Value, scope)
	} else {
		valType = types.Unit()
	}
	if a.fn != nil && a.fn.returns != nil && valType != nil && !a.fn.returns.Equal(valType) {
		a.sink.Report(diag.Semantic, n.Pos, "return value has type %s, expected %s", valType, a.fn.returns)
	}
	return types.Unit()
}

func (a *Analyzer) typeCast(n *ast.CastExpr, scope *Scope) *types.Type {
	operand := a.typeExpr(n.Operand, scope)
	target := a.resolveType(n.TargetType)
	if operand != nil && target != nil {
		numericOrBool := func(t *types.Type) bool {
			return t.IsInteger() || t.IsFloat() || (t.Kind == types.Default && t.Name == "bool")
		}
		if !numericOrBool(operand) || !numericOrBool(target) {
			a.sink.Report(diag.Semantic, n.Pos, "cannot cast %s as %s", operand, target)
		}
	}
	return target
}

func (a *Analyzer) pushLoop(isBare bool) {
	a.loopStack = append(a.loopStack, &loopCtx{isBareLoop: isBare})
}

func (a *Analyzer) popLoop() *loopCtx {
	top := a.loopStack[len(a.loopStack)-1]
	a.loopStack = a.loopStack[:len(a.loopStack)-1]
	return top
}
