package wasmgen

import (
	"github.com/gmofishsauce/emberc/internal/ast"
	"github.com/gmofishsauce/emberc/internal/token"
	"github.com/gmofishsauce/emberc/internal/types"
)

func (fg *funcGen) pushLevel() { fg.openCount++ }
func (fg *funcGen) popLevel()  { fg.openCount-- }

// emitBlockBody lowers a function's top-level body block directly into
// e (no extra wasm block wrapper — the function body itself is the
// outermost scope). The tail expression's value, if any, is left on the
// stack as the function's result; no explicit return is emitted.
func (fg *funcGen) emitBlockBody(e *Emitter, body *ast.BlockExpr) {
	fg.env = newLocalEnv(fg.env)
	for _, stmt := range body.Stmts {
		fg.emitStmt(e, stmt)
	}
	if body.Tail != nil {
		fg.emitExpr(e, body.Tail)
	}
	fg.env = fg.env.parent
}

func (fg *funcGen) emitBlockExpr(e *Emitter, blk *ast.BlockExpr) {
	fg.env = newLocalEnv(fg.env)
	for _, stmt := range blk.Stmts {
		fg.emitStmt(e, stmt)
	}
	if blk.Tail != nil {
		fg.emitExpr(e, blk.Tail)
	}
	fg.env = fg.env.parent
}

func (fg *funcGen) emitStmt(e *Emitter, stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		fg.emitLet(e, s)
	case *ast.ExprStmt:
		fg.emitExpr(e, s.Expr)
		if _, ok := fg.valTypeOfExpr(s.Expr); ok {
			e.Drop()
		}
	case *ast.EmptyStmt:
		// nothing to emit
	}
}

func (fg *funcGen) emitLet(e *Emitter, s *ast.LetStmt) {
	ident, ok := s.Pattern.(*ast.IdentPattern)
	if !ok {
		return // WildcardPattern or unsupported; collectLets already failed the function if unsupported
	}
	slot, ok := fg.slotOfLet[s]
	if !ok {
		return
	}
	if s.Value != nil {
		fg.emitExpr(e, s.Value)
		e.LocalSet(slot)
	}
	fg.env.slots[ident.Name] = slot
}

// emitExpr lowers expr's value-producing instructions into em.
func (fg *funcGen) emitExpr(em *Emitter, expr ast.Expr) {
	switch n := expr.(type) {
	case *ast.Identifier:
		fg.emitIdentifier(em, n)
	case *ast.Literal:
		fg.emitLiteral(em, n)
	case *ast.ParenExpr:
		fg.emitExpr(em, n.Inner)
	case *ast.UnaryExpr:
		fg.emitUnary(em, n)
	case *ast.BinaryExpr:
		fg.emitBinary(em, n)
	case *ast.CallExpr:
		fg.emitCall(em, n)
	case *ast.CastExpr:
		fg.emitCast(em, n)
	case *ast.BlockExpr:
		fg.emitBlockExpr(em, n)
	case *ast.IfExpr:
		fg.emitIf(em, n)
	case *ast.WhileExpr:
		fg.emitWhile(em, n)
	case *ast.LoopExpr:
		fg.emitLoop(em, n)
	case *ast.BreakExpr:
		fg.emitBreak(em, n)
	case *ast.ContinueExpr:
		fg.emitContinue(em, n)
	case *ast.ReturnExpr:
		fg.emitReturn(em, n)
	default:
		fg.fail(expr.Position(), "this construct is not supported by the code generator")
	}
}

func (fg *funcGen) emitIdentifier(e *Emitter, n *ast.Identifier) {
	if slot, ok := fg.env.lookup(n.Name); ok {
		e.LocalGet(slot)
		return
	}
	if c, ok := fg.g.consts[n.Name]; ok {
		if lit, ok := c.Value.(*ast.Literal); ok {
			fg.emitLiteral(e, lit)
			return
		}
		fg.fail(n.Pos, "const %q is not a literal; only literal consts are supported by the code generator", n.Name)
		return
	}
	fg.fail(n.Pos, "%q does not resolve to a local, parameter or literal const", n.Name)
}

func (fg *funcGen) emitLiteral(e *Emitter, n *ast.Literal) {
	s := n.Scalar
	if s == nil {
		fg.fail(n.Pos, "literal has no scalar payload")
		return
	}
	switch s.Kind {
	case token.ScalarBool:
		if s.Bool {
			e.I32Const(1)
		} else {
			e.I32Const(0)
		}
	case token.ScalarChar:
		r := []rune(s.Text)
		if len(r) == 0 {
			e.I32Const(0)
		} else {
			e.I32Const(int32(r[0]))
		}
	case token.ScalarI8, token.ScalarI16, token.ScalarI32:
		e.I32Const(int32(s.Int))
	case token.ScalarI64:
		e.I64Const(s.Int)
	case token.ScalarU8, token.ScalarU16, token.ScalarU32:
		e.I32Const(int32(s.Uint))
	case token.ScalarU64:
		e.I64Const(int64(s.Uint))
	case token.ScalarF32:
		e.F32Const(float32(s.Float))
	case token.ScalarF64:
		e.F64Const(s.Float)
	default:
		fg.fail(n.Pos, "string/byte-string literals are not supported by the code generator")
	}
}

func (fg *funcGen) emitUnary(e *Emitter, n *ast.UnaryExpr) {
	switch n.Op {
	case ast.UnaryNeg:
		operandVT, ok := fg.valTypeOfExpr(n.Operand)
		if !ok {
			fg.fail(n.Pos, "operand of '-' has an unsupported type")
			return
		}
		if operandVT == ValF32 || operandVT == ValF64 {
			fg.emitExpr(e, n.Operand)
			if operandVT == ValF32 {
				e.Op0(0x8C) // f32.neg
			} else {
				e.Op0(0x9A) // f64.neg
			}
			return
		}
		if operandVT == ValI32 {
			e.I32Const(0)
		} else {
			e.I64Const(0)
		}
		fg.emitExpr(e, n.Operand)
		e.Binary(ast.BinSub, operandVT, false)
	case ast.UnaryNot:
		// The analyzer only accepts "!" on a bool operand, which always
		// narrows to i32, so eqz (x == 0) is the complete lowering.
		fg.emitExpr(e, n.Operand)
		e.Eqz(ValI32)
	default:
		fg.fail(n.Pos, "reference expressions are not supported by the code generator")
	}
}

func (fg *funcGen) emitBinary(e *Emitter, n *ast.BinaryExpr) {
	if base, ok := compoundBase[n.Op]; ok {
		fg.emitCompoundAssign(e, n, base)
		return
	}
	if n.Op == ast.BinAssign {
		fg.emitAssign(e, n)
		return
	}
	lt := fg.typeOf(n.Left)
	vt, ok := valTypeOf(lt)
	if !ok {
		fg.fail(n.Pos, "operand type is not representable as a wasm value")
		return
	}
	fg.emitExpr(e, n.Left)
	fg.emitExpr(e, n.Right)
	unsigned := lt.IsUnsigned()
	if !e.Binary(n.Op, vt, unsigned) {
		fg.fail(n.Pos, "operator has no encoding for this operand type")
	}
}

var compoundBase = map[ast.BinaryOp]ast.BinaryOp{
	ast.BinAddAssign: ast.BinAdd,
	ast.BinSubAssign: ast.BinSub,
	ast.BinMulAssign: ast.BinMul,
	ast.BinDivAssign: ast.BinDiv,
	ast.BinModAssign: ast.BinMod,
	ast.BinAndAssign: ast.BinAnd,
	ast.BinOrAssign:  ast.BinOr,
	ast.BinXorAssign: ast.BinXor,
	ast.BinShlAssign: ast.BinShl,
	ast.BinShrAssign: ast.BinShr,
}

func (fg *funcGen) placeSlot(e *Emitter, place ast.Expr) (uint32, bool) {
	ident, ok := place.(*ast.Identifier)
	if !ok {
		fg.fail(place.Position(), "only a plain local name is supported as an assignment target by the code generator")
		return 0, false
	}
	slot, ok := fg.env.lookup(ident.Name)
	if !ok {
		fg.fail(ident.Pos, "%q is not assignable (not a local binding)", ident.Name)
		return 0, false
	}
	return slot, true
}

func (fg *funcGen) emitAssign(e *Emitter, n *ast.BinaryExpr) {
	slot, ok := fg.placeSlot(e, n.Left)
	if !ok {
		return
	}
	fg.emitExpr(e, n.Right)
	e.LocalSet(slot)
}

func (fg *funcGen) emitCompoundAssign(e *Emitter, n *ast.BinaryExpr, base ast.BinaryOp) {
	slot, ok := fg.placeSlot(e, n.Left)
	if !ok {
		return
	}
	lt := fg.typeOf(n.Left)
	vt, ok := valTypeOf(lt)
	if !ok {
		fg.fail(n.Pos, "operand type is not representable as a wasm value")
		return
	}
	e.LocalGet(slot)
	fg.emitExpr(e, n.Right)
	if !e.Binary(base, vt, lt.IsUnsigned()) {
		fg.fail(n.Pos, "operator has no encoding for this operand type")
		return
	}
	e.LocalSet(slot)
}

func (fg *funcGen) emitCall(e *Emitter, n *ast.CallExpr) {
	callee, ok := n.Callee.(*ast.Identifier)
	if !ok {
		fg.fail(n.Pos, "indirect calls are not supported by the code generator")
		return
	}
	idx, ok := fg.g.funcIdx[callee.Name]
	if !ok {
		fg.fail(n.Pos, "call to %q does not resolve to any import or function", callee.Name)
		return
	}
	for _, a := range n.Args {
		fg.emitExpr(e, a)
	}
	e.Call(idx)
}

func (fg *funcGen) emitCast(e *Emitter, n *ast.CastExpr) {
	from := fg.typeOf(n.Operand)
	fromVT, ok := valTypeOf(from)
	if !ok {
		fg.fail(n.Pos, "cast source type is not representable as a wasm value")
		return
	}
	toType := fg.resolveCastTarget(n.TargetType)
	toVT, ok := valTypeOf(toType)
	if !ok {
		fg.fail(n.Pos, "cast target type is not representable as a wasm value")
		return
	}
	fg.emitExpr(e, n.Operand)
	if fromVT == toVT {
		return // same wasm representation; e.g. u8 as i32, or i32 as bool
	}
	op, ok := castOpcode(fromVT, toVT, isUnsignedOperand(from), isUnsignedOperand(toType))
	if !ok {
		fg.fail(n.Pos, "unsupported numeric conversion")
		return
	}
	e.Op0(op)
}

func (fg *funcGen) resolveCastTarget(tn ast.TypeNode) *types.Type {
	it, ok := tn.(*ast.IdentifierType)
	if !ok {
		return nil
	}
	return types.LookupBuiltin(it.Name)
}

func (fg *funcGen) emitIf(e *Emitter, n *ast.IfExpr) {
	fg.emitExpr(e, n.Cond)
	resultVT, hasResult := fg.valTypeOfExpr(n)
	blockType := byte(blockTypeVoid)
	if hasResult {
		blockType = byte(resultVT)
	}
	e.If(blockType)
	fg.pushLevel()
	fg.emitBlockExpr(e, n.Then)
	if n.Else != nil {
		e.Else()
		switch el := n.Else.(type) {
		case *ast.BlockExpr:
			fg.emitBlockExpr(e, el)
		default:
			fg.emitExpr(e, el)
		}
	}
	e.End()
	fg.popLevel()
}

func (fg *funcGen) emitWhile(e *Emitter, n *ast.WhileExpr) {
	e.Block(blockTypeVoid)
	fg.pushLevel()
	blockLevel := fg.openCount
	e.Loop(blockTypeVoid)
	fg.pushLevel()
	loopLevel := fg.openCount
	fg.loops = append(fg.loops, loopFrame{blockLevel: blockLevel, loopLevel: loopLevel})

	fg.emitExpr(e, n.Cond)
	condVT, ok := fg.valTypeOfExpr(n.Cond)
	if ok {
		e.Eqz(condVT)
	}
	e.BrIf(uint32(fg.openCount - blockLevel))
	fg.emitBlockExpr(e, n.Body)
	e.Br(uint32(fg.openCount - loopLevel))
	e.End()
	fg.popLevel()
	e.End()
	fg.popLevel()
	fg.loops = fg.loops[:len(fg.loops)-1]
}

func (fg *funcGen) emitLoop(e *Emitter, n *ast.LoopExpr) {
	resultVT, hasResult := fg.valTypeOfExpr(n)
	blockType := byte(blockTypeVoid)
	if hasResult {
		blockType = byte(resultVT)
	}
	e.Block(blockType)
	fg.pushLevel()
	blockLevel := fg.openCount
	e.Loop(blockTypeVoid)
	fg.pushLevel()
	loopLevel := fg.openCount
	fg.loops = append(fg.loops, loopFrame{blockLevel: blockLevel, loopLevel: loopLevel, resultVT: resultVT, hasResult: hasResult})

	fg.emitBlockExpr(e, n.Body)
	e.Br(uint32(fg.openCount - loopLevel))
	e.End()
	fg.popLevel()
	e.End()
	fg.popLevel()
	fg.loops = fg.loops[:len(fg.loops)-1]
}

func (fg *funcGen) emitBreak(e *Emitter, n *ast.BreakExpr) {
	if len(fg.loops) == 0 {
		fg.fail(n.Pos, "break outside any loop")
		return
	}
	top := fg.loops[len(fg.loops)-1]
	if n.Value != nil {
		fg.emitExpr(e, n.Value)
	}
	e.Br(uint32(fg.openCount - top.blockLevel))
}

func (fg *funcGen) emitContinue(e *Emitter, n *ast.ContinueExpr) {
	if len(fg.loops) == 0 {
		fg.fail(n.Pos, "continue outside any loop")
		return
	}
	top := fg.loops[len(fg.loops)-1]
	e.Br(uint32(fg.openCount - top.loopLevel))
}

func (fg *funcGen) emitReturn(e *Emitter, n *ast.ReturnExpr) {
	if n.Value != nil {
		fg.emitExpr(e, n.Value)
	}
	e.Return()
}
