package wasmgen

import (
	"github.com/gmofishsauce/emberc/internal/ast"
	"github.com/gmofishsauce/emberc/internal/diag"
	"github.com/gmofishsauce/emberc/internal/token"
	"github.com/gmofishsauce/emberc/internal/types"
)

func (fg *funcGen) typeOf(e ast.Expr) *types.Type {
	t, _ := e.GetType().(*types.Type)
	return t
}

func (fg *funcGen) valTypeOfExpr(e ast.Expr) (ValType, bool) {
	return valTypeOf(fg.typeOf(e))
}

func (fg *funcGen) fail(pos token.Position, format string, args ...interface{}) {
	fg.failed = true
	fg.g.sink.Report(diag.Codegen, pos, format, args...)
}
