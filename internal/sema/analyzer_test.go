package sema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmofishsauce/emberc/internal/ast"
	"github.com/gmofishsauce/emberc/internal/diag"
	"github.com/gmofishsauce/emberc/internal/lexer"
	"github.com/gmofishsauce/emberc/internal/parser"
)

func analyze(t *testing.T, src string) (*ast.File, *diag.Sink) {
	t.Helper()
	lx := lexer.New(lexer.NewCharStream(strings.NewReader(src)))
	sink := diag.New("test.em")
	p := parser.New(lx, sink)
	file := p.Parse()
	require.True(t, sink.Empty(), "parse errors: %v", sink.Diagnostics())
	New(file, sink).Run()
	return file, sink
}

func TestAnalyzeSimpleFunction(t *testing.T) {
	_, sink := analyze(t, `fn add(a: i32, b: i32) -> i32 { a + b }`)
	assert.True(t, sink.Empty(), sink.Diagnostics())
}

func TestAnalyzeReturnTypeMismatch(t *testing.T) {
	_, sink := analyze(t, `fn f() -> i32 { true }`)
	assert.False(t, sink.Empty())
}

func TestAnalyzeUndefinedName(t *testing.T) {
	_, sink := analyze(t, `fn f() -> i32 { x }`)
	assert.False(t, sink.Empty())
}

func TestAnalyzeStructFieldAccess(t *testing.T) {
	_, sink := analyze(t, `
		struct Point { x: i32, y: i32 }
		fn sum(p: Point) -> i32 { p.x + p.y }
	`)
	assert.True(t, sink.Empty(), sink.Diagnostics())
}

func TestAnalyzeStructLiteralMissingField(t *testing.T) {
	_, sink := analyze(t, `
		struct Point { x: i32, y: i32 }
		fn f() -> Point { Point { x: 1 } }
	`)
	assert.False(t, sink.Empty())
}

func TestAnalyzeLetTypeMismatch(t *testing.T) {
	_, sink := analyze(t, `fn f() { let x: bool = 1; }`)
	assert.False(t, sink.Empty())
}

func TestAnalyzeIfElseTypeMismatch(t *testing.T) {
	_, sink := analyze(t, `fn f() -> i32 { if true { 1 } else { true } }`)
	assert.False(t, sink.Empty())
}

func TestAnalyzeLoopBreakValueType(t *testing.T) {
	file, sink := analyze(t, `fn f() -> i32 { loop { break 7; } }`)
	assert.True(t, sink.Empty(), sink.Diagnostics())
	fn := file.Items[0].(*ast.Function)
	loopExpr := fn.Body.Tail.(*ast.LoopExpr)
	ty := loopExpr.GetType()
	require.NotNil(t, ty)
}

func TestAnalyzeBreakOutsideLoop(t *testing.T) {
	_, sink := analyze(t, `fn f() { break; }`)
	assert.False(t, sink.Empty())
}

func TestAnalyzeFunctionCallArgCount(t *testing.T) {
	_, sink := analyze(t, `
		fn add(a: i32, b: i32) -> i32 { a + b }
		fn f() -> i32 { add(1) }
	`)
	assert.False(t, sink.Empty())
}

func TestAnalyzeWhileConditionMustBeBool(t *testing.T) {
	_, sink := analyze(t, `fn f() { while 1 {} }`)
	assert.False(t, sink.Empty())
}

func TestAnalyzeConstUsizeAliasesU64(t *testing.T) {
	_, sink := analyze(t, `const N: usize = 10u64;`)
	assert.True(t, sink.Empty(), sink.Diagnostics())
}
