package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmofishsauce/emberc/internal/ast"
	"github.com/gmofishsauce/emberc/internal/diag"
	"github.com/gmofishsauce/emberc/internal/lexer"
)

func parseSrc(t *testing.T, src string) (*ast.File, *diag.Sink) {
	t.Helper()
	lx := lexer.New(lexer.NewCharStream(strings.NewReader(src)))
	sink := diag.New("test.em")
	p := New(lx, sink)
	return p.Parse(), sink
}

func TestParseFunctionWithParamsAndReturn(t *testing.T) {
	f, sink := parseSrc(t, `fn add(a: i32, b: i32) -> i32 { a + b }`)
	require.True(t, sink.Empty(), sink.Diagnostics())
	require.Len(t, f.Items, 1)
	fn, ok := f.Items[0].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	require.NotNil(t, fn.ReturnType)
	require.NotNil(t, fn.Body.Tail)
	bin, ok := fn.Body.Tail.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.BinAdd, bin.Op)
}

func TestParseNamedStruct(t *testing.T) {
	f, sink := parseSrc(t, `struct Point { x: i32, y: i32 }`)
	require.True(t, sink.Empty())
	require.Len(t, f.Items, 1)
	s := f.Items[0].(*ast.StructDecl)
	assert.Equal(t, ast.NamedStruct, s.Shape)
	require.Len(t, s.Fields, 2)
}

func TestParseTupleStruct(t *testing.T) {
	f, sink := parseSrc(t, `struct Pair(i32, i32);`)
	require.True(t, sink.Empty())
	s := f.Items[0].(*ast.StructDecl)
	assert.Equal(t, ast.TupleStructShape, s.Shape)
	require.Len(t, s.TupleTypes, 2)
}

func TestParseConstItem(t *testing.T) {
	f, sink := parseSrc(t, `const MAX: u32 = 100;`)
	require.True(t, sink.Empty())
	c := f.Items[0].(*ast.ConstItem)
	assert.Equal(t, "MAX", c.Name)
}

func TestParseIfElseAsExpression(t *testing.T) {
	f, sink := parseSrc(t, `fn f() -> i32 { let x = if true { 1 } else { 2 }; x }`)
	require.True(t, sink.Empty(), sink.Diagnostics())
	fn := f.Items[0].(*ast.Function)
	letStmt := fn.Body.Stmts[0].(*ast.LetStmt)
	_, ok := letStmt.Value.(*ast.IfExpr)
	assert.True(t, ok)
}

func TestParseStructLiteralForbiddenInWhileCondition(t *testing.T) {
	// Without the struct-expression ban in condition position, "flag"
	// would be read as the start of a struct literal whose body steals
	// the while loop's own opening brace. With the ban active, "flag"
	// parses as a bare identifier condition and "{}" is the loop body.
	f, sink := parseSrc(t, `fn f() { while flag {} }`)
	require.True(t, sink.Empty(), sink.Diagnostics())
	fn := f.Items[0].(*ast.Function)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	wh := stmt.Expr.(*ast.WhileExpr)
	_, isIdent := wh.Cond.(*ast.Identifier)
	assert.True(t, isIdent, "condition should be the bare identifier, not a struct literal")
	assert.Empty(t, wh.Body.Stmts)
}

func TestParseStructLiteralAllowedInParenthesizedCondition(t *testing.T) {
	// The parenthesized escape hatch: struct literals are fine once
	// wrapped in "(...)", since the parens make the brace unambiguous.
	f, sink := parseSrc(t, `fn f() { while (Point { x: 1, y: 2 }).x > 0 {} }`)
	require.True(t, sink.Empty(), sink.Diagnostics())
	fn := f.Items[0].(*ast.Function)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	wh := stmt.Expr.(*ast.WhileExpr)
	bin := wh.Cond.(*ast.BinaryExpr)
	assert.Equal(t, ast.BinGt, bin.Op)
	fa := bin.Left.(*ast.FieldAccessExpr)
	paren := fa.Target.(*ast.ParenExpr)
	_, isStruct := paren.Inner.(*ast.StructExpr)
	assert.True(t, isStruct)
}

func TestParseDoubleRefPrefixVsLogicalAndInfix(t *testing.T) {
	f, sink := parseSrc(t, `fn f() { let a = true; let b = true; let c = a && b; let d = &&a; }`)
	require.True(t, sink.Empty(), sink.Diagnostics())
	fn := f.Items[0].(*ast.Function)
	cStmt := fn.Body.Stmts[2].(*ast.LetStmt)
	_, isBinary := cStmt.Value.(*ast.BinaryExpr)
	assert.True(t, isBinary, "a && b should parse as infix logical-and")

	dStmt := fn.Body.Stmts[3].(*ast.LetStmt)
	un, isUnary := dStmt.Value.(*ast.UnaryExpr)
	require.True(t, isUnary, "&&a should parse as a prefix double-reference")
	assert.Equal(t, ast.UnaryDoubleRef, un.Op)
}

func TestParseOperatorPrecedence(t *testing.T) {
	f, sink := parseSrc(t, `fn f() -> i32 { 1 + 2 * 3 }`)
	require.True(t, sink.Empty())
	fn := f.Items[0].(*ast.Function)
	top := fn.Body.Tail.(*ast.BinaryExpr)
	assert.Equal(t, ast.BinAdd, top.Op)
	_, rightIsMul := top.Right.(*ast.BinaryExpr)
	assert.True(t, rightIsMul)
}

func TestParseLoopWithBreakValue(t *testing.T) {
	f, sink := parseSrc(t, `fn f() -> i32 { loop { break 42; } }`)
	require.True(t, sink.Empty(), sink.Diagnostics())
	fn := f.Items[0].(*ast.Function)
	loop := fn.Body.Tail.(*ast.LoopExpr)
	require.Len(t, loop.Body.Stmts, 1)
	exprStmt := loop.Body.Stmts[0].(*ast.ExprStmt)
	brk := exprStmt.Expr.(*ast.BreakExpr)
	require.NotNil(t, brk.Value)
}

func TestParseForLoopOverIdentifier(t *testing.T) {
	f, sink := parseSrc(t, `fn f() { for x in xs { } }`)
	require.True(t, sink.Empty(), sink.Diagnostics())
	fn := f.Items[0].(*ast.Function)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	forExpr := stmt.Expr.(*ast.ForExpr)
	ip, ok := forExpr.Pattern.(*ast.IdentPattern)
	require.True(t, ok)
	assert.Equal(t, "x", ip.Name)
}

func TestParseArrayRepeatExpr(t *testing.T) {
	f, sink := parseSrc(t, `fn f() { let a = [0; 10]; }`)
	require.True(t, sink.Empty(), sink.Diagnostics())
	fn := f.Items[0].(*ast.Function)
	letStmt := fn.Body.Stmts[0].(*ast.LetStmt)
	arr := letStmt.Value.(*ast.ArrayExpr)
	require.NotNil(t, arr.Repeat)
	require.NotNil(t, arr.Count)
}

func TestParseReferenceTypeAnnotation(t *testing.T) {
	f, sink := parseSrc(t, `fn f(a: &mut i32) {}`)
	require.True(t, sink.Empty(), sink.Diagnostics())
	fn := f.Items[0].(*ast.Function)
	rt := fn.Params[0].Type.(*ast.ReferenceType)
	assert.True(t, rt.Mutable)
}

func TestParseMalformedItemRecovers(t *testing.T) {
	f, sink := parseSrc(t, `123 fn ok() {}`)
	assert.False(t, sink.Empty())
	require.Len(t, f.Items, 1)
	fn, ok := f.Items[0].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "ok", fn.Name)
}
