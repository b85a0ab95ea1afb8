package wasmgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmofishsauce/emberc/internal/diag"
	"github.com/gmofishsauce/emberc/internal/iet"
	"github.com/gmofishsauce/emberc/internal/lexer"
	"github.com/gmofishsauce/emberc/internal/parser"
	"github.com/gmofishsauce/emberc/internal/sema"
)

func compile(t *testing.T, src string, table *iet.Table) (*Module, *diag.Sink) {
	t.Helper()
	lx := lexer.New(lexer.NewCharStream(strings.NewReader(src)))
	sink := diag.New("test.em")
	p := parser.New(lx, sink)
	file := p.Parse()
	require.True(t, sink.Empty(), "parse errors: %v", sink.Diagnostics())
	sema.New(file, sink).Run()
	require.True(t, sink.Empty(), "semantic errors: %v", sink.Diagnostics())
	if table == nil {
		table = &iet.Table{}
	}
	m := Generate(file, table, sink)
	return m, sink
}

func TestGenerateAddFunctionExported(t *testing.T) {
	m, sink := compile(t, `fn add(a: i32, b: i32) -> i32 { a + b }`, &iet.Table{
		Exports: []iet.Export{{Field: "add", Associate: "add", Type: iet.TypeSig{Params: []string{"i32", "i32"}, Return: []string{"i32"}}}},
	})
	require.True(t, sink.Empty(), sink.Diagnostics())
	require.Len(t, m.Types, 1)
	assert.Equal(t, []ValType{ValI32, ValI32}, m.Types[0].Params)
	assert.Equal(t, []ValType{ValI32}, m.Types[0].Results)
	require.Len(t, m.Exports, 1)
	assert.Equal(t, "add", m.Exports[0].Name)
	assert.Equal(t, uint32(0), m.Exports[0].Index)
}

func TestGenerateUnmatchedExportIsCodegenError(t *testing.T) {
	_, sink := compile(t, `fn add(a: i32, b: i32) -> i32 { a + b }`, &iet.Table{
		Exports: []iet.Export{{Field: "missing", Associate: "nope"}},
	})
	assert.True(t, sink.HasKind(diag.Codegen))
}

func TestGenerateImportedFunctionGetsIndexZero(t *testing.T) {
	m, sink := compile(t, `
		fn caller() -> i32 { host_add(1, 2) }
	`, &iet.Table{
		Imports: []iet.Import{{Module: "env", Field: "host_add", Associate: "host_add",
			Type: iet.TypeSig{Params: []string{"i32", "i32"}, Return: []string{"i32"}}}},
	})
	require.True(t, sink.Empty(), sink.Diagnostics())
	require.Len(t, m.Imports, 1)
	assert.Equal(t, "env", m.Imports[0].Module)
	// The call inside caller's body should reference function index 0
	// (the only import), found as a call opcode (0x10) in the body.
	require.Len(t, m.Code, 1)
	assert.Contains(t, m.Code[0].Body, byte(0x10))
}

func TestGenerateLocalAndWhileLoop(t *testing.T) {
	m, sink := compile(t, `
		fn count() -> i32 {
			let mut x: i32 = 0;
			while x < 10 {
				x = x + 1;
			}
			x
		}
	`, nil)
	require.True(t, sink.Empty(), sink.Diagnostics())
	require.Len(t, m.Code, 1)
	body := m.Code[0].Body
	require.NotEmpty(t, body)
	// Locals beyond params: one i32 (x).
	require.Len(t, m.Code[0].Locals, 1)
	assert.Equal(t, uint32(1), m.Code[0].Locals[0].Count)
	assert.Equal(t, ValI32, m.Code[0].Locals[0].Type)
}

func TestGenerateStructFieldUnsupportedIsCodegenError(t *testing.T) {
	_, sink := compile(t, `
		struct Point { x: i32, y: i32 }
		fn sum(p: Point) -> i32 { p.x + p.y }
	`, nil)
	assert.True(t, sink.HasKind(diag.Codegen))
}

func TestGenerateEncodesToValidWasmHeader(t *testing.T) {
	m, sink := compile(t, `fn main() -> i32 { 42 }`, &iet.Table{
		Exports: []iet.Export{{Field: "main", Associate: "main", Type: iet.TypeSig{Return: []string{"i32"}}}},
	})
	require.True(t, sink.Empty(), sink.Diagnostics())
	out := m.Encode()
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}, out[:8])
}
