package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestRunSuccessWritesWasmModule(t *testing.T) {
	dir := t.TempDir()
	src := writeTemp(t, dir, "add.em", `fn add(a: i32, b: i32) -> i32 { a + b }`)
	iet := writeTemp(t, dir, "add.iet.json", `{
		"imports": [],
		"exports": [{"field": "add", "associate": "add", "type": {"params": ["i32","i32"], "return": ["i32"]}}]
	}`)
	out := filepath.Join(dir, "add.wasm")

	err := run(src, false, out, iet)
	require.NoError(t, err)

	data, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}, data[:8])
}

func TestRunDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "prog.wasm", defaultOutputPath("prog.em"))
	assert.Equal(t, "/a/b/prog.wasm", defaultOutputPath("/a/b/prog.em"))
}

func TestRunMissingIetIsIOError(t *testing.T) {
	dir := t.TempDir()
	src := writeTemp(t, dir, "add.em", `fn add(a: i32, b: i32) -> i32 { a + b }`)

	err := run(src, false, "", "")
	require.Error(t, err)
	var ee *exitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 1, ee.code)
}

func TestRunSyntaxErrorExitsThree(t *testing.T) {
	dir := t.TempDir()
	src := writeTemp(t, dir, "bad.em", `fn add(a: i32, b: i32) -> i32 { a + }`)
	iet := writeTemp(t, dir, "bad.iet.json", `{"imports": [], "exports": []}`)

	err := run(src, false, "", iet)
	require.Error(t, err)
	var ee *exitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 3, ee.code)
}

func TestRunSemanticErrorExitsFour(t *testing.T) {
	dir := t.TempDir()
	src := writeTemp(t, dir, "bad.em", `fn f() -> i32 { true }`)
	iet := writeTemp(t, dir, "bad.iet.json", `{"imports": [], "exports": []}`)

	err := run(src, false, "", iet)
	require.Error(t, err)
	var ee *exitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 4, ee.code)
}

func TestRunCodegenErrorExitsFive(t *testing.T) {
	dir := t.TempDir()
	src := writeTemp(t, dir, "bad.em", `
		struct Point { x: i32, y: i32 }
		fn sum(p: Point) -> i32 { p.x + p.y }
	`)
	iet := writeTemp(t, dir, "bad.iet.json", `{"imports": [], "exports": []}`)

	err := run(src, false, "", iet)
	require.Error(t, err)
	var ee *exitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 5, ee.code)
}

func TestRunMissingSourceFileIsIOError(t *testing.T) {
	err := run(filepath.Join(t.TempDir(), "nope.em"), false, "", "")
	require.Error(t, err)
	var ee *exitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 1, ee.code)
}

func TestRunDumpTokensIgnoresMissingIet(t *testing.T) {
	dir := t.TempDir()
	src := writeTemp(t, dir, "add.em", `fn add(a: i32, b: i32) -> i32 { a + b }`)

	err := run(src, true, "", "")
	assert.NoError(t, err)
}
