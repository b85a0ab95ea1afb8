package iet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTable(t *testing.T, tbl Table) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "iet.json")
	data, err := json.Marshal(tbl)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadFileValidTable(t *testing.T) {
	path := writeTable(t, Table{
		Imports: []Import{{Module: "env", Field: "print", Associate: "print", Type: TypeSig{Params: []string{"i32"}}}},
		Exports: []Export{{Field: "main", Associate: "main", Type: TypeSig{Return: []string{"i32"}}}},
	})
	tbl, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, tbl.Imports, 1)
	assert.Len(t, tbl.Exports, 1)
	assert.Equal(t, "env", tbl.Imports[0].Module)
}

func TestLoadFileRejectsUnknownTypeTag(t *testing.T) {
	path := writeTable(t, Table{
		Exports: []Export{{Field: "main", Associate: "main", Type: TypeSig{Params: []string{"quux"}}}},
	})
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFileRejectsMultiValueReturn(t *testing.T) {
	path := writeTable(t, Table{
		Exports: []Export{{Field: "main", Associate: "main", Type: TypeSig{Return: []string{"i32", "i32"}}}},
	})
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFileRejectsMissingAssociate(t *testing.T) {
	path := writeTable(t, Table{
		Imports: []Import{{Module: "env", Field: "print"}},
	})
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFileMissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
