package wasmgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeEmptyModuleIsJustHeader(t *testing.T) {
	m := &Module{}
	out := m.Encode()
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}, out)
}

func TestEncodeSingleExportedFunction(t *testing.T) {
	m := &Module{
		Types:   []FuncType{{Params: []ValType{ValI32, ValI32}, Results: []ValType{ValI32}}},
		Funcs:   []uint32{0},
		Exports: []ExportEntry{{Name: "add", Index: 0}},
		Code: []CodeEntry{{
			Body: func() []byte {
				e := NewEmitter()
				e.LocalGet(0)
				e.LocalGet(1)
				e.Op0(0x6A) // i32.add
				e.End()
				return e.Bytes()
			}(),
		}},
	}
	out := m.Encode()
	require.True(t, len(out) > 8)
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}, out[:8])

	// Type section: id 1, then payload.
	assert.Equal(t, byte(1), out[8])
}

func TestEncodeOmitsZeroEntrySections(t *testing.T) {
	m := &Module{}
	out := m.Encode()
	for _, id := range []byte{1, 2, 3, 7, 10} {
		assert.NotContains(t, out[8:], id)
	}
}
