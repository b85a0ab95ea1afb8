package wasmgen

import "github.com/gmofishsauce/emberc/internal/types"

// valTypeOf narrows t to the wasm value type its values occupy on the
// stack and in locals. bool, char and every sub-64-bit integer width
// all narrow to i32, matching how wasm itself has no native i8/i16/u8/
// u16 value type — narrower loads/stores are handled at the memory
// instruction level, not the value-type level, so arithmetic on them
// happens in i32 and is truncated on store.
func valTypeOf(t *types.Type) (ValType, bool) {
	if t == nil || t.Kind != types.Default {
		return 0, false
	}
	switch t.Name {
	case "bool", "char", "i8", "i16", "i32", "u8", "u16", "u32":
		return ValI32, true
	case "i64", "u64":
		return ValI64, true
	case "f32":
		return ValF32, true
	case "f64":
		return ValF64, true
	default:
		return 0, false
	}
}

// isUnsignedOperand reports whether t converts as unsigned in an "as"
// cast (u8..u64, and bool). Binary operators select their unsigned
// opcode variant through types.Type.IsUnsigned instead.
func isUnsignedOperand(t *types.Type) bool {
	return t.IsUnsigned() || (t != nil && t.Kind == types.Default && t.Name == "bool")
}
