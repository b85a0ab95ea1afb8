package wasmgen

// castOpcode resolves an "as" cast between two distinct wasm value
// types. fromUnsigned selects the extend/convert variant when widening
// an integer or converting an integer to float; toUnsigned selects the
// trunc variant when narrowing a float to an integer target. Same-type
// casts (e.g. u8 as i32, both ValI32) never reach here — the caller
// skips emission entirely since no bits need to change.
func castOpcode(from, to ValType, fromUnsigned, toUnsigned bool) (byte, bool) {
	switch {
	case from == ValI32 && to == ValI64:
		if fromUnsigned {
			return 0xAD, true // i64.extend_i32_u
		}
		return 0xAC, true // i64.extend_i32_s
	case from == ValI64 && to == ValI32:
		return 0xA7, true // i32.wrap_i64
	case from == ValF32 && to == ValF64:
		return 0xBB, true // f64.promote_f32
	case from == ValF64 && to == ValF32:
		return 0xB6, true // f32.demote_f64
	case from == ValF32 && to == ValI32:
		if toUnsigned {
			return 0xA9, true
		}
		return 0xA8, true
	case from == ValF64 && to == ValI32:
		if toUnsigned {
			return 0xAB, true
		}
		return 0xAA, true
	case from == ValF32 && to == ValI64:
		if toUnsigned {
			return 0xAF, true
		}
		return 0xAE, true
	case from == ValF64 && to == ValI64:
		if toUnsigned {
			return 0xB1, true
		}
		return 0xB0, true
	case from == ValI32 && to == ValF32:
		if fromUnsigned {
			return 0xB3, true
		}
		return 0xB2, true
	case from == ValI64 && to == ValF32:
		if fromUnsigned {
			return 0xB5, true
		}
		return 0xB4, true
	case from == ValI32 && to == ValF64:
		if fromUnsigned {
			return 0xB8, true
		}
		return 0xB7, true
	case from == ValI64 && to == ValF64:
		if fromUnsigned {
			return 0xBA, true
		}
		return 0xB9, true
	default:
		return 0, false
	}
}
