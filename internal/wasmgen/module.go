package wasmgen

// Module is the section-by-section in-memory form of a wasm binary,
// assembled incrementally by the Generator and then serialized by
// Encode. Only the five sections this language ever needs are modeled;
// Table, Memory, Global, Start, Element and Data are not modeled and are
// never written. Of the five modeled sections, any with zero entries is
// dropped from the output.
type Module struct {
	// Types holds one FuncType per import (in import order) followed by
	// one per locally-defined function (in declaration order); this repo
	// does not deduplicate identical signatures, since the IET binding
	// rule in §4.5 speaks of "each imported function becomes a Type+
	// Import entry", one apiece.
	Types []FuncType

	Imports []ImportEntry
	Funcs   []uint32 // type index per local function, parallel to Code
	Exports []ExportEntry
	Code    []CodeEntry // parallel to Funcs
}

// FuncType is a wasm function signature: zero or more parameter value
// types, and zero or one result (wasm 1.0 has no multi-value returns).
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// ImportEntry describes one imported function. Kind is always the
// function-import kind (0x00); this compiler never imports tables,
// memories or globals.
type ImportEntry struct {
	Module  string
	Field   string
	TypeIdx uint32
}

const exportKindFunc = 0x00

// ExportEntry describes one exported function and its absolute
// function index (imports.count + local index, per the IET binding
// rule).
type ExportEntry struct {
	Name  string
	Index uint32
}

// LocalGroup is one run of same-typed locals, the grouping wasm's
// binary format requires in the Code section's local declarations.
type LocalGroup struct {
	Count uint32
	Type  ValType
}

// CodeEntry is one function body: its local declarations (beyond the
// parameters, which are always locals 0..K-1 implicitly) followed by
// the instruction bytes, already terminated with the function's final
// 0x0B (end) opcode.
type CodeEntry struct {
	Locals []LocalGroup
	Body   []byte
}

const (
	secType     = 1
	secImport   = 2
	secFunction = 3
	secExport   = 7
	secCode     = 10
)

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6D} // "\0asm"
var wasmVersion = []byte{0x01, 0x00, 0x00, 0x00}

// Encode serializes m into a complete wasm binary module.
func (m *Module) Encode() []byte {
	out := append([]byte{}, wasmMagic...)
	out = append(out, wasmVersion...)
	out = appendSection(out, secType, m.encodeTypeSection())
	out = appendSection(out, secImport, m.encodeImportSection())
	out = appendSection(out, secFunction, m.encodeFunctionSection())
	out = appendSection(out, secExport, m.encodeExportSection())
	out = appendSection(out, secCode, m.encodeCodeSection())
	return out
}

// appendSection writes id and a LEB128 length prefix ahead of payload,
// unless payload is empty (a zero-entry vector), per the rule that
// sections with zero entries are omitted entirely.
func appendSection(out []byte, id byte, payload []byte) []byte {
	if len(payload) == 0 {
		return out
	}
	out = append(out, id)
	out = putUvarint(out, uint64(len(payload)))
	return append(out, payload...)
}

func encodeName(s string) []byte {
	buf := putUvarint(nil, uint64(len(s)))
	return append(buf, []byte(s)...)
}

func encodeFuncType(ft FuncType) []byte {
	buf := []byte{0x60}
	buf = putUvarint(buf, uint64(len(ft.Params)))
	for _, p := range ft.Params {
		buf = append(buf, byte(p))
	}
	buf = putUvarint(buf, uint64(len(ft.Results)))
	for _, r := range ft.Results {
		buf = append(buf, byte(r))
	}
	return buf
}

func (m *Module) encodeTypeSection() []byte {
	if len(m.Types) == 0 {
		return nil
	}
	buf := putUvarint(nil, uint64(len(m.Types)))
	for _, ft := range m.Types {
		buf = append(buf, encodeFuncType(ft)...)
	}
	return buf
}

func (m *Module) encodeImportSection() []byte {
	if len(m.Imports) == 0 {
		return nil
	}
	buf := putUvarint(nil, uint64(len(m.Imports)))
	for _, im := range m.Imports {
		buf = append(buf, encodeName(im.Module)...)
		buf = append(buf, encodeName(im.Field)...)
		buf = append(buf, exportKindFunc) // import kind byte, same tag space
		buf = putUvarint(buf, uint64(im.TypeIdx))
	}
	return buf
}

func (m *Module) encodeFunctionSection() []byte {
	if len(m.Funcs) == 0 {
		return nil
	}
	buf := putUvarint(nil, uint64(len(m.Funcs)))
	for _, idx := range m.Funcs {
		buf = putUvarint(buf, uint64(idx))
	}
	return buf
}

func (m *Module) encodeExportSection() []byte {
	if len(m.Exports) == 0 {
		return nil
	}
	buf := putUvarint(nil, uint64(len(m.Exports)))
	for _, ex := range m.Exports {
		buf = append(buf, encodeName(ex.Name)...)
		buf = append(buf, exportKindFunc)
		buf = putUvarint(buf, uint64(ex.Index))
	}
	return buf
}

func (m *Module) encodeCodeSection() []byte {
	if len(m.Code) == 0 {
		return nil
	}
	buf := putUvarint(nil, uint64(len(m.Code)))
	for _, c := range m.Code {
		body := putUvarint(nil, uint64(len(c.Locals)))
		for _, lg := range c.Locals {
			body = putUvarint(body, uint64(lg.Count))
			body = append(body, byte(lg.Type))
		}
		body = append(body, c.Body...)
		buf = putUvarint(buf, uint64(len(body)))
		buf = append(buf, body...)
	}
	return buf
}
