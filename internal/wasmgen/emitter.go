package wasmgen

import (
	"math"

	"github.com/gmofishsauce/emberc/internal/ast"
)

// Emitter accumulates one function body's instruction bytes, mirroring
// the teacher's Emitter: a thin wrapper around an output sink with a
// handful of generic Op* helpers and then one named method per
// instruction built on top of them.
type Emitter struct {
	buf []byte
}

// NewEmitter returns an Emitter with an empty body.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Bytes returns the accumulated body bytes.
func (e *Emitter) Bytes() []byte { return e.buf }

// Op0 emits a zero-immediate opcode.
func (e *Emitter) Op0(op byte) {
	e.buf = append(e.buf, op)
}

// OpU emits an opcode followed by an unsigned LEB128 immediate (local/
// global/function indices, branch depths).
func (e *Emitter) OpU(op byte, n uint64) {
	e.buf = append(e.buf, op)
	e.buf = putUvarint(e.buf, n)
}

// OpBlockType emits a structured-control opcode (block/loop/if) followed
// by its block type; every block in this compiler produces either no
// value or exactly one, so blockType is either blockTypeVoid or the
// single-result ValType's own byte encoding.
func (e *Emitter) OpBlockType(op byte, blockType byte) {
	e.buf = append(e.buf, op, blockType)
}

// --- structured control ---

func (e *Emitter) Block(result byte)    { e.OpBlockType(opBlock, result) }
func (e *Emitter) Loop(result byte)     { e.OpBlockType(opLoop, result) }
func (e *Emitter) If(result byte)       { e.OpBlockType(opIf, result) }
func (e *Emitter) Else()                { e.Op0(opElse) }
func (e *Emitter) End()                 { e.Op0(opEnd) }
func (e *Emitter) Br(depth uint32)      { e.OpU(opBr, uint64(depth)) }
func (e *Emitter) BrIf(depth uint32)    { e.OpU(opBrIf, uint64(depth)) }
func (e *Emitter) Return()              { e.Op0(opReturn) }
func (e *Emitter) Call(funcIdx uint32)  { e.OpU(opCall, uint64(funcIdx)) }
func (e *Emitter) Drop()                { e.Op0(opDrop) }
func (e *Emitter) Unreachable()         { e.Op0(opUnreachable) }

// --- locals/globals ---

func (e *Emitter) LocalGet(idx uint32)  { e.OpU(opLocalGet, uint64(idx)) }
func (e *Emitter) LocalSet(idx uint32)  { e.OpU(opLocalSet, uint64(idx)) }
func (e *Emitter) LocalTee(idx uint32)  { e.OpU(opLocalTee, uint64(idx)) }
func (e *Emitter) GlobalGet(idx uint32) { e.OpU(opGlobalGet, uint64(idx)) }
func (e *Emitter) GlobalSet(idx uint32) { e.OpU(opGlobalSet, uint64(idx)) }

// --- constants ---

func (e *Emitter) I32Const(n int32) {
	e.buf = append(e.buf, constOpcode(ValI32))
	e.buf = putVarint(e.buf, int64(n))
}

func (e *Emitter) I64Const(n int64) {
	e.buf = append(e.buf, constOpcode(ValI64))
	e.buf = putVarint(e.buf, n)
}

// F32Const emits the IEEE-754 bit pattern for n, little-endian, per the
// float-literal lowering rule: floats never go through an integer-push
// pseudo-instruction.
func (e *Emitter) F32Const(n float32) {
	e.buf = append(e.buf, constOpcode(ValF32))
	bits := math.Float32bits(n)
	e.buf = append(e.buf, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
}

// F64Const emits the IEEE-754 bit pattern for n, little-endian.
func (e *Emitter) F64Const(n float64) {
	e.buf = append(e.buf, constOpcode(ValF64))
	bits := math.Float64bits(n)
	for i := 0; i < 8; i++ {
		e.buf = append(e.buf, byte(bits>>(8*i)))
	}
}

// --- arithmetic/comparison ---

// Binary emits the opcode for op at value type vt, selecting the
// unsigned row when unsigned is true. Returns false if op has no
// defined encoding at vt (bitwise ops on floats).
func (e *Emitter) Binary(op ast.BinaryOp, vt ValType, unsigned bool) bool {
	code, ok := binaryOpcode(op, vt, unsigned)
	if !ok {
		return false
	}
	e.Op0(code)
	return true
}

// Eqz emits the integer-zero-test opcode for vt, used both to lower "!"
// on a bool operand and to invert a while-loop condition before br_if.
func (e *Emitter) Eqz(vt ValType) bool {
	code, ok := eqzOpcode(vt)
	if !ok {
		return false
	}
	e.Op0(code)
	return true
}
