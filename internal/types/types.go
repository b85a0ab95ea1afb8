// Package types defines the semantic type system the analyzer resolves
// AST type annotations into: scalar defaults, function signatures,
// tuples, structs/tuple-structs, and references.
package types

import (
	"fmt"
	"strings"
)

// Kind tags which Type variant a value holds.
type Kind int

const (
	// Default covers every built-in scalar: bool, char, str, the ix/ux
	// integer family, f32/f64, and unit (the empty tuple).
	Default Kind = iota
	Func
	Tuple
	Struct
	TupleStruct
	Reference
)

// Type is the single representation for every semantic type. Which
// fields are meaningful is selected by Kind, mirroring the teacher's
// single-struct-with-Kind-tag shape.
type Type struct {
	Kind Kind

	// Default
	Name string // "bool", "char", "str", "i8".."i64", "u8".."u64", "f32", "f64", "()"

	// Func
	Params  []*Type
	Returns *Type

	// Tuple
	Elems []*Type

	// Struct / TupleStruct
	StructName string
	Fields     []Field     // Struct: named fields in declaration order
	TupleElems []*Type     // TupleStruct: positional element types

	// Reference
	Mutable bool
	Pointee *Type
}

// Field is one named field of a Struct type.
type Field struct {
	Name string
	Type *Type
}

// aliases maps surface spellings to their canonical underlying Default
// name: usize/isize are u64/i64 in every respect, including which wasm
// opcode variant (signed vs. unsigned) operations on them select.
var aliases = map[string]string{
	"usize": "u64",
	"isize": "i64",
}

// builtinNames is the closed set of scalar type names resolvable without
// consulting any scope.
var builtinNames = map[string]bool{
	"bool": true, "char": true, "str": true,
	"i8": true, "i16": true, "i32": true, "i64": true,
	"u8": true, "u16": true, "u32": true, "u64": true,
	"f32": true, "f64": true,
	"()": true,
}

// Canonicalize resolves a type-name alias (usize/isize) to its
// underlying Default spelling; every other name passes through unchanged.
func Canonicalize(name string) string {
	if canon, ok := aliases[name]; ok {
		return canon
	}
	return name
}

// LookupBuiltin returns the Default type for name, or nil if name is not
// one of the built-in scalar names (after alias resolution).
func LookupBuiltin(name string) *Type {
	canon := Canonicalize(name)
	if !builtinNames[canon] {
		return nil
	}
	return &Type{Kind: Default, Name: canon}
}

// Unit is the empty tuple, the type of a block or statement with no
// trailing expression.
func Unit() *Type { return &Type{Kind: Default, Name: "()"} }

// IsInteger reports whether t is one of the i8..i64/u8..u64 scalar types.
func (t *Type) IsInteger() bool {
	if t == nil || t.Kind != Default {
		return false
	}
	switch t.Name {
	case "i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64":
		return true
	}
	return false
}

// IsUnsigned reports whether t is one of the u8..u64 scalar types. This
// is what selects the unsigned wasm opcode variant for division,
// remainder and ordering comparisons.
func (t *Type) IsUnsigned() bool {
	if t == nil || t.Kind != Default {
		return false
	}
	switch t.Name {
	case "u8", "u16", "u32", "u64":
		return true
	}
	return false
}

// IsFloat reports whether t is f32 or f64.
func (t *Type) IsFloat() bool {
	return t != nil && t.Kind == Default && (t.Name == "f32" || t.Name == "f64")
}

// Equal implements the type-equality rule: Tuple, Reference, and scalar
// Default types compare structurally (by shape); Struct and TupleStruct
// compare nominally (by declared name only, since two structs with
// identical field layouts are still distinct types).
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case Default:
		return Canonicalize(t.Name) == Canonicalize(other.Name)
	case Reference:
		return t.Mutable == other.Mutable && t.Pointee.Equal(other.Pointee)
	case Tuple:
		if len(t.Elems) != len(other.Elems) {
			return false
		}
		for i := range t.Elems {
			if !t.Elems[i].Equal(other.Elems[i]) {
				return false
			}
		}
		return true
	case Func:
		if len(t.Params) != len(other.Params) || !t.Returns.Equal(other.Returns) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(other.Params[i]) {
				return false
			}
		}
		return true
	case Struct, TupleStruct:
		return t.StructName == other.StructName
	default:
		return false
	}
}

// String renders a human-readable rendition of t for diagnostics.
func (t *Type) String() string {
	if t == nil {
		return "<unknown>"
	}
	switch t.Kind {
	case Default:
		return t.Name
	case Reference:
		if t.Mutable {
			return "&mut " + t.Pointee.String()
		}
		return "&" + t.Pointee.String()
	case Tuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case Func:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), t.Returns.String())
	case Struct, TupleStruct:
		return t.StructName
	default:
		return "<invalid>"
	}
}
