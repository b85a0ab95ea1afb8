// Package iet loads the Import/Export Table: a small JSON document
// naming the host functions a compiled module imports and the local
// functions it must export, each tagged with an Ember-level signature.
package iet

import (
	"encoding/json"
	"fmt"
	"os"
)

// TypeSig is a signature as spelled in the JSON document: a list of
// parameter type tags and zero-or-one return type tag.
type TypeSig struct {
	Params []string `json:"params"`
	Return []string `json:"return"`
}

// Import is one host function the module expects to be linked against.
// Module/Field are the wasm import's two-part name; Associate is the
// Ember-level name the compiler binds calls to.
type Import struct {
	Module    string  `json:"module"`
	Field     string  `json:"field"`
	Associate string  `json:"associate"`
	Type      TypeSig `json:"type"`
}

// Export is one locally-defined function that must appear under Field
// in the compiled module's export section.
type Export struct {
	Field     string  `json:"field"`
	Associate string  `json:"associate"`
	Type      TypeSig `json:"type"`
}

// Table is the full parsed document: import order fixes import function
// indices 0..I-1, per the binding rule the emitter applies.
type Table struct {
	Imports []Import `json:"imports"`
	Exports []Export `json:"exports"`
}

// validTags is the closed set of type spellings the JSON document may
// use; "str" and "void" are accepted here even though the emitter
// cannot lower every one of them to a wasm value type (str has none),
// so a document naming them is well-formed JSON but may still be
// rejected later as a code-gen error once the emitter tries to use it.
var validTags = map[string]bool{
	"bool": true, "char": true, "str": true, "void": true,
	"u8": true, "u16": true, "u32": true, "u64": true,
	"i8": true, "i16": true, "i32": true, "i64": true,
	"f32": true, "f64": true,
}

// LoadFile reads and validates the IET document at path.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading IET file: %w", err)
	}
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing IET JSON: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) validate() error {
	for i, im := range t.Imports {
		if im.Module == "" || im.Field == "" || im.Associate == "" {
			return fmt.Errorf("import[%d]: module, field and associate are all required", i)
		}
		if err := im.Type.validate(); err != nil {
			return fmt.Errorf("import[%d] %q: %w", i, im.Field, err)
		}
	}
	for i, ex := range t.Exports {
		if ex.Field == "" || ex.Associate == "" {
			return fmt.Errorf("export[%d]: field and associate are both required", i)
		}
		if err := ex.Type.validate(); err != nil {
			return fmt.Errorf("export[%d] %q: %w", i, ex.Field, err)
		}
	}
	return nil
}

func (s TypeSig) validate() error {
	for _, p := range s.Params {
		if !validTags[p] {
			return fmt.Errorf("unknown param type tag %q", p)
		}
	}
	if len(s.Return) > 1 {
		return fmt.Errorf("wasm 1.0 functions return at most one value, got %d", len(s.Return))
	}
	for _, r := range s.Return {
		if !validTags[r] {
			return fmt.Errorf("unknown return type tag %q", r)
		}
	}
	return nil
}
