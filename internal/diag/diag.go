// Package diag is the compiler's diagnostic sink: every stage (lexer,
// parser, analyzer, code generator) reports through it instead of
// aborting, collecting every diagnostic from a compile before the driver
// decides whether to continue.
package diag

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/gmofishsauce/emberc/internal/token"
)

// Kind tags which compilation stage raised a diagnostic, and selects its
// color when rendered to a terminal.
type Kind string

const (
	IO       Kind = "io"
	Lexical  Kind = "lexical"
	Syntax   Kind = "syntactic"
	Semantic Kind = "semantic"
	Codegen  Kind = "codegen"
)

var kindColor = map[Kind]*color.Color{
	IO:       color.New(color.FgRed, color.Bold),
	Lexical:  color.New(color.FgYellow),
	Syntax:   color.New(color.FgYellow, color.Bold),
	Semantic: color.New(color.FgRed),
	Codegen:  color.New(color.FgMagenta),
}

// Diagnostic is one reported problem: a kind, an optional source
// position, and a rendered message.
type Diagnostic struct {
	Kind    Kind
	File    string
	Pos     token.Position
	Message string
}

// Sink collects diagnostics across a compile. It never aborts scanning
// or analysis itself; the driver decides whether accumulated errors
// prevent moving to the next stage, per the exit-code table in
// cmd/emberc.
type Sink struct {
	File  string
	diags []Diagnostic
}

// New returns an empty Sink reporting positions relative to file.
func New(file string) *Sink {
	return &Sink{File: file}
}

// Report records a diagnostic at pos.
func (s *Sink) Report(kind Kind, pos token.Position, format string, args ...interface{}) {
	s.diags = append(s.diags, Diagnostic{
		Kind: kind, File: s.File, Pos: pos,
		Message: fmt.Sprintf(format, args...),
	})
}

// ReportFile records a diagnostic with no source position (e.g. an I/O
// failure reading the input file).
func (s *Sink) ReportFile(kind Kind, format string, args ...interface{}) {
	s.diags = append(s.diags, Diagnostic{
		Kind: kind, File: s.File,
		Message: fmt.Sprintf(format, args...),
	})
}

// Diagnostics returns every diagnostic collected so far, in report order.
func (s *Sink) Diagnostics() []Diagnostic { return s.diags }

// HasKind reports whether any diagnostic of the given kind was recorded.
func (s *Sink) HasKind(kind Kind) bool {
	for _, d := range s.diags {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// Empty reports whether no diagnostics were recorded at all.
func (s *Sink) Empty() bool { return len(s.diags) == 0 }

// Sort orders diagnostics by position for stable, readable output;
// file-level diagnostics (no position) sort first.
func (s *Sink) Sort() {
	sort.SliceStable(s.diags, func(i, j int) bool {
		a, b := s.diags[i], s.diags[j]
		if a.Pos.StartLine != b.Pos.StartLine {
			return a.Pos.StartLine < b.Pos.StartLine
		}
		return a.Pos.StartColumn < b.Pos.StartColumn
	})
}

// Render writes every diagnostic to w as "<file>:<line>:<col>: <kind>:
// <message>", colorizing the kind label when w supports it.
func (s *Sink) Render(w io.Writer) {
	for _, d := range s.diags {
		c := kindColor[d.Kind]
		label := string(d.Kind)
		if c != nil {
			label = c.Sprint(label)
		}
		if d.Pos == (token.Position{}) {
			fmt.Fprintf(w, "%s: %s: %s\n", d.File, label, d.Message)
			continue
		}
		fmt.Fprintf(w, "%s:%s: %s: %s\n", d.File, d.Pos, label, d.Message)
	}
}
