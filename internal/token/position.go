// Package token defines the lexical token representation shared by the
// lexer, parser and diagnostic sink: source positions, token kinds, and the
// typed scalar payload literals carry.
package token

import "fmt"

// Position is a half-open span [Start, End) in the source file, tracked both
// as a byte offset and as a visible line/column pair. Tabs widen a column by
// 4; every other rune widens it by 1.
type Position struct {
	StartLine   int
	StartColumn int
	StartOffset int
	EndLine     int
	EndColumn   int
	EndOffset   int
}

// String renders the start line/column as "<line>:<col>", the form every
// diagnostic message prefixes onto its file name.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.StartLine, p.StartColumn)
}

// Join returns the smallest position spanning both p and q.
func (p Position) Join(q Position) Position {
	joined := p
	if q.StartLine < joined.StartLine || (q.StartLine == joined.StartLine && q.StartColumn < joined.StartColumn) {
		joined.StartLine = q.StartLine
		joined.StartColumn = q.StartColumn
		joined.StartOffset = q.StartOffset
	}
	if q.EndLine > joined.EndLine || (q.EndLine == joined.EndLine && q.EndColumn > joined.EndColumn) {
		joined.EndLine = q.EndLine
		joined.EndColumn = q.EndColumn
		joined.EndOffset = q.EndOffset
	}
	return joined
}
