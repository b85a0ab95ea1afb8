// Package lexer turns Ember source text into a token stream: CharStream
// does the buffered rune-level scanning, Lexer assembles tokens on top of
// it.
package lexer

import (
	"bufio"
	"io"
	"unicode/utf8"
)

const tabWidth = 4

// extraWhitespace lists the non-ASCII runes treated as whitespace in
// addition to space, tab, CR and LF: NEL, LRM, RLM and LINE SEPARATOR.
var extraWhitespace = map[rune]bool{
	0x0085: true, // NEL
	0x200E: true, // LRM
	0x200F: true, // RLM
	0x2028: true, // LINE SEPARATOR
}

// CharStream is a buffered, position-tracking rune reader. It mirrors the
// teacher's bufio.Reader-based peek/peekN/advance scanning, generalized
// from bytes to runes since source text is UTF-8.
type CharStream struct {
	r    *bufio.Reader
	line int
	col  int
	off  int

	// peeked holds runes read ahead of the cursor that next() hasn't
	// consumed yet, in order. peekRune(n) grows this buffer lazily.
	peeked    []rune
	peekedErr error

	atEOF bool
}

// NewCharStream wraps src for rune-at-a-time scanning starting at 1:1.
func NewCharStream(src io.Reader) *CharStream {
	return &CharStream{
		r:    bufio.NewReader(src),
		line: 1,
		col:  1,
	}
}

// fill ensures at least n+1 runes are buffered in peeked (or EOF is
// recorded), growing the lookahead one rune at a time.
func (c *CharStream) fill(n int) {
	for len(c.peeked) <= n && c.peekedErr == nil {
		r, _, err := c.r.ReadRune()
		if err != nil {
			c.peekedErr = err
			return
		}
		c.peeked = append(c.peeked, r)
	}
}

// Peek returns the rune under the cursor without consuming it, and false
// at end of input.
func (c *CharStream) Peek() (rune, bool) {
	return c.PeekN(0)
}

// PeekN returns the rune n positions ahead of the cursor (0 is Peek),
// and false if that position is at or past end of input.
func (c *CharStream) PeekN(n int) (rune, bool) {
	c.fill(n)
	if n < len(c.peeked) {
		return c.peeked[n], true
	}
	return 0, false
}

// Next consumes and returns the rune under the cursor, advancing line/
// column bookkeeping. It returns false at end of input, a sticky
// condition: every call after the first EOF also returns false.
func (c *CharStream) Next() (rune, bool) {
	c.fill(0)
	if len(c.peeked) == 0 {
		c.atEOF = true
		return 0, false
	}
	r := c.peeked[0]
	c.peeked = c.peeked[1:]
	c.advancePos(r)
	return r, true
}

func (c *CharStream) advancePos(r rune) {
	c.off += utf8.RuneLen(r)
	switch {
	case r == '\n':
		c.line++
		c.col = 1
	case r == '\t':
		c.col += tabWidth
	default:
		c.col++
	}
}

// AtEOF reports whether the stream has been observed to be exhausted.
func (c *CharStream) AtEOF() bool {
	if len(c.peeked) > 0 {
		return false
	}
	c.fill(0)
	return len(c.peeked) == 0
}

// Line, Column and Offset report the cursor's current position.
func (c *CharStream) Line() int   { return c.line }
func (c *CharStream) Column() int { return c.col }
func (c *CharStream) Offset() int { return c.off }

// IsWhitespace reports whether r is one of the whitespace runes this
// lexer skips between tokens: space, tab, CR, LF, or one of the Unicode
// format/separator runes in extraWhitespace.
func IsWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return extraWhitespace[r]
}
