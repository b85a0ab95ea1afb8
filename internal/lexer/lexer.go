package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gmofishsauce/emberc/internal/token"
)

// Lexer assembles token.Tokens from a CharStream. It never aborts on a
// malformed token: a bad literal or an unrecognized byte produces a
// token.ERROR token carrying the diagnostic text, and scanning continues
// from the next rune, mirroring the teacher's peek/advance dispatch loop
// in ylex/lexer.go but never calling os.Exit.
type Lexer struct {
	s *CharStream

	// bracketDepth tracks (), [], {} nesting so callers needing "did this
	// expression close cleanly" can ask without re-scanning.
	bracketDepth int
}

// New wraps a CharStream for token scanning.
func New(s *CharStream) *Lexer {
	return &Lexer{s: s}
}

func (lx *Lexer) pos(startLine, startCol, startOff int) token.Position {
	return token.Position{
		StartLine: startLine, StartColumn: startCol, StartOffset: startOff,
		EndLine: lx.s.Line(), EndColumn: lx.s.Column(), EndOffset: lx.s.Offset(),
	}
}

// Next scans and returns the next token, skipping whitespace and comments
// first. The final token returned for any input is token.EOF, repeated on
// every subsequent call.
func (lx *Lexer) Next() token.Token {
	if err := lx.skipWhitespaceAndComments(); err != nil {
		return lx.errTok(err.Error())
	}

	startLine, startCol, startOff := lx.s.Line(), lx.s.Column(), lx.s.Offset()
	r, ok := lx.s.Peek()
	if !ok {
		return token.Token{Kind: token.EOF, Pos: lx.pos(startLine, startCol, startOff)}
	}

	switch {
	case isIdentStart(r):
		return lx.scanIdentOrKeyword(startLine, startCol, startOff)
	case isDigit(r):
		return lx.scanNumber(startLine, startCol, startOff)
	case r == '"':
		return lx.scanString(startLine, startCol, startOff, false)
	case r == '\'':
		return lx.scanChar(startLine, startCol, startOff, false)
	default:
		return lx.scanOperator(startLine, startCol, startOff)
	}
}

func (lx *Lexer) errTok(msg string) token.Token {
	line, col, off := lx.s.Line(), lx.s.Column(), lx.s.Offset()
	return token.Token{
		Kind:    token.ERROR,
		ErrText: msg,
		Pos:     lx.pos(line, col, off),
	}
}

// skipWhitespaceAndComments consumes whitespace, "//" line comments, and
// properly-nested "/* */" block comments. An unterminated block comment
// is reported as an error but does not abort the scan: the stream is left
// at EOF.
func (lx *Lexer) skipWhitespaceAndComments() error {
	for {
		r, ok := lx.s.Peek()
		if !ok {
			return nil
		}
		if IsWhitespace(r) {
			lx.s.Next()
			continue
		}
		if r == '/' {
			r2, ok2 := lx.s.PeekN(1)
			if ok2 && r2 == '/' {
				for {
					r, ok := lx.s.Peek()
					if !ok || r == '\n' {
						break
					}
					lx.s.Next()
				}
				continue
			}
			if ok2 && r2 == '*' {
				lx.s.Next()
				lx.s.Next()
				depth := 1
				for depth > 0 {
					r, ok := lx.s.Peek()
					if !ok {
						return fmt.Errorf("unterminated block comment")
					}
					if r == '/' {
						if r2, ok2 := lx.s.PeekN(1); ok2 && r2 == '*' {
							lx.s.Next()
							lx.s.Next()
							depth++
							continue
						}
					}
					if r == '*' {
						if r2, ok2 := lx.s.PeekN(1); ok2 && r2 == '/' {
							lx.s.Next()
							lx.s.Next()
							depth--
							continue
						}
					}
					lx.s.Next()
				}
				continue
			}
		}
		return nil
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func (lx *Lexer) scanIdentOrKeyword(startLine, startCol, startOff int) token.Token {
	var sb strings.Builder
	for {
		r, ok := lx.s.Peek()
		if !ok || !isIdentCont(r) {
			break
		}
		lx.s.Next()
		sb.WriteRune(r)
	}
	text := sb.String()

	// Raw identifier escape: r#ident lexes as plain identifier "ident"
	// unless ident is a reserved path root.
	if text == "r" {
		if r, ok := lx.s.Peek(); ok && r == '#' {
			if r2, ok2 := lx.s.PeekN(1); ok2 && isIdentStart(r2) {
				lx.s.Next() // consume '#'
				var raw strings.Builder
				for {
					r, ok := lx.s.Peek()
					if !ok || !isIdentCont(r) {
						break
					}
					lx.s.Next()
					raw.WriteRune(r)
				}
				ident := raw.String()
				pos := lx.pos(startLine, startCol, startOff)
				if token.IsReservedPathRoot(ident) {
					return token.Token{Kind: token.ERROR, Pos: pos,
						ErrText: fmt.Sprintf("%q cannot be used as a raw identifier", ident)}
				}
				return token.Token{Kind: token.IDENT, Text: ident, Pos: pos}
			}
		}
		if r, ok := lx.s.Peek(); ok && (r == '"' || r == '#') {
			return lx.scanRawString(startLine, startCol, startOff, false)
		}
	}
	if text == "b" {
		if r, ok := lx.s.Peek(); ok && r == '"' {
			return lx.scanString(startLine, startCol, startOff, true)
		}
		if r, ok := lx.s.Peek(); ok && r == '\'' {
			return lx.scanChar(startLine, startCol, startOff, true)
		}
	}
	if text == "br" {
		if r, ok := lx.s.Peek(); ok && (r == '"' || r == '#') {
			return lx.scanRawString(startLine, startCol, startOff, true)
		}
	}

	pos := lx.pos(startLine, startCol, startOff)
	switch text {
	case "true", "false":
		return token.Token{Kind: token.LITERAL, Text: text, Pos: pos,
			Scalar: &token.Scalar{Kind: token.ScalarBool, Bool: text == "true"}}
	}
	if k, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: k, Text: text, Pos: pos}
	}
	return token.Token{Kind: token.IDENT, Text: text, Pos: pos}
}

var intSuffixes = map[string]token.ScalarKind{
	"i8": token.ScalarI8, "i16": token.ScalarI16, "i32": token.ScalarI32, "i64": token.ScalarI64,
	"u8": token.ScalarU8, "u16": token.ScalarU16, "u32": token.ScalarU32, "u64": token.ScalarU64,
	"isize": token.ScalarI64, "usize": token.ScalarU64,
}

var floatSuffixes = map[string]token.ScalarKind{
	"f32": token.ScalarF32, "f64": token.ScalarF64,
}

// scanNumber scans an integer or floating-point literal: optional base
// prefix (0x/0o/0b), digits with '_' separators, an optional '.digits'
// fraction and/or exponent for floats, and an optional type suffix.
func (lx *Lexer) scanNumber(startLine, startCol, startOff int) token.Token {
	var digits strings.Builder
	base := 10
	if r, _ := lx.s.Peek(); r == '0' {
		if r2, ok2 := lx.s.PeekN(1); ok2 {
			switch r2 {
			case 'x', 'X':
				lx.s.Next()
				lx.s.Next()
				base = 16
			case 'o', 'O':
				lx.s.Next()
				lx.s.Next()
				base = 8
			case 'b', 'B':
				lx.s.Next()
				lx.s.Next()
				base = 2
			}
		}
	}

	readDigits := func(isDigitFn func(rune) bool) {
		for {
			r, ok := lx.s.Peek()
			if !ok {
				return
			}
			if r == '_' {
				lx.s.Next()
				continue
			}
			if !isDigitFn(r) {
				return
			}
			lx.s.Next()
			digits.WriteRune(r)
		}
	}

	switch base {
	case 16:
		readDigits(isHexDigit)
	case 8:
		readDigits(func(r rune) bool { return r >= '0' && r <= '7' })
	case 2:
		readDigits(func(r rune) bool { return r == '0' || r == '1' })
	default:
		readDigits(isDigit)
	}

	isFloat := false
	if base == 10 {
		if r, ok := lx.s.Peek(); ok && r == '.' {
			if r2, ok2 := lx.s.PeekN(1); ok2 && isDigit(r2) {
				isFloat = true
				digits.WriteRune('.')
				lx.s.Next()
				readDigits(isDigit)
			}
		}
		if r, ok := lx.s.Peek(); ok && (r == 'e' || r == 'E') {
			if r2, ok2 := lx.s.PeekN(1); ok2 && (isDigit(r2) || ((r2 == '+' || r2 == '-') && func() bool {
				r3, ok3 := lx.s.PeekN(2)
				return ok3 && isDigit(r3)
			}())) {
				isFloat = true
				digits.WriteRune('e')
				lx.s.Next()
				if r, _ := lx.s.Peek(); r == '+' || r == '-' {
					digits.WriteRune(r)
					lx.s.Next()
				}
				readDigits(isDigit)
			}
		}
	}

	suffix := lx.scanAlphaSuffix()
	pos := lx.pos(startLine, startCol, startOff)
	text := digits.String()

	if isFloat {
		if suffix != "" {
			if sk, ok := floatSuffixes[suffix]; ok {
				f, _ := strconv.ParseFloat(text, 64)
				return token.Token{Kind: token.LITERAL, Text: text, Pos: pos,
					Scalar: &token.Scalar{Kind: sk, Float: f}}
			}
			return token.Token{Kind: token.ERROR, Pos: pos, ErrText: fmt.Sprintf("invalid float suffix %q", suffix)}
		}
		f, _ := strconv.ParseFloat(text, 64)
		return token.Token{Kind: token.LITERAL, Text: text, Pos: pos,
			Scalar: &token.Scalar{Kind: token.ScalarF64, Float: f}}
	}

	if suffix != "" {
		if sk, ok := intSuffixes[suffix]; ok {
			return lx.makeIntToken(text, base, sk, pos)
		}
		if sk, ok := floatSuffixes[suffix]; ok {
			f, _ := strconv.ParseFloat(text, 64)
			return token.Token{Kind: token.LITERAL, Text: text, Pos: pos,
				Scalar: &token.Scalar{Kind: sk, Float: f}}
		}
		return token.Token{Kind: token.ERROR, Pos: pos, ErrText: fmt.Sprintf("invalid integer suffix %q", suffix)}
	}

	// No suffix: probe the smallest unsigned width the value fits in,
	// u8 -> u16 -> u32 -> u64, per the literal-typing rule.
	u, err := strconv.ParseUint(text, base, 64)
	if err != nil {
		return token.Token{Kind: token.ERROR, Pos: pos, ErrText: fmt.Sprintf("invalid integer literal %q: %v", text, err)}
	}
	var sk token.ScalarKind
	switch {
	case u <= 0xFF:
		sk = token.ScalarU8
	case u <= 0xFFFF:
		sk = token.ScalarU16
	case u <= 0xFFFFFFFF:
		sk = token.ScalarU32
	default:
		sk = token.ScalarU64
	}
	return token.Token{Kind: token.LITERAL, Text: text, Pos: pos,
		Scalar: &token.Scalar{Kind: sk, Uint: u}}
}

func (lx *Lexer) makeIntToken(text string, base int, sk token.ScalarKind, pos token.Position) token.Token {
	switch sk {
	case token.ScalarI8, token.ScalarI16, token.ScalarI32, token.ScalarI64:
		i, err := strconv.ParseInt(text, base, 64)
		if err != nil {
			return token.Token{Kind: token.ERROR, Pos: pos, ErrText: fmt.Sprintf("invalid integer literal %q: %v", text, err)}
		}
		return token.Token{Kind: token.LITERAL, Text: text, Pos: pos,
			Scalar: &token.Scalar{Kind: sk, Int: i}}
	default:
		u, err := strconv.ParseUint(text, base, 64)
		if err != nil {
			return token.Token{Kind: token.ERROR, Pos: pos, ErrText: fmt.Sprintf("invalid integer literal %q: %v", text, err)}
		}
		return token.Token{Kind: token.LITERAL, Text: text, Pos: pos,
			Scalar: &token.Scalar{Kind: sk, Uint: u}}
	}
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// scanAlphaSuffix greedily consumes a trailing identifier-like suffix
// (the i8/u32/f64/usize family) immediately following a numeric literal.
func (lx *Lexer) scanAlphaSuffix() string {
	var sb strings.Builder
	for {
		r, ok := lx.s.Peek()
		if !ok || !isIdentCont(r) {
			break
		}
		lx.s.Next()
		sb.WriteRune(r)
	}
	return sb.String()
}

// scanString scans a "..." string literal, or a b"..." byte string when
// isByte is true (the caller has already consumed the 'b' prefix).
// Escape sequences: \n \r \t \\ \0 \' \" \xNN \u{XXXXXX}.
func (lx *Lexer) scanString(startLine, startCol, startOff int, isByte bool) token.Token {
	lx.s.Next() // opening quote
	var sb strings.Builder
	for {
		r, ok := lx.s.Peek()
		if !ok {
			return token.Token{Kind: token.ERROR, Pos: lx.pos(startLine, startCol, startOff),
				ErrText: "unterminated string literal"}
		}
		if r == '"' {
			lx.s.Next()
			break
		}
		if r == '\\' {
			decoded, err := lx.scanEscape()
			if err != nil {
				return token.Token{Kind: token.ERROR, Pos: lx.pos(startLine, startCol, startOff), ErrText: err.Error()}
			}
			sb.WriteRune(decoded)
			continue
		}
		lx.s.Next()
		sb.WriteRune(r)
	}
	pos := lx.pos(startLine, startCol, startOff)
	if isByte {
		return token.Token{Kind: token.LITERAL, Text: sb.String(), Pos: pos,
			Scalar: &token.Scalar{Kind: token.ScalarBytes, Bytes: []byte(sb.String())}}
	}
	return token.Token{Kind: token.LITERAL, Text: sb.String(), Pos: pos,
		Scalar: &token.Scalar{Kind: token.ScalarText, Text: sb.String()}}
}

// scanRawString scans r"..." or r#"..."# (any number of '#' fences, which
// must match on open and close); no escape processing happens inside.
func (lx *Lexer) scanRawString(startLine, startCol, startOff int, isByte bool) token.Token {
	fences := 0
	for {
		r, ok := lx.s.Peek()
		if !ok || r != '#' {
			break
		}
		lx.s.Next()
		fences++
	}
	if r, ok := lx.s.Peek(); !ok || r != '"' {
		return token.Token{Kind: token.ERROR, Pos: lx.pos(startLine, startCol, startOff),
			ErrText: "malformed raw string: expected opening quote"}
	}
	lx.s.Next()

	var sb strings.Builder
	for {
		r, ok := lx.s.Peek()
		if !ok {
			return token.Token{Kind: token.ERROR, Pos: lx.pos(startLine, startCol, startOff),
				ErrText: "unterminated raw string literal"}
		}
		if r == '"' {
			// Tentatively close: must be followed by exactly `fences` '#'s.
			save := make([]rune, 0, fences)
			matched := true
			for i := 0; i < fences; i++ {
				r2, ok2 := lx.s.PeekN(1 + i)
				if !ok2 || r2 != '#' {
					matched = false
					break
				}
				save = append(save, r2)
			}
			if matched {
				for i := 0; i < fences+1; i++ {
					lx.s.Next()
				}
				break
			}
		}
		lx.s.Next()
		sb.WriteRune(r)
	}
	pos := lx.pos(startLine, startCol, startOff)
	if isByte {
		return token.Token{Kind: token.LITERAL, Text: sb.String(), Pos: pos,
			Scalar: &token.Scalar{Kind: token.ScalarBytes, Bytes: []byte(sb.String())}}
	}
	return token.Token{Kind: token.LITERAL, Text: sb.String(), Pos: pos,
		Scalar: &token.Scalar{Kind: token.ScalarText, Text: sb.String()}}
}

func (lx *Lexer) scanChar(startLine, startCol, startOff int, isByte bool) token.Token {
	lx.s.Next() // opening quote
	r, ok := lx.s.Peek()
	if !ok {
		return token.Token{Kind: token.ERROR, Pos: lx.pos(startLine, startCol, startOff), ErrText: "unterminated char literal"}
	}
	var value rune
	if r == '\\' {
		decoded, err := lx.scanEscape()
		if err != nil {
			return token.Token{Kind: token.ERROR, Pos: lx.pos(startLine, startCol, startOff), ErrText: err.Error()}
		}
		value = decoded
	} else {
		lx.s.Next()
		value = r
	}
	closing, ok := lx.s.Peek()
	if !ok || closing != '\'' {
		return token.Token{Kind: token.ERROR, Pos: lx.pos(startLine, startCol, startOff), ErrText: "char literal must contain exactly one character"}
	}
	lx.s.Next()
	pos := lx.pos(startLine, startCol, startOff)
	if isByte {
		return token.Token{Kind: token.LITERAL, Text: string(value), Pos: pos,
			Scalar: &token.Scalar{Kind: token.ScalarU8, Uint: uint64(value)}}
	}
	return token.Token{Kind: token.LITERAL, Text: string(value), Pos: pos,
		Scalar: &token.Scalar{Kind: token.ScalarChar, Text: string(value)}}
}

// scanEscape decodes a single backslash escape sequence with the cursor
// on the backslash, consuming it and returning the decoded rune.
func (lx *Lexer) scanEscape() (rune, error) {
	lx.s.Next() // consume '\'
	r, ok := lx.s.Next()
	if !ok {
		return 0, fmt.Errorf("unterminated escape sequence")
	}
	switch r {
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case '\\':
		return '\\', nil
	case '0':
		return 0, nil
	case '\'':
		return '\'', nil
	case '"':
		return '"', nil
	case 'x':
		var sb strings.Builder
		for i := 0; i < 2; i++ {
			r, ok := lx.s.Next()
			if !ok || !isHexDigit(r) {
				return 0, fmt.Errorf("invalid \\x escape")
			}
			sb.WriteRune(r)
		}
		v, _ := strconv.ParseInt(sb.String(), 16, 32)
		return rune(v), nil
	case 'u':
		open, ok := lx.s.Next()
		if !ok || open != '{' {
			return 0, fmt.Errorf("invalid \\u escape: expected '{'")
		}
		var sb strings.Builder
		for {
			r, ok := lx.s.Next()
			if !ok {
				return 0, fmt.Errorf("unterminated \\u escape")
			}
			if r == '}' {
				break
			}
			if !isHexDigit(r) {
				return 0, fmt.Errorf("invalid \\u escape digit %q", r)
			}
			sb.WriteRune(r)
		}
		v, err := strconv.ParseInt(sb.String(), 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid \\u escape: %v", err)
		}
		return rune(v), nil
	default:
		return 0, fmt.Errorf("unknown escape sequence \\%c", r)
	}
}

// punctTable is checked longest-spelling-first so e.g. "<<=" is matched
// before "<<" before "<".
var punctTable = []struct {
	spelling string
	kind     token.Kind
}{
	{"<<=", token.SHL_EQ}, {">>=", token.SHR_EQ},
	{"==", token.EQEQ}, {"!=", token.NE}, {"<=", token.LE}, {">=", token.GE},
	{"&&", token.ANDAND}, {"||", token.OROR},
	{"+=", token.PLUS_EQ}, {"-=", token.MINUS_EQ}, {"*=", token.STAR_EQ},
	{"/=", token.SLASH_EQ}, {"%=", token.PERCENT_EQ}, {"&=", token.AMP_EQ},
	{"|=", token.PIPE_EQ}, {"^=", token.CARET_EQ},
	{"<<", token.SHL}, {">>", token.SHR}, {"->", token.ARROW}, {"..", token.DOTDOT},
	{"=", token.ASSIGN}, {"<", token.LT}, {">", token.GT},
	{"+", token.PLUS}, {"-", token.MINUS}, {"*", token.STAR}, {"/", token.SLASH},
	{"%", token.PERCENT}, {"&", token.AMP}, {"|", token.PIPE}, {"^", token.CARET},
	{"!", token.BANG}, {".", token.DOT}, {",", token.COMMA}, {";", token.SEMI},
	{":", token.COLON}, {"@", token.AT},
	{"(", token.LPAREN}, {")", token.RPAREN},
	{"[", token.LBRACKET}, {"]", token.RBRACKET},
	{"{", token.LBRACE}, {"}", token.RBRACE},
}

func (lx *Lexer) scanOperator(startLine, startCol, startOff int) token.Token {
	var candidate strings.Builder
	const maxPunctLen = 3
	runes := make([]rune, 0, maxPunctLen)
	for i := 0; i < maxPunctLen; i++ {
		r, ok := lx.s.PeekN(i)
		if !ok {
			break
		}
		runes = append(runes, r)
	}
	for _, p := range punctTable {
		if len(p.spelling) > len(runes) {
			continue
		}
		candidate.Reset()
		for i := 0; i < len(p.spelling); i++ {
			candidate.WriteRune(runes[i])
		}
		if candidate.String() == p.spelling {
			for range p.spelling {
				lx.s.Next()
			}
			pos := lx.pos(startLine, startCol, startOff)
			lx.trackBracket(p.kind)
			return token.Token{Kind: p.kind, Text: p.spelling, Pos: pos}
		}
	}

	r, _ := lx.s.Next()
	return token.Token{Kind: token.ERROR, Pos: lx.pos(startLine, startCol, startOff),
		ErrText: fmt.Sprintf("unexpected character %q", r)}
}

func (lx *Lexer) trackBracket(k token.Kind) {
	switch k {
	case token.LPAREN, token.LBRACKET, token.LBRACE:
		lx.bracketDepth++
	case token.RPAREN, token.RBRACKET, token.RBRACE:
		lx.bracketDepth--
	}
}

// BracketDepth returns the current (possibly negative, on unbalanced
// input) nesting depth of (), [] and {} observed so far.
func (lx *Lexer) BracketDepth() int { return lx.bracketDepth }
