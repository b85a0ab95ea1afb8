package token

import "fmt"

// Kind tags a Token's lexical category. The family is closed: lexer,
// parser and diagnostics all switch over it exhaustively.
type Kind int

const (
	EOF Kind = iota
	ERROR
	IDENT
	LITERAL

	// Keywords (strict).
	FN
	STRUCT
	CONST
	LET
	MUT
	IF
	ELSE
	WHILE
	FOR
	LOOP
	BREAK
	CONTINUE
	RETURN
	REF

	// Keywords used as operators/contextual keywords.
	AS
	IN

	// Reserved path roots: words a raw identifier (r#ident) may not spell,
	// even though this language has no module system to resolve them
	// against.
	SELF_LOWER
	SELF_UPPER
	CRATE
	SUPER

	// Assignment-group operators (Pratt level 1).
	ASSIGN
	PLUS_EQ
	MINUS_EQ
	STAR_EQ
	SLASH_EQ
	PERCENT_EQ
	AMP_EQ
	PIPE_EQ
	CARET_EQ
	SHL_EQ
	SHR_EQ

	// Logical.
	OROR
	ANDAND

	// Comparison.
	EQEQ
	NE
	LT
	GT
	LE
	GE

	// Bitwise.
	PIPE
	CARET
	AMP
	SHL
	SHR

	// Arithmetic.
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT

	// Unary / misc operators.
	BANG

	// Punctuation.
	DOT
	DOTDOT
	COMMA
	SEMI
	COLON
	ARROW
	AT
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE
)

var kindNames = map[Kind]string{
	EOF: "EOF", ERROR: "ERROR", IDENT: "IDENT", LITERAL: "LITERAL",
	FN: "fn", STRUCT: "struct", CONST: "const", LET: "let", MUT: "mut",
	IF: "if", ELSE: "else", WHILE: "while", FOR: "for", LOOP: "loop",
	BREAK: "break", CONTINUE: "continue", RETURN: "return", REF: "ref",
	AS: "as", IN: "in", SELF_LOWER: "self", SELF_UPPER: "Self",
	CRATE: "crate", SUPER: "super",
	ASSIGN: "=", PLUS_EQ: "+=", MINUS_EQ: "-=", STAR_EQ: "*=", SLASH_EQ: "/=",
	PERCENT_EQ: "%=", AMP_EQ: "&=", PIPE_EQ: "|=", CARET_EQ: "^=",
	SHL_EQ: "<<=", SHR_EQ: ">>=",
	OROR: "||", ANDAND: "&&",
	EQEQ: "==", NE: "!=", LT: "<", GT: ">", LE: "<=", GE: ">=",
	PIPE: "|", CARET: "^", AMP: "&", SHL: "<<", SHR: ">>",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	BANG: "!",
	DOT:  ".", DOTDOT: "..", COMMA: ",", SEMI: ";", COLON: ":", ARROW: "->",
	AT: "@", LPAREN: "(", RPAREN: ")", LBRACKET: "[", RBRACKET: "]",
	LBRACE: "{", RBRACE: "}",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// keywords maps keyword spellings to their Kind. Unexported: callers reach
// it only through LookupKeyword so nothing outside this file can mutate it.
var keywords = map[string]Kind{
	"fn": FN, "struct": STRUCT, "const": CONST, "let": LET, "mut": MUT,
	"if": IF, "else": ELSE, "while": WHILE, "for": FOR, "loop": LOOP,
	"break": BREAK, "continue": CONTINUE, "return": RETURN, "ref": REF,
	"as": AS, "in": IN,
	"self": SELF_LOWER, "Self": SELF_UPPER, "crate": CRATE, "super": SUPER,
}

// reservedPathRoots holds {crate, self, super, Self}: `r#ident` is a valid
// raw identifier unless ident is one of these.
var reservedPathRoots = map[string]bool{
	"crate": true, "self": true, "super": true, "Self": true,
}

// LookupKeyword returns the Kind for a keyword spelling and whether it is
// one at all. "true"/"false" are deliberately absent: they lex as boolean
// Literal tokens, not a keyword Kind.
func LookupKeyword(text string) (Kind, bool) {
	k, ok := keywords[text]
	return k, ok
}

// IsReservedPathRoot reports whether ident is one of {crate, self, super,
// Self}, used by the lexer to reject a raw identifier spelling one of them.
func IsReservedPathRoot(ident string) bool {
	return reservedPathRoots[ident]
}

// ScalarKind tags the type of a literal payload.
type ScalarKind int

const (
	ScalarBool ScalarKind = iota
	ScalarChar
	ScalarI8
	ScalarI16
	ScalarI32
	ScalarI64
	ScalarU8
	ScalarU16
	ScalarU32
	ScalarU64
	ScalarF32
	ScalarF64
	ScalarText
	ScalarBytes
)

func (s ScalarKind) String() string {
	switch s {
	case ScalarBool:
		return "bool"
	case ScalarChar:
		return "char"
	case ScalarI8:
		return "i8"
	case ScalarI16:
		return "i16"
	case ScalarI32:
		return "i32"
	case ScalarI64:
		return "i64"
	case ScalarU8:
		return "u8"
	case ScalarU16:
		return "u16"
	case ScalarU32:
		return "u32"
	case ScalarU64:
		return "u64"
	case ScalarF32:
		return "f32"
	case ScalarF64:
		return "f64"
	case ScalarText:
		return "str"
	case ScalarBytes:
		return "bytes"
	default:
		return "?"
	}
}

// Scalar is the typed payload a Literal token carries. Exactly one of the
// value fields is meaningful, selected by Kind.
type Scalar struct {
	Kind  ScalarKind
	Bool  bool
	Int   int64  // signed integer literals
	Uint  uint64 // unsigned integer literals
	Float float64
	Text  string // string literal contents (decoded) or char rune as string
	Bytes []byte // byte-string literal contents
}

// Token is a single lexical token: a Kind, an optional Scalar payload (for
// LITERAL), and the Position it occupies in the source.
type Token struct {
	Kind    Kind
	Text    string // raw spelling, used for IDENT and diagnostics
	Scalar  *Scalar
	Pos     Position
	ErrText string // set when Kind == ERROR: the diagnostic message
}

func (t Token) String() string {
	if t.Kind == IDENT || t.Kind == LITERAL {
		return fmt.Sprintf("%s %s %q", t.Pos, t.Kind, t.Text)
	}
	return fmt.Sprintf("%s %s", t.Pos, t.Kind)
}

// Is reports whether the token has the given kind.
func (t Token) Is(k Kind) bool { return t.Kind == k }
