package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmofishsauce/emberc/internal/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	lx := New(NewCharStream(strings.NewReader(src)))
	var toks []token.Token
	for {
		tk := lx.Next()
		toks = append(toks, tk)
		if tk.Kind == token.EOF {
			break
		}
	}
	return toks
}

func TestLexerKeywordsAndIdents(t *testing.T) {
	toks := scanAll(t, "fn let mut foo_bar Self self")
	require.Len(t, toks, 7)
	assert.Equal(t, token.FN, toks[0].Kind)
	assert.Equal(t, token.LET, toks[1].Kind)
	assert.Equal(t, token.MUT, toks[2].Kind)
	assert.Equal(t, token.IDENT, toks[3].Kind)
	assert.Equal(t, "foo_bar", toks[3].Text)
	assert.Equal(t, token.SELF_UPPER, toks[4].Kind)
	assert.Equal(t, token.SELF_LOWER, toks[5].Kind)
	assert.Equal(t, token.EOF, toks[6].Kind)
}

func TestLexerRawIdentifier(t *testing.T) {
	toks := scanAll(t, "r#fn r#self")
	require.Len(t, toks, 3)
	assert.Equal(t, token.IDENT, toks[0].Kind)
	assert.Equal(t, "fn", toks[0].Text)
	assert.Equal(t, token.ERROR, toks[1].Kind)
}

func TestLexerBooleanLiterals(t *testing.T) {
	toks := scanAll(t, "true false")
	require.Len(t, toks, 3)
	require.NotNil(t, toks[0].Scalar)
	assert.Equal(t, token.ScalarBool, toks[0].Scalar.Kind)
	assert.True(t, toks[0].Scalar.Bool)
	assert.False(t, toks[1].Scalar.Bool)
}

func TestLexerIntegerLiteralWidthProbing(t *testing.T) {
	cases := []struct {
		src  string
		want token.ScalarKind
	}{
		{"0", token.ScalarU8},
		{"255", token.ScalarU8},
		{"256", token.ScalarU16},
		{"65536", token.ScalarU32},
		{"4294967296", token.ScalarU64},
		{"42i32", token.ScalarI32},
		{"7u64", token.ScalarU64},
		{"0xFFu8", token.ScalarU8},
		{"0b1010", token.ScalarU8},
	}
	for _, c := range cases {
		toks := scanAll(t, c.src)
		require.Len(t, toks, 2, c.src)
		require.NotNil(t, toks[0].Scalar, c.src)
		assert.Equal(t, c.want, toks[0].Scalar.Kind, c.src)
	}
}

func TestLexerFloatLiterals(t *testing.T) {
	toks := scanAll(t, "3.14 2.0f32 1e10")
	require.Len(t, toks, 4)
	assert.Equal(t, token.ScalarF64, toks[0].Scalar.Kind)
	assert.InDelta(t, 3.14, toks[0].Scalar.Float, 1e-9)
	assert.Equal(t, token.ScalarF32, toks[1].Scalar.Kind)
	assert.Equal(t, token.ScalarF64, toks[2].Scalar.Kind)
}

func TestLexerStringAndCharLiterals(t *testing.T) {
	toks := scanAll(t, `"hello\nworld" 'a' '\x41'`)
	require.Len(t, toks, 4)
	assert.Equal(t, "hello\nworld", toks[0].Scalar.Text)
	assert.Equal(t, "a", toks[1].Scalar.Text)
	assert.Equal(t, "A", toks[2].Scalar.Text)
}

func TestLexerRawString(t *testing.T) {
	toks := scanAll(t, `r"no\escape" r#"has "quotes" inside"#`)
	require.Len(t, toks, 3)
	assert.Equal(t, `no\escape`, toks[0].Scalar.Text)
	assert.Equal(t, `has "quotes" inside`, toks[1].Scalar.Text)
}

func TestLexerByteLiterals(t *testing.T) {
	toks := scanAll(t, `b"abc" b'x'`)
	require.Len(t, toks, 3)
	assert.Equal(t, token.ScalarBytes, toks[0].Scalar.Kind)
	assert.Equal(t, []byte("abc"), toks[0].Scalar.Bytes)
	assert.Equal(t, token.ScalarU8, toks[1].Scalar.Kind)
	assert.Equal(t, uint64('x'), toks[1].Scalar.Uint)
}

func TestLexerOperatorsLongestMatch(t *testing.T) {
	toks := scanAll(t, "<<= << < == = && & -> ..")
	kinds := make([]token.Kind, 0, len(toks))
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	assert.Equal(t, []token.Kind{
		token.SHL_EQ, token.SHL, token.LT, token.EQEQ, token.ASSIGN,
		token.ANDAND, token.AMP, token.ARROW, token.DOTDOT, token.EOF,
	}, kinds)
}

func TestLexerLineAndBlockComments(t *testing.T) {
	toks := scanAll(t, "let // trailing comment\nx /* nested /* block */ comment */ = 1;")
	var kinds []token.Kind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	assert.Equal(t, []token.Kind{
		token.LET, token.IDENT, token.ASSIGN, token.LITERAL, token.SEMI, token.EOF,
	}, kinds)
}

func TestLexerUnterminatedBlockComment(t *testing.T) {
	toks := scanAll(t, "let /* never closed")
	require.Len(t, toks, 3)
	assert.Equal(t, token.LET, toks[0].Kind)
	assert.Equal(t, token.ERROR, toks[1].Kind)
}

func TestLexerBracketDepthTracking(t *testing.T) {
	lx := New(NewCharStream(strings.NewReader("([{}])")))
	for {
		tk := lx.Next()
		if tk.Kind == token.EOF {
			break
		}
	}
	assert.Equal(t, 0, lx.BracketDepth())
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	toks := scanAll(t, "$")
	require.Len(t, toks, 2)
	assert.Equal(t, token.ERROR, toks[0].Kind)
}
