package lexer

import (
	"testing"

	"github.com/b3d/mathc/internal/token"
	"github.com/stretchr/testify/assert"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexSimpleFunctionHeader(t *testing.T) {
	toks := Lex("dot3(a, b) = a")
	assert.Equal(t, []token.Kind{
		token.IDENT, token.LPAREN, token.IDENT, token.COMMA, token.IDENT,
		token.RPAREN, token.EQ, token.IDENT, token.EOF,
	}, kinds(toks))
}

func TestLexUnicodeOperators(t *testing.T) {
	toks := Lex("∑(i∈xyz) a_i · b_i")
	assert.Equal(t, token.SUM, toks[0].Kind)
	assert.Equal(t, token.IN, toks[3].Kind)
	var sawDot bool
	for _, tk := range toks {
		if tk.Kind == token.DOT {
			sawDot = true
		}
	}
	assert.True(t, sawDot)
}

func TestLexLatexEscapes(t *testing.T) {
	toks := Lex(`\sum(i \in xyz) v_i`)
	assert.Equal(t, token.SUM, toks[0].Kind)
	assert.Equal(t, token.IN, toks[3].Kind)
}

func TestLexUnknownEscapeDegradesToIdent(t *testing.T) {
	toks := Lex(`\nosuchescape`)
	assert.Equal(t, token.IDENT, toks[0].Kind)
	assert.Equal(t, "nosuchescape", toks[0].Literal)
}

func TestLexSubscriptRewriteInsideIdentifier(t *testing.T) {
	toks := Lex("vᵢ")
	assert.Equal(t, token.IDENT, toks[0].Kind)
	assert.Equal(t, "v_i", toks[0].Literal)
}

func TestLexStandaloneSubscript(t *testing.T) {
	toks := Lex("δ ᵢ ⱼ")
	assert.Equal(t, token.DELTA, toks[0].Kind)
	assert.Equal(t, token.SUBSCRIPT, toks[1].Kind)
	assert.Equal(t, "i", toks[1].Literal)
	assert.Equal(t, token.SUBSCRIPT, toks[2].Kind)
	assert.Equal(t, "j", toks[2].Literal)
}

func TestLexSuperscriptUnicodeAndCaret(t *testing.T) {
	toks := Lex("ℝ⁴ˣ⁴ ℝ^4x4")
	assert.Equal(t, token.SUPERSCRIPT, toks[1].Kind)
	assert.Equal(t, "4x4", toks[1].Literal)
	assert.Equal(t, token.SUPERSCRIPT, toks[3].Kind)
	assert.Equal(t, "4x4", toks[3].Literal)
}

func TestLexNewlineSuppressedInsideBrackets(t *testing.T) {
	toks := Lex("[a,\nb]")
	for _, tk := range toks {
		assert.NotEqual(t, token.NEWLINE, tk.Kind)
	}
}

func TestLexNewlineSuppressedInsideParens(t *testing.T) {
	toks := Lex("(a +\nb)")
	for _, tk := range toks {
		assert.NotEqual(t, token.NEWLINE, tk.Kind)
	}
}

func TestLexNewlineEmittedAtDepthZero(t *testing.T) {
	toks := Lex("a\nb")
	assert.Equal(t, token.NEWLINE, toks[1].Kind)
}

func TestLexRangeOperatorNotConfusedWithNumberDot(t *testing.T) {
	toks := Lex("0..4")
	assert.Equal(t, token.NUMBER, toks[0].Kind)
	assert.Equal(t, "0", toks[0].Literal)
	assert.Equal(t, token.IDENT, toks[1].Kind)
	assert.Equal(t, "..", toks[1].Literal)
	assert.Equal(t, token.NUMBER, toks[2].Kind)
	assert.Equal(t, "4", toks[2].Literal)
}

func TestLexNumberWithFraction(t *testing.T) {
	toks := Lex("3.14")
	assert.Equal(t, token.NUMBER, toks[0].Kind)
	assert.Equal(t, "3.14", toks[0].Literal)
}

func TestLexCommentSkipped(t *testing.T) {
	toks := Lex("a # this is a comment\nb")
	assert.Equal(t, token.IDENT, toks[0].Kind)
	assert.Equal(t, token.NEWLINE, toks[1].Kind)
	assert.Equal(t, token.IDENT, toks[2].Kind)
}

func TestLexUnknownCharacterSkippedSilently(t *testing.T) {
	toks := Lex("a @ b")
	assert.Equal(t, []token.Kind{token.IDENT, token.IDENT, token.EOF}, kinds(toks))
}

func TestLexNormAliasAndPipe(t *testing.T) {
	toks := Lex("‖v‖ |x| ||v||")
	assert.Equal(t, token.NORM, toks[0].Kind)
	assert.Equal(t, token.PIPE, toks[3].Kind)
	assert.Equal(t, token.NORM, toks[6].Kind)
	assert.Equal(t, "||", toks[6].Literal)
}

func TestLexComparisonOperators(t *testing.T) {
	toks := Lex("a <= b >= c < d > e")
	assert.Equal(t, []token.Kind{
		token.IDENT, token.LE, token.IDENT, token.GE, token.IDENT,
		token.LT, token.IDENT, token.GT, token.IDENT, token.EOF,
	}, kinds(toks))
}

func TestLexKeywordCaseInsensitive(t *testing.T) {
	toks := Lex("Where")
	assert.Equal(t, token.WHERE, toks[0].Kind)
	assert.Equal(t, "Where", toks[0].Literal)
}

func TestLexPositionsTrackLineAndColumn(t *testing.T) {
	toks := Lex("ab\ncd")
	assert.Equal(t, token.Position{Line: 1, Column: 1}, toks[0].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 1}, toks[2].Pos)
}

func TestLexGreekIdentifierContinuation(t *testing.T) {
	toks := Lex("αβγ")
	assert.Equal(t, token.IDENT, toks[0].Kind)
	assert.Equal(t, "αβγ", toks[0].Literal)
}

func TestLexThetaIsNotAnIdentifierStart(t *testing.T) {
	toks := Lex("θ")
	assert.Equal(t, token.THETA, toks[0].Kind)
}
