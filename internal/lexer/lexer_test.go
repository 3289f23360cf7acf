package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fabiosvm/akwan/internal/token"
)

func TestNextTokenRoundTrip(t *testing.T) {
	source := `let x = 12 + 3.5 * "hi" - foo[1] .. bar; // trailing comment
inout y = &x[0];
{ return nil; }`

	l := New(source)
	for {
		tok, err := l.NextToken()
		assert.NoError(t, err)
		if tok.Type == token.EOF {
			break
		}
		assert.Equal(t, tok.Lexeme, source[tok.Offset:tok.Offset+tok.Length],
			"token %v should round-trip against its source span", tok)
	}
}

func TestNextTokenKinds(t *testing.T) {
	l := New(`let inout return nil false true & .. , ; ( ) [ ] { } = + - * /  %`)
	want := []token.TokenType{
		token.LET, token.INOUT, token.RETURN, token.NIL, token.FALSE, token.TRUE,
		token.AMPERSAND, token.RANGE, token.COMMA, token.SEMI, token.LPAREN,
		token.RPAREN, token.LBRACKET, token.RBRACKET, token.LBRACE, token.RBRACE,
		token.ASSIGN, token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
	}
	for _, w := range want {
		tok, err := l.NextToken()
		assert.NoError(t, err)
		assert.Equal(t, w, tok.Type)
	}
	tok, err := l.NextToken()
	assert.NoError(t, err)
	assert.Equal(t, token.EOF, tok.Type)
}

func TestStringLiteralNoEscapeProcessing(t *testing.T) {
	l := New(`"a\nb"`)
	tok, err := l.NextToken()
	assert.NoError(t, err)
	assert.Equal(t, token.STRING, tok.Type)
	assert.Equal(t, `a\nb`, tok.Literal)
}

func TestUnterminatedStringIsLexicalError(t *testing.T) {
	l := New(`"abc`)
	_, err := l.NextToken()
	assert.Error(t, err)
}

func TestIntegerAndNumberLiterals(t *testing.T) {
	l := New(`42 3.14 100`)

	tok, err := l.NextToken()
	assert.NoError(t, err)
	assert.Equal(t, token.INT, tok.Type)
	assert.Equal(t, int64(42), tok.Literal)

	tok, err = l.NextToken()
	assert.NoError(t, err)
	assert.Equal(t, token.NUMBER, tok.Type)
	assert.Equal(t, 3.14, tok.Literal)

	tok, err = l.NextToken()
	assert.NoError(t, err)
	assert.Equal(t, token.INT, tok.Type)
	assert.Equal(t, int64(100), tok.Literal)
}

func TestRangeOperatorNotConfusedWithFloat(t *testing.T) {
	l := New(`1..5`)
	tok, err := l.NextToken()
	assert.NoError(t, err)
	assert.Equal(t, token.INT, tok.Type)
	assert.Equal(t, int64(1), tok.Literal)

	tok, err = l.NextToken()
	assert.NoError(t, err)
	assert.Equal(t, token.RANGE, tok.Type)

	tok, err = l.NextToken()
	assert.NoError(t, err)
	assert.Equal(t, token.INT, tok.Type)
	assert.Equal(t, int64(5), tok.Literal)
}

func TestUnexpectedCharacterIsLexicalError(t *testing.T) {
	l := New(`@`)
	_, err := l.NextToken()
	assert.Error(t, err)
}

func TestExponentLiterals(t *testing.T) {
	l := New(`1e3 2.5E-2 6E+1`)

	tok, err := l.NextToken()
	assert.NoError(t, err)
	assert.Equal(t, token.NUMBER, tok.Type)
	assert.Equal(t, 1e3, tok.Literal)

	tok, err = l.NextToken()
	assert.NoError(t, err)
	assert.Equal(t, token.NUMBER, tok.Type)
	assert.Equal(t, 2.5e-2, tok.Literal)

	tok, err = l.NextToken()
	assert.NoError(t, err)
	assert.Equal(t, token.NUMBER, tok.Type)
	assert.Equal(t, 6e+1, tok.Literal)
}

func TestNumberFollowedByIdentifierCharIsLexicalError(t *testing.T) {
	l := New(`12abc`)
	_, err := l.NextToken()
	assert.Error(t, err)
}

func TestExponentMissingDigitsIsLexicalError(t *testing.T) {
	l := New(`1e+`)
	_, err := l.NextToken()
	assert.Error(t, err)
}
