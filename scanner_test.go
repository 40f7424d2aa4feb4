package grace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"grace"
)

type scanTokensTest struct {
	source   string
	expected []grace.TokenKind
}

var scanTokensTests = []scanTokensTest{
	{"", []grace.TokenKind{grace.EOF}},
	{"   \t\n", []grace.TokenKind{grace.EOF}},
	{"-- a comment\n123", []grace.TokenKind{grace.INT_CONST, grace.EOF}},
	{"(* a block\ncomment *)abc", []grace.TokenKind{grace.IDENT, grace.EOF}},
	{"abc", []grace.TokenKind{grace.IDENT, grace.EOF}},
	{"123", []grace.TokenKind{grace.INT_CONST, grace.EOF}},
	{"'a'", []grace.TokenKind{grace.CHAR_CONST, grace.EOF}},
	{"'\\n'", []grace.TokenKind{grace.CHAR_CONST, grace.EOF}},
	{`"hi"`, []grace.TokenKind{grace.STRING_CONST, grace.EOF}},
	{"+-*", []grace.TokenKind{grace.PLUS, grace.MINUS, grace.STAR, grace.EOF}},
	{":=", []grace.TokenKind{grace.ASSIGN, grace.EOF}},
	{"= # < > <= >=", []grace.TokenKind{grace.EQ, grace.NE, grace.LT, grace.GT, grace.LE, grace.GE, grace.EOF}},
	{"(){}[],;:", []grace.TokenKind{
		grace.LPAREN, grace.RPAREN, grace.LBRACE, grace.RBRACE,
		grace.LBRACKET, grace.RBRACKET, grace.COMMA, grace.SEMICOLON, grace.COLON, grace.EOF,
	}},
	{"fun def", []grace.TokenKind{grace.KW_FUN, grace.KW_FUN, grace.EOF}},
	{"var while if then else return", []grace.TokenKind{
		grace.KW_VAR, grace.KW_WHILE, grace.KW_IF, grace.KW_THEN, grace.KW_ELSE, grace.KW_RETURN, grace.EOF,
	}},
	{"int char nothing ref not and or div mod do", []grace.TokenKind{
		grace.KW_INT, grace.KW_CHAR, grace.KW_NOTHING, grace.KW_REF, grace.KW_NOT,
		grace.KW_AND, grace.KW_OR, grace.KW_DIV, grace.KW_MOD, grace.KW_DO, grace.EOF,
	}},
}

func TestScanTokens(t *testing.T) {
	for _, test := range scanTokensTests {
		t.Logf("running test %q", test.source)
		tokens, err := grace.ScanTokens("<test>", []byte(test.source))
		assert.NoError(t, err)
		var kinds []grace.TokenKind
		for _, tok := range tokens {
			kinds = append(kinds, tok.Kind)
		}
		assert.Equal(t, test.expected, kinds)
	}
}

func TestScanTokens_UnterminatedString(t *testing.T) {
	_, err := grace.ScanTokens("<test>", []byte(`"hi`))
	assert.Error(t, err)
}

func TestScanTokens_UnknownCharacter(t *testing.T) {
	_, err := grace.ScanTokens("<test>", []byte("@"))
	assert.Error(t, err)
}

type scannerScanTest struct {
	source  string
	kind    grace.TokenKind
	content string
}

var scannerScanTests = []scannerScanTest{
	{"123", grace.INT_CONST, "123"},
	{"123abc", grace.INT_CONST, "123"},
	{"a", grace.IDENT, "a"},
	{"abc123", grace.IDENT, "abc123"},
	{`"a"`, grace.STRING_CONST, `"a"`},
}

func TestScanner_Scan(t *testing.T) {
	for _, test := range scannerScanTests {
		t.Logf("running test %q", test.source)
		sc := grace.NewScanner("<test>", []byte(test.source))
		tok, err := sc.Scan()
		assert.NoError(t, err)
		assert.Equal(t, test.kind, tok.Kind)
		assert.Equal(t, test.content, string(tok.Content))
	}
}
