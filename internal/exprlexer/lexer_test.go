package exprlexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type tokenExpectation struct {
	Type TokenType
	Text string
}

func assertTokens(t *testing.T, input string, want []tokenExpectation) {
	t.Helper()
	toks, err := New(input).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", input, err)
	}
	got := make([]tokenExpectation, len(toks))
	for i, tok := range toks {
		got[i] = tokenExpectation{Type: tok.Type, Text: tok.Text}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", input, diff)
	}
}

func TestTokenizeOperators(t *testing.T) {
	assertTokens(t, "1 + 2 * 3", []tokenExpectation{
		{INT, "1"}, {PLUS, "+"}, {INT, "2"}, {STAR, "*"}, {INT, "3"}, {EOF, ""},
	})
}

func TestTokenizeComparisonAndKeywords(t *testing.T) {
	assertTokens(t, "x >= 1 and not y", []tokenExpectation{
		{IDENT, "x"}, {GE, ">="}, {INT, "1"}, {KW_AND, "and"}, {KW_NOT, "not"}, {IDENT, "y"}, {EOF, ""},
	})
}

func TestTokenizeFloorDivAndPower(t *testing.T) {
	assertTokens(t, "a // b ** 2", []tokenExpectation{
		{IDENT, "a"}, {SLASHSLASH, "//"}, {IDENT, "b"}, {STARSTAR, "**"}, {INT, "2"}, {EOF, ""},
	})
}

func TestTokenizeString(t *testing.T) {
	assertTokens(t, `"hello\nworld"`, []tokenExpectation{
		{STRING, "hello\nworld"}, {EOF, ""},
	})
}

func TestTokenizeFloat(t *testing.T) {
	assertTokens(t, "3.5", []tokenExpectation{{FLOAT, "3.5"}, {EOF, ""}})
}

func TestTokenizeUnterminatedStringErrors(t *testing.T) {
	if _, err := New(`"unterminated`).Tokenize(); err == nil {
		t.Fatal("expected an error for an unterminated string literal")
	}
}
