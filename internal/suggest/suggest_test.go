package suggest

import "testing"

func TestKeywordFindsCloseTypo(t *testing.T) {
	if got := Keyword("functon add a b"); got != "function" {
		t.Errorf("Keyword(typo) = %q, want \"function\"", got)
	}
}

func TestKeywordEmptyInput(t *testing.T) {
	if got := Keyword("   "); got != "" {
		t.Errorf("Keyword(blank) = %q, want \"\"", got)
	}
}

func TestKeywordExactMatchReportsNothing(t *testing.T) {
	if got := Keyword("if x > 0"); got != "" {
		t.Errorf("Keyword(exact) = %q, want \"\" (nothing to suggest for an already-valid keyword)", got)
	}
}

func TestKeywordFarMismatchReportsNothing(t *testing.T) {
	if got := Keyword("xyzzyplugh something"); got != "" {
		t.Errorf("Keyword(unrelated) = %q, want \"\"", got)
	}
}
