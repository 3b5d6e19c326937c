package translator

import (
	"strings"
	"testing"

	"github.com/aledsdavies/tale/internal/errs"
)

func TestTranslateAssignment(t *testing.T) {
	prog, err := Translate("x is 5")
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if len(prog.Statements) != 1 {
		t.Fatalf("Statements = %#v, want 1", prog.Statements)
	}
	if got := prog.Statements[0].Text; got != "x = 5" {
		t.Errorf("Text = %q, want %q", got, "x = 5")
	}
}

func TestTranslateIfEndBlock(t *testing.T) {
	code := "if x > 0\n" + "    say \"positive\"\n" + "end"
	prog, err := Translate(code)
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	want := []Statement{
		{Indent: 0, Text: "if x > 0:"},
		{Indent: 1, Text: `print("positive")`},
	}
	if len(prog.Statements) != len(want) {
		t.Fatalf("Statements = %#v, want %#v", prog.Statements, want)
	}
	for i := range want {
		if prog.Statements[i] != want[i] {
			t.Errorf("Statements[%d] = %#v, want %#v", i, prog.Statements[i], want[i])
		}
	}
}

func TestTranslateIfElseDedentsAndReindents(t *testing.T) {
	code := "if x == 1\n" + "    say \"one\"\n" + "else\n" + "    say \"other\"\n" + "end"
	prog, err := Translate(code)
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	indents := make([]int, len(prog.Statements))
	for i, s := range prog.Statements {
		indents[i] = s.Indent
	}
	want := []int{0, 1, 0, 1}
	if len(indents) != len(want) {
		t.Fatalf("indents = %#v, want %#v", indents, want)
	}
	for i := range want {
		if indents[i] != want[i] {
			t.Errorf("indent[%d] = %d, want %d", i, indents[i], want[i])
		}
	}
	if prog.Statements[2].Text != "else:" {
		t.Errorf("Statements[2].Text = %q, want \"else:\"", prog.Statements[2].Text)
	}
}

func TestTranslateForEach(t *testing.T) {
	prog, err := Translate("for each item in items\n" + "    say item\n" + "end")
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if got := prog.Statements[0].Text; got != "for item in items:" {
		t.Errorf("Text = %q, want %q", got, "for item in items:")
	}
}

func TestTranslateFunction(t *testing.T) {
	prog, err := Translate("function add a b\n" + "    return a + b\n" + "end")
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if got := prog.Statements[0].Text; got != "def add(a, b):" {
		t.Errorf("Text = %q, want %q", got, "def add(a, b):")
	}
}

func TestTranslateCatchEmitsExceptAsMarker(t *testing.T) {
	code := "try\n" + "    say \"risky\"\n" + "catch err\n" + "    say err\n" + "end"
	prog, err := Translate(code)
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	var sawExceptAs bool
	for _, s := range prog.Statements {
		if s.Text == "except-as err:" {
			sawExceptAs = true
		}
	}
	if !sawExceptAs {
		t.Errorf("expected an except-as marker statement, got %#v", prog.Statements)
	}
}

func TestTranslateUnknownLineReportsLineNumber(t *testing.T) {
	_, err := Translate("x is 1\nthis is not a valid tale statement @@@")
	if err == nil {
		t.Fatal("expected a translation error")
	}
	te, ok := err.(*errs.TranslationError)
	if !ok {
		t.Fatalf("error = %T, want *errs.TranslationError", err)
	}
	if te.Line != 2 {
		t.Errorf("Line = %d, want 2", te.Line)
	}
	if !strings.Contains(te.Error(), "Line 2:") {
		t.Errorf("Error() = %q, want it to contain \"Line 2:\"", te.Error())
	}
}

func TestScanLogicalLinesSkipsBlankCommentsAndNotes(t *testing.T) {
	code := "x is 1\n\n# a comment\nnote \"\"\" opening\nbody line\nclosing \"\"\"\ny is 2\n"
	lines := scanLogicalLines(code)
	if len(lines) != 2 {
		t.Fatalf("lines = %#v, want 2 surviving lines", lines)
	}
	if lines[0].LineNo != 1 || lines[0].Text != "x is 1" {
		t.Errorf("lines[0] = %#v", lines[0])
	}
	if lines[1].LineNo != 7 || lines[1].Text != "y is 2" {
		t.Errorf("lines[1] = %#v", lines[1])
	}
}

func TestProgramStringIndentsWithFourSpaces(t *testing.T) {
	prog := Program{Statements: []Statement{
		{Indent: 0, Text: "if x:"},
		{Indent: 1, Text: "pass"},
	}}
	want := "if x:\n    pass"
	if got := prog.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
