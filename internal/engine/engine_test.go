package engine

import (
	"strings"
	"testing"
)

func TestRunHelloWorld(t *testing.T) {
	res := Run(`say "hello"`, nil)
	if !res.OK {
		t.Fatalf("Run failed: %v", res.Error)
	}
	if res.Output == nil || *res.Output != "hello\n" {
		t.Errorf("Output = %v, want \"hello\\n\"", res.Output)
	}
}

func TestRunArithmeticAndAssignment(t *testing.T) {
	code := "x is 5\ny is 7\nsay x + y"
	res := Run(code, nil)
	if !res.OK {
		t.Fatalf("Run failed: %v", res.Error)
	}
	if *res.Output != "12\n" {
		t.Errorf("Output = %q, want \"12\\n\"", *res.Output)
	}
}

func TestRunInputEchoWithCoercion(t *testing.T) {
	code := "ask n\nsay n + 1"
	res := Run(code, []string{"4"})
	if !res.OK {
		t.Fatalf("Run failed: %v", res.Error)
	}
	if *res.Output != "5\n" {
		t.Errorf("Output = %q, want \"5\\n\"", *res.Output)
	}
}

func TestRunIfElse(t *testing.T) {
	code := "x is 10\nif x > 5\nsay \"big\"\nelse\nsay \"small\"\nend"
	res := Run(code, nil)
	if !res.OK {
		t.Fatalf("Run failed: %v", res.Error)
	}
	if *res.Output != "big\n" {
		t.Errorf("Output = %q, want \"big\\n\"", *res.Output)
	}
}

func TestRunRepeatLoop(t *testing.T) {
	code := "repeat 3\nsay \"hi\"\nend"
	res := Run(code, nil)
	if !res.OK {
		t.Fatalf("Run failed: %v", res.Error)
	}
	if *res.Output != "hi\nhi\nhi\n" {
		t.Errorf("Output = %q, want \"hi\\nhi\\nhi\\n\"", *res.Output)
	}
}

func TestRunFunctionDefinitionAndCall(t *testing.T) {
	code := "function add a b\nreturn a + b\nend\nsay add 2 3"
	res := Run(code, nil)
	if !res.OK {
		t.Fatalf("Run failed: %v", res.Error)
	}
	if *res.Output != "5\n" {
		t.Errorf("Output = %q, want \"5\\n\"", *res.Output)
	}
}

func TestRunUnsafeConstructFails(t *testing.T) {
	res := Run(`say __import__("os").system("echo x")`, nil)
	if res.OK {
		t.Fatal("expected the unsafe construct to fail")
	}
	if res.Error == nil {
		t.Fatal("expected an error message")
	}
}

func TestRunInputExhaustion(t *testing.T) {
	code := "ask a\nask b"
	res := Run(code, []string{"1"})
	if res.OK {
		t.Fatal("expected input exhaustion to fail the run")
	}
	if res.Error == nil || !strings.Contains(*res.Error, "No more inputs") {
		t.Errorf("Error = %v, want it to mention \"No more inputs\"", res.Error)
	}
	if res.SuggestedFix == nil || !strings.Contains(*res.SuggestedFix, "Inputs box") {
		t.Errorf("SuggestedFix = %v, want it to mention the Inputs box", res.SuggestedFix)
	}
}

func TestRunTranslationFailureShape(t *testing.T) {
	res := Run("this is not valid tale @@@", nil)
	if res.OK {
		t.Fatal("expected a translation failure")
	}
	if res.Translated != nil {
		t.Errorf("Translated = %v, want nil on a translation failure", res.Translated)
	}
	if res.Tale == "" {
		t.Error("Tale should always echo the original source")
	}
}

func TestRunUnknownVariableSuggestsDefiningIt(t *testing.T) {
	res := Run("say missing_name", nil)
	if res.OK {
		t.Fatal("expected an unknown-variable runtime error")
	}
	if res.SuggestedFix == nil || !strings.Contains(*res.SuggestedFix, "define the variable") {
		t.Errorf("SuggestedFix = %v, want it to mention defining the variable", res.SuggestedFix)
	}
}

func TestAnalyzeOKOnValidCode(t *testing.T) {
	diags := Analyze("x is 1\nsay x")
	if !diags.OK {
		t.Fatalf("expected analyze to report ok, got %#v", diags.Diagnostics)
	}
	if len(diags.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %#v", diags.Diagnostics)
	}
}

func TestAnalyzeReportsLineNumber(t *testing.T) {
	diags := Analyze("x is 1\nthis is not valid tale @@@")
	if diags.OK {
		t.Fatal("expected analyze to report a failure")
	}
	if len(diags.Diagnostics) != 1 {
		t.Fatalf("Diagnostics = %#v, want exactly 1", diags.Diagnostics)
	}
	d := diags.Diagnostics[0]
	if d.Line == nil || *d.Line != 2 {
		t.Errorf("Line = %v, want 2", d.Line)
	}
}
