package engine

import "testing"

// Spec property: for identical (code, inputs) with no file/random/datetime
// use, Run returns byte-identical output and translated text every time.
func TestRunIsDeterministic(t *testing.T) {
	code := "x is 3\nfor each i in [1, 2, 3]\nsay x + i\nend"
	first := Run(code, nil)
	second := Run(code, nil)
	if first.OK != second.OK {
		t.Fatalf("OK mismatch: %v vs %v", first.OK, second.OK)
	}
	if *first.Output != *second.Output {
		t.Errorf("Output mismatch:\n%q\nvs\n%q", *first.Output, *second.Output)
	}
	if *first.Translated != *second.Translated {
		t.Errorf("Translated mismatch:\n%q\nvs\n%q", *first.Translated, *second.Translated)
	}
}

// Spec property: raw inputs matching an integer/float pattern are
// delivered as numbers; anything else stays a string.
func TestInputCoercionByShape(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"integer", "42", "43\n"},
		{"negative_integer", "-5", "-4\n"},
		{"float", "2.5", "3.5\n"},
		{"non_numeric_stays_string", "abc", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := Run("ask n\nsay n + 1", []string{c.input})
			if c.name == "non_numeric_stays_string" {
				// "abc" stays a string, and TALE's `+` on str+int raises
				// (value.Add, matching Python semantics), so this case is
				// expected to fail rather than print anything.
				if res.OK {
					t.Errorf("expected str + int to fail, got output %v", res.Output)
				}
				return
			}
			if !res.OK {
				t.Fatalf("Run(%q) failed: %v", c.input, res.Error)
			}
			if *res.Output != c.want {
				t.Errorf("Run(%q) output = %q, want %q", c.input, *res.Output, c.want)
			}
		})
	}
}

// Spec property: importing anything outside the fixed whitelist fails.
func TestImportSandboxRejectsDisallowedModules(t *testing.T) {
	res := Run("import subprocess\nsay 1", nil)
	if res.OK {
		t.Fatal("expected import of a non-whitelisted module to fail")
	}
}

func TestImportSandboxAllowsWhitelistedModule(t *testing.T) {
	res := Run("import math\nsay 1", nil)
	if !res.OK {
		t.Fatalf("expected import of a whitelisted module to succeed, got error: %v", res.Error)
	}
}

// Spec property: the Line N: prefix counts original lines, including
// blank ones, 1-based.
func TestErrorLineFidelityCountsBlankLines(t *testing.T) {
	code := "x is 1\n\n\nthis is not valid tale @@@"
	diags := Analyze(code)
	if diags.OK {
		t.Fatal("expected a translation failure")
	}
	if len(diags.Diagnostics) != 1 {
		t.Fatalf("Diagnostics = %#v, want exactly 1", diags.Diagnostics)
	}
	if got := diags.Diagnostics[0].Line; got == nil || *got != 4 {
		t.Errorf("Line = %v, want 4", got)
	}
}

// Spec property: analyze(C).ok matches whether run(C, []).translated is
// non-nil, for code with no executable side effects.
func TestAnalyzeAgreesWithRunTranslationOutcome(t *testing.T) {
	cases := []string{
		"say \"hello\"",
		"this is not valid tale @@@",
		"x is 1\nsay x",
	}
	for _, code := range cases {
		diags := Analyze(code)
		res := Run(code, nil)
		if diags.OK != (res.Translated != nil) {
			t.Errorf("Analyze(%q).OK = %v, Run(%q).Translated != nil = %v; want them equal",
				code, diags.OK, code, res.Translated != nil)
		}
	}
}
