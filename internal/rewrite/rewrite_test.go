package rewrite

import "testing"

func TestTransformExpr(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"string_literal_passthrough", `"hello"`, `"hello"`},
		{"type_of", "type of x", "type(x)"},
		{"id_of", "id of x", "id(x)"},
		{"upper_of", "upper of name", "(name).upper()"},
		{"replace", `replace msg "a" "b"`, `(msg).replace("a", "b")`},
		{"split", "split line \",\"", `(line).split(",")`},
		{"get_dict_key", "get scores name", `(scores).get("name")`},
		{"len_call", "len items", "len(items)"},
		{"union", "union a b", "(a) | (b)"},
		{"count_comparison_untouched", "count > 0", "count > 0"},
		{"true_keyword", "flag == true", "flag == True"},
		{"nothing_keyword", "x == nothing", "x == None"},
		{"is_same_as", "a[0] is same as b", "a[0]  ==  b"},
		{"number_call", "number(x)", "int(x)"},
		{"space_call_shorthand", "greet name", `greet(name)`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := TransformExpr(c.in)
			if err != nil {
				t.Fatalf("TransformExpr(%q) error: %v", c.in, err)
			}
			if got != c.want {
				t.Errorf("TransformExpr(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestTransformExprErrors(t *testing.T) {
	cases := []string{"call", "map justafunction"}
	for _, in := range cases {
		if _, err := TransformExpr(in); err == nil {
			t.Errorf("TransformExpr(%q): expected error, got nil", in)
		}
	}
}

func TestSplitArgsRespectsQuotes(t *testing.T) {
	got := SplitArgs(`"a, b", c`)
	want := []string{`"a, b"`, ` c`}
	if len(got) != len(want) {
		t.Fatalf("SplitArgs = %#v, want %#v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("part %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitConcatArgsRespectsBracketDepth(t *testing.T) {
	got := SplitConcatArgs(`foo(a + b) + "x"`)
	want := []string{`foo(a + b) `, ` "x"`}
	if len(got) != len(want) {
		t.Fatalf("SplitConcatArgs = %#v, want %#v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("part %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLooksLikeString(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{`"hello"`, true},
		{`'hello'`, true},
		{`"""hello"""`, true},
		{"hello", false},
		{"x + y", false},
	}
	for _, c := range cases {
		if got := LooksLikeString(c.in); got != c.want {
			t.Errorf("LooksLikeString(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNormalizeDict(t *testing.T) {
	got := NormalizeDict(`name: "a", age: 3`)
	want := `"name": "a", "age": 3`
	if got != want {
		t.Errorf("NormalizeDict = %q, want %q", got, want)
	}
}
