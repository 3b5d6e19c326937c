package value

import "testing"

func TestStringRendering(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"null", NullValue(), "None"},
		{"true", BoolValue(true), "True"},
		{"false", BoolValue(false), "False"},
		{"int", IntValue(42), "42"},
		{"float", FloatValue(3.5), "3.5"},
		{"float_whole", FloatValue(4), "4.0"},
		{"str", StrValue("hi"), "hi"},
		{"list", ListValue([]Value{IntValue(1), IntValue(2)}), "[1, 2]"},
		{"tuple_one", TupleValue([]Value{IntValue(1)}), "(1,)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.String(); got != c.want {
				t.Errorf("String() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"null", NullValue(), false},
		{"zero_int", IntValue(0), false},
		{"nonzero_int", IntValue(1), true},
		{"empty_str", StrValue(""), false},
		{"nonempty_str", StrValue("x"), true},
		{"empty_list", ListValue(nil), false},
		{"nonempty_list", ListValue([]Value{IntValue(1)}), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.Truthy(); got != c.want {
				t.Errorf("Truthy() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestBinaryNumeric(t *testing.T) {
	cases := []struct {
		op   string
		a, b Value
		want Value
	}{
		{"-", IntValue(5), IntValue(3), IntValue(2)},
		{"*", IntValue(4), IntValue(3), IntValue(12)},
		{"//", IntValue(-7), IntValue(2), IntValue(-4)},
		{"%", IntValue(-7), IntValue(2), IntValue(1)},
		{"**", IntValue(2), IntValue(10), IntValue(1024)},
	}
	for _, c := range cases {
		t.Run(c.op, func(t *testing.T) {
			got, err := BinaryNumeric(c.op, c.a, c.b)
			if err != nil {
				t.Fatalf("BinaryNumeric(%q) error: %v", c.op, err)
			}
			if !Equal(got, c.want) {
				t.Errorf("BinaryNumeric(%q, %v, %v) = %v, want %v", c.op, c.a, c.b, got, c.want)
			}
		})
	}
}

func TestBinaryNumericDivisionByZero(t *testing.T) {
	if _, err := BinaryNumeric("/", IntValue(1), IntValue(0)); err == nil {
		t.Fatal("expected division by zero error")
	}
	if _, err := BinaryNumeric("//", IntValue(1), IntValue(0)); err == nil {
		t.Fatal("expected floor division by zero error")
	}
}

func TestMapGetSet(t *testing.T) {
	m := MapValue(nil)
	m = MapSet(m, StrValue("a"), IntValue(1))
	m = MapSet(m, StrValue("b"), IntValue(2))
	m = MapSet(m, StrValue("a"), IntValue(9))

	got, ok := MapGet(m, StrValue("a"))
	if !ok || got.Int64() != 9 {
		t.Errorf("MapGet(a) = %v, %v; want 9, true", got, ok)
	}
	if len(m.Pairs()) != 2 {
		t.Errorf("expected overwrite to keep pair count at 2, got %d", len(m.Pairs()))
	}
	if _, ok := MapGet(m, StrValue("missing")); ok {
		t.Error("expected missing key to report not found")
	}
}

func TestCompareOrdering(t *testing.T) {
	lt, err := Compare(IntValue(1), IntValue(2))
	if err != nil || lt >= 0 {
		t.Errorf("Compare(1, 2) = %d, %v; want < 0, nil", lt, err)
	}
	eq, err := Compare(StrValue("a"), StrValue("a"))
	if err != nil || eq != 0 {
		t.Errorf("Compare(a, a) = %d, %v; want 0, nil", eq, err)
	}
}
