package exprparser

import (
	"testing"

	"github.com/aledsdavies/tale/internal/ast"
)

func TestParseArithmeticPrecedence(t *testing.T) {
	node, err := Parse("1 + 2 * 3")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	bin, ok := node.(ast.BinOp)
	if !ok {
		t.Fatalf("top node = %T, want ast.BinOp", node)
	}
	if bin.Op != "+" {
		t.Errorf("top op = %q, want +", bin.Op)
	}
	rhs, ok := bin.Y.(ast.BinOp)
	if !ok || rhs.Op != "*" {
		t.Errorf("rhs = %#v, want a * BinOp", bin.Y)
	}
}

func TestParseCall(t *testing.T) {
	node, err := Parse(`greet("world")`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	call, ok := node.(ast.Call)
	if !ok {
		t.Fatalf("node = %T, want ast.Call", node)
	}
	fn, ok := call.Fn.(ast.Name)
	if !ok || fn.Ident != "greet" {
		t.Errorf("Fn = %#v, want Name{greet}", call.Fn)
	}
	if len(call.Args) != 1 {
		t.Fatalf("Args = %#v, want 1 element", call.Args)
	}
	if s, ok := call.Args[0].(ast.StrLit); !ok || s.Value != "world" {
		t.Errorf("Args[0] = %#v, want StrLit{world}", call.Args[0])
	}
}

func TestParseComparisonChain(t *testing.T) {
	node, err := Parse("1 < x < 10")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	cmp, ok := node.(ast.Compare)
	if !ok {
		t.Fatalf("node = %T, want ast.Compare", node)
	}
	if len(cmp.Ops) != 2 || cmp.Ops[0] != "<" || cmp.Ops[1] != "<" {
		t.Errorf("Ops = %#v, want [< <]", cmp.Ops)
	}
}

func TestParseListComprehension(t *testing.T) {
	node, err := Parse("[x * 2 for x in items if x > 0]")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	comp, ok := node.(ast.Comprehension)
	if !ok {
		t.Fatalf("node = %T, want ast.Comprehension", node)
	}
	if comp.Kind != ast.ListComp {
		t.Errorf("Kind = %v, want ListComp", comp.Kind)
	}
	if len(comp.Clauses) != 1 || comp.Clauses[0].Target != "x" {
		t.Errorf("Clauses = %#v", comp.Clauses)
	}
	if len(comp.Clauses[0].Ifs) != 1 {
		t.Errorf("expected one if-clause, got %d", len(comp.Clauses[0].Ifs))
	}
}

func TestParseSubscriptAndSlice(t *testing.T) {
	node, err := Parse("items[1:3]")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	sub, ok := node.(ast.Subscript)
	if !ok {
		t.Fatalf("node = %T, want ast.Subscript", node)
	}
	if _, ok := sub.Index.(ast.Slice); !ok {
		t.Errorf("Index = %#v, want ast.Slice", sub.Index)
	}
}

func TestParseLambda(t *testing.T) {
	node, err := Parse("lambda x: x + 1")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	lam, ok := node.(ast.Lambda)
	if !ok {
		t.Fatalf("node = %T, want ast.Lambda", node)
	}
	if len(lam.Params) != 1 || lam.Params[0] != "x" {
		t.Errorf("Params = %#v, want [x]", lam.Params)
	}
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	if _, err := Parse("1 + 2)"); err == nil {
		t.Fatal("expected a parse error for unbalanced trailing input")
	}
}

func TestParseRejectsEmptyInput(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Fatal("expected a parse error for empty input")
	}
}
