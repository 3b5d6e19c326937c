// Package ast defines the expression AST the canonical (rewritten) TALE
// expression surface parses into. The node set here is exhaustive: the
// parser in internal/exprparser can construct only these kinds, which is
// what makes the grammar itself the §4.5 validator allow-list.
package ast

// Node is implemented by every expression AST node.
type Node interface {
	exprNode()
}

// Name is a bare identifier load, e.g. `x`.
type Name struct {
	Ident string
}

// IntLit is an integer literal.
type IntLit struct{ Value int64 }

// FloatLit is a floating-point literal.
type FloatLit struct{ Value float64 }

// StrLit is a (possibly triple-quoted) string literal, already unescaped.
type StrLit struct{ Value string }

// BoolLit is True/False.
type BoolLit struct{ Value bool }

// NoneLit is None.
type NoneLit struct{}

// UnaryOp is a prefix operator: - + not.
type UnaryOp struct {
	Op string
	X  Node
}

// BinOp is an arithmetic or set binary operator: + - * / % // ** | & .
type BinOp struct {
	Op   string
	X, Y Node
}

// BoolOp is `and`/`or` chaining over two or more operands.
type BoolOp struct {
	Op       string // "and" | "or"
	Operands []Node
}

// Compare is a chained comparison: a op1 b op2 c ...
type Compare struct {
	First Node
	Ops   []string
	Rest  []Node
}

// Call is a function/method invocation.
type Call struct {
	Fn   Node
	Args []Node
}

// Attribute is `.` member access: x.upper
type Attribute struct {
	X    Node
	Attr string
}

// Subscript is `X[idx]`.
type Subscript struct {
	X     Node
	Index Node
}

// Slice is `start:stop:step`, any part may be nil.
type Slice struct {
	Start, Stop, Step Node
}

// ListLit is `[a, b, c]`.
type ListLit struct{ Elts []Node }

// TupleLit is `(a, b, c)`.
type TupleLit struct{ Elts []Node }

// SetLit is `{a, b, c}`.
type SetLit struct{ Elts []Node }

// DictEntry is one `key: value` pair of a DictLit.
type DictEntry struct{ Key, Value Node }

// DictLit is `{k: v, ...}`.
type DictLit struct{ Entries []DictEntry }

// CompClause is one `for target in iter [if cond]*` clause of a comprehension.
type CompClause struct {
	Target string
	Iter   Node
	Ifs    []Node
}

// CompKind distinguishes list/set/dict/generator comprehensions.
type CompKind int

const (
	ListComp CompKind = iota
	SetComp
	DictComp
	GenExp
)

// Comprehension is `[elt for target in iter if cond]` and its dict/set/gen
// siblings; Key is only populated for DictComp.
type Comprehension struct {
	Kind    CompKind
	Elt     Node
	Key     Node
	Clauses []CompClause
}

// CondExpr is `a if cond else b`.
type CondExpr struct {
	Body, Cond, OrElse Node
}

// Lambda is `lambda params: body`.
type Lambda struct {
	Params []string
	Body   Node
}

func (Name) exprNode()          {}
func (IntLit) exprNode()        {}
func (FloatLit) exprNode()      {}
func (StrLit) exprNode()        {}
func (BoolLit) exprNode()       {}
func (NoneLit) exprNode()       {}
func (UnaryOp) exprNode()       {}
func (BinOp) exprNode()         {}
func (BoolOp) exprNode()        {}
func (Compare) exprNode()       {}
func (Call) exprNode()          {}
func (Attribute) exprNode()     {}
func (Subscript) exprNode()     {}
func (Slice) exprNode()         {}
func (ListLit) exprNode()       {}
func (TupleLit) exprNode()      {}
func (SetLit) exprNode()        {}
func (DictLit) exprNode()       {}
func (Comprehension) exprNode() {}
func (CondExpr) exprNode()      {}
func (Lambda) exprNode()        {}
