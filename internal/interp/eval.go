package interp

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/tale/internal/ast"
	"github.com/aledsdavies/tale/internal/errs"
	"github.com/aledsdavies/tale/internal/value"
)

// Eval walks a parsed expression against env, resolving names through the
// scope chain and dispatching builtins/user functions through the machine's
// call convention.
func (m *Machine) Eval(node ast.Node, env *Env) (value.Value, error) {
	switch n := node.(type) {
	case ast.IntLit:
		return value.IntValue(n.Value), nil
	case ast.FloatLit:
		return value.FloatValue(n.Value), nil
	case ast.StrLit:
		return value.StrValue(n.Value), nil
	case ast.BoolLit:
		return value.BoolValue(n.Value), nil
	case ast.NoneLit:
		return value.NullValue(), nil

	case ast.Name:
		if v, ok := env.Get(n.Ident); ok {
			return v, nil
		}
		return value.Value{}, errs.NewUnknownName(n.Ident)

	case ast.UnaryOp:
		x, err := m.Eval(n.X, env)
		if err != nil {
			return value.Value{}, err
		}
		switch n.Op {
		case "-":
			return value.Negate(x)
		case "+":
			return x, nil
		case "not":
			return value.BoolValue(!x.Truthy()), nil
		}
		return value.Value{}, fmt.Errorf("unknown unary operator %s", n.Op)

	case ast.BinOp:
		x, err := m.Eval(n.X, env)
		if err != nil {
			return value.Value{}, err
		}
		y, err := m.Eval(n.Y, env)
		if err != nil {
			return value.Value{}, err
		}
		switch n.Op {
		case "+":
			return value.Add(x, y)
		case "|", "&":
			return value.BinarySet(n.Op, x, y)
		case "-":
			if x.Kind == value.Set && y.Kind == value.Set {
				return value.BinarySet(n.Op, x, y)
			}
			return value.BinaryNumeric(n.Op, x, y)
		default:
			return value.BinaryNumeric(n.Op, x, y)
		}

	case ast.BoolOp:
		var last value.Value
		for _, o := range n.Operands {
			v, err := m.Eval(o, env)
			if err != nil {
				return value.Value{}, err
			}
			last = v
			if n.Op == "and" && !v.Truthy() {
				return v, nil
			}
			if n.Op == "or" && v.Truthy() {
				return v, nil
			}
		}
		return last, nil

	case ast.Compare:
		first, err := m.Eval(n.First, env)
		if err != nil {
			return value.Value{}, err
		}
		left := first
		for i, op := range n.Ops {
			right, err := m.Eval(n.Rest[i], env)
			if err != nil {
				return value.Value{}, err
			}
			ok, err := compareOne(op, left, right)
			if err != nil {
				return value.Value{}, err
			}
			if !ok {
				return value.BoolValue(false), nil
			}
			left = right
		}
		return value.BoolValue(true), nil

	case ast.ListLit:
		items, err := m.evalList(n.Elts, env)
		if err != nil {
			return value.Value{}, err
		}
		return value.ListValue(items), nil

	case ast.TupleLit:
		items, err := m.evalList(n.Elts, env)
		if err != nil {
			return value.Value{}, err
		}
		return value.TupleValue(items), nil

	case ast.SetLit:
		items, err := m.evalList(n.Elts, env)
		if err != nil {
			return value.Value{}, err
		}
		return value.SetValue(items), nil

	case ast.DictLit:
		var pairs []value.Pair
		for _, e := range n.Entries {
			k, err := m.Eval(e.Key, env)
			if err != nil {
				return value.Value{}, err
			}
			v, err := m.Eval(e.Value, env)
			if err != nil {
				return value.Value{}, err
			}
			pairs = append(pairs, value.Pair{Key: k, Val: v})
		}
		return value.MapValue(pairs), nil

	case ast.CondExpr:
		cond, err := m.Eval(n.Cond, env)
		if err != nil {
			return value.Value{}, err
		}
		if cond.Truthy() {
			return m.Eval(n.Body, env)
		}
		return m.Eval(n.OrElse, env)

	case ast.Attribute:
		x, err := m.Eval(n.X, env)
		if err != nil {
			return value.Value{}, err
		}
		return m.evalAttribute(x, n.Attr)

	case ast.Subscript:
		x, err := m.Eval(n.X, env)
		if err != nil {
			return value.Value{}, err
		}
		if sl, ok := n.Index.(ast.Slice); ok {
			return m.evalSlice(x, sl, env)
		}
		idx, err := m.Eval(n.Index, env)
		if err != nil {
			return value.Value{}, err
		}
		return evalIndex(x, idx)

	case ast.Call:
		return m.evalCall(n, env)

	case ast.Lambda:
		captured := env
		params := n.Params
		body := n.Body
		return value.CallableValue("<lambda>", func(args []value.Value) (value.Value, error) {
			callEnv := NewEnv(captured)
			for i, p := range params {
				if i < len(args) {
					callEnv.Define(p, args[i])
				} else {
					callEnv.Define(p, value.NullValue())
				}
			}
			return m.Eval(body, callEnv)
		}), nil

	case ast.Comprehension:
		return m.evalComprehension(n, env)
	}

	return value.Value{}, fmt.Errorf("cannot evaluate node %T", node)
}

func (m *Machine) evalList(nodes []ast.Node, env *Env) ([]value.Value, error) {
	out := make([]value.Value, 0, len(nodes))
	for _, n := range nodes {
		v, err := m.Eval(n, env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func compareOne(op string, a, b value.Value) (bool, error) {
	switch op {
	case "==":
		return value.Equal(a, b), nil
	case "!=":
		return !value.Equal(a, b), nil
	case "in":
		return containsValue(b, a), nil
	case "not in":
		return !containsValue(b, a), nil
	case "is":
		return value.Equal(a, b) && a.Kind == b.Kind, nil
	case "is not":
		return !(value.Equal(a, b) && a.Kind == b.Kind), nil
	}
	c, err := value.Compare(a, b)
	if err != nil {
		return false, err
	}
	switch op {
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	}
	return false, fmt.Errorf("unknown comparison operator %s", op)
}

func containsValue(container, item value.Value) bool {
	switch container.Kind {
	case value.Str:
		return item.Kind == value.Str && strings.Contains(container.Str(), item.Str())
	case value.List, value.Tuple, value.Set:
		for _, it := range container.Items() {
			if value.Equal(it, item) {
				return true
			}
		}
		return false
	case value.Map:
		_, ok := value.MapGet(container, item)
		return ok
	default:
		return false
	}
}
