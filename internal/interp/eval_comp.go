package interp

import (
	"github.com/aledsdavies/tale/internal/ast"
	"github.com/aledsdavies/tale/internal/value"
)

// evalComprehension evaluates list/set/dict/generator comprehensions. A
// generator expression is materialized eagerly into a list: every consumer
// in this interpreter (sum, list, for-loops, ...) drains it fully anyway, so
// the laziness Python affords buys nothing here.
func (m *Machine) evalComprehension(n ast.Comprehension, env *Env) (value.Value, error) {
	var results []value.Value
	var keys []value.Value

	var walk func(clauseIdx int, scope *Env) error
	walk = func(clauseIdx int, scope *Env) error {
		if clauseIdx == len(n.Clauses) {
			v, err := m.Eval(n.Elt, scope)
			if err != nil {
				return err
			}
			if n.Kind == ast.DictComp {
				k, err := m.Eval(n.Key, scope)
				if err != nil {
					return err
				}
				keys = append(keys, k)
			}
			results = append(results, v)
			return nil
		}

		clause := n.Clauses[clauseIdx]
		iter, err := m.Eval(clause.Iter, scope)
		if err != nil {
			return err
		}
		items, err := iterableItems(iter)
		if err != nil {
			return err
		}

		for _, it := range items {
			inner := NewEnv(scope)
			inner.Define(clause.Target, it)
			ok := true
			for _, ifExpr := range clause.Ifs {
				v, err := m.Eval(ifExpr, inner)
				if err != nil {
					return err
				}
				if !v.Truthy() {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			if err := walk(clauseIdx+1, inner); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(0, env); err != nil {
		return value.Value{}, err
	}

	switch n.Kind {
	case ast.SetComp:
		return value.SetValue(results), nil
	case ast.DictComp:
		pairs := make([]value.Pair, len(results))
		for i := range results {
			pairs[i] = value.Pair{Key: keys[i], Val: results[i]}
		}
		return value.MapValue(pairs), nil
	default: // ListComp, GenExp
		return value.ListValue(results), nil
	}
}

// iterableItems materializes any TALE iterable into a Go slice for the
// interpreter's own loop/comprehension machinery.
func iterableItems(v value.Value) ([]value.Value, error) {
	switch v.Kind {
	case value.List, value.Tuple, value.Set:
		return v.Items(), nil
	case value.Str:
		runes := []rune(v.Str())
		out := make([]value.Value, len(runes))
		for i, r := range runes {
			out[i] = value.StrValue(string(r))
		}
		return out, nil
	case value.Map:
		var out []value.Value
		for _, p := range v.Pairs() {
			out = append(out, p.Key)
		}
		return out, nil
	case value.Foreign:
		if gen, ok := v.Foreign().(*generator); ok {
			return gen.drain(), nil
		}
	}
	return nil, rangeError(v)
}
