package interp

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aledsdavies/tale/internal/value"
)

// installBuiltins binds the whitelisted builtins table (spec §4.6) plus the
// injected helpers the translator's emitted statements call by name
// (`_open_file`, `_add_to`, `input_provider`, the json/csv helpers).
func (m *Machine) installBuiltins(env *Env) {
	def := func(name string, fn value.Callback) { env.Define(name, value.CallableValue(name, fn)) }

	def("abs", func(a []value.Value) (value.Value, error) {
		v := arg(a, 0)
		if v.Kind == value.Float {
			return value.FloatValue(math.Abs(v.Float64())), nil
		}
		n := v.Int64()
		if n < 0 {
			n = -n
		}
		return value.IntValue(n), nil
	})

	def("all", func(a []value.Value) (value.Value, error) {
		items, err := iterableItems(arg(a, 0))
		if err != nil {
			return value.Value{}, err
		}
		for _, it := range items {
			if !it.Truthy() {
				return value.BoolValue(false), nil
			}
		}
		return value.BoolValue(true), nil
	})

	def("any", func(a []value.Value) (value.Value, error) {
		items, err := iterableItems(arg(a, 0))
		if err != nil {
			return value.Value{}, err
		}
		for _, it := range items {
			if it.Truthy() {
				return value.BoolValue(true), nil
			}
		}
		return value.BoolValue(false), nil
	})

	def("bool", func(a []value.Value) (value.Value, error) {
		if len(a) == 0 {
			return value.BoolValue(false), nil
		}
		return value.BoolValue(a[0].Truthy()), nil
	})

	def("dict", func(a []value.Value) (value.Value, error) {
		if len(a) == 0 {
			return value.MapValue(nil), nil
		}
		return a[0], nil
	})

	def("enumerate", func(a []value.Value) (value.Value, error) {
		items, err := iterableItems(arg(a, 0))
		if err != nil {
			return value.Value{}, err
		}
		start := int64(0)
		if len(a) > 1 {
			start = a[1].Int64()
		}
		out := make([]value.Value, len(items))
		for i, it := range items {
			out[i] = value.TupleValue([]value.Value{value.IntValue(start + int64(i)), it})
		}
		return value.ListValue(out), nil
	})

	def("filter", func(a []value.Value) (value.Value, error) {
		if len(a) < 2 {
			return value.Value{}, fmt.Errorf("filter() takes 2 arguments")
		}
		items, err := iterableItems(a[1])
		if err != nil {
			return value.Value{}, err
		}
		var out []value.Value
		for _, it := range items {
			var keep value.Value
			if a[0].Kind == value.Null {
				keep = it
			} else {
				keep, err = a[0].Fn()([]value.Value{it})
				if err != nil {
					return value.Value{}, err
				}
			}
			if keep.Truthy() {
				out = append(out, it)
			}
		}
		return value.ListValue(out), nil
	})

	def("float", func(a []value.Value) (value.Value, error) {
		v := arg(a, 0)
		switch v.Kind {
		case value.Str:
			f, err := strconv.ParseFloat(strings.TrimSpace(v.Str()), 64)
			if err != nil {
				return value.Value{}, fmt.Errorf("could not convert string to float: %s", v.Repr())
			}
			return value.FloatValue(f), nil
		default:
			return value.FloatValue(asFloat(v)), nil
		}
	})

	def("int", func(a []value.Value) (value.Value, error) {
		v := arg(a, 0)
		switch v.Kind {
		case value.Str:
			i, err := strconv.ParseInt(strings.TrimSpace(v.Str()), 10, 64)
			if err != nil {
				return value.Value{}, fmt.Errorf("invalid literal for int(): %s", v.Repr())
			}
			return value.IntValue(i), nil
		case value.Float:
			return value.IntValue(int64(v.Float64())), nil
		case value.Bool:
			if v.Bool() {
				return value.IntValue(1), nil
			}
			return value.IntValue(0), nil
		default:
			return v, nil
		}
	})

	def("len", func(a []value.Value) (value.Value, error) {
		v := arg(a, 0)
		switch v.Kind {
		case value.Str:
			return value.IntValue(int64(len([]rune(v.Str())))), nil
		case value.List, value.Tuple, value.Set:
			return value.IntValue(int64(len(v.Items()))), nil
		case value.Map:
			return value.IntValue(int64(len(v.Pairs()))), nil
		default:
			return value.Value{}, fmt.Errorf("object of type '%s' has no len()", v.Kind)
		}
	})

	def("list", func(a []value.Value) (value.Value, error) {
		if len(a) == 0 {
			return value.ListValue(nil), nil
		}
		items, err := iterableItems(a[0])
		if err != nil {
			return value.Value{}, err
		}
		return value.ListValue(append([]value.Value{}, items...)), nil
	})

	def("map", func(a []value.Value) (value.Value, error) {
		if len(a) < 2 {
			return value.Value{}, fmt.Errorf("map() takes 2 arguments")
		}
		items, err := iterableItems(a[1])
		if err != nil {
			return value.Value{}, err
		}
		out := make([]value.Value, len(items))
		for i, it := range items {
			out[i], err = a[0].Fn()([]value.Value{it})
			if err != nil {
				return value.Value{}, err
			}
		}
		return value.ListValue(out), nil
	})

	def("max", func(a []value.Value) (value.Value, error) { return extremum(a, 1) })
	def("min", func(a []value.Value) (value.Value, error) { return extremum(a, -1) })

	def("next", func(a []value.Value) (value.Value, error) {
		v := arg(a, 0)
		if gen, ok := v.Foreign().(*generator); ok && v.Kind == value.Foreign {
			val, ok, err := gen.next()
			if err != nil {
				return value.Value{}, err
			}
			if !ok {
				if len(a) > 1 {
					return a[1], nil
				}
				return value.Value{}, fmt.Errorf("StopIteration")
			}
			return val, nil
		}
		return value.Value{}, fmt.Errorf("'%s' object is not an iterator", v.Kind)
	})

	def("print", func(a []value.Value) (value.Value, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i] = v.String()
		}
		m.Stdout.WriteString(strings.Join(parts, " "))
		m.Stdout.WriteByte('\n')
		return value.NullValue(), nil
	})

	def("range", func(a []value.Value) (value.Value, error) {
		var start, stop, step int64 = 0, 0, 1
		switch len(a) {
		case 1:
			stop = a[0].Int64()
		case 2:
			start, stop = a[0].Int64(), a[1].Int64()
		case 3:
			start, stop, step = a[0].Int64(), a[1].Int64(), a[2].Int64()
		default:
			return value.Value{}, fmt.Errorf("range() takes 1 to 3 arguments")
		}
		if step == 0 {
			return value.Value{}, fmt.Errorf("range() arg 3 must not be zero")
		}
		var out []value.Value
		if step > 0 {
			for i := start; i < stop; i += step {
				out = append(out, value.IntValue(i))
			}
		} else {
			for i := start; i > stop; i += step {
				out = append(out, value.IntValue(i))
			}
		}
		return value.ListValue(out), nil
	})

	def("round", func(a []value.Value) (value.Value, error) {
		v := asFloat(arg(a, 0))
		if len(a) > 1 {
			digits := a[1].Int64()
			mul := math.Pow(10, float64(digits))
			return value.FloatValue(math.Round(v*mul) / mul), nil
		}
		return value.IntValue(int64(math.Round(v))), nil
	})

	def("set", func(a []value.Value) (value.Value, error) {
		if len(a) == 0 {
			return value.SetValue(nil), nil
		}
		items, err := iterableItems(a[0])
		if err != nil {
			return value.Value{}, err
		}
		return value.SetValue(items), nil
	})

	def("sorted", func(a []value.Value) (value.Value, error) {
		items, err := iterableItems(arg(a, 0))
		if err != nil {
			return value.Value{}, err
		}
		return value.ListValue(value.SortKeys(items)), nil
	})

	def("str", func(a []value.Value) (value.Value, error) {
		if len(a) == 0 {
			return value.StrValue(""), nil
		}
		return value.StrValue(a[0].String()), nil
	})

	def("sum", func(a []value.Value) (value.Value, error) {
		items, err := iterableItems(arg(a, 0))
		if err != nil {
			return value.Value{}, err
		}
		total := value.IntValue(0)
		if len(a) > 1 {
			total = a[1]
		}
		for _, it := range items {
			total, err = value.Add(total, it)
			if err != nil {
				return value.Value{}, err
			}
		}
		return total, nil
	})

	def("tuple", func(a []value.Value) (value.Value, error) {
		if len(a) == 0 {
			return value.TupleValue(nil), nil
		}
		items, err := iterableItems(a[0])
		if err != nil {
			return value.Value{}, err
		}
		return value.TupleValue(append([]value.Value{}, items...)), nil
	})

	def("zip", func(a []value.Value) (value.Value, error) {
		var seqs [][]value.Value
		minLen := -1
		for _, v := range a {
			items, err := iterableItems(v)
			if err != nil {
				return value.Value{}, err
			}
			seqs = append(seqs, items)
			if minLen == -1 || len(items) < minLen {
				minLen = len(items)
			}
		}
		if minLen < 0 {
			minLen = 0
		}
		out := make([]value.Value, minLen)
		for i := 0; i < minLen; i++ {
			tup := make([]value.Value, len(seqs))
			for j, s := range seqs {
				tup[j] = s[i]
			}
			out[i] = value.TupleValue(tup)
		}
		return value.ListValue(out), nil
	})

	def("id", func(a []value.Value) (value.Value, error) {
		v := arg(a, 0)
		var h int64
		for _, r := range fmt.Sprintf("%p%s%s", &v, v.Kind, v.String()) {
			h = h*31 + int64(r)
		}
		if h < 0 {
			h = -h
		}
		return value.IntValue(h), nil
	})

	def("type", func(a []value.Value) (value.Value, error) {
		return value.StrValue(arg(a, 0).Kind.String()), nil
	})

	def("Exception", func(a []value.Value) (value.Value, error) {
		if len(a) == 0 {
			return value.StrValue("Exception"), nil
		}
		return value.StrValue(a[0].String()), nil
	})

	def("open", func(a []value.Value) (value.Value, error) {
		mode := "r"
		if len(a) > 1 {
			mode = a[1].Str()
		}
		return OpenFile(arg(a, 0).Str(), mode)
	})

	// Injected helpers the translator emits by name.
	def("_open_file", func(a []value.Value) (value.Value, error) {
		mode := "r"
		if len(a) > 1 {
			mode = a[1].Str()
		}
		return OpenFile(arg(a, 0).Str(), mode)
	})

	def("_add_to", func(a []value.Value) (value.Value, error) {
		if len(a) < 2 {
			return value.Value{}, fmt.Errorf("_add_to() takes 2 arguments")
		}
		return value.AddTo(a[0], a[1])
	})

	def("_list_pop", func(a []value.Value) (value.Value, error) {
		if len(a) < 1 {
			return value.Value{}, fmt.Errorf("_list_pop() takes at least 1 argument")
		}
		idx := -1
		if len(a) > 1 {
			idx = int(a[1].Int64())
		}
		return value.PopList(a[0], idx)
	})

	def("_dict_pop", func(a []value.Value) (value.Value, error) {
		if len(a) < 2 {
			return value.Value{}, fmt.Errorf("_dict_pop() takes 2 arguments")
		}
		return value.PopDict(a[0], a[1])
	})

	def("input_provider", func(a []value.Value) (value.Value, error) {
		return m.Input.Next()
	})

	def("read_json", func(a []value.Value) (value.Value, error) { return ReadJSON(arg(a, 0).Str()) })
	def("write_json", func(a []value.Value) (value.Value, error) {
		if len(a) < 2 {
			return value.Value{}, fmt.Errorf("write_json() takes 2 arguments")
		}
		return value.NullValue(), WriteJSON(a[1].Str(), a[0])
	})
	def("read_csv", func(a []value.Value) (value.Value, error) { return ReadCSV(arg(a, 0).Str()) })
	def("write_csv", func(a []value.Value) (value.Value, error) {
		if len(a) < 2 {
			return value.Value{}, fmt.Errorf("write_csv() takes 2 arguments")
		}
		return value.NullValue(), WriteCSV(a[1].Str(), a[0])
	})
}

func arg(a []value.Value, i int) value.Value {
	if i < len(a) {
		return a[i]
	}
	return value.NullValue()
}

func extremum(a []value.Value, sign int) (value.Value, error) {
	var items []value.Value
	if len(a) == 1 {
		var err error
		items, err = iterableItems(a[0])
		if err != nil {
			return value.Value{}, err
		}
	} else {
		items = a
	}
	if len(items) == 0 {
		return value.Value{}, fmt.Errorf("arg is an empty sequence")
	}
	best := items[0]
	for _, it := range items[1:] {
		c, err := value.Compare(it, best)
		if err != nil {
			return value.Value{}, err
		}
		if c*sign > 0 {
			best = it
		}
	}
	return best, nil
}
