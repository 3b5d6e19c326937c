// Package value implements the dynamically-typed runtime value that flows
// through the TALE executor, standing in for CPython's object model.
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind tags the dynamic type of a Value.
type Kind int

const (
	Null Kind = iota
	Int
	Float
	Str
	Bool
	List
	Map
	Set
	Tuple
	Callable
	FileHandle
	Foreign
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "NoneType"
	case Int:
		return "int"
	case Float:
		return "float"
	case Str:
		return "str"
	case Bool:
		return "bool"
	case List:
		return "list"
	case Map:
		return "dict"
	case Set:
		return "set"
	case Tuple:
		return "tuple"
	case Callable:
		return "function"
	case FileHandle:
		return "file"
	case Foreign:
		return "object"
	default:
		return "unknown"
	}
}

// Callback is the Go representation of anything invokable from TALE source:
// builtins, user-defined functions/lambdas, and injected helpers alike.
type Callback func(args []Value) (Value, error)

// Pair is one insertion-ordered entry of a Map.
type Pair struct {
	Key Value
	Val Value
}

// Value is a tagged union over every runtime type TALE programs can observe.
type Value struct {
	Kind Kind

	i   int64
	f   float64
	s   string
	b   bool
	lst []Value
	// m preserves insertion order, matching Python dict semantics.
	m       []Pair
	fn      Callback
	name    string // Callable display name / FileHandle path
	foreign any
}

func NullValue() Value           { return Value{Kind: Null} }
func IntValue(i int64) Value     { return Value{Kind: Int, i: i} }
func FloatValue(f float64) Value { return Value{Kind: Float, f: f} }
func StrValue(s string) Value    { return Value{Kind: Str, s: s} }
func BoolValue(b bool) Value     { return Value{Kind: Bool, b: b} }

func ListValue(items []Value) Value  { return Value{Kind: List, lst: items} }
func TupleValue(items []Value) Value { return Value{Kind: Tuple, lst: items} }
func SetValue(items []Value) Value   { return Value{Kind: Set, lst: DedupeSet(items)} }

func MapValue(pairs []Pair) Value { return Value{Kind: Map, m: pairs} }

func CallableValue(name string, fn Callback) Value {
	return Value{Kind: Callable, name: name, fn: fn}
}

func ForeignValue(name string, v any) Value {
	return Value{Kind: Foreign, name: name, foreign: v}
}

func FileHandleValue(path string, v any) Value {
	return Value{Kind: FileHandle, name: path, foreign: v}
}

// Int64 returns the underlying integer; only valid for Kind == Int.
func (v Value) Int64() int64 { return v.i }

// Float64 returns the underlying float; only valid for Kind == Float.
func (v Value) Float64() float64 { return v.f }

// Str returns the underlying string; only valid for Kind == Str.
func (v Value) Str() string { return v.s }

// Bool returns the underlying bool; only valid for Kind == Bool.
func (v Value) Bool() bool { return v.b }

// Items returns the underlying slice for List/Tuple/Set.
func (v Value) Items() []Value { return v.lst }

// Pairs returns the underlying entries for Map.
func (v Value) Pairs() []Pair { return v.m }

// Fn returns the underlying callback for Callable.
func (v Value) Fn() Callback { return v.fn }

// Name returns the display name for Callable/FileHandle/Foreign.
func (v Value) Name() string { return v.name }

// Foreign returns the opaque Go value carried by Foreign/FileHandle.
func (v Value) Foreign() any { return v.foreign }

// IsNumeric reports whether v participates in arithmetic as a number.
func (v Value) IsNumeric() bool { return v.Kind == Int || v.Kind == Float || v.Kind == Bool }

func (v Value) asFloat() float64 {
	switch v.Kind {
	case Int:
		return float64(v.i)
	case Float:
		return v.f
	case Bool:
		if v.b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// Truthy implements Python-style truthiness.
func (v Value) Truthy() bool {
	switch v.Kind {
	case Null:
		return false
	case Bool:
		return v.b
	case Int:
		return v.i != 0
	case Float:
		return v.f != 0
	case Str:
		return v.s != ""
	case List, Tuple, Set:
		return len(v.lst) > 0
	case Map:
		return len(v.m) > 0
	default:
		return true
	}
}

// String renders v the way Python's str() would.
func (v Value) String() string {
	switch v.Kind {
	case Null:
		return "None"
	case Bool:
		if v.b {
			return "True"
		}
		return "False"
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return formatFloat(v.f)
	case Str:
		return v.s
	case List:
		return bracketed("[", "]", v.lst, true)
	case Tuple:
		if len(v.lst) == 1 {
			return "(" + v.lst[0].Repr() + ",)"
		}
		return bracketed("(", ")", v.lst, true)
	case Set:
		if len(v.lst) == 0 {
			return "set()"
		}
		return bracketed("{", "}", v.lst, true)
	case Map:
		return mapRepr(v.m)
	case Callable:
		return fmt.Sprintf("<function %s>", v.name)
	case FileHandle:
		return fmt.Sprintf("<file '%s'>", v.name)
	default:
		return fmt.Sprintf("%v", v.foreign)
	}
}

// Repr renders v the way Python's repr() would (quoting strings).
func (v Value) Repr() string {
	if v.Kind == Str {
		return "'" + strings.ReplaceAll(v.s, "'", "\\'") + "'"
	}
	return v.String()
}

func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func bracketed(open, close string, items []Value, repr bool) string {
	parts := make([]string, len(items))
	for i, it := range items {
		if repr {
			parts[i] = it.Repr()
		} else {
			parts[i] = it.String()
		}
	}
	return open + strings.Join(parts, ", ") + close
}

func mapRepr(pairs []Pair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.Key.Repr() + ": " + p.Val.Repr()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Equal implements Python's == for the tagged value model.
func Equal(a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		return a.asFloat() == b.asFloat()
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Null:
		return true
	case Str:
		return a.s == b.s
	case List, Tuple:
		if len(a.lst) != len(b.lst) {
			return false
		}
		for i := range a.lst {
			if !Equal(a.lst[i], b.lst[i]) {
				return false
			}
		}
		return true
	case Set:
		if len(a.lst) != len(b.lst) {
			return false
		}
		for _, x := range a.lst {
			if !setContains(b.lst, x) {
				return false
			}
		}
		return true
	case Map:
		if len(a.m) != len(b.m) {
			return false
		}
		for _, p := range a.m {
			v, ok := MapGet(b, p.Key)
			if !ok || !Equal(v, p.Val) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func setContains(items []Value, v Value) bool {
	for _, it := range items {
		if Equal(it, v) {
			return true
		}
	}
	return false
}

// DedupeSet removes later duplicates the way building a Python set does.
func DedupeSet(items []Value) []Value {
	out := make([]Value, 0, len(items))
	for _, it := range items {
		if !setContains(out, it) {
			out = append(out, it)
		}
	}
	return out
}

// Compare implements Python's ordering comparisons (<, <=, >, >=) for the
// subset of types TALE programs actually compare: numbers and strings.
func Compare(a, b Value) (int, error) {
	if a.IsNumeric() && b.IsNumeric() {
		af, bf := a.asFloat(), b.asFloat()
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if a.Kind == Str && b.Kind == Str {
		return strings.Compare(a.s, b.s), nil
	}
	return 0, fmt.Errorf("'<' not supported between instances of '%s' and '%s'", a.Kind, b.Kind)
}

// MapGet looks up key inside m (Kind == Map), using TALE/Python key equality.
func MapGet(m Value, key Value) (Value, bool) {
	for _, p := range m.Pairs() {
		if Equal(p.Key, key) {
			return p.Val, true
		}
	}
	return Value{}, false
}

// MapSet returns a new Map with key bound to val, overwriting in place if
// key already exists (preserving its original position, as Python does).
func MapSet(m Value, key Value, val Value) Value {
	pairs := m.Pairs()
	for i, p := range pairs {
		if Equal(p.Key, key) {
			next := make([]Pair, len(pairs))
			copy(next, pairs)
			next[i] = Pair{Key: key, Val: val}
			return MapValue(next)
		}
	}
	return MapValue(append(append([]Pair{}, pairs...), Pair{Key: key, Val: val}))
}

// SortKeys returns a stably sorted, ascending copy of items for Sort/Sorted.
func SortKeys(items []Value) []Value {
	out := append([]Value{}, items...)
	sort.SliceStable(out, func(i, j int) bool {
		c, err := Compare(out[i], out[j])
		if err != nil {
			return false
		}
		return c < 0
	})
	return out
}

// Add implements TALE's `+` across numbers, strings, lists and tuples.
func Add(a, b Value) (Value, error) {
	switch {
	case a.Kind == Str && b.Kind == Str:
		return StrValue(a.s + b.s), nil
	case a.Kind == List && b.Kind == List:
		return ListValue(append(append([]Value{}, a.lst...), b.lst...)), nil
	case a.Kind == Tuple && b.Kind == Tuple:
		return TupleValue(append(append([]Value{}, a.lst...), b.lst...)), nil
	case a.IsNumeric() && b.IsNumeric():
		if a.Kind == Float || b.Kind == Float {
			return FloatValue(a.asFloat() + b.asFloat()), nil
		}
		return IntValue(a.i + b.i), nil
	default:
		return Value{}, fmt.Errorf("unsupported operand type(s) for +: '%s' and '%s'", a.Kind, b.Kind)
	}
}

// AddTo implements the `_add_to` helper: append when the target is
// list-like, otherwise fall back to additive `+`.
func AddTo(target, v Value) (Value, error) {
	if target.Kind == List {
		return ListValue(append(append([]Value{}, target.lst...), v)), nil
	}
	result, err := Add(target, v)
	if err != nil {
		return Value{}, fmt.Errorf("Cannot add to %s: %w", target.Kind, err)
	}
	return result, nil
}

// PopList implements the `_list_pop` helper: it returns the list with the
// item at idx (default: the last item) dropped, since List has value
// semantics and the translator rebinds the name to this result.
func PopList(target Value, idx int) (Value, error) {
	if target.Kind != List {
		return Value{}, fmt.Errorf("'%s' object has no attribute 'pop'", target.Kind)
	}
	items := target.lst
	if len(items) == 0 {
		return Value{}, fmt.Errorf("pop from empty list")
	}
	if idx < 0 {
		idx += len(items)
	}
	if idx < 0 || idx >= len(items) {
		return Value{}, fmt.Errorf("pop index out of range")
	}
	out := append([]Value{}, items[:idx]...)
	out = append(out, items[idx+1:]...)
	return ListValue(out), nil
}

// PopDict implements the `_dict_pop` helper: it returns the map with key
// removed, since Map has value semantics and the translator rebinds the
// name to this result. Popping a missing key is a no-op (safe pop).
func PopDict(target Value, key Value) (Value, error) {
	if target.Kind != Map {
		return Value{}, fmt.Errorf("'%s' object has no attribute 'pop'", target.Kind)
	}
	pairs := target.Pairs()
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if Equal(p.Key, key) {
			continue
		}
		out = append(out, p)
	}
	return MapValue(out), nil
}
