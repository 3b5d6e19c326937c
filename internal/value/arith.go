package value

import (
	"fmt"
	"math"
)

// BinaryNumeric implements the remaining arithmetic operators TALE's
// validator allows: - * / % // ** (Add lives in value.go since `+` is
// overloaded onto strings/lists/tuples too).
func BinaryNumeric(op string, a, b Value) (Value, error) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Value{}, fmt.Errorf("unsupported operand type(s) for %s: '%s' and '%s'", op, a.Kind, b.Kind)
	}
	useFloat := a.Kind == Float || b.Kind == Float
	switch op {
	case "-":
		if useFloat {
			return FloatValue(a.asFloat() - b.asFloat()), nil
		}
		return IntValue(a.i - b.i), nil
	case "*":
		if useFloat {
			return FloatValue(a.asFloat() * b.asFloat()), nil
		}
		return IntValue(a.i * b.i), nil
	case "/":
		if b.asFloat() == 0 {
			return Value{}, fmt.Errorf("division by zero")
		}
		return FloatValue(a.asFloat() / b.asFloat()), nil
	case "//":
		if b.asFloat() == 0 {
			return Value{}, fmt.Errorf("integer division or modulo by zero")
		}
		if useFloat {
			return FloatValue(math.Floor(a.asFloat() / b.asFloat())), nil
		}
		return IntValue(int64(math.Floor(float64(a.i) / float64(b.i)))), nil
	case "%":
		if b.asFloat() == 0 {
			return Value{}, fmt.Errorf("modulo by zero")
		}
		if useFloat {
			return FloatValue(math.Mod(a.asFloat(), b.asFloat())), nil
		}
		m := a.i % b.i
		if m != 0 && (m < 0) != (b.i < 0) {
			m += b.i
		}
		return IntValue(m), nil
	case "**":
		if useFloat {
			return FloatValue(math.Pow(a.asFloat(), b.asFloat())), nil
		}
		if b.i < 0 {
			return FloatValue(math.Pow(float64(a.i), float64(b.i))), nil
		}
		result := int64(1)
		base := a.i
		for exp := b.i; exp > 0; exp-- {
			result *= base
		}
		return IntValue(result), nil
	default:
		return Value{}, fmt.Errorf("unknown operator %s", op)
	}
}

// Negate implements unary `-`.
func Negate(a Value) (Value, error) {
	switch a.Kind {
	case Int:
		return IntValue(-a.i), nil
	case Float:
		return FloatValue(-a.f), nil
	case Bool:
		if a.b {
			return IntValue(-1), nil
		}
		return IntValue(0), nil
	default:
		return Value{}, fmt.Errorf("bad operand type for unary -: '%s'", a.Kind)
	}
}

// BinarySet implements the set operators | & - used by union/intersection/difference.
func BinarySet(op string, a, b Value) (Value, error) {
	if a.Kind != Set || b.Kind != Set {
		return Value{}, fmt.Errorf("unsupported operand type(s) for %s: '%s' and '%s'", op, a.Kind, b.Kind)
	}
	switch op {
	case "|":
		return SetValue(append(append([]Value{}, a.lst...), b.lst...)), nil
	case "&":
		var out []Value
		for _, x := range a.lst {
			if setContains(b.lst, x) {
				out = append(out, x)
			}
		}
		return SetValue(out), nil
	case "-":
		var out []Value
		for _, x := range a.lst {
			if !setContains(b.lst, x) {
				out = append(out, x)
			}
		}
		return SetValue(out), nil
	default:
		return Value{}, fmt.Errorf("unknown set operator %s", op)
	}
}
