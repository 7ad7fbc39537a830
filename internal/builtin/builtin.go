// Package builtin registers the fixed catalog of global functions
// (print, range, len, str, int, float, bool, type, abs, list, dict, set,
// tuple, round, min, max, sum, repr, isinstance) plus the built-in
// exception constructors, into the outermost environment at interpreter
// construction.
package builtin

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aledsdavies/pyscript/internal/eval"
	"github.com/aledsdavies/pyscript/internal/object"
)

// Install binds every catalog entry in env, the outermost environment.
// print writes through the given callback, which receives already-formatted
// output and owns any buffering of partial lines.
func Install(env *object.Environment, print func(string)) {
	for name, fn := range catalog(print) {
		env.Define(name, &object.Native{Name: name, Fn: fn})
	}
	for _, name := range exceptionNames {
		env.Define(name, &object.Native{Name: name, Fn: exceptionCtor(name)})
	}
}

// exceptionNames are the built-in exception classes scripts can raise and
// catch by name; each is bound to a constructor taking an optional message.
var exceptionNames = []string{
	"Exception", "TypeError", "ValueError", "KeyError", "IndexError",
	"AttributeError", "NameError", "ZeroDivisionError", "RuntimeError",
}

func exceptionCtor(name string) object.NativeFn {
	return func(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
		msg := ""
		if len(pos) > 0 {
			msg = pos[0].Str()
		}
		return &object.Exception{ClassName: name, Message: msg}, nil
	}
}

func catalog(print func(string)) map[string]object.NativeFn {
	return map[string]object.NativeFn{
		"print":      biPrint(print),
		"range":      biRange,
		"len":        biLen,
		"str":        biStr,
		"repr":       biRepr,
		"int":        biInt,
		"float":      biFloat,
		"bool":       biBool,
		"type":       biType,
		"abs":        biAbs,
		"list":       biList,
		"dict":       biDict,
		"set":        biSet,
		"tuple":      biTuple,
		"round":      biRound,
		"min":        biMin,
		"max":        biMax,
		"sum":        biSum,
		"isinstance": biIsinstance,
	}
}

func biPrint(print func(string)) object.NativeFn {
	return func(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
		sep := " "
		if v, ok := kw["sep"]; ok && v != object.None {
			sep = v.Str()
		}
		end := "\n"
		if v, ok := kw["end"]; ok && v != object.None {
			end = v.Str()
		}
		parts := make([]string, len(pos))
		for i, v := range pos {
			parts[i] = v.Str()
		}
		print(strings.Join(parts, sep) + end)
		return object.None, nil
	}
}

func biRange(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(pos) {
	case 1:
		n, ok := asInt(pos[0])
		if !ok {
			return nil, object.NewTypeError("range() integer argument expected")
		}
		stop = n
	case 2, 3:
		a, ok1 := asInt(pos[0])
		b, ok2 := asInt(pos[1])
		if !ok1 || !ok2 {
			return nil, object.NewTypeError("range() integer argument expected")
		}
		start, stop = a, b
		if len(pos) == 3 {
			s, ok := asInt(pos[2])
			if !ok {
				return nil, object.NewTypeError("range() integer argument expected")
			}
			step = s
		}
	default:
		return nil, object.NewTypeError("range() takes 1 to 3 arguments")
	}
	if step == 0 {
		return nil, object.NewValueError("range() arg 3 must not be zero")
	}
	var out []object.Value
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, object.Int(i))
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, object.Int(i))
		}
	}
	return object.NewList(out), nil
}

func biLen(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	if len(pos) != 1 {
		return nil, object.NewTypeError("len() takes exactly one argument")
	}
	switch x := pos[0].(type) {
	case object.Str:
		return object.Int(len(x)), nil
	case *object.List:
		return object.Int(len(x.Elems)), nil
	case *object.Tuple:
		return object.Int(len(x.Elems)), nil
	case *object.Dict:
		return object.Int(x.Len()), nil
	case *object.Set:
		return object.Int(x.Len()), nil
	default:
		return nil, object.NewTypeError(fmt.Sprintf("object of type '%s' has no len()", object.TypeName(pos[0])))
	}
}

func biStr(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	if len(pos) == 0 {
		return object.Str(""), nil
	}
	return object.Str(pos[0].Str()), nil
}

func biRepr(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	if len(pos) != 1 {
		return nil, object.NewTypeError("repr() takes exactly one argument")
	}
	return object.Str(pos[0].Repr()), nil
}

func biInt(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	base := int64(10)
	baseGiven := false
	if v, ok := kw["base"]; ok {
		b, ok := asInt(v)
		if !ok {
			return nil, object.NewTypeError("int() base must be an integer")
		}
		base, baseGiven = b, true
	}
	if len(pos) == 0 {
		return object.Int(0), nil
	}
	if len(pos) > 1 {
		b, ok := asInt(pos[1])
		if !ok {
			return nil, object.NewTypeError("int() base must be an integer")
		}
		base, baseGiven = b, true
	}
	switch x := pos[0].(type) {
	case object.Int:
		if baseGiven {
			return nil, object.NewTypeError("int() can't convert non-string with explicit base")
		}
		return x, nil
	case object.Float:
		if baseGiven {
			return nil, object.NewTypeError("int() can't convert non-string with explicit base")
		}
		return object.Int(int64(x)), nil
	case object.Bool:
		if baseGiven {
			return nil, object.NewTypeError("int() can't convert non-string with explicit base")
		}
		if x {
			return object.Int(1), nil
		}
		return object.Int(0), nil
	case object.Str:
		s := strings.TrimSpace(string(x))
		if base != 0 && (base < 2 || base > 36) {
			return nil, object.NewValueError("int() base must be >= 2 and <= 36, or 0")
		}
		s = stripBasePrefix(s, base)
		n, err := strconv.ParseInt(s, int(base), 64)
		if err != nil {
			return nil, object.NewValueError(fmt.Sprintf("invalid literal for int() with base %d: %s", base, x.Repr()))
		}
		return object.Int(n), nil
	default:
		return nil, object.NewTypeError(fmt.Sprintf("int() argument must be a string, a number, or a bool, not '%s'", object.TypeName(pos[0])))
	}
}

// stripBasePrefix drops a redundant 0x/0o/0b prefix when the caller passed
// the matching explicit base, which int("0x1A", 16) permits. Base 0 keeps
// its prefix so auto-detection still sees it.
func stripBasePrefix(s string, base int64) string {
	sign := ""
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		sign, s = s[:1], s[1:]
	}
	if len(s) < 2 || s[0] != '0' {
		return sign + s
	}
	switch {
	case base == 16 && (s[1] == 'x' || s[1] == 'X'),
		base == 8 && (s[1] == 'o' || s[1] == 'O'),
		base == 2 && (s[1] == 'b' || s[1] == 'B'):
		return sign + s[2:]
	}
	return sign + s
}

func biFloat(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	if len(pos) == 0 {
		return object.Float(0), nil
	}
	switch x := pos[0].(type) {
	case object.Int:
		return object.Float(x), nil
	case object.Float:
		return x, nil
	case object.Bool:
		if x {
			return object.Float(1), nil
		}
		return object.Float(0), nil
	case object.Str:
		s := strings.TrimSpace(string(x))
		switch strings.ToLower(s) {
		case "inf", "+inf", "infinity":
			return object.Float(math.Inf(1)), nil
		case "-inf", "-infinity":
			return object.Float(math.Inf(-1)), nil
		case "nan", "-nan":
			return object.Float(math.NaN()), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, object.NewValueError(fmt.Sprintf("could not convert string to float: %s", x.Repr()))
		}
		return object.Float(f), nil
	default:
		return nil, object.NewTypeError(fmt.Sprintf("float() argument must be a string or a number, not '%s'", object.TypeName(pos[0])))
	}
}

func biBool(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	if len(pos) == 0 {
		return object.Bool(false), nil
	}
	return object.Bool(object.Truthy(pos[0])), nil
}

func biType(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	if len(pos) != 1 {
		return nil, object.NewTypeError("type() takes exactly one argument")
	}
	return object.Str(fmt.Sprintf("<class '%s'>", object.TypeName(pos[0]))), nil
}

func biAbs(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	if len(pos) != 1 {
		return nil, object.NewTypeError("abs() takes exactly one argument")
	}
	switch x := pos[0].(type) {
	case object.Int:
		if x < 0 {
			return -x, nil
		}
		return x, nil
	case object.Float:
		return object.Float(math.Abs(float64(x))), nil
	case object.Bool:
		if x {
			return object.Int(1), nil
		}
		return object.Int(0), nil
	default:
		return nil, object.NewTypeError(fmt.Sprintf("bad operand type for abs(): '%s'", object.TypeName(pos[0])))
	}
}

func biList(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	if len(pos) == 0 {
		return object.NewList(nil), nil
	}
	items, err := eval.Iterate(pos[0])
	if err != nil {
		return nil, err
	}
	return object.NewList(append([]object.Value{}, items...)), nil
}

func biTuple(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	if len(pos) == 0 {
		return object.NewTuple(nil), nil
	}
	items, err := eval.Iterate(pos[0])
	if err != nil {
		return nil, err
	}
	return object.NewTuple(append([]object.Value{}, items...)), nil
}

func biSet(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	s := object.NewSet()
	if len(pos) == 0 {
		return s, nil
	}
	items, err := eval.Iterate(pos[0])
	if err != nil {
		return nil, err
	}
	for _, v := range items {
		if _, err := s.Add(v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// biDict accepts an optional positional mapping (a dict, or any iterable
// of 2-element pairs) plus keyword arguments as additional entries.
func biDict(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	d := object.NewDict()
	if len(pos) > 1 {
		return nil, object.NewTypeError("dict() takes at most one positional argument")
	}
	if len(pos) == 1 {
		if src, ok := pos[0].(*object.Dict); ok {
			for _, k := range src.Keys() {
				v, _, _ := src.Get(k)
				if err := d.Set(k, v); err != nil {
					return nil, err
				}
			}
		} else {
			pairs, err := eval.Iterate(pos[0])
			if err != nil {
				return nil, err
			}
			for _, p := range pairs {
				tup, ok := p.(*object.Tuple)
				var elems []object.Value
				if ok {
					elems = tup.Elems
				} else if lst, ok := p.(*object.List); ok {
					elems = lst.Elems
				} else {
					return nil, object.NewTypeError("cannot convert dict update sequence element to a 2-element sequence")
				}
				if len(elems) != 2 {
					return nil, object.NewValueError("dictionary update sequence element has wrong length")
				}
				if err := d.Set(elems[0], elems[1]); err != nil {
					return nil, err
				}
			}
		}
	}
	for k, v := range kw {
		if err := d.Set(object.Str(k), v); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// biRound implements Python 3's banker's rounding (round-half-to-even),
// scaled by 10^ndigits with a fixed epsilon tolerance for the boundary
// check.
func biRound(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	if len(pos) == 0 {
		return nil, object.NewTypeError("round() missing required argument: 'x'")
	}
	ndigits := int64(0)
	if len(pos) > 1 {
		n, ok := asInt(pos[1])
		if !ok {
			return nil, object.NewTypeError("round() second argument must be an integer")
		}
		ndigits = n
	}
	f, ok := numericFloat(pos[0])
	if !ok {
		return nil, object.NewTypeError(fmt.Sprintf("type '%s' doesn't define __round__ method", object.TypeName(pos[0])))
	}
	r := bankersRound(f, int(ndigits))
	if ndigits == 0 {
		return object.Int(int64(r)), nil
	}
	return object.Float(r), nil
}

const roundEpsilon = 1e-9

func bankersRound(x float64, ndigits int) float64 {
	mult := math.Pow(10, float64(ndigits))
	scaled := x * mult
	floor := math.Floor(scaled)
	diff := scaled - floor
	var result float64
	switch {
	case diff > 0.5+roundEpsilon:
		result = floor + 1
	case diff < 0.5-roundEpsilon:
		result = floor
	default:
		if math.Mod(floor, 2) == 0 {
			result = floor
		} else {
			result = floor + 1
		}
	}
	return result / mult
}

func biMin(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	return minmax(pos, true)
}

func biMax(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	return minmax(pos, false)
}

func minmax(pos []object.Value, wantMin bool) (object.Value, error) {
	var items []object.Value
	if len(pos) == 1 {
		vals, err := eval.Iterate(pos[0])
		if err != nil {
			return nil, err
		}
		items = vals
	} else {
		items = pos
	}
	if len(items) == 0 {
		if wantMin {
			return nil, object.NewValueError("min() arg is an empty sequence")
		}
		return nil, object.NewValueError("max() arg is an empty sequence")
	}
	best := items[0]
	for _, v := range items[1:] {
		if wantMin {
			less, err := eval.Less(v, best)
			if err != nil {
				return nil, err
			}
			if less {
				best = v
			}
		} else {
			greater, err := eval.Less(best, v)
			if err != nil {
				return nil, err
			}
			if greater {
				best = v
			}
		}
	}
	return best, nil
}

func biSum(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	if len(pos) == 0 {
		return nil, object.NewTypeError("sum() missing required argument: 'iterable'")
	}
	items, err := eval.Iterate(pos[0])
	if err != nil {
		return nil, err
	}
	var start object.Value = object.Int(0)
	if v, ok := kw["start"]; ok {
		start = v
	} else if len(pos) > 1 {
		start = pos[1]
	}
	acc := start
	for _, v := range items {
		acc, err = eval.Add(acc, v)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// biIsinstance accepts a user class object, a built-in type function
// (int, str, list, ...), or a type-name string as its second argument:
// for instances the class chain is walked, for primitives the canonical
// type name is matched.
func biIsinstance(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	if len(pos) != 2 {
		return nil, object.NewTypeError("isinstance() takes exactly two arguments")
	}
	obj, clsArg := pos[0], pos[1]
	if inst, ok := obj.(*object.Instance); ok {
		cls, ok := clsArg.(*object.Class)
		if !ok {
			return object.Bool(false), nil
		}
		for c := inst.Class; c != nil; c = c.Super {
			if c == cls {
				return object.Bool(true), nil
			}
		}
		return object.Bool(false), nil
	}
	var name string
	switch c := clsArg.(type) {
	case *object.Native:
		name = c.Name
	case object.Str:
		name = string(c)
	default:
		return object.Bool(false), nil
	}
	return object.Bool(object.TypeName(obj) == name), nil
}

func asInt(v object.Value) (int64, bool) {
	switch x := v.(type) {
	case object.Int:
		return int64(x), true
	case object.Bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func numericFloat(v object.Value) (float64, bool) {
	switch x := v.(type) {
	case object.Int:
		return float64(x), true
	case object.Float:
		return float64(x), true
	case object.Bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
