package nativemethod

import (
	"fmt"
	"sort"

	"github.com/aledsdavies/pyscript/internal/object"
)

func listMethods(r *object.List) map[string]func([]object.Value, map[string]object.Value) (object.Value, error) {
	return map[string]func([]object.Value, map[string]object.Value) (object.Value, error){
		"append": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) != 1 {
				return nil, wrongArgs("append")
			}
			r.Elems = append(r.Elems, args[0])
			return object.None, nil
		},
		"insert": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) != 2 {
				return nil, wrongArgs("insert")
			}
			i, _ := asInt(args[0])
			i = clampInsertIndex(i, len(r.Elems))
			r.Elems = append(r.Elems, nil)
			copy(r.Elems[i+1:], r.Elems[i:])
			r.Elems[i] = args[1]
			return object.None, nil
		},
		"remove": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) != 1 {
				return nil, wrongArgs("remove")
			}
			for i, e := range r.Elems {
				if object.Equal(e, args[0]) {
					r.Elems = append(r.Elems[:i], r.Elems[i+1:]...)
					return object.None, nil
				}
			}
			return nil, object.NewValueError("list.remove(x): x not in list")
		},
		"pop": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(r.Elems) == 0 {
				return nil, object.NewIndexError("pop from empty list")
			}
			idx := int64(len(r.Elems) - 1)
			if len(args) == 1 {
				idx, _ = asInt(args[0])
			}
			if idx < 0 {
				idx += int64(len(r.Elems))
			}
			if idx < 0 || idx >= int64(len(r.Elems)) {
				return nil, object.NewIndexError("pop index out of range")
			}
			v := r.Elems[idx]
			r.Elems = append(r.Elems[:idx], r.Elems[idx+1:]...)
			return v, nil
		},
		"clear": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			r.Elems = nil
			return object.None, nil
		},
		"copy": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			out := make([]object.Value, len(r.Elems))
			copy(out, r.Elems)
			return object.NewList(out), nil
		},
		"count": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) != 1 {
				return nil, wrongArgs("count")
			}
			n := 0
			for _, e := range r.Elems {
				if object.Equal(e, args[0]) {
					n++
				}
			}
			return object.Int(n), nil
		},
		"index": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) == 0 {
				return nil, wrongArgs("index")
			}
			start, stop := normalizeRange(argOr(args, 1, nil), argOr(args, 2, nil), len(r.Elems))
			for i := start; i < stop; i++ {
				if object.Equal(r.Elems[i], args[0]) {
					return object.Int(i), nil
				}
			}
			return nil, object.NewValueError(fmt.Sprintf("%s is not in list", args[0].Repr()))
		},
		"reverse": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			for i, j := 0, len(r.Elems)-1; i < j; i, j = i+1, j-1 {
				r.Elems[i], r.Elems[j] = r.Elems[j], r.Elems[i]
			}
			return object.None, nil
		},
		"sort": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			var sortErr error
			sort.SliceStable(r.Elems, func(i, j int) bool {
				if sortErr != nil {
					return false
				}
				less, err := lessThan(r.Elems[i], r.Elems[j])
				if err != nil {
					sortErr = err
					return false
				}
				return less
			})
			return object.None, sortErr
		},
	}
}

func clampInsertIndex(i int64, length int) int64 {
	if i < 0 {
		i += int64(length)
	}
	if i < 0 {
		return 0
	}
	if i > int64(length) {
		return int64(length)
	}
	return i
}

// normalizeRange applies the same rebase/clamp rule slicing uses, for the
// start/stop arguments of list.index / tuple.index.
func normalizeRange(startV, stopV object.Value, length int) (int, int) {
	start, stop := 0, length
	if startV != nil {
		i, _ := asInt(startV)
		start = int(clampInsertIndex(i, length))
	}
	if stopV != nil {
		i, _ := asInt(stopV)
		stop = int(clampInsertIndex(i, length))
	}
	if stop > length {
		stop = length
	}
	return start, stop
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

func asNumber(v object.Value) (float64, bool) {
	switch x := v.(type) {
	case object.Int:
		return float64(x), true
	case object.Bool:
		if x {
			return 1, true
		}
		return 0, true
	case object.Float:
		return float64(x), true
	default:
		return 0, false
	}
}

// lessThan implements natural ordering for list.sort: numbers compare
// cross-type, strings compare lexicographically, anything else is a
// TypeError.
func lessThan(a, b object.Value) (bool, error) {
	if af, ok := asNumber(a); ok {
		if bf, ok := asNumber(b); ok {
			return af < bf, nil
		}
	}
	if as, ok := a.(object.Str); ok {
		if bs, ok := b.(object.Str); ok {
			return as < bs, nil
		}
	}
	return false, object.NewTypeError(fmt.Sprintf("'<' not supported between instances of '%s' and '%s'", object.TypeName(a), object.TypeName(b)))
}
