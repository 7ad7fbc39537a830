// Package nativemethod implements the receiver-bound native callables for
// list/dict/str/set/tuple, per the interpreter's design note: a single
// record of (receiver, implementation, name) rather than a distinct Go type
// per container, with dispatch keyed on container-kind x method-name.
package nativemethod

import (
	"fmt"
	"sort"

	"github.com/aledsdavies/pyscript/internal/object"
)

// Lookup returns the bound implementation for receiver.name, or (nil, names,
// nil) when the receiver is a native container but has no such method
// (names lists every method available on that kind, for AttributeError
// suggestion hints), or (nil, nil, nil) when the receiver kind carries no
// native methods at all.
func Lookup(recv object.Value, name string) (object.NativeFn, []string, error) {
	var table map[string]func(args []object.Value, kw map[string]object.Value) (object.Value, error)
	switch r := recv.(type) {
	case *object.List:
		table = listMethods(r)
	case *object.Dict:
		table = dictMethods(r)
	case object.Str:
		table = strMethods(r)
	case *object.Set:
		table = setMethods(r)
	case *object.Tuple:
		table = tupleMethods(r)
	default:
		return nil, nil, nil
	}
	names := make([]string, 0, len(table))
	for n := range table {
		names = append(names, n)
	}
	sort.Strings(names)
	impl, ok := table[name]
	if !ok {
		return nil, names, nil
	}
	return object.NativeFn(impl), names, nil
}

func toValues(v object.Value) ([]object.Value, error) {
	switch x := v.(type) {
	case *object.List:
		return x.Elems, nil
	case *object.Tuple:
		return x.Elems, nil
	case *object.Set:
		return x.Values(), nil
	case *object.Dict:
		return x.Keys(), nil
	case object.Str:
		out := make([]object.Value, len(x))
		for i := 0; i < len(x); i++ {
			out[i] = object.Str(x[i])
		}
		return out, nil
	default:
		return nil, object.NewTypeError(fmt.Sprintf("'%s' object is not iterable", object.TypeName(v)))
	}
}

func argOr(args []object.Value, i int, def object.Value) object.Value {
	if i < len(args) {
		return args[i]
	}
	return def
}

func wrongArgs(method string) error {
	return object.NewTypeError(fmt.Sprintf("%s() called with wrong number of arguments", method))
}
