package nativemethod

import (
	"fmt"

	"github.com/aledsdavies/pyscript/internal/object"
)

func tupleMethods(r *object.Tuple) map[string]func([]object.Value, map[string]object.Value) (object.Value, error) {
	return map[string]func([]object.Value, map[string]object.Value) (object.Value, error){
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
			return nil, object.NewValueError(fmt.Sprintf("%s is not in tuple", args[0].Repr()))
		},
	}
}
