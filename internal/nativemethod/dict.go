package nativemethod

import (
	"github.com/aledsdavies/pyscript/internal/object"
)

func dictMethods(r *object.Dict) map[string]func([]object.Value, map[string]object.Value) (object.Value, error) {
	return map[string]func([]object.Value, map[string]object.Value) (object.Value, error){
		"keys": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			return object.NewList(r.Keys()), nil
		},
		"values": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			return object.NewList(r.Values()), nil
		},
		"items": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			keys, vals := r.Keys(), r.Values()
			out := make([]object.Value, len(keys))
			for i := range keys {
				out[i] = object.NewTuple([]object.Value{keys[i], vals[i]})
			}
			return object.NewList(out), nil
		},
		"get": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) == 0 {
				return nil, wrongArgs("get")
			}
			v, ok, err := r.Get(args[0])
			if err != nil {
				return nil, err
			}
			if ok {
				return v, nil
			}
			return argOr(args, 1, object.None), nil
		},
		"pop": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) == 0 {
				return nil, wrongArgs("pop")
			}
			v, ok, err := r.Get(args[0])
			if err != nil {
				return nil, err
			}
			if !ok {
				if len(args) >= 2 {
					return args[1], nil
				}
				return nil, object.NewKeyError(args[0].Repr())
			}
			if _, err := r.Delete(args[0]); err != nil {
				return nil, err
			}
			return v, nil
		},
		"clear": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			for _, k := range r.Keys() {
				r.Delete(k)
			}
			return object.None, nil
		},
		"copy": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			out := object.NewDict()
			for _, k := range r.Keys() {
				v, _, _ := r.Get(k)
				out.Set(k, v)
			}
			return out, nil
		},
		"update": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) >= 1 && args[0] != nil {
				if err := mergeInto(r, args[0]); err != nil {
					return nil, err
				}
			}
			for k, v := range kw {
				if err := r.Set(object.Str(k), v); err != nil {
					return nil, err
				}
			}
			return object.None, nil
		},
	}
}

// mergeInto implements dict.update's "map, or sequence of 2-element pairs"
// acceptance. A string source is not rejected up front, but it iterates to
// 1-character strings, so any non-empty string fails the 2-element check
// with ValueError; an empty string is a no-op.
func mergeInto(r *object.Dict, other object.Value) error {
	if d, ok := other.(*object.Dict); ok {
		for _, k := range d.Keys() {
			v, _, _ := d.Get(k)
			if err := r.Set(k, v); err != nil {
				return err
			}
		}
		return nil
	}
	pairs, err := toValues(other)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		elems, err := toValues(p)
		if err != nil {
			return object.NewTypeError("dict update sequence element is not a 2-element sequence")
		}
		if len(elems) != 2 {
			return object.NewValueError("dict update sequence element has length != 2")
		}
		if err := r.Set(elems[0], elems[1]); err != nil {
			return err
		}
	}
	return nil
}
