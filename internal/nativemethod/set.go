package nativemethod

import (
	"github.com/aledsdavies/pyscript/internal/object"
)

func setMethods(r *object.Set) map[string]func([]object.Value, map[string]object.Value) (object.Value, error) {
	return map[string]func([]object.Value, map[string]object.Value) (object.Value, error){
		"add": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) != 1 {
				return nil, wrongArgs("add")
			}
			_, err := r.Add(args[0])
			return object.None, err
		},
		"remove": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) != 1 {
				return nil, wrongArgs("remove")
			}
			ok, err := r.Remove(args[0])
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, object.NewKeyError(args[0].Repr())
			}
			return object.None, nil
		},
		"discard": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) != 1 {
				return nil, wrongArgs("discard")
			}
			_, err := r.Remove(args[0])
			return object.None, err
		},
		"pop": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			vals := r.Values()
			if len(vals) == 0 {
				return nil, object.NewKeyError("pop from an empty set")
			}
			v := vals[0]
			if _, err := r.Remove(v); err != nil {
				return nil, err
			}
			return v, nil
		},
		"clear": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			for _, v := range r.Values() {
				r.Remove(v)
			}
			return object.None, nil
		},
		"copy": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			out := object.NewSet()
			for _, v := range r.Values() {
				if _, err := out.Add(v); err != nil {
					return nil, err
				}
			}
			return out, nil
		},
		"union": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			out := object.NewSet()
			for _, v := range r.Values() {
				out.Add(v)
			}
			for _, a := range args {
				elems, err := toValues(a)
				if err != nil {
					return nil, err
				}
				for _, v := range elems {
					if _, err := out.Add(v); err != nil {
						return nil, err
					}
				}
			}
			return out, nil
		},
		"intersection": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			out := object.NewSet()
			for _, v := range r.Values() {
				inAll := true
				for _, a := range args {
					elems, err := toValues(a)
					if err != nil {
						return nil, err
					}
					if !containsValue(elems, v) {
						inAll = false
						break
					}
				}
				if inAll {
					out.Add(v)
				}
			}
			return out, nil
		},
		"difference": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			out := object.NewSet()
			for _, v := range r.Values() {
				excluded := false
				for _, a := range args {
					elems, err := toValues(a)
					if err != nil {
						return nil, err
					}
					if containsValue(elems, v) {
						excluded = true
						break
					}
				}
				if !excluded {
					out.Add(v)
				}
			}
			return out, nil
		},
		"isdisjoint": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) != 1 {
				return nil, wrongArgs("isdisjoint")
			}
			elems, err := toValues(args[0])
			if err != nil {
				return nil, err
			}
			for _, v := range r.Values() {
				if containsValue(elems, v) {
					return object.Bool(false), nil
				}
			}
			return object.Bool(true), nil
		},
		"issubset": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) != 1 {
				return nil, wrongArgs("issubset")
			}
			elems, err := toValues(args[0])
			if err != nil {
				return nil, err
			}
			for _, v := range r.Values() {
				if !containsValue(elems, v) {
					return object.Bool(false), nil
				}
			}
			return object.Bool(true), nil
		},
		"issuperset": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			if len(args) != 1 {
				return nil, wrongArgs("issuperset")
			}
			elems, err := toValues(args[0])
			if err != nil {
				return nil, err
			}
			for _, v := range elems {
				has, err := r.Has(v)
				if err != nil {
					return nil, err
				}
				if !has {
					return object.Bool(false), nil
				}
			}
			return object.Bool(true), nil
		},
		"update": func(args []object.Value, kw map[string]object.Value) (object.Value, error) {
			for _, a := range args {
				elems, err := toValues(a)
				if err != nil {
					return nil, err
				}
				for _, v := range elems {
					if _, err := r.Add(v); err != nil {
						return nil, err
					}
				}
			}
			return object.None, nil
		},
	}
}

func containsValue(elems []object.Value, v object.Value) bool {
	for _, e := range elems {
		if object.Equal(e, v) {
			return true
		}
	}
	return false
}
