package eval

import (
	"fmt"

	"github.com/aledsdavies/pyscript/internal/ast"
	"github.com/aledsdavies/pyscript/internal/nativemethod"
	"github.com/aledsdavies/pyscript/internal/object"
	"github.com/aledsdavies/pyscript/internal/suggest"
)

func evalIndexGet(e *ast.IndexGet, env *object.Environment, ctx *Ctx) (object.Value, error) {
	recv, err := evalExpr(e.Receiver, env, ctx)
	if err != nil {
		return nil, err
	}
	idx, err := evalExpr(e.Index, env, ctx)
	if err != nil {
		return nil, err
	}
	return indexGet(recv, idx)
}

func indexGet(recv, idx object.Value) (object.Value, error) {
	switch r := recv.(type) {
	case *object.List:
		i, err := normalizeIndex(idx, len(r.Elems))
		if err != nil {
			return nil, err
		}
		return r.Elems[i], nil
	case *object.Tuple:
		i, err := normalizeIndex(idx, len(r.Elems))
		if err != nil {
			return nil, err
		}
		return r.Elems[i], nil
	case object.Str:
		i, err := normalizeIndex(idx, len(r))
		if err != nil {
			return nil, err
		}
		return object.Str(r[i]), nil
	case *object.Dict:
		v, ok, err := r.Get(idx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, object.NewKeyError(idx.Repr())
		}
		return v, nil
	default:
		return nil, object.NewTypeError(fmt.Sprintf("'%s' object is not subscriptable", object.TypeName(recv)))
	}
}

func indexSet(recv, idx, val object.Value) error {
	switch r := recv.(type) {
	case *object.List:
		i, err := normalizeIndex(idx, len(r.Elems))
		if err != nil {
			return err
		}
		r.Elems[i] = val
		return nil
	case *object.Dict:
		return r.Set(idx, val)
	default:
		return object.NewTypeError(fmt.Sprintf("'%s' object does not support item assignment", object.TypeName(recv)))
	}
}

// normalizeIndex converts a possibly-negative Python-style index into a
// valid Go slice index, raising IndexError when out of range.
func normalizeIndex(idx object.Value, length int) (int, error) {
	i, ok := asInt(idx)
	if !ok {
		return 0, object.NewTypeError("indices must be integers")
	}
	orig := i
	if i < 0 {
		i += int64(length)
	}
	if i < 0 || i >= int64(length) {
		return 0, object.NewIndexError(fmt.Sprintf("index %d out of range", orig))
	}
	return int(i), nil
}

func evalAttributeGet(e *ast.AttributeGet, env *object.Environment, ctx *Ctx) (object.Value, error) {
	recv, err := evalExpr(e.Receiver, env, ctx)
	if err != nil {
		return nil, err
	}
	return attributeGet(recv, e.Name)
}

func attributeGet(recv object.Value, name string) (object.Value, error) {
	if inst, ok := recv.(*object.Instance); ok {
		if v, ok := inst.Attrs[name]; ok {
			return v, nil
		}
		if m, _ := inst.Class.FindMethod(name); m != nil {
			return &object.BoundMethod{Receiver: inst, Impl: m, Name: name}, nil
		}
		msg := fmt.Sprintf("'%s' object has no attribute '%s'", inst.Class.Name, name)
		if hint := suggest.Name(name, inst.Class.MethodNames()); hint != "" {
			msg += fmt.Sprintf(". Did you mean: '%s'?", hint)
		}
		return nil, object.NewAttributeError(msg)
	}
	if cls, ok := recv.(*object.Class); ok {
		if m, _ := cls.FindMethod(name); m != nil {
			return m, nil
		}
		return nil, object.NewAttributeError(fmt.Sprintf("type object '%s' has no attribute '%s'", cls.Name, name))
	}
	fn, names, err := nativemethod.Lookup(recv, name)
	if err != nil {
		return nil, err
	}
	if fn != nil {
		return &object.BoundMethod{Receiver: recv, Impl: &object.Native{Name: name, Fn: fn}, Name: name}, nil
	}
	msg := fmt.Sprintf("'%s' object has no attribute '%s'", object.TypeName(recv), name)
	if hint := suggest.Name(name, names); hint != "" {
		msg += fmt.Sprintf(". Did you mean: '%s'?", hint)
	}
	return nil, object.NewAttributeError(msg)
}

func evalSlice(e *ast.Slice, env *object.Environment, ctx *Ctx) (object.Value, error) {
	recv, err := evalExpr(e.Receiver, env, ctx)
	if err != nil {
		return nil, err
	}
	length, err := sliceableLen(recv)
	if err != nil {
		return nil, err
	}
	step := int64(1)
	if e.Step != nil {
		v, err := evalExpr(e.Step, env, ctx)
		if err != nil {
			return nil, err
		}
		step, _ = asInt(v)
		if step == 0 {
			return nil, object.NewValueError("slice step cannot be zero")
		}
	}
	start, stop, err := sliceBounds(e.Start, e.Stop, step, length, env, ctx)
	if err != nil {
		return nil, err
	}
	indices := collectSliceIndices(start, stop, step)
	switch r := recv.(type) {
	case *object.List:
		out := make([]object.Value, len(indices))
		for i, idx := range indices {
			out[i] = r.Elems[idx]
		}
		return object.NewList(out), nil
	case *object.Tuple:
		out := make([]object.Value, len(indices))
		for i, idx := range indices {
			out[i] = r.Elems[idx]
		}
		return object.NewTuple(out), nil
	case object.Str:
		buf := make([]byte, len(indices))
		for i, idx := range indices {
			buf[i] = r[idx]
		}
		return object.Str(buf), nil
	default:
		return nil, object.NewTypeError(fmt.Sprintf("'%s' object is not subscriptable", object.TypeName(recv)))
	}
}

func sliceableLen(v object.Value) (int, error) {
	switch x := v.(type) {
	case *object.List:
		return len(x.Elems), nil
	case *object.Tuple:
		return len(x.Elems), nil
	case object.Str:
		return len(x), nil
	default:
		return 0, object.NewTypeError(fmt.Sprintf("'%s' object is not subscriptable", object.TypeName(v)))
	}
}

// sliceBounds implements the rebase/clamp algorithm: negative start/stop
// are rebased by adding length, then clamped to [0,length] for a positive
// step or [-1,length-1] for a negative step.
func sliceBounds(startExpr, stopExpr ast.Expr, step int64, length int, env *object.Environment, ctx *Ctx) (int64, int64, error) {
	var lo, hi int64
	if step > 0 {
		lo, hi = 0, int64(length)
	} else {
		lo, hi = -1, int64(length)-1
	}
	start := lo
	if step < 0 {
		start = hi
	}
	if startExpr != nil {
		v, err := evalExpr(startExpr, env, ctx)
		if err != nil {
			return 0, 0, err
		}
		i, _ := asInt(v)
		start = rebaseClamp(i, int64(length), lo, hi)
	}
	stop := hi
	if step < 0 {
		stop = lo
	}
	if stopExpr != nil {
		v, err := evalExpr(stopExpr, env, ctx)
		if err != nil {
			return 0, 0, err
		}
		i, _ := asInt(v)
		stop = rebaseClamp(i, int64(length), lo, hi)
	}
	return start, stop, nil
}

func rebaseClamp(i, length, lo, hi int64) int64 {
	if i < 0 {
		i += length
	}
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

func collectSliceIndices(start, stop, step int64) []int {
	var out []int
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, int(i))
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, int(i))
		}
	}
	return out
}
