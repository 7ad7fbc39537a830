package object

import (
	"hash/fnv"
	"math"
	"reflect"
)

// HashKey is the normalized, comparable key used for dict/set storage. All
// fields are comparable so HashKey can itself be a Go map key.
//
// Numeric values (bool/int/float) share the Kind 'n' with the value folded
// into Num, so that True, 1, and 1.0 collide: adding True to a set already
// containing 1 is a no-op.
type HashKey struct {
	Kind byte
	Num  float64
	Str  string
	Ptr  uintptr
	Comb uint64
}

// tupleHashSeed seeds tuple hash combining: each element's own HashKey is
// folded into a running FNV-1a accumulator. Any deterministic,
// equality-consistent combiner would do.
const tupleHashSeed uint64 = 0xcbf29ce484222325

// Hash computes the HashKey for v, or a TypeError exception if v is not
// hashable (lists, dicts, sets, and plain instances are not).
func Hash(v Value) (HashKey, error) {
	switch x := v.(type) {
	case NoneVal:
		return HashKey{Kind: 'N'}, nil
	case Bool:
		if x {
			return HashKey{Kind: 'n', Num: 1}, nil
		}
		return HashKey{Kind: 'n', Num: 0}, nil
	case Int:
		return HashKey{Kind: 'n', Num: float64(x)}, nil
	case Float:
		return HashKey{Kind: 'n', Num: float64(x)}, nil
	case Str:
		return HashKey{Kind: 'S', Str: string(x)}, nil
	case *Tuple:
		acc := tupleHashSeed
		for _, e := range x.Elems {
			k, err := Hash(e)
			if err != nil {
				return HashKey{}, err
			}
			acc = (acc ^ k.fold()) * 1099511628211
		}
		return HashKey{Kind: 'T', Comb: acc}, nil
	case *Class:
		return HashKey{Kind: 'c', Ptr: reflect.ValueOf(x).Pointer()}, nil
	case *Function:
		return HashKey{Kind: 'f', Ptr: reflect.ValueOf(x).Pointer()}, nil
	case *Native:
		return HashKey{Kind: 'f', Ptr: reflect.ValueOf(x).Pointer()}, nil
	case *BoundMethod:
		return HashKey{Kind: 'f', Ptr: reflect.ValueOf(x).Pointer()}, nil
	default:
		return HashKey{}, NewTypeError("unhashable type: '" + TypeName(v) + "'")
	}
}

// fold collapses a HashKey into a single uint64 so it can be mixed into a
// tuple's combined hash.
func (k HashKey) fold() uint64 {
	h := fnv.New64a()
	var buf [9]byte
	buf[0] = k.Kind
	bits := math.Float64bits(k.Num)
	for i := 0; i < 8; i++ {
		buf[i+1] = byte(bits >> (8 * i))
	}
	h.Write(buf[:])
	h.Write([]byte(k.Str))
	return h.Sum64() ^ uint64(k.Ptr) ^ k.Comb
}

// Equal implements deep, cross-numeric-type equality: containers recurse
// element-wise, numeric kinds compare by value regardless of the
// int/float/bool tag.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case NoneVal:
		_, ok := b.(NoneVal)
		return ok
	case Bool, Int, Float:
		bn, ok := asFloat(b)
		an, _ := asFloat(a)
		return ok && an == bn
	case Str:
		y, ok := b.(Str)
		return ok && x == y
	case *List:
		y, ok := b.(*List)
		if !ok || len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !Equal(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case *Tuple:
		y, ok := b.(*Tuple)
		if !ok || len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !Equal(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case *Set:
		y, ok := b.(*Set)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for _, v := range x.Values() {
			has, err := y.Has(v)
			if err != nil || !has {
				return false
			}
		}
		return true
	case *Dict:
		y, ok := b.(*Dict)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for _, k := range x.Keys() {
			xv, _, _ := x.Get(k)
			yv, found, _ := y.Get(k)
			if !found || !Equal(xv, yv) {
				return false
			}
		}
		return true
	case *Class:
		y, ok := b.(*Class)
		return ok && x == y
	case *Instance:
		y, ok := b.(*Instance)
		return ok && x == y
	default:
		return a == b
	}
}

func asFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case Bool:
		if x {
			return 1, true
		}
		return 0, true
	case Int:
		return float64(x), true
	case Float:
		return float64(x), true
	default:
		return 0, false
	}
}
