// Package object defines the tagged-variant runtime value model and the
// lexically scoped Environment the evaluator operates over.
package object

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/aledsdavies/pyscript/internal/ast"
)

// Kind is the closed set of runtime value tags. The evaluator's operator
// code does not switch on it: it inspects operands with Go type
// assertions on the concrete value types.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindList
	KindTuple
	KindSet
	KindDict
	KindFunction
	KindNative
	KindBoundMethod
	KindClass
	KindInstance
	KindException
)

// Value is the interface every runtime value implements.
type Value interface {
	Kind() Kind
	// Repr is the developer-facing representation (Python's repr()).
	Repr() string
	// Str is the human-facing representation (Python's str()); for most
	// kinds this equals Repr.
	Str() string
}

// ---- None ----

type NoneVal struct{}

var None = NoneVal{}

func (NoneVal) Kind() Kind   { return KindNone }
func (NoneVal) Repr() string { return "None" }
func (NoneVal) Str() string  { return "None" }

// ---- Bool ----

type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (b Bool) Repr() string {
	if b {
		return "True"
	}
	return "False"
}
func (b Bool) Str() string { return b.Repr() }

// ---- Int ----

type Int int64

func (Int) Kind() Kind     { return KindInt }
func (i Int) Repr() string { return strconv.FormatInt(int64(i), 10) }
func (i Int) Str() string  { return i.Repr() }

// ---- Float ----

type Float float64

func (Float) Kind() Kind { return KindFloat }
func (f Float) Repr() string {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "nan"
	case math.Abs(v) < 1e15 && v == math.Trunc(v):
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
func (f Float) Str() string { return f.Repr() }

// ---- Str ----

type Str string

func (Str) Kind() Kind     { return KindStr }
func (s Str) Repr() string { return "'" + strings.ReplaceAll(string(s), "'", "\\'") + "'" }
func (s Str) Str() string  { return string(s) }

// ---- List ----

type List struct {
	Elems []Value
}

func NewList(elems []Value) *List { return &List{Elems: elems} }

func (*List) Kind() Kind { return KindList }
func (l *List) Repr() string {
	parts := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		parts[i] = e.Repr()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (l *List) Str() string { return l.Repr() }

// ---- Tuple ----

type Tuple struct {
	Elems []Value
}

func NewTuple(elems []Value) *Tuple { return &Tuple{Elems: elems} }

func (*Tuple) Kind() Kind { return KindTuple }
func (t *Tuple) Repr() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.Repr()
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *Tuple) Str() string { return t.Repr() }

// ---- Set ----

// Set preserves insertion order for its key index so Repr output (and test
// fixtures) are deterministic, while equality/hashing is order-independent.
type Set struct {
	order []HashKey
	items map[HashKey]Value
}

func NewSet() *Set { return &Set{items: map[HashKey]Value{}} }

func (*Set) Kind() Kind { return KindSet }

// Add inserts v, returning false if an equal element (per numeric-equality
// grouping) was already present.
func (s *Set) Add(v Value) (bool, error) {
	k, err := Hash(v)
	if err != nil {
		return false, err
	}
	if _, ok := s.items[k]; ok {
		return false, nil
	}
	s.items[k] = v
	s.order = append(s.order, k)
	return true, nil
}

func (s *Set) Has(v Value) (bool, error) {
	k, err := Hash(v)
	if err != nil {
		return false, err
	}
	_, ok := s.items[k]
	return ok, nil
}

func (s *Set) Remove(v Value) (bool, error) {
	k, err := Hash(v)
	if err != nil {
		return false, err
	}
	if _, ok := s.items[k]; !ok {
		return false, nil
	}
	delete(s.items, k)
	for i, ok := range s.order {
		if ok == k {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *Set) Len() int { return len(s.order) }

func (s *Set) Values() []Value {
	out := make([]Value, len(s.order))
	for i, k := range s.order {
		out[i] = s.items[k]
	}
	return out
}

func (s *Set) Repr() string {
	if len(s.order) == 0 {
		return "set()"
	}
	parts := make([]string, 0, len(s.order))
	for _, v := range s.Values() {
		parts = append(parts, v.Repr())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (s *Set) Str() string { return s.Repr() }

// ---- Dict ----

type Dict struct {
	order []HashKey
	keys  map[HashKey]Value
	items map[HashKey]Value
}

func NewDict() *Dict {
	return &Dict{keys: map[HashKey]Value{}, items: map[HashKey]Value{}}
}

func (*Dict) Kind() Kind { return KindDict }

func (d *Dict) Set(key, val Value) error {
	k, err := Hash(key)
	if err != nil {
		return err
	}
	if _, ok := d.items[k]; !ok {
		d.order = append(d.order, k)
	}
	d.keys[k] = key
	d.items[k] = val
	return nil
}

func (d *Dict) Get(key Value) (Value, bool, error) {
	k, err := Hash(key)
	if err != nil {
		return nil, false, err
	}
	v, ok := d.items[k]
	return v, ok, nil
}

func (d *Dict) Delete(key Value) (bool, error) {
	k, err := Hash(key)
	if err != nil {
		return false, err
	}
	if _, ok := d.items[k]; !ok {
		return false, nil
	}
	delete(d.items, k)
	delete(d.keys, k)
	for i, ok := range d.order {
		if ok == k {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (d *Dict) Len() int { return len(d.order) }

func (d *Dict) Keys() []Value {
	out := make([]Value, len(d.order))
	for i, k := range d.order {
		out[i] = d.keys[k]
	}
	return out
}

func (d *Dict) Values() []Value {
	out := make([]Value, len(d.order))
	for i, k := range d.order {
		out[i] = d.items[k]
	}
	return out
}

func (d *Dict) Repr() string {
	if len(d.order) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(d.order))
	for _, k := range d.order {
		parts = append(parts, d.keys[k].Repr()+": "+d.items[k].Repr())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (d *Dict) Str() string { return d.Repr() }

// ---- Function ----

// Function is a user-defined callable: a def or lambda body together with
// the environment it closed over.
type Function struct {
	Name    string
	Params  *ast.Params
	Body    *ast.Block  // nil for a lambda
	Expr    ast.Expr    // non-nil for a lambda, instead of Body
	Closure *Environment

	// OwnerClass is non-nil when this Function is a method, set to the
	// class whose body defined it. super() resolves statically against
	// this class's superclass rather than the receiver's runtime class.
	OwnerClass *Class
}

func (*Function) Kind() Kind     { return KindFunction }
func (f *Function) Repr() string { return fmt.Sprintf("<function %s>", displayName(f.Name)) }
func (f *Function) Str() string  { return f.Repr() }

func displayName(n string) string {
	if n == "" {
		return "<lambda>"
	}
	return n
}

// ---- Native ----

// NativeFn is the signature every built-in and native-method implementation
// has: ordered positional args, a keyword map, and the Value or error to
// propagate. errors returned here are always *object.Exception.
type NativeFn func(pos []Value, kw map[string]Value) (Value, error)

type Native struct {
	Name string
	Fn   NativeFn
}

func (*Native) Kind() Kind     { return KindNative }
func (n *Native) Repr() string { return fmt.Sprintf("<built-in function %s>", n.Name) }
func (n *Native) Str() string  { return n.Repr() }

// ---- BoundMethod ----

// BoundMethod is a single record of (receiver, implementation, name) per
// the interpreter's design notes, used uniformly for native container
// methods and user-defined instance methods alike.
type BoundMethod struct {
	Receiver Value
	Impl     Value // *Function or *Native
	Name     string
}

func (*BoundMethod) Kind() Kind { return KindBoundMethod }
func (b *BoundMethod) Repr() string {
	return fmt.Sprintf("<bound method %s of %s>", b.Name, b.Receiver.Repr())
}
func (b *BoundMethod) Str() string { return b.Repr() }

// ---- Class & Instance ----

type Class struct {
	Name    string
	Super   *Class
	Methods map[string]*Function
}

func (*Class) Kind() Kind     { return KindClass }
func (c *Class) Repr() string { return fmt.Sprintf("<class '%s'>", c.Name) }
func (c *Class) Str() string  { return c.Repr() }

// FindMethod walks the single-inheritance chain starting at c.
func (c *Class) FindMethod(name string) (*Function, *Class) {
	for cls := c; cls != nil; cls = cls.Super {
		if m, ok := cls.Methods[name]; ok {
			return m, cls
		}
	}
	return nil, nil
}

// MethodNames collects every method name reachable from c, used by the
// name-suggestion subsystem for AttributeError "did you mean" hints.
func (c *Class) MethodNames() []string {
	seen := map[string]bool{}
	var names []string
	for cls := c; cls != nil; cls = cls.Super {
		for name := range cls.Methods {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

type Instance struct {
	Class *Class
	Attrs map[string]Value
}

func NewInstance(cls *Class) *Instance {
	return &Instance{Class: cls, Attrs: map[string]Value{}}
}

func (*Instance) Kind() Kind { return KindInstance }
func (i *Instance) Repr() string {
	return fmt.Sprintf("<%s object>", i.Class.Name)
}
func (i *Instance) Str() string { return i.Repr() }

// TypeName returns the canonical type name used by type(), isinstance(),
// and error messages.
func TypeName(v Value) string {
	switch x := v.(type) {
	case NoneVal:
		return "NoneType"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Str:
		return "str"
	case *List:
		return "list"
	case *Tuple:
		return "tuple"
	case *Set:
		return "set"
	case *Dict:
		return "dict"
	case *Function:
		return "function"
	case *Native:
		return "builtin_function_or_method"
	case *BoundMethod:
		if _, ok := x.Impl.(*Native); ok {
			return "builtin_function_or_method"
		}
		return "method"
	case *Class:
		return "type"
	case *Instance:
		return x.Class.Name
	case *Exception:
		return x.ClassName
	default:
		return "object"
	}
}

// ToGo converts v into the plain Go value tree (string, float64, bool, nil,
// []any, map[string]any) that encoding/json and the JSON Schema validator
// understand. Dict keys that are not strings are rendered via Str() since
// JSON objects only support string keys; Function/Native/Class/Instance
// values have no JSON representation and convert to their Repr() string.
func ToGo(v Value) any {
	switch x := v.(type) {
	case NoneVal:
		return nil
	case Bool:
		return bool(x)
	case Int:
		return float64(x)
	case Float:
		return float64(x)
	case Str:
		return string(x)
	case *List:
		return valuesToGo(x.Elems)
	case *Tuple:
		return valuesToGo(x.Elems)
	case *Set:
		return valuesToGo(x.Values())
	case *Dict:
		out := make(map[string]any, x.Len())
		keys := x.Keys()
		vals := x.Values()
		for i, k := range keys {
			out[k.Str()] = ToGo(vals[i])
		}
		return out
	default:
		return v.Repr()
	}
}

func valuesToGo(vs []Value) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = ToGo(v)
	}
	return out
}

// Truthy implements Python-family truthiness: None, numeric zero, empty
// string, and empty containers are false; everything else is true.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case NoneVal:
		return false
	case Bool:
		return bool(x)
	case Int:
		return x != 0
	case Float:
		return x != 0
	case Str:
		return len(x) != 0
	case *List:
		return len(x.Elems) != 0
	case *Tuple:
		return len(x.Elems) != 0
	case *Set:
		return x.Len() != 0
	case *Dict:
		return x.Len() != 0
	default:
		return true
	}
}
