package nativemethod

import (
	"testing"

	"github.com/aledsdavies/pyscript/internal/object"
)

func TestListAppendMutatesReceiver(t *testing.T) {
	l := object.NewList([]object.Value{object.Int(1), object.Int(2)})
	fn, _, err := Lookup(l, "append")
	if err != nil {
		t.Fatalf("Lookup(append): %v", err)
	}
	if fn == nil {
		t.Fatal("Lookup(append) returned nil fn")
	}
	if _, err := fn([]object.Value{object.Int(3)}, nil); err != nil {
		t.Fatalf("append(3): %v", err)
	}
	if got := l.Repr(); got != "[1, 2, 3]" {
		t.Errorf("after append, Repr() = %q, want %q", got, "[1, 2, 3]")
	}
}

func TestListPopEmptyRaisesIndexError(t *testing.T) {
	l := object.NewList(nil)
	fn, _, err := Lookup(l, "pop")
	if err != nil || fn == nil {
		t.Fatalf("Lookup(pop): fn=%v err=%v", fn, err)
	}
	_, err = fn(nil, nil)
	exc, ok := err.(*object.Exception)
	if !ok {
		t.Fatalf("pop() on empty list error = %T, want *object.Exception", err)
	}
	if exc.ClassName != "IndexError" {
		t.Errorf("ClassName = %q, want IndexError", exc.ClassName)
	}
}

func TestLookupUnknownMethodReturnsCandidateNames(t *testing.T) {
	l := object.NewList(nil)
	fn, names, err := Lookup(l, "no_such_method")
	if err != nil {
		t.Fatalf("Lookup(no_such_method): %v", err)
	}
	if fn != nil {
		t.Fatal("Lookup(no_such_method) returned a non-nil fn")
	}
	if len(names) == 0 {
		t.Fatal("Lookup(no_such_method) returned no candidate names for suggestion")
	}
}

func TestLookupOnNonContainerReturnsNilTable(t *testing.T) {
	fn, names, err := Lookup(object.Int(1), "append")
	if fn != nil || names != nil || err != nil {
		t.Errorf("Lookup on int = (%v, %v, %v), want (nil, nil, nil)", fn, names, err)
	}
}

func TestDictGetWithDefault(t *testing.T) {
	d := object.NewDict()
	if err := d.Set(object.Str("a"), object.Int(1)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	fn, _, err := Lookup(d, "get")
	if err != nil || fn == nil {
		t.Fatalf("Lookup(get): fn=%v err=%v", fn, err)
	}
	got, err := fn([]object.Value{object.Str("missing"), object.Int(-1)}, nil)
	if err != nil {
		t.Fatalf("get(missing, -1): %v", err)
	}
	if got != object.Int(-1) {
		t.Errorf("get(missing, -1) = %v, want -1", got)
	}
}

func TestStrSplitAndJoin(t *testing.T) {
	fn, _, err := Lookup(object.Str("a,b,c"), "split")
	if err != nil || fn == nil {
		t.Fatalf("Lookup(split): fn=%v err=%v", fn, err)
	}
	got, err := fn([]object.Value{object.Str(",")}, nil)
	if err != nil {
		t.Fatalf("split(','): %v", err)
	}
	list, ok := got.(*object.List)
	if !ok {
		t.Fatalf("split returned %T, want *object.List", got)
	}
	if len(list.Elems) != 3 {
		t.Fatalf("split(',') returned %d parts, want 3", len(list.Elems))
	}
}
