package object

import "testing"

func TestEqualNumericGrouping(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{Int(1), Float(1.0), true},
		{Bool(true), Int(1), true},
		{Bool(false), Int(0), true},
		{Int(2), Bool(true), false},
		{Str("a"), Str("a"), true},
		{Str("a"), Str("b"), false},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%v, %v) = %v, want %v", tt.a.Repr(), tt.b.Repr(), got, tt.want)
		}
	}
}

func TestHashNumericGroupingCollides(t *testing.T) {
	k1, err := Hash(Int(1))
	if err != nil {
		t.Fatalf("Hash(Int(1)): %v", err)
	}
	k2, err := Hash(Float(1.0))
	if err != nil {
		t.Fatalf("Hash(Float(1.0)): %v", err)
	}
	k3, err := Hash(Bool(true))
	if err != nil {
		t.Fatalf("Hash(Bool(true)): %v", err)
	}
	if k1 != k2 || k1 != k3 {
		t.Errorf("Hash(1) = %v, Hash(1.0) = %v, Hash(True) = %v; want all equal", k1, k2, k3)
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{NoneVal{}, false},
		{Int(0), false},
		{Int(1), true},
		{Str(""), false},
		{Str("x"), true},
		{NewList(nil), false},
		{NewList([]Value{Int(1)}), true},
	}
	for _, tt := range tests {
		if got := Truthy(tt.v); got != tt.want {
			t.Errorf("Truthy(%v) = %v, want %v", tt.v.Repr(), got, tt.want)
		}
	}
}

func TestSetDeduplicatesByHash(t *testing.T) {
	s := NewSet()
	added, err := s.Add(Int(1))
	if err != nil || !added {
		t.Fatalf("Add(1): added=%v err=%v, want true/nil", added, err)
	}
	added, err = s.Add(Float(1.0))
	if err != nil {
		t.Fatalf("Add(1.0): %v", err)
	}
	if added {
		t.Errorf("Add(1.0) after Add(1) reported added=true, want false (numeric equality group)")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestEnvironmentGlobalWrite(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("x", Int(1))

	fnEnv := NewFunctionEnvironment(global)
	fnEnv.DeclareGlobal("x")
	if err := fnEnv.Assign("x", Int(2)); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	v, ok := global.Get("x")
	if !ok {
		t.Fatal("global x not found after global-declared assignment")
	}
	if v != Int(2) {
		t.Errorf("global x = %v, want 2", v)
	}
}

func TestEnvironmentClassContext(t *testing.T) {
	cls := &Class{Name: "Dog"}
	outer := NewEnvironment(nil)
	methodEnv := NewFunctionEnvironment(outer)
	methodEnv.SetMethodClass(cls)

	nested := NewEnvironment(methodEnv)
	if got := nested.ClassContext(); got != cls {
		t.Errorf("ClassContext() = %v, want %v (should walk outward through closures)", got, cls)
	}
}
