package builtin

import (
	"testing"

	"github.com/aledsdavies/pyscript/internal/object"
)

func call(t *testing.T, name string, pos []object.Value, kw map[string]object.Value) (object.Value, error) {
	t.Helper()
	fn, ok := catalog(func(string) {})[name]
	if !ok {
		t.Fatalf("no built-in named %q", name)
	}
	return fn(pos, kw)
}

func TestLenAcrossContainers(t *testing.T) {
	tests := []struct {
		name string
		v    object.Value
		want int64
	}{
		{"str", object.Str("hello"), 5},
		{"list", object.NewList([]object.Value{object.Int(1), object.Int(2)}), 2},
		{"empty list", object.NewList(nil), 0},
	}
	for _, tt := range tests {
		got, err := call(t, "len", []object.Value{tt.v}, nil)
		if err != nil {
			t.Fatalf("len(%v): %v", tt.name, err)
		}
		if got != object.Int(tt.want) {
			t.Errorf("len(%v) = %v, want %d", tt.name, got, tt.want)
		}
	}
}

func TestRoundBankersRounding(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{0.5, 0},
		{1.5, 2},
		{2.5, 2},
		{3.5, 4},
	}
	for _, tt := range tests {
		got, err := call(t, "round", []object.Value{object.Float(tt.in)}, nil)
		if err != nil {
			t.Fatalf("round(%v): %v", tt.in, err)
		}
		if got != object.Int(tt.want) {
			t.Errorf("round(%v) = %v, want %d (banker's rounding)", tt.in, got, tt.want)
		}
	}
}

func TestMinMaxAndSum(t *testing.T) {
	xs := []object.Value{object.Int(3), object.Int(1), object.Int(2)}
	min, err := call(t, "min", xs, nil)
	if err != nil {
		t.Fatalf("min: %v", err)
	}
	if min != object.Int(1) {
		t.Errorf("min(3,1,2) = %v, want 1", min)
	}
	max, err := call(t, "max", xs, nil)
	if err != nil {
		t.Fatalf("max: %v", err)
	}
	if max != object.Int(3) {
		t.Errorf("max(3,1,2) = %v, want 3", max)
	}
	sum, err := call(t, "sum", []object.Value{object.NewList(xs)}, nil)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != object.Int(6) {
		t.Errorf("sum([3,1,2]) = %v, want 6", sum)
	}
}

func TestIsinstance(t *testing.T) {
	got, err := call(t, "isinstance", []object.Value{object.Int(1), object.Str("int")}, nil)
	if err != nil {
		t.Fatalf("isinstance: %v", err)
	}
	if got != object.Bool(true) {
		t.Errorf("isinstance(1, 'int') = %v, want True", got)
	}
}

func TestPrintUsesSepAndEndKwargs(t *testing.T) {
	var out string
	printFn := catalog(func(s string) { out += s })["print"]
	_, err := printFn([]object.Value{object.Int(1), object.Int(2)}, map[string]object.Value{
		"sep": object.Str("-"),
		"end": object.Str(""),
	})
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if out != "1-2" {
		t.Errorf("print output = %q, want %q", out, "1-2")
	}
}
