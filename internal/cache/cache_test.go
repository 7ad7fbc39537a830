package cache

import (
	"testing"

	"github.com/aledsdavies/pyscript/internal/lexer"
)

func TestCacheRoundTripMatchesDirectLex(t *testing.T) {
	src := "x = 1 + 2\nprint(x * 3)\n"

	want, err := lexer.New(src).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	c := New()
	if err := c.Put(src, want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := c.Get(src)
	if !ok {
		t.Fatal("Get: expected a cache hit")
	}
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Kind != want[i].Kind || got[i].Lexeme != want[i].Lexeme {
			t.Errorf("token %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCacheMissForUnseenSource(t *testing.T) {
	c := New()
	if _, ok := c.Get("print(1)\n"); ok {
		t.Fatal("Get on an empty cache should miss")
	}
}

func TestCacheKeyForIsDeterministic(t *testing.T) {
	a := KeyFor("same source\n")
	b := KeyFor("same source\n")
	if a != b {
		t.Fatalf("KeyFor not deterministic: %q != %q", a, b)
	}
	if KeyFor("different\n") == a {
		t.Fatal("KeyFor collided for distinct sources")
	}
}

func TestCacheLen(t *testing.T) {
	c := New()
	if c.Len() != 0 {
		t.Fatalf("Len() on empty cache = %d, want 0", c.Len())
	}
	toks, err := lexer.New("pass\n").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if err := c.Put("pass\n", toks); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() after one Put = %d, want 1", c.Len())
	}
}
