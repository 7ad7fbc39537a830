package suggest

import "testing"

func TestNameFindsCloseMisspelling(t *testing.T) {
	got := Name("lengt", []string{"length", "width", "height"})
	if got != "length" {
		t.Fatalf("Name(lengt) = %q, want %q", got, "length")
	}
}

func TestNameNoCandidates(t *testing.T) {
	if got := Name("foo", nil); got != "" {
		t.Fatalf("Name with no candidates = %q, want empty", got)
	}
}

func TestNameNoCloseMatch(t *testing.T) {
	got := Name("zzzzzzzzzz", []string{"length", "width", "height"})
	if got != "" {
		t.Fatalf("Name(zzzzzzzzzz) = %q, want empty (no close match)", got)
	}
}
