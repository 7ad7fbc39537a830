package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aledsdavies/pyscript/internal/token"
)

// kindsOf strips position and literal payload, leaving only the Kind
// sequence a test wants to assert on.
func kindsOf(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Kind
	}{
		{
			name:  "assignment",
			input: "x = 1\n",
			want:  []token.Kind{token.IDENT, token.ASSIGN, token.INT, token.NEWLINE, token.EOF},
		},
		{
			name:  "arithmetic precedence tokens",
			input: "1 + 2 * 3\n",
			want:  []token.Kind{token.INT, token.PLUS, token.INT, token.STAR, token.INT, token.NEWLINE, token.EOF},
		},
		{
			name: "indent/dedent around a block",
			input: "if True:\n" +
				"    x = 1\n" +
				"y = 2\n",
			want: []token.Kind{
				token.IF, token.TRUE, token.COLON, token.NEWLINE,
				token.INDENT, token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
				token.DEDENT, token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
				token.EOF,
			},
		},
		{
			name:  "not in / is not fold at the parser, not the lexer",
			input: "a not in b\n",
			want:  []token.Kind{token.IDENT, token.NOT, token.IN, token.IDENT, token.NEWLINE, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := New(tt.input).Tokenize()
			if err != nil {
				t.Fatalf("Tokenize(%q) returned error: %v", tt.input, err)
			}
			got := kindsOf(toks)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) kind mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestTokenizeLiteralPayloads(t *testing.T) {
	toks, err := New("x = 3.5\n").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	var floatTok *token.Token
	for i := range toks {
		if toks[i].Kind == token.FLOAT {
			floatTok = &toks[i]
		}
	}
	if floatTok == nil {
		t.Fatalf("no FLOAT token produced for %q", "x = 3.5")
	}
	if floatTok.FloatValue != 3.5 {
		t.Errorf("FloatValue = %v, want 3.5", floatTok.FloatValue)
	}
}

func TestTokenizeFString(t *testing.T) {
	toks, err := New(`f"hi {name:>10}"` + "\n").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}
	var fTok *token.Token
	for i := range toks {
		if toks[i].Kind == token.FSTRING {
			fTok = &toks[i]
		}
	}
	if fTok == nil {
		t.Fatalf("no FSTRING token produced")
	}
	if len(fTok.FStringParts) != 2 {
		t.Fatalf("FStringParts = %d parts, want 2", len(fTok.FStringParts))
	}
	if fTok.FStringParts[0].IsExpr {
		t.Errorf("part 0 should be a literal run, got IsExpr=true")
	}
	if !fTok.FStringParts[1].IsExpr {
		t.Errorf("part 1 should be an expression, got IsExpr=false")
	}
	if fTok.FStringParts[1].Spec != ">10" {
		t.Errorf("format spec = %q, want %q", fTok.FStringParts[1].Spec, ">10")
	}
}

func TestTokenizeUnterminatedStringErrors(t *testing.T) {
	_, err := New(`x = "unterminated`).Tokenize()
	if err == nil {
		t.Fatal("expected an error for an unterminated string literal, got nil")
	}
}
