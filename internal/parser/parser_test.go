package parser

import (
	"testing"

	"github.com/aledsdavies/pyscript/internal/ast"
	"github.com/aledsdavies/pyscript/internal/lexer"
	"github.com/aledsdavies/pyscript/internal/token"
)

func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		t.Fatalf("lex(%q): %v", src, err)
	}
	prog, errs := New(src, toks).Parse()
	if len(errs) != 0 {
		t.Fatalf("parse(%q): unexpected errors: %v", src, errs)
	}
	return prog
}

func TestParseBinaryPrecedence(t *testing.T) {
	prog := parseSource(t, "1 + 2 * 3\n")
	if len(prog.Stmts) != 1 {
		t.Fatalf("len(Stmts) = %d, want 1", len(prog.Stmts))
	}
	es, ok := prog.Stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("Stmts[0] = %T, want *ast.ExprStmt", prog.Stmts[0])
	}
	bin, ok := es.X.(*ast.Binary)
	if !ok {
		t.Fatalf("expr = %T, want *ast.Binary", es.X)
	}
	if bin.Op != token.PLUS {
		t.Fatalf("top-level op = %v, want PLUS (multiplication binds tighter)", bin.Op)
	}
	if _, ok := bin.Right.(*ast.Binary); !ok {
		t.Fatalf("right operand = %T, want *ast.Binary (2 * 3)", bin.Right)
	}
}

func TestParseChainedComparison(t *testing.T) {
	prog := parseSource(t, "1 < x < 10\n")
	es := prog.Stmts[0].(*ast.ExprStmt)
	cmp, ok := es.X.(*ast.Comparison)
	if !ok {
		t.Fatalf("expr = %T, want *ast.Comparison", es.X)
	}
	if len(cmp.Ops) != 2 || len(cmp.Operands) != 3 {
		t.Fatalf("chained comparison = %d ops / %d operands, want 2/3", len(cmp.Ops), len(cmp.Operands))
	}
}

func TestParseClassWithSuperCall(t *testing.T) {
	src := "class Dog(Animal):\n" +
		"    def speak(self):\n" +
		"        super().speak()\n"
	prog := parseSource(t, src)
	cls, ok := prog.Stmts[0].(*ast.ClassDef)
	if !ok {
		t.Fatalf("Stmts[0] = %T, want *ast.ClassDef", prog.Stmts[0])
	}
	if cls.Name != "Dog" || cls.Superclass != "Animal" {
		t.Fatalf("ClassDef = %+v, want Name=Dog Superclass=Animal", cls)
	}
	if len(cls.Methods) != 1 || cls.Methods[0].Name != "speak" {
		t.Fatalf("Methods = %+v, want one method named speak", cls.Methods)
	}
}

func TestParseListComprehensionWithFilter(t *testing.T) {
	prog := parseSource(t, "[x * 2 for x in items if x > 0]\n")
	es := prog.Stmts[0].(*ast.ExprStmt)
	comp, ok := es.X.(*ast.Comprehension)
	if !ok {
		t.Fatalf("expr = %T, want *ast.Comprehension", es.X)
	}
	if comp.Kind != ast.ListComp {
		t.Fatalf("Kind = %v, want ListComp", comp.Kind)
	}
	if len(comp.Clauses) != 1 || len(comp.Clauses[0].Ifs) != 1 {
		t.Fatalf("Clauses = %+v, want one clause with one filter", comp.Clauses)
	}
}

func TestParseSyntaxErrorRecoversAndReportsAll(t *testing.T) {
	src := "x = \ny = \nz = 1\n"
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	_, errs := New(src, toks).Parse()
	if len(errs) < 2 {
		t.Fatalf("len(errs) = %d, want at least 2 (parser should recover and keep reporting)", len(errs))
	}
	for _, e := range errs {
		if e.Boxed == "" {
			t.Errorf("error %+v has an empty Boxed diagnostic", e)
		}
	}
}
