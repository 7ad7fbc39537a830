package eval_test

import (
	"strings"
	"testing"

	"github.com/aledsdavies/pyscript/internal/ast"
	"github.com/aledsdavies/pyscript/internal/builtin"
	"github.com/aledsdavies/pyscript/internal/eval"
	"github.com/aledsdavies/pyscript/internal/lexer"
	"github.com/aledsdavies/pyscript/internal/object"
	"github.com/aledsdavies/pyscript/internal/parser"
	"github.com/aledsdavies/pyscript/internal/token"
)

// run lexes, parses, and evaluates src against a fresh environment with the
// builtin catalog installed, collecting print output one trimmed line per
// call.
func run(t *testing.T, src string) (object.Value, []string, error) {
	t.Helper()
	var prints []string
	env := object.NewEnvironment(nil)
	builtin.Install(env, func(s string) { prints = append(prints, strings.TrimSuffix(s, "\n")) })

	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		t.Fatalf("lex(%q): %v", src, err)
	}
	prog, errs := parser.New(src, toks).Parse()
	if len(errs) != 0 {
		t.Fatalf("parse(%q): %v", src, errs)
	}
	val, rerr := eval.EvalProgram(prog, env, eval.NewCtx())
	return val, prints, rerr
}

func mustRun(t *testing.T, src string) []string {
	t.Helper()
	_, prints, err := run(t, src)
	if err != nil {
		t.Fatalf("eval(%q): %v", src, err)
	}
	return prints
}

func TestEvalBuilderConstructedProgram(t *testing.T) {
	// 1 + 2 * 3 assembled by hand from builder constructors, no parser.
	tok := token.Token{Kind: token.INT, Line: 1, Column: 1}
	expr := ast.Bin(tok, token.PLUS,
		ast.Num(tok, int64(1)),
		ast.Bin(tok, token.STAR, ast.Num(tok, int64(2)), ast.Num(tok, int64(3))))
	prog := &ast.Program{Stmts: []ast.Stmt{ast.ExprStatement(tok, expr)}}

	val, err := eval.EvalProgram(prog, object.NewEnvironment(nil), eval.NewCtx())
	if err != nil {
		t.Fatalf("EvalProgram: %v", err)
	}
	if val != object.Int(7) {
		t.Errorf("1 + 2 * 3 = %v, want 7", val)
	}
}

func TestLastExpressionValueIsReturned(t *testing.T) {
	val, _, err := run(t, "x = 20\nx * 2 + 2\n")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if val != object.Int(42) {
		t.Errorf("last expression value = %v, want 42", val)
	}
}

func TestWhileWithBreakAndContinue(t *testing.T) {
	src := "total = 0\n" +
		"i = 0\n" +
		"while True:\n" +
		"    i = i + 1\n" +
		"    if i > 10:\n" +
		"        break\n" +
		"    if i % 2 == 0:\n" +
		"        continue\n" +
		"    total = total + i\n" +
		"print(total)\n"
	prints := mustRun(t, src)
	if len(prints) != 1 || prints[0] != "25" {
		t.Errorf("prints = %v, want [25]", prints)
	}
}

func TestForUnpacksDictItems(t *testing.T) {
	src := "d = {'a': 1, 'b': 2}\n" +
		"for k, v in d.items():\n" +
		"    print(k, v)\n"
	prints := mustRun(t, src)
	want := []string{"a 1", "b 2"}
	if len(prints) != len(want) {
		t.Fatalf("prints = %v, want %v", prints, want)
	}
	for i := range want {
		if prints[i] != want[i] {
			t.Errorf("prints[%d] = %q, want %q", i, prints[i], want[i])
		}
	}
}

// Defaults are evaluated in the closure environment at each call, so a
// rebinding of the captured name is visible to later calls.
func TestDefaultArgumentsEvaluateAtCallTime(t *testing.T) {
	src := "n = 1\n" +
		"def f(x=n):\n" +
		"    return x\n" +
		"n = 5\n" +
		"print(f())\n"
	prints := mustRun(t, src)
	if len(prints) != 1 || prints[0] != "5" {
		t.Errorf("prints = %v, want [5] (defaults bind at call time)", prints)
	}
}

func TestStarArgsAndKwargsBinding(t *testing.T) {
	src := "def f(a, *rest, **kw):\n" +
		"    return a + len(rest) + len(kw)\n" +
		"print(f(10, 1, 2, x=3, y=4))\n"
	prints := mustRun(t, src)
	if len(prints) != 1 || prints[0] != "14" {
		t.Errorf("prints = %v, want [14]", prints)
	}
}

func TestUnexpectedKeywordArgumentRaisesTypeError(t *testing.T) {
	src := "def f(a):\n" +
		"    return a\n" +
		"f(1, b=2)\n"
	_, _, err := run(t, src)
	exc, ok := err.(*object.Exception)
	if !ok {
		t.Fatalf("err = %v, want *object.Exception", err)
	}
	if exc.ClassName != "TypeError" {
		t.Errorf("ClassName = %q, want TypeError", exc.ClassName)
	}
}

func TestLambdaWithDefault(t *testing.T) {
	prints := mustRun(t, "add = lambda a, b=2: a + b\nprint(add(1))\nprint(add(1, 10))\n")
	if len(prints) != 2 || prints[0] != "3" || prints[1] != "11" {
		t.Errorf("prints = %v, want [3 11]", prints)
	}
}

func TestFinallyOverridesReturn(t *testing.T) {
	src := "def f():\n" +
		"    try:\n" +
		"        return 1\n" +
		"    finally:\n" +
		"        return 2\n" +
		"print(f())\n"
	prints := mustRun(t, src)
	if len(prints) != 1 || prints[0] != "2" {
		t.Errorf("prints = %v, want [2] (finally's return wins)", prints)
	}
}

func TestExceptionInFinallyReplacesInFlight(t *testing.T) {
	src := "try:\n" +
		"    1 / 0\n" +
		"finally:\n" +
		"    raise ValueError('from finally')\n"
	_, _, err := run(t, src)
	exc, ok := err.(*object.Exception)
	if !ok {
		t.Fatalf("err = %v, want *object.Exception", err)
	}
	if exc.ClassName != "ValueError" {
		t.Errorf("ClassName = %q, want ValueError (finally replaces in-flight)", exc.ClassName)
	}
}

func TestTryElseRunsOnlyWithoutException(t *testing.T) {
	src := "try:\n" +
		"    x = 1\n" +
		"except ValueError:\n" +
		"    print('handler')\n" +
		"else:\n" +
		"    print('else')\n" +
		"finally:\n" +
		"    print('finally')\n"
	prints := mustRun(t, src)
	if len(prints) != 2 || prints[0] != "else" || prints[1] != "finally" {
		t.Errorf("prints = %v, want [else finally]", prints)
	}
}

// A break leaving the try suite must skip the else clause and still exit
// the loop; else runs only when the suite falls off the end normally.
func TestBreakInTrySkipsElseAndExitsLoop(t *testing.T) {
	src := "n = 0\n" +
		"while True:\n" +
		"    n = n + 1\n" +
		"    try:\n" +
		"        break\n" +
		"    except ValueError:\n" +
		"        pass\n" +
		"    else:\n" +
		"        print('else ran')\n" +
		"print(n)\n"
	prints := mustRun(t, src)
	if len(prints) != 1 || prints[0] != "1" {
		t.Errorf("prints = %v, want [1] (break propagates, else skipped)", prints)
	}
}

func TestReturnInTrySkipsElseAndKeepsValue(t *testing.T) {
	src := "def f():\n" +
		"    try:\n" +
		"        return 1\n" +
		"    except ValueError:\n" +
		"        pass\n" +
		"    else:\n" +
		"        return 2\n" +
		"    finally:\n" +
		"        print('finally')\n" +
		"print(f())\n"
	prints := mustRun(t, src)
	if len(prints) != 2 || prints[0] != "finally" || prints[1] != "1" {
		t.Errorf("prints = %v, want [finally 1] (try's return survives the else)", prints)
	}
}

func TestContinueInTrySkipsElse(t *testing.T) {
	src := "hits = 0\n" +
		"for i in range(3):\n" +
		"    try:\n" +
		"        continue\n" +
		"    except ValueError:\n" +
		"        pass\n" +
		"    else:\n" +
		"        hits = hits + 1\n" +
		"print(hits)\n"
	prints := mustRun(t, src)
	if len(prints) != 1 || prints[0] != "0" {
		t.Errorf("prints = %v, want [0] (continue skips the else every iteration)", prints)
	}
}

func TestTypeOfBoundMethods(t *testing.T) {
	src := "xs = []\n" +
		"print(type(xs.append))\n" +
		"class C:\n" +
		"    def m(self):\n" +
		"        pass\n" +
		"print(type(C().m))\n"
	prints := mustRun(t, src)
	want := []string{"<class 'builtin_function_or_method'>", "<class 'method'>"}
	if len(prints) != len(want) || prints[0] != want[0] || prints[1] != want[1] {
		t.Errorf("prints = %v, want %v", prints, want)
	}
}

func TestGlobalDeclarationWritesOutermost(t *testing.T) {
	src := "count = 0\n" +
		"def bump():\n" +
		"    global count\n" +
		"    count = count + 1\n" +
		"bump()\n" +
		"bump()\n" +
		"print(count)\n"
	prints := mustRun(t, src)
	if len(prints) != 1 || prints[0] != "2" {
		t.Errorf("prints = %v, want [2]", prints)
	}
}

func TestNonlocalWithoutBindingRaisesNameError(t *testing.T) {
	src := "def f():\n" +
		"    nonlocal missing\n" +
		"    missing = 1\n" +
		"f()\n"
	_, _, err := run(t, src)
	exc, ok := err.(*object.Exception)
	if !ok {
		t.Fatalf("err = %v, want *object.Exception", err)
	}
	if exc.ClassName != "NameError" {
		t.Errorf("ClassName = %q, want NameError", exc.ClassName)
	}
}

func TestBreakOutsideLoopIsRuntimeError(t *testing.T) {
	_, _, err := run(t, "break\n")
	if err == nil {
		t.Fatal("break outside a loop should be an error")
	}
}

func TestAugmentedIndexAssignment(t *testing.T) {
	prints := mustRun(t, "d = {'a': 1}\nd['a'] += 4\nprint(d['a'])\n")
	if len(prints) != 1 || prints[0] != "5" {
		t.Errorf("prints = %v, want [5]", prints)
	}
}

func TestShortCircuitSkipsRightOperand(t *testing.T) {
	src := "def boom():\n" +
		"    print('evaluated')\n" +
		"    return True\n" +
		"x = False and boom()\n" +
		"y = True or boom()\n" +
		"print(x, y)\n"
	prints := mustRun(t, src)
	if len(prints) != 1 || prints[0] != "False True" {
		t.Errorf("prints = %v, want [False True] with no 'evaluated' line", prints)
	}
}

func TestNestedComprehensionScopesDoNotLeak(t *testing.T) {
	src := "pairs = [[x, y] for x in range(2) for y in range(2) if x != y]\n" +
		"print(pairs)\n"
	prints := mustRun(t, src)
	if len(prints) != 1 || prints[0] != "[[0, 1], [1, 0]]" {
		t.Errorf("prints = %v, want [[[0, 1], [1, 0]]]", prints)
	}
	_, _, err := run(t, "[x for x in range(3)]\nprint(x)\n")
	exc, ok := err.(*object.Exception)
	if !ok || exc.ClassName != "NameError" {
		t.Errorf("reading the iteration variable after the comprehension = %v, want NameError", err)
	}
}

func TestSetComprehensionDeduplicates(t *testing.T) {
	prints := mustRun(t, "s = {x % 2 for x in range(6)}\nprint(len(s))\n")
	if len(prints) != 1 || prints[0] != "2" {
		t.Errorf("prints = %v, want [2]", prints)
	}
}

func TestStopFlagAbortsLoop(t *testing.T) {
	env := object.NewEnvironment(nil)
	builtin.Install(env, func(string) {})
	src := "while True:\n    pass\n"
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	prog, errs := parser.New(src, toks).Parse()
	if len(errs) != 0 {
		t.Fatalf("parse: %v", errs)
	}
	ctx := eval.NewCtx()
	ctx.Stop()
	_, rerr := eval.EvalProgram(prog, env, ctx)
	exc, ok := rerr.(*object.Exception)
	if !ok || exc.ClassName != "StopExecution" {
		t.Fatalf("err = %v, want StopExecution", rerr)
	}
}
