package pyscript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/pyscript/internal/cache"
	"github.com/aledsdavies/pyscript/internal/eval"
)

// runCapture evaluates src, collecting one entry per print() call with the
// trailing newline stripped so expectations read naturally.
func runCapture(t *testing.T, src string) (prints []string, errs []string, outcome Outcome) {
	t.Helper()
	interp := New()
	interp.RegisterPrintCallback(func(s string) { prints = append(prints, strings.TrimSuffix(s, "\n")) })
	interp.RegisterErrorCallback(func(s string) { errs = append(errs, s) })
	_, outcome = interp.Evaluate(src)
	return
}

func TestArithmeticAndPrinting(t *testing.T) {
	prints, errs, outcome := runCapture(t, "print(1 + 2 * 3)\n")
	require.Empty(t, errs)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, []string{"7"}, prints)
}

func TestClosures(t *testing.T) {
	src := "def make_counter():\n" +
		"    count = 0\n" +
		"    def inc():\n" +
		"        nonlocal count\n" +
		"        count = count + 1\n" +
		"        return count\n" +
		"    return inc\n" +
		"c = make_counter()\n" +
		"print(c())\n" +
		"print(c())\n"
	prints, errs, outcome := runCapture(t, src)
	require.Empty(t, errs)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, []string{"1", "2"}, prints)
}

func TestClassInheritanceAndSuper(t *testing.T) {
	src := "class Animal:\n" +
		"    def __init__(self, name):\n" +
		"        self.name = name\n" +
		"    def speak(self):\n" +
		"        return self.name + ' makes a sound'\n" +
		"class Dog(Animal):\n" +
		"    def speak(self):\n" +
		"        return super().speak() + ' (bark)'\n" +
		"d = Dog('Rex')\n" +
		"print(d.speak())\n"
	prints, errs, outcome := runCapture(t, src)
	require.Empty(t, errs)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, []string{"Rex makes a sound (bark)"}, prints)
}

func TestTryExceptFinally(t *testing.T) {
	src := "result = []\n" +
		"try:\n" +
		"    1 / 0\n" +
		"except ZeroDivisionError as e:\n" +
		"    result.append('caught')\n" +
		"finally:\n" +
		"    result.append('finally')\n" +
		"print(result)\n"
	prints, errs, outcome := runCapture(t, src)
	require.Empty(t, errs)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, []string{"['caught', 'finally']"}, prints)
}

func TestListComprehensionWithFilter(t *testing.T) {
	prints, errs, outcome := runCapture(t, "print([x * x for x in range(6) if x % 2 == 0])\n")
	require.Empty(t, errs)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, []string{"[0, 4, 16]"}, prints)
}

func TestSlicing(t *testing.T) {
	prints, errs, outcome := runCapture(t, "xs = [0, 1, 2, 3, 4]\nprint(xs[1:4])\nprint(xs[::-1])\n")
	require.Empty(t, errs)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, []string{"[1, 2, 3]", "[4, 3, 2, 1, 0]"}, prints)
}

func TestFStringFormatting(t *testing.T) {
	prints, errs, outcome := runCapture(t, "print(f'{3.14159:.2f} {42:05d}')\n")
	require.Empty(t, errs)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, []string{"3.14 00042"}, prints)
}

func TestSyntaxErrorReportsAndSetsOutcome(t *testing.T) {
	_, errs, outcome := runCapture(t, "def f(:\n    pass\n")
	assert.Equal(t, OutcomeSyntaxError, outcome)
	require.NotEmpty(t, errs)
}

func TestUncaughtRuntimeErrorReportsTaxonomyPrefix(t *testing.T) {
	_, errs, outcome := runCapture(t, "1 / 0\n")
	assert.Equal(t, OutcomeRuntimeError, outcome)
	require.Len(t, errs, 1)
	assert.True(t, strings.HasPrefix(errs[0], "ZeroDivisionError"))
}

func TestNameErrorSuggestsCloseMatch(t *testing.T) {
	src := "name = 1\nprint(nme)\n"
	_, errs, outcome := runCapture(t, src)
	assert.Equal(t, OutcomeRuntimeError, outcome)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "NameError")
	assert.Contains(t, errs[0], "Did you mean")
}

func TestRegisterFunctionIsCallableFromScript(t *testing.T) {
	interp := New()
	var prints []string
	interp.RegisterPrintCallback(func(s string) { prints = append(prints, strings.TrimSuffix(s, "\n")) })
	interp.RegisterFunction("double", func(pos []Value, kw map[string]Value) (Value, error) {
		return eval.Add(pos[0], pos[0])
	})
	_, outcome := interp.Evaluate("print(double(21))\n")
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, []string{"42"}, prints)
}

func TestRegisterFunctionWithSchemaRejectsBadKwargs(t *testing.T) {
	interp := New()
	var errs []string
	interp.RegisterErrorCallback(func(s string) { errs = append(errs, s) })

	err := interp.RegisterFunctionWithSchema("greet", map[string]any{
		"type":     "object",
		"required": []any{"name"},
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
	}, func(pos []Value, kw map[string]Value) (Value, error) {
		return kw["name"], nil
	})
	require.NoError(t, err)

	_, outcome := interp.Evaluate("greet()\n")
	assert.Equal(t, OutcomeRuntimeError, outcome)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "TypeError")
}

func TestWithCacheRoundTripsIdenticalOutput(t *testing.T) {
	c := cache.New()
	const src = "msgs = ['cached'] * 2\nprint(msgs[0])\n"

	first := New(WithCache(c))
	var firstPrints []string
	first.RegisterPrintCallback(func(s string) { firstPrints = append(firstPrints, s) })
	_, outcome := first.Evaluate(src)
	require.Equal(t, OutcomeOK, outcome)
	require.Equal(t, 1, c.Len())

	second := New(WithCache(c))
	var secondPrints []string
	second.RegisterPrintCallback(func(s string) { secondPrints = append(secondPrints, s) })
	_, outcome = second.Evaluate(src)
	require.Equal(t, OutcomeOK, outcome)

	assert.Equal(t, firstPrints, secondPrints)
}

func TestSuperInitChainRunsInOrder(t *testing.T) {
	src := "class Parent:\n" +
		"    def __init__(self, name):\n" +
		"        print('Parent init:', name)\n" +
		"        self.name = name\n" +
		"class Child(Parent):\n" +
		"    def __init__(self, name, age):\n" +
		"        print('Child init start')\n" +
		"        super().__init__(name)\n" +
		"        self.age = age\n" +
		"        print('Child init end:', self.name, self.age)\n" +
		"c = Child('Alice', 30)\n"
	prints, errs, outcome := runCapture(t, src)
	require.Empty(t, errs)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, []string{"Child init start", "Parent init: Alice", "Child init end: Alice 30"}, prints)
}

func TestRaiseBuiltinExceptionIsCatchableByName(t *testing.T) {
	src := "try:\n" +
		"    raise ValueError('bad input')\n" +
		"except ValueError as e:\n" +
		"    print(e)\n"
	prints, errs, outcome := runCapture(t, src)
	require.Empty(t, errs)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, []string{"ValueError: bad input"}, prints)
}

func TestExceptExceptionCatchesBuiltinErrors(t *testing.T) {
	src := "try:\n" +
		"    1 / 0\n" +
		"except Exception:\n" +
		"    print('caught')\n"
	prints, errs, outcome := runCapture(t, src)
	require.Empty(t, errs)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, []string{"caught"}, prints)
}

func TestBareTupleAssignment(t *testing.T) {
	prints, errs, outcome := runCapture(t, "t = 1, 2\nprint(t)\n")
	require.Empty(t, errs)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, []string{"(1, 2)"}, prints)
}

func TestSemicolonSeparatedSingleLineSuite(t *testing.T) {
	prints, errs, outcome := runCapture(t, "if True: x = 1; y = 2\nprint(x + y)\n")
	require.Empty(t, errs)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, []string{"3"}, prints)
}

func TestChainedComparison(t *testing.T) {
	prints, errs, outcome := runCapture(t, "b = 2\nprint(1 < b < 3)\nprint(3 < b < 5)\n")
	require.Empty(t, errs)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, []string{"True", "False"}, prints)
}

func TestStringSliceWithStep(t *testing.T) {
	prints, errs, outcome := runCapture(t, "print('abcdef'[1:5:2])\n")
	require.Empty(t, errs)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, []string{"bd"}, prints)
}

func TestStopAbortsBeforeNextStatement(t *testing.T) {
	interp := New()
	var errs []string
	interp.RegisterErrorCallback(func(s string) { errs = append(errs, s) })
	interp.Stop()
	_, outcome := interp.Evaluate("try:\n    pass\nexcept Exception:\n    print('never')\n")
	assert.Equal(t, OutcomeRuntimeError, outcome)
	require.Len(t, errs, 1)
	assert.True(t, strings.HasPrefix(errs[0], "StopExecution"))
}

func TestCompatibleWith(t *testing.T) {
	assert.True(t, CompatibleWith("v0.1.0"))
	assert.False(t, CompatibleWith("v1.0.0"))
	assert.False(t, CompatibleWith("not-a-version"))
}
