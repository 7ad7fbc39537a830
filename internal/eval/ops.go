package eval

import (
	"fmt"
	"math"

	"github.com/aledsdavies/pyscript/internal/ast"
	"github.com/aledsdavies/pyscript/internal/object"
	"github.com/aledsdavies/pyscript/internal/token"
)

func evalUnary(e *ast.Unary, env *object.Environment, ctx *Ctx) (object.Value, error) {
	v, err := evalExpr(e.Operand, env, ctx)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case token.NOT:
		return object.Bool(!object.Truthy(v)), nil
	case token.MINUS:
		switch n := v.(type) {
		case object.Int:
			return -n, nil
		case object.Float:
			return -n, nil
		case object.Bool:
			if n {
				return object.Int(-1), nil
			}
			return object.Int(0), nil
		}
		return nil, object.NewTypeError(fmt.Sprintf("bad operand type for unary -: '%s'", object.TypeName(v)))
	case token.PLUS:
		switch n := v.(type) {
		case object.Int:
			return n, nil
		case object.Float:
			return n, nil
		case object.Bool:
			if n {
				return object.Int(1), nil
			}
			return object.Int(0), nil
		}
		return nil, object.NewTypeError(fmt.Sprintf("bad operand type for unary +: '%s'", object.TypeName(v)))
	case token.TILDE:
		i, ok := asInt(v)
		if !ok {
			return nil, object.NewTypeError(fmt.Sprintf("bad operand type for unary ~: '%s'", object.TypeName(v)))
		}
		return object.Int(^i), nil
	default:
		return nil, object.NewTypeError("unsupported unary operator")
	}
}

func evalBinary(e *ast.Binary, env *object.Environment, ctx *Ctx) (object.Value, error) {
	left, err := evalExpr(e.Left, env, ctx)
	if err != nil {
		return nil, err
	}
	right, err := evalExpr(e.Right, env, ctx)
	if err != nil {
		return nil, err
	}
	return applyBinaryOp(e.Op, left, right)
}

func asInt(v object.Value) (int64, bool) {
	switch x := v.(type) {
	case object.Int:
		return int64(x), true
	case object.Bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func asNumber(v object.Value) (float64, bool, bool) {
	switch x := v.(type) {
	case object.Int:
		return float64(x), true, false
	case object.Bool:
		if x {
			return 1, true, false
		}
		return 0, true, false
	case object.Float:
		return float64(x), true, true
	default:
		return 0, false, false
	}
}

func bothInt(a, b object.Value) (int64, int64, bool) {
	ai, aok := asInt(a)
	bi, bok := asInt(b)
	_, _, aFloat := asNumber(a)
	_, _, bFloat := asNumber(b)
	return ai, bi, aok && bok && !aFloat && !bFloat
}

// Add and Less expose the `+` and `<` operator semantics to the built-in
// function catalog (sum, min, max), which has no AST nodes of its own to
// evaluate and so cannot go through evalBinary/evalComparison directly.
func Add(a, b object.Value) (object.Value, error) { return opAdd(a, b) }

func Less(a, b object.Value) (bool, error) {
	v, err := opCompareSingle(token.LT, a, b)
	if err != nil {
		return false, err
	}
	return bool(v.(object.Bool)), nil
}

// applyBinaryOp switches on the operator token; the op helpers it calls
// inspect the concrete operand types with Go type assertions rather than
// using virtual dispatch.
func applyBinaryOp(op token.Kind, left, right object.Value) (object.Value, error) {
	switch op {
	case token.PLUS:
		return opAdd(left, right)
	case token.MINUS:
		return opArith(left, right, "-", func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
	case token.STAR:
		return opMul(left, right)
	case token.SLASH:
		return opTrueDiv(left, right)
	case token.SLASHSLASH:
		return opFloorDiv(left, right)
	case token.PERCENT:
		return opMod(left, right)
	case token.STARSTAR:
		return opPow(left, right)
	case token.AMP, token.PIPE, token.CARET, token.LSHIFT, token.RSHIFT:
		return opBitwise(op, left, right)
	case token.IN:
		return opIn(left, right)
	case token.NotIn:
		v, err := opIn(left, right)
		if err != nil {
			return nil, err
		}
		return object.Bool(!object.Truthy(v)), nil
	case token.IS:
		return object.Bool(left == right), nil
	case token.IsNot:
		return object.Bool(left != right), nil
	default:
		return opCompareSingle(op, left, right)
	}
}

func opAdd(a, b object.Value) (object.Value, error) {
	if as, ok := a.(object.Str); ok {
		bs, ok := b.(object.Str)
		if !ok {
			return nil, typeErr("+", a, b)
		}
		return as + bs, nil
	}
	if al, ok := a.(*object.List); ok {
		bl, ok := b.(*object.List)
		if !ok {
			return nil, typeErr("+", a, b)
		}
		out := append(append([]object.Value{}, al.Elems...), bl.Elems...)
		return object.NewList(out), nil
	}
	if at, ok := a.(*object.Tuple); ok {
		bt, ok := b.(*object.Tuple)
		if !ok {
			return nil, typeErr("+", a, b)
		}
		out := append(append([]object.Value{}, at.Elems...), bt.Elems...)
		return object.NewTuple(out), nil
	}
	return opArith(a, b, "+", func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y })
}

func opMul(a, b object.Value) (object.Value, error) {
	if s, ok := a.(object.Str); ok {
		if n, ok := asInt(b); ok {
			return object.Str(repeatStr(string(s), n)), nil
		}
	}
	if s, ok := b.(object.Str); ok {
		if n, ok := asInt(a); ok {
			return object.Str(repeatStr(string(s), n)), nil
		}
	}
	if l, ok := a.(*object.List); ok {
		if n, ok := asInt(b); ok {
			return object.NewList(repeatVals(l.Elems, n)), nil
		}
	}
	if l, ok := b.(*object.List); ok {
		if n, ok := asInt(a); ok {
			return object.NewList(repeatVals(l.Elems, n)), nil
		}
	}
	return opArith(a, b, "*", func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y })
}

func repeatStr(s string, n int64) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, len(s)*int(n))
	for i := int64(0); i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func repeatVals(v []object.Value, n int64) []object.Value {
	if n <= 0 {
		return nil
	}
	out := make([]object.Value, 0, len(v)*int(n))
	for i := int64(0); i < n; i++ {
		out = append(out, v...)
	}
	return out
}

func opArith(a, b object.Value, sym string, iop func(int64, int64) int64, fop func(float64, float64) float64) (object.Value, error) {
	if ai, bi, ok := bothInt(a, b); ok {
		return object.Int(iop(ai, bi)), nil
	}
	af, aok, _ := asNumber(a)
	bf, bok, _ := asNumber(b)
	if !aok || !bok {
		return nil, typeErr(sym, a, b)
	}
	return object.Float(fop(af, bf)), nil
}

// opTrueDiv always yields a float.
func opTrueDiv(a, b object.Value) (object.Value, error) {
	af, aok, _ := asNumber(a)
	bf, bok, _ := asNumber(b)
	if !aok || !bok {
		return nil, typeErr("/", a, b)
	}
	if bf == 0 {
		return nil, object.NewZeroDivisionError("division by zero")
	}
	return object.Float(af / bf), nil
}

// opFloorDiv yields an integer when both operands are integers, else float.
func opFloorDiv(a, b object.Value) (object.Value, error) {
	if ai, bi, ok := bothInt(a, b); ok {
		if bi == 0 {
			return nil, object.NewZeroDivisionError("integer division or modulo by zero")
		}
		q := ai / bi
		if (ai%bi != 0) && ((ai < 0) != (bi < 0)) {
			q--
		}
		return object.Int(q), nil
	}
	af, aok, _ := asNumber(a)
	bf, bok, _ := asNumber(b)
	if !aok || !bok {
		return nil, typeErr("//", a, b)
	}
	if bf == 0 {
		return nil, object.NewZeroDivisionError("float floor division by zero")
	}
	return object.Float(math.Floor(af / bf)), nil
}

// opMod produces a result with the divisor's sign.
func opMod(a, b object.Value) (object.Value, error) {
	if ai, bi, ok := bothInt(a, b); ok {
		if bi == 0 {
			return nil, object.NewZeroDivisionError("integer division or modulo by zero")
		}
		r := ai % bi
		if r != 0 && (r < 0) != (bi < 0) {
			r += bi
		}
		return object.Int(r), nil
	}
	af, aok, _ := asNumber(a)
	bf, bok, _ := asNumber(b)
	if !aok || !bok {
		return nil, typeErr("%", a, b)
	}
	if bf == 0 {
		return nil, object.NewZeroDivisionError("float modulo")
	}
	r := math.Mod(af, bf)
	if r != 0 && (r < 0) != (bf < 0) {
		r += bf
	}
	return object.Float(r), nil
}

// opPow delegates to host exponentiation, staying integer for non-negative
// integer exponents.
func opPow(a, b object.Value) (object.Value, error) {
	if ai, bi, ok := bothInt(a, b); ok && bi >= 0 {
		return object.Int(intPow(ai, bi)), nil
	}
	af, aok, _ := asNumber(a)
	bf, bok, _ := asNumber(b)
	if !aok || !bok {
		return nil, typeErr("**", a, b)
	}
	return object.Float(math.Pow(af, bf)), nil
}

func intPow(base, exp int64) int64 {
	result := int64(1)
	for i := int64(0); i < exp; i++ {
		result *= base
	}
	return result
}

func opBitwise(op token.Kind, a, b object.Value) (object.Value, error) {
	ai, aok := asInt(a)
	bi, bok := asInt(b)
	if !aok || !bok {
		return nil, typeErr(op.String(), a, b)
	}
	switch op {
	case token.AMP:
		return object.Int(ai & bi), nil
	case token.PIPE:
		return object.Int(ai | bi), nil
	case token.CARET:
		return object.Int(ai ^ bi), nil
	case token.LSHIFT:
		return object.Int(ai << uint(bi)), nil
	case token.RSHIFT:
		return object.Int(ai >> uint(bi)), nil
	default:
		return nil, object.NewTypeError("unsupported bitwise operator")
	}
}

func opIn(needle, haystack object.Value) (object.Value, error) {
	switch h := haystack.(type) {
	case object.Str:
		n, ok := needle.(object.Str)
		if !ok {
			return nil, object.NewTypeError("'in <string>' requires string as left operand")
		}
		return object.Bool(containsStr(string(h), string(n))), nil
	case *object.List:
		for _, e := range h.Elems {
			if object.Equal(e, needle) {
				return object.Bool(true), nil
			}
		}
		return object.Bool(false), nil
	case *object.Tuple:
		for _, e := range h.Elems {
			if object.Equal(e, needle) {
				return object.Bool(true), nil
			}
		}
		return object.Bool(false), nil
	case *object.Set:
		ok, err := h.Has(needle)
		return object.Bool(ok), err
	case *object.Dict:
		_, ok, err := h.Get(needle)
		return object.Bool(ok), err
	default:
		return nil, object.NewTypeError(fmt.Sprintf("argument of type '%s' is not iterable", object.TypeName(haystack)))
	}
}

func containsStr(h, n string) bool {
	if n == "" {
		return true
	}
	for i := 0; i+len(n) <= len(h); i++ {
		if h[i:i+len(n)] == n {
			return true
		}
	}
	return false
}

func typeErr(op string, a, b object.Value) error {
	return object.NewTypeError(fmt.Sprintf("unsupported operand type(s) for %s: '%s' and '%s'", op, object.TypeName(a), object.TypeName(b)))
}

// evalComparison implements chained comparisons (a < b < c) as
// (a<b) and (b<c) with b evaluated once, per the GLOSSARY.
func evalComparison(e *ast.Comparison, env *object.Environment, ctx *Ctx) (object.Value, error) {
	left, err := evalExpr(e.Operands[0], env, ctx)
	if err != nil {
		return nil, err
	}
	for i, op := range e.Ops {
		right, err := evalExpr(e.Operands[i+1], env, ctx)
		if err != nil {
			return nil, err
		}
		res, err := applyBinaryOp(op, left, right)
		if err != nil {
			return nil, err
		}
		if !object.Truthy(res) {
			return object.Bool(false), nil
		}
		left = right
	}
	return object.Bool(true), nil
}

func opCompareSingle(op token.Kind, a, b object.Value) (object.Value, error) {
	if af, aok, _ := asNumber(a); aok {
		if bf, bok, _ := asNumber(b); bok {
			return object.Bool(numCompare(op, af, bf)), nil
		}
	}
	if as, ok := a.(object.Str); ok {
		if bs, ok := b.(object.Str); ok {
			return object.Bool(strCompare(op, string(as), string(bs))), nil
		}
	}
	switch op {
	case token.EQ:
		return object.Bool(object.Equal(a, b)), nil
	case token.NEQ:
		return object.Bool(!object.Equal(a, b)), nil
	}
	return nil, object.NewTypeError(fmt.Sprintf("'%s' not supported between instances of '%s' and '%s'", op, object.TypeName(a), object.TypeName(b)))
}

func numCompare(op token.Kind, a, b float64) bool {
	switch op {
	case token.LT:
		return a < b
	case token.LTE:
		return a <= b
	case token.GT:
		return a > b
	case token.GTE:
		return a >= b
	case token.EQ:
		return a == b
	case token.NEQ:
		return a != b
	}
	return false
}

func strCompare(op token.Kind, a, b string) bool {
	switch op {
	case token.LT:
		return a < b
	case token.LTE:
		return a <= b
	case token.GT:
		return a > b
	case token.GTE:
		return a >= b
	case token.EQ:
		return a == b
	case token.NEQ:
		return a != b
	}
	return false
}
