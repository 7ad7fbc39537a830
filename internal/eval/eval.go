// Package eval implements the tree-walking evaluator: a visitor over the
// AST that produces values or explicit control-flow signals, never
// exception-driven control flow for return/break/continue.
package eval

import (
	"fmt"
	"sync/atomic"

	"github.com/aledsdavies/pyscript/internal/ast"
	"github.com/aledsdavies/pyscript/internal/object"
	"github.com/aledsdavies/pyscript/internal/suggest"
	"github.com/aledsdavies/pyscript/internal/token"
)

type signalKind int

const (
	sigNone signalKind = iota
	sigReturn
	sigBreak
	sigContinue
)

// signal carries the explicit Return/Break/Continue outcome variants,
// returned alongside a nil error from statement evaluation. Raise is
// instead represented as a Go error (always an *object.Exception), since
// that is the idiomatic Go channel for "this computation failed" and needs
// no extra variant.
type signal struct {
	kind  signalKind
	value object.Value
}

var normal = &signal{kind: sigNone}

// Ctx threads run-scoped state through every evaluation call, currently
// just the cooperative stop flag the host raises via Stop.
type Ctx struct {
	stopped *int32
}

func NewCtx() *Ctx { return &Ctx{stopped: new(int32)} }

func (c *Ctx) Stop()         { atomic.StoreInt32(c.stopped, 1) }
func (c *Ctx) Stopped() bool { return atomic.LoadInt32(c.stopped) != 0 }

func (c *Ctx) checkStop() error {
	if c.Stopped() {
		return object.NewStopExecution()
	}
	return nil
}

// EvalProgram runs every top-level statement in order, returning the value
// of the final statement if (and only if) it was a bare expression
// statement, matching the embedding API's "optional last-expression value"
// contract.
func EvalProgram(prog *ast.Program, env *object.Environment, ctx *Ctx) (object.Value, error) {
	var last object.Value = object.None
	for _, stmt := range prog.Stmts {
		if err := ctx.checkStop(); err != nil {
			return nil, err
		}
		if es, ok := stmt.(*ast.ExprStmt); ok {
			v, err := evalExpr(es.X, env, ctx)
			if err != nil {
				return nil, err
			}
			last = v
			continue
		}
		sig, err := evalStmt(stmt, env, ctx)
		if err != nil {
			return nil, err
		}
		if sig.kind == sigReturn {
			return nil, object.NewTypeError("'return' outside function")
		}
		if sig.kind == sigBreak || sig.kind == sigContinue {
			return nil, object.NewTypeError("'break'/'continue' outside loop")
		}
		last = object.None
	}
	return last, nil
}

func evalBlock(block *ast.Block, env *object.Environment, ctx *Ctx) (*signal, error) {
	for _, stmt := range block.Stmts {
		if err := ctx.checkStop(); err != nil {
			return normal, err
		}
		sig, err := evalStmt(stmt, env, ctx)
		if err != nil {
			return normal, err
		}
		if sig.kind != sigNone {
			return sig, nil
		}
	}
	return normal, nil
}

func evalStmt(stmt ast.Stmt, env *object.Environment, ctx *Ctx) (*signal, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := evalExpr(s.X, env, ctx)
		return normal, err
	case *ast.Pass:
		return normal, nil
	case *ast.Break:
		return &signal{kind: sigBreak}, nil
	case *ast.Continue:
		return &signal{kind: sigContinue}, nil
	case *ast.Return:
		if s.Value == nil {
			return &signal{kind: sigReturn, value: object.None}, nil
		}
		v, err := evalExpr(s.Value, env, ctx)
		if err != nil {
			return normal, err
		}
		return &signal{kind: sigReturn, value: v}, nil
	case *ast.Global:
		for _, n := range s.Names {
			env.DeclareGlobal(n)
		}
		return normal, nil
	case *ast.Nonlocal:
		for _, n := range s.Names {
			env.DeclareNonlocal(n)
		}
		return normal, nil
	case *ast.If:
		return evalIf(s, env, ctx)
	case *ast.While:
		return evalWhile(s, env, ctx)
	case *ast.For:
		return evalFor(s, env, ctx)
	case *ast.FuncDef:
		fn := &object.Function{Name: s.Name, Params: s.Params, Body: s.Body, Closure: env}
		env.Define(s.Name, fn)
		return normal, nil
	case *ast.ClassDef:
		return evalClassDef(s, env, ctx)
	case *ast.Try:
		return evalTry(s, env, ctx)
	case *ast.Raise:
		return evalRaise(s, env, ctx)
	case *ast.Block:
		return evalBlock(s, env, ctx)
	default:
		return normal, object.NewTypeError("unsupported statement")
	}
}

func evalIf(s *ast.If, env *object.Environment, ctx *Ctx) (*signal, error) {
	for _, b := range s.Branches {
		if b.Cond == nil {
			return evalBlock(b.Body, env, ctx)
		}
		v, err := evalExpr(b.Cond, env, ctx)
		if err != nil {
			return normal, err
		}
		if object.Truthy(v) {
			return evalBlock(b.Body, env, ctx)
		}
	}
	return normal, nil
}

func evalWhile(s *ast.While, env *object.Environment, ctx *Ctx) (*signal, error) {
	for {
		if err := ctx.checkStop(); err != nil {
			return normal, err
		}
		cond, err := evalExpr(s.Cond, env, ctx)
		if err != nil {
			return normal, err
		}
		if !object.Truthy(cond) {
			return normal, nil
		}
		sig, err := evalBlock(s.Body, env, ctx)
		if err != nil {
			return normal, err
		}
		switch sig.kind {
		case sigBreak:
			return normal, nil
		case sigReturn:
			return sig, nil
		}
	}
}

func evalFor(s *ast.For, env *object.Environment, ctx *Ctx) (*signal, error) {
	iterVal, err := evalExpr(s.Iter, env, ctx)
	if err != nil {
		return normal, err
	}
	items, err := Iterate(iterVal)
	if err != nil {
		return normal, err
	}
	for _, item := range items {
		if err := ctx.checkStop(); err != nil {
			return normal, err
		}
		if err := bindForTargets(s.Targets, item, env); err != nil {
			return normal, err
		}
		sig, err := evalBlock(s.Body, env, ctx)
		if err != nil {
			return normal, err
		}
		switch sig.kind {
		case sigBreak:
			return normal, nil
		case sigReturn:
			return sig, nil
		}
	}
	return normal, nil
}

func bindForTargets(targets []string, item object.Value, env *object.Environment) error {
	if len(targets) == 1 {
		return env.Assign(targets[0], item)
	}
	var elems []object.Value
	switch seq := item.(type) {
	case *object.Tuple:
		elems = seq.Elems
	case *object.List:
		elems = seq.Elems
	default:
		return object.NewTypeError(fmt.Sprintf("cannot unpack non-sequence %s object", object.TypeName(item)))
	}
	if len(elems) != len(targets) {
		return object.NewValueError("wrong number of values to unpack")
	}
	for i, name := range targets {
		if err := env.Assign(name, elems[i]); err != nil {
			return err
		}
	}
	return nil
}

func evalRaise(s *ast.Raise, env *object.Environment, ctx *Ctx) (*signal, error) {
	if s.Value == nil {
		return normal, object.NewValueError("no active exception to re-raise")
	}
	v, err := evalExpr(s.Value, env, ctx)
	if err != nil {
		return normal, err
	}
	switch x := v.(type) {
	case *object.Exception:
		return normal, x
	case *object.Instance:
		return normal, &object.Exception{ClassName: x.Class.Name, Message: instanceMessage(x), Class: x.Class, Instance: x}
	default:
		return normal, object.NewTypeError("exceptions must derive from an exception class")
	}
}

func instanceMessage(inst *object.Instance) string {
	if v, ok := inst.Attrs["message"]; ok {
		return v.Str()
	}
	if v, ok := inst.Attrs["args"]; ok {
		return v.Str()
	}
	return ""
}

func evalTry(s *ast.Try, env *object.Environment, ctx *Ctx) (*signal, error) {
	sig, err := evalBlock(s.Body, env, ctx)

	var raised *object.Exception
	if exc, ok := err.(*object.Exception); ok {
		raised = exc
		err = nil
	} else if err != nil {
		return normal, err
	}

	if raised != nil {
		handled := false
		for _, clause := range s.Excepts {
			// StopExecution is never handled, so a host Stop() always
			// terminates the run even through an unqualified except.
			if raised.ClassName == "StopExecution" {
				break
			}
			if clause.Type != nil && !raised.IsClass(*clause.Type) {
				continue
			}
			handled = true
			handlerEnv := env
			if clause.As != "" {
				handlerEnv.Define(clause.As, raised)
			}
			sig, err = evalBlock(clause.Body, handlerEnv, ctx)
			if exc, ok := err.(*object.Exception); ok {
				raised = exc
				err = nil
			} else {
				raised = nil
			}
			break
		}
		if !handled {
			return finallyThen(s.Finally, env, ctx, normal, raised)
		}
	} else if s.Else != nil && sig.kind == sigNone {
		// else runs only when the try suite fell off the end normally; a
		// break/continue/return from the suite skips it and propagates
		// through finally untouched.
		sig, err = evalBlock(s.Else, env, ctx)
		if exc, ok := err.(*object.Exception); ok {
			raised = exc
			err = nil
		}
	}

	return finallyThen(s.Finally, env, ctx, sig, raisedOrErr(raised, err))
}

func raisedOrErr(raised *object.Exception, err error) error {
	if raised != nil {
		return raised
	}
	return err
}

// finallyThen runs the finally block (if any) and implements its override
// semantics: an exception raised in finally replaces the in-flight
// exception/return/break.
func finallyThen(finally *ast.Block, env *object.Environment, ctx *Ctx, sig *signal, pending error) (*signal, error) {
	if finally == nil {
		return sig, pending
	}
	fsig, ferr := evalBlock(finally, env, ctx)
	if ferr != nil {
		return normal, ferr
	}
	if fsig.kind != sigNone {
		return fsig, nil
	}
	return sig, pending
}

// evalExpr dispatches on AST expression kind. Every runtime failure is
// returned as a Go error that is always an *object.Exception.
func evalExpr(expr ast.Expr, env *object.Environment, ctx *Ctx) (object.Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return literalValue(e), nil
	case *ast.FString:
		return evalFString(e, env, ctx)
	case *ast.Identifier:
		if v, ok := env.Get(e.Name); ok {
			return v, nil
		}
		msg := "name '" + e.Name + "' is not defined"
		if hint := suggest.Name(e.Name, env.Names()); hint != "" {
			msg += ". Did you mean: '" + hint + "'?"
		}
		return nil, object.NewNameError(msg)
	case *ast.ListLiteral:
		elems, err := evalExprList(e.Elements, env, ctx)
		if err != nil {
			return nil, err
		}
		return object.NewList(elems), nil
	case *ast.TupleLiteral:
		elems, err := evalExprList(e.Elements, env, ctx)
		if err != nil {
			return nil, err
		}
		return object.NewTuple(elems), nil
	case *ast.SetLiteral:
		s := object.NewSet()
		for _, el := range e.Elements {
			v, err := evalExpr(el, env, ctx)
			if err != nil {
				return nil, err
			}
			if _, err := s.Add(v); err != nil {
				return nil, err
			}
		}
		return s, nil
	case *ast.DictLiteral:
		d := object.NewDict()
		for _, entry := range e.Entries {
			k, err := evalExpr(entry.Key, env, ctx)
			if err != nil {
				return nil, err
			}
			v, err := evalExpr(entry.Value, env, ctx)
			if err != nil {
				return nil, err
			}
			if err := d.Set(k, v); err != nil {
				return nil, err
			}
		}
		return d, nil
	case *ast.IndexGet:
		return evalIndexGet(e, env, ctx)
	case *ast.AttributeGet:
		return evalAttributeGet(e, env, ctx)
	case *ast.Slice:
		return evalSlice(e, env, ctx)
	case *ast.Unary:
		return evalUnary(e, env, ctx)
	case *ast.Binary:
		return evalBinary(e, env, ctx)
	case *ast.Comparison:
		return evalComparison(e, env, ctx)
	case *ast.Logical:
		return evalLogical(e, env, ctx)
	case *ast.Assignment:
		return evalAssignment(e, env, ctx)
	case *ast.AugAssignment:
		return evalAugAssignment(e, env, ctx)
	case *ast.Call:
		return evalCall(e, env, ctx)
	case *ast.Lambda:
		return &object.Function{Params: e.Params, Expr: e.Body, Closure: env}, nil
	case *ast.Comprehension:
		return evalComprehension(e, env, ctx)
	case *ast.SuperLookup:
		return evalSuperLookup(e, env, ctx)
	default:
		return nil, object.NewTypeError("unsupported expression")
	}
}

func literalValue(l *ast.Literal) object.Value {
	switch v := l.Value.(type) {
	case nil:
		return object.None
	case bool:
		return object.Bool(v)
	case int64:
		return object.Int(v)
	case float64:
		return object.Float(v)
	case string:
		return object.Str(v)
	default:
		return object.None
	}
}

func evalExprList(exprs []ast.Expr, env *object.Environment, ctx *Ctx) ([]object.Value, error) {
	out := make([]object.Value, 0, len(exprs))
	for _, e := range exprs {
		v, err := evalExpr(e, env, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func evalLogical(e *ast.Logical, env *object.Environment, ctx *Ctx) (object.Value, error) {
	left, err := evalExpr(e.Left, env, ctx)
	if err != nil {
		return nil, err
	}
	if e.Op == token.OR {
		if object.Truthy(left) {
			return left, nil
		}
		return evalExpr(e.Right, env, ctx)
	}
	if !object.Truthy(left) {
		return left, nil
	}
	return evalExpr(e.Right, env, ctx)
}

func evalAssignment(e *ast.Assignment, env *object.Environment, ctx *Ctx) (object.Value, error) {
	v, err := evalExpr(e.Value, env, ctx)
	if err != nil {
		return nil, err
	}
	if err := assignTo(e.Target, v, env, ctx); err != nil {
		return nil, err
	}
	return v, nil
}

func assignTo(target ast.Expr, v object.Value, env *object.Environment, ctx *Ctx) error {
	switch t := target.(type) {
	case *ast.Identifier:
		return env.Assign(t.Name, v)
	case *ast.IndexGet:
		recv, err := evalExpr(t.Receiver, env, ctx)
		if err != nil {
			return err
		}
		idx, err := evalExpr(t.Index, env, ctx)
		if err != nil {
			return err
		}
		return indexSet(recv, idx, v)
	case *ast.AttributeGet:
		recv, err := evalExpr(t.Receiver, env, ctx)
		if err != nil {
			return err
		}
		inst, ok := recv.(*object.Instance)
		if !ok {
			return object.NewAttributeError("cannot set attribute on non-instance value")
		}
		inst.Attrs[t.Name] = v
		return nil
	default:
		return object.NewTypeError("invalid assignment target")
	}
}

func evalAugAssignment(e *ast.AugAssignment, env *object.Environment, ctx *Ctx) (object.Value, error) {
	cur, err := evalExpr(e.Target, env, ctx)
	if err != nil {
		return nil, err
	}
	rhs, err := evalExpr(e.Value, env, ctx)
	if err != nil {
		return nil, err
	}
	result, err := applyBinaryOp(e.Op, cur, rhs)
	if err != nil {
		return nil, err
	}
	if err := assignTo(e.Target, result, env, ctx); err != nil {
		return nil, err
	}
	return result, nil
}
