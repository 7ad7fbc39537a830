package eval

import (
	"fmt"

	"github.com/aledsdavies/pyscript/internal/ast"
	"github.com/aledsdavies/pyscript/internal/object"
)

// Iterate materializes any runtime iterable — list, tuple, set, dict (its
// keys), string, or range-as-list — into a slice.
func Iterate(v object.Value) ([]object.Value, error) {
	switch x := v.(type) {
	case *object.List:
		return x.Elems, nil
	case *object.Tuple:
		return x.Elems, nil
	case *object.Set:
		return x.Values(), nil
	case *object.Dict:
		return x.Keys(), nil
	case object.Str:
		out := make([]object.Value, len(x))
		for i := 0; i < len(x); i++ {
			out[i] = object.Str(x[i])
		}
		return out, nil
	default:
		return nil, object.NewTypeError(fmt.Sprintf("'%s' object is not iterable", object.TypeName(v)))
	}
}

func evalCall(e *ast.Call, env *object.Environment, ctx *Ctx) (object.Value, error) {
	callee, err := evalExpr(e.Callee, env, ctx)
	if err != nil {
		return nil, err
	}
	args, err := evalExprList(e.Args, env, ctx)
	if err != nil {
		return nil, err
	}
	var kwargs map[string]object.Value
	if len(e.KwArgs) > 0 {
		kwargs = make(map[string]object.Value, len(e.KwArgs))
		for _, kw := range e.KwArgs {
			v, err := evalExpr(kw.Value, env, ctx)
			if err != nil {
				return nil, err
			}
			kwargs[kw.Name] = v
		}
	}
	return Call(callee, args, kwargs, ctx)
}

// Call dispatches on the callable's runtime kind: native built-in, bound
// method (native or user-defined), plain function, or class (instantiation).
func Call(callee object.Value, args []object.Value, kwargs map[string]object.Value, ctx *Ctx) (object.Value, error) {
	switch c := callee.(type) {
	case *object.Native:
		return c.Fn(args, kwargs)
	case *object.Function:
		return callFunction(c, nil, args, kwargs, ctx)
	case *object.BoundMethod:
		switch impl := c.Impl.(type) {
		case *object.Function:
			return callFunction(impl, c.Receiver, args, kwargs, ctx)
		case *object.Native:
			return impl.Fn(args, kwargs)
		default:
			return nil, object.NewTypeError("bound method has no callable implementation")
		}
	case *object.Class:
		return instantiate(c, args, kwargs, ctx)
	default:
		return nil, object.NewTypeError(fmt.Sprintf("'%s' object is not callable", object.TypeName(callee)))
	}
}

// callFunction implements argument binding: self (when present) occupies
// parameter slot 0, declared parameters consume positionals left to right,
// then keywords, then defaults (evaluated in the closure environment at
// call time), remaining positionals flow into *args, and unmatched
// keywords into **kwargs.
func callFunction(fn *object.Function, self object.Value, args []object.Value, kwargs map[string]object.Value, ctx *Ctx) (object.Value, error) {
	callEnv := object.NewFunctionEnvironment(fn.Closure)
	if fn.OwnerClass != nil {
		callEnv.SetMethodClass(fn.OwnerClass)
	}
	if err := bindParams(fn.Params, self, args, kwargs, fn.Closure, callEnv, ctx); err != nil {
		return nil, err
	}
	if fn.Body == nil {
		return evalExpr(fn.Expr, callEnv, ctx)
	}
	sig, err := evalBlock(fn.Body, callEnv, ctx)
	if err != nil {
		return nil, err
	}
	if sig.kind == sigReturn {
		return sig.value, nil
	}
	return object.None, nil
}

func bindParams(params *ast.Params, self object.Value, args []object.Value, kwargs map[string]object.Value, closure *object.Environment, callEnv *object.Environment, ctx *Ctx) error {
	effArgs := args
	if self != nil {
		effArgs = make([]object.Value, 0, len(args)+1)
		effArgs = append(effArgs, self)
		effArgs = append(effArgs, args...)
	}

	pos := 0
	usedKw := map[string]bool{}

	for _, name := range params.Required {
		if pos < len(effArgs) {
			callEnv.Define(name, effArgs[pos])
			pos++
			continue
		}
		if v, ok := kwargs[name]; ok {
			callEnv.Define(name, v)
			usedKw[name] = true
			continue
		}
		return object.NewTypeError(fmt.Sprintf("missing required argument: '%s'", name))
	}

	for _, opt := range params.Optional {
		if pos < len(effArgs) {
			callEnv.Define(opt.Name, effArgs[pos])
			pos++
			continue
		}
		if v, ok := kwargs[opt.Name]; ok {
			callEnv.Define(opt.Name, v)
			usedKw[opt.Name] = true
			continue
		}
		def, err := evalExpr(opt.Default, closure, ctx)
		if err != nil {
			return err
		}
		callEnv.Define(opt.Name, def)
	}

	if params.VarArgs != "" {
		rest := append([]object.Value{}, effArgs[pos:]...)
		callEnv.Define(params.VarArgs, object.NewTuple(rest))
		pos = len(effArgs)
	} else if pos < len(effArgs) {
		return object.NewTypeError("too many positional arguments")
	}

	if params.KwArgs != "" {
		d := object.NewDict()
		for k, v := range kwargs {
			if !usedKw[k] {
				_ = d.Set(object.Str(k), v)
			}
		}
		callEnv.Define(params.KwArgs, d)
	} else {
		for k := range kwargs {
			if !usedKw[k] {
				return object.NewTypeError(fmt.Sprintf("unexpected keyword argument '%s'", k))
			}
		}
	}
	return nil
}

func instantiate(cls *object.Class, args []object.Value, kwargs map[string]object.Value, ctx *Ctx) (object.Value, error) {
	inst := object.NewInstance(cls)
	if initFn, _ := cls.FindMethod("__init__"); initFn != nil {
		if _, err := callFunction(initFn, inst, args, kwargs, ctx); err != nil {
			return nil, err
		}
	} else if len(args) > 0 || len(kwargs) > 0 {
		return nil, object.NewTypeError(fmt.Sprintf("%s() takes no arguments", cls.Name))
	}
	return inst, nil
}

func evalClassDef(s *ast.ClassDef, env *object.Environment, ctx *Ctx) (*signal, error) {
	var super *object.Class
	if s.Superclass != "" {
		v, ok := env.Get(s.Superclass)
		if !ok {
			return normal, object.NewNameError("name '" + s.Superclass + "' is not defined")
		}
		sc, ok := v.(*object.Class)
		if !ok {
			return normal, object.NewTypeError(fmt.Sprintf("superclass must be a class, got '%s'", object.TypeName(v)))
		}
		super = sc
	}

	cls := &object.Class{Name: s.Name, Super: super, Methods: map[string]*object.Function{}}

	// A class body gets a transient environment; methods capture it so
	// super() resolves statically to cls.Super regardless of any later
	// rebinding of the class name in an outer scope.
	classEnv := object.NewEnvironment(env)
	classEnv.Define(s.Name, cls)

	for _, m := range s.Methods {
		cls.Methods[m.Name] = &object.Function{
			Name:       m.Name,
			Params:     m.Params,
			Body:       m.Body,
			Closure:    classEnv,
			OwnerClass: cls,
		}
	}

	env.Define(s.Name, cls)
	return normal, nil
}

func evalSuperLookup(e *ast.SuperLookup, env *object.Environment, ctx *Ctx) (object.Value, error) {
	self, ok := env.Get("self")
	if !ok {
		return nil, object.NewNameError("super() used outside of a method")
	}
	cls := env.ClassContext()
	if cls == nil || cls.Super == nil {
		return nil, object.NewAttributeError(fmt.Sprintf("'super' object has no attribute '%s'", e.Method))
	}
	m, _ := cls.Super.FindMethod(e.Method)
	if m == nil {
		return nil, object.NewAttributeError(fmt.Sprintf("'super' object has no attribute '%s'", e.Method))
	}
	return &object.BoundMethod{Receiver: self, Impl: m, Name: e.Method}, nil
}

// evalComprehension evaluates list/set/dict comprehensions: each `for`
// clause opens a nested scope shadowing the outer one, and the
// comprehension's own iteration variables never escape it.
func evalComprehension(e *ast.Comprehension, env *object.Environment, ctx *Ctx) (object.Value, error) {
	switch e.Kind {
	case ast.ListComp:
		var out []object.Value
		err := runClauses(e.Clauses, 0, env, ctx, func(scope *object.Environment) error {
			v, err := evalExpr(e.Element, scope, ctx)
			if err != nil {
				return err
			}
			out = append(out, v)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return object.NewList(out), nil
	case ast.SetComp:
		s := object.NewSet()
		err := runClauses(e.Clauses, 0, env, ctx, func(scope *object.Environment) error {
			v, err := evalExpr(e.Element, scope, ctx)
			if err != nil {
				return err
			}
			_, err = s.Add(v)
			return err
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case ast.DictComp:
		d := object.NewDict()
		err := runClauses(e.Clauses, 0, env, ctx, func(scope *object.Environment) error {
			k, err := evalExpr(e.Element, scope, ctx)
			if err != nil {
				return err
			}
			v, err := evalExpr(e.Value, scope, ctx)
			if err != nil {
				return err
			}
			return d.Set(k, v)
		})
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, object.NewTypeError("unsupported comprehension")
	}
}

func runClauses(clauses []ast.ForClause, idx int, env *object.Environment, ctx *Ctx, emit func(*object.Environment) error) error {
	if idx == len(clauses) {
		return emit(env)
	}
	clause := clauses[idx]
	iterVal, err := evalExpr(clause.Iter, env, ctx)
	if err != nil {
		return err
	}
	items, err := Iterate(iterVal)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := ctx.checkStop(); err != nil {
			return err
		}
		scope := object.NewEnvironment(env)
		if err := bindForTargets(clause.Targets, item, scope); err != nil {
			return err
		}
		keep := true
		for _, cond := range clause.Ifs {
			v, err := evalExpr(cond, scope, ctx)
			if err != nil {
				return err
			}
			if !object.Truthy(v) {
				keep = false
				break
			}
		}
		if !keep {
			continue
		}
		if err := runClauses(clauses, idx+1, scope, ctx, emit); err != nil {
			return err
		}
	}
	return nil
}
