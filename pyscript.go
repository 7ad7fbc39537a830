// Package pyscript is the embeddable interpreter's host-facing surface:
// a single Interpreter object offering evaluate, print/error callback
// registration, host-function registration, and cooperative stop.
// Everything downstream of this boundary (the lexer, parser, and
// tree-walking evaluator) lives under internal/ and is not part of the
// public contract.
package pyscript

import (
	"fmt"

	"golang.org/x/mod/semver"

	"github.com/aledsdavies/pyscript/internal/builtin"
	"github.com/aledsdavies/pyscript/internal/cache"
	"github.com/aledsdavies/pyscript/internal/eval"
	"github.com/aledsdavies/pyscript/internal/lexer"
	"github.com/aledsdavies/pyscript/internal/object"
	"github.com/aledsdavies/pyscript/internal/parser"
	"github.com/aledsdavies/pyscript/internal/schema"
	"github.com/aledsdavies/pyscript/internal/token"
)

// Version is the embeddable interpreter's own semver, used by
// CompatibleWith to answer a host's minimum-version check.
const Version = "v0.1.0"

// CompatibleWith reports whether this package's Version satisfies a host's
// minimum required version, per golang.org/x/mod/semver's precedence rules.
func CompatibleWith(hostMinVersion string) bool {
	if !semver.IsValid(hostMinVersion) {
		return false
	}
	return semver.Compare(Version, hostMinVersion) >= 0
}

// Outcome classifies how Evaluate concluded. A standalone CLI driver maps
// these to exit codes: 0 for OutcomeOK, 65 for OutcomeSyntaxError, 70 for
// OutcomeRuntimeError.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeSyntaxError
	OutcomeRuntimeError
)

// Value is the runtime value type returned by Evaluate and accepted by
// host-registered functions. It is a re-export of the internal tagged
// union so callers never need to import internal/object directly.
type Value = object.Value

// HostFunc is the signature a host callback registered via RegisterFunction
// must satisfy: ordered positional args, a keyword map, and the value or
// error (always constructible via the New*Error helpers below) to
// propagate back into the running script.
type HostFunc = object.NativeFn

// Interpreter is not reentrant: the host must serialize calls to a single
// instance. Two instances share no state.
type Interpreter struct {
	env     *object.Environment
	ctx     *eval.Ctx
	printCB func(string)
	errorCB func(string)
	cache   *cache.Cache
}

// Option configures an Interpreter at construction time.
type Option func(*Interpreter)

// WithCache opts the Interpreter into a lex-result cache: source text seen
// before by this cache skips re-lexing on a later Evaluate call. Caching
// never changes what a program prints or returns, only parse-time latency.
func WithCache(c *cache.Cache) Option {
	return func(i *Interpreter) { i.cache = c }
}

// New constructs an Interpreter with the fixed built-in catalog already
// registered in its outermost environment.
func New(opts ...Option) *Interpreter {
	interp := &Interpreter{
		env:     object.NewEnvironment(nil),
		ctx:     eval.NewCtx(),
		printCB: func(string) {},
		errorCB: func(string) {},
	}
	for _, opt := range opts {
		opt(interp)
	}
	builtin.Install(interp.env, func(s string) { interp.printCB(s) })
	return interp
}

// RegisterPrintCallback installs fn as the sink for print()'s already
// formatted output. The callback owns any buffering of partial lines.
func (i *Interpreter) RegisterPrintCallback(fn func(string)) { i.printCB = fn }

// RegisterErrorCallback installs fn as the sink for formatted diagnostics:
// a boxed report led by "[line L, col C] ... near 'lexeme'" for each syntax
// error, "[line L, col C] message" (with no lexeme) for a lexical error, or
// "TypeError: ..." (etc.) for an uncaught runtime exception.
func (i *Interpreter) RegisterErrorCallback(fn func(string)) { i.errorCB = fn }

// RegisterFunction exposes a host callable under name in the outermost
// environment, callable from scripts exactly like any built-in.
func (i *Interpreter) RegisterFunction(name string, fn HostFunc) {
	i.env.Define(name, &object.Native{Name: name, Fn: fn})
}

// RegisterFunctionWithSchema is RegisterFunction plus keyword-argument
// validation: before fn runs, its kwargs are converted to plain Go values
// (object.ToGo) and checked against schemaDoc (a JSON Schema, Draft
// 2020-12). A validation failure surfaces as a TypeError exception through
// the normal call-binding error path, without fn ever running.
func (i *Interpreter) RegisterFunctionWithSchema(name string, schemaDoc map[string]any, fn HostFunc) error {
	compiled, err := schema.Compile(schemaDoc)
	if err != nil {
		return fmt.Errorf("pyscript: register %q: %w", name, err)
	}
	wrapped := func(pos []object.Value, kw map[string]object.Value) (object.Value, error) {
		asGo := make(map[string]any, len(kw))
		for k, v := range kw {
			asGo[k] = object.ToGo(v)
		}
		if err := compiled.Validate(asGo); err != nil {
			return nil, object.NewTypeError(fmt.Sprintf("%s(): %v", name, err))
		}
		return fn(pos, kw)
	}
	i.env.Define(name, &object.Native{Name: name, Fn: wrapped})
	return nil
}

// Stop cooperatively terminates the current (or next) Evaluate call: the
// next statement-execution boundary aborts with a StopExecution exception.
func (i *Interpreter) Stop() { i.ctx.Stop() }

// Evaluate drives the full lexer -> parser -> evaluator pipeline over a
// single source unit. It returns the value of a bare trailing expression
// statement, if the program's last top-level statement was one, and an
// Outcome a standalone driver can map directly to an exit code. Side
// effects already emitted via the print callback before a failure are not
// rolled back.
func (i *Interpreter) Evaluate(source string) (Value, Outcome) {
	toks, err := i.tokenize(source)
	if err != nil {
		i.reportLexError(err)
		return nil, OutcomeSyntaxError
	}

	p := parser.New(source, toks)
	prog, errs := p.Parse()
	if len(errs) > 0 {
		for _, e := range errs {
			i.errorCB(e.Boxed)
		}
		return nil, OutcomeSyntaxError
	}

	val, rerr := eval.EvalProgram(prog, i.env, i.ctx)
	if rerr != nil {
		i.reportRuntimeError(rerr)
		return nil, OutcomeRuntimeError
	}
	return val, OutcomeOK
}

// tokenize lexes source directly, or serves/populates i.cache when one was
// supplied via WithCache.
func (i *Interpreter) tokenize(source string) ([]token.Token, error) {
	if i.cache == nil {
		return lexer.New(source).Tokenize()
	}
	if toks, ok := i.cache.Get(source); ok {
		return toks, nil
	}
	toks, err := lexer.New(source).Tokenize()
	if err != nil {
		return nil, err
	}
	_ = i.cache.Put(source, toks)
	return toks, nil
}

func (i *Interpreter) reportLexError(err error) {
	if le, ok := err.(*lexer.Error); ok {
		i.errorCB(fmt.Sprintf("[line %d, col %d] %s", le.Line, le.Column, le.Message))
		return
	}
	i.errorCB(err.Error())
}

func (i *Interpreter) reportRuntimeError(err error) {
	if exc, ok := err.(*object.Exception); ok {
		i.errorCB(exc.Str())
		return
	}
	i.errorCB(err.Error())
}
