package object

// Environment is a lexical scope frame: a mapping from name to value, an
// optional enclosing frame, and the global/nonlocal declaration sets that
// govern where a write to a name actually lands.
type Environment struct {
	vars            map[string]Value
	enclosing       *Environment
	globals         map[string]bool
	nonlocals       map[string]bool
	isFunctionScope bool

	// methodClass is set on the call environment of a method invocation to
	// the class that defined it, so super() can resolve statically to the
	// immediate superclass rather than the receiver's runtime class.
	methodClass *Class
}

// SetMethodClass records the statically enclosing class for a method's call
// environment.
func (e *Environment) SetMethodClass(c *Class) { e.methodClass = c }

// ClassContext returns the nearest enclosing method's owner class, walking
// outward through closures, or nil if none is in scope.
func (e *Environment) ClassContext() *Class {
	for cur := e; cur != nil; cur = cur.enclosing {
		if cur.methodClass != nil {
			return cur.methodClass
		}
	}
	return nil
}

func NewEnvironment(enclosing *Environment) *Environment {
	return &Environment{vars: map[string]Value{}, enclosing: enclosing}
}

func NewFunctionEnvironment(enclosing *Environment) *Environment {
	e := NewEnvironment(enclosing)
	e.isFunctionScope = true
	return e
}

// outermost walks to the root environment, used for `global` writes.
func (e *Environment) outermost() *Environment {
	cur := e
	for cur.enclosing != nil {
		cur = cur.enclosing
	}
	return cur
}

// Get implements the read rule: walk from current to outermost until found.
func (e *Environment) Get(name string) (Value, bool) {
	for cur := e; cur != nil; cur = cur.enclosing {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Define binds name in the current scope unconditionally, used for
// function parameters, `except ... as` names, and `def`/`class` bindings.
// For-loop targets go through Assign.
func (e *Environment) Define(name string, v Value) {
	e.vars[name] = v
}

// DeclareGlobal records that name is declared `global` in this scope.
func (e *Environment) DeclareGlobal(name string) { e.ensureGlobals()[name] = true }

// DeclareNonlocal records that name is declared `nonlocal` in this scope.
func (e *Environment) DeclareNonlocal(name string) { e.ensureNonlocals()[name] = true }

func (e *Environment) ensureGlobals() map[string]bool {
	if e.globals == nil {
		e.globals = map[string]bool{}
	}
	return e.globals
}

func (e *Environment) ensureNonlocals() map[string]bool {
	if e.nonlocals == nil {
		e.nonlocals = map[string]bool{}
	}
	return e.nonlocals
}

// Assign implements the name-write rule:
//   - global-declared name → write to the outermost environment.
//   - nonlocal-declared name → write to the nearest enclosing function
//     scope that defines it; error if none, or if that scope also
//     declared it global.
//   - otherwise → write to the current scope.
func (e *Environment) Assign(name string, v Value) error {
	if e.globals[name] {
		e.outermost().vars[name] = v
		return nil
	}
	if e.nonlocals[name] {
		cur := e.enclosing
		for cur != nil {
			if cur.isFunctionScope {
				if cur.globals[name] {
					return NewNameError("no binding for nonlocal '" + name + "' found")
				}
				if _, ok := cur.vars[name]; ok {
					cur.vars[name] = v
					return nil
				}
			}
			cur = cur.enclosing
		}
		return NewNameError("no binding for nonlocal '" + name + "' found")
	}
	e.vars[name] = v
	return nil
}

// Names returns every name visible from this scope outward, used by the
// NameError "did you mean" suggestion subsystem.
func (e *Environment) Names() []string {
	seen := map[string]bool{}
	var out []string
	for cur := e; cur != nil; cur = cur.enclosing {
		for name := range cur.vars {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
