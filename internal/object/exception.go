package object

import "fmt"

// Exception is a first-class runtime value representing a raised error.
// Propagation follows the try/except/else/finally protocol in the
// evaluator; an uncaught Exception is reported to the host error callback.
//
// The taxonomy strings below (e.g. "TypeError: ...") are part of the
// user-observable contract and must be preserved verbatim, so every
// built-in exception is constructed through the New*Error helpers in this
// file rather than ad hoc.
type Exception struct {
	ClassName string
	Message   string
	Cause     error
	Class     *Class // non-nil when raised via a user-defined class
	Instance  *Instance
}

func (*Exception) Kind() Kind { return KindException }
func (e *Exception) Repr() string {
	return fmt.Sprintf("<%s: %s>", e.ClassName, e.Message)
}
func (e *Exception) Str() string { return e.ClassName + ": " + e.Message }

// Error satisfies the Go error interface so an Exception can also travel
// through ordinary Go error-returning code paths (e.g. host callback
// plumbing) without a wrapper type.
func (e *Exception) Error() string { return e.Str() }

// Unwrap exposes the wrapped cause, matching the Cause/Unwrap idiom the
// rest of the ambient error-handling stack uses.
func (e *Exception) Unwrap() error { return e.Cause }

func newExc(class, msg string) *Exception {
	return &Exception{ClassName: class, Message: msg}
}

func NewTypeError(msg string) *Exception         { return newExc("TypeError", msg) }
func NewValueError(msg string) *Exception        { return newExc("ValueError", msg) }
func NewKeyError(msg string) *Exception          { return newExc("KeyError", msg) }
func NewIndexError(msg string) *Exception        { return newExc("IndexError", msg) }
func NewAttributeError(msg string) *Exception    { return newExc("AttributeError", msg) }
func NewNameError(msg string) *Exception         { return newExc("NameError", msg) }
func NewZeroDivisionError(msg string) *Exception { return newExc("ZeroDivisionError", msg) }
func NewStopExecution() *Exception               { return newExc("StopExecution", "execution stopped by host") }

// IsClass reports whether an Exception was raised as (or subclasses) the
// named builtin/user class, used by except-clause matching. Every built-in
// error matches "Exception" except StopExecution, which must stay uncatchable
// so a host Stop() always wins.
func (e *Exception) IsClass(name string) bool {
	if e.ClassName == name {
		return true
	}
	if name == "Exception" && e.Class == nil && e.ClassName != "StopExecution" {
		return true
	}
	for c := e.Class; c != nil; c = c.Super {
		if c.Name == name {
			return true
		}
	}
	return false
}
