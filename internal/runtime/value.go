package runtime

import (
	"fmt"
	"math"
	"strconv"

	"lox-lang/internal/ast"
)

// Value is the interface implemented by all runtime values.
type Value interface {
	// TypeName returns the value's type name for error messages and the
	// type() builtin.
	TypeName() string
	// String renders the value the way `print` shows it.
	String() string
}

// ============================================================
// Primitive values
// ============================================================

// NumberVal is a double-precision float, the only numeric type.
type NumberVal float64

func (v NumberVal) TypeName() string { return "number" }

// String trims the fractional part of integral values, so 3.0 prints as 3
// but 3.5 prints as 3.5.
func (v NumberVal) String() string {
	f := float64(v)
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// StringVal is an immutable string.
type StringVal string

func (v StringVal) TypeName() string { return "string" }
func (v StringVal) String() string   { return string(v) }

// BoolVal is true or false.
type BoolVal bool

func (v BoolVal) TypeName() string { return "bool" }
func (v BoolVal) String() string {
	if v {
		return "true"
	}
	return "false"
}

// NilVal is the single nil value.
type NilVal struct{}

func (NilVal) TypeName() string { return "nil" }
func (NilVal) String() string   { return "nil" }

// Nil is the shared nil value.
var Nil = NilVal{}

// ============================================================
// Callable values
// ============================================================

// FuncVal is a user-defined function: a declaration or a lambda paired
// with the environment it closed over.
type FuncVal struct {
	Name    string // empty for lambdas
	Params  []ast.Ident
	Body    *ast.BlockStmt
	Closure *Environment
	IsInit  bool // true for a class's init method
}

func (v *FuncVal) TypeName() string { return "function" }
func (v *FuncVal) String() string {
	if v.Name == "" {
		return "<fn>"
	}
	return fmt.Sprintf("<fn %s>", v.Name)
}

// Arity returns the exact number of arguments the function requires.
func (v *FuncVal) Arity() int { return len(v.Params) }

// Bind pairs a method with a receiver. The bound method's closure chain
// gains a frame holding 'this', outside the parameter frame.
func (v *FuncVal) Bind(receiver *InstanceVal) *BoundMethodVal {
	return &BoundMethodVal{Method: v, Receiver: receiver}
}

// BoundMethodVal is a method paired with the instance it was accessed on.
// Calling it makes 'this' refer to the receiver.
type BoundMethodVal struct {
	Method   *FuncVal
	Receiver *InstanceVal
}

func (v *BoundMethodVal) TypeName() string { return "function" }
func (v *BoundMethodVal) String() string   { return v.Method.String() }
func (v *BoundMethodVal) Arity() int       { return v.Method.Arity() }

// NativeVal is a host function exposed to programs. Arity is fixed and
// checked before Fn runs, like user functions.
type NativeVal struct {
	Name  string
	Arity int
	Fn    func(args []Value) (Value, error)
}

func (v *NativeVal) TypeName() string { return "function" }
func (v *NativeVal) String() string   { return fmt.Sprintf("<native fn %s>", v.Name) }

// ============================================================
// Classes and instances
// ============================================================

// ClassVal is a class: a method table with an optional superclass.
// Calling a class constructs an instance.
type ClassVal struct {
	Name    string
	Super   *ClassVal
	Methods map[string]*FuncVal
}

func (v *ClassVal) TypeName() string { return "class" }
func (v *ClassVal) String() string   { return fmt.Sprintf("<class %s>", v.Name) }

// Arity is the arity of the class's initializer, inherited or own; a
// class without one takes no arguments.
func (v *ClassVal) Arity() int {
	if init := v.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// FindMethod looks name up on this class and then up the superclass
// chain. Subclass methods shadow superclass methods of the same name.
func (v *ClassVal) FindMethod(name string) *FuncVal {
	for class := v; class != nil; class = class.Super {
		if m, ok := class.Methods[name]; ok {
			return m
		}
	}
	return nil
}

// InstanceVal is an object: a reference to its class plus a mutable field
// map. Fields come into existence on first set.
type InstanceVal struct {
	Class  *ClassVal
	Fields map[string]Value
}

func (v *InstanceVal) TypeName() string { return "instance" }
func (v *InstanceVal) String() string   { return fmt.Sprintf("<%s instance>", v.Class.Name) }

// ============================================================
// Shared semantics
// ============================================================

// Truthy reports whether a value counts as true in a condition. Only
// false and nil are falsy; every number and string, including 0 and "",
// is truthy.
func Truthy(v Value) bool {
	switch b := v.(type) {
	case NilVal:
		return false
	case BoolVal:
		return bool(b)
	default:
		return true
	}
}

// Equals implements == and !=. Values of different types are never equal;
// numbers, strings and bools compare by value; functions, classes and
// instances compare by identity.
func Equals(a, b Value) bool {
	switch av := a.(type) {
	case NilVal:
		_, ok := b.(NilVal)
		return ok
	case NumberVal:
		bv, ok := b.(NumberVal)
		return ok && av == bv
	case StringVal:
		bv, ok := b.(StringVal)
		return ok && av == bv
	case BoolVal:
		bv, ok := b.(BoolVal)
		return ok && av == bv
	default:
		return a == b
	}
}
