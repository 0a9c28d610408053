// Package runtime implements the tree-walking evaluator for lox-lang.
//
// The interpreter executes a resolved AST directly. Control flow for
// return statements travels as an explicit signal in statement results,
// not as a panic, so every exit path is an ordinary Go return.
package runtime

import (
	"fmt"
	"io"

	"lox-lang/internal/ast"
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// RuntimeError is an error raised during evaluation, carrying the source
// span of the expression that failed.
type RuntimeError struct {
	Message string
	Span    span.Span
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at %s: %s", e.Span, e.Message)
}

func runtimeErr(s span.Span, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Span: s}
}

// execSignal tells a statement's caller how execution left the statement.
type execSignal int

const (
	sigNone execSignal = iota
	sigReturn
)

// execResult carries the signal and, for sigReturn, the returned value.
type execResult struct {
	signal execSignal
	value  Value
}

var resultNone = execResult{signal: sigNone}

// Interpreter evaluates programs. It owns the global environment, so one
// interpreter can run many programs in sequence and state persists across
// them, which is what the REPL relies on.
type Interpreter struct {
	globals *Environment
	out     io.Writer
}

// New creates an interpreter writing program output to out, with the
// builtin functions installed in the global environment.
func New(out io.Writer) *Interpreter {
	i := &Interpreter{globals: NewEnvironment(), out: out}
	registerBuiltins(i.globals)
	return i
}

// Run executes a resolved program. It stops at the first runtime error.
func (i *Interpreter) Run(program *ast.Program) error {
	for _, stmt := range program.Body {
		if _, err := i.execStmt(stmt, i.globals); err != nil {
			return err
		}
	}
	return nil
}

// EvalExpr evaluates a single expression against the global environment.
// The REPL uses it to echo expression results.
func (i *Interpreter) EvalExpr(expr ast.Expr) (Value, error) {
	return i.eval(expr, i.globals)
}

// ============================================================
// Statements
// ============================================================

func (i *Interpreter) execStmt(stmt ast.Stmt, env *Environment) (execResult, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		if _, err := i.eval(s.Expr, env); err != nil {
			return resultNone, err
		}
		return resultNone, nil

	case *ast.PrintStmt:
		v, err := i.eval(s.Expr, env)
		if err != nil {
			return resultNone, err
		}
		fmt.Fprintln(i.out, v.String())
		return resultNone, nil

	case *ast.VarDeclStmt:
		var value Value = Nil
		if s.Init != nil {
			v, err := i.eval(s.Init, env)
			if err != nil {
				return resultNone, err
			}
			value = v
		}
		env.Define(s.Name.Name, value)
		return resultNone, nil

	case *ast.BlockStmt:
		return i.execBlock(s.Stmts, NewEnclosed(env))

	case *ast.IfStmt:
		cond, err := i.eval(s.Condition, env)
		if err != nil {
			return resultNone, err
		}
		if Truthy(cond) {
			return i.execStmt(s.Then, env)
		}
		if s.Else != nil {
			return i.execStmt(s.Else, env)
		}
		return resultNone, nil

	case *ast.WhileStmt:
		for {
			cond, err := i.eval(s.Condition, env)
			if err != nil {
				return resultNone, err
			}
			if !Truthy(cond) {
				return resultNone, nil
			}
			res, err := i.execStmt(s.Body, env)
			if err != nil {
				return resultNone, err
			}
			if res.signal == sigReturn {
				return res, nil
			}
		}

	case *ast.ReturnStmt:
		var value Value = Nil
		if s.Value != nil {
			v, err := i.eval(s.Value, env)
			if err != nil {
				return resultNone, err
			}
			value = v
		}
		return execResult{signal: sigReturn, value: value}, nil

	case *ast.FunDecl:
		fn := &FuncVal{
			Name:    s.Name.Name,
			Params:  s.Params,
			Body:    s.Body,
			Closure: env,
		}
		env.Define(s.Name.Name, fn)
		return resultNone, nil

	case *ast.ClassDecl:
		return resultNone, i.execClassDecl(s, env)

	default:
		return resultNone, runtimeErr(stmt.GetSpan(), "unsupported statement")
	}
}

// execBlock runs statements in env, propagating a return signal outward.
func (i *Interpreter) execBlock(stmts []ast.Stmt, env *Environment) (execResult, error) {
	for _, stmt := range stmts {
		res, err := i.execStmt(stmt, env)
		if err != nil {
			return resultNone, err
		}
		if res.signal == sigReturn {
			return res, nil
		}
	}
	return resultNone, nil
}

func (i *Interpreter) execClassDecl(decl *ast.ClassDecl, env *Environment) error {
	var super *ClassVal
	methodEnv := env

	if decl.SuperClass != nil {
		superVal, err := i.eval(decl.SuperClass, env)
		if err != nil {
			return err
		}
		class, ok := superVal.(*ClassVal)
		if !ok {
			return runtimeErr(decl.SuperClass.GetSpan(), "superclass must be a class, got %s", superVal.TypeName())
		}
		super = class

		// Methods of a subclass close over a frame holding 'super', so
		// super dispatch is fixed at declaration time.
		methodEnv = NewEnclosed(env)
		methodEnv.Define("super", super)
	}

	methods := make(map[string]*FuncVal, len(decl.Methods))
	for _, m := range decl.Methods {
		methods[m.Name.Name] = &FuncVal{
			Name:    m.Name.Name,
			Params:  m.Params,
			Body:    m.Body,
			Closure: methodEnv,
			IsInit:  m.Name.Name == "init",
		}
	}

	env.Define(decl.Name.Name, &ClassVal{
		Name:    decl.Name.Name,
		Super:   super,
		Methods: methods,
	})
	return nil
}

// ============================================================
// Expressions
// ============================================================

func (i *Interpreter) eval(expr ast.Expr, env *Environment) (Value, error) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return literalValue(e), nil

	case *ast.GroupingExpr:
		return i.eval(e.Expr, env)

	case *ast.VariableExpr:
		return i.lookupVariable(e.Name, e.Depth, e.GetSpan(), env)

	case *ast.AssignExpr:
		value, err := i.eval(e.Value, env)
		if err != nil {
			return nil, err
		}
		if e.Depth == ast.GlobalDepth {
			if !i.globals.Assign(e.Name.Name, value) {
				return nil, runtimeErr(e.Name.Span, "undefined variable '%s'", e.Name.Name)
			}
		} else if !env.AssignAt(e.Depth, e.Name.Name, value) {
			return nil, runtimeErr(e.Name.Span, "undefined variable '%s'", e.Name.Name)
		}
		return value, nil

	case *ast.SequenceExpr:
		var last Value = Nil
		for _, inner := range e.Exprs {
			v, err := i.eval(inner, env)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil

	case *ast.LogicalExpr:
		return i.evalLogical(e, env)

	case *ast.BinaryExpr:
		return i.evalBinary(e, env)

	case *ast.UnaryExpr:
		return i.evalUnary(e, env)

	case *ast.CallExpr:
		return i.evalCall(e, env)

	case *ast.GetExpr:
		object, err := i.eval(e.Object, env)
		if err != nil {
			return nil, err
		}
		instance, ok := object.(*InstanceVal)
		if !ok {
			return nil, runtimeErr(e.Name.Span, "only instances have properties, got %s", object.TypeName())
		}
		if v, ok := instance.Fields[e.Name.Name]; ok {
			return v, nil
		}
		if method := instance.Class.FindMethod(e.Name.Name); method != nil {
			return method.Bind(instance), nil
		}
		return nil, runtimeErr(e.Name.Span, "undefined property '%s'", e.Name.Name)

	case *ast.SetExpr:
		object, err := i.eval(e.Object, env)
		if err != nil {
			return nil, err
		}
		instance, ok := object.(*InstanceVal)
		if !ok {
			return nil, runtimeErr(e.Name.Span, "only instances have fields, got %s", object.TypeName())
		}
		value, err := i.eval(e.Value, env)
		if err != nil {
			return nil, err
		}
		instance.Fields[e.Name.Name] = value
		return value, nil

	case *ast.LambdaExpr:
		return &FuncVal{
			Params:  e.Params,
			Body:    e.Body,
			Closure: env,
		}, nil

	case *ast.ThisExpr:
		v, ok := env.GetAt(e.Depth, "this")
		if !ok {
			return nil, runtimeErr(e.GetSpan(), "'this' is not bound here")
		}
		return v, nil

	case *ast.SuperExpr:
		return i.evalSuper(e, env)

	default:
		return nil, runtimeErr(expr.GetSpan(), "unsupported expression")
	}
}

func literalValue(e *ast.LiteralExpr) Value {
	switch v := e.Value.(type) {
	case float64:
		return NumberVal(v)
	case string:
		return StringVal(v)
	case bool:
		return BoolVal(v)
	default:
		return Nil
	}
}

func (i *Interpreter) lookupVariable(name string, depth int, s span.Span, env *Environment) (Value, error) {
	if depth == ast.GlobalDepth {
		if v, ok := i.globals.Get(name); ok {
			return v, nil
		}
		return nil, runtimeErr(s, "undefined variable '%s'", name)
	}
	if v, ok := env.GetAt(depth, name); ok {
		return v, nil
	}
	return nil, runtimeErr(s, "undefined variable '%s'", name)
}

// evalLogical short-circuits and yields an operand value, not a coerced
// boolean: `nil or "x"` is "x".
func (i *Interpreter) evalLogical(e *ast.LogicalExpr, env *Environment) (Value, error) {
	left, err := i.eval(e.Left, env)
	if err != nil {
		return nil, err
	}
	if e.Op == token.KW_OR {
		if Truthy(left) {
			return left, nil
		}
	} else if !Truthy(left) {
		return left, nil
	}
	return i.eval(e.Right, env)
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr, env *Environment) (Value, error) {
	left, err := i.eval(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.eval(e.Right, env)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.EQ:
		return BoolVal(Equals(left, right)), nil
	case token.NEQ:
		return BoolVal(!Equals(left, right)), nil
	}

	if e.Op == token.PLUS {
		if ln, ok := left.(NumberVal); ok {
			if rn, ok := right.(NumberVal); ok {
				return ln + rn, nil
			}
		}
		if ls, ok := left.(StringVal); ok {
			if rs, ok := right.(StringVal); ok {
				return ls + rs, nil
			}
		}
		return nil, runtimeErr(e.OpSpan, "operands of '+' must be two numbers or two strings, got %s and %s",
			left.TypeName(), right.TypeName())
	}

	ln, lok := left.(NumberVal)
	rn, rok := right.(NumberVal)
	if !lok || !rok {
		return nil, runtimeErr(e.OpSpan, "operands of '%s' must be numbers, got %s and %s",
			e.Op, left.TypeName(), right.TypeName())
	}

	switch e.Op {
	case token.MINUS:
		return ln - rn, nil
	case token.STAR:
		return ln * rn, nil
	case token.SLASH:
		return ln / rn, nil
	case token.LT:
		return BoolVal(ln < rn), nil
	case token.LTE:
		return BoolVal(ln <= rn), nil
	case token.GT:
		return BoolVal(ln > rn), nil
	case token.GTE:
		return BoolVal(ln >= rn), nil
	default:
		return nil, runtimeErr(e.OpSpan, "unsupported operator '%s'", e.Op)
	}
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr, env *Environment) (Value, error) {
	operand, err := i.eval(e.Operand, env)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.BANG:
		return BoolVal(!Truthy(operand)), nil
	case token.MINUS:
		n, ok := operand.(NumberVal)
		if !ok {
			return nil, runtimeErr(e.GetSpan(), "operand of '-' must be a number, got %s", operand.TypeName())
		}
		return -n, nil
	default:
		return nil, runtimeErr(e.GetSpan(), "unsupported operator '%s'", e.Op)
	}
}

func (i *Interpreter) evalCall(e *ast.CallExpr, env *Environment) (Value, error) {
	callee, err := i.eval(e.Callee, env)
	if err != nil {
		return nil, err
	}

	args := make([]Value, 0, len(e.Args))
	for _, argExpr := range e.Args {
		arg, err := i.eval(argExpr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	return i.callValue(callee, args, e.GetSpan())
}

func (i *Interpreter) callValue(callee Value, args []Value, callSpan span.Span) (Value, error) {
	switch fn := callee.(type) {
	case *FuncVal:
		if err := checkArity(fn.Arity(), len(args), callSpan); err != nil {
			return nil, err
		}
		return i.callFunction(fn, args, nil)

	case *BoundMethodVal:
		if err := checkArity(fn.Arity(), len(args), callSpan); err != nil {
			return nil, err
		}
		return i.callFunction(fn.Method, args, fn.Receiver)

	case *NativeVal:
		if err := checkArity(fn.Arity, len(args), callSpan); err != nil {
			return nil, err
		}
		result, err := fn.Fn(args)
		if err != nil {
			return nil, runtimeErr(callSpan, "%s: %s", fn.Name, err)
		}
		return result, nil

	case *ClassVal:
		if err := checkArity(fn.Arity(), len(args), callSpan); err != nil {
			return nil, err
		}
		return i.instantiate(fn, args)

	default:
		return nil, runtimeErr(callSpan, "can only call functions and classes, got %s", callee.TypeName())
	}
}

func checkArity(want, got int, callSpan span.Span) error {
	if want != got {
		return runtimeErr(callSpan, "expected %d arguments but got %d", want, got)
	}
	return nil
}

// callFunction runs a function body. For methods, receiver is non-nil and
// an extra frame binding 'this' sits between the closure and the
// parameter frame, matching the scopes the resolver counted.
func (i *Interpreter) callFunction(fn *FuncVal, args []Value, receiver *InstanceVal) (Value, error) {
	base := fn.Closure
	if receiver != nil {
		base = NewEnclosed(fn.Closure)
		base.Define("this", receiver)
	}

	env := NewEnclosed(base)
	for idx, param := range fn.Params {
		env.Define(param.Name, args[idx])
	}

	res, err := i.execBlock(fn.Body.Stmts, env)
	if err != nil {
		return nil, err
	}

	// An initializer always evaluates to the instance, even after a bare
	// return.
	if fn.IsInit {
		return receiver, nil
	}
	if res.signal == sigReturn {
		return res.value, nil
	}
	return Nil, nil
}

// instantiate constructs an instance of class, running the initializer
// found on the class or inherited from a superclass. The call always
// yields the new instance.
func (i *Interpreter) instantiate(class *ClassVal, args []Value) (Value, error) {
	instance := &InstanceVal{Class: class, Fields: make(map[string]Value)}
	if init := class.FindMethod("init"); init != nil {
		if _, err := i.callFunction(init, args, instance); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// evalSuper resolves a super method reference. The superclass sits at the
// recorded depth and the receiver one frame closer, in the 'this' frame.
func (i *Interpreter) evalSuper(e *ast.SuperExpr, env *Environment) (Value, error) {
	superVal, ok := env.GetAt(e.Depth, "super")
	if !ok {
		return nil, runtimeErr(e.GetSpan(), "'super' is not bound here")
	}
	super := superVal.(*ClassVal)

	thisVal, ok := env.GetAt(e.Depth-1, "this")
	if !ok {
		return nil, runtimeErr(e.GetSpan(), "'this' is not bound here")
	}
	receiver := thisVal.(*InstanceVal)

	method := super.FindMethod(e.Method.Name)
	if method == nil {
		return nil, runtimeErr(e.Method.Span, "undefined property '%s'", e.Method.Name)
	}
	return method.Bind(receiver), nil
}
