// Package resolver performs static analysis on a parsed program.
//
// It walks the AST with a stack of lexical scopes, annotating every
// variable reference, assignment, this and super node with the number of
// scope hops between the use and the declaration. References that fall
// through every lexical scope stay at ast.GlobalDepth and are looked up in
// the global environment at run time.
//
// The walk also rejects programs that are grammatically valid but
// statically wrong: reading a variable inside its own initializer,
// redeclaring a name in the same local scope, return outside a function,
// returning a value from an initializer, this or super outside a class,
// super in a class without a superclass, and a class inheriting from
// itself.
package resolver

import (
	"fmt"
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/span"
)

// bindingState tracks a name through its declaration lifecycle within a
// scope. A name is declared as soon as its statement begins and defined
// once its initializer has run, so the window between the two catches
// `var a = a;`.
type bindingState int

const (
	stateDeclared bindingState = iota
	stateDefined
)

// funcKind classifies the function body being resolved, for return checks.
type funcKind int

const (
	funcNone funcKind = iota
	funcFunction
	funcMethod
	funcInitializer
	funcLambda
)

// classKind classifies the enclosing class, for this/super checks.
type classKind int

const (
	classNone classKind = iota
	classPlain
	classSubclass
)

// Resolver walks a program and annotates variable references with lexical
// depths.
type Resolver struct {
	scopes    []map[string]bindingState
	currFunc  funcKind
	currClass classKind
	diags     []diag.Diagnostic
}

// New creates a resolver. The global scope is not modeled as a lexical
// scope; top-level names resolve to ast.GlobalDepth.
func New() *Resolver {
	return &Resolver{currFunc: funcNone, currClass: classNone}
}

// Resolve analyzes the program in place and returns any static errors.
func (r *Resolver) Resolve(program *ast.Program) []diag.Diagnostic {
	for _, stmt := range program.Body {
		r.resolveStmt(stmt)
	}
	return r.diags
}

// ---- scope helpers ----

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bindingState))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare records a name in the innermost scope without marking it usable
// yet. At the top level redeclaration is allowed, matching the REPL's
// needs.
func (r *Resolver) declare(name ast.Ident) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, exists := scope[name.Name]; exists {
		r.error("E3001", name.Span, fmt.Sprintf("variable '%s' is already declared in this scope", name.Name))
	}
	scope[name.Name] = stateDeclared
}

func (r *Resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = stateDefined
}

// resolveDepth walks the scope stack innermost-out looking for name and
// returns the hop count, or ast.GlobalDepth when no lexical scope holds it.
func (r *Resolver) resolveDepth(name string) int {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			return len(r.scopes) - 1 - i
		}
	}
	return ast.GlobalDepth
}

func (r *Resolver) error(code string, s span.Span, msg string) {
	r.diags = append(r.diags, diag.Errorf(code, s, "%s", msg))
}

// ---- statements ----

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		r.resolveExpr(s.Expr)

	case *ast.PrintStmt:
		r.resolveExpr(s.Expr)

	case *ast.VarDeclStmt:
		r.declare(s.Name)
		if s.Init != nil {
			r.resolveExpr(s.Init)
		}
		r.define(s.Name.Name)

	case *ast.BlockStmt:
		r.beginScope()
		for _, inner := range s.Stmts {
			r.resolveStmt(inner)
		}
		r.endScope()

	case *ast.IfStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}

	case *ast.WhileStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)

	case *ast.ReturnStmt:
		if r.currFunc == funcNone {
			r.error("E3002", s.Keyword, "cannot return from top-level code")
		}
		if s.Value != nil {
			if r.currFunc == funcInitializer {
				r.error("E3003", s.Keyword, "cannot return a value from an initializer")
			}
			r.resolveExpr(s.Value)
		}

	case *ast.FunDecl:
		// The function name is defined before the body resolves, so the
		// body can recurse.
		r.declare(s.Name)
		r.define(s.Name.Name)
		r.resolveFunction(s.Params, s.Body, funcFunction)

	case *ast.ClassDecl:
		r.resolveClass(s)
	}
}

func (r *Resolver) resolveClass(decl *ast.ClassDecl) {
	enclosing := r.currClass
	r.currClass = classPlain
	defer func() { r.currClass = enclosing }()

	r.declare(decl.Name)
	r.define(decl.Name.Name)

	if decl.SuperClass != nil {
		if decl.SuperClass.Name == decl.Name.Name {
			r.error("E3004", decl.SuperClass.GetSpan(), fmt.Sprintf("class '%s' cannot inherit from itself", decl.Name.Name))
		}
		r.currClass = classSubclass
		r.resolveExpr(decl.SuperClass)

		// Methods of a subclass close over a scope holding 'super'.
		r.beginScope()
		r.define("super")
		defer r.endScope()
	}

	r.beginScope()
	r.define("this")
	for _, method := range decl.Methods {
		kind := funcMethod
		if method.Name.Name == "init" {
			kind = funcInitializer
		}
		r.resolveFunction(method.Params, method.Body, kind)
	}
	r.endScope()
}

// resolveFunction resolves a function body in a fresh scope holding the
// parameters.
func (r *Resolver) resolveFunction(params []ast.Ident, body *ast.BlockStmt, kind funcKind) {
	enclosing := r.currFunc
	r.currFunc = kind
	defer func() { r.currFunc = enclosing }()

	r.beginScope()
	for _, param := range params {
		r.declare(param)
		r.define(param.Name)
	}
	for _, stmt := range body.Stmts {
		r.resolveStmt(stmt)
	}
	r.endScope()
}

// ---- expressions ----

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		// nothing to resolve

	case *ast.VariableExpr:
		if len(r.scopes) > 0 {
			scope := r.scopes[len(r.scopes)-1]
			if state, ok := scope[e.Name]; ok && state == stateDeclared {
				r.error("E3005", e.GetSpan(), fmt.Sprintf("cannot read variable '%s' in its own initializer", e.Name))
			}
		}
		e.Depth = r.resolveDepth(e.Name)

	case *ast.AssignExpr:
		r.resolveExpr(e.Value)
		e.Depth = r.resolveDepth(e.Name.Name)

	case *ast.SequenceExpr:
		for _, inner := range e.Exprs {
			r.resolveExpr(inner)
		}

	case *ast.LogicalExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.UnaryExpr:
		r.resolveExpr(e.Operand)

	case *ast.CallExpr:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}

	case *ast.GetExpr:
		// Property names are looked up dynamically; only the object
		// expression resolves statically.
		r.resolveExpr(e.Object)

	case *ast.SetExpr:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)

	case *ast.LambdaExpr:
		r.resolveFunction(e.Params, e.Body, funcLambda)

	case *ast.ThisExpr:
		if r.currClass == classNone {
			r.error("E3006", e.GetSpan(), "cannot use 'this' outside of a class")
			return
		}
		e.Depth = r.resolveDepth("this")

	case *ast.SuperExpr:
		switch r.currClass {
		case classNone:
			r.error("E3007", e.GetSpan(), "cannot use 'super' outside of a class")
			return
		case classPlain:
			r.error("E3008", e.GetSpan(), "cannot use 'super' in a class with no superclass")
			return
		}
		e.Depth = r.resolveDepth("super")

	case *ast.GroupingExpr:
		r.resolveExpr(e.Expr)
	}
}
