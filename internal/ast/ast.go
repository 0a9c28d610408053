// Package ast defines the abstract syntax tree for lox-lang.
//
// The tree is built bottom-up by the parser and never mutated afterwards,
// with one exception: the resolver attaches lexical depth annotations to
// Variable, Assign, This and Super nodes (see Depth fields).
package ast

import (
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// GlobalDepth marks a reference the resolver left to a runtime lookup in
// the global scope.
const GlobalDepth = -1

// Ident is a declared or referenced name with its source location.
type Ident struct {
	Name string    `json:"name"`
	Span span.Span `json:"span"`
}

// ============================================================
// Program (top-level AST root)
// ============================================================

// Program represents an entire source file: a sequence of declarations.
type Program struct {
	NodeBase
	Body []Stmt
}

// ============================================================
// Expressions
// ============================================================

// LiteralExpr represents a literal: number, string, true, false, nil.
// Value is float64, string, bool, or nil.
type LiteralExpr struct {
	ExprBase
	Value interface{}
}

// VariableExpr represents an identifier reference.
type VariableExpr struct {
	ExprBase
	Name  string
	Depth int // scope hops recorded by the resolver, or GlobalDepth
}

// AssignExpr represents an assignment to a variable: name = value.
type AssignExpr struct {
	ExprBase
	Name  Ident
	Value Expr
	Depth int
}

// SequenceExpr represents a comma expression: a, b, c. Operands are
// evaluated left to right; the value is the last operand's value.
type SequenceExpr struct {
	ExprBase
	Exprs []Expr
}

// LogicalExpr represents a short-circuiting operation: a and b, a or b.
type LogicalExpr struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// BinaryExpr represents a binary operation: a + b, x == y.
type BinaryExpr struct {
	ExprBase
	Op     token.Kind
	OpSpan span.Span // span of the operator itself, for error reporting
	Left   Expr
	Right  Expr
}

// UnaryExpr represents a unary operation: !x, -x.
type UnaryExpr struct {
	ExprBase
	Op      token.Kind
	Operand Expr
}

// CallExpr represents an invocation: callee(args). Chained calls such as
// f(1)(2) nest CallExprs with the inner call as the callee.
type CallExpr struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

// GetExpr represents property access: object.name.
type GetExpr struct {
	ExprBase
	Object Expr
	Name   Ident
}

// SetExpr represents property assignment: object.name = value.
type SetExpr struct {
	ExprBase
	Object Expr
	Name   Ident
	Value  Expr
}

// LambdaExpr represents an anonymous function literal: fun (params) { body }.
type LambdaExpr struct {
	ExprBase
	Params []Ident
	Body   *BlockStmt
}

// ThisExpr represents the 'this' keyword.
type ThisExpr struct {
	ExprBase
	Depth int
}

// SuperExpr represents a super method reference: super.name.
type SuperExpr struct {
	ExprBase
	Method Ident
	Depth  int
}

// GroupingExpr represents a parenthesized expression.
type GroupingExpr struct {
	ExprBase
	Expr Expr
}

// ============================================================
// Statements
// ============================================================

// ExprStmt wraps an expression used as a statement.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// PrintStmt represents a print statement: print expr;
type PrintStmt struct {
	StmtBase
	Expr Expr
}

// VarDeclStmt represents a variable declaration: var x = expr;
type VarDeclStmt struct {
	StmtBase
	Name Ident
	Init Expr // may be nil if no initializer
}

// BlockStmt represents a block of statements: { ... }.
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

// IfStmt represents a conditional. Branches are single statements; blocks
// are just BlockStmt branches.
type IfStmt struct {
	StmtBase
	Condition Expr
	Then      Stmt
	Else      Stmt // may be nil
}

// WhileStmt represents a while loop. 'for' loops are desugared into this
// node during parsing, so the later pipeline stages never see a for loop.
type WhileStmt struct {
	StmtBase
	Condition Expr
	Body      Stmt
}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	StmtBase
	Keyword span.Span // span of the `return` keyword
	Value   Expr      // may be nil
}

// FunDecl represents a named function declaration or a class method.
type FunDecl struct {
	StmtBase
	Name   Ident
	Params []Ident
	Body   *BlockStmt
}

// ClassDecl represents a class declaration with an optional superclass.
type ClassDecl struct {
	StmtBase
	Name       Ident
	SuperClass *VariableExpr // may be nil if no superclass
	Methods    []*FunDecl
}
