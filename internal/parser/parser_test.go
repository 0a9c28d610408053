package parser

import (
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/token"
	"reflect"
	"testing"
)

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	l := lexer.New(source, "test.lox")
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("unexpected lex diagnostics: %v", lexDiags)
	}
	p := New(tokens)
	program, diags := p.ParseProgram()
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	return program
}

func parseErrors(t *testing.T, source string) []diag.Diagnostic {
	t.Helper()
	l := lexer.New(source, "test.lox")
	tokens, _ := l.Tokenize()
	p := New(tokens)
	_, diags := p.ParseProgram()
	return diags
}

func TestParseVarDecl(t *testing.T) {
	program := parse(t, `var x = 42;`)
	if len(program.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Body))
	}
	decl, ok := program.Body[0].(*ast.VarDeclStmt)
	if !ok {
		t.Fatalf("expected VarDeclStmt, got %T", program.Body[0])
	}
	if decl.Name.Name != "x" {
		t.Errorf("expected name x, got %s", decl.Name.Name)
	}
	lit, ok := decl.Init.(*ast.LiteralExpr)
	if !ok {
		t.Fatalf("expected LiteralExpr initializer, got %T", decl.Init)
	}
	if lit.Value != float64(42) {
		t.Errorf("expected 42, got %v", lit.Value)
	}
}

func TestParseVarDeclNoInit(t *testing.T) {
	program := parse(t, `var x;`)
	decl := program.Body[0].(*ast.VarDeclStmt)
	if decl.Init != nil {
		t.Errorf("expected nil initializer, got %T", decl.Init)
	}
}

func TestParsePrecedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3)
	program := parse(t, `1 + 2 * 3;`)
	stmt := program.Body[0].(*ast.ExprStmt)
	add, ok := stmt.Expr.(*ast.BinaryExpr)
	if !ok || add.Op != token.PLUS {
		t.Fatalf("expected + at root, got %T", stmt.Expr)
	}
	mul, ok := add.Right.(*ast.BinaryExpr)
	if !ok || mul.Op != token.STAR {
		t.Fatalf("expected * on right, got %T", add.Right)
	}
}

func TestParseComparisonPrecedence(t *testing.T) {
	// 1 + 2 < 3 parses as (1 + 2) < 3
	program := parse(t, `1 + 2 < 3;`)
	stmt := program.Body[0].(*ast.ExprStmt)
	cmp := stmt.Expr.(*ast.BinaryExpr)
	if cmp.Op != token.LT {
		t.Fatalf("expected < at root, got %s", cmp.Op)
	}
	if _, ok := cmp.Left.(*ast.BinaryExpr); !ok {
		t.Errorf("expected binary expression on left, got %T", cmp.Left)
	}
}

func TestParseAssignmentRightAssoc(t *testing.T) {
	// a = b = 1 parses as a = (b = 1)
	program := parse(t, `a = b = 1;`)
	stmt := program.Body[0].(*ast.ExprStmt)
	outer, ok := stmt.Expr.(*ast.AssignExpr)
	if !ok || outer.Name.Name != "a" {
		t.Fatalf("expected assignment to a, got %T", stmt.Expr)
	}
	inner, ok := outer.Value.(*ast.AssignExpr)
	if !ok || inner.Name.Name != "b" {
		t.Fatalf("expected nested assignment to b, got %T", outer.Value)
	}
}

// The comma expression binds looser than assignment: `a = 1, 2` is
// `(a = 1), 2`, a sequence whose first operand is the assignment.
func TestParseSequenceBelowAssignment(t *testing.T) {
	program := parse(t, `a = 1, 2;`)
	stmt := program.Body[0].(*ast.ExprStmt)
	seq, ok := stmt.Expr.(*ast.SequenceExpr)
	if !ok {
		t.Fatalf("expected SequenceExpr at root, got %T", stmt.Expr)
	}
	if len(seq.Exprs) != 2 {
		t.Fatalf("expected 2 operands, got %d", len(seq.Exprs))
	}
	if _, ok := seq.Exprs[0].(*ast.AssignExpr); !ok {
		t.Errorf("expected first operand to be an assignment, got %T", seq.Exprs[0])
	}
}

func TestParseSequence(t *testing.T) {
	program := parse(t, `var x = (1, 2, 3);`)
	decl := program.Body[0].(*ast.VarDeclStmt)
	group := decl.Init.(*ast.GroupingExpr)
	seq, ok := group.Expr.(*ast.SequenceExpr)
	if !ok {
		t.Fatalf("expected SequenceExpr, got %T", group.Expr)
	}
	if len(seq.Exprs) != 3 {
		t.Errorf("expected 3 operands, got %d", len(seq.Exprs))
	}
}

// Inside an argument list, commas separate arguments rather than forming
// a sequence expression.
func TestParseCallArgumentsNotSequence(t *testing.T) {
	program := parse(t, `f(1, 2, 3);`)
	stmt := program.Body[0].(*ast.ExprStmt)
	call := stmt.Expr.(*ast.CallExpr)
	if len(call.Args) != 3 {
		t.Fatalf("expected 3 arguments, got %d", len(call.Args))
	}
}

func TestParseChainedCalls(t *testing.T) {
	program := parse(t, `f(1)(2);`)
	stmt := program.Body[0].(*ast.ExprStmt)
	outer := stmt.Expr.(*ast.CallExpr)
	inner, ok := outer.Callee.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected inner call as callee, got %T", outer.Callee)
	}
	if _, ok := inner.Callee.(*ast.VariableExpr); !ok {
		t.Errorf("expected variable at chain head, got %T", inner.Callee)
	}
}

func TestParsePropertyChain(t *testing.T) {
	program := parse(t, `a.b.c;`)
	stmt := program.Body[0].(*ast.ExprStmt)
	outer := stmt.Expr.(*ast.GetExpr)
	if outer.Name.Name != "c" {
		t.Errorf("expected outer property c, got %s", outer.Name.Name)
	}
	inner := outer.Object.(*ast.GetExpr)
	if inner.Name.Name != "b" {
		t.Errorf("expected inner property b, got %s", inner.Name.Name)
	}
}

func TestParsePropertyAssignment(t *testing.T) {
	program := parse(t, `a.b = 1;`)
	stmt := program.Body[0].(*ast.ExprStmt)
	set, ok := stmt.Expr.(*ast.SetExpr)
	if !ok {
		t.Fatalf("expected SetExpr, got %T", stmt.Expr)
	}
	if set.Name.Name != "b" {
		t.Errorf("expected property b, got %s", set.Name.Name)
	}
}

func TestParseInvalidAssignmentTarget(t *testing.T) {
	diags := parseErrors(t, `1 + 2 = 3;`)
	if !hasCode(diags, "E2003") {
		t.Fatalf("expected E2003, got %v", diags)
	}
}

func TestParseLambda(t *testing.T) {
	program := parse(t, `var f = fun (a, b) { return a + b; };`)
	decl := program.Body[0].(*ast.VarDeclStmt)
	lambda, ok := decl.Init.(*ast.LambdaExpr)
	if !ok {
		t.Fatalf("expected LambdaExpr, got %T", decl.Init)
	}
	if len(lambda.Params) != 2 {
		t.Errorf("expected 2 parameters, got %d", len(lambda.Params))
	}
}

func TestParseLambdaImmediateInvocation(t *testing.T) {
	program := parse(t, `fun (x) { print x; }(3);`)
	stmt := program.Body[0].(*ast.ExprStmt)
	call, ok := stmt.Expr.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %T", stmt.Expr)
	}
	if _, ok := call.Callee.(*ast.LambdaExpr); !ok {
		t.Errorf("expected lambda callee, got %T", call.Callee)
	}
}

func TestParseFunDecl(t *testing.T) {
	program := parse(t, `fun add(a, b) { return a + b; }`)
	decl, ok := program.Body[0].(*ast.FunDecl)
	if !ok {
		t.Fatalf("expected FunDecl, got %T", program.Body[0])
	}
	if decl.Name.Name != "add" || len(decl.Params) != 2 {
		t.Errorf("unexpected function: %s/%d", decl.Name.Name, len(decl.Params))
	}
}

func TestParseClassDecl(t *testing.T) {
	program := parse(t, `
class Cake {
  init(flavor) { this.flavor = flavor; }
  taste() { return this.flavor; }
}`)
	decl, ok := program.Body[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("expected ClassDecl, got %T", program.Body[0])
	}
	if decl.SuperClass != nil {
		t.Errorf("expected no superclass")
	}
	if len(decl.Methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(decl.Methods))
	}
	if decl.Methods[0].Name.Name != "init" {
		t.Errorf("expected first method init, got %s", decl.Methods[0].Name.Name)
	}
}

func TestParseClassWithSuperclass(t *testing.T) {
	program := parse(t, `class B < A {}`)
	decl := program.Body[0].(*ast.ClassDecl)
	if decl.SuperClass == nil || decl.SuperClass.Name != "A" {
		t.Fatalf("expected superclass A, got %v", decl.SuperClass)
	}
}

func TestParseSuperExpr(t *testing.T) {
	program := parse(t, `class B < A { m() { return super.m(); } }`)
	decl := program.Body[0].(*ast.ClassDecl)
	ret := decl.Methods[0].Body.Stmts[0].(*ast.ReturnStmt)
	call := ret.Value.(*ast.CallExpr)
	sup, ok := call.Callee.(*ast.SuperExpr)
	if !ok {
		t.Fatalf("expected SuperExpr callee, got %T", call.Callee)
	}
	if sup.Method.Name != "m" {
		t.Errorf("expected method m, got %s", sup.Method.Name)
	}
}

// A for loop desugars at parse time: the AST holds a block wrapping the
// initializer and a while loop, with the increment appended to the body.
func TestParseForDesugars(t *testing.T) {
	program := parse(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	block, ok := program.Body[0].(*ast.BlockStmt)
	if !ok {
		t.Fatalf("expected wrapper BlockStmt, got %T", program.Body[0])
	}
	if len(block.Stmts) != 2 {
		t.Fatalf("expected init + loop, got %d statements", len(block.Stmts))
	}
	if _, ok := block.Stmts[0].(*ast.VarDeclStmt); !ok {
		t.Errorf("expected VarDeclStmt first, got %T", block.Stmts[0])
	}
	loop, ok := block.Stmts[1].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected WhileStmt second, got %T", block.Stmts[1])
	}
	body, ok := loop.Body.(*ast.BlockStmt)
	if !ok || len(body.Stmts) != 2 {
		t.Fatalf("expected body block with statement + increment")
	}
}

func TestParseForAllClausesOptional(t *testing.T) {
	program := parse(t, `for (;;) print 1;`)
	loop, ok := program.Body[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected bare WhileStmt, got %T", program.Body[0])
	}
	cond, ok := loop.Condition.(*ast.LiteralExpr)
	if !ok || cond.Value != true {
		t.Errorf("expected true condition, got %v", loop.Condition)
	}
}

func TestParseIfElse(t *testing.T) {
	program := parse(t, `if (a) print 1; else print 2;`)
	stmt := program.Body[0].(*ast.IfStmt)
	if stmt.Else == nil {
		t.Error("expected else branch")
	}
}

// The parser recovers at statement boundaries, so one pass reports
// multiple errors.
func TestParseMultipleErrors(t *testing.T) {
	diags := parseErrors(t, `
var = 1;
print 2;
var y 3;
`)
	if len(diags) < 2 {
		t.Fatalf("expected at least 2 diagnostics, got %v", diags)
	}
}

// A non-method declaration inside a class body is reported and skipped
// without losing the methods around it.
func TestParseClassBodyRecovery(t *testing.T) {
	l := lexer.New(`class A { var x = 1; m() { return 1; } }`, "test.lox")
	tokens, _ := l.Tokenize()
	p := New(tokens)
	program, diags := p.ParseProgram()
	if len(diags) == 0 {
		t.Fatal("expected diagnostics for stray declaration in class body")
	}
	decl, ok := program.Body[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("expected ClassDecl, got %T", program.Body[0])
	}
	if len(decl.Methods) != 1 || decl.Methods[0].Name.Name != "m" {
		t.Errorf("expected method m to survive recovery, got %v", decl.Methods)
	}
}

// Recovery inside a class body stops at the closing brace, so a broken
// trailing member does not swallow the statements after the class.
func TestParseClassBodyRecoveryStopsAtBrace(t *testing.T) {
	l := lexer.New(`class A { var broken } print 1;`, "test.lox")
	tokens, _ := l.Tokenize()
	p := New(tokens)
	program, diags := p.ParseProgram()
	if len(diags) == 0 {
		t.Fatal("expected diagnostics for stray declaration in class body")
	}
	if len(program.Body) != 2 {
		t.Fatalf("expected class + print to survive, got %d statements", len(program.Body))
	}
	if _, ok := program.Body[0].(*ast.ClassDecl); !ok {
		t.Errorf("expected ClassDecl first, got %T", program.Body[0])
	}
	if _, ok := program.Body[1].(*ast.PrintStmt); !ok {
		t.Errorf("expected PrintStmt second, got %T", program.Body[1])
	}
}

// Scanning and parsing the same source twice reproduces the same AST.
func TestParseDeterministic(t *testing.T) {
	source := `
var total = 0;
fun accumulate(n) {
  for (var i = 0; i < n; i = i + 1) {
    total = total + i;
  }
  return total;
}
class Counter {
  init() { this.count = 0; }
  bump() { this.count = this.count + 1; return this; }
}
var seq = (1, 2, 3);
var pick = nil or fun (x) { return !x; };
print accumulate(5) and Counter().bump().count, seq;
`
	first := ast.NodeToMap(parse(t, source))
	second := ast.NodeToMap(parse(t, source))
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated parses produced different ASTs")
	}
}

func TestParseMissingSemicolon(t *testing.T) {
	diags := parseErrors(t, `print 1`)
	if !hasCode(diags, "E2001") {
		t.Fatalf("expected E2001, got %v", diags)
	}
}

func hasCode(diags []diag.Diagnostic, code string) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}
