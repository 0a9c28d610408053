package resolver

import (
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"testing"
)

func resolve(t *testing.T, source string) (*ast.Program, []diag.Diagnostic) {
	t.Helper()
	l := lexer.New(source, "test.lox")
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("unexpected lex diagnostics: %v", lexDiags)
	}
	p := parser.New(tokens)
	program, parseDiags := p.ParseProgram()
	if diag.HasErrors(parseDiags) {
		t.Fatalf("unexpected parse diagnostics: %v", parseDiags)
	}
	return program, New().Resolve(program)
}

func expectClean(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, diags := resolve(t, source)
	if len(diags) > 0 {
		t.Fatalf("unexpected resolve diagnostics: %v", diags)
	}
	return program
}

func expectCode(t *testing.T, source, code string) {
	t.Helper()
	_, diags := resolve(t, source)
	for _, d := range diags {
		if d.Code == code {
			return
		}
	}
	t.Fatalf("expected diagnostic %s, got %v", code, diags)
}

func TestGlobalStaysUnresolved(t *testing.T) {
	program := expectClean(t, `var x = 1; print x;`)
	print := program.Body[1].(*ast.PrintStmt)
	ref := print.Expr.(*ast.VariableExpr)
	if ref.Depth != ast.GlobalDepth {
		t.Errorf("expected global depth, got %d", ref.Depth)
	}
}

func TestLocalDepthZero(t *testing.T) {
	program := expectClean(t, `{ var x = 1; print x; }`)
	block := program.Body[0].(*ast.BlockStmt)
	print := block.Stmts[1].(*ast.PrintStmt)
	ref := print.Expr.(*ast.VariableExpr)
	if ref.Depth != 0 {
		t.Errorf("expected depth 0, got %d", ref.Depth)
	}
}

func TestNestedBlockDepth(t *testing.T) {
	program := expectClean(t, `{ var x = 1; { print x; } }`)
	outer := program.Body[0].(*ast.BlockStmt)
	inner := outer.Stmts[1].(*ast.BlockStmt)
	print := inner.Stmts[0].(*ast.PrintStmt)
	ref := print.Expr.(*ast.VariableExpr)
	if ref.Depth != 1 {
		t.Errorf("expected depth 1, got %d", ref.Depth)
	}
}

// A closure's free variable resolves through the function's parameter
// scope to the enclosing function.
func TestClosureCaptureDepth(t *testing.T) {
	program := expectClean(t, `
fun outer() {
  var x = 1;
  fun inner() {
    return x;
  }
  return inner;
}`)
	outerFn := program.Body[0].(*ast.FunDecl)
	innerFn := outerFn.Body.Stmts[1].(*ast.FunDecl)
	ret := innerFn.Body.Stmts[0].(*ast.ReturnStmt)
	ref := ret.Value.(*ast.VariableExpr)
	if ref.Depth != 1 {
		t.Errorf("expected depth 1, got %d", ref.Depth)
	}
}

func TestShadowing(t *testing.T) {
	program := expectClean(t, `
var x = "global";
{
  var x = "local";
  print x;
}`)
	block := program.Body[1].(*ast.BlockStmt)
	print := block.Stmts[1].(*ast.PrintStmt)
	ref := print.Expr.(*ast.VariableExpr)
	if ref.Depth != 0 {
		t.Errorf("expected shadowing local at depth 0, got %d", ref.Depth)
	}
}

func TestSelfInitializerRead(t *testing.T) {
	expectCode(t, `{ var a = a; }`, "E3005")
}

// At the top level, reading an outer binding in an initializer of the
// same name is allowed; both resolve globally.
func TestTopLevelSelfInitAllowed(t *testing.T) {
	expectClean(t, `var a = 1; var a = a;`)
}

func TestSameScopeRedeclaration(t *testing.T) {
	expectCode(t, `{ var a = 1; var a = 2; }`, "E3001")
}

func TestReturnOutsideFunction(t *testing.T) {
	expectCode(t, `return 1;`, "E3002")
}

func TestReturnValueFromInitializer(t *testing.T) {
	expectCode(t, `class A { init() { return 1; } }`, "E3003")
}

func TestBareReturnFromInitializerAllowed(t *testing.T) {
	expectClean(t, `class A { init() { return; } }`)
}

func TestClassInheritsFromItself(t *testing.T) {
	expectCode(t, `class A < A {}`, "E3004")
}

func TestThisOutsideClass(t *testing.T) {
	expectCode(t, `print this;`, "E3006")
}

func TestThisInLambdaOutsideClass(t *testing.T) {
	expectCode(t, `var f = fun () { return this; };`, "E3006")
}

func TestSuperOutsideClass(t *testing.T) {
	expectCode(t, `print super.m;`, "E3007")
}

func TestSuperWithoutSuperclass(t *testing.T) {
	expectCode(t, `class A { m() { return super.m(); } }`, "E3008")
}

func TestThisDepthInMethod(t *testing.T) {
	program := expectClean(t, `class A { m() { return this; } }`)
	decl := program.Body[0].(*ast.ClassDecl)
	ret := decl.Methods[0].Body.Stmts[0].(*ast.ReturnStmt)
	this := ret.Value.(*ast.ThisExpr)
	if this.Depth != 1 {
		t.Errorf("expected this at depth 1, got %d", this.Depth)
	}
}

func TestSuperDepthInMethod(t *testing.T) {
	program := expectClean(t, `class B < A { m() { return super.m(); } }`)
	classB := program.Body[0].(*ast.ClassDecl)
	ret := classB.Methods[0].Body.Stmts[0].(*ast.ReturnStmt)
	call := ret.Value.(*ast.CallExpr)
	sup := call.Callee.(*ast.SuperExpr)
	if sup.Depth != 2 {
		t.Errorf("expected super at depth 2, got %d", sup.Depth)
	}
}
