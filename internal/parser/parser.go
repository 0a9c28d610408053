// Package parser implements syntax analysis for lox-lang.
//
// Expressions are parsed by recursive descent, one function per precedence
// level, from sequence (the comma expression) down to primary:
//
//	sequence → assignment → or → and → equality → comparison
//	         → term → factor → unary → call → primary
//
// The comma expression binds looser than assignment, so `a = 1, 2` parses
// as `(a = 1), 2`. Assignment is right-associative and its target must be a
// variable or a property access. A syntax error never aborts the parse: the
// parser records a diagnostic and synchronizes to the next statement
// boundary so that one pass can report multiple errors.
package parser

import (
	"fmt"
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// maxArgs is the maximum number of arguments (and parameters) per call.
const maxArgs = 255

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic
}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// ParseProgram parses the entire token stream and returns the AST root and
// diagnostics.
func (p *Parser) ParseProgram() (*ast.Program, []diag.Diagnostic) {
	program := &ast.Program{}
	startPos := p.peek().Span.Start

	for !p.isAtEnd() {
		stmt := p.parseDeclaration()
		if stmt != nil {
			program.Body = append(program.Body, stmt)
		}
	}

	endPos := p.peek().Span.End
	program.Span = span.Span{Start: startPos, End: endPos}
	return program, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) peekNextKind() token.Kind {
	if p.pos+1 >= len(p.tokens) {
		return token.EOF
	}
	return p.tokens[p.pos+1].Kind
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind token.Kind) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	tok := p.peek()
	p.error("E2001", tok.Span, fmt.Sprintf("expected '%s', got '%s'", kind, tok.Kind))
	return tok, false
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

func (p *Parser) error(code string, s span.Span, msg string) {
	p.diags = append(p.diags, diag.Errorf(code, s, "%s", msg))
}

// ============================================================
// Error recovery
// ============================================================

// synchronize skips tokens until a likely statement boundary: past the next
// semicolon, or before a statement-starting keyword or closing brace.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.check(token.SEMICOLON) {
			p.advance()
			return
		}
		if p.check(token.RBRACE) {
			return
		}
		if p.match(token.KW_CLASS, token.KW_FUN, token.KW_VAR, token.KW_FOR,
			token.KW_IF, token.KW_WHILE, token.KW_PRINT, token.KW_RETURN) {
			return
		}
		p.advance()
	}
}

// skipClassMember recovers inside a class body after a failed member.
// Statement-level synchronize stops at statement keywords, which are not
// member boundaries; here recovery skips past the next semicolon instead,
// stopping early at the closing brace or at an `IDENT (` pair that looks
// like the next method header.
func (p *Parser) skipClassMember() {
	for !p.isAtEnd() {
		if p.check(token.RBRACE) {
			return
		}
		if p.check(token.IDENT) && p.peekNextKind() == token.LPAREN {
			return
		}
		if p.check(token.SEMICOLON) {
			p.advance()
			return
		}
		p.advance()
	}
}

// ============================================================
// Declarations
// ============================================================

func (p *Parser) parseDeclaration() ast.Stmt {
	switch p.peekKind() {
	case token.KW_CLASS:
		return p.parseClassDecl()
	case token.KW_FUN:
		// `fun name(...)` is a declaration; `fun (...)` is a lambda
		// expression and falls through to statement parsing.
		if p.peekNextKind() == token.IDENT {
			return p.parseFunDecl()
		}
		return p.parseStmt()
	case token.KW_VAR:
		return p.parseVarDecl()
	default:
		return p.parseStmt()
	}
}

// parseVarDecl parses: var IDENT [ = expr ] ;
func (p *Parser) parseVarDecl() ast.Stmt {
	start := p.advance() // consume 'var'

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		return nil
	}

	stmt := &ast.VarDeclStmt{Name: ast.Ident{Name: nameTok.Lexeme, Span: nameTok.Span}}

	if p.check(token.ASSIGN) {
		p.advance()
		stmt.Init = p.parseExpression()
		if stmt.Init == nil {
			p.synchronize()
			return nil
		}
	}

	p.expect(token.SEMICOLON)
	stmt.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt
}

// parseFunDecl parses: fun IDENT ( params ) block
func (p *Parser) parseFunDecl() ast.Stmt {
	start := p.advance() // consume 'fun'

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		return nil
	}

	params, body := p.parseFunctionRest()
	if body == nil {
		return nil
	}

	return &ast.FunDecl{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Name:     ast.Ident{Name: nameTok.Lexeme, Span: nameTok.Span},
		Params:   params,
		Body:     body,
	}
}

// parseClassDecl parses: class IDENT [ < IDENT ] { methods }
func (p *Parser) parseClassDecl() ast.Stmt {
	start := p.advance() // consume 'class'

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		return nil
	}

	decl := &ast.ClassDecl{Name: ast.Ident{Name: nameTok.Lexeme, Span: nameTok.Span}}

	if p.check(token.LT) {
		p.advance()
		superTok, ok := p.expect(token.IDENT)
		if !ok {
			p.synchronize()
			return nil
		}
		decl.SuperClass = &ast.VariableExpr{
			ExprBase: makeExprBase(superTok.Span.Start, superTok.Span.End),
			Name:     superTok.Lexeme,
			Depth:    ast.GlobalDepth,
		}
	}

	if _, ok := p.expect(token.LBRACE); !ok {
		p.synchronize()
		return nil
	}

	for !p.check(token.RBRACE) && !p.isAtEnd() {
		before := p.pos
		method := p.parseMethod()
		if method == nil {
			p.skipClassMember()
			if p.pos == before {
				p.advance()
			}
			continue
		}
		decl.Methods = append(decl.Methods, method)
	}

	p.expect(token.RBRACE)
	decl.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return decl
}

// parseMethod parses: IDENT ( params ) block
func (p *Parser) parseMethod() *ast.FunDecl {
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		return nil
	}

	params, body := p.parseFunctionRest()
	if body == nil {
		return nil
	}

	return &ast.FunDecl{
		StmtBase: makeStmtBase(nameTok.Span.Start, p.prevEnd()),
		Name:     ast.Ident{Name: nameTok.Lexeme, Span: nameTok.Span},
		Params:   params,
		Body:     body,
	}
}

// parseFunctionRest parses the parameter list and body shared by function
// declarations, methods and lambdas. Returns a nil body on failure.
func (p *Parser) parseFunctionRest() ([]ast.Ident, *ast.BlockStmt) {
	var params []ast.Ident

	if _, ok := p.expect(token.LPAREN); !ok {
		p.synchronize()
		return nil, nil
	}

	if !p.check(token.RPAREN) {
		for {
			nameTok, ok := p.expect(token.IDENT)
			if !ok {
				p.synchronize()
				return nil, nil
			}
			if len(params) >= maxArgs {
				p.error("E2004", nameTok.Span, fmt.Sprintf("cannot have more than %d parameters", maxArgs))
			}
			params = append(params, ast.Ident{Name: nameTok.Lexeme, Span: nameTok.Span})
			if !p.check(token.COMMA) {
				break
			}
			p.advance()
		}
	}

	if _, ok := p.expect(token.RPAREN); !ok {
		p.synchronize()
		return nil, nil
	}

	if !p.check(token.LBRACE) {
		tok := p.peek()
		p.error("E2005", tok.Span, "expected '{' before function body")
		p.synchronize()
		return nil, nil
	}

	body := p.parseBlock()
	return params, body
}

// ============================================================
// Statements
// ============================================================

func (p *Parser) parseStmt() ast.Stmt {
	switch p.peekKind() {
	case token.KW_PRINT:
		return p.parsePrintStmt()
	case token.KW_RETURN:
		return p.parseReturnStmt()
	case token.KW_IF:
		return p.parseIfStmt()
	case token.KW_WHILE:
		return p.parseWhileStmt()
	case token.KW_FOR:
		return p.parseForStmt()
	case token.LBRACE:
		return p.parseBlock()
	default:
		return p.parseExprStmt()
	}
}

// parsePrintStmt parses: print expr ;
func (p *Parser) parsePrintStmt() ast.Stmt {
	start := p.advance() // consume 'print'

	expr := p.parseExpression()
	if expr == nil {
		p.synchronize()
		return nil
	}
	p.expect(token.SEMICOLON)

	return &ast.PrintStmt{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Expr:     expr,
	}
}

// parseReturnStmt parses: return [expr] ;
func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.advance() // consume 'return'
	stmt := &ast.ReturnStmt{Keyword: start.Span}

	if !p.check(token.SEMICOLON) {
		stmt.Value = p.parseExpression()
		if stmt.Value == nil {
			p.synchronize()
			return nil
		}
	}
	p.expect(token.SEMICOLON)

	stmt.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt
}

// parseIfStmt parses: if ( expr ) stmt [ else stmt ]
func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.advance() // consume 'if'

	if _, ok := p.expect(token.LPAREN); !ok {
		p.synchronize()
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		p.synchronize()
		return nil
	}
	p.expect(token.RPAREN)

	thenBranch := p.parseStmt()
	if thenBranch == nil {
		return nil
	}

	stmt := &ast.IfStmt{Condition: cond, Then: thenBranch}
	if p.check(token.KW_ELSE) {
		p.advance()
		stmt.Else = p.parseStmt()
	}

	stmt.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt
}

// parseWhileStmt parses: while ( expr ) stmt
func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.advance() // consume 'while'

	if _, ok := p.expect(token.LPAREN); !ok {
		p.synchronize()
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		p.synchronize()
		return nil
	}
	p.expect(token.RPAREN)

	body := p.parseStmt()
	if body == nil {
		return nil
	}

	return &ast.WhileStmt{
		StmtBase:  makeStmtBase(start.Span.Start, p.prevEnd()),
		Condition: cond,
		Body:      body,
	}
}

// parseForStmt parses: for ( [init] ; [cond] ; [incr] ) stmt
//
// The loop is desugared at parse time into a while loop:
//
//	{ init; while (cond) { body; incr; } }
//
// An absent condition becomes a `true` literal. The wrapper block scopes
// the initializer variable to the loop.
func (p *Parser) parseForStmt() ast.Stmt {
	start := p.advance() // consume 'for'

	if _, ok := p.expect(token.LPAREN); !ok {
		p.synchronize()
		return nil
	}

	// Initializer (optional): var declaration or expression.
	var init ast.Stmt
	switch {
	case p.check(token.SEMICOLON):
		p.advance()
	case p.check(token.KW_VAR):
		init = p.parseVarDecl()
		if init == nil {
			return nil
		}
	default:
		init = p.parseExprStmt()
		if init == nil {
			return nil
		}
	}

	// Condition (optional).
	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		cond = p.parseExpression()
		if cond == nil {
			p.synchronize()
			return nil
		}
	}
	semiTok, _ := p.expect(token.SEMICOLON)
	if cond == nil {
		cond = &ast.LiteralExpr{
			ExprBase: makeExprBase(semiTok.Span.Start, semiTok.Span.End),
			Value:    true,
		}
	}

	// Increment (optional).
	var incr ast.Expr
	if !p.check(token.RPAREN) {
		incr = p.parseExpression()
		if incr == nil {
			p.synchronize()
			return nil
		}
	}
	p.expect(token.RPAREN)

	body := p.parseStmt()
	if body == nil {
		return nil
	}

	full := makeStmtBase(start.Span.Start, p.prevEnd())

	if incr != nil {
		body = &ast.BlockStmt{
			StmtBase: full,
			Stmts: []ast.Stmt{
				body,
				&ast.ExprStmt{
					StmtBase: makeStmtBase(incr.GetSpan().Start, incr.GetSpan().End),
					Expr:     incr,
				},
			},
		}
	}

	var loop ast.Stmt = &ast.WhileStmt{
		StmtBase:  full,
		Condition: cond,
		Body:      body,
	}

	if init != nil {
		loop = &ast.BlockStmt{
			StmtBase: full,
			Stmts:    []ast.Stmt{init, loop},
		}
	}
	return loop
}

// parseBlock parses: { decls }
func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.peek()
	block := &ast.BlockStmt{}

	if _, ok := p.expect(token.LBRACE); !ok {
		p.synchronize()
		block.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
		return block
	}

	for !p.check(token.RBRACE) && !p.isAtEnd() {
		stmt := p.parseDeclaration()
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}

	p.expect(token.RBRACE)
	block.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return block
}

// parseExprStmt parses: expr ;
func (p *Parser) parseExprStmt() ast.Stmt {
	expr := p.parseExpression()
	if expr == nil {
		p.synchronize()
		return nil
	}
	p.expect(token.SEMICOLON)

	return &ast.ExprStmt{
		StmtBase: makeStmtBase(expr.GetSpan().Start, p.prevEnd()),
		Expr:     expr,
	}
}

// ============================================================
// Expressions
// ============================================================

// parseExpression parses a full expression, starting at the sequence level.
func (p *Parser) parseExpression() ast.Expr {
	return p.parseSequence()
}

// parseSequence parses: assignment ( , assignment )*
func (p *Parser) parseSequence() ast.Expr {
	first := p.parseAssignment()
	if first == nil {
		return nil
	}
	if !p.check(token.COMMA) {
		return first
	}

	exprs := []ast.Expr{first}
	for p.check(token.COMMA) {
		p.advance()
		next := p.parseAssignment()
		if next == nil {
			break
		}
		exprs = append(exprs, next)
	}

	return &ast.SequenceExpr{
		ExprBase: makeExprBase(first.GetSpan().Start, p.prevEnd()),
		Exprs:    exprs,
	}
}

// parseAssignment parses: ( call . )? IDENT = assignment | or
//
// The target is validated after parsing the left side: only a variable
// reference or a property access may be assigned to.
func (p *Parser) parseAssignment() ast.Expr {
	left := p.parseOr()
	if left == nil {
		return nil
	}

	if !p.check(token.ASSIGN) {
		return left
	}
	eqTok := p.advance()

	value := p.parseAssignment() // right-associative
	if value == nil {
		return nil
	}

	switch target := left.(type) {
	case *ast.VariableExpr:
		return &ast.AssignExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, value.GetSpan().End),
			Name:     ast.Ident{Name: target.Name, Span: target.Span},
			Value:    value,
			Depth:    ast.GlobalDepth,
		}
	case *ast.GetExpr:
		return &ast.SetExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, value.GetSpan().End),
			Object:   target.Object,
			Name:     target.Name,
			Value:    value,
		}
	default:
		p.error("E2003", eqTok.Span, "invalid assignment target")
		return left
	}
}

// parseOr parses: and ( or and )*
func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	if left == nil {
		return nil
	}

	for p.check(token.KW_OR) {
		p.advance()
		right := p.parseAnd()
		if right == nil {
			return left
		}
		left = &ast.LogicalExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, right.GetSpan().End),
			Op:       token.KW_OR,
			Left:     left,
			Right:    right,
		}
	}
	return left
}

// parseAnd parses: equality ( and equality )*
func (p *Parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	if left == nil {
		return nil
	}

	for p.check(token.KW_AND) {
		p.advance()
		right := p.parseEquality()
		if right == nil {
			return left
		}
		left = &ast.LogicalExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, right.GetSpan().End),
			Op:       token.KW_AND,
			Left:     left,
			Right:    right,
		}
	}
	return left
}

// parseEquality parses: comparison ( (== | !=) comparison )*
func (p *Parser) parseEquality() ast.Expr {
	return p.parseBinaryLevel(p.parseComparison, token.EQ, token.NEQ)
}

// parseComparison parses: term ( (< | <= | > | >=) term )*
func (p *Parser) parseComparison() ast.Expr {
	return p.parseBinaryLevel(p.parseTerm, token.LT, token.LTE, token.GT, token.GTE)
}

// parseTerm parses: factor ( (+ | -) factor )*
func (p *Parser) parseTerm() ast.Expr {
	return p.parseBinaryLevel(p.parseFactor, token.PLUS, token.MINUS)
}

// parseFactor parses: unary ( (* | /) unary )*
func (p *Parser) parseFactor() ast.Expr {
	return p.parseBinaryLevel(p.parseUnary, token.STAR, token.SLASH)
}

// parseBinaryLevel parses one left-associative binary precedence level.
func (p *Parser) parseBinaryLevel(next func() ast.Expr, ops ...token.Kind) ast.Expr {
	left := next()
	if left == nil {
		return nil
	}

	for p.match(ops...) {
		opTok := p.advance()
		right := next()
		if right == nil {
			return left
		}
		left = &ast.BinaryExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, right.GetSpan().End),
			Op:       opTok.Kind,
			OpSpan:   opTok.Span,
			Left:     left,
			Right:    right,
		}
	}
	return left
}

// parseUnary parses: (! | -) unary | call
func (p *Parser) parseUnary() ast.Expr {
	if p.match(token.BANG, token.MINUS) {
		opTok := p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{
			ExprBase: makeExprBase(opTok.Span.Start, operand.GetSpan().End),
			Op:       opTok.Kind,
			Operand:  operand,
		}
	}
	return p.parseCall()
}

// parseCall parses: primary ( ( args ) | . IDENT )*
//
// Repeated application chains naturally: each `(` wraps the expression
// built so far in a new CallExpr, so `f(1)(2)` and immediately-invoked
// lambdas work without special cases.
func (p *Parser) parseCall() ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}

	for {
		switch p.peekKind() {
		case token.LPAREN:
			expr = p.finishCall(expr)
		case token.DOT:
			p.advance()
			nameTok, ok := p.expect(token.IDENT)
			if !ok {
				return expr
			}
			expr = &ast.GetExpr{
				ExprBase: makeExprBase(expr.GetSpan().Start, nameTok.Span.End),
				Object:   expr,
				Name:     ast.Ident{Name: nameTok.Lexeme, Span: nameTok.Span},
			}
		default:
			return expr
		}
	}
}

// finishCall parses the argument list of a call. Arguments sit at
// assignment precedence; a comma inside an argument list separates
// arguments, never a sequence expression.
func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	p.advance() // consume '('
	var args []ast.Expr

	if !p.check(token.RPAREN) {
		for {
			arg := p.parseAssignment()
			if arg == nil {
				break
			}
			if len(args) >= maxArgs {
				p.error("E2004", arg.GetSpan(), fmt.Sprintf("cannot have more than %d arguments", maxArgs))
			}
			args = append(args, arg)
			if !p.check(token.COMMA) {
				break
			}
			p.advance()
		}
	}
	end, _ := p.expect(token.RPAREN)

	return &ast.CallExpr{
		ExprBase: makeExprBase(callee.GetSpan().Start, end.Span.End),
		Callee:   callee,
		Args:     args,
	}
}

// parsePrimary parses literals, identifiers, groupings, lambdas, this and
// super references.
func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.NUMBER:
		p.advance()
		return &ast.LiteralExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    tok.Literal,
		}

	case token.STRING:
		p.advance()
		return &ast.LiteralExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    tok.Literal,
		}

	case token.KW_TRUE:
		p.advance()
		return &ast.LiteralExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    true,
		}

	case token.KW_FALSE:
		p.advance()
		return &ast.LiteralExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    false,
		}

	case token.KW_NIL:
		p.advance()
		return &ast.LiteralExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    nil,
		}

	case token.KW_THIS:
		p.advance()
		return &ast.ThisExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Depth:    ast.GlobalDepth,
		}

	case token.KW_SUPER:
		p.advance()
		if _, ok := p.expect(token.DOT); !ok {
			return nil
		}
		nameTok, ok := p.expect(token.IDENT)
		if !ok {
			return nil
		}
		return &ast.SuperExpr{
			ExprBase: makeExprBase(tok.Span.Start, nameTok.Span.End),
			Method:   ast.Ident{Name: nameTok.Lexeme, Span: nameTok.Span},
			Depth:    ast.GlobalDepth,
		}

	case token.IDENT:
		p.advance()
		return &ast.VariableExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Name:     tok.Lexeme,
			Depth:    ast.GlobalDepth,
		}

	case token.KW_FUN:
		return p.parseLambda()

	case token.LPAREN:
		p.advance()
		expr := p.parseExpression()
		if expr == nil {
			return nil
		}
		end, _ := p.expect(token.RPAREN)
		return &ast.GroupingExpr{
			ExprBase: makeExprBase(tok.Span.Start, end.Span.End),
			Expr:     expr,
		}

	default:
		p.error("E2002", tok.Span, fmt.Sprintf("expected expression, got '%s'", tok.Kind))
		// Consume the offending token so recovery always makes progress.
		if !p.isAtEnd() {
			p.advance()
		}
		return nil
	}
}

// parseLambda parses: fun ( params ) block
func (p *Parser) parseLambda() ast.Expr {
	start := p.advance() // consume 'fun'

	params, body := p.parseFunctionRest()
	if body == nil {
		return nil
	}

	return &ast.LambdaExpr{
		ExprBase: makeExprBase(start.Span.Start, p.prevEnd()),
		Params:   params,
		Body:     body,
	}
}

// ============================================================
// Span helpers
// ============================================================

func (p *Parser) prevEnd() span.Position {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func makeExprBase(start, end span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

func makeStmtBase(start, end span.Position) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}
