// Package lexer implements lexical analysis for lox-lang.
package lexer

import (
	"fmt"
	"lox-lang/internal/diag"
	"lox-lang/internal/span"
	"lox-lang/internal/token"
	"strconv"
)

// Lexer tokenizes source code into a sequence of tokens. Lexical errors are
// collected as diagnostics; scanning always continues to the end of input.
type Lexer struct {
	source   string
	filename string

	pos  int // current read position in source
	line int // current line (1-based)
	col  int // current column (1-based)

	diags []diag.Diagnostic
}

// New creates a new Lexer for the given source text.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

// Tokenize scans the entire source and returns all tokens and diagnostics.
// The token slice is always terminated by an EOF token.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	var tokens []token.Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, l.diags
}

// ---- internal helpers ----

// peek returns the current character without advancing, or 0 if at end.
func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

// peekNext returns the character after current, or 0 if at end.
func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

// advance consumes the current character and returns it.
func (l *Lexer) advance() byte {
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

// curPos returns the current position as a span.Position.
func (l *Lexer) curPos() span.Position {
	return span.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// makeSpan returns a span from start to current position.
func (l *Lexer) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: l.curPos()}
}

// skipWhitespace skips spaces, tabs and newlines. Statements are
// semicolon-terminated, so newlines carry no significance.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			l.advance()
		} else {
			break
		}
	}
}

// skipLineComment skips from // to end of line.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.source) && l.source[l.pos] != '\n' {
		l.advance()
	}
}

// skipBlockComment skips /* ... */, reporting an unterminated comment.
func (l *Lexer) skipBlockComment(start span.Position) {
	l.advance() // /
	l.advance() // *
	for l.pos < len(l.source) {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
	l.addError("E1004", l.makeSpan(start), "unterminated block comment")
}

// addError records a diagnostic error.
func (l *Lexer) addError(code string, s span.Span, msg string) {
	l.diags = append(l.diags, diag.Errorf(code, s, "%s", msg))
}

// ---- token reading ----

func (l *Lexer) nextToken() token.Token {
	for {
		l.skipWhitespace()

		if l.pos >= len(l.source) {
			return token.Token{Kind: token.EOF, Lexeme: "", Span: l.makeSpan(l.curPos())}
		}

		ch := l.peek()

		// Comments are skipped, not tokenized.
		if ch == '/' && l.peekNext() == '/' {
			l.skipLineComment()
			continue
		}
		if ch == '/' && l.peekNext() == '*' {
			l.skipBlockComment(l.curPos())
			continue
		}

		break
	}

	start := l.curPos()
	ch := l.peek()

	// String literal
	if ch == '"' {
		return l.readString(start)
	}

	// Number literal
	if isDigit(ch) {
		return l.readNumber(start)
	}

	// Identifier or keyword
	if isIdentStart(ch) {
		return l.readIdentifier(start)
	}

	// Operators and delimiters
	return l.readOperator(start)
}

// readString reads a double-quoted string literal. Strings may span multiple
// lines. The processed value is stored in the token's Literal field; the
// Lexeme keeps the raw source text including quotes.
func (l *Lexer) readString(start span.Position) token.Token {
	l.advance() // skip opening "
	var value []byte

	for l.pos < len(l.source) {
		ch := l.peek()
		if ch == '"' {
			l.advance() // skip closing "
			sp := l.makeSpan(start)
			return token.Token{
				Kind:    token.STRING,
				Lexeme:  l.source[start.Offset:sp.End.Offset],
				Literal: string(value),
				Span:    sp,
			}
		}
		if ch == '\\' {
			l.advance()
			if l.pos >= len(l.source) {
				break
			}
			esc := l.peek()
			switch esc {
			case 'n':
				value = append(value, '\n')
			case 't':
				value = append(value, '\t')
			case '\\':
				value = append(value, '\\')
			case '"':
				value = append(value, '"')
			default:
				l.addError("E1002", l.makeSpan(start), fmt.Sprintf("unknown escape sequence: \\%c", esc))
				value = append(value, esc)
			}
			l.advance()
			continue
		}
		value = append(value, ch)
		l.advance()
	}

	l.addError("E1001", l.makeSpan(start), "unterminated string literal")
	sp := l.makeSpan(start)
	return token.Token{
		Kind:    token.STRING,
		Lexeme:  l.source[start.Offset:sp.End.Offset],
		Literal: string(value),
		Span:    sp,
	}
}

// readNumber reads a number literal. A fractional part requires a digit
// after the dot, so `1.foo` scans as NUMBER DOT IDENT.
func (l *Lexer) readNumber(start span.Position) token.Token {
	numStart := l.pos

	for l.pos < len(l.source) && isDigit(l.peek()) {
		l.advance()
	}

	if l.pos < len(l.source) && l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance() // skip '.'
		for l.pos < len(l.source) && isDigit(l.peek()) {
			l.advance()
		}
	}

	lexeme := l.source[numStart:l.pos]
	value, _ := strconv.ParseFloat(lexeme, 64)
	return token.Token{Kind: token.NUMBER, Lexeme: lexeme, Literal: value, Span: l.makeSpan(start)}
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier(start span.Position) token.Token {
	identStart := l.pos

	for l.pos < len(l.source) && isIdentPart(l.peek()) {
		l.advance()
	}

	lexeme := l.source[identStart:l.pos]
	kind := token.LookupIdent(lexeme)
	return token.Token{Kind: kind, Lexeme: lexeme, Span: l.makeSpan(start)}
}

// readOperator reads an operator or delimiter token using maximal munch:
// two-character operators are matched before their one-character prefixes.
func (l *Lexer) readOperator(start span.Position) token.Token {
	ch := l.advance()

	switch ch {
	case '(':
		return l.emit(token.LPAREN, "(", start)
	case ')':
		return l.emit(token.RPAREN, ")", start)
	case '{':
		return l.emit(token.LBRACE, "{", start)
	case '}':
		return l.emit(token.RBRACE, "}", start)
	case ',':
		return l.emit(token.COMMA, ",", start)
	case '.':
		return l.emit(token.DOT, ".", start)
	case '-':
		return l.emit(token.MINUS, "-", start)
	case '+':
		return l.emit(token.PLUS, "+", start)
	case ';':
		return l.emit(token.SEMICOLON, ";", start)
	case '/':
		return l.emit(token.SLASH, "/", start)
	case '*':
		return l.emit(token.STAR, "*", start)
	case '!':
		if l.peek() == '=' {
			l.advance()
			return l.emit(token.NEQ, "!=", start)
		}
		return l.emit(token.BANG, "!", start)
	case '=':
		if l.peek() == '=' {
			l.advance()
			return l.emit(token.EQ, "==", start)
		}
		return l.emit(token.ASSIGN, "=", start)
	case '<':
		if l.peek() == '=' {
			l.advance()
			return l.emit(token.LTE, "<=", start)
		}
		return l.emit(token.LT, "<", start)
	case '>':
		if l.peek() == '=' {
			l.advance()
			return l.emit(token.GTE, ">=", start)
		}
		return l.emit(token.GT, ">", start)
	default:
		l.addError("E1003", l.makeSpan(start), fmt.Sprintf("unexpected character: '%c'", ch))
		return token.Token{Kind: token.ILLEGAL, Lexeme: string(ch), Span: l.makeSpan(start)}
	}
}

func (l *Lexer) emit(kind token.Kind, lexeme string, start span.Position) token.Token {
	return token.Token{Kind: kind, Lexeme: lexeme, Span: l.makeSpan(start)}
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
