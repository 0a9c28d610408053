package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"lox-lang/internal/resolver"
	"lox-lang/internal/runtime"

	"github.com/chzyer/readline"
)

// ---- ANSI colors ----

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// ---- repl command ----

func cmdRepl() {
	// Determine history file path (~/.lox_history)
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".lox_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            colorGreen + "lox> " + colorReset,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init failed: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	// Welcome banner
	fmt.Fprintf(rl.Stdout(), "%s%slox-lang REPL%s %s(type 'exit' or Ctrl+D to quit)%s\n\n",
		colorBold, colorCyan, colorReset, colorGray, colorReset)

	interp := runtime.New(rl.Stdout())
	var accumulated strings.Builder
	braceDepth := 0

	for {
		// Update prompt based on multi-line state
		if braceDepth > 0 {
			rl.SetPrompt(colorGray + "...  " + colorReset)
		} else {
			rl.SetPrompt(colorGreen + "lox> " + colorReset)
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if braceDepth > 0 {
					// Cancel multi-line input
					accumulated.Reset()
					braceDepth = 0
					continue
				}
				// Show hint instead of exiting
				fmt.Fprintf(rl.Stdout(), "\n%s(use 'exit' or Ctrl+D to quit)%s\n", colorGray, colorReset)
				continue
			}
			// EOF (Ctrl+D) or other error → exit
			if err == io.EOF {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		// Exit command
		if braceDepth == 0 && strings.TrimSpace(line) == "exit" {
			break
		}

		// Count braces for multi-line input
		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		accumulated.WriteString(line)
		accumulated.WriteString("\n")

		// If braces are unbalanced, keep reading
		if braceDepth > 0 {
			continue
		}
		braceDepth = 0

		source := accumulated.String()
		accumulated.Reset()

		// Skip empty input
		if strings.TrimSpace(source) == "" {
			continue
		}

		// A bare expression gets a trailing semicolon for free, so
		// `1 + 2` works without ceremony.
		program, ok := replParse(rl.Stderr(), source)
		if !ok {
			continue
		}

		// Execute; a lone expression statement echoes its value.
		if expr := soleExpression(program); expr != nil {
			value, err := interp.EvalExpr(expr)
			if err != nil {
				fmt.Fprintf(rl.Stderr(), "%s%s%s\n", colorRed, err, colorReset)
				continue
			}
			if _, isNil := value.(runtime.NilVal); !isNil {
				fmt.Fprintf(rl.Stdout(), "%s%s%s\n", colorGray, value.String(), colorReset)
			}
			continue
		}

		if err := interp.Run(program); err != nil {
			fmt.Fprintf(rl.Stderr(), "%s%s%s\n", colorRed, err, colorReset)
			continue
		}
	}
}

// replParse runs the front half of the pipeline on one REPL input,
// retrying a bare expression with an appended semicolon before reporting
// errors. Returns the resolved program, or ok=false after printing
// diagnostics.
func replParse(errOut io.Writer, source string) (*ast.Program, bool) {
	program, diags := frontend(source)
	if diags != nil && strings.Count(source, ";") == 0 {
		if retry, retryDiags := frontend(strings.TrimRight(source, "\n") + ";\n"); retryDiags == nil {
			program, diags = retry, nil
		}
	}
	if diags != nil {
		printDiagsColored(errOut, diags)
		return nil, false
	}
	return program, true
}

// frontend tokenizes, parses and resolves one input. A non-nil
// diagnostic slice means errors were found.
func frontend(source string) (*ast.Program, []diag.Diagnostic) {
	l := lexer.New(source, "<repl>")
	tokens, lexDiags := l.Tokenize()
	if diag.HasErrors(lexDiags) {
		return nil, lexDiags
	}

	p := parser.New(tokens)
	program, parseDiags := p.ParseProgram()
	if diag.HasErrors(parseDiags) {
		return nil, parseDiags
	}

	r := resolver.New()
	if resolveDiags := r.Resolve(program); diag.HasErrors(resolveDiags) {
		return nil, resolveDiags
	}
	return program, nil
}

// soleExpression returns the expression when the program is exactly one
// expression statement, else nil.
func soleExpression(program *ast.Program) ast.Expr {
	if len(program.Body) != 1 {
		return nil
	}
	stmt, ok := program.Body[0].(*ast.ExprStmt)
	if !ok {
		return nil
	}
	return stmt.Expr
}

// printDiagsColored prints diagnostics with red color for REPL display.
func printDiagsColored(w io.Writer, diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s%s%s\n", colorRed, d.String(), colorReset)
	}
}
