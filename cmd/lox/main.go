// Command lox is the CLI entry point for the lox-lang toolchain.
//
// Usage:
//
//	lox tokens <file>            Print tokens
//	lox tokens <file> --json     Print tokens as JSON
//	lox parse  <file>            Print AST as JSON
//	lox run    <file>            Run a source file
//	lox repl                     Start interactive REPL
//
// Every command accepts --debug, which traces pipeline stages to stderr.
package main

import (
	"fmt"
	"os"
	"time"

	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"lox-lang/internal/resolver"
	"lox-lang/internal/runtime"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func main() {
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if hasFlag("--debug") {
		log.SetLevel(logrus.DebugLevel)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "tokens":
		source := readFileArg()
		cmdTokens(source, os.Args[2], hasFlag("--json"))
	case "parse":
		source := readFileArg()
		cmdParse(source, os.Args[2])
	case "run":
		source := readFileArg()
		cmdRun(source, os.Args[2])
	case "repl":
		cmdRepl()
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command '%s'\n", command)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lox tokens <file> [--json]   Tokenize and print tokens")
	fmt.Fprintln(os.Stderr, "  lox parse  <file>            Parse and print AST (JSON)")
	fmt.Fprintln(os.Stderr, "  lox run    <file>            Run a source file")
	fmt.Fprintln(os.Stderr, "  lox repl                     Start interactive REPL")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	fmt.Fprintln(os.Stderr, "  --debug                      Trace pipeline stages to stderr")
}

func readFileArg() string {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "error: missing file argument")
		os.Exit(1)
	}
	source, err := os.ReadFile(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read file %s: %v\n", os.Args[2], err)
		os.Exit(1)
	}
	return string(source)
}

func hasFlag(flag string) bool {
	for _, arg := range os.Args[1:] {
		if arg == flag {
			return true
		}
	}
	return false
}

// ---- tokens command ----

func cmdTokens(source, filename string, jsonMode bool) {
	l := lexer.New(source, filename)
	tokens, diags := l.Tokenize()
	log.WithFields(logrus.Fields{"tokens": len(tokens), "errors": len(diags)}).Debug("lex done")

	if jsonMode {
		printTokensJSON(tokens, diags)
	} else {
		printTokensText(tokens, diags)
	}

	if diag.HasErrors(diags) {
		os.Exit(1)
	}
}

// ---- parse command ----

func cmdParse(source, filename string) {
	l := lexer.New(source, filename)
	tokens, lexDiags := l.Tokenize()
	log.WithFields(logrus.Fields{"tokens": len(tokens), "errors": len(lexDiags)}).Debug("lex done")

	p := parser.New(tokens)
	program, parseDiags := p.ParseProgram()
	log.WithFields(logrus.Fields{"stmts": len(program.Body), "errors": len(parseDiags)}).Debug("parse done")

	allDiags := append(lexDiags, parseDiags...)

	output := map[string]interface{}{
		"ast":         ast.NodeToMap(program),
		"diagnostics": diagsToSlice(allDiags),
	}
	printJSON(output)

	if diag.HasErrors(allDiags) {
		os.Exit(1)
	}
}

// ---- run command ----

func cmdRun(source, filename string) {
	start := time.Now()

	l := lexer.New(source, filename)
	tokens, lexDiags := l.Tokenize()
	log.WithFields(logrus.Fields{"tokens": len(tokens), "errors": len(lexDiags)}).Debug("lex done")
	if diag.HasErrors(lexDiags) {
		printDiagsText(lexDiags)
		os.Exit(1)
	}

	p := parser.New(tokens)
	program, parseDiags := p.ParseProgram()
	log.WithFields(logrus.Fields{"stmts": len(program.Body), "errors": len(parseDiags)}).Debug("parse done")
	if diag.HasErrors(parseDiags) {
		printDiagsText(parseDiags)
		os.Exit(1)
	}

	r := resolver.New()
	resolveDiags := r.Resolve(program)
	log.WithFields(logrus.Fields{"errors": len(resolveDiags)}).Debug("resolve done")
	if diag.HasErrors(resolveDiags) {
		printDiagsText(resolveDiags)
		os.Exit(1)
	}

	interp := runtime.New(os.Stdout)
	err := interp.Run(program)
	log.WithField("elapsed", time.Since(start)).Debug("run done")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
