package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
	"github.com/mattn/go-isatty"

	"nilan/lexer"
	"nilan/natives"
	"nilan/token"
	"nilan/vm"
)

// replCmd implements `nilan repl`: an interactive, line-at-a-time session
// that prints the value of the last expression after each line, per
// spec.md §6. Input is read with readline when stdin is a terminal, and
// with a bare bufio.Scanner otherwise (piped input, CI).
type replCmd struct {
	configPath string
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive Nilan session" }
func (*replCmd) Usage() string {
	return `repl:
  Start the interactive REPL.
`
}

func (r *replCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.configPath, "config", "", "path to a YAML config file (defaults to ./nilan.yaml if present)")
}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("\nWelcome to the Nilan programming language!")

	v := vm.New(loadConfig(r.configPath))
	natives.Register(v)

	if isatty.IsTerminal(os.Stdin.Fd()) {
		runReadlineLoop(v)
	} else {
		runScannerLoop(v, os.Stdin, os.Stdout)
	}
	return subcommands.ExitSuccess
}

func runReadlineLoop(v *vm.VM) {
	rl, err := readline.New("> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to start readline: %v\n", err)
		runScannerLoop(v, os.Stdin, os.Stdout)
		return
	}
	defer rl.Close()

	var buffer strings.Builder
	for {
		if buffer.Len() == 0 {
			rl.SetPrompt("> ")
		} else {
			rl.SetPrompt("... ")
		}
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return
		}
		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return
		}
		if !feedLine(v, &buffer, line) {
			continue
		}
	}
}

func runScannerLoop(v *vm.VM, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	var buffer strings.Builder
	for {
		if buffer.Len() == 0 {
			fmt.Fprint(out, "> ")
		} else {
			fmt.Fprint(out, "... ")
		}
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return
		}
		feedLine(v, &buffer, line)
	}
}

// feedLine appends line to buffer and, once the accumulated source has
// balanced braces, compiles and runs it, printing the last-expression value
// per OQ-3. It returns false while still waiting for more lines.
func feedLine(v *vm.VM, buffer *strings.Builder, line string) bool {
	if buffer.Len() == 0 && strings.TrimSpace(line) == ":gc" {
		fmt.Println(v.GCStats())
		return true
	}

	if buffer.Len() > 0 {
		buffer.WriteString("\n")
	}
	buffer.WriteString(line)
	source := buffer.String()

	lex := lexer.New(source)
	tokens, err := lex.Scan()
	if err != nil {
		fmt.Println(err)
		buffer.Reset()
		return true
	}
	if !bracesBalanced(tokens) {
		return false
	}

	result := v.Interpret(source)
	if result == vm.InterpretOK {
		fmt.Println(v.LastValue().String())
	}
	buffer.Reset()
	return true
}

// bracesBalanced reports whether source has no unmatched opening brace,
// the REPL's signal to keep prompting for more lines (a multi-line `if`,
// function, or class body) instead of compiling a truncated statement.
func bracesBalanced(tokens []token.Token) bool {
	depth := 0
	for _, tok := range tokens {
		switch tok.TokenType {
		case token.LCUR:
			depth++
		case token.RCUR:
			depth--
		}
	}
	return depth <= 0
}
