package natives

import (
	"os"

	"github.com/mattn/go-isatty"

	"nilan/value"
)

// IsTerminal reports whether the host process's stdout is attached to a
// terminal, letting a script suppress ANSI-assuming output when it isn't
// (piped into a file, running under CI). The CLI driver (cmd_repl.go) makes
// its own go-isatty check, on stdin, to choose between readline and a bare
// scanner.
func IsTerminal(host any, args []value.Value) (value.Value, error) {
	return value.Bool(isatty.IsTerminal(os.Stdout.Fd())), nil
}
