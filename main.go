package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&replCmd{}, "")

	// spec.md §6's CLI surface predates the subcommand split: zero
	// arguments means the interactive REPL, one argument means a script
	// path. A caller who never learns "nilan repl"/"nilan run" exists still
	// gets that surface; a caller who does gets the full subcommand set.
	args := os.Args[1:]
	switch {
	case len(args) == 0:
		os.Exit(int((&replCmd{}).Execute(context.Background(), flag.NewFlagSet("repl", flag.ExitOnError))))
	case len(args) == 1 && args[0][0] != '-' && !isKnownSubcommand(args[0]):
		f := flag.NewFlagSet("run", flag.ExitOnError)
		f.Parse(args)
		os.Exit(int((&runCmd{}).Execute(context.Background(), f)))
	default:
		flag.Parse()
		status := subcommands.Execute(context.Background())
		if status == subcommands.ExitUsageError {
			status = subcommands.ExitStatus(64)
		}
		os.Exit(int(status))
	}
}

func isKnownSubcommand(name string) bool {
	switch name {
	case "run", "repl", "help", "flags", "commands":
		return true
	}
	return false
}
