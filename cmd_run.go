package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"nilan/config"
	"nilan/natives"
	"nilan/vm"
)

// runCmd implements `nilan run <file>`: compile and execute a script,
// exiting with the code spec.md §6 assigns to each outcome.
type runCmd struct {
	configPath string
	gcStats    bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute Nilan code from a source file" }
func (*runCmd) Usage() string {
	return `run <file>:
  Compile and execute a Nilan script.
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.configPath, "config", "", "path to a YAML config file (defaults to ./nilan.yaml if present)")
	f.BoolVar(&r.gcStats, "gcstats", false, "print garbage collector statistics to stderr after running")
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitStatus(64)
	}
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitStatus(74)
	}

	cfg := loadConfig(r.configPath)
	v := vm.New(cfg)
	natives.Register(v)

	result := v.Interpret(string(data))
	if r.gcStats {
		fmt.Fprintf(os.Stderr, "🤖 gc: %s\n", v.GCStats())
	}

	switch result {
	case vm.InterpretCompileError:
		return subcommands.ExitStatus(65)
	case vm.InterpretRuntimeError:
		return subcommands.ExitStatus(70)
	default:
		return subcommands.ExitStatus(0)
	}
}

// loadConfig reads configPath if given, else ./nilan.yaml if present, else
// falls back to spec.md's hardcoded defaults (A.3).
func loadConfig(configPath string) config.Config {
	path := configPath
	if path == "" {
		if _, err := os.Stat("nilan.yaml"); err == nil {
			path = "nilan.yaml"
		}
	}
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to load config %q: %v\n", path, err)
		return config.Default()
	}
	return cfg
}
