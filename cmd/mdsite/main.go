package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// commands maps command names to their implementation.
var commands = map[string]func(context.Context, []string, *Environment) error{
	"build": runBuild,
	"feed":  runFeed,
	"watch": runWatch,
}

// isCommand reports whether name is a known command.
func isCommand(name string) bool {
	switch name {
	case "version", "help":
		return true
	}
	_, ok := commands[name]
	return ok
}

// runMain dispatches the command in args and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	name, rest := args[1], args[2:]
	var err error

	switch {
	case name == "version" || name == "--version":
		fmt.Fprintf(env.Stdout, "mdsite %s\n", Version)
		return ExitSuccess
	case name == "help" || name == "--help" || name == "-h":
		err = runHelp(rest, env)
	case isCommand(name):
		ctx, stop := notifyContext(context.Background())
		defer stop()
		err = commands[name](ctx, rest, env)
	default:
		printUsage(env.Stderr)
		err = fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		NewPrinter(env.Stdout, env.Stderr, resolveColor("auto", env.Stderr), false).Error(err)
	}
	return exitCodeFor(err)
}
