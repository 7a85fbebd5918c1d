package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// commands lists the subcommands runMain dispatches.
var commands = []string{"generate", "doctor", "version", "help"}

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(maxprocsLogger(hasVerboseFlag(os.Args), os.Stderr)))

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// maxprocsLogger prints GOMAXPROCS adjustments only in verbose mode.
func maxprocsLogger(verbose bool, w io.Writer) func(string, ...interface{}) {
	if !verbose {
		return func(string, ...interface{}) {}
	}
	return func(format string, args ...interface{}) {
		fmt.Fprintf(w, format+"\n", args...)
	}
}

func hasVerboseFlag(args []string) bool {
	return slices.Contains(args, "-v") || slices.Contains(args, "--verbose")
}

// isCommand reports whether name is a known subcommand.
func isCommand(name string) bool {
	return slices.Contains(commands, name)
}

// runMain dispatches args[1] and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "generate":
		return runGenerateCmd(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "md2tex %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, env)
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// runGenerateCmd parses generate flags and runs the batch under a
// signal-aware context.
func runGenerateCmd(args []string, env *Environment) int {
	flags, positional, err := parseGenerateFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	warnUnknownEnvVars(env.Stderr)

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runGenerate(ctx, positional, flags, env); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runHelp prints general usage or the usage of one command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	switch args[0] {
	case "generate":
		printGenerateUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version", "help":
		printUsage(env.Stdout)
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
