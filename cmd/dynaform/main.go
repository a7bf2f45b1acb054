package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, env *cliEnv, args []string) error
}

// cliEnv carries the process streams so commands can be exercised in tests.
type cliEnv struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// errInvalid marks a command that ran but found problems (invalid values,
// lint violations). It maps to a non-zero exit without an extra message.
var errInvalid = errors.New("invalid input")

func commands() []command {
	return []command{
		{name: "serve", summary: "serve the form over HTTP", run: runServe},
		{name: "fill", summary: "fill in the form in the terminal", run: runFill},
		{name: "render", summary: "render the form as a standalone HTML page", run: runRender},
		{name: "check", summary: "validate a JSON object of values against the form", run: runCheck},
		{name: "schema", summary: "print the JSON Schema of form configuration files", run: runSchema},
		{name: "openapi", summary: "export the form as an OpenAPI document", run: runOpenAPI},
		{name: "lint", summary: "lint x-dynaform extensions in OpenAPI documents", run: runLint},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, &cliEnv{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, env *cliEnv, args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(env.stderr)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}

	for _, cmd := range commands() {
		if cmd.name != args[0] {
			continue
		}
		err := cmd.run(ctx, env, args[1:])
		switch {
		case err == nil:
			return exitOK
		case errors.Is(err, flag.ErrHelp):
			return exitOK
		case errors.Is(err, errInvalid):
			return exitFailure
		case errors.Is(err, errUsage):
			fmt.Fprintf(env.stderr, "%s: %v\n", cmd.name, err)
			return exitUsage
		default:
			fmt.Fprintf(env.stderr, "%s: %v\n", cmd.name, err)
			return exitFailure
		}
	}

	fmt.Fprintf(env.stderr, "unknown command %q\n\n", args[0])
	usage(env.stderr)
	return exitUsage
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s <command> [flags]\n\nCommands:\n", filepath.Base(os.Args[0]))
	for _, cmd := range commands() {
		fmt.Fprintf(w, "  %-8s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintf(w, "\nRun '%s <command> -h' for command flags.\n", filepath.Base(os.Args[0]))
}
