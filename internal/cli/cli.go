// Package cli implements Orus's command-line entry point (spec §6: "orus
// [--version|-v] [--trace] [path]"), built the same way the teacher's own
// cmd/nenuphar + internal/maincmd are: a flag-tagged Cmd struct parsed by
// github.com/mna/mainer's Parser, dispatched through mainer.Stdio so tests
// can redirect stdio without touching the real process streams.
//
// Unlike the teacher, Orus's CLI is not subcommand-shaped (no
// parse/resolve/tokenize verbs to dispatch by reflection) — spec §6 gives
// it exactly one positional argument, the script path, defaulting to a
// REPL when absent. Main below keeps every other piece of the teacher's
// pattern (flag struct, mainer.Parser, mainer.CancelOnSignal, exit-code
// table) and replaces only the reflection-based buildCmds dispatch with a
// direct run/repl branch.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/orus-lang/orus/internal/config"
	"github.com/orus-lang/orus/internal/diag"
	"github.com/orus-lang/orus/lang/compiler"
	"github.com/orus-lang/orus/lang/machine"
	"github.com/orus-lang/orus/lang/parser"
	"github.com/orus-lang/orus/lang/scanner"
	"github.com/orus-lang/orus/lang/types"
)

const binName = "orus"

// Exit codes (spec §6).
const (
	ExitSuccess      mainer.ExitCode = 0
	ExitUsage        mainer.ExitCode = 64
	ExitCompileError mainer.ExitCode = 65
	ExitRuntimeError mainer.ExitCode = 70
	ExitIOError      mainer.ExitCode = 74
)

var usage = fmt.Sprintf(`usage: %[1]s [--version|-v] [--trace] [path]
       %[1]s -h|--help

Run the Orus interpreter. With no <path>, starts a REPL.

Valid flag options are:
       -h --help        Show this help and exit.
       -v --version     Print version and exit.
       --trace          Enable instruction tracing.

Environment:
       ORUS_STD_PATH    Overrides the stdlib root.
       ORUS_CACHE_PATH  Overrides the bytecode cache root.
`, binName)

// Cmd is Orus's top-level command, parsed by mainer.Parser the same way
// the teacher's maincmd.Cmd is.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`
	Trace   bool `flag:"trace"`

	args []string
}

// SetArgs is called by mainer.Parser with the remaining positional
// arguments after flags are consumed.
func (c *Cmd) SetArgs(args []string) { c.args = args }

// Validate rejects more than one positional argument (spec §6 takes at
// most one path).
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return fmt.Errorf("too many arguments: %v", c.args[1:])
	}
	return nil
}

// Main parses args and runs the selected mode, returning a process exit
// code from the spec §6 table.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false, // ORUS_* env vars are read by internal/config, not flag binding
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, usage)
		return ExitUsage
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, usage)
		return ExitSuccess
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return ExitSuccess
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "config error: %s\n", err)
		return ExitUsage
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	if len(c.args) == 0 {
		return c.repl(ctx, stdio, cfg)
	}
	return c.run(ctx, stdio, cfg, c.args[0])
}

// run compiles and executes a single script file, mapping the outcome to
// spec §6's exit code table.
func (c *Cmd) run(_ context.Context, stdio mainer.Stdio, _ *config.Config, path string) mainer.ExitCode {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
		return ExitIOError
	}

	chunk, derr := compile(path, string(src))
	if derr != nil {
		fmt.Fprintln(stdio.Stderr, derr)
		return ExitCompileError
	}

	m := machine.New()
	m.Stdout = stdio.Stdout
	m.Stderr = stdio.Stderr
	m.Stdin = stdio.Stdin
	m.Trace = c.Trace

	if _, err := m.Run(path, chunk); err != nil {
		if rerr := m.LastError(); rerr != nil {
			fmt.Fprintln(stdio.Stderr, rerr)
		} else {
			fmt.Fprintln(stdio.Stderr, err)
		}
		return ExitRuntimeError
	}
	return ExitSuccess
}

// repl reads one line at a time from stdin, compiling and running each as
// its own program against a fresh Machine (spec §6: no path starts a
// REPL; persistence of bindings across lines is not specified, so each
// line is self-contained).
func (c *Cmd) repl(_ context.Context, stdio mainer.Stdio, _ *config.Config) mainer.ExitCode {
	fmt.Fprintf(stdio.Stdout, "%s> ", binName)
	sc := bufio.NewScanner(stdio.Stdin)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			fmt.Fprintf(stdio.Stdout, "%s> ", binName)
			continue
		}
		chunk, derr := compile("<repl>", line)
		if derr != nil {
			fmt.Fprintln(stdio.Stderr, derr)
			fmt.Fprintf(stdio.Stdout, "%s> ", binName)
			continue
		}
		m := machine.New()
		m.Stdout = stdio.Stdout
		m.Stderr = stdio.Stderr
		m.Stdin = stdio.Stdin
		m.Trace = c.Trace
		if _, err := m.Run("<repl>", chunk); err != nil {
			if rerr := m.LastError(); rerr != nil {
				fmt.Fprintln(stdio.Stderr, rerr)
			} else {
				fmt.Fprintln(stdio.Stderr, err)
			}
		}
		fmt.Fprintf(stdio.Stdout, "%s> ", binName)
	}
	fmt.Fprintln(stdio.Stdout)
	return ExitSuccess
}

func compile(path, src string) (*compiler.Chunk, *diag.Error) {
	sc := scanner.New(path, src)
	p := parser.New(path, sc)
	chunkAST := p.ParseChunk()
	if p.HadError() {
		errs := p.Errs()
		if len(errs) > 0 {
			return nil, errs[0]
		}
		return nil, diag.New(diag.Parse, diag.Span{File: path}, "failed to parse %q", path)
	}
	chunk, errs := compiler.Compile(path, chunkAST, types.NewRegistry())
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return chunk, nil
}
