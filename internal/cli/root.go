// Package cli implements shacheck command-line parsing and commands.
package cli

import (
	"context"
	"fmt"
	"io"

	apperrors "shacheck/internal/errors"
)

// Command represents an executable CLI command.
type Command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string) error
}

// Name returns the command name.
func (c Command) Name() string { return c.name }

// RootCommand handles argument parsing for the shacheck CLI.
type RootCommand struct {
	out      io.Writer
	errOut   io.Writer
	in       io.Reader
	commands []Command
	args     []string
}

// NewRootCommand creates the shacheck root command.
func NewRootCommand(out io.Writer, errOut io.Writer, in io.Reader) *RootCommand {
	root := &RootCommand{out: out, errOut: errOut, in: in}
	root.commands = []Command{
		{name: "check", summary: "Hash one input and cross-check it against reference implementations", run: root.runCheck},
		{name: "hash", summary: "Print SHA-256 digests of text, files or stdin", run: root.runHash},
		{name: "vectors", summary: "Run the built-in FIPS 180-4 test vectors", run: root.runVectors},
		NewVersionCommand(out),
	}
	return root
}

// SetArgs sets command arguments.
func (r *RootCommand) SetArgs(args []string) { r.args = args }

// Commands returns configured subcommands.
func (r *RootCommand) Commands() []Command { return r.commands }

// Execute parses and runs commands.
func (r *RootCommand) Execute() error {
	return r.ExecuteContext(context.Background())
}

// ExecuteContext parses and runs commands; ctx bounds external oracle runs.
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	if len(r.args) == 0 {
		return r.printHelp()
	}
	switch r.args[0] {
	case "-h", "--help", "help":
		return r.printHelp()
	}
	for _, command := range r.commands {
		if command.name == r.args[0] {
			return command.run(ctx, r.args[1:])
		}
	}
	if _, err := fmt.Fprintf(r.errOut, "unknown command %q\n", r.args[0]); err != nil {
		return fmt.Errorf("write unknown command error: %w", err)
	}
	if err := r.printHelp(); err != nil {
		return err
	}
	return fmt.Errorf("unknown command: %s: %w", r.args[0], apperrors.ErrUsage)
}

func (r *RootCommand) printHelp() error {
	help := "shacheck computes SHA-256 digests and cross-checks them\n\nUsage:\n  shacheck [command]\n\nAvailable Commands:\n"
	for _, command := range r.commands {
		help += fmt.Sprintf("  %-8s %s\n", command.name, command.summary)
	}
	help += "\nFlags:\n  -h, --help  help for shacheck\n\nUse \"shacheck [command] --help\" for more information about a command.\n"
	if _, err := fmt.Fprint(r.out, help); err != nil {
		return fmt.Errorf("write help output: %w", err)
	}
	return nil
}
