package cli

import (
	"context"
	"fmt"
	"io"

	"shacheck/internal/buildinfo"
	apperrors "shacheck/internal/errors"
)

// NewVersionCommand creates the version subcommand.
func NewVersionCommand(out io.Writer) Command {
	return Command{
		name:    "version",
		summary: "Print version information",
		run: func(_ context.Context, args []string) error {
			fs := newFlagSet("version")
			asJSON := fs.Bool("json", false, "print build metadata as JSON")
			if err := fs.Parse(args); err != nil {
				return fmt.Errorf("parse version flags: %w: %w", err, apperrors.ErrUsage)
			}
			if fs.NArg() > 0 {
				return fmt.Errorf("version accepts no arguments: %w", apperrors.ErrUsage)
			}

			info := buildinfo.Get()
			if *asJSON {
				return writeJSON(out, info)
			}
			if _, err := fmt.Fprintln(out, info.String()); err != nil {
				return fmt.Errorf("write version output: %w", err)
			}

			return nil
		},
	}
}
