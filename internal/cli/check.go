package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"shacheck/internal/config"
	apperrors "shacheck/internal/errors"
	"shacheck/internal/hash"
	"shacheck/internal/oracle"
	"shacheck/internal/sha256"
)

const checkUsage = "Hash one input with the built-in engine and compare the digest with\nreference implementations and an optional expected value.\n\nUsage:\n  shacheck check [flags] [FILE]\n\nWith no FILE, or when FILE is -, read standard input."

func (r *RootCommand) runCheck(ctx context.Context, args []string) error {
	fs := newFlagSet("check")
	var global globalFlags
	text := fs.StringP("text", "t", "", "check this string instead of a file")
	oracles := fs.StringSlice("oracle", nil, "oracles to compare against ("+strings.Join(oracle.Names(), ", ")+")")
	expect := fs.String("expect", "", "expected hex digest")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	timeout := fs.Duration("timeout", 30*time.Second, "time limit for external oracles")
	global.register(fs)
	if done, err := r.parseFlags(fs, args, checkUsage); done || err != nil {
		return err
	}

	cfg, logger, err := global.load(fs, r.errOut)
	if err != nil {
		return err
	}
	if fs.Changed("oracle") {
		cfg.Oracles = *oracles
	}
	if *asJSON {
		cfg.Output = config.OutputJSON
	}

	var want *[sha256.Size]byte
	if fs.Changed("expect") {
		sum, err := sha256.ParseHex(strings.TrimSpace(*expect))
		if err != nil {
			return fmt.Errorf("--expect: %w: %w", err, apperrors.ErrUsage)
		}
		want = &sum
	}

	refs, err := oracle.LookupAll(cfg.Oracles, oracle.Options{OpenSSLPath: cfg.OpenSSLPath})
	if err != nil {
		return fmt.Errorf("%w: %w", err, apperrors.ErrUsage)
	}

	var in hash.Input
	switch {
	case fs.Changed("text"):
		if fs.NArg() > 0 {
			return fmt.Errorf("--text cannot be combined with a file argument: %w", apperrors.ErrUsage)
		}
		in = hash.Text(strconv.Quote(*text), *text)
	case fs.NArg() > 1:
		return fmt.Errorf("check accepts at most one file argument: %w", apperrors.ErrUsage)
	default:
		inputs, err := r.fileInputs(fs.Args(), true)
		if err != nil {
			return err
		}
		in = inputs[0]
	}

	engine, err := hash.Source(in, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	report := oracle.Compare(ctx, logger, engine, in, refs, want)

	if strings.EqualFold(cfg.Output, config.OutputJSON) {
		if err := writeJSON(r.out, report); err != nil {
			return err
		}
	} else if err := writeReport(r.out, report); err != nil {
		return err
	}

	if report.Mismatched() {
		return fmt.Errorf("%s: %w", report.Input, apperrors.ErrMismatch)
	}
	return nil
}

func writeReport(w io.Writer, report oracle.Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "input:  %s (%d bytes)\n", report.Input, report.Bytes)
	fmt.Fprintf(&b, "engine: %s\n", report.Digest)
	for _, res := range report.Results {
		line := fmt.Sprintf("  %-9s %s", res.Oracle+":", res.Status)
		switch res.Status {
		case oracle.StatusMismatch:
			line += " " + res.Digest
		case oracle.StatusSkipped, oracle.StatusError:
			line += " (" + res.Detail + ")"
		}
		b.WriteString(line + "\n")
	}
	if _, err := fmt.Fprint(w, b.String()); err != nil {
		return fmt.Errorf("write check report: %w", err)
	}
	return nil
}
