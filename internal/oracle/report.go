package oracle

import (
	"context"
	"errors"
	"log/slog"

	"shacheck/internal/hash"
	"shacheck/internal/sha256"
)

// Status is the outcome of one comparison.
type Status string

const (
	StatusMatch    Status = "match"
	StatusMismatch Status = "mismatch"
	StatusSkipped  Status = "skipped"
	StatusError    Status = "error"
)

// Result is one oracle's verdict on an engine digest.
type Result struct {
	Oracle string `json:"oracle"`
	Status Status `json:"status"`
	Digest string `json:"digest,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Report collects the verdicts for one input.
type Report struct {
	Input   string   `json:"input"`
	Bytes   int64    `json:"bytes"`
	Digest  string   `json:"digest"`
	Results []Result `json:"results"`
}

// Mismatched reports whether any oracle or expectation disagreed.
func (r Report) Mismatched() bool {
	for _, res := range r.Results {
		if res.Status == StatusMismatch {
			return true
		}
	}
	return false
}

// Compare checks engine against each oracle in order. expect, when
// non-nil, is compared as an extra "expected" verdict.
func Compare(ctx context.Context, logger *slog.Logger, engine hash.Result, in hash.Input, oracles []Oracle, expect *[sha256.Size]byte) Report {
	report := Report{
		Input:   engine.Name,
		Bytes:   engine.Bytes,
		Digest:  engine.Hex(),
		Results: make([]Result, 0, len(oracles)+1),
	}
	if expect != nil {
		report.Results = append(report.Results, verdict("expected", engine.Sum, *expect))
	}
	for _, o := range oracles {
		sum, err := o.Sum(ctx, in)
		switch {
		case errors.Is(err, ErrUnavailable):
			logger.Debug("oracle skipped", "oracle", o.Name(), "err", err)
			report.Results = append(report.Results, Result{Oracle: o.Name(), Status: StatusSkipped, Detail: err.Error()})
		case err != nil:
			logger.Warn("oracle failed", "oracle", o.Name(), "input", in.Name, "err", err)
			report.Results = append(report.Results, Result{Oracle: o.Name(), Status: StatusError, Detail: err.Error()})
		default:
			res := verdict(o.Name(), engine.Sum, sum)
			logger.Debug("oracle compared", "oracle", o.Name(), "input", in.Name, "status", res.Status)
			report.Results = append(report.Results, res)
		}
	}
	return report
}

func verdict(name string, got, want [sha256.Size]byte) Result {
	status := StatusMatch
	if got != want {
		status = StatusMismatch
	}
	return Result{Oracle: name, Status: status, Digest: sha256.ToHex(want)}
}
