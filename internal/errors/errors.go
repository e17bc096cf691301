// Package errors defines application errors and exit code mapping.
package errors

import sterrors "errors"

var (
	// ErrUsage indicates a command usage failure.
	ErrUsage = sterrors.New("usage error")
	// ErrMismatch indicates a digest disagreed with an oracle or expectation.
	ErrMismatch = sterrors.New("digest mismatch")
	// ErrLockBusy indicates another process holds a checkpoint lock.
	ErrLockBusy = sterrors.New("checkpoint locked")
)

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	if sterrors.Is(err, ErrUsage) {
		return 2
	}

	if sterrors.Is(err, ErrMismatch) {
		return 3
	}

	return 1
}
