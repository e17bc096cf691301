package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"shacheck/internal/hash"
	"shacheck/internal/sha256"
)

const defaultOpenSSL = "openssl"

// OpenSSL runs `openssl dgst -sha256 -r` out of process with the input on
// its stdin.
type OpenSSL struct {
	path string
}

// NewOpenSSL creates an OpenSSL oracle. An empty path means "openssl" on
// PATH.
func NewOpenSSL(path string) OpenSSL {
	if path == "" {
		path = defaultOpenSSL
	}
	return OpenSSL{path: path}
}

// Name implements Oracle.
func (o OpenSSL) Name() string { return "openssl" }

// Sum implements Oracle.
func (o OpenSSL) Sum(ctx context.Context, in hash.Input) ([sha256.Size]byte, error) {
	var sum [sha256.Size]byte
	bin, err := exec.LookPath(o.path)
	if err != nil {
		return sum, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	rc, err := in.Open()
	if err != nil {
		return sum, err
	}
	defer rc.Close()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "dgst", "-sha256", "-r")
	cmd.Stdin = rc
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return sum, fmt.Errorf("openssl exited %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return sum, fmt.Errorf("run openssl: %w", err)
	}
	return parseDigestLine(stdout.String())
}

// parseDigestLine extracts the digest from "<hex> *stdin" style output.
func parseDigestLine(out string) ([sha256.Size]byte, error) {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return [sha256.Size]byte{}, errors.New("openssl produced no output")
	}
	sum, err := sha256.ParseHex(fields[0])
	if err != nil {
		return sum, fmt.Errorf("parse openssl output: %w", err)
	}
	return sum, nil
}
