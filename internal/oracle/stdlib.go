package oracle

import (
	"context"
	stdsha256 "crypto/sha256"
	"fmt"
	"io"

	"shacheck/internal/hash"
	"shacheck/internal/sha256"
)

// Stdlib hashes with the Go standard library in process.
type Stdlib struct{}

// Name implements Oracle.
func (Stdlib) Name() string { return "stdlib" }

// Sum implements Oracle.
func (Stdlib) Sum(_ context.Context, in hash.Input) ([sha256.Size]byte, error) {
	var sum [sha256.Size]byte
	rc, err := in.Open()
	if err != nil {
		return sum, err
	}
	defer rc.Close()

	h := stdsha256.New()
	if _, err := io.Copy(h, rc); err != nil {
		return sum, fmt.Errorf("stdlib oracle read %s: %w", in.Name, err)
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
