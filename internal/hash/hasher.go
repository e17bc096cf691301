// Package hash provides streaming SHA-256 helpers for files, stdin and text.
package hash

import (
	"errors"
	"fmt"
	"io"

	"shacheck/internal/sha256"
)

const chunkSize = 32 * 1024

// Hasher wraps one incremental hashing session.
type Hasher struct {
	d *sha256.Digest
}

// New creates a new 32-byte digest hasher.
func New() *Hasher {
	return &Hasher{d: sha256.New()}
}

// Resume recreates a Hasher from a state produced by Checkpoint.
func Resume(state []byte) (*Hasher, error) {
	d := sha256.New()
	if err := d.UnmarshalBinary(state); err != nil {
		return nil, err
	}
	return &Hasher{d: d}, nil
}

// Checkpoint serializes the running state without finalizing it.
func (h *Hasher) Checkpoint() ([]byte, error) { return h.d.MarshalBinary() }

// Write adds data to the hash state.
func (h *Hasher) Write(p []byte) (int, error) { return h.d.Write(p) }

// Len returns the number of bytes hashed so far.
func (h *Hasher) Len() int64 { return h.d.Len() }

// Sum finalizes the session and returns the raw 32-byte digest.
func (h *Hasher) Sum() ([sha256.Size]byte, error) { return h.d.Finalize() }

// SumHex finalizes the session and returns the lowercase hex digest.
func (h *Hasher) SumHex() (string, error) {
	sum, err := h.Sum()
	if err != nil {
		return "", err
	}
	return sha256.ToHex(sum), nil
}

// Consume hashes r until EOF. When onChunk is non-nil it is called with
// the running byte count after every chunk.
func (h *Hasher) Consume(r io.Reader, onChunk func(total uint64)) (int64, error) {
	buf := make([]byte, chunkSize)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := h.d.Write(buf[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
			if onChunk != nil {
				onChunk(uint64(total))
			}
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("read input: %w", err)
		}
	}
}

// Source returns the digest of everything src yields.
func Source(src Input, onChunk func(total uint64)) (Result, error) {
	rc, err := src.Open()
	if err != nil {
		return Result{}, err
	}
	defer rc.Close()

	h := New()
	n, err := h.Consume(rc, onChunk)
	if err != nil {
		return Result{}, fmt.Errorf("hash %s: %w", src.Name, err)
	}
	sum, err := h.Sum()
	if err != nil {
		return Result{}, err
	}
	return Result{Name: src.Name, Bytes: n, Sum: sum}, nil
}
