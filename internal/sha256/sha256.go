// Package sha256 implements the SHA-256 hash algorithm as defined in
// FIPS 180-4.
//
// A Digest absorbs input incrementally through Write or Update and produces
// a 32-byte sum through Finalize. The result does not depend on how the input
// was split across calls. A Digest is not safe for concurrent use; hash
// independent inputs with independent Digests.
package sha256

import (
	"encoding"
	"errors"
	"hash"
)

const (
	// Size is the size of a SHA-256 checksum in bytes.
	Size = 32
	// BlockSize is the block size of SHA-256 in bytes.
	BlockSize = 64
)

const (
	init0 = 0x6a09e667
	init1 = 0xbb67ae85
	init2 = 0x3c6ef372
	init3 = 0xa54ff53a
	init4 = 0x510e527f
	init5 = 0x9b05688c
	init6 = 0x1f83d9ab
	init7 = 0x5be0cd19
)

var (
	// ErrFinalized is returned when a Digest is written to or finalized
	// again after Finalize without an intervening Reset.
	ErrFinalized = errors.New("sha256: digest already finalized")
	// ErrInvalidState is returned when a checkpoint cannot be restored.
	ErrInvalidState = errors.New("sha256: invalid hash state")
	// ErrDigestLength is returned when a hex digest is not 64 characters.
	ErrDigestLength = errors.New("sha256: invalid digest length")
)

var (
	_ hash.Hash                  = (*Digest)(nil)
	_ encoding.BinaryMarshaler   = (*Digest)(nil)
	_ encoding.BinaryUnmarshaler = (*Digest)(nil)
)

// Digest holds the running state of one hashing session.
type Digest struct {
	h         [8]uint32
	x         [BlockSize]byte
	nx        int
	len       uint64
	finalized bool
}

// New returns a Digest ready to absorb input.
func New() *Digest {
	d := new(Digest)
	d.Reset()
	return d
}

// Reset returns d to its initial state, discarding any absorbed input.
func (d *Digest) Reset() {
	d.h = [8]uint32{init0, init1, init2, init3, init4, init5, init6, init7}
	d.x = [BlockSize]byte{}
	d.nx = 0
	d.len = 0
	d.finalized = false
}

// Size returns the number of bytes Sum appends.
func (d *Digest) Size() int { return Size }

// BlockSize returns the hash's underlying block size.
func (d *Digest) BlockSize() int { return BlockSize }

// Write absorbs p into the hash state. It never absorbs a partial p: after
// Finalize it returns 0 and ErrFinalized.
func (d *Digest) Write(p []byte) (int, error) {
	if d.finalized {
		return 0, ErrFinalized
	}
	nn := len(p)
	d.len += uint64(nn)
	if d.nx > 0 {
		n := copy(d.x[d.nx:], p)
		d.nx += n
		if d.nx < BlockSize {
			return nn, nil
		}
		block(d, d.x[:])
		d.nx = 0
		p = p[n:]
	}
	if len(p) >= BlockSize {
		n := len(p) &^ (BlockSize - 1)
		block(d, p[:n])
		p = p[n:]
	}
	if len(p) > 0 {
		d.nx = copy(d.x[:], p)
	}
	return nn, nil
}

// Update is Write without the byte count.
func (d *Digest) Update(p []byte) error {
	_, err := d.Write(p)
	return err
}

// Finalize pads the message, processes the final block and returns the
// checksum. The Digest must be Reset before it can be used again.
func (d *Digest) Finalize() ([Size]byte, error) {
	if d.finalized {
		return [Size]byte{}, ErrFinalized
	}
	sum := d.checkSum()
	d.finalized = true
	return sum, nil
}

// Sum appends the checksum of the input absorbed so far to b. Unlike
// Finalize it works on a copy, so d can keep absorbing input afterwards.
// Sum panics if d has been finalized.
func (d *Digest) Sum(b []byte) []byte {
	if d.finalized {
		panic(ErrFinalized)
	}
	d0 := *d
	sum := d0.checkSum()
	return append(b, sum[:]...)
}

func (d *Digest) checkSum() [Size]byte {
	bits := d.len << 3

	d.x[d.nx] = 0x80
	d.nx++
	if d.nx > 56 {
		clear(d.x[d.nx:])
		block(d, d.x[:])
		d.nx = 0
	}
	clear(d.x[d.nx:56])

	d.x[56] = byte(bits >> 56)
	d.x[57] = byte(bits >> 48)
	d.x[58] = byte(bits >> 40)
	d.x[59] = byte(bits >> 32)
	d.x[60] = byte(bits >> 24)
	d.x[61] = byte(bits >> 16)
	d.x[62] = byte(bits >> 8)
	d.x[63] = byte(bits)
	block(d, d.x[:])
	d.nx = 0

	var out [Size]byte
	for i, s := range d.h {
		out[i*4] = byte(s >> 24)
		out[i*4+1] = byte(s >> 16)
		out[i*4+2] = byte(s >> 8)
		out[i*4+3] = byte(s)
	}
	return out
}

// Sum256 returns the SHA-256 checksum of data.
func Sum256(data []byte) [Size]byte {
	var d Digest
	d.Reset()
	_, _ = d.Write(data)
	return d.checkSum()
}
