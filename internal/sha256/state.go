package sha256

import (
	"encoding/binary"
	"fmt"
)

const (
	magic         = "sha\x03"
	marshaledSize = len(magic) + 8*4 + BlockSize + 8
)

// Len returns the number of bytes absorbed since the last Reset.
func (d *Digest) Len() int64 { return int64(d.len) }

// MarshalBinary checkpoints the running state so hashing can be resumed
// later with UnmarshalBinary.
func (d *Digest) MarshalBinary() ([]byte, error) {
	if d.finalized {
		return nil, ErrFinalized
	}
	b := make([]byte, 0, marshaledSize)
	b = append(b, magic...)
	for _, s := range d.h {
		b = binary.BigEndian.AppendUint32(b, s)
	}
	b = append(b, d.x[:d.nx]...)
	b = append(b, make([]byte, len(d.x)-d.nx)...)
	b = binary.BigEndian.AppendUint64(b, d.len)
	return b, nil
}

// UnmarshalBinary restores a state produced by MarshalBinary.
func (d *Digest) UnmarshalBinary(b []byte) error {
	if len(b) < len(magic) || string(b[:len(magic)]) != magic {
		return fmt.Errorf("%w: identifier mismatch", ErrInvalidState)
	}
	if len(b) != marshaledSize {
		return fmt.Errorf("%w: size %d, want %d", ErrInvalidState, len(b), marshaledSize)
	}
	b = b[len(magic):]
	for i := range d.h {
		d.h[i] = binary.BigEndian.Uint32(b)
		b = b[4:]
	}
	b = b[copy(d.x[:], b):]
	d.len = binary.BigEndian.Uint64(b)
	d.nx = int(d.len % BlockSize)
	d.finalized = false
	return nil
}
