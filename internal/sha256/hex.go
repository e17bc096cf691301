package sha256

import (
	"fmt"
	"strings"

	fasthex "github.com/tmthrgd/go-hex"
)

const hextable = "0123456789abcdef"

// ToHex returns the lowercase hexadecimal form of sum, high nibble first.
func ToHex(sum [Size]byte) string {
	var buf [Size * 2]byte
	for i, b := range sum {
		buf[i*2] = hextable[b>>4]
		buf[i*2+1] = hextable[b&0x0f]
	}
	return string(buf[:])
}

// ParseHex decodes a 64-character hexadecimal digest. Upper and lower case
// are both accepted.
func ParseHex(s string) ([Size]byte, error) {
	var sum [Size]byte
	if len(s) != Size*2 {
		return sum, fmt.Errorf("%w: got %d characters, want %d", ErrDigestLength, len(s), Size*2)
	}
	if _, err := fasthex.Decode(sum[:], []byte(strings.ToLower(s))); err != nil {
		return [Size]byte{}, fmt.Errorf("decode digest: %w", err)
	}
	return sum, nil
}
