package hash

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"shacheck/internal/sha256"
)

// StdinName is the display name used for standard input.
const StdinName = "-"

// Input is a re-openable byte source. Oracles re-read the same input, so
// Open must yield identical bytes on every call.
type Input struct {
	Name string
	// Path is set for inputs backed by a regular file.
	Path string
	// Size is the total length in bytes, or -1 when unknown.
	Size int64
	Open func() (io.ReadCloser, error)
}

// Result is the digest of one Input.
type Result struct {
	Name  string
	Bytes int64
	Sum   [sha256.Size]byte
}

// Hex returns the lowercase hex form of the digest.
func (r Result) Hex() string { return sha256.ToHex(r.Sum) }

// Text wraps an in-memory string.
func Text(name, s string) Input {
	return Input{
		Name: name,
		Size: int64(len(s)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(s)), nil },
	}
}

// File wraps a path on disk.
func File(path string) (Input, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Input{}, fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return Input{}, fmt.Errorf("input %s is a directory", path)
	}
	return Input{
		Name: path,
		Path: path,
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("open input: %w", err)
			}
			return f, nil
		},
	}, nil
}

// Reader buffers r fully so it can be opened more than once. It is meant
// for stdin, which cannot be rewound.
func Reader(name string, r io.Reader) (Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Input{}, fmt.Errorf("read %s: %w", name, err)
	}
	return Input{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}, nil
}

// Stream wraps a reader that can only be consumed once, such as stdin for
// a plain hash run.
func Stream(name string, r io.Reader) Input {
	var opened bool
	return Input{
		Name: name,
		Size: -1,
		Open: func() (io.ReadCloser, error) {
			if opened {
				return nil, fmt.Errorf("input %s cannot be read twice", name)
			}
			opened = true
			return io.NopCloser(r), nil
		},
	}
}
