// Package oracle cross-checks engine digests against independent SHA-256
// implementations. A disagreement is a result to report, not an error.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shacheck/internal/hash"
	"shacheck/internal/sha256"
)

// ErrUnavailable marks an oracle that cannot run on this host.
var ErrUnavailable = errors.New("oracle unavailable")

// Oracle computes a reference digest for an input.
type Oracle interface {
	Name() string
	Sum(ctx context.Context, in hash.Input) ([sha256.Size]byte, error)
}

// Options configures oracle construction.
type Options struct {
	OpenSSLPath string
}

// Names lists the oracles known to Lookup.
func Names() []string { return []string{"stdlib", "openssl"} }

// Lookup returns the oracle registered under name.
func Lookup(name string, opts Options) (Oracle, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "stdlib":
		return Stdlib{}, nil
	case "openssl":
		return NewOpenSSL(opts.OpenSSLPath), nil
	default:
		return nil, fmt.Errorf("unknown oracle %q (known: %s)", name, strings.Join(Names(), ", "))
	}
}

// LookupAll resolves every name, failing on the first unknown one.
func LookupAll(names []string, opts Options) ([]Oracle, error) {
	out := make([]Oracle, 0, len(names))
	for _, name := range names {
		o, err := Lookup(name, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
