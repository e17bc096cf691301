package resume

import (
	"fmt"
	"path/filepath"
	"strings"

	"shacheck/internal/sha256"
)

var unsafeChars = strings.NewReplacer("<", "_", ">", "_", ":", "_", "\"", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")

// Paths are the checkpoint and lock files for one input.
type Paths struct {
	Input      string
	Checkpoint string
	Lock       string
}

// ResolvePaths derives stable checkpoint paths in dir for the input file.
// Distinct absolute paths never share a checkpoint.
func ResolvePaths(dir, input string) (Paths, error) {
	abs, err := filepath.Abs(input)
	if err != nil {
		return Paths{}, fmt.Errorf("resolve input path: %w", err)
	}
	base := strings.Trim(unsafeChars.Replace(filepath.Base(abs)), ".")
	if base == "" {
		base = "input"
	}
	id := sha256.ToHex(sha256.Sum256([]byte(abs)))[:16]
	checkpoint := filepath.Join(dir, base+"-"+id+".ckpt")
	return Paths{Input: abs, Checkpoint: checkpoint, Lock: checkpoint + ".lock"}, nil
}
