package resume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"shacheck/internal/hash"
)

const (
	chunkSize = 32 * 1024
	// DefaultInterval is how many bytes are hashed between checkpoints.
	DefaultInterval int64 = 64 << 20
)

// Options configures a checkpointed hashing run.
type Options struct {
	Dir       string
	Interval  int64
	BreakLock bool
	Logger    *slog.Logger
}

// HashFile hashes the file at path, saving engine state to a checkpoint in
// opts.Dir every opts.Interval bytes and when ctx is cancelled. A matching
// checkpoint from an earlier run is resumed; one taken from a file that has
// since changed is discarded. The checkpoint is removed on success.
func HashFile(ctx context.Context, path string, opts Options, onChunk func(total uint64)) (hash.Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	paths, err := ResolvePaths(opts.Dir, path)
	if err != nil {
		return hash.Result{}, err
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return hash.Result{}, fmt.Errorf("create checkpoint directory: %w", err)
	}
	lock, err := AcquireLock(paths.Lock, opts.BreakLock)
	if err != nil {
		return hash.Result{}, err
	}
	defer lock.Release()

	f, err := os.Open(path)
	if err != nil {
		return hash.Result{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return hash.Result{}, fmt.Errorf("stat input: %w", err)
	}

	h, offset := restore(logger, paths, info)
	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return hash.Result{}, fmt.Errorf("seek to checkpoint: %w", err)
		}
	}

	save := func() error {
		state, err := h.Checkpoint()
		if err != nil {
			return err
		}
		meta := Meta{Input: paths.Input, Size: info.Size(), ModTime: info.ModTime(), Offset: h.Len(), State: state}
		if err := SaveMetaAtomic(paths.Checkpoint, meta); err != nil {
			return err
		}
		logger.Debug("checkpoint saved", "input", path, "offset", meta.Offset)
		return nil
	}

	buf := make([]byte, chunkSize)
	lastSave := h.Len()
	for {
		if err := ctx.Err(); err != nil {
			if serr := save(); serr != nil {
				logger.Warn("checkpoint save failed", "input", path, "err", serr)
			}
			return hash.Result{}, err
		}
		n, rerr := f.Read(buf)
		if n > 0 {
			if _, err := h.Write(buf[:n]); err != nil {
				return hash.Result{}, err
			}
			if onChunk != nil {
				onChunk(uint64(h.Len()))
			}
			if h.Len()-lastSave >= interval {
				if err := save(); err != nil {
					return hash.Result{}, err
				}
				lastSave = h.Len()
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return hash.Result{}, fmt.Errorf("read input: %w", rerr)
		}
	}

	total := h.Len()
	sum, err := h.Sum()
	if err != nil {
		return hash.Result{}, err
	}
	if err := os.Remove(paths.Checkpoint); err != nil && !os.IsNotExist(err) {
		logger.Warn("remove checkpoint", "path", paths.Checkpoint, "err", err)
	}
	return hash.Result{Name: path, Bytes: total, Sum: sum}, nil
}

// restore returns a Hasher positioned at the last checkpoint, or a fresh
// one at offset zero.
func restore(logger *slog.Logger, paths Paths, info os.FileInfo) (*hash.Hasher, int64) {
	meta, err := LoadMeta(paths.Checkpoint)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("ignoring unreadable checkpoint", "path", paths.Checkpoint, "err", err)
		}
		return hash.New(), 0
	}
	if !meta.Matches(paths.Input, info) {
		logger.Info("input changed since checkpoint, starting over", "input", paths.Input)
		return hash.New(), 0
	}
	h, err := hash.Resume(meta.State)
	if err != nil || h.Len() != meta.Offset {
		logger.Warn("ignoring corrupt checkpoint", "path", paths.Checkpoint, "err", err)
		return hash.New(), 0
	}
	logger.Info("resuming from checkpoint", "input", paths.Input, "offset", meta.Offset)
	return h, meta.Offset
}
