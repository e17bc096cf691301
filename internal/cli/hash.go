package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"shacheck/internal/config"
	apperrors "shacheck/internal/errors"
	"shacheck/internal/hash"
	"shacheck/internal/progress"
	"shacheck/internal/resume"
)

const hashUsage = "Print SHA-256 digests of text, files or stdin.\n\nUsage:\n  shacheck hash [flags] [FILE...]\n\nWith no FILE, or when FILE is -, read standard input."

type hashRecord struct {
	Name   string `json:"name"`
	Bytes  int64  `json:"bytes"`
	SHA256 string `json:"sha256"`
}

func (r *RootCommand) runHash(ctx context.Context, args []string) error {
	fs := newFlagSet("hash")
	var global globalFlags
	text := fs.StringP("text", "t", "", "hash this string instead of files")
	asJSON := fs.Bool("json", false, "print one JSON object per input")
	showProgress := fs.Bool("progress", false, "report progress on stderr")
	jobs := fs.IntP("jobs", "j", 0, "number of files hashed concurrently")
	checkpointDir := fs.String("checkpoint-dir", "", "save resumable hashing state for files in this directory")
	breakLock := fs.Bool("break-lock", false, "remove checkpoint locks left by a crashed run")
	global.register(fs)
	if done, err := r.parseFlags(fs, args, hashUsage); done || err != nil {
		return err
	}

	cfg, logger, err := global.load(fs, r.errOut)
	if err != nil {
		return err
	}
	if fs.Changed("jobs") {
		if *jobs < 1 {
			return fmt.Errorf("--jobs must be at least 1: %w", apperrors.ErrUsage)
		}
		cfg.Jobs = *jobs
	}
	if *asJSON {
		cfg.Output = config.OutputJSON
	}
	if fs.Changed("checkpoint-dir") {
		cfg.CheckpointDir = *checkpointDir
	}
	resumeOpts := resume.Options{
		Dir:       cfg.CheckpointDir,
		Interval:  cfg.CheckpointInterval,
		BreakLock: *breakLock,
		Logger:    logger,
	}

	var inputs []hash.Input
	var failed []error
	if fs.Changed("text") {
		if fs.NArg() > 0 {
			return fmt.Errorf("--text cannot be combined with file arguments: %w", apperrors.ErrUsage)
		}
		inputs = []hash.Input{hash.Text(strconv.Quote(*text), *text)}
		failed = make([]error, 1)
	} else {
		inputs, failed, err = r.collectInputs(fs.Args(), false)
		if err != nil {
			return err
		}
	}

	work, slotJob, err := planHashJobs(inputs, failed, resumeOpts.Dir)
	if err != nil {
		return err
	}

	results := make([]hash.Result, len(work))
	jobErrs := make([]error, len(work))
	var progressMu sync.Mutex
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Jobs)
	for i, in := range work {
		i, in := i, in
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var onChunk func(uint64)
			var reporter *progress.Reporter
			if *showProgress {
				reporter = progress.NewReporter(r.errOut, &progressMu, in.Name, uint64(max(in.Size, 0)))
				onChunk = reporter.Update
			}
			var res hash.Result
			var err error
			if in.Path != "" && resumeOpts.Dir != "" {
				res, err = resume.HashFile(ctx, in.Path, resumeOpts, onChunk)
			} else {
				res, err = hash.Source(in, onChunk)
			}
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Debug("hash input failed", "input", in.Name, "error", err)
				jobErrs[i] = fmt.Errorf("%s: %w", in.Name, err)
				return nil
			}
			if reporter != nil {
				reporter.Done(uint64(res.Bytes))
			}
			logger.Debug("hashed input", "input", in.Name, "bytes", res.Bytes)
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	var errs []error
	for slot, in := range inputs {
		if failed[slot] != nil {
			errs = append(errs, failed[slot])
			continue
		}
		job := slotJob[slot]
		if jobErrs[job] != nil {
			errs = append(errs, jobErrs[job])
			continue
		}
		res := results[job]
		res.Name = in.Name
		if strings.EqualFold(cfg.Output, config.OutputJSON) {
			if err := writeJSON(r.out, hashRecord{Name: res.Name, Bytes: res.Bytes, SHA256: res.Hex()}); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(r.out, "%s  %s\n", res.Hex(), res.Name); err != nil {
			return fmt.Errorf("write digest output: %w", err)
		}
	}
	return errors.Join(errs...)
}

// planHashJobs returns the inputs that need hashing and, for every argument
// slot, the index of the job that produces its digest. Failed slots get -1.
// With checkpointing enabled, arguments naming the same file share one job
// because they would otherwise contend for the same checkpoint lock.
func planHashJobs(inputs []hash.Input, failed []error, checkpointDir string) ([]hash.Input, []int, error) {
	jobs := make([]hash.Input, 0, len(inputs))
	slotJob := make([]int, len(inputs))
	byCheckpoint := map[string]int{}
	for slot, in := range inputs {
		if failed[slot] != nil {
			slotJob[slot] = -1
			continue
		}
		if in.Path == "" || checkpointDir == "" {
			slotJob[slot] = len(jobs)
			jobs = append(jobs, in)
			continue
		}
		paths, err := resume.ResolvePaths(checkpointDir, in.Path)
		if err != nil {
			return nil, nil, err
		}
		if job, ok := byCheckpoint[paths.Checkpoint]; ok {
			slotJob[slot] = job
			continue
		}
		byCheckpoint[paths.Checkpoint] = len(jobs)
		slotJob[slot] = len(jobs)
		jobs = append(jobs, in)
	}
	return jobs, slotJob, nil
}

// fileInputs maps positional arguments to inputs and fails on the first
// argument that cannot be opened.
func (r *RootCommand) fileInputs(paths []string, rewindable bool) ([]hash.Input, error) {
	inputs, failed, err := r.collectInputs(paths, rewindable)
	if err != nil {
		return nil, err
	}
	for _, err := range failed {
		if err != nil {
			return nil, err
		}
	}
	return inputs, nil
}

// collectInputs maps positional arguments to inputs. No arguments means
// stdin. rewindable buffers stdin so it can be read more than once. A file
// that cannot be opened leaves its error in failed at the same index, so
// callers can carry on with the rest. err is reserved for usage errors.
func (r *RootCommand) collectInputs(paths []string, rewindable bool) (inputs []hash.Input, failed []error, err error) {
	if len(paths) == 0 {
		paths = []string{hash.StdinName}
	}
	inputs = make([]hash.Input, len(paths))
	failed = make([]error, len(paths))
	sawStdin := false
	for i, path := range paths {
		if path == hash.StdinName {
			if sawStdin {
				return nil, nil, fmt.Errorf("standard input given more than once: %w", apperrors.ErrUsage)
			}
			sawStdin = true
			if !rewindable {
				inputs[i] = hash.Stream(hash.StdinName, r.in)
				continue
			}
			inputs[i], failed[i] = hash.Reader(hash.StdinName, r.in)
			continue
		}
		inputs[i], failed[i] = hash.File(path)
	}
	return inputs, failed, nil
}
